package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menupricing/internal/customize"
	"menupricing/internal/popup"
	"menupricing/internal/report"
)

func newExportCommand() *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export default quotes for the whole catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			if format != "xlsx" && format != "csv" {
				return fmt.Errorf("unsupported format %q (xlsx or csv)", format)
			}

			a, err := newApp(cmd.Context(), metricsOut(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			ids, err := a.catalog.ListItemIDs(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]report.Row, 0, len(ids))
			for _, id := range ids {
				item, err := a.catalog.GetItem(cmd.Context(), id)
				if err != nil {
					a.logger.Warn("Skipping item", zap.String("item_id", id), zap.Error(err))
					continue
				}

				res := a.popup.Quote(cmd.Context(), popup.Request{
					Item:      item,
					Selection: customize.Selection{Quantity: 1},
				})

				row := report.Row{
					ItemID:        item.ID,
					Name:          res.Record.DisplayName,
					Category:      res.Category.String(),
					UnitPrice:     res.Quote.UnitPrice,
					TotalPrice:    res.Quote.TotalPrice,
					Offers:        res.Offer.Summary(),
					MissingOption: res.Quote.MissingOption,
				}
				if res.Option != nil {
					row.Option = res.Option.Size
				}
				rows = append(rows, row)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			if format == "csv" {
				err = report.WriteCSV(f, rows)
			} else {
				err = report.WritePriceSheet(f, rows)
			}
			if err != nil {
				return err
			}

			a.logger.Info("Price sheet exported", zap.String("path", out), zap.Int("items", len(rows)))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "prices.xlsx", "output file")
	cmd.Flags().StringVar(&format, "format", "", "xlsx or csv (default: from the output extension)")
	return cmd
}
