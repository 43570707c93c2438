package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"menupricing/internal/customize"
	"menupricing/internal/offer"
	"menupricing/internal/popup"
	"menupricing/internal/pricing"
)

type quoteOutput struct {
	Quote  pricing.Quote    `json:"quote"`
	Offer  offer.Offer      `json:"offer"`
	Labels []string         `json:"offer_labels"`
	Record customize.Record `json:"record"`
	Stored *bool            `json:"stored,omitempty"`
}

func newQuoteCommand() *cobra.Command {
	var itemID, selectionPath, sessionID string
	var push bool

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price one catalog item for a selection and optionally add it to the cart.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selection, err := readSelection(selectionPath)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), metricsOut(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.catalog.GetItem(cmd.Context(), itemID)
			if err != nil {
				return err
			}

			req := popup.Request{Item: item, Selection: selection, SessionID: sessionID}
			if req.SessionID == "" {
				req.SessionID = a.popup.NewSessionID()
			}

			var res popup.Result
			out := quoteOutput{}
			if push {
				res, err = a.popup.AddToCart(cmd.Context(), req)
				if err != nil {
					return err
				}
				out.Stored = &res.Stored
			} else {
				res = a.popup.Quote(cmd.Context(), req)
			}

			out.Quote = res.Quote
			out.Offer = res.Offer
			out.Labels = res.Offer.Summary()
			out.Record = res.Record

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&itemID, "item", "", "catalog item id")
	cmd.Flags().StringVar(&selectionPath, "selection", "", "JSON file with the popup selection")
	cmd.Flags().StringVar(&sessionID, "session", "", "popup session token (generated when empty)")
	cmd.Flags().BoolVar(&push, "push", false, "hand the record off to the cart")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func readSelection(path string) (customize.Selection, error) {
	selection := customize.Selection{Quantity: 1}
	if path == "" {
		return selection, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return selection, fmt.Errorf("read selection: %w", err)
	}
	if err := json.Unmarshal(data, &selection); err != nil {
		return selection, fmt.Errorf("decode selection: %w", err)
	}
	return selection, nil
}
