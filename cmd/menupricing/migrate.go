package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"menupricing/internal/storage"
)

func newMigrateCommand() *cobra.Command {
	var down, status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply catalog schema migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), metricsOut(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			db := a.catalog.DB()
			switch {
			case status:
				states, err := storage.Status(cmd.Context(), db)
				if err != nil {
					return err
				}
				printMigrationStatus(cmd.OutOrStdout(), states)
				return nil
			case down:
				return storage.RollbackMigration(cmd.Context(), db, a.logger)
			default:
				return storage.RunMigrations(cmd.Context(), db, a.logger)
			}
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back the last migration")
	cmd.Flags().BoolVar(&status, "status", false, "print migration status")
	cmd.MarkFlagsMutuallyExclusive("down", "status")
	return cmd
}

func printMigrationStatus(w io.Writer, states []storage.MigrationState) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, s := range states {
		state, appliedAt := "pending", "-"
		if s.Applied {
			state, appliedAt = "applied", s.AppliedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, state, appliedAt, s.Path)
	}
	_ = tw.Flush()
}
