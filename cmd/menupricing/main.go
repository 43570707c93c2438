package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// ENTRY POINT

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "menupricing",
		Short:         "Price menu items, packs and limited offers from the catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(metricsOutFlag, "", `write a metrics snapshot to this file when the command ends ("-" for stderr)`)
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newQuoteCommand())
	root.AddCommand(newExportCommand())
	return root
}

const metricsOutFlag = "metrics-out"

func metricsOut(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString(metricsOutFlag)
	return out
}
