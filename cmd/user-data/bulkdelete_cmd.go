package main

import (
	"github.com/spf13/cobra"

	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
)

func newBulkDeleteCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "bulk-delete",
		Short: "Reconcile a delete-mode sheet against the account store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd.Context(), reconcile.ModeDelete, opts)
		},
	}

	addRunFlags(cmd, &opts)
	cmd.Flags().IntVar(&opts.maxBatch, "max-batch", 0, "Override the delete batch ceiling for this run")
	return cmd
}
