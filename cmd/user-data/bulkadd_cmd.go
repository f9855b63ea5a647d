package main

import (
	"github.com/spf13/cobra"

	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
)

func newBulkAddCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "bulk-add",
		Short: "Reconcile an add-mode sheet against the account store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd.Context(), reconcile.ModeAdd, opts)
		},
	}

	addRunFlags(cmd, &opts)
	return cmd
}
