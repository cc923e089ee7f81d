package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/vetimport/internal/admin"
	"github.com/JonMunkholm/vetimport/internal/config"
	"github.com/JonMunkholm/vetimport/internal/store"
)

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every imported record",
		Long: "Reset empties the configured store: cemeteries, burials, kin, veterans and\n" +
			"the rank, branch and war values. It refuses to run without --yes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runReset(cmd.Context(), cmd.OutOrStdout(), cfg, yes)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all data")
	return cmd
}

func runReset(ctx context.Context, out io.Writer, cfg *config.Config, yes bool) error {
	if !yes {
		return fmt.Errorf("%w: pass --yes to delete all data", admin.ErrNotConfirmed)
	}

	repo, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	before, err := admin.ResetAll(ctx, repo, yes)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %d veterans and %d cemeteries.\n", before.Veterans, before.Cemeteries)
	return nil
}
