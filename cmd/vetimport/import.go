package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/vetimport/internal/config"
	"github.com/JonMunkholm/vetimport/internal/core"
	"github.com/JonMunkholm/vetimport/internal/logging"
	"github.com/JonMunkholm/vetimport/internal/source"
	"github.com/JonMunkholm/vetimport/internal/store"
)

type importOptions struct {
	dir             string
	dryRun          bool
	continueOnError bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [path | s3://bucket/key]...",
		Short: "Import extracts from files, a directory or S3",
		Long: "Import reads each extract in order and writes its veterans, burials, kin and\n" +
			"cemeteries. One summary line is printed per extract. The first fatal error\n" +
			"stops the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dryRun {
				// Validation must not demand a database a dry run never opens.
				if err := os.Setenv("DB_DRIVER", config.DriverMemory); err != nil {
					return err
				}
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.Import.ContinueOnError = opts.continueOnError
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cfg, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "Directory whose .csv files are imported in name order")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Import into an in-memory store and discard the result")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "Record failing rows and keep going (default from IMPORT_CONTINUE_ON_ERROR)")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, opts importOptions, refs []string) error {
	if opts.dir != "" {
		paths, err := source.ListCSV(opts.dir)
		if err != nil {
			return err
		}
		refs = append(refs, paths...)
	}
	if len(refs) == 0 {
		return errors.New("no extracts given: pass paths, s3:// URIs or --dir")
	}

	repo, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	svc := core.NewService(repo, core.ServiceConfig{
		MaxConcurrent:    1,
		MaxWait:          cfg.Import.MaxWaitTime,
		Timeout:          cfg.Import.Timeout,
		HistorySize:      len(refs),
		ContinueOnError:  cfg.Import.ContinueOnError,
		ProgressInterval: cfg.Import.ProgressInterval,
	})
	opener := source.NewOpener(source.S3Config{
		Region:       cfg.Source.Region,
		Endpoint:     cfg.Source.Endpoint,
		UsePathStyle: cfg.Source.UsePathStyle,
	}, cfg.Import.MaxFileSize)

	for _, ref := range refs {
		rows, err := opener.Load(ctx, ref)
		if err != nil {
			return err
		}

		run, err := svc.Import(ctx, ref, rows)
		if err != nil {
			return fmt.Errorf("%s: %w (%s)", ref, err, core.MapError(err).Code)
		}

		fmt.Fprintln(out, run.Summary)
		log := logging.WithFields(core.ContextWithImportID(ctx, run.ID), "source", ref)
		for _, fr := range run.Result.FailedRows {
			log.Warn("row not imported", "row", fr.Row, "reason", fr.Reason)
		}
	}

	if opts.dryRun {
		counts, err := repo.Counts(ctx)
		if err != nil {
			return err
		}
		slog.Info("dry run complete, nothing was persisted",
			"veterans", counts.Veterans,
			"cemeteries", counts.Cemeteries,
		)
	}
	return nil
}
