package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
	"github.com/clinix-uz/clinix-sdk/pkg/composables"
	"github.com/clinix-uz/clinix-sdk/pkg/configuration"
	"github.com/clinix-uz/clinix-sdk/pkg/eventbus"
	"github.com/clinix-uz/clinix-sdk/pkg/logging"
	"github.com/clinix-uz/clinix-sdk/pkg/serrors"
)

type runOptions struct {
	role       string
	input      string
	apply      bool
	maxBatch   int
	skippedCSV string
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.input, "input", "-", "Input sheet path, or - for stdin")
	cmd.Flags().StringVar(&opts.role, "role", "", "Target role for the whole batch (required)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Apply changes to the store (default is dry-run)")
	cmd.Flags().StringVar(&opts.skippedCSV, "skipped-csv", "", "Write skipped rows to this CSV file")
	_ = cmd.MarkFlagRequired("role")
}

func readInput(path string) (string, error) {
	if path == "-" {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", withCode(exitUsage, fmt.Errorf("read stdin: %w", err))
		}
		return string(payload), nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return "", withCode(exitUsage, fmt.Errorf("read input: %w", err))
	}
	return string(payload), nil
}

// runBulk wires the store-backed service and executes one reconciliation
// run, printing the report as a single JSON line.
func runBulk(ctx context.Context, mode reconcile.Mode, opts runOptions) error {
	role := account.Role(opts.role)
	if !role.IsValid() {
		return withCode(exitUsage, fmt.Errorf("invalid --role: %q", opts.role))
	}

	input, err := readInput(opts.input)
	if err != nil {
		return err
	}

	conf := configuration.Use()
	// Human-readable log lines go to stderr; stdout carries only the
	// JSON report.
	logger := logging.ConsoleLogger(conf.LogrusLogLevel())

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return withCode(exitDB, fmt.Errorf("connect: %w", err))
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	engineOpts := reconcile.Options{
		TargetRole:     role,
		MaxDeleteBatch: conf.Bulk.MaxDeleteBatch,
		Workers:        conf.Bulk.Workers,
		StoreTimeout:   time.Duration(conf.Bulk.StoreTimeoutMS) * time.Millisecond,
		DryRun:         !opts.apply,
	}
	if opts.maxBatch > 0 {
		engineOpts.MaxDeleteBatch = opts.maxBatch
	}

	svc := services.NewBulkAccountService(
		persistence.NewAccountRepository(),
		persistence.NewReferenceRepository(),
		eventbus.NewEventPublisher(logger),
		logger,
	)

	var report *reconcile.Report
	switch mode {
	case reconcile.ModeAdd:
		report, err = svc.Add(ctx, input, engineOpts)
	case reconcile.ModeDelete:
		report, err = svc.Delete(ctx, input, engineOpts)
	default:
		return withCode(exitUsage, fmt.Errorf("unknown mode: %q", mode))
	}
	if err != nil {
		var coded *serrors.Error
		if errors.As(err, &coded) {
			return withCode(exitValidation, err)
		}
		return withCode(exitDB, err)
	}

	if opts.skippedCSV != "" && len(report.Skipped) > 0 {
		if err := os.WriteFile(opts.skippedCSV, report.SkippedCSV(), 0o644); err != nil {
			return withCode(exitUsage, fmt.Errorf("write skipped csv: %w", err))
		}
	}

	return writeJSONLine(report)
}
