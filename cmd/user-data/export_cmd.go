package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
	"github.com/clinix-uz/clinix-sdk/pkg/composables"
	"github.com/clinix-uz/clinix-sdk/pkg/configuration"
	"github.com/clinix-uz/clinix-sdk/pkg/eventbus"
	"github.com/clinix-uz/clinix-sdk/pkg/logging"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every account in the store as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), output)
		},
	}

	cmd.Flags().StringVar(&output, "output", "-", "Output CSV path, or - for stdout")
	return cmd
}

func runExport(ctx context.Context, output string) error {
	conf := configuration.Use()
	logger := logging.ConsoleLogger(conf.LogrusLogLevel())

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return withCode(exitDB, fmt.Errorf("connect: %w", err))
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	svc := services.NewAccountService(
		persistence.NewAccountRepository(),
		eventbus.NewEventPublisher(logger),
	)
	accounts, err := svc.GetAll(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}

	out := io.Writer(os.Stdout)
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("create output: %w", err))
		}
		defer f.Close()
		out = f
	}
	if err := writeAccountsCSV(out, accounts); err != nil {
		return withCode(exitDB, err)
	}
	logger.Infof("exported %d accounts", len(accounts))
	return nil
}

func writeAccountsCSV(out io.Writer, accounts []account.Account) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"id", "role", "first_name", "middle_name", "last_name", "email", "office_id", "course_id", "year_id"}); err != nil {
		return err
	}
	for _, a := range accounts {
		record := []string{
			strconv.FormatUint(uint64(a.ID()), 10),
			string(a.Role()),
			a.FirstName(),
			a.MiddleName(),
			a.LastName(),
			a.Email(),
			formatRef(a.OfficeID()),
			formatRef(a.CourseID()),
			formatRef(a.YearID()),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatRef(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
