package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"request-desk/internal/handler/middleware"
	"request-desk/internal/infra/db"
	"request-desk/internal/infra/sqlrunner"
	"request-desk/internal/pkg/config"
	"request-desk/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		pattern  string
		failFast bool
		dsn      string
		driver   string
	)

	cmd := &cobra.Command{
		Use:   "sqlrunner [dir]",
		Short: "Run SQL scripts in lexical order, one transaction per file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			_ = godotenv.Load()
			var cfg config.Config
			if err := envconfig.Process("", &cfg.DB); err != nil {
				return errs.Wrap(err, "failed to process env config")
			}
			if err := envconfig.Process("", &cfg.Log); err != nil {
				return errs.Wrap(err, "failed to process env config")
			}
			logger := middleware.NewLogger(cfg.Log).GetSlogLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exec, closeFn, err := openExecutor(ctx, driver, dsn, cfg.DB)
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := sqlrunner.NewRunner(exec, logger).Run(ctx, os.DirFS(dir), pattern, failFast)
			printSummary(cmd, results)
			return err
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "*.sql", "glob selecting the scripts inside dir")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing script")
	cmd.Flags().StringVar(&dsn, "dsn", "", "connection string (defaults to the DB_* environment, or the sqlite path)")
	cmd.Flags().StringVar(&driver, "driver", config.DriverPostgres, "postgres or sqlite")
	return cmd
}

func openExecutor(ctx context.Context, driver, dsn string, dbCfg config.DBConfig) (sqlrunner.Executor, func(), error) {
	switch driver {
	case config.DriverPostgres:
		if dsn == "" {
			dsn = dbCfg.BuildDSN()
		}
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, errs.Wrap(err, "failed to connect")
		}
		return sqlrunner.NewPgxExecutor(conn), func() { _ = conn.Close(context.Background()) }, nil
	case config.DriverSQLite:
		if dsn == "" {
			return nil, nil, errs.Newf("--dsn is required for the %s driver", config.DriverSQLite)
		}
		conn, err := db.Open(db.SQLite, dsn, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		return sqlrunner.NewSQLExecutor(conn), func() { _ = conn.Close() }, nil
	default:
		return nil, nil, errs.Newf("unsupported --driver %q", driver)
	}
}

func printSummary(cmd *cobra.Command, results []sqlrunner.Result) {
	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		mark := "ok  "
		if !r.OK() {
			mark = "FAIL"
			failed++
		}
		fmt.Fprintf(out, "%s %-40s %8.2fs\n", mark, r.File, r.Duration.Seconds())
		if !r.OK() {
			fmt.Fprintf(out, "     %v\n", r.Err)
		}
	}
	fmt.Fprintf(out, "%d run, %d succeeded, %d failed\n", len(results), len(results)-failed, failed)
}

func main() {
	cmd := newRootCmd()
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
