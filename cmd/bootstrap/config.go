package bootstrap

import (
	"log/slog"

	"request-desk/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logStoreSelection),
)

// logStoreSelection reports which backend the process will serve from.
func logStoreSelection(cfg config.Config, logger *slog.Logger) {
	attrs := []any{"driver", cfg.Store.Driver, "port", cfg.Server.Port}
	switch cfg.Store.Driver {
	case config.DriverFile:
		attrs = append(attrs, "path", cfg.Store.FilePath, "recover_corrupt", cfg.Store.RecoverCorrupt)
	case config.DriverSQLite:
		attrs = append(attrs, "path", cfg.Store.SQLitePath)
	case config.DriverPostgres:
		attrs = append(attrs, "host", cfg.DB.Host, "db", cfg.DB.DBName)
	}
	logger.Info("configuration loaded", attrs...)
}
