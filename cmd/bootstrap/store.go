package bootstrap

import (
	"context"
	"log/slog"

	"request-desk/internal/infra/db"
	"request-desk/internal/infra/filestore"
	"request-desk/internal/infra/observed"
	"request-desk/internal/infra/repository"
	"request-desk/internal/pkg/config"
	"request-desk/internal/usecase/shared"

	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewRequestStore,
		func(s shared.RequestStore) shared.RequestReadStore { return s },
	),
)

// NewRequestStore opens the back end named by STORE_DRIVER and instruments it.
func NewRequestStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.RequestStore, error) {
	if cfg.Store.Driver == config.DriverFile {
		store, err := filestore.Open(cfg.Store.FilePath, filestore.Options{
			RecoverCorrupt: cfg.Store.RecoverCorrupt,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		return observed.NewStore(store, cfg.Store.Driver), nil
	}

	conn, dialect, cleanup, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(context.Background(), conn, dialect); err != nil {
		cleanup()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	logger.Info("request store ready", "driver", dialect.Name)
	return observed.NewStore(repository.NewRequestRepository(conn, dialect, logger), dialect.Name), nil
}
