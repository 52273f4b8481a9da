package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/db"
)

// DatabaseHandle wraps the database with shutdown capability.
type DatabaseHandle struct {
	*db.DB
}

// Shutdown implements do.ShutdownerWithError.
func (h *DatabaseHandle) Shutdown() error {
	slog.Info("closing database")
	return h.Close()
}

// ProvideDatabase opens the record store and applies the schema.
func ProvideDatabase(i do.Injector) (*DatabaseHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}

	slog.Info("database ready", "driver", cfg.Database.Driver)
	return &DatabaseHandle{DB: database}, nil
}
