package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/imagestore"
)

// ImageStoreHandle wraps the image store with shutdown capability.
type ImageStoreHandle struct {
	imagestore.Store
}

// Shutdown implements do.ShutdownerWithError.
func (h *ImageStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideImageStore opens the configured image backend.
func ProvideImageStore(i do.Injector) (*ImageStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	store, err := imagestore.Open(ctx, cfg.ImageStore())
	if err != nil {
		return nil, err
	}

	slog.Info("image store ready", "driver", store.Driver())
	return &ImageStoreHandle{Store: store}, nil
}
