package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/erazemk/omara/internal/api"
	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/closet"
	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/metrics"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Start serves in the background. The returned channel receives the error
// that stopped the server, if any.
func (h *HTTPServerHandle) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", h.Addr)
		if err := h.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown implements do.ShutdownerWithError.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	database := do.MustInvoke[*DatabaseHandle](i)
	images := do.MustInvoke[*ImageStoreHandle](i)

	router := api.NewRouter(api.Deps{
		DB:       database.DB,
		Closet:   do.MustInvoke[*closet.Service](i),
		Verifier: do.MustInvoke[*auth.Verifier](i),
		Images:   images.Store,
		Metrics:  do.MustInvoke[*metrics.Metrics](i),
		Limiter:  do.MustInvoke[*RateLimiterHandle](i).KeyedRateLimiter,
	}, api.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	return &HTTPServerHandle{Server: &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}}, nil
}
