package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/closet"
	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/jobs"
	"github.com/erazemk/omara/internal/metrics"
	"github.com/erazemk/omara/internal/ratelimit"
	"github.com/erazemk/omara/internal/store"
)

// ProvideMetrics provides the Prometheus registry and collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideCloset provides the closet service.
func ProvideCloset(i do.Injector) (*closet.Service, error) {
	database := do.MustInvoke[*DatabaseHandle](i)
	images := do.MustInvoke[*ImageStoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	return closet.New(database.DB, images.Store, m), nil
}

// ProvideVerifier provides the caller identity verifier. The signing secret
// is generated on first start and kept in the database.
func ProvideVerifier(i do.Injector) (*auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	database := do.MustInvoke[*DatabaseHandle](i)

	secret, err := store.GetJWTSecret(context.Background(), database.DB)
	if err != nil {
		return nil, err
	}
	return &auth.Verifier{Secret: secret, DB: database.DB, DevHeader: cfg.Auth.DevHeader}, nil
}

// RateLimiterHandle wraps the per-IP limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdowner.
func (h *RateLimiterHandle) Shutdown() {
	h.Stop()
}

// ProvideRateLimiter provides the per-client rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &RateLimiterHandle{ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)}, nil
}

// ProvideScheduler starts the maintenance jobs. The scheduler is stopped by
// the container through its Shutdown(ctx) method.
func ProvideScheduler(i do.Injector) (*jobs.Scheduler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	database := do.MustInvoke[*DatabaseHandle](i)
	images := do.MustInvoke[*ImageStoreHandle](i)

	sweeper := &jobs.Sweeper{
		DB:     database.DB,
		Images: images.Store,
		Now:    func() time.Time { return time.Now().UTC() },
	}
	return jobs.Start(cfg.Jobs.SweepSchedule, sweeper)
}
