// Package jobs runs periodic maintenance: retrying image deletions that
// failed during a request and pruning expired token revocations.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/imagestore"
	"github.com/erazemk/omara/internal/store"
)

// batchSize is the number of queued deletions handled per run.
const batchSize = 100

// Sweeper holds the dependencies of the maintenance jobs.
type Sweeper struct {
	DB     *db.DB
	Images imagestore.Store
	Now    func() time.Time
}

// SweepResult summarizes one image sweep.
type SweepResult struct {
	Deleted int
	Failed  int
}

// SweepImages retries queued image deletions.
func (s *Sweeper) SweepImages(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	pending, err := store.ListPendingImageDeletions(ctx, s.DB, batchSize)
	if err != nil {
		return res, err
	}

	for _, p := range pending {
		if err := s.Images.Delete(ctx, p.ImageKey); err != nil {
			res.Failed++
			slog.Warn("image deletion retry failed", "key", p.ImageKey, "attempts", p.Attempts+1, "error", err)
			if err := store.MarkImageDeletionFailed(ctx, s.DB, p.ImageKey, err.Error()); err != nil {
				return res, err
			}
			continue
		}
		if err := store.RemovePendingImageDeletion(ctx, s.DB, p.ImageKey); err != nil {
			return res, err
		}
		res.Deleted++
	}
	return res, nil
}

// LastRunKey is the setting holding the completion time of the last pass.
const LastRunKey = "maintenance_last_run"

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// PruneTokens removes revocations of tokens that have expired.
func (s *Sweeper) PruneTokens(ctx context.Context) (int64, error) {
	return store.PruneRevokedTokens(ctx, s.DB, s.now())
}

// LastRun returns when the last maintenance pass finished, or the zero time.
func (s *Sweeper) LastRun(ctx context.Context) (time.Time, error) {
	value, ok, err := store.GetSetting(ctx, s.DB, LastRunKey)
	if err != nil || !ok {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// Run performs one full maintenance pass. It never panics.
func (s *Sweeper) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("maintenance job panicked", "panic", r)
		}
	}()

	res, err := s.SweepImages(ctx)
	if err != nil {
		slog.Error("failed to sweep images", "error", err)
	} else if res.Deleted > 0 || res.Failed > 0 {
		slog.Info("image sweep finished", "deleted", res.Deleted, "failed", res.Failed)
	}

	n, err := s.PruneTokens(ctx)
	if err != nil {
		slog.Error("failed to prune revoked tokens", "error", err)
	} else if n > 0 {
		slog.Info("pruned revoked tokens", "count", n)
	}

	if err := store.PutSetting(ctx, s.DB, LastRunKey, s.now().UTC().Format(time.RFC3339)); err != nil {
		slog.Error("failed to record maintenance run", "error", err)
	}
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs the sweeper on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// ValidateSchedule reports whether expr is a valid schedule expression.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Start schedules s.Run according to expr ("@every 10m", "0 */5 * * * *", ...)
// and starts the scheduler.
func Start(expr string, s *Sweeper) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser))
	sch := &Scheduler{cron: c, timeout: 5 * time.Minute}

	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sch.timeout)
		defer cancel()
		s.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling sweeper: %w", err)
	}

	c.Start()
	slog.Info("maintenance scheduler started", "schedule", expr)
	return sch, nil
}

// Shutdown stops the scheduler and waits for a running job to finish.
func (sch *Scheduler) Shutdown(ctx context.Context) error {
	done := sch.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
