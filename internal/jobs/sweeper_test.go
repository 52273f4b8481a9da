package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/imagestore"
	"github.com/erazemk/omara/internal/store"
)

// flakyStore fails deletions of the keys in broken.
type flakyStore struct {
	*imagestore.Memory
	broken map[string]bool
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.broken[key] {
		return errors.New("still unavailable")
	}
	return f.Memory.Delete(ctx, key)
}

func TestSweepImages(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	mem := imagestore.NewMemory("")
	_, err := mem.Put(ctx, "clothes/u-1/a.jpg", []byte("a"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.QueueImageDeletion(ctx, database, "clothes/u-1/a.jpg", "timeout"))
	require.NoError(t, store.QueueImageDeletion(ctx, database, "clothes/u-1/b.jpg", "timeout"))

	s := &Sweeper{DB: database, Images: &flakyStore{Memory: mem, broken: map[string]bool{"clothes/u-1/b.jpg": true}}}
	res, err := s.SweepImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Deleted: 1, Failed: 1}, res)
	assert.Equal(t, 0, mem.Len())

	pending, err := store.ListPendingImageDeletions(ctx, database, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "clothes/u-1/b.jpg", pending[0].ImageKey)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Equal(t, "still unavailable", pending[0].LastError)
}

func TestPruneTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.RevokeToken(ctx, database, "old", now.Add(-time.Hour)))
	require.NoError(t, store.RevokeToken(ctx, database, "live", now.Add(time.Hour)))

	s := &Sweeper{DB: database, Images: imagestore.NewMemory(""), Now: func() time.Time { return now }}
	n, err := s.PruneTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err := store.IsTokenRevoked(ctx, database, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 10m"))
	assert.NoError(t, ValidateSchedule("0 */5 * * * *"))
	assert.Error(t, ValidateSchedule("every now and then"))

	s := &Sweeper{DB: db.NewTestDB(t), Images: imagestore.NewMemory("")}
	_, err := Start("nonsense", s)
	assert.Error(t, err)

	sch, err := Start("@every 1h", s)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sch.Shutdown(ctx))
}

func TestRunRecordsLastRun(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 2, 8, 30, 0, 0, time.UTC)
	s := &Sweeper{DB: database, Images: imagestore.NewMemory(""), Now: func() time.Time { return now }}

	last, err := s.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	s.Run(ctx)

	last, err = s.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(last))
}
