package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/omara/internal/db"
)

// PendingImageDeletion is an image whose deletion from object storage failed
// and is waiting to be retried.
type PendingImageDeletion struct {
	ImageKey  string
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// QueueImageDeletion records an image that could not be deleted.
func QueueImageDeletion(ctx context.Context, database *db.DB, imageKey, lastError string) error {
	_, err := database.ExecContext(ctx,
		`INSERT INTO pending_image_deletions (image_key, attempts, last_error, created_at) VALUES (?, 1, ?, ?)
		 ON CONFLICT (image_key) DO UPDATE SET last_error = excluded.last_error`,
		imageKey, lastError, db.FormatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("queueing image deletion: %w", err)
	}
	return nil
}

// ListPendingImageDeletions returns up to limit queued deletions, oldest first.
func ListPendingImageDeletions(ctx context.Context, database *db.DB, limit int) ([]PendingImageDeletion, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT image_key, attempts, last_error, created_at
		 FROM pending_image_deletions ORDER BY created_at, image_key LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending image deletions: %w", err)
	}
	defer rows.Close()

	var pending []PendingImageDeletion
	for rows.Next() {
		var p PendingImageDeletion
		if err := rows.Scan(&p.ImageKey, &p.Attempts, &p.LastError, db.Time(&p.CreatedAt)); err != nil {
			return nil, fmt.Errorf("scanning pending image deletion: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkImageDeletionFailed bumps the attempt counter of a queued deletion.
func MarkImageDeletionFailed(ctx context.Context, database *db.DB, imageKey, lastError string) error {
	_, err := database.ExecContext(ctx,
		`UPDATE pending_image_deletions SET attempts = attempts + 1, last_error = ? WHERE image_key = ?`,
		lastError, imageKey,
	)
	if err != nil {
		return fmt.Errorf("updating pending image deletion: %w", err)
	}
	return nil
}

// RemovePendingImageDeletion drops a queued deletion once it succeeded.
func RemovePendingImageDeletion(ctx context.Context, database *db.DB, imageKey string) error {
	_, err := database.ExecContext(ctx,
		`DELETE FROM pending_image_deletions WHERE image_key = ?`, imageKey,
	)
	if err != nil {
		return fmt.Errorf("removing pending image deletion: %w", err)
	}
	return nil
}
