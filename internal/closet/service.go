// Package closet implements bag and cloth operations for a single caller:
// bag numbering and barcodes, scan resolution, relocation tracking, filtered
// listing and the lifecycle of cloth images.
//
// Every operation takes the caller's owner id and never reads or writes
// another owner's records. Records that exist but belong to someone else are
// reported as not found.
package closet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/ident"
	"github.com/erazemk/omara/internal/imagestore"
	"github.com/erazemk/omara/internal/imaging"
	"github.com/erazemk/omara/internal/metrics"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
	"github.com/erazemk/omara/internal/validation"
)

// maxBarcodeAttempts bounds the retries after a duplicate barcode.
const maxBarcodeAttempts = 5

// Service is the closet API used by the HTTP handlers.
type Service struct {
	db        *db.DB
	images    imagestore.Store
	metrics   *metrics.Metrics
	validator *validation.Validator

	now        func() time.Time
	newBarcode func() (string, error)
	newClothID func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBarcodeGenerator overrides how bag barcode values are generated.
func WithBarcodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.newBarcode = fn }
}

// WithClothIDGenerator overrides how cloth ids are generated.
func WithClothIDGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.newClothID = fn }
}

// New returns a Service backed by database and images.
func New(database *db.DB, images imagestore.Store, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		db:         database,
		images:     images,
		metrics:    m,
		validator:  validation.New(),
		now:        func() time.Time { return time.Now().UTC() },
		newBarcode: ident.BagBarcode,
		newClothID: ident.ClothID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// internal logs err and returns an internal error safe to show to clients.
func internal(err error, msg string) error {
	slog.Error(msg, "error", err)
	return errors.Wrap(err, errors.CodeInternal, msg)
}

// storeImage processes a base64 upload and stores it under a fresh key.
func (s *Service) storeImage(ctx context.Context, ownerID, payload string) (model.ImageRef, error) {
	res, err := imaging.ProcessBase64(payload)
	if err != nil {
		if errors.Is(err, imaging.ErrInvalidImage) {
			return model.ImageRef{}, errors.ValidationWithDetails("invalid image",
				map[string]string{"imageBase64": err.Error()})
		}
		return model.ImageRef{}, internal(err, "failed to process image")
	}

	key := fmt.Sprintf("clothes/%s/%s.jpg", ownerID, uuid.NewString())
	url, err := s.images.Put(ctx, key, res.Data, res.MIME)
	if err != nil {
		return model.ImageRef{}, internal(err, "failed to upload image")
	}
	return model.ImageRef{URL: url, Key: key, BlurHash: res.BlurHash}, nil
}

// discardImage deletes a stored image. Failures are logged and queued for
// the sweeper; they never fail the calling operation.
func (s *Service) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	err := s.images.Delete(ctx, key)
	if err == nil {
		return
	}

	slog.Warn("failed to delete image", "key", key, "error", err)
	s.metrics.ImageDeleteFailures.Inc()
	// The request context may already be done; the queue write must still land.
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if qerr := store.QueueImageDeletion(qctx, s.db, key, err.Error()); qerr != nil {
		slog.Error("failed to queue image deletion", "key", key, "error", qerr)
	}
}
