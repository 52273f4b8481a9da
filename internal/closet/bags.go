package closet

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/ident"
	"github.com/erazemk/omara/internal/labels"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

// BagInput is the body of a bag create or rename.
type BagInput struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateBag allocates the next bag id for the owner and a fresh barcode.
//
// The next id follows the owner's most recently created bag. Two concurrent
// creations can compute the same id; the database rejects the second and it
// is reported as a conflict without retrying. Duplicate barcodes are retried
// with new values.
func (s *Service) CreateBag(ctx context.Context, ownerID string, in BagInput) (*model.Bag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	latest, err := store.LatestBag(ctx, s.db, ownerID)
	if err != nil {
		return nil, internal(err, "failed to create bag")
	}
	previous := ""
	if latest != nil {
		previous = latest.BagID
	}
	bagID := ident.NextBagID(previous)

	for attempt := 1; attempt <= maxBarcodeAttempts; attempt++ {
		barcode, err := s.newBarcode()
		if err != nil {
			return nil, internal(err, "failed to generate barcode")
		}

		bag, err := store.CreateBag(ctx, s.db, ownerID, bagID, in.Name, barcode, s.now())
		switch {
		case err == nil:
			s.metrics.BagsCreated.Inc()
			return bag, nil
		case errors.Is(err, store.ErrDuplicateBarcode):
			s.metrics.BarcodeRetries.Inc()
			continue
		case errors.Is(err, store.ErrDuplicateBagID):
			s.metrics.BagIDConflicts.Inc()
			return nil, errors.Conflictf("bag id %s is already taken, try again", bagID).WithCause(err)
		default:
			return nil, internal(err, "failed to create bag")
		}
	}
	return nil, errors.Conflict("could not allocate a unique barcode")
}

// ListBags returns the owner's bags, newest first, with cloth counts.
func (s *Service) ListBags(ctx context.Context, ownerID string) ([]model.BagWithCount, error) {
	bags, err := store.ListBags(ctx, s.db, ownerID)
	if err != nil {
		return nil, internal(err, "failed to list bags")
	}
	if bags == nil {
		bags = []model.BagWithCount{}
	}
	return bags, nil
}

// GetBag returns a bag with its cloth count.
func (s *Service) GetBag(ctx context.Context, ownerID, bagID string) (*model.BagWithCount, error) {
	bag, err := store.GetBagWithCount(ctx, s.db, ownerID, bagID)
	if err != nil {
		return nil, internal(err, "failed to get bag")
	}
	if bag == nil {
		return nil, errors.NotFound("bag not found")
	}
	return bag, nil
}

// RenameBag changes a bag's display name.
func (s *Service) RenameBag(ctx context.Context, ownerID, bagID string, in BagInput) (*model.BagWithCount, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	ok, err := store.RenameBag(ctx, s.db, ownerID, bagID, in.Name)
	if err != nil {
		return nil, internal(err, "failed to rename bag")
	}
	if !ok {
		return nil, errors.NotFound("bag not found")
	}
	return s.GetBag(ctx, ownerID, bagID)
}

// DeleteBag removes a bag and the clothes in it, then releases their images.
// It returns the number of clothes removed.
func (s *Service) DeleteBag(ctx context.Context, ownerID, bagID string) (int, error) {
	keys, found, err := store.DeleteBag(ctx, s.db, ownerID, bagID)
	if err != nil {
		return 0, internal(err, "failed to delete bag")
	}
	if !found {
		return 0, errors.NotFound("bag not found")
	}
	for _, key := range keys {
		s.discardImage(ctx, key)
	}
	return len(keys), nil
}

// BagLabel renders the barcode of one bag as a PNG.
func (s *Service) BagLabel(ctx context.Context, ownerID, bagID string) ([]byte, error) {
	bag, err := store.GetBag(ctx, s.db, ownerID, bagID)
	if err != nil {
		return nil, internal(err, "failed to get bag")
	}
	if bag == nil {
		return nil, errors.NotFound("bag not found")
	}
	png, err := labels.BarcodePNG(bag.BarcodeValue)
	if err != nil {
		return nil, internal(err, "failed to generate barcode")
	}
	return png, nil
}

// LabelSheet renders every bag of the owner as a printable PDF, ordered by
// bag number.
func (s *Service) LabelSheet(ctx context.Context, ownerID string) ([]byte, error) {
	listed, err := store.ListBags(ctx, s.db, ownerID)
	if err != nil {
		return nil, internal(err, "failed to list bags")
	}
	if len(listed) == 0 {
		return nil, errors.NotFound("no bags found")
	}

	bags := make([]model.Bag, 0, len(listed))
	for _, b := range listed {
		bags = append(bags, b.Bag)
	}
	sortBags(bags)

	pdf, err := labels.Sheet(bags, s.now())
	if err != nil {
		return nil, internal(err, "failed to generate PDF")
	}
	return pdf, nil
}

// sortBags orders bags by number.
func sortBags(bags []model.Bag) {
	slices.SortStableFunc(bags, compareBagIDs)
}

// compareBagIDs orders B2 before B10. Ids without a number sort last.
func compareBagIDs(a, b model.Bag) int {
	na, okA := ident.BagNumber(a.BagID)
	nb, okB := ident.BagNumber(b.BagID)
	switch {
	case okA && okB:
		return cmp.Compare(na, nb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a.BagID, b.BagID)
	}
}
