package closet

import (
	"context"

	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/metrics"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

// ScanResult is a scanned bag and its contents.
type ScanResult struct {
	Bag     model.Bag     `json:"bag"`
	Clothes []model.Cloth `json:"clothes"`
}

// ResolveScan finds the owner's bag with the exact barcode value and lists
// the clothes in it, newest first. A barcode owned by someone else is not
// found.
func (s *Service) ResolveScan(ctx context.Context, ownerID, barcode string) (*ScanResult, error) {
	bag, err := store.GetBagByBarcode(ctx, s.db, ownerID, barcode)
	if err != nil {
		return nil, internal(err, "failed to resolve barcode")
	}
	if bag == nil {
		s.metrics.Scans.WithLabelValues(metrics.ScanNotFound).Inc()
		return nil, errors.NotFound("bag not found")
	}

	clothes, err := store.ListClothesInBag(ctx, s.db, ownerID, bag.BagID)
	if err != nil {
		return nil, internal(err, "failed to list bag contents")
	}
	if clothes == nil {
		clothes = []model.Cloth{}
	}
	for i := range clothes {
		clothes[i].BagName = bag.Name
	}

	s.metrics.Scans.WithLabelValues(metrics.ScanFound).Inc()
	return &ScanResult{Bag: *bag, Clothes: clothes}, nil
}
