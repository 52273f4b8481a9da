package closet

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/store"
)

var barcodePattern = regexp.MustCompile(`^BAG-[0-9A-F]{8}$`)

func TestCreateBagSequentialIDs(t *testing.T) {
	f := newFixture(t)

	for i := 1; i <= 5; i++ {
		bag := f.bag(t, ownerA, fmt.Sprintf("Bag %d", i))
		assert.Equal(t, fmt.Sprintf("B%d", i), bag.BagID)
		assert.Regexp(t, barcodePattern, bag.BarcodeValue)
		assert.Equal(t, ownerA, bag.OwnerID)
	}

	// Numbering is per owner.
	assert.Equal(t, "B1", f.bag(t, ownerB, "Other").BagID)
	assert.Equal(t, 6.0, testutil.ToFloat64(f.metrics.BagsCreated))
}

func TestCreateBagRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBag(context.Background(), ownerA, BagInput{Name: "   "})
	require.ErrorIs(t, err, errors.ErrValidation)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, map[string]string{"name": "is required"}, e.Details)
}

func TestCreateBagRetriesDuplicateBarcode(t *testing.T) {
	values := []string{"BAG-00000001", "BAG-00000001", "BAG-00000002"}
	next := 0
	f := newFixture(t, WithBarcodeGenerator(func() (string, error) {
		v := values[next]
		next++
		return v, nil
	}))

	first := f.bag(t, ownerA, "First")
	second := f.bag(t, ownerA, "Second")

	assert.Equal(t, "BAG-00000001", first.BarcodeValue)
	assert.Equal(t, "BAG-00000002", second.BarcodeValue)
	assert.Equal(t, "B2", second.BagID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BarcodeRetries))
}

func TestCreateBagGivesUpOnRepeatedDuplicateBarcode(t *testing.T) {
	f := newFixture(t, WithBarcodeGenerator(func() (string, error) {
		return "BAG-0000000F", nil
	}))

	f.bag(t, ownerA, "First")
	_, err := f.svc.CreateBag(context.Background(), ownerA, BagInput{Name: "Second"})
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Equal(t, float64(maxBarcodeAttempts), testutil.ToFloat64(f.metrics.BarcodeRetries))

	// The same barcode is fine for a different owner.
	bag := f.bag(t, ownerB, "Theirs")
	assert.Equal(t, "BAG-0000000F", bag.BarcodeValue)
}

func TestCreateBagIDCollisionIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// B2 exists but B1 was created after it, so the next id computed from
	// the most recent bag is B2 again.
	_, err := store.CreateBag(ctx, f.db, ownerA, "B2", "Older", "BAG-AAAAAAAA", f.clock.Now())
	require.NoError(t, err)
	_, err = store.CreateBag(ctx, f.db, ownerA, "B1", "Newer", "BAG-BBBBBBBB", f.clock.Now())
	require.NoError(t, err)

	_, err = f.svc.CreateBag(ctx, ownerA, BagInput{Name: "Third"})
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BagIDConflicts))

	bags, err := f.svc.ListBags(ctx, ownerA)
	require.NoError(t, err)
	assert.Len(t, bags, 2, "the losing creation must not write anything")
}

func TestCreateBagAfterDeletingLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bag(t, ownerA, "One")
	f.bag(t, ownerA, "Two")
	_, err := f.svc.DeleteBag(ctx, ownerA, "B2")
	require.NoError(t, err)

	assert.Equal(t, "B2", f.bag(t, ownerA, "Two again").BagID)
}

func TestGetAndRenameBag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bag := f.bag(t, ownerA, "Winter")
	f.cloth(t, ownerA, bag.BagID, "Scarf", "red")

	got, err := f.svc.GetBag(ctx, ownerA, bag.BagID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ClothCount)

	renamed, err := f.svc.RenameBag(ctx, ownerA, bag.BagID, BagInput{Name: "Winter coats"})
	require.NoError(t, err)
	assert.Equal(t, "Winter coats", renamed.Name)
	assert.Equal(t, bag.BarcodeValue, renamed.BarcodeValue)

	_, err = f.svc.GetBag(ctx, ownerB, bag.BagID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = f.svc.RenameBag(ctx, ownerB, bag.BagID, BagInput{Name: "Mine now"})
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = f.svc.RenameBag(ctx, ownerA, bag.BagID, BagInput{})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestDeleteBagCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bag := f.bag(t, ownerA, "Summer")
	other := f.bag(t, ownerA, "Keep")
	f.cloth(t, ownerA, bag.BagID, "Shorts", "blue")
	f.cloth(t, ownerA, bag.BagID, "Shirt", "white")
	f.cloth(t, ownerA, other.BagID, "Coat", "black")
	require.Equal(t, 3, f.images.Len())

	_, err := f.svc.DeleteBag(ctx, ownerB, bag.BagID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	n, err := f.svc.DeleteBag(ctx, ownerA, bag.BagID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := f.svc.ListClothes(ctx, ownerA, model.ClothQuery{BagID: bag.BagID})
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, 1, f.images.Len(), "images of deleted clothes are released")

	_, err = f.svc.DeleteBag(ctx, ownerA, bag.BagID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestBagLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.LabelSheet(ctx, ownerA)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	bag := f.bag(t, ownerA, "Shoes")
	pdf, err := f.svc.LabelSheet(ctx, ownerA)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(pdf[:5]))

	png, err := f.svc.BagLabel(ctx, ownerA, bag.BagID)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))

	_, err = f.svc.BagLabel(ctx, ownerB, bag.BagID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestCompareBagIDs(t *testing.T) {
	bags := []model.Bag{{BagID: "B10"}, {BagID: "X"}, {BagID: "B2"}, {BagID: "B1"}}
	sortBags(bags)
	got := make([]string, len(bags))
	for i, b := range bags {
		got[i] = b.BagID
	}
	assert.Equal(t, []string{"B1", "B2", "B10", "X"}, got)
}
