package closet

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/metrics"
)

func TestResolveScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bag := f.bag(t, ownerA, "Gym")
	other := f.bag(t, ownerA, "Other")
	first := f.cloth(t, ownerA, bag.BagID, "Socks", "white")
	second := f.cloth(t, ownerA, bag.BagID, "Towel", "blue")
	f.cloth(t, ownerA, other.BagID, "Hat", "red")

	res, err := f.svc.ResolveScan(ctx, ownerA, bag.BarcodeValue)
	require.NoError(t, err)
	assert.Equal(t, bag.BagID, res.Bag.BagID)
	require.Len(t, res.Clothes, 2)
	assert.Equal(t, second.ClothID, res.Clothes[0].ClothID, "newest first")
	assert.Equal(t, first.ClothID, res.Clothes[1].ClothID)
	for _, c := range res.Clothes {
		assert.Equal(t, "Gym", c.BagName)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Scans.WithLabelValues(metrics.ScanFound)))
}

func TestResolveScanEmptyBag(t *testing.T) {
	f := newFixture(t)
	bag := f.bag(t, ownerA, "Empty")

	res, err := f.svc.ResolveScan(context.Background(), ownerA, bag.BarcodeValue)
	require.NoError(t, err)
	assert.NotNil(t, res.Clothes)
	assert.Empty(t, res.Clothes)
}

func TestResolveScanIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bag := f.bag(t, ownerA, "Private")
	f.cloth(t, ownerA, bag.BagID, "Diary", "black")

	_, err := f.svc.ResolveScan(ctx, ownerB, bag.BarcodeValue)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = f.svc.ResolveScan(ctx, ownerA, "BAG-FFFFFFFF")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Scans.WithLabelValues(metrics.ScanNotFound)))
}
