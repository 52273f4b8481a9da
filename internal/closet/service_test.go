package closet

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/imagestore"
	"github.com/erazemk/omara/internal/metrics"
	"github.com/erazemk/omara/internal/model"
)

const (
	ownerA = "u-alice"
	ownerB = "u-bob"
)

// stepClock advances one second on every reading so timestamps are distinct.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc     *Service
	db      *db.DB
	images  *imagestore.Memory
	metrics *metrics.Metrics
	clock   *stepClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		db:      db.NewTestDB(t),
		images:  imagestore.NewMemory("http://localhost:8080"),
		metrics: metrics.New(),
		clock:   &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.svc = New(f.db, f.images, f.metrics, opts...)
	return f
}

func (f *fixture) bag(t *testing.T, owner, name string) *model.Bag {
	t.Helper()
	bag, err := f.svc.CreateBag(context.Background(), owner, BagInput{Name: name})
	require.NoError(t, err)
	return bag
}

func (f *fixture) cloth(t *testing.T, owner, bagID, name, color string) *model.Cloth {
	t.Helper()
	c, err := f.svc.CreateCloth(context.Background(), owner, ClothInput{
		Name:           name,
		Color:          color,
		ContainerBagID: bagID,
		ImageBase64:    testImage(t),
	})
	require.NoError(t, err)
	return c
}

// testImage returns a small PNG as base64.
func testImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func strPtr(s string) *string { return &s }
