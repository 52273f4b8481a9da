package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img.Bounds().Size()
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, edge   int
		wantW, wantH int
	}{
		{50, 50, 800, 50, 50},
		{800, 800, 800, 800, 800},
		{1600, 1200, 800, 800, 600},
		{1200, 1600, 800, 600, 800},
		{4000, 2, 800, 800, 1},
		{3, 5000, 64, 1, 64},
	}
	for _, tc := range cases {
		w, h := fit(tc.w, tc.h, tc.edge)
		assert.Equal(t, [2]int{tc.wantW, tc.wantH}, [2]int{w, h}, "%dx%d into %d", tc.w, tc.h, tc.edge)
	}
}

func TestProcessReencodesAsJPEG(t *testing.T) {
	for name, data := range map[string][]byte{
		"jpeg": encodeJPEG(t, solid(100, 60, color.RGBA{200, 30, 30, 255})),
		"png":  encodePNG(t, solid(100, 60, color.RGBA{30, 30, 200, 255})),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Process(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, OutputMIME, res.MIME)
			assert.Equal(t, 100, res.Width)
			assert.Equal(t, 60, res.Height)
			assert.NotEmpty(t, res.BlurHash)
			assert.Equal(t, image.Pt(100, 60), decodedSize(t, res.Data))
		})
	}
}

func TestProcessShrinksLargeImages(t *testing.T) {
	res, err := Process(bytes.NewReader(encodeJPEG(t, solid(1600, 1200, color.Gray{128}))))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(800, 600), decodedSize(t, res.Data))
	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 600, res.Height)
}

func TestProcessorOptions(t *testing.T) {
	p := NewProcessor(Options{MaxEdge: 40})
	res, err := p.Process(bytes.NewReader(encodePNG(t, solid(200, 100, color.White))))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 20), decodedSize(t, res.Data))

	tiny := NewProcessor(Options{MaxBytes: 16})
	_, err = tiny.Process(bytes.NewReader(encodePNG(t, solid(20, 20, color.White))))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestProcessFlattensTransparency(t *testing.T) {
	res, err := Process(bytes.NewReader(encodePNG(t, solid(10, 10, color.Transparent))))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcessRejectsUnsupported(t *testing.T) {
	for name, data := range map[string][]byte{
		"text": []byte("a pair of socks"),
		"gif":  []byte("GIF89a\x01\x00\x01\x00"),
		"bad":  {0xff, 0xd8, 0xff, 0x00, 0x01},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Process(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestProcessBase64Forms(t *testing.T) {
	raw := encodePNG(t, solid(20, 10, color.Black))
	padded := base64.StdEncoding.EncodeToString(raw)

	for name, payload := range map[string]string{
		"padded":   padded,
		"unpadded": base64.RawStdEncoding.EncodeToString(raw),
		"data uri": "data:image/png;base64," + padded,
		"spaces":   "  " + padded + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := ProcessBase64(payload)
			require.NoError(t, err)
			assert.Equal(t, 20, res.Width)
			assert.Equal(t, 10, res.Height)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	p := NewProcessor(DefaultOptions)
	for _, payload := range []string{"", "  ", "data:image/png,abc", "data:image/png;base64", "%%%not base64%%%"} {
		_, err := p.Decode(payload)
		assert.ErrorIs(t, err, ErrInvalidImage, "payload %q", payload)
	}
}
