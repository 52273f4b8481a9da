// Package imaging normalizes uploaded cloth photos: it sniffs the format,
// bounds the size, flattens transparency and re-encodes as JPEG with a
// blurhash placeholder.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrInvalidImage is returned for payloads that are not a supported image.
var ErrInvalidImage = errors.New("invalid image")

// OutputMIME is the content type of every processed image.
const OutputMIME = "image/jpeg"

var acceptedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Options bound the processed output.
type Options struct {
	MaxEdge  int // longest side in pixels
	Quality  int // JPEG quality, 1-100
	MaxBytes int // largest accepted input
	HashSide int // thumbnail edge the blurhash is computed on
}

// DefaultOptions are used by the package-level helpers.
var DefaultOptions = Options{MaxEdge: 800, Quality: 85, MaxBytes: 8 << 20, HashSide: 64}

// Result is a processed image.
type Result struct {
	Data     []byte
	MIME     string
	Width    int
	Height   int
	BlurHash string
}

// Processor applies Options to uploads.
type Processor struct {
	opts Options
}

// NewProcessor returns a Processor, filling zero fields from DefaultOptions.
func NewProcessor(opts Options) *Processor {
	if opts.MaxEdge <= 0 {
		opts.MaxEdge = DefaultOptions.MaxEdge
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultOptions.Quality
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultOptions.MaxBytes
	}
	if opts.HashSide <= 0 {
		opts.HashSide = DefaultOptions.HashSide
	}
	return &Processor{opts: opts}
}

var defaultProcessor = NewProcessor(DefaultOptions)

// ProcessBase64 runs a base64 payload through the default processor.
func ProcessBase64(payload string) (*Result, error) {
	return defaultProcessor.ProcessBase64(payload)
}

// Process runs r through the default processor.
func Process(r io.Reader) (*Result, error) {
	return defaultProcessor.Process(r)
}

// Decode accepts raw base64, unpadded base64 or a data URI
// ("data:image/png;base64,...").
func (p *Processor) Decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, body, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
		}
		payload = body
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > p.opts.MaxBytes {
		return nil, p.tooLarge()
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidImage, err)
	}
	return data, nil
}

// ProcessBase64 decodes payload and processes it.
func (p *Processor) ProcessBase64(payload string) (*Result, error) {
	data, err := p.Decode(payload)
	if err != nil {
		return nil, err
	}
	return p.Process(bytes.NewReader(data))
}

// Process validates the format from the bytes themselves, shrinks the image
// to fit MaxEdge and re-encodes it.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(p.opts.MaxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > p.opts.MaxBytes {
		return nil, p.tooLarge()
	}

	if mime := http.DetectContentType(data); !acceptedMIME[mime] {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, mime)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img := onWhite(resize(src, p.opts.MaxEdge))

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: p.opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	hash, err := blurhash.Encode(4, 3, resize(img, p.opts.HashSide))
	if err != nil {
		return nil, fmt.Errorf("encode blurhash: %w", err)
	}

	size := img.Bounds().Size()
	return &Result{
		Data:     out.Bytes(),
		MIME:     OutputMIME,
		Width:    size.X,
		Height:   size.Y,
		BlurHash: hash,
	}, nil
}

func (p *Processor) tooLarge() error {
	return fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, p.opts.MaxBytes)
}

// fit scales w x h down so the longer side is at most edge, keeping the
// aspect ratio. Neither side drops below 1.
func fit(w, h, edge int) (int, int) {
	if w <= edge && h <= edge {
		return w, h
	}
	long, short := w, h
	if h > w {
		long, short = h, w
	}
	scaled := max(1, short*edge/long)
	if w >= h {
		return edge, scaled
	}
	return scaled, edge
}

func resize(img image.Image, edge int) image.Image {
	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), edge)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// onWhite composites img over a white canvas; JPEG has no alpha.
func onWhite(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
	image.RegisterFormat("webp", "RIFF????WEBPVP8", webp.Decode, webp.DecodeConfig)
}
