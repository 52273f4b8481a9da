// Package labels renders printable bag labels: a Code128 barcode image for a
// single bag and an A4 PDF sheet for all of them.
package labels

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/erazemk/omara/internal/model"
)

const (
	moduleWidth = 3  // pixels per bar module
	barHeight   = 90 // pixels
	quietZone   = 10 // modules on each side
	captionRoom = 20 // pixels below the bars
)

// BarcodePNG renders value as a Code128 barcode with the value printed
// underneath.
func BarcodePNG(value string) ([]byte, error) {
	bars, err := barcodeImage(value)
	if err != nil {
		return nil, err
	}

	barsW := bars.Bounds().Dx()
	margin := quietZone * moduleWidth
	canvas := image.NewRGBA(image.Rect(0, 0, barsW+2*margin, barHeight+captionRoom+margin))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(margin, margin/2, margin+barsW, margin/2+barHeight), bars, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	textW := d.MeasureString(value).Ceil()
	d.Dot = fixed.P((canvas.Bounds().Dx()-textW)/2, margin/2+barHeight+captionRoom-4)
	d.DrawString(value)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding barcode: %w", err)
	}
	return buf.Bytes(), nil
}

// barcodeImage returns the bars only, scaled to moduleWidth.
func barcodeImage(value string) (barcode.Barcode, error) {
	bc, err := code128.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("encoding barcode %q: %w", value, err)
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*moduleWidth, barHeight)
	if err != nil {
		return nil, fmt.Errorf("scaling barcode: %w", err)
	}
	return scaled, nil
}

// Sheet layout in points on A4 (595 x 842).
const (
	perRow     = 2
	perPage    = 4
	cellWidth  = 220.0
	cellHeight = 120.0
	pageMargin = 50.0
	cellGap    = 30.0
	firstRowY  = 120.0
	rowStride  = cellHeight + 60
	footerY    = 750.0
)

// Sheet renders bags, in the order given, as a PDF with four labels per page.
func Sheet(bags []model.Bag, generated time.Time) ([]byte, error) {
	if len(bags) == 0 {
		return nil, fmt.Errorf("no bags to render")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("Bag Barcodes", true)
	pdf.SetCreator("omara", true)
	pdf.SetCreationDate(generated)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	footer := "Generated on " + generated.Format("2006-01-02")
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(pageMargin, footerY)
		pdf.CellFormat(595-2*pageMargin, 12, footer, "", 0, "C", false, 0, "")
	})

	for i, bag := range bags {
		if i%perPage == 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 24)
			pdf.SetXY(pageMargin, pageMargin)
			pdf.CellFormat(595-2*pageMargin, 30, "Bag Barcodes", "", 0, "C", false, 0, "")
		}

		col := i % perRow
		row := (i % perPage) / perRow
		x := pageMargin + float64(col)*(cellWidth+cellGap)
		y := firstRowY + float64(row)*rowStride

		pdf.SetLineWidth(1)
		pdf.Rect(x-10, y-30, cellWidth+20, cellHeight+50, "D")

		pdf.SetFont("Helvetica", "", 14)
		pdf.SetXY(x, y-20)
		pdf.CellFormat(cellWidth, 16, tr(bag.BagID+": "+bag.Name), "", 0, "C", false, 0, "")

		img, err := BarcodePNG(bag.BarcodeValue)
		if err != nil {
			return nil, fmt.Errorf("rendering label for %s: %w", bag.BagID, err)
		}
		name := "barcode-" + bag.BarcodeValue
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		pdf.ImageOptions(name, x+10, y+10, cellWidth-20, 60, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
