// Package pdf wraps gofpdf with a single page canvas whose coordinates are
// measured in points from the bottom-left corner of the page.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// A4 matches gofpdf's built-in A4 page.
var A4 = Size{Width: 595.28, Height: 841.89}

// ImageFormat selects how a raster is embedded.
type ImageFormat string

const (
	JPEG ImageFormat = "JPG"
	PNG  ImageFormat = "PNG"
)

// Color represents an RGB color
type Color struct {
	R, G, B int
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// Options configures a Canvas.
type Options struct {
	Size         Size
	Compress     bool
	CreationDate time.Time
	Title        string
	Subject      string
	Creator      string
}

// Canvas draws on one page. Errors are sticky: after the first failure every
// drawing call is a no-op and Err reports the failure.
type Canvas struct {
	fpdf      *gofpdf.Fpdf
	size      Size
	translate func(string) string
}

// NewCanvas creates a document with a single page of opts.Size.
func NewCanvas(opts Options) *Canvas {
	if opts.Size == (Size{}) {
		opts.Size = A4
	}

	f := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opts.Size.Width, Ht: opts.Size.Height},
	})
	f.SetCompression(opts.Compress)
	f.SetCatalogSort(true)
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	if !opts.CreationDate.IsZero() {
		f.SetCreationDate(opts.CreationDate)
	}
	if opts.Title != "" {
		f.SetTitle(opts.Title, true)
	}
	if opts.Subject != "" {
		f.SetSubject(opts.Subject, true)
	}
	if opts.Creator != "" {
		f.SetCreator(opts.Creator, true)
	}
	f.AddPage()

	return &Canvas{
		fpdf:      f,
		size:      opts.Size,
		translate: f.UnicodeTranslatorFromDescriptor(""),
	}
}

// Size returns the page size.
func (c *Canvas) Size() Size {
	return c.size
}

// flip converts a bottom-left based y coordinate to gofpdf's top-left one.
func (c *Canvas) flip(y float64) float64 {
	return c.size.Height - y
}

// SetFont selects a core font; style is "", "B", "I" or "BI".
func (c *Canvas) SetFont(family, style string, size float64) {
	c.fpdf.SetFont(family, style, size)
}

// SetFillColor sets the color used for text.
func (c *Canvas) SetFillColor(col Color) {
	c.fpdf.SetTextColor(col.R, col.G, col.B)
	c.fpdf.SetFillColor(col.R, col.G, col.B)
}

// StringWidth returns the width of s in the current font.
func (c *Canvas) StringWidth(s string) float64 {
	return c.fpdf.GetStringWidth(c.translate(s))
}

// DrawString draws s with its baseline starting at (x, y). Text is encoded
// as cp1252 for the core fonts; any rune outside it is drawn as '.'.
func (c *Canvas) DrawString(x, y float64, s string) {
	c.fpdf.Text(x, c.flip(y), c.translate(s))
}

// DrawRightString draws s so that it ends at (x, y).
func (c *Canvas) DrawRightString(x, y float64, s string) {
	c.DrawString(x-c.StringWidth(s), y, s)
}

// DrawCentredString draws s horizontally centred on (x, y).
func (c *Canvas) DrawCentredString(x, y float64, s string) {
	c.DrawString(x-c.StringWidth(s)/2, y, s)
}

// DrawImage embeds img under name and scales it into the w×h box whose
// lower-left corner is (x, y). Images with transparency must use PNG.
func (c *Canvas) DrawImage(name string, img image.Image, format ImageFormat, x, y, w, h float64) error {
	if err := c.fpdf.Error(); err != nil {
		return err
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case JPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(92))
	case PNG:
		// gofpdf only reads 8-bit PNGs.
		err = imaging.Encode(&buf, imaging.Clone(img), imaging.PNG)
	default:
		err = fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image %s: %w", name, err)
	}

	opts := gofpdf.ImageOptions{ImageType: string(format)}
	c.fpdf.RegisterImageOptionsReader(name, opts, &buf)
	if err := c.fpdf.Error(); err != nil {
		return fmt.Errorf("failed to place image %s: %w", name, err)
	}
	c.fpdf.ImageOptions(name, x, c.flip(y+h), w, h, false, opts, 0, "")
	return c.fpdf.Error()
}

// StrokeCircle draws the outline of a circle centred on (x, y).
func (c *Canvas) StrokeCircle(x, y, r, lineWidth float64, col Color) {
	c.fpdf.SetDrawColor(col.R, col.G, col.B)
	c.fpdf.SetLineWidth(lineWidth)
	c.fpdf.Circle(x, c.flip(y), r, "D")
}

// PageCount returns the number of pages in the document.
func (c *Canvas) PageCount() int {
	return c.fpdf.PageCount()
}

// Err reports the first error encountered while drawing.
func (c *Canvas) Err() error {
	return c.fpdf.Error()
}

// Output finalizes the document and writes it to w.
func (c *Canvas) Output(w io.Writer) error {
	if err := c.fpdf.Error(); err != nil {
		return err
	}
	return c.fpdf.Output(w)
}
