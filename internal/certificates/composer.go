package certificates

import (
	"image"
	"io"

	"certificate-portal/certificate-backend/pkg/pdf"
)

// Artifacts are the per-request intermediates drawn next to the request's
// own text and images.
type Artifacts struct {
	Tracking Tracking
	Barcode  image.Image
	Photo    image.Image // already masked
}

// Composer draws certificates onto a fixed layout.
type Composer struct {
	layout    Layout
	compress  bool
	maxPixels int64
}

// NewComposer returns a composer drawing on layout. Background and signature
// uploads larger than maxPixels are rejected before decoding.
func NewComposer(layout Layout, compress bool, maxPixels int64) *Composer {
	return &Composer{layout: layout, compress: compress, maxPixels: maxPixels}
}

// Layout returns the geometry the composer draws with.
func (c *Composer) Layout() Layout {
	return c.layout
}

// Compose renders one page and writes the finished PDF to w. Nothing is
// written unless every element was placed.
func (c *Composer) Compose(w io.Writer, req *Request, a Artifacts) error {
	background, err := DecodeImage("decode background", req.Background, c.maxPixels)
	if err != nil {
		return err
	}
	signature, err := DecodeImage("decode signature", req.Signature, c.maxPixels)
	if err != nil {
		return err
	}

	l := c.layout
	canvas := pdf.NewCanvas(pdf.Options{
		Size:         l.Page,
		Compress:     c.compress,
		CreationDate: a.Tracking.IssuedAt,
		Title:        Heading,
		Subject:      string(a.Tracking.Code),
	})

	page := Box{Width: l.Page.Width, Height: l.Page.Height}
	if err := drawImage(canvas, "background", background, pdf.JPEG, page); err != nil {
		return err
	}

	drawLines(canvas, l.HeaderLines(a.Tracking))
	if err := drawImage(canvas, "barcode", a.Barcode, pdf.PNG, l.Barcode); err != nil {
		return err
	}

	if err := drawImage(canvas, "photo", a.Photo, pdf.PNG, l.Photo); err != nil {
		return err
	}
	canvas.StrokeCircle(l.Ring.X, l.Ring.Y, l.Ring.Radius, l.Ring.LineWidth, l.Ring.Color)

	drawLines(canvas, l.BodyLines(req))
	drawLines(canvas, l.IssuerLines(req))
	if err := drawImage(canvas, "signature", signature, pdf.PNG, l.Signature); err != nil {
		return err
	}
	drawLines(canvas, l.FooterLines())

	if err := canvas.Err(); err != nil {
		return newError(KindRender, "draw certificate", err)
	}
	if err := canvas.Output(w); err != nil {
		return newError(KindRender, "write certificate", err)
	}
	return nil
}

func drawImage(canvas *pdf.Canvas, name string, img image.Image, format pdf.ImageFormat, b Box) error {
	if img == nil {
		return newError(KindRender, "place "+name, errMissingImage)
	}
	if err := canvas.DrawImage(name, img, format, b.X, b.Y, b.Width, b.Height); err != nil {
		return newError(KindRender, "place "+name, err)
	}
	return nil
}

func drawLines(canvas *pdf.Canvas, lines []Line) {
	for _, line := range lines {
		canvas.SetFont(line.Font.Family, line.Font.Style, line.Font.Size)
		switch line.Align {
		case AlignCenter:
			canvas.DrawCentredString(line.X, line.Y, line.Text)
		case AlignRight:
			canvas.DrawRightString(line.X, line.Y, line.Text)
		default:
			canvas.DrawString(line.X, line.Y, line.Text)
		}
	}
}
