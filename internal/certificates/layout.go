package certificates

import (
	"certificate-portal/certificate-backend/pkg/pdf"
)

// FontFamily is used for every line of text.
const FontFamily = "Helvetica"

// Heading is the fixed certificate heading.
const Heading = "Certificate of Assignment"

var footerText = []string{
	"KHMER DEMOCRACY ORGANIZATION(KDO) INC.",
	"6 Temple CT, Noble Park, Vic 3174",
	"Email: hq@kdo.org.au | Phone: (+61)0395444950",
	"Website: kdo.org.au",
}

// Align is the horizontal anchoring of a text line.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type Font struct {
	Family string  `json:"family"`
	Style  string  `json:"style"`
	Size   float64 `json:"size"`
}

var (
	fontSmall   = Font{FontFamily, "", 10}
	fontFooter  = Font{FontFamily, "", 12}
	fontBody    = Font{FontFamily, "", 14}
	fontName    = Font{FontFamily, "B", 20}
	fontHeading = Font{FontFamily, "B", 24}
)

// TextSlot anchors a line of text. Coordinates are points from the
// bottom-left corner of the page.
type TextSlot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Align Align   `json:"align"`
	Font  Font    `json:"font"`
}

// Box is a rectangle given by its lower-left corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Ring is the stroked circle drawn around the photo.
type Ring struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Radius    float64   `json:"radius"`
	LineWidth float64   `json:"line_width"`
	Color     pdf.Color `json:"-"`
}

// Line is a piece of text placed in a slot.
type Line struct {
	TextSlot
	Text string `json:"text"`
}

// Layout holds the position of every element on the page.
type Layout struct {
	Page pdf.Size

	Code      TextSlot
	Timestamp TextSlot
	Barcode   Box

	Photo Box
	Ring  Ring

	Heading       TextSlot
	CertifiesThat TextSlot
	FullName      TextSlot
	DateOfBirth   TextSlot
	AssignedAs    TextSlot
	Title         TextSlot
	IssueDate     TextSlot

	IssuedBy  TextSlot
	Position  TextSlot
	Signature Box

	Footer []TextSlot
}

// NewLayout computes the certificate geometry for a page of the given size.
func NewLayout(page pdf.Size) Layout {
	w, h := page.Width, page.Height
	center := func(y float64, f Font) TextSlot {
		return TextSlot{X: w / 2, Y: y, Align: AlignCenter, Font: f}
	}
	left := func(x, y float64, f Font) TextSlot {
		return TextSlot{X: x, Y: y, Align: AlignLeft, Font: f}
	}

	const photoSize = 150
	photo := Box{X: (w - photoSize) / 2, Y: h*0.7 - photoSize/2, Width: photoSize, Height: photoSize}

	l := Layout{
		Page: page,

		Code:      TextSlot{X: w - 50, Y: h - 50, Align: AlignRight, Font: fontSmall},
		Timestamp: TextSlot{X: w - 50, Y: h - 70, Align: AlignRight, Font: fontSmall},
		Barcode:   Box{X: w - 150, Y: h - 120, Width: 100, Height: 50},

		Photo: photo,
		Ring: Ring{
			X:         photo.X + photo.Width/2,
			Y:         photo.Y + photo.Height/2,
			Radius:    photo.Width / 2,
			LineWidth: 2,
			Color:     pdf.White,
		},

		Heading:       center(h-400, fontHeading),
		CertifiesThat: center(h-500, fontBody),
		FullName:      center(h-530, fontName),
		DateOfBirth:   center(h-560, fontBody),
		AssignedAs:    center(h-590, fontBody),
		Title:         center(h-620, fontHeading),
		IssueDate:     center(h-640, fontBody),

		IssuedBy:  left(400, 150, fontBody),
		Position:  left(400, 130, fontBody),
		Signature: Box{X: 400, Y: 60, Width: 100, Height: 50},
	}
	for _, y := range []float64{50, 30, 20, 5} {
		l.Footer = append(l.Footer, left(50, y, fontFooter))
	}
	return l
}

// HeaderLines returns the tracking code and timestamp lines.
func (l Layout) HeaderLines(t Tracking) []Line {
	return []Line{
		{l.Code, "Code: " + string(t.Code)},
		{l.Timestamp, "Generated: " + t.Timestamp},
	}
}

// BodyLines returns the heading, recipient block, title and issue date.
func (l Layout) BodyLines(req *Request) []Line {
	return []Line{
		{l.Heading, Heading},
		{l.CertifiesThat, "This certifies that"},
		{l.FullName, req.FullName},
		{l.DateOfBirth, "born on " + req.DateOfBirth},
		{l.AssignedAs, "has been assigned as"},
		{l.Title, req.Title},
		{l.IssueDate, "Issued on: " + req.IssueDate},
	}
}

// IssuerLines returns the issuer name and position.
func (l Layout) IssuerLines(req *Request) []Line {
	return []Line{
		{l.IssuedBy, "Issued By: " + req.IssuedByName},
		{l.Position, "Position: " + req.IssuedByPosition},
	}
}

// FooterLines returns the organization footer.
func (l Layout) FooterLines() []Line {
	lines := make([]Line, 0, len(l.Footer))
	for i, slot := range l.Footer {
		lines = append(lines, Line{slot, footerText[i]})
	}
	return lines
}

// Lines returns every text line of the certificate in drawing order.
func (l Layout) Lines(req *Request, t Tracking) []Line {
	var lines []Line
	lines = append(lines, l.HeaderLines(t)...)
	lines = append(lines, l.BodyLines(req)...)
	lines = append(lines, l.IssuerLines(req)...)
	lines = append(lines, l.FooterLines()...)
	return lines
}
