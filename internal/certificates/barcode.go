package certificates

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code39"
	"github.com/disintegration/imaging"
)

// code39Alphabet lists the characters Code 39 encodes without full ASCII
// mode.
const code39Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

const (
	barModuleWidth = 2
	barHeight      = 100
	barQuietZone   = 10 * barModuleWidth
)

// EncodeBarcode renders code as an opaque Code 39 raster with a white quiet
// zone on both sides. No check digit is appended.
func EncodeBarcode(code TrackingCode) (*image.NRGBA, error) {
	if code == "" {
		return nil, newError(KindEncoding, "encode barcode", fmt.Errorf("empty code"))
	}
	for _, r := range string(code) {
		if !strings.ContainsRune(code39Alphabet, r) {
			return nil, newError(KindEncoding, "encode barcode", fmt.Errorf("character %q is not in the Code 39 alphabet", r))
		}
	}

	bc, err := code39.Encode(string(code), false, false)
	if err != nil {
		return nil, newError(KindEncoding, "encode barcode", err)
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*barModuleWidth, barHeight)
	if err != nil {
		return nil, newError(KindEncoding, "scale barcode", err)
	}

	bounds := scaled.Bounds()
	canvas := imaging.New(bounds.Dx()+2*barQuietZone, bounds.Dy(), color.White)
	return imaging.Paste(canvas, scaled, image.Pt(barQuietZone, 0)), nil
}
