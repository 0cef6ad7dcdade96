package certificates

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	// Decoders beyond the ones imaging registers.
	_ "golang.org/x/image/webp"
)

// DecodeImage parses an uploaded image. EXIF orientation is applied. Images
// with more than maxPixels pixels are rejected from their header alone;
// maxPixels <= 0 disables the check.
func DecodeImage(op string, data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, newError(KindImageDecode, op, errors.New("empty image"))
	}
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, newError(KindImageDecode, op, err)
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
			return nil, newError(KindImageDecode, op,
				fmt.Errorf("image is %dx%d, more than %d pixels", cfg.Width, cfg.Height, maxPixels))
		}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, newError(KindImageDecode, op, err)
	}
	return img, nil
}

// MaskCircular stretches photo to size×size with a Lanczos filter and clears
// every pixel whose centre lies outside the inscribed circle.
func MaskCircular(photo image.Image, size int) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := imaging.Resize(photo, size, size, imaging.Lanczos)
	if dst.Bounds().Dx() != size || dst.Bounds().Dy() != size {
		// Empty source image.
		return image.NewNRGBA(image.Rect(0, 0, size, size))
	}

	r := float64(size) / 2
	for y := 0; y < size; y++ {
		dy := float64(y) + 0.5 - r
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - r
			if dx*dx+dy*dy <= r*r {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = 0
			dst.Pix[i+1] = 0
			dst.Pix[i+2] = 0
			dst.Pix[i+3] = 0
		}
	}
	return dst
}
