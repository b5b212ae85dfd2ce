// Package palette derives a dominant colour and a short list of swatches
// from a decoded image. Used to seed the background behind letterboxed
// images.
package palette

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
)

const (
	// SampleStride: only every Nth pixel (row-major) is read.
	SampleStride = 5
	// MaxSwatches caps the palette length.
	MaxSwatches = 6

	alphaThreshold = 125
	whiteThreshold = 250
)

// ErrNoPixels is returned when the image has nothing to sample.
var ErrNoPixels = errors.New("palette: image has no samplable pixels")

// Palette is immutable once extracted.
type Palette struct {
	Dominant colour.RGB   `json:"dominant"`
	Swatches []colour.RGB `json:"swatches"`
}

// Extract samples img with the default stride and swatch count.
func Extract(img image.Image) (Palette, error) {
	return ExtractN(img, MaxSwatches, SampleStride)
}

// ExtractN samples every stride-th pixel and quantizes the samples into at
// most count swatches. Deterministic for a given image, count and stride.
func ExtractN(img image.Image, count, stride int) (Palette, error) {
	if img == nil {
		return Palette{}, ErrNoPixels
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Palette{}, ErrNoPixels
	}
	if count < 1 {
		count = 1
	}
	if stride < 1 {
		stride = 1
	}

	samples := sample(imaging.Clone(img), stride, true)
	if len(samples) == 0 {
		// Nearly-white images still get a palette.
		samples = sample(imaging.Clone(img), stride, false)
	}
	if len(samples) == 0 {
		return Palette{}, ErrNoPixels
	}

	swatches := quantize(samples, count)
	if len(swatches) == 0 {
		return Palette{}, ErrNoPixels
	}
	out := Palette{
		Dominant: swatches[0].rgb,
		Swatches: make([]colour.RGB, len(swatches)),
	}
	for i, s := range swatches {
		out.Swatches[i] = s.rgb
	}
	return out, nil
}

// sample reads every stride-th pixel. Mostly transparent pixels are always
// skipped; near-white ones only when skipWhite is set.
func sample(src *image.NRGBA, stride int, skipWhite bool) [][3]uint8 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	n := w * h
	out := make([][3]uint8, 0, n/stride+1)
	for i := 0; i < n; i += stride {
		x, y := i%w, i/w
		off := y*src.Stride + x*4
		r, g, b, a := src.Pix[off], src.Pix[off+1], src.Pix[off+2], src.Pix[off+3]
		if a < alphaThreshold {
			continue
		}
		if skipWhite && r > whiteThreshold && g > whiteThreshold && b > whiteThreshold {
			continue
		}
		out = append(out, [3]uint8{r, g, b})
	}
	return out
}
