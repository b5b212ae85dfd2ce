// Package render composites a decoded source onto one of the fixed output
// canvases, either contained over a background fill or cover-cropped around
// an anchor.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
	"github.com/AnyUserName/gridframe-cli/internal/encoder"
)

// ErrInvalidSource is returned for a nil or empty source image.
var ErrInvalidSource = errors.New("render: source image is empty")

// Compose draws src onto a new canvas sized for p.Format.
func Compose(ctx context.Context, src image.Image, p Params) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrInvalidSource
	}
	if !p.Format.Valid() {
		return nil, fmt.Errorf("render: unknown format %d", int(p.Format))
	}

	b := src.Bounds()
	pl := Layout(b.Dx(), b.Dy(), p.Format, p.Fill, p.Anchor)

	var canvas *image.NRGBA
	switch p.Fill {
	case FillCrop:
		// Nothing shows through except transparent source pixels.
		canvas = imaging.New(pl.Canvas.X, pl.Canvas.Y, colour.Black.NRGBA())
	case FillBackground:
		stops, err := p.Background.Stops()
		if err != nil {
			return nil, err
		}
		canvas = fill(pl.Canvas.X, pl.Canvas.Y, stops)
	default:
		return nil, fmt.Errorf("render: unknown fill mode %d", int(p.Fill))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.Fill == FillCrop {
		// Crop in source space, then resample straight to the canvas.
		visible := imaging.Crop(src, pl.SourceRect(b.Dx(), b.Dy()).Add(b.Min))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scaled := imaging.Resize(visible, pl.Canvas.X, pl.Canvas.Y, imaging.Lanczos)
		return imaging.Overlay(canvas, scaled, image.Point{}, 1.0), nil
	}

	scaled := imaging.Resize(src, pl.Size.X, pl.Size.Y, imaging.Lanczos)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Overlay(canvas, scaled, pl.Offset, 1.0), nil
}

// fill paints stops top to bottom. One stop is a flat fill.
func fill(w, h int, stops []colour.RGB) *image.NRGBA {
	if len(stops) == 1 {
		return imaging.New(w, h, stops[0].NRGBA())
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	segments := float64(len(stops) - 1)
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		pos := t * segments
		i := int(pos)
		if i >= len(stops)-1 {
			i = len(stops) - 2
		}
		c := colour.Blend(stops[i], stops[i+1], pos-float64(i))

		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = c.R, c.G, c.B, 0xff
		}
	}
	return img
}

// Renderer composes and encodes a source. The store and the export
// pipeline depend on this so tests can count or fail renders.
type Renderer interface {
	Render(ctx context.Context, src image.Image, p Params, quality int) ([]byte, error)
}

// Compositor renders and encodes in one step.
type Compositor struct {
	Encoder encoder.Encoder
}

// NewCompositor returns a compositor that writes JPEG.
func NewCompositor() *Compositor {
	return &Compositor{Encoder: encoder.Default()}
}

// Render composes src with p and encodes the result at quality.
func (c *Compositor) Render(ctx context.Context, src image.Image, p Params, quality int) ([]byte, error) {
	img, err := Compose(ctx, src, p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc := c.Encoder
	if enc == nil {
		enc = encoder.Default()
	}
	data, err := enc.Encode(img, quality)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}
	return data, nil
}
