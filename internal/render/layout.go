package render

import (
	"image"
	"math"

	"github.com/AnyUserName/gridframe-cli/internal/format"
)

// Placement says where the scaled source lands on the canvas. Offset may be
// negative in FillCrop, meaning the source starts outside the canvas.
type Placement struct {
	Canvas image.Point // output size
	Size   image.Point // scaled source size
	Offset image.Point // top-left of the scaled source on the canvas
}

// Window returns the part of the scaled source visible on the canvas, in
// scaled-source coordinates.
func (pl Placement) Window() image.Rectangle {
	r := image.Rectangle{Max: pl.Canvas}.Sub(pl.Offset)
	return r.Intersect(image.Rectangle{Max: pl.Size})
}

// SourceRect maps Window back onto a srcW×srcH source, rounding outward
// to whole pixels. Cropping this first keeps the resample bounded by the
// canvas rather than by the source's aspect ratio.
func (pl Placement) SourceRect(srcW, srcH int) image.Rectangle {
	if pl.Size.X <= 0 || pl.Size.Y <= 0 {
		return image.Rectangle{}
	}
	win := pl.Window()
	x0 := clampInt(win.Min.X*srcW/pl.Size.X, 0, srcW-1)
	y0 := clampInt(win.Min.Y*srcH/pl.Size.Y, 0, srcH-1)
	x1 := clampInt(ceilDiv(win.Max.X*srcW, pl.Size.X), x0+1, srcW)
	y1 := clampInt(ceilDiv(win.Max.Y*srcH, pl.Size.Y), y0+1, srcH)
	return image.Rect(x0, y0, x1, y1)
}

// Layout computes the placement of a srcW×srcH image on f.
func Layout(srcW, srcH int, f format.Format, fill FillMode, a Anchor) Placement {
	dstW, dstH := f.Size()
	pl := Placement{Canvas: image.Pt(dstW, dstH)}
	if srcW <= 0 || srcH <= 0 {
		return pl
	}

	srcRatio := float64(srcW) / float64(srcH)
	dstRatio := float64(dstW) / float64(dstH)
	wide := srcRatio > dstRatio

	if fill == FillCrop {
		// Cover: bind the dimension that leaves no gap.
		var drawW, drawH float64
		if wide {
			drawH = float64(dstH)
			drawW = drawH * srcRatio
		} else {
			drawW = float64(dstW)
			drawH = drawW / srcRatio
		}
		w := max(dstW, round(drawW))
		h := max(dstH, round(drawH))
		a = a.Clamp()
		pl.Size = image.Pt(w, h)
		pl.Offset = image.Pt(-round(float64(w-dstW)*a.X), -round(float64(h-dstH)*a.Y))
		return pl
	}

	// Contain: bind the dimension that keeps the whole source visible.
	var drawW, drawH float64
	if wide {
		drawW = float64(dstW)
		drawH = drawW / srcRatio
	} else {
		drawH = float64(dstH)
		drawW = drawH * srcRatio
	}
	w := min(dstW, max(1, round(drawW)))
	h := min(dstH, max(1, round(drawH)))
	pl.Size = image.Pt(w, h)
	pl.Offset = image.Pt((dstW-w)/2, (dstH-h)/2)
	return pl
}

func round(v float64) int {
	return int(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
