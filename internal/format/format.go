// Package format holds the fixed catalog of output canvases and picks the
// closest one for a source image.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Format is one of the supported output canvases.
type Format int

const (
	Portrait Format = iota
	Square
	Landscape
)

// Spec describes a format's pixel size and canonical aspect ratio.
type Spec struct {
	Name   string
	Width  int
	Height int
	Ratio  float64 // width / height
}

// Built-in catalog, in declaration order. Detection ties resolve to the
// earlier entry.
var catalog = [...]Spec{
	Portrait:  {Name: "portrait", Width: 1080, Height: 1350, Ratio: 4.0 / 5.0},
	Square:    {Name: "square", Width: 1080, Height: 1080, Ratio: 1},
	Landscape: {Name: "landscape", Width: 1080, Height: 566, Ratio: 1.91},
}

// All returns every format in catalog order.
func All() []Format {
	return []Format{Portrait, Square, Landscape}
}

// Spec returns the catalog entry for f. Unknown values fall back to Portrait.
func (f Format) Spec() Spec {
	if !f.Valid() {
		return catalog[Portrait]
	}
	return catalog[f]
}

// Valid reports whether f is a catalog entry.
func (f Format) Valid() bool {
	return f >= Portrait && f <= Landscape
}

// Size returns the output dimensions in pixels.
func (f Format) Size() (int, int) {
	s := f.Spec()
	return s.Width, s.Height
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("format(%d)", int(f))
	}
	return catalog[f].Name
}

// Parse resolves a format by name, case-insensitively.
func Parse(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range All() {
		if catalog[f].Name == n {
			return f, nil
		}
	}
	return Portrait, fmt.Errorf("unknown format %q (want portrait, square or landscape)", name)
}

// Detect returns the format whose ratio is closest to width/height.
// Non-positive dimensions are treated as 1.
func Detect(width, height int) Format {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	ratio := float64(width) / float64(height)

	best := Portrait
	bestDist := math.Inf(1)
	for _, f := range All() {
		d := math.Abs(ratio - catalog[f].Ratio)
		if d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}
