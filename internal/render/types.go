package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
	"github.com/AnyUserName/gridframe-cli/internal/format"
)

// FillMode selects how a source is placed on the canvas.
type FillMode int

const (
	// FillBackground letterboxes/pillarboxes the whole source over a filled canvas.
	FillBackground FillMode = iota
	// FillCrop covers the canvas and crops the excess around the anchor.
	FillCrop
)

func (m FillMode) String() string {
	switch m {
	case FillBackground:
		return "background"
	case FillCrop:
		return "crop"
	}
	return fmt.Sprintf("fill(%d)", int(m))
}

// ParseFillMode resolves "background" or "crop".
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "background", "contain":
		return FillBackground, nil
	case "crop", "cover":
		return FillCrop, nil
	}
	return FillBackground, fmt.Errorf("unknown fill mode %q (want background or crop)", s)
}

// BackgroundKind tags a Background.
type BackgroundKind int

const (
	Solid BackgroundKind = iota
	Gradient
)

func (k BackgroundKind) String() string {
	if k == Gradient {
		return "gradient"
	}
	return "solid"
}

// ParseBackgroundKind resolves "solid" or "gradient".
func ParseBackgroundKind(s string) (BackgroundKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solid":
		return Solid, nil
	case "gradient":
		return Gradient, nil
	}
	return Solid, fmt.Errorf("unknown background %q (want solid or gradient)", s)
}

// ErrNoColors is returned for a background without any colour.
var ErrNoColors = errors.New("render: background has no colours")

// Background fills the canvas behind a contained image. Solid uses
// Colors[0]; Gradient runs all Colors top to bottom.
type Background struct {
	Kind   BackgroundKind `json:"kind"`
	Colors []colour.RGB   `json:"colors"`
}

// SolidBackground returns a single-colour fill.
func SolidBackground(c colour.RGB) Background {
	return Background{Kind: Solid, Colors: []colour.RGB{c}}
}

// GradientBackground returns a vertical gradient through cs.
func GradientBackground(cs ...colour.RGB) Background {
	return Background{Kind: Gradient, Colors: append([]colour.RGB(nil), cs...)}
}

// Stops returns the colours actually painted. A gradient always has at least
// two stops: a single colour gets a darkened copy appended.
func (b Background) Stops() ([]colour.RGB, error) {
	if len(b.Colors) == 0 {
		return nil, ErrNoColors
	}
	if b.Kind == Solid {
		return b.Colors[:1], nil
	}
	if len(b.Colors) == 1 {
		return []colour.RGB{b.Colors[0], b.Colors[0].Darken()}, nil
	}
	return append([]colour.RGB(nil), b.Colors...), nil
}

// Clone returns a copy that shares no backing array with b.
func (b Background) Clone() Background {
	return Background{Kind: b.Kind, Colors: append([]colour.RGB(nil), b.Colors...)}
}

// Anchor picks which excess is cropped in FillCrop: 0 keeps the left/top
// edge, 1 keeps the right/bottom edge.
type Anchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is the default anchor.
var Center = Anchor{X: 0.5, Y: 0.5}

// Clamp limits both coordinates to [0,1].
func (a Anchor) Clamp() Anchor {
	return Anchor{X: clamp01(a.X), Y: clamp01(a.Y)}
}

func clamp01(v float64) float64 {
	switch {
	case v != v, v < 0: // NaN or negative
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Params is everything a render depends on besides the source pixels.
type Params struct {
	Format     format.Format `json:"format"`
	Fill       FillMode      `json:"fill"`
	Background Background    `json:"background"`
	Anchor     Anchor        `json:"anchor"`
}

// Clone deep-copies p.
func (p Params) Clone() Params {
	p.Background = p.Background.Clone()
	return p
}
