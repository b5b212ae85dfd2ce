// Package colour provides the 24-bit RGB value used for palettes and
// backgrounds.
package colour

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DarkenStep is how much each channel drops when a second gradient stop is
// synthesized.
const DarkenStep = 40

// RGB is an opaque 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// Gray is the placeholder background for slots whose palette is unknown.
var Gray = RGB{R: 0x6b, G: 0x72, B: 0x80}

// Black is used when a background carries no colours.
var Black = RGB{}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return RGB{}, fmt.Errorf("parse colour %q: want #rrggbb", s)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Hex formats the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string { return c.Hex() }

// NRGBA returns the colour as a fully opaque color.NRGBA.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Darken lowers every channel by DarkenStep, floored at zero.
func (c RGB) Darken() RGB {
	return RGB{R: sub(c.R), G: sub(c.G), B: sub(c.B)}
}

func sub(v uint8) uint8 {
	if v < DarkenStep {
		return 0
	}
	return v - DarkenStep
}

// Blend interpolates linearly in sRGB between a and b; t is clamped to [0,1].
func Blend(a, b RGB, t float64) RGB {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return RGB{R: r, G: g, B: bl}
}

// FromColor converts any color.Color, dropping alpha.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// MarshalText encodes the colour as "#rrggbb".
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts "#rrggbb" or "rrggbb".
func (c *RGB) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
