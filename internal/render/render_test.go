package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
	"github.com/AnyUserName/gridframe-cli/internal/encoder"
	"github.com/AnyUserName/gridframe-cli/internal/format"
)

var (
	red  = color.NRGBA{R: 220, G: 10, B: 10, A: 255}
	blue = color.NRGBA{R: 10, G: 10, B: 220, A: 255}
)

func solidImg(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// halves paints the left half a and the right half b.
func halves(w, h int, a, b color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetNRGBA(x, y, a)
			} else {
				img.SetNRGBA(x, y, b)
			}
		}
	}
	return img
}

func closeTo(c color.NRGBA, want color.NRGBA) bool {
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return d(c.R, want.R) <= 6 && d(c.G, want.G) <= 6 && d(c.B, want.B) <= 6
}

func TestContain_SameAspectHasNoBorder(t *testing.T) {
	bg := SolidBackground(colour.RGB{G: 255})
	out, err := Compose(context.Background(), solidImg(108, 135, red), Params{
		Format: format.Portrait, Fill: FillBackground, Background: bg, Anchor: Center,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 1080 || b.Dy() != 1350 {
		t.Fatalf("size %v", b)
	}
	for _, p := range []image.Point{{0, 0}, {1079, 0}, {0, 1349}, {1079, 1349}, {540, 0}, {0, 675}} {
		if c := out.NRGBAAt(p.X, p.Y); !closeTo(c, red) {
			t.Errorf("pixel %v = %v, want source colour", p, c)
		}
	}
}

func TestContain_WideSourceIsLetterboxed(t *testing.T) {
	green := colour.RGB{G: 200}
	out, err := Compose(context.Background(), solidImg(200, 100, red), Params{
		Format: format.Square, Fill: FillBackground, Background: SolidBackground(green),
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if c := out.NRGBAAt(540, 100); !closeTo(c, green.NRGBA()) {
		t.Errorf("top bar pixel = %v, want background", c)
	}
	if c := out.NRGBAAt(540, 1000); !closeTo(c, green.NRGBA()) {
		t.Errorf("bottom bar pixel = %v, want background", c)
	}
	if c := out.NRGBAAt(540, 540); !closeTo(c, red) {
		t.Errorf("centre pixel = %v, want source", c)
	}
}

func TestLayout_Contain(t *testing.T) {
	pl := Layout(200, 100, format.Square, FillBackground, Center)
	if pl.Size != image.Pt(1080, 540) || pl.Offset != image.Pt(0, 270) {
		t.Errorf("wide: %+v", pl)
	}
	pl = Layout(100, 400, format.Square, FillBackground, Center)
	if pl.Size != image.Pt(270, 1080) || pl.Offset != image.Pt(405, 0) {
		t.Errorf("tall: %+v", pl)
	}
}

func TestLayout_CoverAnchors(t *testing.T) {
	left := Layout(400, 100, format.Square, FillCrop, Anchor{0, 0})
	right := Layout(400, 100, format.Square, FillCrop, Anchor{1, 1})
	mid := Layout(400, 100, format.Square, FillCrop, Center)

	if left.Size != image.Pt(4320, 1080) {
		t.Fatalf("cover size %v", left.Size)
	}
	if left.Offset != (image.Point{}) {
		t.Errorf("anchor 0,0 offset = %v", left.Offset)
	}
	if right.Offset != image.Pt(-3240, 0) {
		t.Errorf("anchor 1,1 offset = %v", right.Offset)
	}
	if left.Window() == right.Window() {
		t.Error("anchors 0 and 1 selected the same window")
	}
	if mid.Offset.X != (left.Offset.X+right.Offset.X)/2 {
		t.Errorf("centre offset %d is not the midpoint", mid.Offset.X)
	}
	if w := mid.Window(); w.Dx() != 1080 || w.Dy() != 1080 {
		t.Errorf("window %v", w)
	}
}

func TestLayout_CoverVertical(t *testing.T) {
	top := Layout(100, 1000, format.Landscape, FillCrop, Anchor{0.5, 0})
	bottom := Layout(100, 1000, format.Landscape, FillCrop, Anchor{0.5, 1})
	if top.Size.X != 1080 || top.Size.Y != 10800 {
		t.Fatalf("size %v", top.Size)
	}
	if top.Offset.Y != 0 || bottom.Offset.Y != -(10800-566) {
		t.Errorf("offsets %v %v", top.Offset, bottom.Offset)
	}
}

func TestLayout_AnchorClamped(t *testing.T) {
	pl := Layout(400, 100, format.Square, FillCrop, Anchor{X: 3, Y: -2})
	if pl.Offset != image.Pt(-3240, 0) {
		t.Errorf("offset = %v", pl.Offset)
	}
}

func TestCover_AnchorSelectsHalf(t *testing.T) {
	src := halves(400, 100, red, blue)
	ctx := context.Background()

	left, err := Compose(ctx, src, Params{Format: format.Square, Fill: FillCrop, Anchor: Anchor{0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	right, err := Compose(ctx, src, Params{Format: format.Square, Fill: FillCrop, Anchor: Anchor{1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if c := left.NRGBAAt(540, 540); !closeTo(c, red) {
		t.Errorf("anchor 0: centre = %v, want red", c)
	}
	if c := right.NRGBAAt(540, 540); !closeTo(c, blue) {
		t.Errorf("anchor 1: centre = %v, want blue", c)
	}
}

func TestLayout_SourceRect(t *testing.T) {
	left := Layout(400, 100, format.Square, FillCrop, Anchor{0, 0})
	right := Layout(400, 100, format.Square, FillCrop, Anchor{1, 1})
	if r := left.SourceRect(400, 100); r != image.Rect(0, 0, 100, 100) {
		t.Errorf("anchor 0: source rect %v", r)
	}
	if r := right.SourceRect(400, 100); r != image.Rect(300, 0, 400, 100) {
		t.Errorf("anchor 1: source rect %v", r)
	}

	pl := Layout(20000, 100, format.Portrait, FillCrop, Center)
	r := pl.SourceRect(20000, 100)
	if r.Dy() != 100 || r.Dx() < 80 || r.Dx() > 82 {
		t.Errorf("thin source rect %v", r)
	}
	if r.Min.X < 9900 || r.Max.X > 10100 {
		t.Errorf("centre anchor picked %v", r)
	}
}

func TestCover_ExtremeAspect(t *testing.T) {
	src := halves(20000, 100, red, blue)
	ctx := context.Background()

	left, err := Compose(ctx, src, Params{Format: format.Portrait, Fill: FillCrop, Anchor: Anchor{0, 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	if b := left.Bounds(); b.Dx() != 1080 || b.Dy() != 1350 {
		t.Fatalf("canvas %v", b)
	}
	if c := left.NRGBAAt(540, 675); !closeTo(c, red) {
		t.Errorf("anchor 0: centre = %v, want red", c)
	}

	right, err := Compose(ctx, src, Params{Format: format.Portrait, Fill: FillCrop, Anchor: Anchor{1, 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	if c := right.NRGBAAt(540, 675); !closeTo(c, blue) {
		t.Errorf("anchor 1: centre = %v, want blue", c)
	}
}

func TestCover_OffsetBounds(t *testing.T) {
	// Sources whose bounds do not start at the origin crop the same way.
	src := halves(400, 100, red, blue).SubImage(image.Rect(200, 0, 400, 100))
	out, err := Compose(context.Background(), src, Params{Format: format.Square, Fill: FillCrop, Anchor: Anchor{0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if c := out.NRGBAAt(540, 540); !closeTo(c, blue) {
		t.Errorf("centre = %v, want blue", c)
	}
}

func TestGradient_SingleColourDarkens(t *testing.T) {
	base := colour.RGB{R: 100, G: 30, B: 200}
	stops, err := GradientBackground(base).Stops()
	if err != nil {
		t.Fatal(err)
	}
	if len(stops) != 2 || stops[0] != base || stops[1] != (colour.RGB{R: 60, G: 0, B: 160}) {
		t.Fatalf("stops = %v", stops)
	}

	out, err := Compose(context.Background(), solidImg(10, 10, red), Params{
		Format: format.Portrait, Fill: FillBackground, Background: GradientBackground(base),
	})
	if err != nil {
		t.Fatal(err)
	}
	top := colour.FromColor(out.NRGBAAt(0, 0))
	bottom := colour.FromColor(out.NRGBAAt(0, 1349))
	if top != base {
		t.Errorf("top = %v, want %v", top, base)
	}
	if bottom != stops[1] {
		t.Errorf("bottom = %v, want %v", bottom, stops[1])
	}
}

func TestStops(t *testing.T) {
	a, b, c := colour.RGB{R: 1}, colour.RGB{G: 2}, colour.RGB{B: 3}
	if s, _ := SolidBackground(a).Stops(); len(s) != 1 || s[0] != a {
		t.Errorf("solid stops %v", s)
	}
	if s, _ := (Background{Kind: Solid, Colors: []colour.RGB{a, b}}).Stops(); len(s) != 1 {
		t.Errorf("solid uses only the first colour, got %v", s)
	}
	if s, _ := GradientBackground(a, b, c).Stops(); len(s) != 3 {
		t.Errorf("gradient stops %v", s)
	}
	if _, err := (Background{Kind: Gradient}).Stops(); !errors.Is(err, ErrNoColors) {
		t.Errorf("empty gradient err = %v", err)
	}
}

func TestCompose_Errors(t *testing.T) {
	ctx := context.Background()
	ok := Params{Format: format.Square, Background: SolidBackground(colour.Gray)}

	if _, err := Compose(ctx, nil, ok); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("nil source: %v", err)
	}
	if _, err := Compose(ctx, image.NewNRGBA(image.Rect(0, 0, 0, 5)), ok); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("empty source: %v", err)
	}
	if _, err := Compose(ctx, solidImg(4, 4, red), Params{Format: format.Square}); !errors.Is(err, ErrNoColors) {
		t.Errorf("no colours: %v", err)
	}
	if _, err := Compose(ctx, solidImg(4, 4, red), Params{Format: format.Format(9), Background: ok.Background}); err == nil {
		t.Error("bad format accepted")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Compose(canceled, solidImg(4, 4, red), ok); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: %v", err)
	}
}

func TestCompositor_Render(t *testing.T) {
	data, err := NewCompositor().Render(context.Background(), solidImg(30, 20, blue), Params{
		Format: format.Landscape, Fill: FillBackground, Background: SolidBackground(colour.Gray),
	}, encoder.ExportQuality)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1080 || b.Dy() != 566 {
		t.Errorf("size %v", b)
	}
}

func TestParseFillMode(t *testing.T) {
	if m, err := ParseFillMode("CROP"); err != nil || m != FillCrop {
		t.Errorf("crop: %v %v", m, err)
	}
	if m, err := ParseFillMode("background"); err != nil || m != FillBackground {
		t.Errorf("background: %v %v", m, err)
	}
	if _, err := ParseFillMode("stretch"); err == nil {
		t.Error("stretch accepted")
	}
}
