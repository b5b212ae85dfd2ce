package format

import (
	"math"
	"testing"
)

func TestDetect_OwnRatio(t *testing.T) {
	for _, f := range All() {
		s := f.Spec()
		if got := Detect(s.Width, s.Height); got != f {
			t.Errorf("Detect(%dx%d) = %s, want %s", s.Width, s.Height, got, f)
		}
	}
}

func TestDetect_Cases(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want Format
	}{
		{"phone portrait 3:4", 3000, 4000, Portrait},
		{"4:5 exact", 800, 1000, Portrait},
		{"square", 500, 500, Square},
		{"slightly wide", 1100, 1000, Square},
		{"16:9", 1920, 1080, Landscape},
		{"panorama", 10000, 1000, Landscape},
		{"very tall", 1, 10000, Portrait},
		{"very wide", math.MaxInt32, 1, Landscape},
		{"zero height", 100, 0, Landscape},
		{"zero both", 0, 0, Square},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.w, tt.h); got != tt.want {
				t.Errorf("Detect(%d, %d) = %s, want %s", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestDetect_TieGoesToEarlierFormat(t *testing.T) {
	// 0.9 sits exactly between portrait (0.8) and square (1.0).
	if got := Detect(9, 10); got != Portrait {
		t.Errorf("tie: got %s, want portrait", got)
	}
}

func TestDetect_Total(t *testing.T) {
	for _, w := range []int{1, 7, 1 << 20, math.MaxInt32} {
		for _, h := range []int{1, 3, 1 << 20, math.MaxInt32} {
			if got := Detect(w, h); !got.Valid() {
				t.Fatalf("Detect(%d, %d) returned invalid %d", w, h, int(got))
			}
		}
	}
}

func TestCatalog(t *testing.T) {
	want := map[Format][2]int{
		Portrait:  {1080, 1350},
		Square:    {1080, 1080},
		Landscape: {1080, 566},
	}
	for f, dims := range want {
		w, h := f.Size()
		if w != dims[0] || h != dims[1] {
			t.Errorf("%s: got %dx%d, want %dx%d", f, w, h, dims[0], dims[1])
		}
	}
}

func TestParse(t *testing.T) {
	for _, f := range All() {
		got, err := Parse(" " + f.String() + " ")
		if err != nil || got != f {
			t.Errorf("Parse(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := Parse("PORTRAIT"); err != nil {
		t.Errorf("case-insensitive parse failed: %v", err)
	}
	if _, err := Parse("story"); err == nil {
		t.Error("expected error for unknown format")
	}
}
