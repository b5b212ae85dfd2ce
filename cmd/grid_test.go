package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/AnyUserName/gridframe-cli/internal/blob"
	"github.com/AnyUserName/gridframe-cli/internal/caption"
	"github.com/AnyUserName/gridframe-cli/internal/source"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

func photos(t *testing.T, n int) []source.File {
	t.Helper()
	files := make([]source.File, n)
	for i := range files {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = uint8(40*i), 120, 60, 255
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		files[i] = source.File{Name: fmt.Sprintf("%c.png", 'a'+i), Data: buf.Bytes()}
	}
	return files
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.Options{Blobs: blob.New(t.TempDir())})
	t.Cleanup(func() {
		s.Cleanup()
		s.Wait()
	})
	return s
}

func TestPlaceAt_ReportsDisplaced(t *testing.T) {
	s := testStore(t)
	ids := s.Add(photos(t, 3))

	displaced, err := placeAt(s, ids, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	if len(displaced) != 1 || displaced[0] != ids[2] {
		t.Fatalf("displaced = %v, want [%s]", displaced, ids[2])
	}
	if got := s.Grid()[2]; got != ids[0] {
		t.Errorf("position 3 holds %q", got)
	}
}

func TestPlaceAt_ExplicitSwapDisplacesNothing(t *testing.T) {
	s := testStore(t)
	ids := s.Add(photos(t, 3))

	displaced, err := placeAt(s, ids, []int{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(displaced) != 0 {
		t.Errorf("displaced = %v", displaced)
	}
	grid := s.Grid()
	if grid[0] != ids[1] || grid[1] != ids[0] || grid[2] != ids[2] {
		t.Errorf("grid = %v", grid[:3])
	}
}

func TestPlaceAt_RejectsBadPositions(t *testing.T) {
	s := testStore(t)
	ids := s.Add(photos(t, 2))
	before := s.Grid()

	for _, positions := range [][]int{{0}, {10}, {1, 1}, {1, 2, 3}} {
		if _, err := placeAt(s, ids, positions); err == nil {
			t.Errorf("positions %v accepted", positions)
		}
	}
	if s.Grid() != before {
		t.Error("rejected positions changed the grid")
	}
}

func TestSlotFailure(t *testing.T) {
	tests := []struct {
		name string
		sl   store.Slot
		err  error
		want string
	}{
		{"export error wins", store.Slot{Err: "Failed to load image a.jpg: bad"}, errors.New("disk full"), "disk full"},
		{"own message", store.Slot{Err: "Failed to load image a.jpg: bad"}, nil, "Failed to load image a.jpg: bad"},
		{"nothing recorded", store.Slot{}, nil, "not rendered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slotFailure(tt.sl, tt.err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteCaption_HashtagLine(t *testing.T) {
	var buf bytes.Buffer
	sug := &caption.Suggestion{Caption: "Harbour light", Hashtags: []string{"sunset", "harbour"}}
	if err := writeCaption(&buf, sug); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"caption: Harbour light", "- sunset", "hashtag_line:", "#sunset #harbour"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
