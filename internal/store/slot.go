package store

import (
	"context"
	"image"

	"github.com/AnyUserName/gridframe-cli/internal/palette"
	"github.com/AnyUserName/gridframe-cli/internal/render"
)

// State is a slot's lifecycle stage.
type State int

const (
	Loading State = iota
	Ready
	Rendering
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// slot is the mutable per-image record. Guarded by Store.mu.
type slot struct {
	id       string
	name     string
	blobPath string
	data     []byte
	size     int64

	img    image.Image
	width  int
	height int

	params  render.Params
	palette *palette.Palette
	preview []byte
	state   State
	err     string // last failure for this slot

	// gen increases with every render request; only a completion
	// carrying the current gen is applied.
	gen    uint64
	cancel context.CancelFunc
}

func (sl *slot) processing() bool {
	return sl.state == Loading || sl.state == Rendering
}

// release drops everything the slot owns except its blob handle.
func (sl *slot) release() {
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
	sl.img = nil
	sl.data = nil
	sl.preview = nil
}

// Slot is a read-only snapshot of one image slot.
type Slot struct {
	ID         string
	Name       string
	BlobPath   string
	Size       int64 // source bytes
	State      State
	Processing bool
	Width      int
	Height     int
	Params     render.Params
	Palette    *palette.Palette
	Preview    []byte
	Err        string // this slot's last failure, "" after a good render
}

// Rendered reports whether the slot has a successful preview.
func (s Slot) Rendered() bool { return len(s.Preview) > 0 }

func (sl *slot) snapshot() Slot {
	out := Slot{
		ID:         sl.id,
		Name:       sl.name,
		BlobPath:   sl.blobPath,
		Size:       sl.size,
		State:      sl.state,
		Processing: sl.processing(),
		Width:      sl.width,
		Height:     sl.height,
		Params:     sl.params.Clone(),
		Preview:    sl.preview,
		Err:        sl.err,
	}
	if sl.palette != nil {
		p := *sl.palette
		p.Swatches = append(p.Swatches[:0:0], p.Swatches...)
		out.Palette = &p
	}
	return out
}
