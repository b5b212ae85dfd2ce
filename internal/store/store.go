// Package store owns up to nine image slots, their placement on a 3x3
// grid and the active-slot pointer. Every mutation goes through a Store
// method; decode and render work runs on goroutines whose results are
// applied only while still current.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AnyUserName/gridframe-cli/internal/blob"
	"github.com/AnyUserName/gridframe-cli/internal/debounce"
	"github.com/AnyUserName/gridframe-cli/internal/encoder"
	"github.com/AnyUserName/gridframe-cli/internal/pipeline"
	"github.com/AnyUserName/gridframe-cli/internal/render"
)

const (
	// Capacity is the maximum number of slots.
	Capacity = 9
	// GridSize is the number of grid positions.
	GridSize = 9
)

// ErrPosition is returned for a grid position outside [0, GridSize).
var ErrPosition = errors.New("grid position out of range")

// Options configures a Store. Zero values pick the defaults.
type Options struct {
	Renderer       render.Renderer
	Blobs          *blob.Registry
	Debounce       time.Duration
	PreviewQuality int
	ExportQuality  int
	Now            func() time.Time
	Logger         *slog.Logger
}

// Store is the image slot aggregate.
type Store struct {
	renderer       render.Renderer
	blobs          *blob.Registry
	debounce       *debounce.Scheduler
	exporter       *pipeline.Exporter
	previewQuality int
	log            *slog.Logger

	mu     sync.Mutex
	seq    uint64
	slots  map[string]*slot
	order  []string // insertion order
	grid   [GridSize]string
	active string
	err    string

	tasks sync.WaitGroup
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Renderer == nil {
		opts.Renderer = render.NewCompositor()
	}
	if opts.Blobs == nil {
		opts.Blobs = blob.New("")
	}
	if opts.PreviewQuality <= 0 {
		opts.PreviewQuality = encoder.PreviewQuality
	}
	if opts.ExportQuality <= 0 {
		opts.ExportQuality = encoder.ExportQuality
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	exp := pipeline.NewExporter(opts.Renderer)
	exp.Quality = opts.ExportQuality
	exp.Logger = opts.Logger
	if opts.Now != nil {
		exp.Now = opts.Now
	}

	return &Store{
		renderer:       opts.Renderer,
		blobs:          opts.Blobs,
		debounce:       debounce.New(opts.Debounce),
		exporter:       exp,
		previewQuality: opts.PreviewQuality,
		log:            opts.Logger,
		slots:          make(map[string]*slot),
	}
}

// Wait blocks until no decode, render or debounced render is pending.
func (s *Store) Wait() {
	s.debounce.Wait()
	s.tasks.Wait()
}

// Slot returns a snapshot of one slot.
func (s *Store) Slot(id string) (Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return Slot{}, false
	}
	return sl.snapshot(), true
}

// Slots returns snapshots in insertion order.
func (s *Store) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Slot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.slots[id].snapshot())
	}
	return out
}

// Len returns the number of slots.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Grid returns the slot identity at each position ("" when empty).
func (s *Store) Grid() [GridSize]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// Active returns the active slot identity, or "".
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveSlot returns a snapshot of the active slot.
func (s *Store) ActiveSlot() (Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[s.active]
	if !ok {
		return Slot{}, false
	}
	return sl.snapshot(), true
}

// Err returns the most recent failure message, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// HasImages reports whether any slot exists.
func (s *Store) HasImages() bool { return s.Len() > 0 }

// GridCount returns the number of occupied grid positions.
func (s *Store) GridCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.grid {
		if id != "" {
			n++
		}
	}
	return n
}

// Exporting reports whether an export is in flight.
func (s *Store) Exporting() bool { return s.exporter.Busy() }

// CanExport reports whether ExportSingle would do anything.
func (s *Store) CanExport() bool {
	if s.exporter.Busy() {
		return false
	}
	sl, ok := s.ActiveSlot()
	return ok && sl.Rendered()
}

// CanExportAll reports whether ExportGrid would do anything.
func (s *Store) CanExportAll() bool {
	return !s.exporter.Busy() && s.GridCount() > 0
}

// Previews maps slot identity to its latest preview JPEG.
func (s *Store) Previews() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.slots))
	for id, sl := range s.slots {
		if len(sl.preview) > 0 {
			out[id] = sl.preview
		}
	}
	return out
}

// PreviewDataURL returns the slot's preview as a data URL.
func (s *Store) PreviewDataURL(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return "", fmt.Errorf("unknown slot %q", id)
	}
	if len(sl.preview) == 0 {
		return "", pipeline.ErrNotRendered
	}
	return encoder.DataURL(encoder.Default().ContentType(), sl.preview), nil
}

// setErrLocked records a failure message. Caller holds mu.
func (s *Store) setErrLocked(msg string) {
	s.err = msg
	s.log.Warn(msg)
}
