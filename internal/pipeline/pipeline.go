// Package pipeline exports composed images: one slot to a JPEG, or every
// occupied grid position to a JPEG or a zip bundle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/gridframe-cli/internal/encoder"
	"github.com/AnyUserName/gridframe-cli/internal/hasher"
	"github.com/AnyUserName/gridframe-cli/internal/render"
)

var (
	// ErrBusy is returned while another export (single or grid) runs.
	ErrBusy = errors.New("an export is already running")
	// ErrNotRendered is returned for a slot without a decoded source.
	ErrNotRendered = errors.New("image is not ready")
	// ErrNothingToExport is returned for a grid with no exportable positions.
	ErrNothingToExport = errors.New("grid is empty")
)

// Job is a snapshot of everything needed to render one slot.
type Job struct {
	SlotID string
	Source image.Image
	Params render.Params
}

// Exporter renders jobs at export quality. Only one export runs at a
// time across Single and Grid.
type Exporter struct {
	Renderer render.Renderer
	Quality  int
	Now      func() time.Time
	Logger   *slog.Logger

	ext  string
	ct   string
	busy atomic.Bool
}

// NewExporter returns an exporter writing JPEG at encoder.ExportQuality.
func NewExporter(r render.Renderer) *Exporter {
	enc := encoder.Default()
	return &Exporter{
		Renderer: r,
		Quality:  encoder.ExportQuality,
		Now:      time.Now,
		Logger:   slog.Default(),
		ext:      enc.Extension(),
		ct:       enc.ContentType(),
	}
}

// Busy reports whether an export is in flight.
func (e *Exporter) Busy() bool { return e.busy.Load() }

func (e *Exporter) acquire() bool { return e.busy.CompareAndSwap(false, true) }
func (e *Exporter) release()      { e.busy.Store(false) }

// Single renders one job. The artifact is named after the job's format.
func (e *Exporter) Single(ctx context.Context, job Job) (*Artifact, error) {
	if job.Source == nil {
		return nil, ErrNotRendered
	}
	if !e.acquire() {
		return nil, ErrBusy
	}
	defer e.release()

	e.Logger.Debug("export started", "slot", job.SlotID, "format", job.Params.Format)
	data, err := e.render(ctx, job)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("instagram-%s.%s", strings.ToLower(job.Params.Format.String()), e.ext)
	entry := e.entry(name, 0, job, data)
	e.Logger.Debug("export finished", "name", name, "bytes", len(data))
	return &Artifact{Name: name, ContentType: e.ct, Data: data, Entries: []Entry{entry}}, nil
}

type cell struct {
	pos int // 1-based
	job Job
}

// Grid exports the occupied cells of a grid, where cells[i] is position
// i+1 in reading order and nil means empty. A single occupied position
// yields "<pos>.jpg"; more are rendered concurrently and zipped. Any
// failed render fails the whole export.
func (e *Exporter) Grid(ctx context.Context, cells []*Job) (*Artifact, error) {
	var occupied []cell
	for i, j := range cells {
		if j == nil || j.Source == nil {
			continue
		}
		occupied = append(occupied, cell{pos: i + 1, job: *j})
	}
	if len(occupied) == 0 {
		return nil, ErrNothingToExport
	}
	if !e.acquire() {
		return nil, ErrBusy
	}
	defer e.release()

	e.Logger.Debug("grid export started", "positions", len(occupied))

	if len(occupied) == 1 {
		c := occupied[0]
		data, err := e.render(ctx, c.job)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", c.pos, err)
		}
		name := e.entryName(c.pos)
		return &Artifact{
			Name:        name,
			ContentType: e.ct,
			Data:        data,
			Entries:     []Entry{e.entry(name, c.pos, c.job, data)},
		}, nil
	}

	rendered := make([][]byte, len(occupied))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range occupied {
		g.Go(func() error {
			data, err := e.render(gctx, c.job)
			if err != nil {
				return fmt.Errorf("position %d: %w", c.pos, err)
			}
			rendered[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(occupied))
	for i, c := range occupied {
		entries[i] = e.entry(e.entryName(c.pos), c.pos, c.job, rendered[i])
	}
	now := e.now()
	zipped, err := buildArchive(entries, rendered, now)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	name := fmt.Sprintf("instagram-grid-%d.zip", now.UnixMilli())
	e.Logger.Debug("grid export finished", "name", name, "entries", len(entries), "bytes", len(zipped))
	return &Artifact{Name: name, ContentType: ZipContentType, Data: zipped, Entries: entries}, nil
}

func (e *Exporter) render(ctx context.Context, job Job) ([]byte, error) {
	if e.Renderer == nil {
		return nil, errors.New("no renderer configured")
	}
	return e.Renderer.Render(ctx, job.Source, job.Params, e.Quality)
}

func (e *Exporter) entryName(pos int) string {
	return fmt.Sprintf("%d.%s", pos, e.ext)
}

func (e *Exporter) entry(name string, pos int, job Job, data []byte) Entry {
	return Entry{
		Name:     name,
		Position: pos,
		SlotID:   job.SlotID,
		Format:   job.Params.Format,
		Size:     int64(len(data)),
		Hash:     hasher.ContentHash(data, 16),
	}
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
