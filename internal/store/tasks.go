package store

import (
	"context"
	"errors"
	"image"

	"github.com/AnyUserName/gridframe-cli/internal/errmsg"
	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/palette"
	"github.com/AnyUserName/gridframe-cli/internal/render"
	"github.com/AnyUserName/gridframe-cli/internal/source"
)

// prepare decodes a new slot, seeds its background and format, and
// issues the first render.
func (s *Store) prepare(ctx context.Context, cancel context.CancelFunc, id string, gen uint64, data []byte) {
	defer s.tasks.Done()
	defer cancel()

	img, err := source.Decode(data)
	var (
		pal    palette.Palette
		palErr error
		det    format.Format
	)
	if err == nil {
		b := img.Bounds()
		det = format.Detect(b.Dx(), b.Dy())
		pal, palErr = palette.Extract(img)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.current(id, gen)
	if !ok || ctx.Err() != nil {
		s.log.Debug("discarding decode for removed slot", "slot", id)
		return
	}
	sl.cancel = nil
	if err != nil {
		sl.state = Failed
		sl.data = nil
		s.failLocked(errmsg.OpLoadImage, sl, err)
		return
	}

	sl.img = img
	sl.data = nil
	sl.width, sl.height = img.Bounds().Dx(), img.Bounds().Dy()
	sl.params.Format = det
	if palErr == nil {
		sl.palette = &pal
		sl.params.Background = render.SolidBackground(pal.Dominant)
	} else {
		s.log.Debug("no palette, keeping placeholder background", "slot", id, "err", palErr)
	}
	s.log.Debug("slot decoded", "slot", id, "size", image.Pt(sl.width, sl.height), "format", det)
	s.requestRenderLocked(sl)
}

// current returns the slot if it still exists and gen is its latest
// request. Caller holds mu.
func (s *Store) current(id string, gen uint64) (*slot, bool) {
	sl, ok := s.slots[id]
	if !ok || sl.gen != gen {
		return nil, false
	}
	return sl, true
}

// requestRenderLocked supersedes any render in flight for sl and starts a
// new one from its current parameters. Slots without a decoded image keep
// the parameters for their first render. Caller holds mu.
func (s *Store) requestRenderLocked(sl *slot) {
	if sl.img == nil {
		return
	}
	if sl.cancel != nil {
		sl.cancel()
	}
	sl.gen++
	ctx, cancel := context.WithCancel(context.Background())
	sl.cancel = cancel
	sl.state = Rendering

	s.tasks.Add(1)
	go s.render(ctx, cancel, sl.id, sl.gen, sl.img, sl.params.Clone())
}

func (s *Store) render(ctx context.Context, cancel context.CancelFunc, id string, gen uint64, img image.Image, p render.Params) {
	defer s.tasks.Done()
	defer cancel()

	data, err := s.renderer.Render(ctx, img, p, s.previewQuality)

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.current(id, gen)
	if !ok {
		s.log.Debug("discarding stale render", "slot", id, "gen", gen)
		return
	}
	sl.cancel = nil
	if err != nil {
		// A failed attempt keeps the last good preview.
		if len(sl.preview) > 0 {
			sl.state = Ready
		} else {
			sl.state = Failed
		}
		if !errors.Is(err, context.Canceled) {
			s.failLocked(errmsg.OpRenderImage, sl, err)
		}
		return
	}
	sl.preview = data
	sl.state = Ready
	sl.err = ""
	s.log.Debug("slot rendered", "slot", id, "gen", gen, "bytes", len(data))
}
