package store

import (
	"context"
	"fmt"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
	"github.com/AnyUserName/gridframe-cli/internal/errmsg"
	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/hasher"
	"github.com/AnyUserName/gridframe-cli/internal/render"
	"github.com/AnyUserName/gridframe-cli/internal/source"
)

// placeholder parameters until decoding detects the real ones
func placeholderParams() render.Params {
	return render.Params{
		Format:     format.Portrait,
		Fill:       render.FillBackground,
		Background: render.SolidBackground(colour.Gray),
		Anchor:     render.Center,
	}
}

// Add accepts a batch of candidate files. Non-images are dropped and the
// batch is truncated to the remaining capacity. Every accepted file gets
// its identity, placeholder slot and grid position before any decoding
// starts. It returns the new slot identities in order.
func (s *Store) Add(files []source.File) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = ""

	var accepted []source.File
	for _, f := range files {
		if f.IsImage() {
			accepted = append(accepted, f)
		} else {
			s.log.Debug("skipping non-image", "name", f.Name, "type", f.MIME())
		}
	}
	if room := Capacity - len(s.order); len(accepted) > room {
		s.log.Debug("batch truncated to capacity", "accepted", room, "dropped", len(accepted)-room)
		accepted = accepted[:room]
	}

	ids := make([]string, 0, len(accepted))
	for _, f := range accepted {
		s.seq++
		sl := &slot{
			id:     hasher.SlotID(s.seq, f.Data),
			name:   f.Name,
			data:   f.Data,
			size:   int64(len(f.Data)),
			params: placeholderParams(),
			state:  Loading,
		}
		if path, err := s.blobs.Create(f.Name, f.Data); err != nil {
			s.log.Warn("no source handle", "name", f.Name, "err", err)
		} else {
			sl.blobPath = path
		}

		s.slots[sl.id] = sl
		s.order = append(s.order, sl.id)
		if pos := s.firstEmptyLocked(); pos >= 0 {
			s.grid[pos] = sl.id
		}
		if s.active == "" {
			s.active = sl.id
		}
		ids = append(ids, sl.id)
		s.log.Debug("slot added", "slot", sl.id, "name", f.Name)
	}

	for _, id := range ids {
		sl := s.slots[id]
		sl.gen++
		ctx, cancel := context.WithCancel(context.Background())
		sl.cancel = cancel
		s.tasks.Add(1)
		go s.prepare(ctx, cancel, id, sl.gen, sl.data)
	}
	return ids
}

func (s *Store) firstEmptyLocked() int {
	for i, id := range s.grid {
		if id == "" {
			return i
		}
	}
	return -1
}

// SetActive makes id the active slot. Unknown identities are ignored.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; ok {
		s.active = id
	}
}

// SetFormat changes the active slot's format and re-renders it.
func (s *Store) SetFormat(f format.Format) {
	if !f.Valid() {
		return
	}
	s.updateActive(func(p *render.Params) { p.Format = f })
}

// SetBackground changes the active slot's background fill and re-renders it.
func (s *Store) SetBackground(bg render.Background) {
	if len(bg.Colors) == 0 {
		return
	}
	bg = bg.Clone()
	s.updateActive(func(p *render.Params) { p.Background = bg })
}

// SetFillMode changes the active slot's fill mode and re-renders it.
func (s *Store) SetFillMode(m render.FillMode) {
	s.updateActive(func(p *render.Params) { p.Fill = m })
}

func (s *Store) updateActive(apply func(*render.Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[s.active]
	if !ok {
		return
	}
	apply(&sl.params)
	// An immediate render already carries the latest anchor.
	s.debounce.Cancel(sl.id)
	s.requestRenderLocked(sl)
}

// SetCropAnchor moves the active slot's crop anchor at once and schedules
// a trailing re-render; a burst of calls yields a single render of the
// final anchor.
func (s *Store) SetCropAnchor(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[s.active]
	if !ok {
		return
	}
	sl.params.Anchor = render.Anchor{X: x, Y: y}.Clamp()
	if sl.img == nil {
		return
	}
	id := sl.id
	s.debounce.Schedule(id, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.slots[id]; ok {
			s.requestRenderLocked(cur)
		}
	})
}

// Remove deletes a slot and everything it owns. If it was active, the
// first remaining slot in insertion order becomes active.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return
	}

	s.debounce.Cancel(id)
	sl.release()
	s.releaseBlobLocked(sl)
	delete(s.slots, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.clearPositionsLocked(id)

	if s.active == id {
		s.active = ""
		if len(s.order) > 0 {
			s.active = s.order[0]
		}
	}
	s.log.Debug("slot removed", "slot", id, "active", s.active)
}

func (s *Store) releaseBlobLocked(sl *slot) {
	if sl.blobPath == "" {
		return
	}
	if err := s.blobs.Release(sl.blobPath); err != nil {
		s.log.Warn("release source handle", "slot", sl.id, "err", err)
	}
	sl.blobPath = ""
}

func (s *Store) clearPositionsLocked(id string) {
	for i := range s.grid {
		if s.grid[i] == id {
			s.grid[i] = ""
		}
	}
}

// Swap exchanges the occupants of two grid positions, empty included.
func (s *Store) Swap(a, b int) error {
	if !validPos(a) || !validPos(b) {
		return fmt.Errorf("%w: swap %d, %d", ErrPosition, a, b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid[a], s.grid[b] = s.grid[b], s.grid[a]
	return nil
}

// Assign moves slot id to pos, clearing its previous position. Whatever
// occupied pos leaves the grid.
func (s *Store) Assign(id string, pos int) error {
	if !validPos(pos) {
		return fmt.Errorf("%w: %d", ErrPosition, pos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; !ok {
		return fmt.Errorf("unknown slot %q", id)
	}
	s.clearPositionsLocked(id)
	s.grid[pos] = id
	return nil
}

func validPos(p int) bool { return p >= 0 && p < GridSize }

// Cleanup releases every slot and resets the store to empty. Results of
// work still in flight are discarded when they arrive.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debounce.CancelAll()
	for _, sl := range s.slots {
		sl.release()
		s.releaseBlobLocked(sl)
	}
	if err := s.blobs.ReleaseAll(); err != nil {
		s.log.Warn("release source handles", "err", err)
	}
	s.slots = make(map[string]*slot)
	s.order = nil
	s.grid = [GridSize]string{}
	s.active = ""
	s.err = ""
	s.log.Debug("store cleaned up")
}

func (s *Store) failLocked(op errmsg.Op, sl *slot, err error) {
	sl.err = errmsg.FormatWith(op, sl.name, err)
	s.setErrLocked(sl.err)
}
