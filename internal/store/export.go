package store

import (
	"context"
	"errors"

	"github.com/AnyUserName/gridframe-cli/internal/errmsg"
	"github.com/AnyUserName/gridframe-cli/internal/pipeline"
)

// ExportSingle renders the active slot at export quality. It returns a
// nil artifact and nil error when there is nothing to do: no rendered
// active slot, or another export in flight.
func (s *Store) ExportSingle(ctx context.Context) (*pipeline.Artifact, error) {
	return s.ExportSlot(ctx, s.Active())
}

// ExportSlot renders slot id at export quality, under the same guards
// as ExportSingle.
func (s *Store) ExportSlot(ctx context.Context, id string) (*pipeline.Artifact, error) {
	s.mu.Lock()
	sl, ok := s.slots[id]
	if !ok || len(sl.preview) == 0 || sl.img == nil {
		s.mu.Unlock()
		return nil, nil
	}
	job := pipeline.Job{SlotID: sl.id, Source: sl.img, Params: sl.params.Clone()}
	s.mu.Unlock()

	art, err := s.exporter.Single(ctx, job)
	return s.finishExport(errmsg.OpExportImage, art, err)
}

// ExportGrid renders every occupied grid position whose slot has been
// decoded. One position yields "<pos>.jpg"; more yield a zip bundle.
// Any failure fails the whole export.
func (s *Store) ExportGrid(ctx context.Context) (*pipeline.Artifact, error) {
	s.mu.Lock()
	cells := make([]*pipeline.Job, GridSize)
	for pos, id := range s.grid {
		sl, ok := s.slots[id]
		if !ok || sl.img == nil {
			continue
		}
		cells[pos] = &pipeline.Job{SlotID: sl.id, Source: sl.img, Params: sl.params.Clone()}
	}
	s.mu.Unlock()

	art, err := s.exporter.Grid(ctx, cells)
	return s.finishExport(errmsg.OpExportGrid, art, err)
}

func (s *Store) finishExport(op errmsg.Op, art *pipeline.Artifact, err error) (*pipeline.Artifact, error) {
	switch {
	case err == nil:
		return art, nil
	case errors.Is(err, pipeline.ErrBusy),
		errors.Is(err, pipeline.ErrNotRendered),
		errors.Is(err, pipeline.ErrNothingToExport):
		s.log.Debug("export skipped", "op", op, "reason", err)
		return nil, nil
	}
	s.mu.Lock()
	s.setErrLocked(errmsg.Format(op, err))
	s.mu.Unlock()
	return nil, err
}
