package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/render"
)

// fakeRenderer returns a payload naming the slot, optionally failing or
// blocking until released.
type fakeRenderer struct {
	calls   atomic.Int32
	fail    string
	block   chan struct{}
	started chan struct{}
	quality atomic.Int32
}

func (f *fakeRenderer) Render(ctx context.Context, src image.Image, p render.Params, quality int) ([]byte, error) {
	f.calls.Add(1)
	f.quality.Store(int32(quality))
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	id := src.(*image.NRGBA).Pix[0]
	if fmt.Sprint(id) == f.fail {
		return nil, errors.New("boom")
	}
	return []byte(fmt.Sprintf("jpeg-%d-%s", id, p.Format)), nil
}

func srcImage(tag uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[0] = tag
	img.SetNRGBA(1, 1, color.NRGBA{A: 255})
	return img
}

func job(tag uint8, f format.Format) *Job {
	return &Job{
		SlotID: fmt.Sprintf("img-%d", tag),
		Source: srcImage(tag),
		Params: render.Params{Format: f, Fill: render.FillBackground, Background: render.SolidBackground(colour.Black), Anchor: render.Center},
	}
}

func newTestExporter(r render.Renderer) *Exporter {
	e := NewExporter(r)
	e.Now = func() time.Time { return time.UnixMilli(1700000000123) }
	return e
}

func TestSingleNamesByFormat(t *testing.T) {
	r := &fakeRenderer{}
	e := newTestExporter(r)

	art, err := e.Single(context.Background(), *job(7, format.Square))
	require.NoError(t, err)
	assert.Equal(t, "instagram-square.jpg", art.Name)
	assert.Equal(t, "image/jpeg", art.ContentType)
	assert.Equal(t, []byte("jpeg-7-square"), art.Data)
	assert.False(t, art.IsArchive())
	assert.EqualValues(t, 95, r.quality.Load())
	require.Len(t, art.Entries, 1)
	assert.Equal(t, "img-7", art.Entries[0].SlotID)
	assert.Len(t, art.Entries[0].Hash, 16)
	assert.False(t, e.Busy())
}

func TestSingleNotRendered(t *testing.T) {
	e := newTestExporter(&fakeRenderer{})
	_, err := e.Single(context.Background(), Job{SlotID: "x"})
	assert.ErrorIs(t, err, ErrNotRendered)
}

func TestGridSinglePositionBypassesArchive(t *testing.T) {
	r := &fakeRenderer{}
	e := newTestExporter(r)
	cells := make([]*Job, 9)
	cells[2] = job(3, format.Portrait)

	art, err := e.Grid(context.Background(), cells)
	require.NoError(t, err)
	assert.Equal(t, "3.jpg", art.Name)
	assert.False(t, art.IsArchive())
	assert.Equal(t, []byte("jpeg-3-portrait"), art.Data)
	assert.Equal(t, 3, art.Entries[0].Position)
}

func TestGridArchiveEntries(t *testing.T) {
	r := &fakeRenderer{}
	e := newTestExporter(r)
	cells := make([]*Job, 9)
	cells[1] = job(2, format.Square)
	cells[4] = job(5, format.Landscape)

	art, err := e.Grid(context.Background(), cells)
	require.NoError(t, err)
	assert.True(t, art.IsArchive())
	assert.Equal(t, "instagram-grid-1700000000123.zip", art.Name)
	assert.EqualValues(t, 2, r.calls.Load())

	files, err := ReadArchive(art.Data)
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"2.jpg", "5.jpg"}, names)
	assert.Equal(t, []byte("jpeg-2-square"), files["2.jpg"])
	assert.Equal(t, []byte("jpeg-5-landscape"), files["5.jpg"])

	zr, err := zip.NewReader(bytes.NewReader(art.Data), int64(len(art.Data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		assert.Equal(t, zip.Store, f.Method, f.Name)
	}

	require.Len(t, art.Entries, 2)
	assert.Equal(t, 2, art.Entries[0].Position)
	assert.Equal(t, 5, art.Entries[1].Position)
}

func TestGridSkipsUndecodedSlots(t *testing.T) {
	e := newTestExporter(&fakeRenderer{})
	cells := make([]*Job, 9)
	cells[0] = &Job{SlotID: "loading"}
	cells[6] = job(7, format.Square)

	art, err := e.Grid(context.Background(), cells)
	require.NoError(t, err)
	assert.Equal(t, "7.jpg", art.Name)
}

func TestGridEmpty(t *testing.T) {
	r := &fakeRenderer{}
	e := newTestExporter(r)
	_, err := e.Grid(context.Background(), make([]*Job, 9))
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Zero(t, r.calls.Load())
}

func TestGridFailsWhole(t *testing.T) {
	r := &fakeRenderer{fail: "5"}
	e := newTestExporter(r)
	cells := make([]*Job, 9)
	cells[0] = job(1, format.Square)
	cells[4] = job(5, format.Square)
	cells[8] = job(9, format.Square)

	art, err := e.Grid(context.Background(), cells)
	require.Error(t, err)
	assert.Nil(t, art)
	assert.Contains(t, err.Error(), "position 5")
	assert.False(t, e.Busy(), "busy flag must clear after a failure")
}

func TestBusyIsGlobal(t *testing.T) {
	r := &fakeRenderer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	e := newTestExporter(r)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := e.Single(context.Background(), *job(1, format.Square))
		assert.NoError(t, err)
	}()
	<-r.started
	assert.True(t, e.Busy())

	_, err := e.Single(context.Background(), *job(2, format.Square))
	assert.ErrorIs(t, err, ErrBusy)
	cells := make([]*Job, 9)
	cells[0] = job(3, format.Square)
	_, err = e.Grid(context.Background(), cells)
	assert.ErrorIs(t, err, ErrBusy)

	close(r.block)
	wg.Wait()
	assert.False(t, e.Busy())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	art := &Artifact{Name: "3.jpg", ContentType: "image/jpeg", Data: []byte("x")}
	path, err := art.Save(dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
