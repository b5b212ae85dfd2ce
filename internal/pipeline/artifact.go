package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/AnyUserName/gridframe-cli/internal/format"
)

// ZipContentType is the content type of grid bundles.
const ZipContentType = "application/zip"

// Entry describes one rendered image inside an artifact.
type Entry struct {
	Name     string        `json:"name"`
	Position int           `json:"position,omitempty"` // 1-based grid position, 0 for single exports
	SlotID   string        `json:"slot"`
	Format   format.Format `json:"-"`
	Size     int64         `json:"size"`
	Hash     string        `json:"hash"` // 16 hex chars of xxhash64
}

// Artifact is a finished export, ready to be written out.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Entries     []Entry
}

// IsArchive reports whether the artifact is a zip bundle.
func (a *Artifact) IsArchive() bool { return a.ContentType == ZipContentType }

// Save writes the artifact into dir and returns its path.
func (a *Artifact) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Name, err)
	}
	return path, nil
}

// buildArchive stores each payload under its entry name. JPEG payloads
// are already compressed, so entries use the Store method.
func buildArchive(entries []Entry, payloads [][]byte, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Store,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := w.Write(payloads[i]); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadArchive returns the entries of a zip bundle keyed by name.
func ReadArchive(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		out[f.Name] = data
	}
	return out, nil
}
