package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnyUserName/gridframe-cli/internal/hasher"
	"github.com/AnyUserName/gridframe-cli/internal/pipeline"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

// Suffix is appended to the artifact's base name to name its manifest.
const Suffix = ".manifest.json"

// New creates an empty manifest with defaults.
func New(kind string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Kind:        kind,
	}
}

// PathFor returns where the manifest for artifactName lives in dir.
func PathFor(dir, artifactName string) string {
	base := strings.TrimSuffix(artifactName, filepath.Ext(artifactName))
	return filepath.Join(dir, base+Suffix)
}

// FromExport describes art. slots supplies the source metadata of every
// slot named by the artifact's entries.
func FromExport(kind string, art *pipeline.Artifact, slots []store.Slot) *Manifest {
	m := New(kind)
	m.Artifact = Artifact{
		Name:        art.Name,
		ContentType: art.ContentType,
		Size:        int64(len(art.Data)),
		Hash:        hasher.ContentHash(art.Data, 16),
		Archive:     art.IsArchive(),
	}

	byID := make(map[string]store.Slot, len(slots))
	for _, sl := range slots {
		byID[sl.ID] = sl
	}

	for _, e := range art.Entries {
		sl := byID[e.SlotID]
		p := sl.Params
		w, h := e.Format.Size()
		img := Image{
			Entry:    e.Name,
			Position: e.Position,
			Slot:     e.SlotID,
			Source: SourceInfo{
				Name:   sl.Name,
				Width:  sl.Width,
				Height: sl.Height,
				Size:   sl.Size,
			},
			Format: e.Format.String(),
			Width:  w,
			Height: h,
			Fill:   p.Fill.String(),
			Background: Background{
				Kind: p.Background.Kind.String(),
			},
			Anchor: [2]float64{p.Anchor.X, p.Anchor.Y},
			Size:   e.Size,
			Hash:   e.Hash,
		}
		for _, c := range p.Background.Colors {
			img.Background.Colors = append(img.Background.Colors, c.Hex())
		}
		if sl.Palette != nil {
			for _, c := range sl.Palette.Swatches {
				img.Palette = append(img.Palette, c.Hex())
			}
		}
		m.Images = append(m.Images, img)
	}
	m.ComputeStats()
	return m
}

// ComputeStats recalculates aggregate statistics from images.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalImages = len(m.Images)
	for _, img := range m.Images {
		s.TotalInputBytes += img.Source.Size
		s.TotalOutputBytes += img.Size
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Read parses a manifest file.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
