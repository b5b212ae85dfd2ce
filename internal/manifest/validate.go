package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/hasher"
	"github.com/AnyUserName/gridframe-cli/internal/pipeline"
)

// Validate checks m against the artifact stored in baseDir and returns
// one message per problem found.
func Validate(m *Manifest, baseDir string) []string {
	var errs []string

	if m.Version != SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if m.Kind != KindSingle && m.Kind != KindGrid {
		errs = append(errs, fmt.Sprintf("unknown kind %q", m.Kind))
	}
	if len(m.Images) == 0 {
		errs = append(errs, "no images")
	}
	if m.Artifact.Archive && len(m.Images) < 2 {
		errs = append(errs, fmt.Sprintf("archive with %d image(s)", len(m.Images)))
	}

	// Check each image.
	seenPos := map[int]bool{}
	seenEntry := map[string]bool{}
	for i, img := range m.Images {
		f, err := format.Parse(img.Format)
		if err != nil {
			errs = append(errs, fmt.Sprintf("image[%d]: %v", i, err))
		} else if w, h := f.Size(); img.Width != w || img.Height != h {
			errs = append(errs, fmt.Sprintf("image[%d]: %dx%d does not match %s (%dx%d)",
				i, img.Width, img.Height, f, w, h))
		}
		if img.Hash == "" {
			errs = append(errs, fmt.Sprintf("image[%d]: missing hash", i))
		}
		if img.Entry == "" {
			errs = append(errs, fmt.Sprintf("image[%d]: missing entry name", i))
		} else if seenEntry[img.Entry] {
			errs = append(errs, fmt.Sprintf("image[%d]: duplicate entry %q", i, img.Entry))
		}
		seenEntry[img.Entry] = true

		if m.Kind == KindGrid {
			if img.Position < 1 || img.Position > 9 {
				errs = append(errs, fmt.Sprintf("image[%d]: position %d out of range", i, img.Position))
			} else if seenPos[img.Position] {
				errs = append(errs, fmt.Sprintf("image[%d]: duplicate position %d", i, img.Position))
			}
			seenPos[img.Position] = true
			if want := fmt.Sprintf("%d.jpg", img.Position); img.Entry != want {
				errs = append(errs, fmt.Sprintf("image[%d]: entry %q, want %q", i, img.Entry, want))
			}
		}
		if img.Anchor[0] < 0 || img.Anchor[0] > 1 || img.Anchor[1] < 0 || img.Anchor[1] > 1 {
			errs = append(errs, fmt.Sprintf("image[%d]: anchor %v outside [0,1]", i, img.Anchor))
		}
	}

	// Check the artifact on disk.
	errs = append(errs, validateArtifact(m, baseDir)...)

	// Verify stats consistency.
	var in, out int64
	for _, img := range m.Images {
		in += img.Source.Size
		out += img.Size
	}
	if m.Stats.TotalImages != len(m.Images) {
		errs = append(errs, fmt.Sprintf("stats.total_images mismatch: %d != %d", m.Stats.TotalImages, len(m.Images)))
	}
	if m.Stats.TotalInputBytes != in {
		errs = append(errs, fmt.Sprintf("stats.total_input_bytes mismatch: %d != %d", m.Stats.TotalInputBytes, in))
	}
	if m.Stats.TotalOutputBytes != out {
		errs = append(errs, fmt.Sprintf("stats.total_output_bytes mismatch: %d != %d", m.Stats.TotalOutputBytes, out))
	}
	return errs
}

func validateArtifact(m *Manifest, baseDir string) []string {
	if m.Artifact.Name == "" {
		return []string{"artifact: missing name"}
	}
	path := filepath.Join(baseDir, m.Artifact.Name)
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("artifact: file not found: %s", m.Artifact.Name)}
	}

	var errs []string
	if int64(len(data)) != m.Artifact.Size {
		errs = append(errs, fmt.Sprintf("artifact: size mismatch: manifest=%d, disk=%d", m.Artifact.Size, len(data)))
	}
	if h := hasher.ContentHash(data, 16); h != m.Artifact.Hash {
		errs = append(errs, fmt.Sprintf("artifact: hash mismatch: manifest=%s, disk=%s", m.Artifact.Hash, h))
	}

	if !m.Artifact.Archive {
		if len(m.Images) == 1 && m.Images[0].Hash != m.Artifact.Hash {
			errs = append(errs, "artifact: image hash differs from artifact hash")
		}
		return errs
	}

	entries, err := pipeline.ReadArchive(data)
	if err != nil {
		return append(errs, fmt.Sprintf("artifact: %v", err))
	}
	if len(entries) != len(m.Images) {
		errs = append(errs, fmt.Sprintf("artifact: %d entries, manifest lists %d", len(entries), len(m.Images)))
	}
	for i, img := range m.Images {
		payload, ok := entries[img.Entry]
		if !ok {
			errs = append(errs, fmt.Sprintf("image[%d]: entry %q missing from archive", i, img.Entry))
			continue
		}
		if h := hasher.ContentHash(payload, 16); h != img.Hash {
			errs = append(errs, fmt.Sprintf("image[%d]: hash mismatch: manifest=%s, archive=%s", i, img.Hash, h))
		}
		if int64(len(payload)) != img.Size {
			errs = append(errs, fmt.Sprintf("image[%d]: size mismatch: manifest=%d, archive=%d", i, img.Size, len(payload)))
		}
	}
	return errs
}
