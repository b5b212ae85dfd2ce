package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/blob"
	"github.com/AnyUserName/gridframe-cli/internal/colour"
	"github.com/AnyUserName/gridframe-cli/internal/format"
	"github.com/AnyUserName/gridframe-cli/internal/manifest"
	"github.com/AnyUserName/gridframe-cli/internal/pipeline"
	"github.com/AnyUserName/gridframe-cli/internal/render"
	"github.com/AnyUserName/gridframe-cli/internal/source"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

// styleFlags are the per-image edits shared by compose, grid and watch.
type styleFlags struct {
	format     string
	fill       string
	anchor     string
	background string
	colors     []string
}

func (f *styleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "auto", "output format: auto, portrait, square or landscape")
	cmd.Flags().StringVar(&f.fill, "fill", "background", "fill mode: background (letterbox) or crop (cover)")
	cmd.Flags().StringVar(&f.anchor, "anchor", "0.5,0.5", "crop anchor x,y in [0,1]")
	cmd.Flags().StringVar(&f.background, "background", "solid", "background kind: solid or gradient")
	cmd.Flags().StringSliceVar(&f.colors, "color", nil, "background colour(s) as #rrggbb (default: dominant photo colour)")
}

// style is the parsed form of styleFlags.
type style struct {
	format   format.Format
	auto     bool
	fill     render.FillMode
	anchor   render.Anchor
	kind     render.BackgroundKind
	colors   []colour.RGB
	explicit bool // any background flag set
}

func (f *styleFlags) parse(cmd *cobra.Command) (style, error) {
	var s style
	var err error

	if strings.EqualFold(f.format, "auto") {
		s.auto = true
	} else if s.format, err = format.Parse(f.format); err != nil {
		return s, err
	}
	if s.fill, err = render.ParseFillMode(f.fill); err != nil {
		return s, err
	}
	if s.anchor, err = parseAnchor(f.anchor); err != nil {
		return s, err
	}
	if s.kind, err = render.ParseBackgroundKind(f.background); err != nil {
		return s, err
	}
	for _, c := range f.colors {
		rgb, err := colour.ParseHex(c)
		if err != nil {
			return s, err
		}
		s.colors = append(s.colors, rgb)
	}
	s.explicit = cmd.Flags().Changed("background") || cmd.Flags().Changed("color")
	return s, nil
}

func parseAnchor(v string) (render.Anchor, error) {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return render.Anchor{}, fmt.Errorf("anchor %q: want x,y", v)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return render.Anchor{}, fmt.Errorf("anchor x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return render.Anchor{}, fmt.Errorf("anchor y: %w", err)
	}
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return render.Anchor{}, fmt.Errorf("anchor %q outside [0,1]", v)
	}
	return render.Anchor{X: x, Y: y}, nil
}

// apply edits slot id the way a user would: make it active, then issue
// each parameter change. Untouched defaults issue nothing.
func (s style) apply(st *store.Store, id string) {
	st.SetActive(id)
	sl, ok := st.Slot(id)
	if !ok || sl.State == store.Failed {
		return
	}
	if !s.auto && sl.Params.Format != s.format {
		st.SetFormat(s.format)
	}
	if s.explicit {
		colors := s.colors
		if len(colors) == 0 {
			colors = sl.Params.Background.Colors
		}
		st.SetBackground(render.Background{Kind: s.kind, Colors: colors})
	}
	if sl.Params.Fill != s.fill {
		st.SetFillMode(s.fill)
	}
	if s.anchor != sl.Params.Anchor {
		st.SetCropAnchor(s.anchor.X, s.anchor.Y)
	}
}

// newStore builds a store from the loaded config.
func newStore() *store.Store {
	return store.New(store.Options{
		Renderer:       render.NewCompositor(),
		Blobs:          blob.New(""),
		Debounce:       cfg.Debounce(),
		PreviewQuality: cfg.PreviewQuality,
		ExportQuality:  cfg.ExportQuality,
	})
}

// loadFiles expands files and directories into candidate files.
func loadFiles(args []string) ([]source.File, error) {
	srcs, err := source.Collect(args)
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no images found in %s", strings.Join(args, ", "))
	}
	logVerbose("found %d candidate files", len(srcs))
	return source.LoadAll(srcs)
}

// saveExport writes an artifact and, unless disabled, its manifest.
func saveExport(dir, kind string, art *pipeline.Artifact, slots []store.Slot, writeManifest bool) (string, error) {
	path, err := art.Save(dir)
	if err != nil {
		return "", err
	}
	if writeManifest {
		m := manifest.FromExport(kind, art, slots)
		mp := manifest.PathFor(dir, art.Name)
		if err := manifest.WriteJSON(m, mp); err != nil {
			return "", fmt.Errorf("write manifest: %w", err)
		}
		logVerbose("manifest: %s", mp)
	}
	return path, nil
}

func formatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.Bytes(uint64(b))
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
