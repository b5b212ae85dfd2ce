package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for export manifests",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, summarize every manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	paths := []string{path}
	if info.IsDir() {
		paths, err = filepath.Glob(filepath.Join(path, "*"+manifest.Suffix))
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no manifests in %s", path)
		}
		sort.Strings(paths)
	}

	for _, p := range paths {
		m, err := manifest.Read(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		printStats(m)
	}
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Artifact:         %s (%s)\n", m.Artifact.Name, m.Kind)
	fmt.Printf("  Generated:        %s\n", generatedAgo(m.GeneratedAt))
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total images:     %d\n", s.TotalImages)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if m.Artifact.Archive {
		fmt.Printf("  Archive size:     %s\n", formatBytes(m.Artifact.Size))
	}
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Output/input:     %.1f%%\n", ratio)
	}
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, img := range m.Images {
		fs := formatStats[img.Format]
		fs.count++
		fs.bytes += img.Size
		formatStats[img.Format] = fs
	}
	fmt.Println("  Format breakdown:")
	for _, f := range []string{"portrait", "square", "landscape"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-10s %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	fmt.Println("  Images:")
	for _, img := range m.Images {
		var bg string
		if img.Fill == "background" {
			bg = fmt.Sprintf("%s %s", img.Background.Kind, strings.Join(img.Background.Colors, "→"))
		} else {
			bg = fmt.Sprintf("crop @ %.2f,%.2f", img.Anchor[0], img.Anchor[1])
		}
		fmt.Printf("    %-6s %-28s %-9s %-24s %8s\n",
			img.Entry, truncKey(img.Source.Name, 28), img.Format, bg, formatBytes(img.Size))
	}

	// Warnings.
	var warnings []string
	for _, img := range m.Images {
		if img.Source.Size > 0 && img.Size > img.Source.Size {
			warnings = append(warnings, fmt.Sprintf("%s is larger than its source (%s > %s)",
				img.Entry, formatBytes(img.Size), formatBytes(img.Source.Size)))
		}
		if len(img.Palette) == 0 && img.Fill == "background" {
			warnings = append(warnings, fmt.Sprintf("%s has no palette; placeholder background used", img.Entry))
		}
	}
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}

func generatedAgo(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s (%s)", ts, humanize.Time(t))
}
