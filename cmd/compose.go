package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/manifest"
	"github.com/AnyUserName/gridframe-cli/internal/source"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

var (
	composeOutDir     string
	composeNoManifest bool
	composeStyle      styleFlags
)

var composeCmd = &cobra.Command{
	Use:   "compose <file|dir>...",
	Short: "Render each photo to its own Instagram-ready JPEG",
	Long: `Fits every input photo into an Instagram canvas and writes one JPEG
per photo at export quality. The format is detected from the photo's
aspect ratio unless --format is given; the background defaults to the
photo's dominant colour.

Output files are named <photo>-instagram-<format>.jpg.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeOutDir, "out", "o", "", "output directory (default: config out_dir)")
	composeCmd.Flags().BoolVar(&composeNoManifest, "no-manifest", false, "skip writing manifest files")
	composeStyle.register(composeCmd)
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	start := time.Now()
	st, err := composeStyle.parse(cmd)
	if err != nil {
		return err
	}
	files, err := loadFiles(args)
	if err != nil {
		return err
	}
	outDir := composeOutDir
	if outDir == "" {
		outDir = cfg.OutDir
	}
	absOutput, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	logVerbose("output: %s", absOutput)

	s := newStore()
	defer s.Cleanup()

	var written, failed int
	var total int64
	// The store holds at most nine slots; larger inputs go in batches.
	for batch := range chunk(files, store.Capacity) {
		ids := s.Add(batch)
		s.Wait()

		for _, id := range ids {
			st.apply(s, id)
			s.Wait()

			sl, _ := s.Slot(id)
			art, err := s.ExportSlot(cmd.Context(), id)
			if err != nil || art == nil {
				failed++
				fmt.Printf("  ✗ %s: %s\n", sl.Name, slotFailure(sl, err))
				continue
			}
			base := strings.TrimSuffix(sl.Name, filepath.Ext(sl.Name))
			art.Name = base + "-" + art.Name
			art.Entries[0].Name = art.Name

			path, err := saveExport(absOutput, manifest.KindSingle, art, []store.Slot{sl}, !composeNoManifest)
			if err != nil {
				return err
			}
			written++
			total += int64(len(art.Data))
			fmt.Printf("  ✓ %-32s %-9s %8s  → %s\n",
				truncKey(sl.Name, 32), sl.Params.Format, formatBytes(int64(len(art.Data))), filepath.Base(path))
		}
		s.Cleanup()
	}

	fmt.Println()
	fmt.Printf("  Written: %d  Failed: %d  Output: %s  Time: %s\n",
		written, failed, formatBytes(total), time.Since(start).Round(time.Millisecond))
	if written == 0 {
		return fmt.Errorf("no images exported")
	}
	return nil
}

// slotFailure explains why sl produced no export. The slot's own message
// wins over the store-wide one, which only holds the latest failure.
func slotFailure(sl store.Slot, exportErr error) string {
	switch {
	case exportErr != nil:
		return exportErr.Error()
	case sl.Err != "":
		return sl.Err
	}
	return "not rendered"
}

// chunk yields consecutive slices of at most n files.
func chunk(files []source.File, n int) func(func([]source.File) bool) {
	return func(yield func([]source.File) bool) {
		for len(files) > 0 {
			k := min(n, len(files))
			if !yield(files[:k]) {
				return
			}
			files = files[k:]
		}
	}
}
