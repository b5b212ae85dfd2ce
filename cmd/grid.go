package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/manifest"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

var (
	gridOutDir     string
	gridPositions  []int
	gridNoManifest bool
	gridStyle      styleFlags
)

var gridCmd = &cobra.Command{
	Use:   "grid <file|dir>...",
	Short: "Lay out up to nine photos on a 3x3 grid and export them together",
	Long: `Places photos on the grid in order (first empty position first) and
exports every occupied position in reading order. Positions are
numbered 1-9, left to right, top to bottom.

A single occupied position is written as <pos>.jpg; more are bundled
into instagram-grid-<millis>.zip with entries 1.jpg ... 9.jpg.
Photos beyond the ninth are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGrid,
}

func init() {
	gridCmd.Flags().StringVarP(&gridOutDir, "out", "o", "", "output directory (default: config out_dir)")
	gridCmd.Flags().IntSliceVarP(&gridPositions, "positions", "p", nil, "1-based grid position for each photo, in order")
	gridCmd.Flags().BoolVar(&gridNoManifest, "no-manifest", false, "skip writing the manifest")
	gridStyle.register(gridCmd)
	rootCmd.AddCommand(gridCmd)
}

func runGrid(cmd *cobra.Command, args []string) error {
	start := time.Now()
	st, err := gridStyle.parse(cmd)
	if err != nil {
		return err
	}
	files, err := loadFiles(args)
	if err != nil {
		return err
	}
	if len(files) > store.Capacity {
		fmt.Printf("  ⚠ %d photos given, only the first %d fit the grid\n", len(files), store.Capacity)
	}
	outDir := gridOutDir
	if outDir == "" {
		outDir = cfg.OutDir
	}
	absOutput, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	s := newStore()
	defer s.Cleanup()

	ids := s.Add(files)
	if len(gridPositions) > 0 {
		displaced, err := placeAt(s, ids, gridPositions)
		if err != nil {
			return err
		}
		for _, id := range displaced {
			if sl, ok := s.Slot(id); ok {
				fmt.Printf("  ⚠ %s was displaced by --positions and will not be exported\n", sl.Name)
			}
		}
	}
	s.Wait()
	for _, id := range ids {
		st.apply(s, id)
	}
	s.Wait()

	for _, sl := range s.Slots() {
		if sl.State == store.Failed {
			fmt.Printf("  ✗ %s: %s\n", sl.Name, slotFailure(sl, nil))
		}
	}

	art, err := s.ExportGrid(cmd.Context())
	if err != nil {
		return err
	}
	if art == nil {
		return fmt.Errorf("nothing to export: %s", orNone(s.Err()))
	}

	path, err := saveExport(absOutput, manifest.KindGrid, art, s.Slots(), !gridNoManifest)
	if err != nil {
		return err
	}

	printGridReport(s.Grid(), s, art.Entries, path, time.Since(start))
	return nil
}

// placeAt assigns ids[i] to 1-based position positions[i]. Photos past
// the end of positions keep their automatic position unless displaced;
// the displaced ones are returned in order.
func placeAt(s *store.Store, ids []string, positions []int) ([]string, error) {
	if len(positions) > len(ids) {
		return nil, fmt.Errorf("%d positions for %d photos", len(positions), len(ids))
	}
	seen := map[int]bool{}
	for _, p := range positions {
		if p < 1 || p > store.GridSize {
			return nil, fmt.Errorf("position %d outside 1-%d", p, store.GridSize)
		}
		if seen[p] {
			return nil, fmt.Errorf("position %d given twice", p)
		}
		seen[p] = true
	}
	for i, p := range positions {
		if err := s.Assign(ids[i], p-1); err != nil {
			return nil, err
		}
	}

	onGrid := map[string]bool{}
	for _, id := range s.Grid() {
		onGrid[id] = true
	}
	var displaced []string
	for _, id := range ids[len(positions):] {
		if !onGrid[id] {
			displaced = append(displaced, id)
		}
	}
	return displaced, nil
}

func orNone(s string) string {
	if s == "" {
		return "no decoded photos"
	}
	return s
}
