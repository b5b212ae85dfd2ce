package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/AnyUserName/gridframe-cli/internal/pipeline"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

func printGridReport(grid [store.GridSize]string, s *store.Store, entries []pipeline.Entry, path string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             gridframe export complete            ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	byPos := map[int]pipeline.Entry{}
	var total int64
	for _, e := range entries {
		byPos[e.Position] = e
		total += e.Size
	}

	// 3x3 layout, one cell per position.
	for row := range 3 {
		fmt.Print("  ")
		for col := range 3 {
			pos := row*3 + col + 1
			cell := "   ·   "
			if _, ok := byPos[pos]; ok {
				cell = fmt.Sprintf(" [%d]   ", pos)
			}
			fmt.Print(cell)
		}
		fmt.Println()
	}
	fmt.Println()

	for pos := 1; pos <= store.GridSize; pos++ {
		e, ok := byPos[pos]
		if !ok {
			continue
		}
		name := grid[pos-1]
		if sl, ok := s.Slot(e.SlotID); ok {
			name = sl.Name
		}
		fmt.Printf("    %-6s %-32s %-9s %8s\n", e.Name, truncKey(name, 32), e.Format, formatBytes(e.Size))
	}
	fmt.Println()
	fmt.Printf("  Images:  %d\n", len(entries))
	fmt.Printf("  Output:  %s (%s)\n", filepath.Base(path), formatBytes(total))
	fmt.Printf("  Time:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
}
