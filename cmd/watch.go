package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/gridframe-cli/internal/debounce"
	"github.com/AnyUserName/gridframe-cli/internal/manifest"
	"github.com/AnyUserName/gridframe-cli/internal/source"
	"github.com/AnyUserName/gridframe-cli/internal/store"
)

var (
	watchOutDir string
	watchStyle  styleFlags
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Fill the grid from a hot folder and export it",
	Long: `Watches a folder and adds every image that lands in it to the grid,
once the file has stopped changing. Images already in the folder are
added first. The grid is exported when all nine positions are filled
or when the command is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "output directory (default: config out_dir)")
	watchStyle.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// hotFolder feeds settled files into a store.
type hotFolder struct {
	st     style
	store  *store.Store
	settle *debounce.Scheduler

	// mu serializes loads so each Add settles before the next.
	mu   sync.Mutex
	seen map[string]bool
	full chan struct{}
	once sync.Once
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	st, err := watchStyle.parse(cmd)
	if err != nil {
		return err
	}
	outDir := watchOutDir
	if outDir == "" {
		outDir = cfg.OutDir
	}
	absOutput, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}

	h := &hotFolder{
		st:     st,
		store:  newStore(),
		settle: debounce.New(cfg.Settle()),
		seen:   make(map[string]bool),
		full:   make(chan struct{}),
	}
	defer h.store.Cleanup()

	existing, err := source.ScanImages(dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, src := range existing {
		h.load(src.AbsPath)
	}
	fmt.Printf("  Watching %s (%d/%d on the grid), Ctrl-C to export\n", dir, h.store.GridCount(), store.GridSize)

	ctx := cmd.Context()
	h.run(ctx, watcher)

	h.settle.CancelAll()
	h.settle.Wait()
	h.store.Wait()

	// The command context may already be cancelled by the interrupt.
	art, err := h.store.ExportGrid(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	if art == nil {
		fmt.Println("  Nothing to export")
		return nil
	}
	path, err := saveExport(absOutput, manifest.KindGrid, art, h.store.Slots(), true)
	if err != nil {
		return err
	}
	fmt.Printf("  ✓ %d image(s) → %s (%s)\n", len(art.Entries), path, formatBytes(int64(len(art.Data))))
	return nil
}

// run processes events until ctx ends or the grid is full.
func (h *hotFolder) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.full:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !(source.File{Name: name}).IsImage() {
				continue
			}
			// Wait until the file stops changing.
			path := event.Name
			h.settle.Schedule(path, func() { h.load(path) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "err", err)
		}
	}
}

func (h *hotFolder) load(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seen[path] {
		return
	}
	h.seen[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("read failed", "path", path, "err", err)
		return
	}
	ids := h.store.Add([]source.File{{Name: filepath.Base(path), Data: data}})
	if len(ids) == 0 {
		return
	}
	h.store.Wait()
	h.st.apply(h.store, ids[0])
	fmt.Printf("  + %s (%d/%d)\n", filepath.Base(path), h.store.GridCount(), store.GridSize)

	if h.store.Len() >= store.Capacity {
		h.once.Do(func() { close(h.full) })
	}
}
