// Package blob hands out temporary on-disk handles for original source
// bytes so other processes (previews, editors) can open them by path.
// Every handle must be released; ReleaseAll clears whatever is left.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// Registry tracks live handles.
type Registry struct {
	dir  string
	mu   sync.Mutex
	live map[string]struct{}
}

// New returns a registry creating files in dir ("" means os.TempDir()).
func New(dir string) *Registry {
	return &Registry{dir: dir, live: make(map[string]struct{})}
}

// Create writes data to a new temp file and returns its path.
func (r *Registry) Create(name string, data []byte) (string, error) {
	id := tempCounter.Add(1)
	ext := strings.ToLower(filepath.Ext(name))
	f, err := os.CreateTemp(r.dir, fmt.Sprintf("gridframe_src_%d_*%s", id, ext))
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp: %w", err)
	}

	r.mu.Lock()
	r.live[path] = struct{}{}
	r.mu.Unlock()
	return path, nil
}

// Release removes a handle. Unknown or already released paths are ignored.
func (r *Registry) Release(path string) error {
	r.mu.Lock()
	_, ok := r.live[path]
	delete(r.live, path)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release %s: %w", path, err)
	}
	return nil
}

// ReleaseAll removes every live handle.
func (r *Registry) ReleaseAll() error {
	r.mu.Lock()
	paths := make([]string, 0, len(r.live))
	for p := range r.live {
		paths = append(paths, p)
	}
	r.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := r.Release(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
