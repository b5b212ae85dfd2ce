package blob

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateRelease(t *testing.T) {
	r := New(t.TempDir())
	path, err := r.Create("Photo.JPG", []byte("abc"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("path %s lost the extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, []byte("abc")) {
		t.Fatalf("read back: %q, %v", data, err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d", r.Len())
	}

	if err := r.Release(path); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if err := r.Release(path); err != nil {
		t.Errorf("second release: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after release", r.Len())
	}
}

func TestReleaseIgnoresForeignPaths(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "keep.png")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(dir)
	if err := r.Release(other); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("foreign file removed: %v", err)
	}
}

func TestReleaseAll(t *testing.T) {
	r := New(t.TempDir())
	var paths []string
	for range 4 {
		p, err := r.Create("a.png", []byte{1})
		if err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	if err := r.ReleaseAll(); err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still present", p)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d", r.Len())
	}
}
