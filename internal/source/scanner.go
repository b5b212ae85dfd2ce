package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered image file on disk.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the scanned directory.
	RelPath string
	// Format is the normalized extension (png, jpeg, webp, gif, bmp, tiff).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// ScanImages walks dir and returns every image source in lexical order.
func ScanImages(dir string) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := imageExtensions[ext]; !ok {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: abs,
			RelPath: filepath.ToSlash(relPath),
			Format:  normalizeFormat(ext),
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}

// Collect expands a mix of file and directory arguments into sources.
// Files are kept even with unrecognized extensions; the store filters them.
func Collect(args []string) ([]Source, error) {
	var out []Source
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if info.IsDir() {
			found, err := ScanImages(arg)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", arg, err)
			}
			out = append(out, found...)
			continue
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		out = append(out, Source{
			AbsPath: abs,
			RelPath: filepath.Base(arg),
			Format:  normalizeFormat(strings.ToLower(filepath.Ext(arg))),
			Size:    info.Size(),
		})
	}
	return out, nil
}

func normalizeFormat(ext string) string {
	format := strings.TrimPrefix(ext, ".")
	switch format {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return format
}
