// Package source is the acquisition boundary: raw candidate files, the
// image-type filter, directory scanning and decoding.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when bytes do not decode as a supported image.
var ErrNotImage = errors.New("failed to decode image, please use JPG, PNG or WEBP")

// File is a raw candidate handed to the engine. Type may be empty, in which
// case it is derived from the name and then from the content.
type File struct {
	Name string
	Type string
	Data []byte
}

// MIME returns the declared, extension-derived or sniffed content type.
func (f File) MIME() string {
	if f.Type != "" {
		return strings.ToLower(f.Type)
	}
	if ct, ok := imageExtensions[strings.ToLower(filepath.Ext(f.Name))]; ok {
		return ct
	}
	if len(f.Data) == 0 {
		return ""
	}
	return http.DetectContentType(f.Data)
}

// IsImage reports whether the file claims an image content type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.MIME(), "image/")
}

// Load reads a source from disk.
func Load(src Source) (File, error) {
	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", src.RelPath, err)
	}
	return File{Name: filepath.Base(src.AbsPath), Data: data}, nil
}

// LoadAll reads every source, stopping at the first failure.
func LoadAll(srcs []Source) ([]File, error) {
	files := make([]File, 0, len(srcs))
	for _, s := range srcs {
		f, err := Load(s)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Decode decodes image bytes, applying EXIF orientation the way browsers do.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if img.Bounds().Empty() {
		return nil, ErrNotImage
	}
	return img, nil
}
