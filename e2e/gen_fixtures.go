//go:build ignore

// gen_fixtures writes photos of every aspect class for the E2E smoke test:
//
//	go run gen_fixtures.go <output_dir>
//	gridframe grid <output_dir> -o <output_dir>/out
//	gridframe validate <output_dir>/out/instagram-grid-*.manifest.json
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

type fixture struct {
	name string
	w, h int
	img  func(w, h int) *image.NRGBA
}

var fixtures = []fixture{
	{"portrait.jpg", 400, 500, diagonal},
	{"square.png", 300, 300, stripes},
	{"landscape.jpg", 573, 300, diagonal},
	{"panorama.jpg", 1200, 240, stripes},
	{"tall.png", 200, 600, diagonal},
	{"snow.png", 320, 320, nearWhite},
	{"logo.png", 256, 256, alphaDisc},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}

	for _, f := range fixtures {
		path := filepath.Join(dir, f.name)
		img := f.img(f.w, f.h)
		if filepath.Ext(f.name) == ".jpg" {
			writeJPEG(path, img)
		} else {
			writePNG(path, img)
		}
	}

	// Not an image; the grid command must skip it.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me\n"), 0o644); err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures in %s\n", len(fixtures), dir)
}

// diagonal blends warm to cool along the diagonal, so crop anchors
// produce visibly different windows.
func diagonal(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := (x*h + y*w) * 255 / (2 * w * h)
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(255 - t), G: 90, B: uint8(t), A: 255})
		}
	}
	return img
}

func stripes(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	palette := []color.NRGBA{
		{R: 34, G: 139, B: 34, A: 255},
		{R: 34, G: 139, B: 34, A: 255},
		{R: 240, G: 200, B: 60, A: 255},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, palette[(x/20)%len(palette)])
		}
	}
	return img
}

func nearWhite(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(251 + (x+y)%4)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func alphaDisc(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy, r := w/2, h/2, min(w, h)/2-4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, color.NRGBA{R: 220, G: 60, B: 30, A: 255})
			}
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
}
