package encoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func noisy(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 37) ^ (y * 11)), G: uint8(x * y), B: uint8(y * 7), A: 255,
			})
		}
	}
	return img
}

func TestJPEG_Decodable(t *testing.T) {
	data, err := Default().Encode(noisy(64, 48), ExportQuality)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("decoded size %v", b)
	}
}

func TestJPEG_ExportLargerThanPreview(t *testing.T) {
	img := noisy(128, 128)
	enc := &JPEGEncoder{}
	preview, err := enc.Encode(img, PreviewQuality)
	if err != nil {
		t.Fatal(err)
	}
	export, err := enc.Encode(img, ExportQuality)
	if err != nil {
		t.Fatal(err)
	}
	if len(export) <= len(preview) {
		t.Errorf("export %d bytes <= preview %d bytes", len(export), len(preview))
	}
}

func TestJPEG_NilImage(t *testing.T) {
	if _, err := Default().Encode(nil, 90); err == nil {
		t.Error("expected error")
	}
}

func TestDataURL_RoundTrip(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0x00, 0x10}
	u := DataURL("image/jpeg", payload)
	if u[:23] != "data:image/jpeg;base64," {
		t.Fatalf("prefix: %s", u)
	}
	ct, data, err := ParseDataURL(u)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ct != "image/jpeg" || !bytes.Equal(data, payload) {
		t.Errorf("got %q %v", ct, data)
	}
}

func TestParseDataURL_Invalid(t *testing.T) {
	for _, s := range []string{"", "image/jpeg;base64,AAAA", "data:image/jpeg,AAAA", "data:image/jpeg;base64,", "data:x;base64,!!!"} {
		if _, _, err := ParseDataURL(s); !errors.Is(err, ErrBadDataURL) {
			t.Errorf("ParseDataURL(%q) err = %v", s, err)
		}
	}
}
