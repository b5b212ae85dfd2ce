package encoder

import (
	"image"
)

// Output qualities. Previews favour latency, exports favour fidelity.
const (
	PreviewQuality = 85
	ExportQuality  = 95
)

// Encoder encodes an image to a lossy output format.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg").
	Format() string

	// Extension returns the file extension without dot.
	Extension() string

	// ContentType returns the MIME type of the encoded bytes.
	ContentType() string

	// Encode converts the image to bytes at the given quality (1-100).
	Encode(img image.Image, quality int) ([]byte, error)
}

// Default returns the encoder used for previews and exports.
func Default() Encoder {
	return &JPEGEncoder{}
}
