package manifest

// Manifest is the sidecar written next to every gridframe export.
type Manifest struct {
	Version     int      `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	Kind        string   `json:"kind"` // KindSingle or KindGrid
	Artifact    Artifact `json:"artifact"`
	Images      []Image  `json:"images"`
	Stats       Stats    `json:"stats"`
}

const (
	KindSingle = "single"
	KindGrid   = "grid"
)

// Artifact describes the exported file itself.
type Artifact struct {
	Name        string `json:"name"` // relative to the manifest's directory
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"` // 16 hex chars of xxhash64
	Archive     bool   `json:"archive"`
}

// Image describes one rendered image. For archives Entry names the zip
// entry; otherwise it equals the artifact name.
type Image struct {
	Entry      string     `json:"entry"`
	Position   int        `json:"position,omitempty"` // 1-based grid position
	Slot       string     `json:"slot"`
	Source     SourceInfo `json:"source"`
	Format     string     `json:"format"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Fill       string     `json:"fill"`
	Background Background `json:"background"`
	Anchor     [2]float64 `json:"anchor"`
	Palette    []string   `json:"palette,omitempty"` // "#rrggbb", dominant first
	Size       int64      `json:"size"`
	Hash       string     `json:"hash"`
}

// SourceInfo holds metadata about the original photo.
type SourceInfo struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// Background is the fill used under a contained image.
type Background struct {
	Kind   string   `json:"kind"`
	Colors []string `json:"colors"`
}

// Stats aggregates export metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalImages      int   `json:"total_images"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
