package encoder

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadDataURL is returned by ParseDataURL for anything that is not a
// base64 data URL.
var ErrBadDataURL = errors.New("invalid data URL")

// DataURL wraps encoded bytes as "data:<type>;base64,<payload>".
func DataURL(contentType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(contentType) + 13 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// ParseDataURL splits a base64 data URL into its content type and payload.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	ct, ok := strings.CutSuffix(meta, ";base64")
	if !ok || payload == "" {
		return "", nil, ErrBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrBadDataURL, err)
	}
	return ct, data, nil
}
