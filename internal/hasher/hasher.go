package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ShortLen is the hex length used in slot identities.
const ShortLen = 8

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen (hexLen <= 0 returns all 16 chars).
func ContentHash(data []byte, hexLen int) string {
	return truncate(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(h.Sum64(), hexLen), nil
}

// SlotID builds a slot identity from an insertion sequence number and
// the source bytes. The sequence keeps identities unique when the same
// photo is added twice.
func SlotID(seq uint64, data []byte) string {
	return fmt.Sprintf("img-%d-%s", seq, ContentHash(data, ShortLen))
}

func truncate(v uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
