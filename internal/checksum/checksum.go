// Package checksum provides the fixed-width content identifiers that form
// the sole key space of the synchronization protocol, plus ordered checksum
// collections with an aggregate identity.
package checksum

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Size is the width of a checksum in bytes.
const Size = 20

// Checksum is an opaque, fixed-size content identifier with value equality.
// Two equal checksums always resolve to bit-identical payloads.
type Checksum [Size]byte

// Zero is the sentinel for "no checksum".
var Zero Checksum

// ForBytes computes the checksum of a payload under a domain tag. The tag
// keeps identical bytes from colliding across heterogeneous payload kinds.
func ForBytes(domain string, data []byte) Checksum {
	h, err := blake2b.New(Size, nil)
	if err != nil {
		// blake2b.New only fails for invalid sizes or keys; Size is constant.
		panic(fmt.Sprintf("checksum: blake2b init: %v", err))
	}
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write(data)

	var c Checksum
	copy(c[:], h.Sum(nil))
	return c
}

// IsZero reports whether c is the zero sentinel.
func (c Checksum) IsZero() bool {
	return c == Zero
}

// String returns the lowercase hex form of the checksum.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Compare orders checksums lexicographically by value. Used to make batch
// requests deterministic.
func (c Checksum) Compare(other Checksum) int {
	return bytes.Compare(c[:], other[:])
}

// Parse decodes a lowercase hex checksum string.
func Parse(s string) (Checksum, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid checksum %q: %w", s, err)
	}
	if len(raw) != Size {
		return Zero, fmt.Errorf("invalid checksum %q: expected %d bytes, got %d", s, Size, len(raw))
	}
	var c Checksum
	copy(c[:], raw)
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Checksum) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Checksum) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
