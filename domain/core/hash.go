package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// StreamSeed derives a 64-bit seed for a named random stream. The same base
// seed and labels always yield the same value, and distinct labels yield
// unrelated values, so streams can be partitioned without coordination.
func StreamSeed(base uint64, labels ...string) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], base)

	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte(strings.Join(labels, "\x1f")))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}
