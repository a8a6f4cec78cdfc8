// Package sha256 provides a SHA-256 implementation of report.Hasher.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher computes hex-encoded SHA-256 digests.
type Hasher struct{}

// New returns a Hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the hex SHA-256 digest of data.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
