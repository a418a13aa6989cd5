package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 returns the hex-encoded SHA-256 digest of b.
// Stores record it alongside streams (file sidecar, blob metadata).
func SHA256(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
