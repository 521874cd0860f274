package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex encoded SHA-256 of input. Used to build fixed-length
// storage keys from feed URLs.
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
