package testutil

import (
	"crypto/sha1"
	"encoding/hex"
)

// SHA1Hex returns the SHA-1 checksum of data as a lowercase hex string.
// Matches the game identity produced by gba.ResolveIdentity.
func SHA1Hex(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}
