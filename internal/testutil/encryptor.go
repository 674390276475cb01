package testutil

import (
	"gbadb/internal/encryption"
)

// NewTestEncryptor creates a deterministic encryptor for save-state tests.
func NewTestEncryptor() *encryption.TestEncryptor {
	return encryption.NewTestEncryptor()
}
