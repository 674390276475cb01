package encryption

import (
	"bytes"
	"errors"
	"testing"
)

func TestTestEncryptor_SealUnseal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "save state payload", input: []byte("CORE-SNAPSHOT\x00\x01\x02")},
		{name: "empty", input: []byte{}},
		{name: "large", input: bytes.Repeat([]byte{0xAA, 0x55}, 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewTestEncryptor()

			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !bytes.HasPrefix(sealed.Bytes(), testHeader) {
				t.Error("sealed payload does not start with test header")
			}

			ctx, err := e.Unlock("anything")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}

			var plain bytes.Buffer
			if err := ctx.Decrypt(bytes.NewReader(sealed.Bytes()), &plain); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plain.Bytes(), tt.input) {
				t.Errorf("round trip: got %d bytes, want %d", plain.Len(), len(tt.input))
			}
		})
	}
}

func TestTestEncryptor_Unlock(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if _, err := e.Unlock("secret"); err != nil {
		t.Errorf("Unlock(correct) error = %v", err)
	}
	if _, err := e.Unlock("guess"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Unlock(wrong) error = %v, want ErrWrongPassphrase", err)
	}
}

func TestTestDecryptionContext_RejectsPlaintext(t *testing.T) {
	t.Parallel()

	for name, input := range map[string][]byte{
		"plaintext payload": []byte("NOT_A_SEALED_PAYLOAD"),
		"truncated header":  []byte("GBA"),
		"empty":             nil,
	} {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			if err := (&TestDecryptionContext{}).Decrypt(bytes.NewReader(input), &out); err == nil {
				t.Error("Decrypt() expected error")
			}
		})
	}
}
