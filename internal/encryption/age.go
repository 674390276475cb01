package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"

	"gbadb/internal/config"
	"gbadb/internal/gba"
)

// ErrWrongPassphrase is returned by Unlock when the passphrase does not open
// the private key.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// AgeEncryptor seals save-state payloads to an X25519 key pair.
//
// The public key sits in plaintext next to the library, so saving a game
// never prompts. The private key is itself an age file sealed with the
// user's passphrase (scrypt) and is opened only to load or export an
// encrypted save state.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string

	mu        sync.Mutex
	recipient age.Recipient
}

var _ gba.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor for the configured key paths.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup generates the library key pair. It refuses to run when either key
// file already exists, since save states sealed to the old key would become
// unreadable. Each key is written to a temporary file and renamed into
// place, private key first, so a failed Setup never leaves a public key
// without its private half.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("save-state key already exists at %s", p)
		}
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating save-state key: %w", err)
	}

	lock, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("deriving passphrase key: %w", err)
	}
	var sealed bytes.Buffer
	w, err := age.Encrypt(&sealed, lock)
	if err != nil {
		return fmt.Errorf("sealing private key: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("sealing private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sealing private key: %w", err)
	}

	if err := writeKeyFile(e.privateKeyPath, sealed.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := writeKeyFile(e.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		os.Remove(e.privateKeyPath)
		return fmt.Errorf("writing public key: %w", err)
	}
	return nil
}

func writeKeyFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".key-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Encrypt seals the payload read from r to the public key and writes the
// age file to w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := e.loadRecipient()
	if err != nil {
		return err
	}

	sw, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("starting payload encryption: %w", err)
	}
	if _, err := io.Copy(sw, r); err != nil {
		return fmt.Errorf("encrypting payload: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("finishing payload encryption: %w", err)
	}
	return nil
}

// Unlock opens the private key with passphrase. A passphrase that does not
// match yields ErrWrongPassphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (gba.DecryptionContext, error) {
	sealed, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("deriving passphrase key: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), scrypt)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) || errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, ErrWrongPassphrase
		}
		return nil, fmt.Errorf("opening private key: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("opening private key: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(plain))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("private key file holds no identity")
	}
	return &AgeDecryptionContext{identity: identities[0]}, nil
}

// IsConfigured reports whether both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// loadRecipient parses the public key on first use and keeps it.
func (e *AgeEncryptor) loadRecipient() (age.Recipient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recipient != nil {
		return e.recipient, nil
	}

	data, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("public key file %s holds no recipient", e.publicKeyPath)
	}

	e.recipient = recipients[0]
	return e.recipient, nil
}

// AgeDecryptionContext opens sealed payloads with an unlocked identity.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ gba.DecryptionContext = (*AgeDecryptionContext)(nil)

// Decrypt opens the age file read from r and writes the payload to w.
func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	pr, err := age.Decrypt(r, c.identity)
	if err != nil {
		return fmt.Errorf("opening sealed payload: %w", err)
	}
	if _, err := io.Copy(w, pr); err != nil {
		return fmt.Errorf("decrypting payload: %w", err)
	}
	return nil
}
