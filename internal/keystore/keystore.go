// ABOUTME: Encrypted-at-rest storage for the refresh token
// ABOUTME: Uses an age X25519 identity generated on first use

package keystore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/google/uuid"
)

const (
	identityFile = "identity.key"
	tokenFile    = "refresh_token.age"
	deviceIDFile = "device_id"
)

// Keystore persists the refresh token encrypted to a local age identity.
// The access token is never written to disk.
type Keystore struct {
	dir string
}

// Open prepares the keystore directory, creating it if needed.
func Open(dir string) (*Keystore, error) {
	if dir == "" {
		return nil, errors.New("keystore dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

// Dir returns the keystore directory.
func (k *Keystore) Dir() string {
	return k.dir
}

// SaveRefreshToken encrypts and writes the refresh token.
func (k *Keystore) SaveRefreshToken(token string) error {
	if token == "" {
		return errors.New("refresh token must not be empty")
	}
	identity, err := k.loadOrCreateIdentity()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}
	if _, err := io.WriteString(w, token); err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	if err := os.WriteFile(filepath.Join(k.dir, tokenFile), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write refresh token: %w", err)
	}
	return nil
}

// LoadRefreshToken reads back the persisted refresh token.
// Returns "" with no error when nothing is stored.
func (k *Keystore) LoadRefreshToken() (string, error) {
	data, err := os.ReadFile(filepath.Join(k.dir, tokenFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}

	identity, err := k.loadIdentity()
	if err != nil {
		return "", err
	}
	if identity == nil {
		// Token file without its identity cannot be recovered.
		return "", errors.New("keystore identity missing")
	}

	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	token, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	return string(token), nil
}

// DeleteRefreshToken removes the persisted refresh token. Deleting an
// absent token is not an error.
func (k *Keystore) DeleteRefreshToken() error {
	err := os.Remove(filepath.Join(k.dir, tokenFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// DeviceID returns the install-scoped device identifier, generating and
// persisting one on first call. The id is not a secret.
func (k *Keystore) DeviceID() (string, error) {
	path := filepath.Join(k.dir, deviceIDFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write device id: %w", err)
	}
	return id, nil
}

func (k *Keystore) loadIdentity() (*age.X25519Identity, error) {
	data, err := os.ReadFile(filepath.Join(k.dir, identityFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore identity: %w", err)
	}
	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse keystore identity: %w", err)
	}
	return identity, nil
}

func (k *Keystore) loadOrCreateIdentity() (*age.X25519Identity, error) {
	identity, err := k.loadIdentity()
	if err != nil {
		return nil, err
	}
	if identity != nil {
		return identity, nil
	}

	identity, err = age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keystore identity: %w", err)
	}
	path := filepath.Join(k.dir, identityFile)
	if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write keystore identity: %w", err)
	}
	return identity, nil
}
