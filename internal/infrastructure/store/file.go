// Package store provides implementations of the persisted session slot: an
// encrypted file for single-user devices and redis for shared POS terminals.
package store

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
)

const (
	tokenFileName  = "session.bin"
	deviceFileName = "device_id"
	saltSize       = 16
)

// slot is the JSON payload encrypted into the token file.
type slot struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// FileStore persists the session slot as a single encrypted file. The key
// is derived with scrypt from a per-install device ID, so a copied file is
// useless on another install.
type FileStore struct {
	dir string
}

// NewFileStore creates the store directory (0700) and the per-install
// device ID on first use.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}
	s := &FileStore{dir: dir}
	if _, err := s.deviceID(); err != nil {
		return nil, err
	}
	return s, nil
}

var _ ports.TokenStore = (*FileStore)(nil)

// Load decrypts and returns the persisted slot.
func (s *FileStore) Load(_ context.Context) (string, *domain.User, error) {
	raw, err := os.ReadFile(s.tokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ports.ErrNoToken
		}
		return "", nil, fmt.Errorf("read token file: %w", err)
	}

	if len(raw) < saltSize+chacha20poly1305.NonceSizeX {
		return "", nil, fmt.Errorf("token file truncated")
	}
	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	box := raw[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := s.aead(salt)
	if err != nil {
		return "", nil, err
	}
	plain, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt token file: %w", err)
	}

	var sl slot
	if err := json.Unmarshal(plain, &sl); err != nil {
		return "", nil, fmt.Errorf("decode token file: %w", err)
	}
	if sl.Token == "" {
		return "", nil, ports.ErrNoToken
	}
	return sl.Token, sl.User, nil
}

// Save encrypts and writes the slot, replacing any previous value.
func (s *FileStore) Save(_ context.Context, token string, user *domain.User) error {
	plain, err := json.Marshal(slot{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("encode token slot: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	aead, err := s.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}

	out := append(append(salt, nonce...), aead.Seal(nil, nonce, plain, nil)...)

	tmp := s.tokenPath() + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.tokenPath())
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.tokenPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token file: %w", err)
	}
	return nil
}

func (s *FileStore) tokenPath() string {
	return filepath.Join(s.dir, tokenFileName)
}

// deviceID returns the per-install identifier, generating it on first use.
func (s *FileStore) deviceID() (string, error) {
	path := filepath.Join(s.dir, deviceFileName)
	raw, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(raw)), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write device id: %w", err)
	}
	return id, nil
}

func (s *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	id, err := s.deviceID()
	if err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(id), salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
