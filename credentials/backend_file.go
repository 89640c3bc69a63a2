package credentials

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/jrsteele09/mitti-dashboard/internal/errors"
)

const (
	fileSlotName = "credential.token"
	fileKeyName  = "credential.key"
)

var _ Backend = (*FileBackend)(nil)

// FileBackend stores the slot as a securecookie-encoded file, so a hand-edited
// or truncated file reads as corrupt instead of being sent to the backend.
type FileBackend struct {
	path  string
	codec *securecookie.SecureCookie
}

// NewFileBackend keeps the slot under folder. When hashKey is nil a random key
// is generated once and kept next to the slot. blockKey, when set, must be 16,
// 24 or 32 bytes and turns on encryption.
func NewFileBackend(folder string, hashKey, blockKey []byte) (*FileBackend, error) {
	if folder == "" {
		return nil, fmt.Errorf("credential folder is required")
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("create credential folder: %w", err)
	}

	if hashKey == nil {
		key, err := loadOrCreateKey(filepath.Join(folder, fileKeyName))
		if err != nil {
			return nil, err
		}
		hashKey = key
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(0) // expiry is the backend's call, not ours

	return &FileBackend{
		path:  filepath.Join(folder, fileSlotName),
		codec: codec,
	}, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil && len(key) > 0 {
		return key, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read credential key: %w", err)
	}

	key = securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, fmt.Errorf("generate credential key: no entropy")
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write credential key: %w", err)
	}
	return key, nil
}

func (b *FileBackend) Save(_ context.Context, credential string) error {
	encoded, err := b.codec.Encode(SlotName, credential)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), fileSlotName+".*")
	if err != nil {
		return fmt.Errorf("create credential file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (b *FileBackend) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}

	encoded := strings.TrimSpace(string(data))
	if encoded == "" {
		return "", ErrNoCredential
	}

	var credential string
	if err := b.codec.Decode(SlotName, encoded, &credential); err != nil {
		return "", errors.Wrapf(errors.ErrCorruptCredential, "decode %s: %v", b.path, err)
	}
	if credential == "" {
		return "", ErrNoCredential
	}
	return credential, nil
}

func (b *FileBackend) Clear(_ context.Context) error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
