package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32

	// scrypt parameters per the package's recommended interactive values.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// FileStore is a Store backed by a single JSON file, the desktop analog of a
// mobile key-value store. When a passphrase is configured every value is
// sealed with a scrypt-derived secretbox key, so tokens are never written to
// disk in the clear.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  *[keyLength]byte // nil means plaintext mode
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore) error

// WithPassphrase enables at-rest encryption of stored values. The key is
// derived per store file with a random salt persisted in the file header.
func WithPassphrase(passphrase string) FileStoreOption {
	return func(fs *FileStore) error {
		if passphrase == "" {
			return errors.New("[WithPassphrase] empty passphrase")
		}
		salt, err := fs.loadOrCreateSalt()
		if err != nil {
			return err
		}
		derived, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
		if err != nil {
			return errors.Wrap(err, "[WithPassphrase] scrypt.Key")
		}
		fs.key = new([keyLength]byte)
		copy(fs.key[:], derived)
		return nil
	}
}

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] os.MkdirAll")
	}
	fs := &FileStore{path: path}
	for _, opt := range options {
		if err := opt(fs); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// fileContents is the on-disk layout. Values are raw strings in plaintext
// mode and base64(nonce||box) when a passphrase is set.
type fileContents struct {
	Salt   string            `json:"salt,omitempty"`
	Values map[string]string `json:"values"`
}

func (fs *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	contents, err := fs.load()
	if err != nil {
		return "", err
	}
	stored, ok := contents.Values[key]
	if !ok {
		return "", ErrNotFound
	}
	if fs.key == nil {
		return stored, nil
	}
	return fs.open(stored)
}

func (fs *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	contents, err := fs.load()
	if err != nil {
		return err
	}
	if fs.key != nil {
		if value, err = fs.seal(value); err != nil {
			return err
		}
	}
	contents.Values[key] = value
	return fs.save(contents)
}

func (fs *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	contents, err := fs.load()
	if err != nil {
		return err
	}
	delete(contents.Values, key)
	return fs.save(contents)
}

func (fs *FileStore) load() (*fileContents, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return &fileContents{Values: map[string]string{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.load] os.ReadFile")
	}
	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, errors.Wrap(err, "[FileStore.load] json.Unmarshal")
	}
	if contents.Values == nil {
		contents.Values = map[string]string{}
	}
	return &contents, nil
}

func (fs *FileStore) save(contents *fileContents) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return errors.Wrap(err, "[FileStore.save] json.Marshal")
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.save] os.WriteFile")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.save] os.Rename")
	}
	return nil
}

func (fs *FileStore) seal(value string) (string, error) {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", errors.Wrap(err, "[FileStore.seal] rand.Read")
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, fs.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (fs *FileStore) open(stored string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", errors.Wrap(err, "[FileStore.open] base64 decode")
	}
	if len(sealed) < nonceLength {
		return "", errors.New("[FileStore.open] stored value too short")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	opened, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, fs.key)
	if !ok {
		return "", errors.New("[FileStore.open] secretbox open failed")
	}
	return string(opened), nil
}

// loadOrCreateSalt reads the salt from an existing store file or generates
// and persists a fresh one for a new store.
func (fs *FileStore) loadOrCreateSalt() ([]byte, error) {
	contents, err := fs.load()
	if err != nil {
		return nil, err
	}
	if contents.Salt != "" {
		salt, err := base64.StdEncoding.DecodeString(contents.Salt)
		if err != nil {
			return nil, errors.Wrap(err, "[FileStore] salt decode")
		}
		return salt, nil
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "[FileStore] rand.Read salt")
	}
	contents.Salt = base64.StdEncoding.EncodeToString(salt)
	if err := fs.save(contents); err != nil {
		return nil, err
	}
	return salt, nil
}
