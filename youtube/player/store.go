package player

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/ytcipher/youtube/cipher"
)

// Store is a persistent second tier behind the in-memory cache. The Loader
// consults it on a miss before fetching and writes successful loads through.
type Store interface {
	Get(identity string) (*cipher.Cipher, bool)
	Put(identity string, c *cipher.Cipher) error
}

// FileStore keeps one JSON file per script identity under a directory.
// Entries never expire since a script identity never changes content.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-backed store under dir.
// The directory will be created if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return filepath.Join(s.dir, fmt.Sprintf("%x.json", sum[:]))
}

type storeEntry struct {
	Script     string         `json:"script"`
	Operations *cipher.Cipher `json:"operations"`
	StoredAt   time.Time      `json:"storedAt"`
}

// Get implements Store. Unreadable entries and entries written for a
// different identity are treated as missing.
func (s *FileStore) Get(identity string) (*cipher.Cipher, bool) {
	fn := s.path(identity)
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, false
	}
	var e storeEntry
	if err := json.Unmarshal(b, &e); err != nil {
		_ = os.Remove(fn)
		return nil, false
	}
	if e.Script != identity || e.Operations == nil {
		return nil, false
	}
	return e.Operations, true
}

// Put implements Store. The entry is written to a temporary file and renamed
// into place.
func (s *FileStore) Put(identity string, c *cipher.Cipher) error {
	if c == nil {
		c = cipher.NewCipher()
	}
	b, err := json.Marshal(storeEntry{Script: identity, Operations: c, StoredAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fn := s.path(identity)
	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, fn); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
