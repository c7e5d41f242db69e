package player

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ytget/ytcipher/youtube/cipher"
)

// Store backends accepted by OpenStore.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// sqliteFile is the database name used by OpenStore inside the cache directory.
const sqliteFile = "ciphers.db"

// SQLiteStore keeps ciphers in a single SQLite database, one row per script
// identity.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("store database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Several processes may share one cache directory.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ciphers (
		script TEXT PRIMARY KEY,
		operations TEXT NOT NULL,
		stored_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Get implements Store. Rows that do not decode are treated as missing.
func (s *SQLiteStore) Get(identity string) (*cipher.Cipher, bool) {
	var data string
	err := s.db.QueryRow("SELECT operations FROM ciphers WHERE script = ?", identity).Scan(&data)
	if err != nil {
		return nil, false
	}
	var c cipher.Cipher
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, false
	}
	return &c, true
}

// Put implements Store. An existing row is kept.
func (s *SQLiteStore) Put(identity string, c *cipher.Cipher) error {
	if c == nil {
		c = cipher.NewCipher()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR IGNORE INTO ciphers (script, operations, stored_at) VALUES (?, ?, ?)",
		identity, string(data), time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving cipher: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// OpenStore opens the store backend kind under dir. An empty kind selects
// the file store.
func OpenStore(kind, dir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", StoreFile:
		return NewFileStore(dir)
	case StoreSQLite:
		if dir == "" {
			return nil, errors.New("store directory is required")
		}
		return NewSQLiteStore(filepath.Join(dir, sqliteFile))
	default:
		return nil, fmt.Errorf("unknown store %q (valid: file, sqlite)", kind)
	}
}

// ValidStore reports whether kind names a store backend.
func ValidStore(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", StoreFile, StoreSQLite:
		return true
	}
	return false
}
