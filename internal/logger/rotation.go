package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
)

// RotatingWriter is a file writer that moves the current file aside once it
// grows past maxSize or gets older than maxAge. At most maxBackups rotated
// files are kept next to the live one.
type RotatingWriter struct {
	mu sync.Mutex

	filename   string
	maxSize    int64
	maxAge     time.Duration
	maxBackups int
	compress   bool

	file     *os.File
	size     int64
	openedAt time.Time
	seq      int
}

// NewRotatingWriter opens (or creates) filename for appending
func NewRotatingWriter(filename string, maxSize int64, maxAge time.Duration, maxBackups int, compress bool) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		filename:   filename,
		maxSize:    maxSize,
		maxAge:     maxAge,
		maxBackups: maxBackups,
		compress:   compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

// NewRotatingWriterFromConfig creates a rotating writer for filename using
// the limits in rotation
func NewRotatingWriterFromConfig(filename string, rotation *RotationConfig) (*RotatingWriter, error) {
	if err := rotation.Validate(); err != nil {
		return nil, err
	}
	maxSize, _ := parseSize(rotation.MaxSize)
	maxAge, _ := parseDuration(rotation.MaxAge)
	return NewRotatingWriter(filename, maxSize, maxAge, rotation.MaxBackups, rotation.Compress)
}

func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.filename), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(rw.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rw.file = f
	rw.size = st.Size()
	rw.openedAt = time.Now()
	return nil
}

// Write implements io.Writer
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, os.ErrClosed
	}
	if rw.due() {
		if err := rw.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log file: %w", err)
		}
	}
	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// Close closes the live file. Further writes fail with os.ErrClosed.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}

func (rw *RotatingWriter) due() bool {
	if rw.maxSize > 0 && rw.size >= rw.maxSize {
		return true
	}
	return rw.maxAge > 0 && time.Since(rw.openedAt) >= rw.maxAge
}

// backupName includes a sequence number so rotations within the same second
// do not overwrite each other
func (rw *RotatingWriter) backupName() string {
	rw.seq++
	return fmt.Sprintf("%s.%s.%d", rw.filename, time.Now().Format("20060102-150405"), rw.seq)
}

func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("close current file: %w", err)
	}
	rw.file = nil

	backup := rw.backupName()
	if err := os.Rename(rw.filename, backup); err != nil {
		return fmt.Errorf("rename log file: %w", err)
	}
	// compression and pruning problems must not stop logging
	if rw.compress {
		if err := gzipFile(backup); err != nil {
			fmt.Fprintf(os.Stderr, "logger: compress %s: %v\n", backup, err)
		}
	}
	rw.prune()

	return rw.open()
}

// gzipFile replaces path with path.gz
func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		_ = dst.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// prune removes the oldest backups beyond maxBackups
func (rw *RotatingWriter) prune() {
	dir, base := filepath.Split(rw.filename)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: read log directory: %v\n", err)
		return
	}

	type backup struct {
		path    string
		modTime time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), base+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{filepath.Join(dir, e.Name()), info.ModTime()})
	}
	if len(backups) <= rw.maxBackups {
		return
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].modTime.Equal(backups[j].modTime) {
			return backups[i].path < backups[j].path
		}
		return backups[i].modTime.Before(backups[j].modTime)
	})
	for _, b := range backups[:len(backups)-rw.maxBackups] {
		if err := os.Remove(b.path); err != nil {
			fmt.Fprintf(os.Stderr, "logger: remove backup %s: %v\n", b.path, err)
		}
	}
}
