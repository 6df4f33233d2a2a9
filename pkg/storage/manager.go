package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// ChunkSize is the buffer size used when streaming a body to disk.
const ChunkSize = 32 * 1024

// Manager lays out media files under a root directory and writes them
// atomically. It is safe for concurrent use.
type Manager struct {
	root string

	mu      sync.Mutex
	files   int
	written int64
}

// NewManager creates the root directory if needed and returns a Manager for it.
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the output root.
func (m *Manager) Root() string {
	return m.root
}

// MediaPath returns <root>/<contentType>/<shortcode><ext>.
func (m *Manager) MediaPath(contentType, shortcode, ext string) string {
	return filepath.Join(m.root, contentType, shortcode+ext)
}

// CarouselDir returns <root>/<contentType>/<shortcode>.
func (m *Manager) CarouselDir(contentType, shortcode string) string {
	return filepath.Join(m.root, contentType, shortcode)
}

// CarouselItemPath returns the 1-based file name for the index-th sub-item.
func CarouselItemPath(dir string, index int) string {
	return filepath.Join(dir, strconv.Itoa(index+1)+".jpg")
}

// EnsureDir creates dir and its parents. Existing directories are not an error.
func (m *Manager) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteStream copies r into path in ChunkSize chunks via a temporary file
// that is renamed into place once the copy succeeds. It returns the
// number of bytes written.
func (m *Manager) WriteStream(path string, r io.Reader) (int64, error) {
	if err := m.EnsureDir(filepath.Dir(path)); err != nil {
		return 0, err
	}

	var n int64
	err := AtomicWrite(path, func(w io.Writer) error {
		var copyErr error
		n, copyErr = io.CopyBuffer(w, r, make([]byte, ChunkSize))
		return copyErr
	})
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.files++
	m.written += n
	m.mu.Unlock()
	return n, nil
}

// Stats returns the number of files and bytes written so far.
func (m *Manager) Stats() (files int, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files, m.written
}

// AtomicWrite calls fill with a temporary file next to path and renames it
// over path when fill succeeds. The temporary file is removed on failure.
func AtomicWrite(path string, fill func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
