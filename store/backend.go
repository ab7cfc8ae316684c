// Package store persists generated artifacts by key and guards their
// generation with per-key single-flight locking.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend is a keyed byte store. Implementations must commit writes
// atomically: a reader either sees the previous complete payload or
// the new one, never a partial write.
type Backend interface {
	// Get returns the payload for key, reporting whether it exists.
	Get(key string) ([]byte, bool, error)

	// PutIfAbsent stores the payload unless the key already exists.
	PutIfAbsent(key string, data []byte) error

	// ForceSet stores the payload, replacing any existing entry.
	ForceSet(key string, data []byte) error
}

// Dir is a filesystem Backend: one file per key under a root
// directory. Writes go to a temp file and are committed with an atomic
// rename, so concurrent readers never observe a truncated payload.
type Dir struct {
	root string
}

// NewDir creates the root directory if needed and returns the backend.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating artifact directory: %w", err)
	}
	return &Dir{root: root}, nil
}

// Get implements Backend.
func (d *Dir) Get(key string) ([]byte, bool, error) {
	path, err := d.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: reading %s: %w", key, err)
	}
	return data, true, nil
}

// PutIfAbsent implements Backend.
func (d *Dir) PutIfAbsent(key string, data []byte) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return d.write(path, data)
}

// ForceSet implements Backend.
func (d *Dir) ForceSet(key string, data []byte) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	return d.write(path, data)
}

// write commits data via temp file + rename.
func (d *Dir) write(path string, data []byte) error {
	tmp, err := os.CreateTemp(d.root, "artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("store: committing artifact: %w", err)
	}
	committed = true
	return nil
}

// path validates the key and maps it into the root directory. Keys are
// opaque but must be single path components.
func (d *Dir) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return "", fmt.Errorf("store: invalid artifact key %q", key)
	}
	return filepath.Join(d.root, key), nil
}
