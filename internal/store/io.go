package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// jsonDoc is one JSON document on disk. Every access holds mu, and writes
// replace the file in a single rename.
type jsonDoc[T any] struct {
	path string
	mu   sync.Mutex
}

func newJSONDoc[T any](dir, name string) *jsonDoc[T] {
	return &jsonDoc[T]{path: filepath.Join(dir, name)}
}

// load returns the stored value, or the zero T if nothing was written yet.
func (d *jsonDoc[T]) load() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read()
}

// update applies fn to the stored value and writes the result back. Nothing
// is written if fn fails.
func (d *jsonDoc[T]) update(fn func(v *T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.read()
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return replaceFile(d.path, b, 0o600)
}

func (d *jsonDoc[T]) read() (T, error) {
	var v T
	b, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", filepath.Base(d.path), err)
	}
	return v, nil
}

// replaceFile writes b to a temp file next to path, syncs it and renames it
// over path. A failed write leaves path untouched.
func replaceFile(path string, b []byte, mode os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(b); err == nil {
		err = f.Chmod(mode)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
