package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterDoc struct {
	N    int      `json:"n"`
	Tags []string `json:"tags,omitempty"`
}

func TestJSONDoc_MissingFileIsZero(t *testing.T) {
	doc := newJSONDoc[counterDoc](t.TempDir(), "c.json")
	v, err := doc.load()
	require.NoError(t, err)
	assert.Equal(t, counterDoc{}, v)
}

func TestJSONDoc_UpdatePersists(t *testing.T) {
	dir := t.TempDir()
	doc := newJSONDoc[counterDoc](dir, "c.json")

	for i := 0; i < 3; i++ {
		require.NoError(t, doc.update(func(v *counterDoc) error {
			v.N++
			return nil
		}))
	}

	reopened := newJSONDoc[counterDoc](dir, "c.json")
	v, err := reopened.load()
	require.NoError(t, err)
	assert.Equal(t, 3, v.N)

	info, err := os.Stat(filepath.Join(dir, "c.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestJSONDoc_FailedUpdateWritesNothing(t *testing.T) {
	dir := t.TempDir()
	doc := newJSONDoc[counterDoc](dir, "c.json")
	require.NoError(t, doc.update(func(v *counterDoc) error {
		v.Tags = []string{"kept"}
		return nil
	}))

	err := doc.update(func(v *counterDoc) error {
		v.Tags = append(v.Tags, "lost")
		return assert.AnError
	})
	require.True(t, errors.Is(err, assert.AnError))

	v, err := doc.load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, v.Tags)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONDoc_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.json"), []byte("{"), 0o600))

	_, err := newJSONDoc[counterDoc](dir, "c.json").load()
	assert.ErrorContains(t, err, "decode c.json")
}
