package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping(t *testing.T) {
	writeFile := func(t *testing.T, content []byte) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "blob.bin")
		require.NoError(t, os.WriteFile(path, content, 0o644))
		return path
	}

	t.Run("OpenAndRead", func(t *testing.T) {
		content := []byte("SIMPLE  =                    T")
		m, err := Open(writeFile(t, content))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, int64(len(content)), m.Size())
		assert.Equal(t, content, m.Bytes())

		p := make([]byte, 6)
		n, err := m.ReadAt(p, 0)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		assert.Equal(t, []byte("SIMPLE"), p)
	})

	t.Run("ReadAtBounds", func(t *testing.T) {
		m, err := Open(writeFile(t, []byte("abcdef")))
		require.NoError(t, err)
		defer m.Close()

		// Short read at the tail reports EOF alongside the bytes.
		p := make([]byte, 4)
		n, err := m.ReadAt(p, 4)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)

		_, err = m.ReadAt(p, -1)
		assert.ErrorIs(t, err, ErrInvalidOffset)

		_, err = m.ReadAt(p, 100)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		m, err := Open(writeFile(t, nil))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, int64(0), m.Size())
		assert.Empty(t, m.Bytes())
	})

	t.Run("CloseIdempotent", func(t *testing.T) {
		m, err := Open(writeFile(t, []byte("xyz")))
		require.NoError(t, err)

		require.NoError(t, m.Close())
		require.NoError(t, m.Close())

		assert.Nil(t, m.Bytes())
		_, err = m.ReadAt(make([]byte, 1), 0)
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("Advise", func(t *testing.T) {
		m, err := Open(writeFile(t, []byte("advise me")))
		require.NoError(t, err)
		defer m.Close()

		assert.NoError(t, m.Advise(AccessRandom))
		assert.NoError(t, m.Advise(AccessSequential))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
		assert.Error(t, err)
	})
}
