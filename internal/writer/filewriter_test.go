package writer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileWriter_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.cbor")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	w := &FileWriter{Path: path}
	require.NoError(t, w.WriteSnapshot([]byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileWriter_MissingDir(t *testing.T) {
	w := &FileWriter{Path: filepath.Join(t.TempDir(), "nope", "snap.cbor")}
	require.Error(t, w.WriteSnapshot([]byte("x")))
}

func TestEmit(t *testing.T) {
	var m MemWriter
	require.NoError(t, Emit(&m, func(w io.Writer) error {
		_, err := w.Write([]byte{1, 2, 3})
		return err
	}))
	require.Equal(t, []byte{1, 2, 3}, m.Buf)

	// A failed encode leaves the sink untouched
	boom := errors.New("boom")
	err := Emit(&m, func(w io.Writer) error {
		_, _ = w.Write([]byte{9})
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []byte{1, 2, 3}, m.Buf)
}
