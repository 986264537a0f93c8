// Package writer exposes sinks for encoded simulation snapshots.
package writer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const tmpPattern = ".spukit-tmp-*"

// Sink stores one complete encoded snapshot.
type Sink interface {
	WriteSnapshot(buf []byte) error
}

// Encoder writes a snapshot to w. sim.Tables.Save has this shape.
type Encoder func(w io.Writer) error

// Emit runs enc into memory and hands the result to s in one call, so a
// failed encode never reaches the sink.
func Emit(s Sink, enc Encoder) error {
	var buf bytes.Buffer
	if err := enc(&buf); err != nil {
		return err
	}
	return s.WriteSnapshot(buf.Bytes())
}

// FileWriter writes snapshots to a filesystem path atomically.
type FileWriter struct {
	Path string
}

// WriteSnapshot writes buf to the configured path via temp file + rename.
func (w *FileWriter) WriteSnapshot(buf []byte) error {
	// Temp file in the same directory keeps the rename atomic
	tmpFile, err := os.CreateTemp(filepath.Dir(w.Path), tmpPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(buf); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, w.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// MemWriter keeps the last snapshot in memory.
type MemWriter struct {
	Buf []byte
}

// WriteSnapshot replaces Buf with a copy of buf.
func (w *MemWriter) WriteSnapshot(buf []byte) error {
	w.Buf = append(w.Buf[:0], buf...)
	return nil
}
