//go:build unix

// Package mmfile maps device register windows (PCI BAR or UIO resources, or a
// plain file standing in for one) into memory read-write.
package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of the file at path, starting at offset, read-write and
// shared. The returned cleanup unmaps the window; calling it twice is a no-op.
func Map(path string, offset int64, size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid window size %d", size)
	}
	if offset < 0 || offset%int64(os.Getpagesize()) != 0 {
		return nil, nil, fmt.Errorf("mmfile: offset %d is not page aligned", offset)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	// Character devices report size 0; only regular files are checked.
	if info.Mode().IsRegular() && info.Size() < offset+int64(size) {
		return nil, nil, fmt.Errorf("mmfile: %s is %d bytes, window needs %d", path, info.Size(), offset+int64(size))
	}

	data, err := unix.Mmap(int(f.Fd()), offset, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, cleanup, nil
}

// Sync flushes a file-backed window to its backing store.
func Sync(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}
