//go:build !unix

// Package mmfile maps device register windows (PCI BAR or UIO resources, or a
// plain file standing in for one) into memory read-write.
package mmfile

import "errors"

// ErrUnsupported is returned on platforms without shared memory mappings.
var ErrUnsupported = errors.New("mmfile: register mapping not supported on this platform")

// Map is unavailable without mmap.
func Map(_ string, _ int64, _ int) ([]byte, func() error, error) {
	return nil, nil, ErrUnsupported
}

// Sync is a no-op without mmap.
func Sync(_ []byte) error { return nil }
