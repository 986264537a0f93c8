package format

import "errors"

var (
	// ErrWindowTooSmall indicates a register window shorter than WindowBytes.
	ErrWindowTooSmall = errors.New("format: register window too small")
	// ErrBadAddress indicates a register address outside the decoded window.
	ErrBadAddress = errors.New("format: register address out of window")
)
