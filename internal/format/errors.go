package format

import "errors"

var (
	// ErrBadMagic indicates the region does not start with the table signature.
	ErrBadMagic = errors.New("format: signature mismatch")
	// ErrBadVersion indicates a layout version this build does not understand.
	ErrBadVersion = errors.New("format: unsupported layout version")
	// ErrTruncated indicates the region lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated region")
	// ErrBadSize indicates a region size that is not a positive multiple of the
	// extent size, or disagrees with the size recorded in the header.
	ErrBadSize = errors.New("format: bad region size")
)
