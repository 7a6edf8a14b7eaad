package table

import (
	"errors"

	"github.com/tablekv/tablekv/internal/index"
)

var (
	// ErrBadPath indicates a table path without the ".tkv" suffix or without
	// a directory component.
	ErrBadPath = errors.New("table: bad table path")

	// ErrBadName indicates a table name that is empty or does not fit the
	// fixed-width name field once the node digit is appended.
	ErrBadName = errors.New("table: bad table name")

	// ErrBadNode indicates a placement node outside 0..9.
	ErrBadNode = errors.New("table: bad placement node")

	// ErrBadSize indicates a region size that is not a positive multiple of
	// the extent size.
	ErrBadSize = errors.New("table: bad table size")

	// ErrRecordTooSmall indicates a deferred-completion allocation below the
	// minimum record size. Such requests fail; they are never silently
	// upgraded to an immediately complete record.
	ErrRecordTooSmall = errors.New("table: record below minimum allocation size")

	// ErrRejected indicates the pre-creation step vetoed a get-or-create
	// allocation. Nothing was allocated.
	ErrRejected = errors.New("table: record creation rejected")

	// ErrNoSpace reports extent exhaustion. Aliased from the index engine so
	// callers only need this package to classify failures.
	ErrNoSpace = index.ErrNoSpace
)
