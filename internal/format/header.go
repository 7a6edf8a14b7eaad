package format

import (
	"bytes"
	"fmt"
)

// Header is a decoded view of the header page. It is a plain value; mutating
// it does not write back to the region.
type Header struct {
	Version     uint16
	RegionSize  uint64
	ExtentSize  uint32
	RecSizeHint uint32
	AllocPtr    uint64
}

// FormatRegion stamps a fresh header page over a zeroed region. The bucket
// table needs no initialization: zero slots mean empty chains.
func FormatRegion(b []byte, recSizeHint uint32) {
	copy(b[OffMagic:], Magic)
	PutU16(b, OffVersion, Version)
	PutU64(b, OffRegionSize, uint64(len(b)))
	PutU32(b, OffExtentSize, ExtentSize)
	PutU32(b, OffRecSizeHint, recSizeHint)
	PutU64(b, OffAllocPtr, DataStart)
}

// ParseHeader validates an existing region against this build's layout and
// returns the decoded header.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[OffMagic:OffMagic+4], Magic) {
		return Header{}, fmt.Errorf("header: %w", ErrBadMagic)
	}
	h := Header{
		Version:     ReadU16(b, OffVersion),
		RegionSize:  ReadU64(b, OffRegionSize),
		ExtentSize:  ReadU32(b, OffExtentSize),
		RecSizeHint: ReadU32(b, OffRecSizeHint),
		AllocPtr:    ReadU64(b, OffAllocPtr),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("header: version %d: %w", h.Version, ErrBadVersion)
	}
	if h.ExtentSize != ExtentSize {
		return Header{}, fmt.Errorf("header: extent size %d: %w", h.ExtentSize, ErrBadSize)
	}
	if h.RegionSize != uint64(len(b)) {
		return Header{}, fmt.Errorf("header: recorded size %d, mapped %d: %w",
			h.RegionSize, len(b), ErrBadSize)
	}
	if h.AllocPtr < DataStart || h.AllocPtr > h.RegionSize {
		return Header{}, fmt.Errorf("header: alloc pointer %#x out of range: %w",
			h.AllocPtr, ErrTruncated)
	}
	return h, nil
}
