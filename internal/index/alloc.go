package index

import (
	"fmt"

	"github.com/tablekv/tablekv/internal/format"
)

// minSpan is the smallest record footprint the allocator produces: a header
// plus the 8-byte minimum payload. Gaps at extent tails smaller than this
// cannot carry a free-record header and are skipped by linear scans instead.
const minSpan = format.RecordHeaderSize + 8

// placedCap rounds a requested payload capacity up to what the allocator
// actually reserves.
func placedCap(req uint32) uint32 {
	if req < 8 {
		return 8
	}
	return req
}

// alloc reserves room for a record with the given payload capacity and
// returns its offset. Space comes from an exact-span free list first, then
// from the bump pointer; a record never spans an extent boundary, so an
// extent tail too small for the record is stamped as a free record (when it
// can hold a header) and skipped. Fails fast with ErrNoSpace, never blocks.
func (rt *Root) alloc(cap uint32) (uint64, error) {
	span := uint64(format.RecordSpan(int(cap)))
	if span > format.ExtentSize {
		return 0, fmt.Errorf("index: %d byte fragment exceeds extent: %w", cap, ErrNoSpace)
	}

	rt.allocMu.Lock()
	defer rt.allocMu.Unlock()

	if list := rt.free[span]; len(list) > 0 {
		off := list[len(list)-1]
		rt.free[span] = list[:len(list)-1]
		// Reused space carries a stale header and payload.
		clear(rt.b[off : off+span])
		return off, nil
	}

	ptr := format.U64At(rt.b, format.OffAllocPtr)
	p := ptr.Load()
	if rem := format.ExtentSize - p%format.ExtentSize; rem < span {
		if rem >= minSpan {
			tail := format.InitRecord(rt.b, p, 0, uint32(rem-format.RecordHeaderSize), 0,
				format.FlagRemoved|format.FlagFragment)
			rt.free[rem] = append(rt.free[rem], tail.Off)
		}
		p += rem
	}
	if p+span > uint64(len(rt.b)) {
		return 0, fmt.Errorf("index: no extent room for %d bytes: %w", cap, ErrNoSpace)
	}
	ptr.Store(p + span)
	return p, nil
}

// reclaim returns a removed record and its continuation fragments to the
// free list. Called once the last reference is dropped; the record is
// already unlinked, so nobody can reach it again.
func (rt *Root) reclaim(r format.Rec) {
	rt.allocMu.Lock()
	defer rt.allocMu.Unlock()

	if rt.free == nil {
		return // engine shut down; space recovered on next attach
	}
	for {
		chunk := r.Chunk()
		rt.free[r.Span()] = append(rt.free[r.Span()], r.Off)
		if chunk == 0 {
			return
		}
		next, err := format.RecAt(rt.b, chunk)
		if err != nil {
			return
		}
		next.SetFlags(format.FlagRemoved)
		r = next
	}
}
