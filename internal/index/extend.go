package index

import (
	"github.com/tablekv/tablekv/internal/format"
)

// Extend grows a record by size payload bytes. When r is the most recent
// allocation and its extent still has room, the fragment grows in place;
// otherwise a fresh continuation fragment of the requested size is allocated
// and linked through r's chunk pointer. r must be the last fragment of its
// record. Returns the fragment to write into.
//
// A fragment's declared length starts at its capacity; writers that fill
// records incrementally truncate it through the get-room path when a
// fragment is abandoned early.
func (rt *Root) Extend(r format.Rec, size uint32) (format.Rec, error) {
	if grown, ok := rt.growInPlace(r, size); ok {
		return grown, nil
	}

	cap := placedCap(size)
	off, err := rt.alloc(cap)
	if err != nil {
		return format.Rec{}, err
	}
	frag := format.InitRecord(rt.b, off, r.Key(), cap, cap, format.FlagFragment)
	r.SetChunk(off)
	return frag, nil
}

// growInPlace extends r's own allocation when it borders the bump pointer
// and the grown record still fits its extent.
func (rt *Root) growInPlace(r format.Rec, size uint32) (format.Rec, bool) {
	rt.allocMu.Lock()
	defer rt.allocMu.Unlock()

	ptr := format.U64At(rt.b, format.OffAllocPtr)
	end := r.Off + r.Span()
	if end != ptr.Load() {
		return format.Rec{}, false
	}
	newCap := r.Cap() + size
	newSpan := uint64(format.RecordSpan(int(newCap)))
	extentEnd := (r.Off/format.ExtentSize + 1) * format.ExtentSize
	if r.Off+newSpan > extentEnd || r.Off+newSpan > uint64(len(rt.b)) {
		return format.Rec{}, false
	}
	ptr.Store(r.Off + newSpan)
	r.SetCap(newCap)
	r.SetLen(newCap)
	return r, true
}
