package format

import (
	"fmt"
	"sync/atomic"
)

// Rec is a view of one record (or continuation fragment) inside the mapped
// region. It is a cheap value type: an offset plus the region it lives in.
// The zero Rec is "no record".
type Rec struct {
	Off uint64
	b   []byte
}

// RecAt returns a record view for the record starting at off.
func RecAt(b []byte, off uint64) (Rec, error) {
	if off < DataStart || off%RecordAlignment != 0 ||
		off+RecordHeaderSize > uint64(len(b)) {
		return Rec{}, fmt.Errorf("record: offset %#x: %w", off, ErrTruncated)
	}
	r := Rec{Off: off, b: b}
	if end := off + uint64(RecordHeaderSize) + uint64(r.Cap()); end > uint64(len(b)) {
		return Rec{}, fmt.Errorf("record: offset %#x capacity %d: %w",
			off, r.Cap(), ErrTruncated)
	}
	return r, nil
}

// InitRecord stamps a fresh record header at off. The payload area is the
// caller's to fill; reused space must be cleared by the allocator first.
func InitRecord(b []byte, off uint64, key uint64, cap, length uint32, flags uint32) Rec {
	base := int(off)
	PutU64(b, base+RecOffKey, key)
	U64At(b, base+RecOffNext).Store(0)
	U64At(b, base+RecOffChunk).Store(0)
	PutU32(b, base+RecOffCap, cap)
	PutU32(b, base+RecOffLen, length)
	U32At(b, base+RecOffFlags).Store(flags)
	U32At(b, base+RecOffRef).Store(0)
	return Rec{Off: off, b: b}
}

// IsNil reports whether r is the zero "no record" view.
func (r Rec) IsNil() bool { return r.b == nil }

// Key returns the hashed placement key.
func (r Rec) Key() uint64 { return ReadU64(r.b, int(r.Off)+RecOffKey) }

// Cap returns the payload capacity in bytes.
func (r Rec) Cap() uint32 { return ReadU32(r.b, int(r.Off)+RecOffCap) }

// Len returns the payload length in use.
func (r Rec) Len() uint32 { return ReadU32(r.b, int(r.Off)+RecOffLen) }

// SetLen truncates or declares the payload length in use. Single-writer:
// only the record's creator calls this, before publication or between
// extension steps.
func (r Rec) SetLen(n uint32) { PutU32(r.b, int(r.Off)+RecOffLen, n) }

// SetCap grows the declared capacity after an in-place extension.
func (r Rec) SetCap(n uint32) { PutU32(r.b, int(r.Off)+RecOffCap, n) }

// Next returns the offset of the next record in the bucket chain, 0 at the end.
func (r Rec) Next() uint64 { return U64At(r.b, int(r.Off)+RecOffNext).Load() }

// SetNext links the chain. Callers serialize chain mutation per bucket.
func (r Rec) SetNext(off uint64) { U64At(r.b, int(r.Off)+RecOffNext).Store(off) }

// Chunk returns the offset of the continuation fragment, 0 when none.
func (r Rec) Chunk() uint64 { return U64At(r.b, int(r.Off)+RecOffChunk).Load() }

// SetChunk links a continuation fragment.
func (r Rec) SetChunk(off uint64) { U64At(r.b, int(r.Off)+RecOffChunk).Store(off) }

// Flags returns the current flag word.
func (r Rec) Flags() uint32 { return U32At(r.b, int(r.Off)+RecOffFlags).Load() }

// SetFlags sets bits in the flag word.
func (r Rec) SetFlags(bits uint32) {
	w := U32At(r.b, int(r.Off)+RecOffFlags)
	for {
		old := w.Load()
		if w.CompareAndSwap(old, old|bits) {
			return
		}
	}
}

// Complete reports whether the record has been published.
func (r Rec) Complete() bool { return r.Flags()&FlagComplete != 0 }

// Removed reports whether the record has been unlinked from its chain.
func (r Rec) Removed() bool { return r.Flags()&FlagRemoved != 0 }

// Fragment reports whether this is a continuation fragment.
func (r Rec) Fragment() bool { return r.Flags()&FlagFragment != 0 }

// Ref returns the live borrower count word.
func (r Rec) Ref() *atomic.Uint32 { return U32At(r.b, int(r.Off)+RecOffRef) }

// Payload returns the used portion of the payload.
func (r Rec) Payload() []byte {
	base := r.Off + RecordHeaderSize
	return r.b[base : base+uint64(r.Len())]
}

// Buf returns the whole writable payload area, up to capacity.
func (r Rec) Buf() []byte {
	base := r.Off + RecordHeaderSize
	return r.b[base : base+uint64(r.Cap())]
}

// ChunkRec returns the continuation fragment view, if any.
func (r Rec) ChunkRec() (Rec, bool) {
	off := r.Chunk()
	if off == 0 {
		return Rec{}, false
	}
	next, err := RecAt(r.b, off)
	if err != nil {
		return Rec{}, false
	}
	return next, true
}

// Span returns the record's total on-disk footprint.
func (r Rec) Span() uint64 { return uint64(RecordSpan(int(r.Cap()))) }
