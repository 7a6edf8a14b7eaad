// Package index implements the hash-bucket index engine over a memory-mapped
// region: extent-based allocation, per-key bucket chains, record extension
// and reference counting. Operations on distinct keys are independently safe
// under concurrency and every single call is linearizable; composite
// check-then-act sequences are the caller's problem.
//
// The mapping is accessed in native byte order for the shared words (bucket
// slots, chain links, flags, refcounts); a region written on one endianness
// is not portable to the other.
package index

import (
	"errors"
	"fmt"

	"github.com/tablekv/tablekv/internal/format"
	"github.com/tablekv/tablekv/internal/spin"
)

var (
	// ErrNoSpace indicates the region cannot fit the requested allocation.
	ErrNoSpace = errors.New("index: out of space")
	// ErrCorrupt indicates the region failed a structural sanity check.
	ErrCorrupt = errors.New("index: corrupt region")
)

// EqFunc tests a candidate record for logical equality during unique
// insertion and removal. It runs under the bucket lock and must be short.
type EqFunc func(format.Rec) bool

// bucketStripes is the number of spin locks guarding chain mutation.
// Buckets map onto stripes by their low bits.
const bucketStripes = 256

// Root is an attached index engine over one mapped region.
type Root struct {
	b    []byte
	hint uint32

	allocMu spin.Lock
	free    map[uint64][]uint64 // record span -> reusable offsets

	stripes [bucketStripes]spin.Lock
}

// Init attaches the engine to a mapped region, formatting it when the region
// is fresh (all-zero header). On attach it resets the ephemeral per-record
// state: reference counts are zeroed, removed records are returned to the
// free list, and incomplete records orphaned by a crash are unlinked and
// reclaimed together with their fragments.
func Init(b []byte, recSizeHint uint32) (*Root, error) {
	if len(b) < format.ExtentSize || len(b)%format.ExtentSize != 0 {
		return nil, fmt.Errorf("index: region size %d: %w", len(b), format.ErrBadSize)
	}
	rt := &Root{
		b:    b,
		hint: recSizeHint,
		free: make(map[uint64][]uint64),
	}
	if fresh(b) {
		format.FormatRegion(b, recSizeHint)
		return rt, nil
	}
	hdr, err := format.ParseHeader(b)
	if err != nil {
		return nil, err
	}
	rt.hint = hdr.RecSizeHint
	if err := rt.attach(hdr.AllocPtr); err != nil {
		return nil, err
	}
	return rt, nil
}

// Shutdown detaches the engine. The region stays consistent at all times, so
// this only drops the in-memory allocator state; the caller owns syncing and
// unmapping the region.
func (rt *Root) Shutdown() {
	rt.allocMu.Lock()
	rt.free = nil
	rt.allocMu.Unlock()
}

// RecSizeHint returns the advisory record size the region was opened with.
func (rt *Root) RecSizeHint() uint32 { return rt.hint }

func fresh(b []byte) bool {
	for _, c := range b[format.OffMagic : format.OffMagic+4] {
		if c != 0 {
			return false
		}
	}
	return true
}

// attach rebuilds the free list from a linear scan of the allocated area and
// collects crash orphans.
func (rt *Root) attach(allocPtr uint64) error {
	var orphans []format.Rec

	off := uint64(format.DataStart)
	for off < allocPtr {
		if rem := format.ExtentSize - off%format.ExtentSize; rem < minSpan {
			off += rem
			continue
		}
		r, err := format.RecAt(rt.b, off)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		span := r.Span()
		if span < minSpan || off+span > allocPtr ||
			off/format.ExtentSize != (off+span-1)/format.ExtentSize {
			return fmt.Errorf("%w: record %#x span %d", ErrCorrupt, off, span)
		}
		// Reference counts are process-lifetime: start over.
		r.Ref().Store(0)
		switch {
		case r.Removed():
			rt.free[span] = append(rt.free[span], off)
		case r.Fragment():
			// Owned by its head record; nothing to do.
		case !r.Complete():
			orphans = append(orphans, r)
		default:
			// Live head records carry one reference for chain membership.
			r.Ref().Store(1)
		}
		off += span
	}
	if off != allocPtr {
		return fmt.Errorf("%w: scan ended at %#x, alloc pointer %#x", ErrCorrupt, off, allocPtr)
	}

	for _, r := range orphans {
		rt.unlinkOffset(format.Bucket(r.Key()), r.Off)
		r.SetFlags(format.FlagRemoved)
		rt.reclaim(r)
	}
	return nil
}

// unlinkOffset cuts the record at off out of the given bucket chain, if it
// is linked there.
func (rt *Root) unlinkOffset(bkt uint32, off uint64) {
	mu := rt.bucketLock(bkt)
	mu.Lock()
	defer mu.Unlock()

	slot := format.U64At(rt.b, format.BucketOff(bkt))
	cur := slot.Load()
	var prev format.Rec
	for cur != 0 {
		r, err := format.RecAt(rt.b, cur)
		if err != nil {
			return
		}
		if cur == off {
			if prev.IsNil() {
				slot.Store(r.Next())
			} else {
				prev.SetNext(r.Next())
			}
			return
		}
		prev, cur = r, r.Next()
	}
}

func (rt *Root) bucketLock(bkt uint32) *spin.Lock {
	return &rt.stripes[bkt%bucketStripes]
}
