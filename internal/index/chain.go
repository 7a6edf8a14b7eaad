package index

import (
	"github.com/tablekv/tablekv/internal/format"
)

// Insert places a new record for key and returns it with the caller's
// reference already taken. data, when non-nil, is copied into the payload;
// length is the declared payload length. complete controls immediate
// publication: incomplete records are linked into their chain at once but
// stay invisible to Scan, Next and non-forced Remove until marked complete.
//
// When eq is non-nil, existing complete records under the same key matching
// eq are removed as part of the insertion, so a unique-by-equality invariant
// holds for the key from then on.
func (rt *Root) Insert(key uint64, data []byte, length uint32, complete bool, eq EqFunc) (format.Rec, error) {
	cap := placedCap(length)
	off, err := rt.alloc(cap)
	if err != nil {
		return format.Rec{}, err
	}

	var flags uint32
	if complete {
		flags = format.FlagComplete
	}
	r := format.InitRecord(rt.b, off, key, cap, length, flags)
	if data != nil {
		copy(r.Buf(), data)
	}
	// One reference for chain membership, one for the returned handle.
	r.Ref().Store(2)

	bkt := format.Bucket(key)
	mu := rt.bucketLock(bkt)
	mu.Lock()
	if eq != nil {
		rt.removeLocked(bkt, key, eq, false)
	}
	slot := format.U64At(rt.b, format.BucketOff(bkt))
	r.SetNext(slot.Load())
	slot.Store(off)
	mu.Unlock()

	return r, nil
}

// Lookup resolves key to its bucket and reports whether the chain is
// non-empty.
func (rt *Root) Lookup(key uint64) (uint32, bool) {
	bkt := format.Bucket(key)
	return bkt, format.U64At(rt.b, format.BucketOff(bkt)).Load() != 0
}

// Scan walks the bucket chain for the first published record with exactly
// this key and returns it with a reference taken, or the zero Rec when the
// chain holds none.
func (rt *Root) Scan(bkt uint32, key uint64) format.Rec {
	mu := rt.bucketLock(bkt)
	mu.Lock()
	defer mu.Unlock()

	return rt.scanFrom(format.U64At(rt.b, format.BucketOff(bkt)).Load(), key)
}

// Next advances along the exact-key collision chain: it takes a reference on
// the next published record with cur's key and drops the caller's reference
// on cur. Returns the zero Rec at the end of the chain.
func (rt *Root) Next(cur format.Rec, key uint64) format.Rec {
	bkt := format.Bucket(key)
	mu := rt.bucketLock(bkt)
	mu.Lock()
	next := rt.scanFrom(cur.Next(), key)
	mu.Unlock()

	rt.PutRec(cur)
	return next
}

// scanFrom runs under the bucket lock.
func (rt *Root) scanFrom(off uint64, key uint64) format.Rec {
	for off != 0 {
		r, err := format.RecAt(rt.b, off)
		if err != nil {
			return format.Rec{}
		}
		if r.Key() == key && r.Complete() {
			r.Ref().Add(1)
			return r
		}
		off = r.Next()
	}
	return format.Rec{}
}

// Remove unlinks every record under key matching eq (all records with the
// key when eq is nil) and drops their chain references, reclaiming space
// once no borrower remains. Incomplete records are skipped unless force is
// set; a missing key is a no-op.
func (rt *Root) Remove(key uint64, eq EqFunc, force bool) {
	bkt := format.Bucket(key)
	mu := rt.bucketLock(bkt)
	mu.Lock()
	defer mu.Unlock()

	rt.removeLocked(bkt, key, eq, force)
}

func (rt *Root) removeLocked(bkt uint32, key uint64, eq EqFunc, force bool) {
	slot := format.U64At(rt.b, format.BucketOff(bkt))
	var prev format.Rec
	cur := slot.Load()
	for cur != 0 {
		r, err := format.RecAt(rt.b, cur)
		if err != nil {
			return
		}
		next := r.Next()
		if r.Key() == key && (r.Complete() || force) && (eq == nil || eq(r)) {
			if prev.IsNil() {
				slot.Store(next)
			} else {
				prev.SetNext(next)
			}
			r.SetFlags(format.FlagRemoved)
			rt.PutRec(r)
		} else {
			prev = r
		}
		cur = next
	}
}
