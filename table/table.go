package table

import (
	"fmt"

	"github.com/tablekv/tablekv/internal/format"
	"github.com/tablekv/tablekv/internal/index"
	"github.com/tablekv/tablekv/internal/mmfile"
	"github.com/tablekv/tablekv/internal/spin"
)

// Table is a live handle on one opened store. Handles are shared: opening
// the same (name, node) pair through a Registry returns the same Table with
// its open count incremented.
//
// All record operations are safe for concurrent use and never sleep. Only
// Registry.Open may block.
type Table struct {
	path string
	name string
	node int

	refs int // open-handle count, guarded by the owning Registry

	ga spin.Lock // serializes GetOrCreate only

	f    *mmfile.File
	root *index.Root
}

// Name returns the derived table name, node digit and suffix included.
func (t *Table) Name() string { return t.name }

// Node returns the placement node the table instance belongs to.
func (t *Table) Node() int { return t.node }

// Path returns the backing file path.
func (t *Table) Path() string { return t.path }

// Size returns the mapped region size in bytes.
func (t *Table) Size() int64 { return t.f.Size() }

// CreateRecord allocates a record sized to data, copies data in and
// publishes it in the same step. The returned record is held by the caller.
// On allocation failure the key is left absent and ErrNoSpace is returned.
func (t *Table) CreateRecord(key uint64, data []byte) (*Record, error) {
	r, err := t.root.Insert(key, data, uint32(len(data)), true, nil)
	if err != nil {
		return nil, fmt.Errorf("create record key=%#x: %w", key, err)
	}
	return wrap(r), nil
}

// AllocRecord reserves size payload bytes for a variable record without
// populating or publishing it. The record is invisible to lookups and
// removal until MarkComplete. size must be at least MinAllocSize; use
// CreateRecord for small records, they are always complete.
//
// A caller that abandons the record without completing it must remove it
// with force, or the space stays invisible until the next open.
func (t *Table) AllocRecord(key uint64, size int) (*Record, error) {
	return t.allocRecord(key, size, nil)
}

// AllocUniqueRecord is AllocRecord with an equality guarantee: existing
// published records under key matching m are removed as part of the
// placement, so at most one record matching m lives under the key once the
// new one is published.
func (t *Table) AllocUniqueRecord(key uint64, size int, m Matcher) (*Record, error) {
	return t.allocRecord(key, size, m)
}

func (t *Table) allocRecord(key uint64, size int, m Matcher) (*Record, error) {
	if size < MinAllocSize {
		return nil, fmt.Errorf("alloc record key=%#x size=%d (min %d): %w",
			key, size, MinAllocSize, ErrRecordTooSmall)
	}
	r, err := t.root.Insert(key, nil, uint32(size), false, t.eq(m))
	if err != nil {
		return nil, fmt.Errorf("alloc record key=%#x: %w", key, err)
	}
	return wrap(r), nil
}

// ExtendRecord grows r by size payload bytes: in place when the fragment
// borders unallocated space, otherwise through a fresh continuation
// fragment. r must be the record's last fragment. Returns the fragment to
// write into; r itself when grown in place.
func (t *Table) ExtendRecord(r *Record, size int) (*Record, error) {
	frag, err := t.root.Extend(r.rec, uint32(size))
	if err != nil {
		return nil, fmt.Errorf("extend record key=%#x by %d: %w", r.Key(), size, err)
	}
	if frag.Off == r.rec.Off {
		return r, nil
	}
	return wrap(frag), nil
}

// Room hands an incremental writer space for at least need more bytes.
// When the current fragment r has need bytes of capacity past off, it
// returns r and its buffer from off on. Otherwise it truncates r's declared
// length to off, so the unused tail is not counted as payload, extends the
// record by total and returns the fragment to continue in. Writers therefore
// never pre-compute the final record size.
func (t *Table) Room(r *Record, off, need, total int) (*Record, []byte, error) {
	if off < 0 || off > r.Cap() {
		return nil, nil, fmt.Errorf("room: offset %d outside fragment of %d", off, r.Cap())
	}
	if r.Cap()-off >= need {
		return r, r.Buf()[off:], nil
	}
	r.SetLen(off)
	frag, err := t.ExtendRecord(r, total)
	if err != nil {
		return nil, nil, err
	}
	if frag == r {
		return r, r.Buf()[off:], nil
	}
	return frag, frag.Buf(), nil
}

// RemoveRecords unlinks every record under key that matches m (every record
// with the key when m is nil). Incomplete records are protected from
// concurrent teardown and skipped unless force is set; removing a missing
// key is a no-op. Space is reclaimed once the last borrower releases.
func (t *Table) RemoveRecords(key uint64, m Matcher, force bool) {
	t.root.Remove(key, t.eq(m), force)
}

// Walk invokes fn on every published record, for maintenance scans. The
// first error from fn stops the walk and is returned.
func (t *Table) Walk(fn func(r *Record) error) error {
	return t.root.Walk(func(r format.Rec) error {
		return fn(wrap(r))
	})
}

// Release drops the caller's reference on r. Every record returned by Get,
// GetOrCreate, CreateRecord, AllocRecord or AllocUniqueRecord, and every
// extra Hold, must be released exactly once.
func (t *Table) Release(r *Record) {
	t.root.PutRec(r.rec)
}

// Records returns the number of published records. Report helper; the count
// is a snapshot.
func (t *Table) Records() int { return t.root.Count() }

// UsedBytes returns how much of the region has been carved out, the reserved
// header extent included.
func (t *Table) UsedBytes() int64 { return int64(t.root.AllocBytes()) }

func (t *Table) eq(m Matcher) index.EqFunc {
	if m == nil {
		return nil
	}
	return func(r format.Rec) bool {
		return m.MatchRecord(&Record{rec: r})
	}
}
