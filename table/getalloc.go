package table

import (
	"fmt"
)

// RecordSpec describes the record GetOrCreate looks for and, when missing,
// creates: the payload length to reserve, the equality test for candidates
// under the key, and the initializer for a fresh record. The initializer may
// additionally implement Preparer to veto creation before space is
// committed.
type RecordSpec struct {
	Len   int
	Match Matcher
	Init  Initializer
}

// GetOrCreate finds the record under key matching spec.Match or atomically
// creates it. The composite scan-then-create runs under the table's
// busy-wait lock, because the index engine only makes single calls
// linearizable: without external serialization two callers could both
// conclude the record is missing and create it twice.
//
// Returns the record, held by the caller, and whether it was created by this
// call. A Preparer veto returns ErrRejected with nothing allocated. Creation
// always stages the record unpublished, runs the initializer and only then
// publishes. Lookups do not take this lock, so the staging is what keeps an
// uninitialized payload from ever being observed. Lengths below MinAllocSize
// are allowed here; the record is published before the call returns, so the
// deferred-completion minimum does not apply.
//
// The lock is held for the whole call, so spec callbacks must be short and
// must not block. All get-or-create traffic for one table serializes here;
// acceptable because critical sections are bounded by the chain length for
// one key plus one allocation.
func (t *Table) GetOrCreate(key uint64, spec RecordSpec) (*Record, bool, error) {
	t.ga.Lock()
	defer t.ga.Unlock()

	for it := t.Get(key); it.Valid(); it.Next() {
		if spec.Match.MatchRecord(it.Record()) {
			return it.Record(), false, nil
		}
	}

	if p, ok := spec.Init.(Preparer); ok {
		if err := p.PrepareRecord(); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrRejected, err)
		}
	}

	r, err := t.root.Insert(key, nil, uint32(spec.Len), false, nil)
	if err != nil {
		return nil, false, fmt.Errorf("alloc record key=%#x: %w", key, err)
	}
	rec := wrap(r)

	if err := spec.Init.InitRecord(rec); err != nil {
		// Roll the placement back; it was never published.
		t.RemoveRecords(key, sameOffset(rec), true)
		t.Release(rec)
		return nil, false, fmt.Errorf("init record key=%#x: %w", key, err)
	}
	rec.MarkComplete()
	return rec, true, nil
}

func sameOffset(want *Record) Matcher {
	return MatcherFunc(func(r *Record) bool {
		return r.rec.Off == want.rec.Off
	})
}
