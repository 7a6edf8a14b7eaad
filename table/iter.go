package table

// Iter walks the exact-key collision chain: every published record sharing
// one hashed key. The record under the cursor is held; Next releases it as
// it advances, so a caller that stops early must Release the current record
// itself, and an iterator driven to the end leaves nothing to release.
type Iter struct {
	t   *Table
	key uint64
	bkt uint32
	rec *Record
}

// Get looks key up and returns an iterator on the first published record
// with exactly that key, already held. The iterator is terminal when the
// key is absent.
func (t *Table) Get(key uint64) *Iter {
	it := &Iter{t: t, key: key}
	bkt, ok := t.root.Lookup(key)
	if !ok {
		return it
	}
	it.bkt = bkt
	it.rec = wrap(t.root.Scan(bkt, key))
	return it
}

// Valid reports whether the iterator is positioned on a record. All other
// accessors require Valid.
func (it *Iter) Valid() bool { return it.rec != nil }

// Record returns the record under the cursor.
func (it *Iter) Record() *Record { return it.rec }

// Next advances to the next record in the chain with the same key,
// releasing the current one. Advancing a terminal iterator is a programming
// error.
func (it *Iter) Next() {
	if it.rec == nil {
		panic("table: Next on terminal iterator")
	}
	it.rec = wrap(it.t.root.Next(it.rec.rec, it.key))
}
