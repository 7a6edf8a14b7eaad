package table

import (
	"github.com/tablekv/tablekv/internal/format"
)

// MinAllocSize is the minimum payload length for AllocRecord and
// AllocUniqueRecord. Records below it are created complete in one step with
// CreateRecord and are not extensible.
const MinAllocSize = format.MinAllocSize

// Record is one stored value, possibly spanning several fragments. Records
// returned by lookups and allocations carry a reference owned by the caller;
// pair each with exactly one Table.Release (plus one per extra Hold).
type Record struct {
	rec format.Rec
}

func wrap(r format.Rec) *Record {
	if r.IsNil() {
		return nil
	}
	return &Record{rec: r}
}

// Key returns the hashed placement key.
func (r *Record) Key() uint64 { return r.rec.Key() }

// Len returns the declared payload length of this fragment.
func (r *Record) Len() int { return int(r.rec.Len()) }

// Cap returns the payload capacity of this fragment.
func (r *Record) Cap() int { return int(r.rec.Cap()) }

// Payload returns the used payload of this fragment. The slice aliases the
// mapped region and is valid only while the caller holds a reference.
func (r *Record) Payload() []byte { return r.rec.Payload() }

// Buf returns the whole writable payload area of this fragment.
func (r *Record) Buf() []byte { return r.rec.Buf() }

// SetLen declares how much of the fragment's capacity is payload.
// Single-writer: only the record's creator, before publication.
func (r *Record) SetLen(n int) { r.rec.SetLen(uint32(n)) }

// Complete reports whether the record has been published.
func (r *Record) Complete() bool { return r.rec.Complete() }

// MarkComplete publishes a record returned by AllocRecord or
// AllocUniqueRecord: from then on lookups and removal see it. Exactly-once:
// completing a record twice is a caller error.
func (r *Record) MarkComplete() { r.rec.SetFlags(format.FlagComplete) }

// Hold takes an additional reference. Pair with one Table.Release.
func (r *Record) Hold() { r.rec.Ref().Add(1) }

// NextFragment returns the next fragment of a multi-fragment record, or nil
// at the last one. Fragment lifetime follows the head record's references.
func (r *Record) NextFragment() *Record {
	next, ok := r.rec.ChunkRec()
	if !ok {
		return nil
	}
	return &Record{rec: next}
}

// Matcher tests a candidate record for logical equality with the entity a
// caller is looking for. Implemented per record kind.
type Matcher interface {
	MatchRecord(r *Record) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(r *Record) bool

func (f MatcherFunc) MatchRecord(r *Record) bool { return f(r) }

// Initializer populates a freshly allocated record before it is published.
type Initializer interface {
	InitRecord(r *Record) error
}

// InitializerFunc adapts a function to the Initializer interface.
type InitializerFunc func(r *Record) error

func (f InitializerFunc) InitRecord(r *Record) error { return f(r) }

// Preparer is an optional capability of an Initializer: a pre-creation
// admission check run by GetOrCreate after the scan found no match and
// before any space is committed. An error vetoes the creation.
type Preparer interface {
	PrepareRecord() error
}
