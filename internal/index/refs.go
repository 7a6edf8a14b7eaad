package index

import "github.com/tablekv/tablekv/internal/format"

// HoldRec takes an additional reference on a record the caller already
// holds. Every hold must be paired with exactly one PutRec.
func (rt *Root) HoldRec(r format.Rec) {
	r.Ref().Add(1)
}

// PutRec drops one reference. When the count drains to zero on a removed
// record, its space and that of its continuation fragments becomes reusable.
// Dropping a reference that was never taken corrupts borrower accounting.
func (rt *Root) PutRec(r format.Rec) {
	if r.Ref().Add(^uint32(0)) == 0 && r.Removed() {
		rt.reclaim(r)
	}
}
