package index

import (
	"github.com/tablekv/tablekv/internal/format"
)

// Walk invokes fn on every published record in the region, holding a
// reference across each call. The first error from fn stops the scan and is
// returned. The scan is linear over the allocated area; records inserted or
// removed while it runs may or may not be visited.
func (rt *Root) Walk(fn func(format.Rec) error) error {
	allocPtr := format.U64At(rt.b, format.OffAllocPtr).Load()

	off := uint64(format.DataStart)
	for off < allocPtr {
		if rem := format.ExtentSize - off%format.ExtentSize; rem < minSpan {
			off += rem
			continue
		}
		r, err := format.RecAt(rt.b, off)
		if err != nil {
			return err
		}
		span := r.Span()
		if span < minSpan || off/format.ExtentSize != (off+span-1)/format.ExtentSize {
			break // torn header from a concurrent allocation; stop here
		}
		if r.Complete() && !r.Removed() && !r.Fragment() {
			r.Ref().Add(1)
			err := fn(r)
			rt.PutRec(r)
			if err != nil {
				return err
			}
		}
		off += span
	}
	return nil
}

// Count returns the number of published records. Maintenance/report helper.
func (rt *Root) Count() int {
	n := 0
	_ = rt.Walk(func(format.Rec) error {
		n++
		return nil
	})
	return n
}

// AllocBytes returns the number of bytes consumed from the region, header
// extent included.
func (rt *Root) AllocBytes() uint64 {
	return format.U64At(rt.b, format.OffAllocPtr).Load()
}
