// Package table is the record-management layer of tablekv: an embedded,
// memory-mapped, persistent key/value store built for very high request
// rates. It provides the record lifecycle (create, grow, publish, remove),
// reference-counted concurrent access, exact-key collision-chain iteration,
// an atomic get-or-create operation, and the registry that multiplexes
// handles onto shared mappings.
//
// # Opening a table
//
//	reg := table.NewRegistry(logger)
//	t, err := reg.Open("/var/lib/app/cache.tkv", 64*table.ExtentSize, 512, 0)
//	...
//	defer reg.Close(t)
//
// # Records
//
// Small records are created complete in one step:
//
//	rec, err := t.CreateRecord(key, payload)
//	defer t.Release(rec)
//
// Variable records above MinAllocSize support create-then-fill-then-publish:
//
//	rec, err := t.AllocRecord(key, 4096)
//	copy(rec.Buf(), head)
//	rec.MarkComplete() // now visible to lookups
//	defer t.Release(rec)
//
// Until MarkComplete the record is invisible to Get, iteration and ordinary
// removal; only the creator can reach it. Writers that do not know the final
// size grow records incrementally through Room, which extends across
// continuation fragments without fragmenting already written data.
//
// # References
//
// Every record handed out (lookup, allocation, extra Hold) is borrowed:
// release each exactly once with Table.Release. Space is physically
// reclaimed only when a removed record has no borrowers left.
//
// # Blocking
//
// Registry.Open may wait on file I/O. Nothing else in this package sleeps:
// allocation is carved from the pre-reserved, already mapped extents and
// fails fast with ErrNoSpace, and the only exclusion primitive on the record
// paths is a short busy-wait lock inside GetOrCreate.
package table
