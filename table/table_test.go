package table

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// openTestTable opens a fresh 4-extent table backed by a temp file.
func openTestTable(t *testing.T) *Table {
	t.Helper()
	reg := NewRegistry(nil)
	tb, err := reg.Open(filepath.Join(t.TempDir(), "cache.tkv"), 4*ExtentSize, 0, 0)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, reg.ShutdownAll()) })
	return tb
}

// logicalBytes concatenates a record's payload across fragments.
func logicalBytes(rec *Record) []byte {
	var out []byte
	for r := rec; r != nil; r = r.NextFragment() {
		out = append(out, r.Payload()...)
	}
	return out
}

func TestCreateAndGet(t *testing.T) {
	tb := openTestTable(t)

	rec, err := tb.CreateRecord(0xABC, []byte("hello"))
	require.NoError(t, err)
	require.True(t, rec.Complete(), "created records are published at once")
	tb.Release(rec)

	it := tb.Get(0xABC)
	require.True(t, it.Valid())
	require.Equal(t, []byte("hello"), it.Record().Payload())
	require.Equal(t, uint64(0xABC), it.Record().Key())
	tb.Release(it.Record())

	require.False(t, tb.Get(0xDEF).Valid())
}

func TestAllocVisibilityLifecycle(t *testing.T) {
	tb := openTestTable(t)

	rec, err := tb.AllocRecord(0xABC, 4096)
	require.NoError(t, err)
	require.False(t, rec.Complete())
	require.Equal(t, 4096, rec.Cap())

	// Under construction: invisible to lookups.
	require.False(t, tb.Get(0xABC).Valid())

	for i := 0; i < 100; i++ {
		rec.Buf()[i] = byte(i)
	}
	rec.MarkComplete()

	it := tb.Get(0xABC)
	require.True(t, it.Valid())
	got := it.Record()
	require.Equal(t, 4096, got.Len(), "declared length stays as reserved")
	for i := 0; i < 100; i++ {
		require.Equal(t, byte(i), got.Payload()[i])
	}
	tb.Release(got)
	tb.Release(rec)
}

func TestAllocBelowMinimumFails(t *testing.T) {
	tb := openTestTable(t)

	_, err := tb.AllocRecord(0xABC, 8)
	require.ErrorIs(t, err, ErrRecordTooSmall)

	// Never silently upgraded to a complete record.
	require.False(t, tb.Get(0xABC).Valid())
}

func TestAllocUniqueReplacesMatches(t *testing.T) {
	tb := openTestTable(t)

	for _, p := range []string{"old1", "old2"} {
		rec, err := tb.CreateRecord(7, []byte(p))
		require.NoError(t, err)
		tb.Release(rec)
	}

	all := MatcherFunc(func(*Record) bool { return true })
	rec, err := tb.AllocUniqueRecord(7, 128, all)
	require.NoError(t, err)
	copy(rec.Buf(), []byte("new"))
	rec.MarkComplete()
	tb.Release(rec)

	var got []string
	for it := tb.Get(7); it.Valid(); it.Next() {
		got = append(got, string(it.Record().Payload()[:3]))
	}
	require.Equal(t, []string{"new"}, got)
}

func TestRoomGrowsAcrossFragments(t *testing.T) {
	tb := openTestTable(t)

	rec, err := tb.AllocRecord(1, 128)
	require.NoError(t, err)

	// Fill 100 bytes into the head fragment.
	for i := 0; i < 100; i++ {
		rec.Buf()[i] = byte(i)
	}

	// Room enough: same fragment, buffer picks up at the write offset.
	frag, buf, err := tb.Room(rec, 100, 20, 64)
	require.NoError(t, err)
	require.Same(t, rec, frag)
	require.Len(t, buf, 28)

	// Block in-place growth so the grow path links a real fragment.
	blocker, err := tb.CreateRecord(2, []byte("x"))
	require.NoError(t, err)
	tb.Release(blocker)

	// Not enough room: the head is truncated to its used portion and a
	// fresh fragment carries the rest.
	frag, buf, err = tb.Room(rec, 100, 200, 256)
	require.NoError(t, err)
	require.NotSame(t, rec, frag)
	require.Equal(t, 100, rec.Len(), "stale tail must not count as payload")
	require.GreaterOrEqual(t, len(buf), 200)

	for i := 0; i < 200; i++ {
		buf[i] = byte(100 + i)
	}
	frag.SetLen(200)
	rec.MarkComplete()

	it := tb.Get(1)
	require.True(t, it.Valid())
	data := logicalBytes(it.Record())
	require.Len(t, data, 300, "logically contiguous across fragments")
	for i := 0; i < 300; i++ {
		require.Equal(t, byte(i), data[i])
	}
	tb.Release(it.Record())
	tb.Release(rec)
}

func TestRemoveRecords(t *testing.T) {
	tb := openTestTable(t)

	rec, err := tb.CreateRecord(3, []byte("bye"))
	require.NoError(t, err)
	tb.Release(rec)

	tb.RemoveRecords(3, nil, false)
	require.False(t, tb.Get(3).Valid())

	// Missing key: no-op.
	tb.RemoveRecords(12345, nil, false)
}

func TestRemoveProtectsIncomplete(t *testing.T) {
	tb := openTestTable(t)

	rec, err := tb.AllocRecord(4, 128)
	require.NoError(t, err)

	tb.RemoveRecords(4, nil, false)
	require.False(t, rec.rec.Removed(), "in-progress construction survives remove")

	tb.RemoveRecords(4, nil, true)
	require.True(t, rec.rec.Removed())
	tb.Release(rec)
}

func TestWalkPropagatesFirstError(t *testing.T) {
	tb := openTestTable(t)

	for i := uint64(0); i < 4; i++ {
		rec, err := tb.CreateRecord(i, []byte{byte(i)})
		require.NoError(t, err)
		tb.Release(rec)
	}

	boom := errors.New("boom")
	seen := 0
	err := tb.Walk(func(*Record) error {
		seen++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, seen)

	seen = 0
	require.NoError(t, tb.Walk(func(*Record) error { seen++; return nil }))
	require.Equal(t, 4, seen)
	require.Equal(t, 4, tb.Records())
}

func TestHoldKeepsPayloadAfterRemove(t *testing.T) {
	tb := openTestTable(t)

	rec, err := tb.CreateRecord(8, []byte("held"))
	require.NoError(t, err)

	tb.RemoveRecords(8, nil, false)
	require.Equal(t, []byte("held"), rec.Payload(), "borrower still sees intact payload")
	tb.Release(rec)
}

func TestIterTerminalPanics(t *testing.T) {
	tb := openTestTable(t)

	it := tb.Get(999)
	require.False(t, it.Valid())
	require.Panics(t, func() { it.Next() })
}
