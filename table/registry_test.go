package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenValidation(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil)

	tests := []struct {
		name string
		path string
		size int64
		node int
		want error
	}{
		{"no suffix", filepath.Join(dir, "cache.db"), 4 * ExtentSize, 0, ErrBadPath},
		{"no directory", "cache.tkv", 4 * ExtentSize, 0, ErrBadPath},
		{"empty base name", filepath.Join(dir, ".tkv"), 4 * ExtentSize, 0, ErrBadPath},
		{"name too long", filepath.Join(dir, "abcdefghijklmnopqrstuvwxyz.tkv"), 4 * ExtentSize, 0, ErrBadName},
		{"negative node", filepath.Join(dir, "cache.tkv"), 4 * ExtentSize, -1, ErrBadNode},
		{"node too large", filepath.Join(dir, "cache.tkv"), 4 * ExtentSize, 10, ErrBadNode},
		{"zero size", filepath.Join(dir, "cache.tkv"), 0, 0, ErrBadSize},
		{"unaligned size", filepath.Join(dir, "cache.tkv"), ExtentSize + 1, 0, ErrBadSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Open(tc.path, tc.size, 0, tc.node)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpenSharesHandle(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil)
	path := filepath.Join(dir, "cache.tkv")

	t1, err := reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)
	t2, err := reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)
	require.Same(t, t1, t2, "one live handle per (name, node)")

	// Still usable after one of the two openers closes.
	require.NoError(t, reg.Close(t1))
	rec, err := t2.CreateRecord(1, []byte("alive"))
	require.NoError(t, err)
	t2.Release(rec)
	require.NoError(t, reg.Close(t2))
}

func TestOpenSeparatesNodes(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil)
	path := filepath.Join(dir, "cache.tkv")

	t0, err := reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)
	t1, err := reg.Open(path, 2*ExtentSize, 0, 1)
	require.NoError(t, err)
	require.NotSame(t, t0, t1)
	require.Equal(t, "cache0.tkv", t0.Name())
	require.Equal(t, "cache1.tkv", t1.Name())

	rec, err := t0.CreateRecord(9, []byte("node0"))
	require.NoError(t, err)
	t0.Release(rec)
	require.False(t, t1.Get(9).Valid(), "instances never share records")

	// One physical file per node instance.
	for _, name := range []string{"cache0.tkv", "cache1.tkv"} {
		st, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Equal(t, int64(2*ExtentSize), st.Size())
	}
	require.NoError(t, reg.ShutdownAll())
}

func TestOpenSizeRules(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil)
	path := filepath.Join(dir, "cache.tkv")

	t1, err := reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)

	// Already open: size is ignored, the live handle wins.
	t2, err := reg.Open(path, 4*ExtentSize, 0, 0)
	require.NoError(t, err)
	require.Same(t, t1, t2)
	require.NoError(t, reg.Close(t2))

	// Fully closed: remapping the existing file checks the size.
	require.NoError(t, reg.Close(t1))
	_, err = reg.Open(path, 4*ExtentSize, 0, 0)
	require.Error(t, err)

	tb, err := reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2*ExtentSize), tb.Size())
	require.NoError(t, reg.ShutdownAll())
}

func TestReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.tkv")

	reg := NewRegistry(nil)
	tb, err := reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)
	rec, err := tb.CreateRecord(0xABC, []byte("durable"))
	require.NoError(t, err)
	tb.Release(rec)
	require.NoError(t, reg.Close(tb))

	// Fresh registry, same file: the record survives.
	reg = NewRegistry(nil)
	tb, err = reg.Open(path, 2*ExtentSize, 0, 0)
	require.NoError(t, err)
	it := tb.Get(0xABC)
	require.True(t, it.Valid())
	require.Equal(t, []byte("durable"), it.Record().Payload())
	tb.Release(it.Record())
	require.NoError(t, reg.ShutdownAll())
}

func TestInfoReportsOpenTables(t *testing.T) {
	dir := t.TempDir()
	reg := NewRegistry(nil)

	tb, err := reg.Open(filepath.Join(dir, "cache.tkv"), 2*ExtentSize, 0, 3)
	require.NoError(t, err)
	_, err = reg.Open(filepath.Join(dir, "cache.tkv"), 2*ExtentSize, 0, 3)
	require.NoError(t, err)

	rec, err := tb.CreateRecord(1, []byte("x"))
	require.NoError(t, err)
	tb.Release(rec)

	infos := reg.Info()
	require.Len(t, infos, 1)
	info := infos[0]
	require.Equal(t, "cache3.tkv", info.Name)
	require.Equal(t, 3, info.Node)
	require.Equal(t, int64(2*ExtentSize), info.Size)
	require.Equal(t, 1, info.Records)
	require.Equal(t, 2, info.Openers)
	require.Greater(t, info.Used, int64(ExtentSize), "header extent counts as used")

	require.NoError(t, reg.ShutdownAll())
	require.Empty(t, reg.Info())
}
