package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/tablekv/tablekv/table"
)

// writeSnapshotFile builds an lz4 snapshot with n small entries.
func writeSnapshotFile(t *testing.T, path string, n int) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := lz4.NewWriter(out)
	sw, err := newSnapshotWriter(zw)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, sw.write(snapshotEntry{Key: uint64(i + 1), Data: []byte("payload")}))
	}
	require.NoError(t, sw.flush())
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
}

func TestImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.tkv")

	reg := table.NewRegistry(nil)
	_, err := reg.Open(path, 2*table.ExtentSize, 0, 0)
	require.NoError(t, err)
	require.NoError(t, reg.ShutdownAll())

	snap := filepath.Join(dir, "cache.tkvs.lz4")
	writeSnapshotFile(t, snap, 5)
	require.NoError(t, runImport(path, snap))

	reg = table.NewRegistry(nil)
	tb, err := reg.Open(path, 2*table.ExtentSize, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 5, tb.Records())
	require.NoError(t, reg.ShutdownAll())
}

func TestImportFullTableFailsPromptly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.tkv")

	// One extent is all header and bucket table: every insert is out of space.
	reg := table.NewRegistry(nil)
	_, err := reg.Open(path, table.ExtentSize, 0, 0)
	require.NoError(t, err)
	require.NoError(t, reg.ShutdownAll())

	snap := filepath.Join(dir, "cache.tkvs.lz4")
	writeSnapshotFile(t, snap, 20)

	// More entries than the channel buffer holds: the producer must not
	// wedge on the channel once every worker has bailed out.
	done := make(chan error, 1)
	go func() { done <- runImport(path, snap) }()
	select {
	case err := <-done:
		require.ErrorIs(t, err, table.ErrNoSpace)
	case <-time.After(10 * time.Second):
		t.Fatal("import did not return on a full table")
	}
}
