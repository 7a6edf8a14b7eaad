package mmfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapCreatesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.tkv")
	const size = 1 << 20

	m, err := Map(path, size)
	require.NoError(t, err)
	require.Equal(t, int64(size), m.Size())
	require.Len(t, m.Bytes(), size)

	copy(m.Bytes()[100:], []byte("persisted"))
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	// Reopen and observe the write.
	m2, err := Map(path, size)
	require.NoError(t, err)
	defer m2.Close()
	require.Equal(t, []byte("persisted"), m2.Bytes()[100:109])
}

func TestMapRejectsSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.tkv")

	m, err := Map(path, 1<<20)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = Map(path, 2<<20)
	require.Error(t, err)
}

func TestMapRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.tkv")
	_, err := Map(path, 0)
	require.Error(t, err)
	_, err = Map(path, -1)
	require.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.tkv")
	m, err := Map(path, 1<<20)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}
