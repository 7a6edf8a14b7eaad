//go:build !unix

package mmfile

import (
	"io"
	"os"
)

// On platforms without a usable mmap the region lives on the heap and is
// written back wholesale on Sync/Close. Views stay valid, durability is
// weaker; acceptable for the portable fallback.

func mapRW(f *os.File, size int64) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

func flush(f *os.File, data []byte) error {
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return f.Sync()
}

func unmap(_ []byte) error { return nil }
