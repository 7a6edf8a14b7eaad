// Package mmfile maps a backing file read-write into the address space and
// keeps the mapping alive for as long as the caller needs zero-copy views.
//
// IMPORTANT: any slices created as views into Bytes() become invalid after
// Close.
package mmfile

import (
	"fmt"
	"os"
)

// File is an open, mapped backing file.
type File struct {
	f    *os.File
	data []byte
	size int64
}

// Map opens the file at path and maps it read-write. A missing or empty file
// is created and sized to size; an existing file must already be exactly
// size bytes (the region layout is derived from it).
func Map(path string, size int64) (*File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: bad size %d", size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	switch st.Size() {
	case 0:
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmfile: size %s: %w", path, err)
		}
	case size:
		// Reopening an existing region.
	default:
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: %s is %d bytes, want %d", path, st.Size(), size)
	}

	data, err := mapRW(f, size)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: map %s: %w", path, err)
	}
	return &File{f: f, data: data, size: size}, nil
}

// Bytes returns the mapped region. The slice aliases the file contents.
func (m *File) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.data
}

// Size returns the mapped size in bytes.
func (m *File) Size() int64 {
	if m == nil {
		return 0
	}
	return m.size
}

// Sync flushes dirty pages to the backing file.
func (m *File) Sync() error {
	if m == nil || m.data == nil {
		return nil
	}
	return flush(m.f, m.data)
}

// Close flushes, unmaps and closes the backing file. Safe to call twice.
func (m *File) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	err := flush(m.f, m.data)
	if e := unmap(m.data); err == nil {
		err = e
	}
	m.data = nil
	if e := m.f.Close(); err == nil {
		err = e
	}
	return err
}
