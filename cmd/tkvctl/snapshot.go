package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Snapshot stream layout, inside an lz4 frame: a four-byte magic, then one
// entry per record: u64 key, u32 length, payload bytes, little-endian.

var snapshotMagic = []byte{'T', 'K', 'V', 'S'}

type snapshotEntry struct {
	Key  uint64
	Data []byte
}

type snapshotWriter struct {
	w   *bufio.Writer
	hdr [12]byte
}

func newSnapshotWriter(w io.Writer) (*snapshotWriter, error) {
	sw := &snapshotWriter{w: bufio.NewWriter(w)}
	if _, err := sw.w.Write(snapshotMagic); err != nil {
		return nil, err
	}
	return sw, nil
}

func (sw *snapshotWriter) write(e snapshotEntry) error {
	binary.LittleEndian.PutUint64(sw.hdr[0:8], e.Key)
	binary.LittleEndian.PutUint32(sw.hdr[8:12], uint32(len(e.Data)))
	if _, err := sw.w.Write(sw.hdr[:]); err != nil {
		return err
	}
	_, err := sw.w.Write(e.Data)
	return err
}

func (sw *snapshotWriter) flush() error { return sw.w.Flush() }

type snapshotReader struct {
	r   *bufio.Reader
	hdr [12]byte
}

func newSnapshotReader(r io.Reader) (*snapshotReader, error) {
	sr := &snapshotReader{r: bufio.NewReader(r)}
	var magic [4]byte
	if _, err := io.ReadFull(sr.r, magic[:]); err != nil {
		return nil, fmt.Errorf("snapshot: short header: %w", err)
	}
	if !bytes.Equal(magic[:], snapshotMagic) {
		return nil, errors.New("snapshot: bad magic")
	}
	return sr, nil
}

// next returns io.EOF at a clean end of stream.
func (sr *snapshotReader) next() (snapshotEntry, error) {
	if _, err := io.ReadFull(sr.r, sr.hdr[:]); err != nil {
		if err == io.EOF {
			return snapshotEntry{}, io.EOF
		}
		return snapshotEntry{}, fmt.Errorf("snapshot: torn entry header: %w", err)
	}
	e := snapshotEntry{
		Key:  binary.LittleEndian.Uint64(sr.hdr[0:8]),
		Data: make([]byte, binary.LittleEndian.Uint32(sr.hdr[8:12])),
	}
	if _, err := io.ReadFull(sr.r, e.Data); err != nil {
		return snapshotEntry{}, fmt.Errorf("snapshot: torn payload: %w", err)
	}
	return e, nil
}
