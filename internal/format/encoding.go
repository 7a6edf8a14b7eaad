package format

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// Little-endian accessors for header and record fields. The standard library
// implementation is already compiled down to single loads and stores, so no
// unsafe tricks are needed for the plain variants.

// PutU16 writes v at off in little-endian order.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32 writes v at off in little-endian order.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes v at off in little-endian order.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU16 reads a uint16 at off.
func ReadU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

// ReadU32 reads a uint32 at off.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 at off.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// The flag, refcount, chain and bucket words are shared between concurrent
// callers and must be read and written atomically. They are all placed on
// 4- or 8-byte boundaries within the page-aligned mapping, which is what the
// sync/atomic package requires. Atomic access implies native byte order;
// these words are process-private state or full-word offsets, so mixing them
// with the little-endian accessors above is never done on the same field.

// U32At returns an atomically addressable view of the word at off.
// off must be 4-byte aligned.
func U32At(b []byte, off int) *atomic.Uint32 {
	return (*atomic.Uint32)(unsafe.Pointer(&b[off]))
}

// U64At returns an atomically addressable view of the word at off.
// off must be 8-byte aligned.
func U64At(b []byte, off int) *atomic.Uint64 {
	return (*atomic.Uint64)(unsafe.Pointer(&b[off]))
}
