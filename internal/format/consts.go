// Package format houses the on-disk layout of a tablekv region: the header
// page, the bucket table, and record headers. The goal is to keep the
// encoding focused and allocation-free so higher-level packages can
// orchestrate the data in a more ergonomic form.
package format

var (
	// Magic is the four-byte signature at the start of every table file.
	// Layout (little-endian):
	//   0x00  'T' 'K' 'V' '1'
	Magic = []byte{'T', 'K', 'V', '1'}
)

const (
	// Version is the current layout version written into fresh regions.
	Version = 1

	// ExtentSize is the unit of space reservation. The region size must be
	// a positive multiple of it, and a record fragment never spans an
	// extent boundary.
	ExtentSize = 1 << 20

	// HeaderSize is the size of the header page at the start of extent 0.
	HeaderSize = 4096

	// BucketCount is the number of hash buckets in the bucket table that
	// follows the header page. Must be a power of two.
	BucketCount = 1 << 16

	// BucketSlotSize is the width of one bucket table entry: the absolute
	// offset of the first record in the chain, 0 when the chain is empty.
	BucketSlotSize = 8

	// DataStart is the absolute offset where record allocation begins.
	// Extent 0 is fully reserved for the header page and the bucket table.
	DataStart = ExtentSize

	// RecordHeaderSize is the number of bytes preceding every record
	// payload (allocated records and continuation fragments alike).
	RecordHeaderSize = 40

	// MinAllocSize is the minimum payload length for a deferred-completion
	// allocation. Smaller records are created complete in one step and are
	// not extensible.
	MinAllocSize = 64

	// RecordAlignment is the required alignment of record starts.
	RecordAlignment = 8

	recordAlignMask = RecordAlignment - 1
)

// Header page field offsets.
const (
	OffMagic       = 0x00 // u32
	OffVersion     = 0x04 // u16
	OffRegionSize  = 0x08 // u64
	OffExtentSize  = 0x10 // u32
	OffRecSizeHint = 0x14 // u32
	OffAllocPtr    = 0x18 // u64
)

// Record header field offsets, relative to the record start.
const (
	RecOffKey   = 0x00 // u64
	RecOffNext  = 0x08 // u64  next record in the bucket chain
	RecOffChunk = 0x10 // u64  continuation fragment
	RecOffCap   = 0x18 // u32  payload capacity
	RecOffLen   = 0x1C // u32  payload length in use
	RecOffFlags = 0x20 // u32  atomic word
	RecOffRef   = 0x24 // u32  atomic word
)

// Record flag bits.
const (
	// FlagComplete marks a published record. Records without it are
	// invisible to lookup, chain scans and ordinary removal.
	FlagComplete = 1 << 0

	// FlagRemoved marks a record unlinked from its chain; its space is
	// reclaimed once the reference count drains to zero.
	FlagRemoved = 1 << 1

	// FlagFragment marks a continuation fragment. Fragments never appear
	// in bucket chains; they are reachable only through the chunk link of
	// their head record.
	FlagFragment = 1 << 2
)

// Align8 returns n aligned up to the next record boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(41) = 48
func Align8(n int) int {
	return (n + recordAlignMask) & ^recordAlignMask
}

// RecordSpan returns the total on-disk footprint of a record with the given
// payload capacity: header plus payload, aligned.
func RecordSpan(cap int) int {
	return Align8(RecordHeaderSize + cap)
}

// BucketOff returns the absolute offset of bucket slot i.
func BucketOff(i uint32) int {
	return HeaderSize + int(i)*BucketSlotSize
}

// Bucket maps a key to its bucket index. Keys arrive pre-hashed by the
// caller's placement scheme, but low bits are often poor (sequential IDs),
// so they are mixed with a Fibonacci multiplier before masking.
func Bucket(key uint64) uint32 {
	return uint32((key * 0x9E3779B97F4A7C15) >> 48 & (BucketCount - 1))
}
