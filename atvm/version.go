package atvm

import "encoding/binary"

// Version identifies the on-disk layout of a machine's header and the
// byte order used for its header and serialized scalar fields. Bumping
// the version is the only sanctioned way to change instruction set or
// wire format semantics; there is no opcode extensibility within a
// fixed version.
type Version uint16

const (
	// Version1 is the original little-endian layout: fixed 256-byte pages
	// for every segment kind and no min-activation-amount field.
	Version1 Version = 1
	// Version2 is the current big-endian-header layout with byte-sized
	// code pages, 8-byte data pages, 4-byte call-stack pages and 8-byte
	// user-stack pages, plus an appended min_activation_amount.
	Version2 Version = 2
)

// headerByteOrder returns the byte order used to decode/encode a header
// and the scalar fields of serialized state for the given version.
// Version 1 is little-endian throughout; version 2 and later are
// big-endian for headers and serialized scalars, while data-segment
// cells remain little-endian internally regardless of version.
func headerByteOrder(v Version) binary.ByteOrder {
	if v == Version1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// pageSizes holds the four page sizes (code, data, call-stack, user-stack)
// in bytes for a given version.
type pageSizes struct {
	code, data, callStack, userStack uint32
}

func pageSizesForVersion(v Version) pageSizes {
	if v == Version1 {
		return pageSizes{code: 256, data: 256, callStack: 256, userStack: 256}
	}
	return pageSizes{code: 1, data: 8, callStack: 4, userStack: 8}
}

// dataCellSize is the width in bytes of one addressable data-segment cell.
// It is fixed across versions; only the number of cells per page changes.
const dataCellSize uint32 = 8

// codeAddressSize, callStackEntrySize and userStackEntrySize are the fixed
// widths of the values these structures push/pop, independent of version.
const (
	codeAddressSize    uint32 = 4
	callStackEntrySize uint32 = 4
	userStackEntrySize uint32 = 8
)
