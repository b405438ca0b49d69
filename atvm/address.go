package atvm

// dataByteOffset converts a data-segment cell index into a byte offset
// and validates it against the segment length. Every opcode and function
// code that addresses a data cell, direct or indirect, funnels through
// here so that out-of-bounds access always raises ErrInvalidAddress
// before any mutation happens. (Hash function codes address a byte range
// instead and check it in hashInputBytes.)
func dataByteOffset(segLen uint32, cellIndex uint32) (uint32, bool) {
	off := uint64(cellIndex) * uint64(dataCellSize)
	if off+uint64(dataCellSize) > uint64(segLen) {
		return 0, false
	}
	return uint32(off), true
}

// codeAddrValid reports whether addr is a usable code-segment offset.
func codeAddrValid(segLen uint32, addr uint32) bool {
	return addr < segLen
}

// cellIndexFromValue narrows a raw 64-bit data-cell value down to a cell
// index used for one further level of indirection (IND_DAT/IDX_DAT and
// SET_IND/SET_IDX read the index they dereference out of a data cell,
// which stores it as a full 64-bit value). Values that don't fit in a
// uint32 cannot index any real segment and are rejected the same as an
// out-of-range address.
func cellIndexFromValue(v uint64) (uint32, bool) {
	if v > 0xFFFFFFFF {
		return 0, false
	}
	return uint32(v), true
}
