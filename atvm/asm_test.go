package atvm

import "encoding/binary"

// asm is a minimal test-only assembler: it builds raw code-segment bytes
// for a given version by appending opcodes and operands in the version's
// scalar byte order, without going through a text syntax. Keeping this
// in the test tree (rather than shipping a general assembler) matches
// the core's own stance that nothing outside the VM needs to produce
// bytecode programmatically except tests and the creation-bytes builder.
type asm struct {
	buf   []byte
	order binary.ByteOrder
}

func newAsm(v Version) *asm {
	return &asm{order: headerByteOrder(v)}
}

func (a *asm) op(o OpCode) *asm {
	a.buf = append(a.buf, byte(o))
	return a
}

func (a *asm) dataAddr(v uint32) *asm {
	var tmp [4]byte
	a.order.PutUint32(tmp[:], v)
	a.buf = append(a.buf, tmp[:]...)
	return a
}

func (a *asm) codeAddr(v uint32) *asm {
	return a.dataAddr(v)
}

func (a *asm) value(v uint64) *asm {
	var tmp [8]byte
	a.order.PutUint64(tmp[:], v)
	a.buf = append(a.buf, tmp[:]...)
	return a
}

func (a *asm) offset(v int8) *asm {
	a.buf = append(a.buf, byte(v))
	return a
}

func (a *asm) funcCode(f FunctionCode) *asm {
	var tmp [2]byte
	a.order.PutUint16(tmp[:], uint16(f))
	a.buf = append(a.buf, tmp[:]...)
	return a
}

func (a *asm) bytes() []byte {
	return a.buf
}

// pad right-pads the assembled code to n bytes, matching the fixed
// code-page geometry a real creation-bytes header would declare.
func (a *asm) pad(n int) []byte {
	out := append([]byte(nil), a.buf...)
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}
