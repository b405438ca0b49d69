package atvm

import "encoding/binary"

// operand is one decoded instruction argument. Only the field matching
// its kind is meaningful; the others are zero.
type operand struct {
	kind     operandKind
	value    uint64
	dataAddr uint32
	codeAddr uint32
	offset   int8
	funcCode FunctionCode
}

// instruction is one fully decoded opcode plus its operands, along with
// the code offsets needed to compute branch targets and advance the PC.
type instruction struct {
	op       OpCode
	startPC  uint32 // offset of the opcode byte itself
	operands []operand
	nextPC   uint32 // offset of the following instruction
}

// dataAddrAt and friends let executors pull a specific operand by
// position without re-deriving its kind; they panic on a shape mismatch,
// which would mean the opcode table and the executor have drifted apart
// (a programming bug, not a runtime condition to recover from).
func (ins *instruction) dataAddrAt(i int) uint32 {
	if ins.operands[i].kind != opDataAddr {
		panic("atvm: operand shape mismatch")
	}
	return ins.operands[i].dataAddr
}

func (ins *instruction) valueAt(i int) uint64 {
	if ins.operands[i].kind != opValue {
		panic("atvm: operand shape mismatch")
	}
	return ins.operands[i].value
}

func (ins *instruction) codeAddrAt(i int) uint32 {
	if ins.operands[i].kind != opCodeAddr {
		panic("atvm: operand shape mismatch")
	}
	return ins.operands[i].codeAddr
}

func (ins *instruction) offsetAt(i int) int8 {
	if ins.operands[i].kind != opOffset {
		panic("atvm: operand shape mismatch")
	}
	return ins.operands[i].offset
}

func (ins *instruction) funcCodeAt(i int) FunctionCode {
	if ins.operands[i].kind != opFuncCode {
		panic("atvm: operand shape mismatch")
	}
	return ins.operands[i].funcCode
}

// decodeAt decodes one instruction starting at pc within code, using
// order for any multi-byte operand fields (code/data addresses, offsets
// and func-codes are scalars and therefore version-dependent in byte
// order, same as the header; data-segment cell contents are not involved
// in decoding at all).
func decodeAt(code []byte, pc uint32, order binary.ByteOrder) (*instruction, error) {
	c := newCursor(code, order)
	c.seek(pc)

	rawOp, ok := c.readByte()
	if !ok {
		return nil, newExecErr(ErrCodeSegment, pc, "ran out of code bytes while reading opcode")
	}

	op := OpCode(rawOp)
	desc, ok := op.descriptor()
	if !ok {
		return nil, newExecErr(ErrIllegalOperation, pc, "unknown opcode")
	}

	ins := &instruction{op: op, startPC: pc}
	for _, kind := range desc.operands {
		o := operand{kind: kind}
		switch kind {
		case opValue:
			v, ok := c.readUint64()
			if !ok {
				return nil, newExecErr(ErrCodeSegment, pc, "ran out of code bytes while decoding value operand")
			}
			o.value = v
		case opDataAddr:
			v, ok := c.readUint32()
			if !ok {
				return nil, newExecErr(ErrCodeSegment, pc, "ran out of code bytes while decoding data-addr operand")
			}
			o.dataAddr = v
		case opCodeAddr:
			v, ok := c.readUint32()
			if !ok {
				return nil, newExecErr(ErrCodeSegment, pc, "ran out of code bytes while decoding code-addr operand")
			}
			o.codeAddr = v
		case opOffset:
			v, ok := c.readSignedByte()
			if !ok {
				return nil, newExecErr(ErrCodeSegment, pc, "ran out of code bytes while decoding branch offset")
			}
			o.offset = v
		case opFuncCode:
			v, ok := c.readUint16()
			if !ok {
				return nil, newExecErr(ErrCodeSegment, pc, "ran out of code bytes while decoding func-code operand")
			}
			o.funcCode = FunctionCode(v)
		}
		ins.operands = append(ins.operands, o)
	}
	ins.nextPC = c.tell()
	return ins, nil
}

// branchTarget computes the jump target for a branch instruction: the
// signed offset is added to the address of the branch opcode itself, not
// to the PC after decoding its operands.
func (ins *instruction) branchTarget(offsetOperandIndex int) uint32 {
	off := ins.offsetAt(offsetOperandIndex)
	return uint32(int64(ins.startPC) + int64(off))
}
