package atvm

/*
	Instruction set for the automated-transaction machine.

	An AT program is a flat sequence of one-byte opcodes, each immediately
	followed in the code segment by zero or more inline operands drawn from
	a small closed alphabet (see Operand, below). There is no separate
	argument-count prefix; the decoder knows how many operands an opcode
	takes, and of what shape, from the descriptor table built in init().

	Operand kinds:
		value     8 bytes,  64-bit unsigned, used verbatim
		dataAddr  4 bytes,  cell index into the data segment (scaled by 8
		                    to a byte offset, then bounds-checked)
		codeAddr  4 bytes,  absolute byte offset into the code segment
		offset    1 byte,   signed, added to the address of the branch
		                    opcode itself (not the post-decode PC) to
		                    compute the jump target
		funcCode  2 bytes,  selects a FunctionCode for the EXT_FUN family

	Arithmetic on data cells is 64-bit two's-complement wraparound for
	ADD/SUB/MUL/INC/DEC. DIV_DAT and MOD_DAT raise ErrArithmetic on a
	zero divisor. SHL_DAT/SHR_DAT use the unsigned 64-bit shift amount
	from the second operand; a shift count of 64 or more yields zero.
	SHR_DAT is a logical (unsigned) shift.
*/

// OpCode identifies a single-byte instruction.
type OpCode byte

const (
	NOP OpCode = iota + 1

	SET_VAL
	SET_DAT
	CLR_DAT
	INC_DAT
	DEC_DAT
	ADD_DAT
	SUB_DAT
	MUL_DAT
	DIV_DAT
	MOD_DAT

	BOR_DAT
	AND_DAT
	XOR_DAT
	NOT_DAT
	SHL_DAT
	SHR_DAT

	SET_IND
	SET_IDX
	IND_DAT
	IDX_DAT

	PSH_DAT
	POP_DAT

	JMP_SUB
	CAL_ADR
	RET_SUB
	JMP_ADR

	BZR_DAT
	BNZ_DAT
	BGT_DAT
	BLT_DAT
	BGE_DAT
	BLE_DAT
	BEQ_DAT
	BNE_DAT

	SLP
	FIN
	STP
	STZ
	FIZ
	ERR
	SET_PCS

	EXT_FUN
	EXT_FUN_DAT
	EXT_FUN_DAT_2
	EXT_FUN_RET
	EXT_FUN_RET_DAT
	EXT_FUN_RET_DAT_2
)

// operandKind enumerates the closed alphabet of instruction operands.
type operandKind byte

const (
	opNone operandKind = iota
	opValue
	opDataAddr
	opCodeAddr
	opOffset
	opFuncCode
)

// operandSize returns the encoded width, in bytes, of one operand of the
// given kind as it appears inline in the code segment.
func operandSize(k operandKind) uint32 {
	switch k {
	case opValue:
		return 8
	case opDataAddr, opCodeAddr:
		return 4
	case opOffset:
		return 1
	case opFuncCode:
		return 2
	default:
		return 0
	}
}

// opDescriptor is the fixed metadata the decoder and disassembler need for
// one opcode: its assembly mnemonic, the shape of its operands in order,
// and its nominal step cost. The round driver does not read defaultSteps;
// it charges whatever RoundInputs.OpcodeSteps returns for the opcode.
type opDescriptor struct {
	mnemonic     string
	operands     []operandKind
	defaultSteps uint32
}

var opcodeTable map[OpCode]opDescriptor

func init() {
	opcodeTable = map[OpCode]opDescriptor{
		NOP:     {"NOP", nil, 1},
		SET_VAL: {"SET_VAL", []operandKind{opDataAddr, opValue}, 1},
		SET_DAT: {"SET_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		CLR_DAT: {"CLR_DAT", []operandKind{opDataAddr}, 1},
		INC_DAT: {"INC_DAT", []operandKind{opDataAddr}, 1},
		DEC_DAT: {"DEC_DAT", []operandKind{opDataAddr}, 1},
		ADD_DAT: {"ADD_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		SUB_DAT: {"SUB_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		MUL_DAT: {"MUL_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		DIV_DAT: {"DIV_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		MOD_DAT: {"MOD_DAT", []operandKind{opDataAddr, opDataAddr}, 1},

		BOR_DAT: {"BOR_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		AND_DAT: {"AND_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		XOR_DAT: {"XOR_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		NOT_DAT: {"NOT_DAT", []operandKind{opDataAddr}, 1},
		SHL_DAT: {"SHL_DAT", []operandKind{opDataAddr, opDataAddr}, 1},
		SHR_DAT: {"SHR_DAT", []operandKind{opDataAddr, opDataAddr}, 1},

		SET_IND: {"SET_IND", []operandKind{opDataAddr, opDataAddr}, 1},
		SET_IDX: {"SET_IDX", []operandKind{opDataAddr, opDataAddr}, 1},
		IND_DAT: {"IND_DAT", []operandKind{opDataAddr, opDataAddr, opDataAddr}, 1},
		IDX_DAT: {"IDX_DAT", []operandKind{opDataAddr, opDataAddr, opDataAddr}, 1},

		PSH_DAT: {"PSH_DAT", []operandKind{opDataAddr}, 1},
		POP_DAT: {"POP_DAT", []operandKind{opDataAddr}, 1},

		JMP_SUB: {"JMP_SUB", []operandKind{opCodeAddr}, 1},
		CAL_ADR: {"CAL_ADR", []operandKind{opCodeAddr}, 1},
		RET_SUB: {"RET_SUB", nil, 1},
		JMP_ADR: {"JMP_ADR", []operandKind{opCodeAddr}, 1},

		BZR_DAT: {"BZR_DAT", []operandKind{opDataAddr, opOffset}, 1},
		BNZ_DAT: {"BNZ_DAT", []operandKind{opDataAddr, opOffset}, 1},
		BGT_DAT: {"BGT_DAT", []operandKind{opDataAddr, opDataAddr, opOffset}, 1},
		BLT_DAT: {"BLT_DAT", []operandKind{opDataAddr, opDataAddr, opOffset}, 1},
		BGE_DAT: {"BGE_DAT", []operandKind{opDataAddr, opDataAddr, opOffset}, 1},
		BLE_DAT: {"BLE_DAT", []operandKind{opDataAddr, opDataAddr, opOffset}, 1},
		BEQ_DAT: {"BEQ_DAT", []operandKind{opDataAddr, opDataAddr, opOffset}, 1},
		BNE_DAT: {"BNE_DAT", []operandKind{opDataAddr, opDataAddr, opOffset}, 1},

		SLP:     {"SLP", []operandKind{opDataAddr}, 1},
		FIN:     {"FIN", nil, 1},
		STP:     {"STP", nil, 1},
		STZ:     {"STZ", []operandKind{opDataAddr}, 1},
		FIZ:     {"FIZ", []operandKind{opDataAddr}, 1},
		ERR:     {"ERR", []operandKind{opCodeAddr}, 1},
		SET_PCS: {"SET_PCS", nil, 1},

		EXT_FUN:           {"EXT_FUN", []operandKind{opFuncCode}, 1},
		EXT_FUN_DAT:       {"EXT_FUN_DAT", []operandKind{opFuncCode, opDataAddr}, 1},
		EXT_FUN_DAT_2:     {"EXT_FUN_DAT_2", []operandKind{opFuncCode, opDataAddr, opDataAddr}, 1},
		EXT_FUN_RET:       {"EXT_FUN_RET", []operandKind{opFuncCode, opDataAddr}, 1},
		EXT_FUN_RET_DAT:   {"EXT_FUN_RET_DAT", []operandKind{opFuncCode, opDataAddr, opDataAddr}, 1},
		EXT_FUN_RET_DAT_2: {"EXT_FUN_RET_DAT_2", []operandKind{opFuncCode, opDataAddr, opDataAddr, opDataAddr}, 1},
	}
}

// String renders the opcode's assembly mnemonic, or "?unknown?" for a byte
// value that isn't in the table (which the decoder treats as
// ErrIllegalOperation before it ever reaches a String call on a real
// path; this is here mainly for the disassembler's defensive fallback).
func (o OpCode) String() string {
	if d, ok := opcodeTable[o]; ok {
		return d.mnemonic
	}
	return "?unknown?"
}

// descriptor looks up the opcode's metadata, returning ok=false for any
// byte value outside the table.
func (o OpCode) descriptor() (opDescriptor, bool) {
	d, ok := opcodeTable[o]
	return d, ok
}

// encodedLen returns the total on-disk size of this opcode's instruction,
// including the leading opcode byte itself.
func (o OpCode) encodedLen() uint32 {
	d, ok := opcodeTable[o]
	if !ok {
		return 1
	}
	total := uint32(1)
	for _, k := range d.operands {
		total += operandSize(k)
	}
	return total
}

// isBranch reports whether this opcode's trailing operand is a signed
// branch offset measured from the start of the opcode itself.
func (o OpCode) isBranch() bool {
	switch o {
	case BZR_DAT, BNZ_DAT, BGT_DAT, BLT_DAT, BGE_DAT, BLE_DAT, BEQ_DAT, BNE_DAT:
		return true
	default:
		return false
	}
}

// isExtFun reports whether this opcode belongs to the EXT_FUN family that
// dispatches to a FunctionCode.
func (o OpCode) isExtFun() bool {
	switch o {
	case EXT_FUN, EXT_FUN_DAT, EXT_FUN_DAT_2, EXT_FUN_RET, EXT_FUN_RET_DAT, EXT_FUN_RET_DAT_2:
		return true
	default:
		return false
	}
}
