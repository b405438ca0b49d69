package atvm

import (
	"fmt"
	"strings"
)

// Disassemble walks code from offset 0 to its end, skipping runs of zero
// bytes (padding between logical blocks, or trailing unused pages), and
// renders one line per instruction in the form
// "[PC: %04x] <mnemonic> <operand repr>".
func Disassemble(code []byte, version Version) string {
	order := headerByteOrder(version)
	var b strings.Builder
	pc := uint32(0)
	end := uint32(len(code))

	for pc < end {
		if code[pc] == 0 {
			pc++
			continue
		}

		ins, err := decodeAt(code, pc, order)
		if err != nil {
			fmt.Fprintf(&b, "[PC: %04x] <decode error: %v>\n", pc, err)
			pc++
			continue
		}

		fmt.Fprintf(&b, "[PC: %04x] %s", pc, ins.op.String())
		for i, o := range ins.operands {
			b.WriteByte(' ')
			b.WriteString(operandRepr(ins, i, o))
		}
		b.WriteByte('\n')

		pc = ins.nextPC
	}

	return b.String()
}

func operandRepr(ins *instruction, i int, o operand) string {
	switch o.kind {
	case opValue:
		return fmt.Sprintf("%d", o.value)
	case opDataAddr:
		return fmt.Sprintf("@%d", o.dataAddr)
	case opCodeAddr:
		return fmt.Sprintf("$%04x", o.codeAddr)
	case opOffset:
		if ins.op.isBranch() {
			return fmt.Sprintf("%d", int64(o.offset))
		}
		return fmt.Sprintf("%d", o.offset)
	case opFuncCode:
		return fmt.Sprintf("%s(0x%04x)", o.funcCode.String(), uint16(o.funcCode))
	default:
		return ""
	}
}
