package atvm

// Registers holds the four 64-bit words of one of the A/B scratch areas.
type Registers [4]uint64

// MachineState is the full mutable state of one automated transaction:
// its code, data, two downward-growing stacks, program counter, flags,
// registers, and balances. It carries no reference to a host; the round
// driver is handed both a *MachineState and a HostAPI and threads them
// together for exactly one round at a time (see Execute in round.go).
type MachineState struct {
	Version Version

	Code []byte // read-only at execution; never mutated by opcodes
	Data []byte

	CallStack    []byte // downward-growing; CallStackPos is the write cursor
	CallStackPos uint32
	UserStack    []byte
	UserStackPos uint32

	PC              uint32
	OnStopAddress   uint32
	OnErrorAddress  uint32
	HasOnError      bool

	A, B Registers

	CurrentBalance  uint64
	PreviousBalance uint64
	Steps           uint32

	CurrentBlockHeight uint32

	IsSleeping             bool
	IsStopped              bool
	IsFrozen               bool
	IsFinished             bool
	HadFatalError          bool
	IsFirstOpcodeAfterSleep bool

	HasSleepUntilHeight bool
	SleepUntilHeight    uint32

	HasFrozenBalance bool
	FrozenBalance    uint64

	// savedPC is the scratch slot SET_PCS writes into. Nothing in this
	// instruction set reads it back; it exists because SET_PCS is a real
	// opcode and must have somewhere to put its value.
	savedPC uint32
}

// NewFromCreationBytes builds a fresh MachineState from a producer's
// creation bytes (header || code || initial data), per the creation-bytes
// wire format. minActivationAmount, if non-zero, freezes the machine at
// construction with FrozenBalance = minActivationAmount - 1 until the
// host funds it past that threshold.
func NewFromCreationBytes(raw []byte, deployBalance uint64) (*MachineState, error) {
	hdr, body, err := parseCreationHeader(raw)
	if err != nil {
		return nil, err
	}

	sizes := pageSizesForVersion(hdr.version)
	codeLen := hdr.numCodePages * sizes.code
	dataLen := hdr.numDataPages * sizes.data
	callStackLen := hdr.numCallStackPages * sizes.callStack
	userStackLen := hdr.numUserStackPages * sizes.userStack

	need := codeLen + dataLen
	if uint32(len(body)) < need {
		return nil, newExecErr(ErrCodeSegment, 0, "creation bytes shorter than declared code+data length")
	}

	m := &MachineState{
		Version:         hdr.version,
		Code:            append([]byte(nil), body[:codeLen]...),
		Data:            make([]byte, dataLen),
		CallStack:       make([]byte, callStackLen),
		CallStackPos:    callStackLen,
		UserStack:       make([]byte, userStackLen),
		UserStackPos:    userStackLen,
		CurrentBalance:  deployBalance,
		PreviousBalance: deployBalance,
	}
	copy(m.Data, body[codeLen:codeLen+dataLen])

	if hdr.minActivationAmount > 0 {
		m.IsFrozen = true
		m.HasFrozenBalance = true
		m.FrozenBalance = hdr.minActivationAmount - 1
	}
	return m, nil
}

// dataCell reads data cell i as a raw 64-bit value, validating bounds.
func (m *MachineState) dataCell(i uint32) (uint64, bool) {
	off, ok := dataByteOffset(uint32(len(m.Data)), i)
	if !ok {
		return 0, false
	}
	return readDataCell(m.Data, off), true
}

func (m *MachineState) setDataCell(i uint32, v uint64) bool {
	off, ok := dataByteOffset(uint32(len(m.Data)), i)
	if !ok {
		return false
	}
	writeDataCell(m.Data, off, v)
	return true
}

// pushCallStack writes addr onto the call stack, failing on overflow.
func (m *MachineState) pushCallStack(addr uint32) bool {
	if m.CallStackPos < callStackEntrySize {
		return false
	}
	m.CallStackPos -= callStackEntrySize
	headerByteOrder(m.Version).PutUint32(m.CallStack[m.CallStackPos:m.CallStackPos+callStackEntrySize], addr)
	return true
}

// popCallStack pops an address off the call stack, failing on underflow.
func (m *MachineState) popCallStack() (uint32, bool) {
	if m.CallStackPos+callStackEntrySize > uint32(len(m.CallStack)) {
		return 0, false
	}
	addr := headerByteOrder(m.Version).Uint32(m.CallStack[m.CallStackPos : m.CallStackPos+callStackEntrySize])
	m.CallStackPos += callStackEntrySize
	return addr, true
}

// pushUserStack writes v onto the user stack, failing on overflow.
func (m *MachineState) pushUserStack(v uint64) bool {
	if m.UserStackPos < userStackEntrySize {
		return false
	}
	m.UserStackPos -= userStackEntrySize
	writeDataCell(m.UserStack, m.UserStackPos, v)
	return true
}

// popUserStack pops a value off the user stack, failing on underflow.
func (m *MachineState) popUserStack() (uint64, bool) {
	if m.UserStackPos+userStackEntrySize > uint32(len(m.UserStack)) {
		return 0, false
	}
	v := readDataCell(m.UserStack, m.UserStackPos)
	m.UserStackPos += userStackEntrySize
	return v, true
}
