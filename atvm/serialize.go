package atvm

import "fmt"

// Flag bit positions within the serialized flags word, in the order they
// are listed here starting from the least significant bit (so the last
// one listed is the most significant): is_sleeping, is_stopped,
// is_finished, had_fatal_error, is_frozen, has_on_error_address,
// has_sleep_until_height, has_frozen_balance, has_non_zero_A,
// has_non_zero_B.
const (
	flagIsSleeping = iota
	flagIsStopped
	flagIsFinished
	flagHadFatalError
	flagIsFrozen
	flagHasOnError
	flagHasSleepUntilHeight
	flagHasFrozenBalance
	flagHasNonZeroA
	flagHasNonZeroB
)

// Serialize produces the persistent-state byte form of m: everything
// needed to resume execution except the code segment, which is invariant
// and supplied separately on restore. Version 1 omits previous_balance
// and uses little-endian scalars throughout; version 2 and later use
// big-endian scalars.
func (m *MachineState) Serialize() []byte {
	order := headerByteOrder(m.Version)
	nonZeroA := m.A != Registers{}
	nonZeroB := m.B != Registers{}

	var flags uint32
	setFlag := func(bit int, v bool) {
		if v {
			flags |= 1 << uint(bit)
		}
	}
	setFlag(flagIsSleeping, m.IsSleeping)
	setFlag(flagIsStopped, m.IsStopped)
	setFlag(flagIsFinished, m.IsFinished)
	setFlag(flagHadFatalError, m.HadFatalError)
	setFlag(flagIsFrozen, m.IsFrozen)
	setFlag(flagHasOnError, m.HasOnError)
	setFlag(flagHasSleepUntilHeight, m.HasSleepUntilHeight)
	setFlag(flagHasFrozenBalance, m.HasFrozenBalance)
	setFlag(flagHasNonZeroA, nonZeroA)
	setFlag(flagHasNonZeroB, nonZeroB)

	activeCallStack := m.CallStack[m.CallStackPos:]
	activeUserStack := m.UserStack[m.UserStackPos:]

	size := len(m.Data) + 4 + len(activeCallStack) + 4 + len(activeUserStack) + 4 + 4 + 4
	if m.Version != Version1 {
		size += 8 // previous_balance
	}
	size += 4 // flags
	if m.HasOnError {
		size += 4
	}
	if m.HasSleepUntilHeight {
		size += 4
	}
	if m.HasFrozenBalance {
		size += 8
	}
	if nonZeroA {
		size += 32
	}
	if nonZeroB {
		size += 32
	}

	out := make([]byte, size)
	c := newCursor(out, order)

	copy(out[:len(m.Data)], m.Data)
	c.seek(uint32(len(m.Data)))

	c.writeUint32(uint32(len(activeCallStack)))
	copy(out[c.tell():c.tell()+uint32(len(activeCallStack))], activeCallStack)
	c.seek(c.tell() + uint32(len(activeCallStack)))

	c.writeUint32(uint32(len(activeUserStack)))
	copy(out[c.tell():c.tell()+uint32(len(activeUserStack))], activeUserStack)
	c.seek(c.tell() + uint32(len(activeUserStack)))

	c.writeInt32(int32(m.PC))
	c.writeInt32(int32(m.OnStopAddress))
	if m.Version != Version1 {
		c.writeInt64(int64(m.PreviousBalance))
	}
	c.writeUint32(flags)
	if m.HasOnError {
		c.writeInt32(int32(m.OnErrorAddress))
	}
	if m.HasSleepUntilHeight {
		c.writeInt32(int32(m.SleepUntilHeight))
	}
	if m.HasFrozenBalance {
		c.writeInt64(int64(m.FrozenBalance))
	}
	if nonZeroA {
		for _, w := range m.A {
			c.writeInt64(int64(w))
		}
	}
	if nonZeroB {
		for _, w := range m.B {
			c.writeInt64(int64(w))
		}
	}

	return out
}

// Restore re-inflates a MachineState from bytes previously produced by
// Serialize, supplying the invariant code segment and the segment sizes
// fixed at construction (version, data length and the two stack
// capacities, in bytes). The in-use (top) portion of each stack is
// restored byte-for-byte, and CallStackPos/UserStackPos are set to the
// stack's capacity minus its serialized in-use length.
func Restore(version Version, code []byte, dataLen, callStackCap, userStackCap uint32, raw []byte) (*MachineState, error) {
	order := headerByteOrder(version)
	c := newCursor(raw, order)

	if uint32(len(raw)) < dataLen {
		return nil, fmt.Errorf("state bytes shorter than data segment: %w", ErrCodeSegment)
	}
	m := &MachineState{Version: version, Code: code}
	m.Data = append([]byte(nil), raw[:dataLen]...)
	c.seek(dataLen)

	callStackLen, ok := c.readUint32()
	if !ok {
		return nil, fmt.Errorf("state bytes truncated at call stack length: %w", ErrCodeSegment)
	}
	if c.remaining() < callStackLen {
		return nil, fmt.Errorf("state bytes truncated in call stack: %w", ErrCodeSegment)
	}
	activeCallStack := raw[c.tell() : c.tell()+callStackLen]
	c.seek(c.tell() + callStackLen)

	userStackLen, ok := c.readUint32()
	if !ok {
		return nil, fmt.Errorf("state bytes truncated at user stack length: %w", ErrCodeSegment)
	}
	if c.remaining() < userStackLen {
		return nil, fmt.Errorf("state bytes truncated in user stack: %w", ErrCodeSegment)
	}
	activeUserStack := raw[c.tell() : c.tell()+userStackLen]
	c.seek(c.tell() + userStackLen)

	m.CallStack = make([]byte, callStackCap)
	m.CallStackPos = callStackCap - callStackLen
	copy(m.CallStack[m.CallStackPos:], activeCallStack)

	m.UserStack = make([]byte, userStackCap)
	m.UserStackPos = userStackCap - userStackLen
	copy(m.UserStack[m.UserStackPos:], activeUserStack)

	pc, ok := c.readInt32()
	if !ok {
		return nil, fmt.Errorf("state bytes truncated at program counter: %w", ErrCodeSegment)
	}
	m.PC = uint32(pc)

	onStop, ok := c.readInt32()
	if !ok {
		return nil, fmt.Errorf("state bytes truncated at on_stop_address: %w", ErrCodeSegment)
	}
	m.OnStopAddress = uint32(onStop)

	if version != Version1 {
		prevBal, ok := c.readInt64()
		if !ok {
			return nil, fmt.Errorf("state bytes truncated at previous_balance: %w", ErrCodeSegment)
		}
		m.PreviousBalance = uint64(prevBal)
	}

	flags, ok := c.readUint32()
	if !ok {
		return nil, fmt.Errorf("state bytes truncated at flags: %w", ErrCodeSegment)
	}
	has := func(bit int) bool { return flags&(1<<uint(bit)) != 0 }
	m.IsSleeping = has(flagIsSleeping)
	m.IsStopped = has(flagIsStopped)
	m.IsFinished = has(flagIsFinished)
	m.HadFatalError = has(flagHadFatalError)
	m.IsFrozen = has(flagIsFrozen)
	m.HasOnError = has(flagHasOnError)
	m.HasSleepUntilHeight = has(flagHasSleepUntilHeight)
	m.HasFrozenBalance = has(flagHasFrozenBalance)
	nonZeroA := has(flagHasNonZeroA)
	nonZeroB := has(flagHasNonZeroB)

	if m.HasOnError {
		v, ok := c.readInt32()
		if !ok {
			return nil, fmt.Errorf("state bytes truncated at on_error_address: %w", ErrCodeSegment)
		}
		m.OnErrorAddress = uint32(v)
	}
	if m.HasSleepUntilHeight {
		v, ok := c.readInt32()
		if !ok {
			return nil, fmt.Errorf("state bytes truncated at sleep_until_height: %w", ErrCodeSegment)
		}
		m.SleepUntilHeight = uint32(v)
	}
	if m.HasFrozenBalance {
		v, ok := c.readInt64()
		if !ok {
			return nil, fmt.Errorf("state bytes truncated at frozen_balance: %w", ErrCodeSegment)
		}
		m.FrozenBalance = uint64(v)
	}
	if nonZeroA {
		for i := range m.A {
			v, ok := c.readInt64()
			if !ok {
				return nil, fmt.Errorf("state bytes truncated in A register: %w", ErrCodeSegment)
			}
			m.A[i] = uint64(v)
		}
	}
	if nonZeroB {
		for i := range m.B {
			v, ok := c.readInt64()
			if !ok {
				return nil, fmt.Errorf("state bytes truncated in B register: %w", ErrCodeSegment)
			}
			m.B[i] = uint64(v)
		}
	}

	return m, nil
}
