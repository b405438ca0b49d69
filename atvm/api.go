package atvm

// Logger is the minimal sink the core writes to, satisfied by the ECHO
// function code. The core never formats a log line itself beyond handing
// the caller's string through; a real deployment typically backs this
// with a slog.Logger adapter (see cmd/atvmctl for one).
type Logger interface {
	Log(msg string)
}

// HostAPI is everything the round driver and function-code executor need
// from the surrounding chain: block/transaction queries, payments, and
// the fee/step schedule for the round about to run. The core holds no
// concrete implementation of this interface; callers supply one (a real
// chain adapter, or internal/fakehost for tests and manual runs).
type HostAPI interface {
	CurrentBlockHeight() uint32
	CurrentBalance(m *MachineState) uint64
	PreviousBlockHeight() uint32
	AtCreationBlockHeight(m *MachineState) uint32

	PutPreviousBlockHashIntoA(m *MachineState)
	PutTransactionAfterTimestampIntoA(timestamp uint64, m *MachineState)

	TypeFromTxInA(m *MachineState) int64
	AmountFromTxInA(m *MachineState) int64
	TimestampFromTxInA(m *MachineState) int64

	// GenerateRandomUsingTxInA may choose to defer: returning ok=false
	// tells the caller to set is_sleeping and rewind PC so the same
	// instruction re-executes once more entropy is available.
	GenerateRandomUsingTxInA(m *MachineState) (value int64, ok bool)

	PutMessageFromTxInAIntoB(m *MachineState)
	PutAddressFromTxInAIntoB(m *MachineState)
	PutCreatorAddressIntoB(m *MachineState)

	PayAmountToB(amount uint64, m *MachineState)
	PayAllToB(m *MachineState)
	PayPreviousToB(m *MachineState)
	MessageAToB(m *MachineState)

	AddMinutesToTimestamp(timestamp uint64, minutes uint64, m *MachineState) uint64

	FeePerStep() uint64
	MaxStepsPerRound() uint32
	OpcodeSteps(op OpCode) uint32

	OnFatalError(m *MachineState, err error)
	OnFinished(remainingBalance uint64, m *MachineState)

	// PlatformSpecificPostCheckExecute handles function codes in the
	// 0x0500-0x06FF passthrough range. params holds whatever data-cell
	// values the calling EXT_FUN variant supplied; the returned value is
	// written back only if the caller declared a return slot.
	PlatformSpecificPostCheckExecute(rawFunctionCode uint16, params []uint64, m *MachineState) (value uint64, err error)
}
