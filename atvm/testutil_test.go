package atvm

// noHost is a minimal HostAPI used by tests that don't exercise the
// function codes it would otherwise have to implement for real. Every
// method either returns a zero value or, for the two callbacks, records
// that it fired.
type noHost struct {
	fatalErrors []error
	finishedBal []uint64
}

func (h *noHost) CurrentBlockHeight() uint32                      { return 0 }
func (h *noHost) CurrentBalance(m *MachineState) uint64           { return m.CurrentBalance }
func (h *noHost) PreviousBlockHeight() uint32                     { return 0 }
func (h *noHost) AtCreationBlockHeight(m *MachineState) uint32    { return 0 }
func (h *noHost) PutPreviousBlockHashIntoA(m *MachineState)       {}
func (h *noHost) PutTransactionAfterTimestampIntoA(uint64, *MachineState) {}
func (h *noHost) TypeFromTxInA(*MachineState) int64               { return -1 }
func (h *noHost) AmountFromTxInA(*MachineState) int64             { return -1 }
func (h *noHost) TimestampFromTxInA(*MachineState) int64          { return -1 }
func (h *noHost) GenerateRandomUsingTxInA(*MachineState) (int64, bool) { return 0, true }
func (h *noHost) PutMessageFromTxInAIntoB(*MachineState)          {}
func (h *noHost) PutAddressFromTxInAIntoB(*MachineState)          {}
func (h *noHost) PutCreatorAddressIntoB(*MachineState)            {}
func (h *noHost) PayAmountToB(amount uint64, m *MachineState) {
	if amount > m.CurrentBalance {
		amount = m.CurrentBalance
	}
	m.CurrentBalance -= amount
}
func (h *noHost) PayAllToB(m *MachineState)      { m.CurrentBalance = 0 }
func (h *noHost) PayPreviousToB(m *MachineState) { m.CurrentBalance = 0 }
func (h *noHost) MessageAToB(*MachineState)      {}
func (h *noHost) AddMinutesToTimestamp(ts, minutes uint64, m *MachineState) uint64 {
	return ts + minutes
}
func (h *noHost) FeePerStep() uint64            { return 0 }
func (h *noHost) MaxStepsPerRound() uint32      { return 10000 }
func (h *noHost) OpcodeSteps(OpCode) uint32     { return 1 }
func (h *noHost) OnFatalError(m *MachineState, err error) {
	h.fatalErrors = append(h.fatalErrors, err)
}
func (h *noHost) OnFinished(remaining uint64, m *MachineState) {
	h.finishedBal = append(h.finishedBal, remaining)
}
func (h *noHost) PlatformSpecificPostCheckExecute(uint16, []uint64, *MachineState) (uint64, error) {
	return 0, nil
}

func stdInputs(h *noHost) RoundInputs {
	return RoundInputs{
		CurrentBlockHeight: 0,
		CurrentBalance:     1_000_000,
		FeePerStep:         0,
		MaxStepsPerRound:   10000,
		OpcodeSteps:        h.OpcodeSteps,
	}
}

func newTestMachine(code []byte, dataCells int) *MachineState {
	return &MachineState{
		Version:      Version2,
		Code:         code,
		Data:         make([]byte, dataCells*8),
		CallStack:    make([]byte, 64),
		CallStackPos: 64,
		UserStack:    make([]byte, 64),
		UserStackPos: 64,
	}
}
