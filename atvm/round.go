package atvm

import "errors"

// RoundInputs carries the host-supplied values that gate and meter a
// single round. FeePerStep, MaxStepsPerRound and OpcodeSteps could be
// pulled from HostAPI directly, but threading them in explicitly keeps
// Execute's contract visible at the call site and makes it trivial to
// replay a round with recorded inputs in a test.
type RoundInputs struct {
	CurrentBlockHeight uint32
	CurrentBalance     uint64
	FeePerStep         uint64
	MaxStepsPerRound   uint32
	OpcodeSteps        func(OpCode) uint32
}

// Execute runs m through exactly one round: the pre-round gates, the
// metered fetch/charge/execute loop, and the post-round disposition. It
// mutates m in place and always returns nil: every error raised while
// executing, including one returned by the host's platform-specific
// handler, is trapped internally per on_error_address.
func Execute(m *MachineState, api HostAPI, log Logger, in RoundInputs) error {
	m.CurrentBlockHeight = in.CurrentBlockHeight
	m.CurrentBalance = in.CurrentBalance

	if m.IsFinished {
		return nil
	}
	if m.IsFrozen && m.CurrentBalance <= m.FrozenBalance {
		return nil
	}
	if m.IsSleeping && m.HasSleepUntilHeight && m.CurrentBlockHeight < m.SleepUntilHeight {
		return nil
	}

	wasSleeping := m.IsSleeping
	m.Steps = 0
	m.IsSleeping = false
	m.IsStopped = false
	m.IsFrozen = false
	m.HasSleepUntilHeight = false
	m.SleepUntilHeight = 0
	m.HasFrozenBalance = false
	m.FrozenBalance = 0
	if wasSleeping {
		m.IsFirstOpcodeAfterSleep = true
	}

	order := headerByteOrder(m.Version)

	for !m.IsSleeping && !m.IsStopped && !m.IsFrozen && !m.IsFinished {
		ins, err := decodeAt(m.Code, m.PC, order)
		if err != nil {
			if !trap(m, err) {
				api.OnFatalError(m, err)
				break
			}
			continue
		}

		cost := in.OpcodeSteps(ins.op)
		if m.Steps+cost > in.MaxStepsPerRound {
			m.IsSleeping = true
			break
		}

		fee := cost * in.FeePerStep
		if m.CurrentBalance < fee {
			m.IsFrozen = true
			m.HasFrozenBalance = true
			m.FrozenBalance = m.CurrentBalance
			break
		}

		m.CurrentBalance -= fee
		m.Steps += cost

		m.PC = ins.nextPC
		execErr := execOpcode(m, ins, api, log)
		if execErr != nil {
			if !trap(m, execErr) {
				api.OnFatalError(m, execErr)
				break
			}
		}

		m.IsFirstOpcodeAfterSleep = false
	}

	if m.IsStopped {
		m.PC = m.OnStopAddress
	}
	if m.IsFinished {
		api.OnFinished(m.CurrentBalance, m)
		m.CurrentBalance = 0
	}
	m.PreviousBalance = m.CurrentBalance

	return nil
}

// trap resolves an in-loop execution error: if the machine has an error
// handler installed it redirects PC there and reports recovered (the
// step count and fee already charged for the faulting opcode stand), so
// the caller continues the loop; otherwise it marks the machine finished
// with a fatal error and reports not recovered, so the caller breaks.
func trap(m *MachineState, err error) (recovered bool) {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		return false
	}
	if m.HasOnError {
		m.PC = m.OnErrorAddress
		return true
	}
	m.IsFinished = true
	m.HadFatalError = true
	return false
}
