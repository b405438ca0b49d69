package atvm

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func runOneRound(t *testing.T, m *MachineState, h *noHost) {
	t.Helper()
	err := Execute(m, h, nil, stdInputs(h))
	require.NoError(t, err, "spew dump:\n%s", spew.Sdump(m))
}

// Scenario 1: SET_VAL @2 = 2222; FIN ⇒ finished, no fatal error, data[2] == 2222.
func TestScenarioSetValThenFinish(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(2).value(2222).
		op(FIN).
		bytes()
	m := newTestMachine(code, 4)
	h := &noHost{}

	runOneRound(t, m, h)

	require.True(t, m.IsFinished)
	require.False(t, m.HadFatalError)
	v, ok := m.dataCell(2)
	require.True(t, ok)
	require.Equal(t, uint64(2222), v)
}

// Scenario 2: SET_VAL @2 = max uint64; INC_DAT @2; FIN ⇒ data[2] wraps to 0.
func TestScenarioIncWrapsAround(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(2).value(0xFFFFFFFFFFFFFFFF).
		op(INC_DAT).dataAddr(2).
		op(FIN).
		bytes()
	m := newTestMachine(code, 4)
	h := &noHost{}

	runOneRound(t, m, h)

	require.False(t, m.HadFatalError)
	v, ok := m.dataCell(2)
	require.True(t, ok)
	require.Equal(t, uint64(0), v)
}

// Scenario 3: SET_VAL @3 = 3333; DIV_DAT @3,@0 with data[0]==0 and no error
// handler ⇒ finished with a fatal error.
func TestScenarioDivByZeroFatal(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(3).value(3333).
		op(DIV_DAT).dataAddr(3).dataAddr(0).
		op(FIN).
		bytes()
	m := newTestMachine(code, 4)
	h := &noHost{}

	runOneRound(t, m, h)

	require.True(t, m.IsFinished)
	require.True(t, m.HadFatalError)
	require.Len(t, h.fatalErrors, 1)
}

// Scenario 4: same as 3 but with an error handler installed that writes
// data[1] = 1 then finishes ⇒ finished, no fatal error, data[1] == 1.
func TestScenarioDivByZeroRecovered(t *testing.T) {
	full := newAsm(Version2).
		op(SET_VAL).dataAddr(3).value(3333)
	errAt := len(full.bytes()) + 1 // offset of the code-addr operand once ERR is appended
	full.op(ERR).codeAddr(0)
	full.op(DIV_DAT).dataAddr(3).dataAddr(0)
	full.op(FIN)
	handlerAt := uint32(len(full.bytes()))
	full.op(SET_VAL).dataAddr(1).value(1)
	full.op(FIN)

	finalCode := full.bytes()
	headerByteOrder(Version2).PutUint32(finalCode[errAt:errAt+4], handlerAt)

	m := newTestMachine(finalCode, 4)
	h := &noHost{}

	runOneRound(t, m, h)

	require.True(t, m.IsFinished)
	require.False(t, m.HadFatalError)
	v, ok := m.dataCell(1)
	require.True(t, ok)
	require.Equal(t, uint64(1), v)
}

// Scenario 5: SET_VAL @0=3; SET_VAL @3=3333; SET_IND @6,@0; FIN ⇒ data[6] == 3333.
func TestScenarioSetIndirect(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(0).value(3).
		op(SET_VAL).dataAddr(3).value(3333).
		op(SET_IND).dataAddr(6).dataAddr(0).
		op(FIN).
		bytes()
	m := newTestMachine(code, 8)
	h := &noHost{}

	runOneRound(t, m, h)

	require.False(t, m.HadFatalError)
	v, ok := m.dataCell(6)
	require.True(t, ok)
	require.Equal(t, uint64(3333), v)
}

// Scenario 6: SET_VAL @2=2222; SET_VAL @3=3; SHR_DAT @2,@3; FIN ⇒ data[2] == 277.
func TestScenarioShiftRight(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(2).value(2222).
		op(SET_VAL).dataAddr(3).value(3).
		op(SHR_DAT).dataAddr(2).dataAddr(3).
		op(FIN).
		bytes()
	m := newTestMachine(code, 4)
	h := &noHost{}

	runOneRound(t, m, h)

	v, ok := m.dataCell(2)
	require.True(t, ok)
	require.Equal(t, uint64(277), v)
}

// Scenario 8: serialize a machine mid-execution after SLP fires with
// sleep_until_height = 10 (the first round runs at block height 0),
// restore it, advance the block height to 10, and
// confirm it resumes at the post-SLP PC with identical registers.
func TestScenarioSleepSerializeResume(t *testing.T) {
	code := newAsm(Version2).
		op(SLP).dataAddr(0). // sleep height comes from data[0], set below
		op(SET_VAL).dataAddr(1).value(42).
		op(FIN).
		bytes()

	m := newTestMachine(code, 8)
	m.setDataCell(0, 10) // wake at block height 10
	h := &noHost{}

	runOneRound(t, m, h)
	require.True(t, m.IsSleeping)
	require.True(t, m.HasSleepUntilHeight)
	require.Equal(t, uint32(10), m.SleepUntilHeight)
	postSleepPC := m.PC

	raw := m.Serialize()
	restored, err := Restore(m.Version, m.Code, uint32(len(m.Data)), uint32(len(m.CallStack)), uint32(len(m.UserStack)), raw)
	require.NoError(t, err)
	require.Equal(t, postSleepPC, restored.PC)
	require.Equal(t, m.A, restored.A)
	require.Equal(t, m.B, restored.B)

	in := stdInputs(h)
	in.CurrentBlockHeight = 10
	restored.CurrentBalance = in.CurrentBalance
	err = Execute(restored, h, nil, in)
	require.NoError(t, err)

	require.True(t, restored.IsFinished)
	v, ok := restored.dataCell(1)
	require.True(t, ok)
	require.Equal(t, uint64(42), v)
}

func TestInvalidAddressBeforeMutation(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(9999).value(1).
		op(FIN).
		bytes()
	m := newTestMachine(code, 4)
	h := &noHost{}

	runOneRound(t, m, h)

	require.True(t, m.HadFatalError)
}

func TestStepsNeverExceedMax(t *testing.T) {
	code := newAsm(Version2)
	for i := 0; i < 50; i++ {
		code.op(NOP)
	}
	m := newTestMachine(code.bytes(), 4)
	h := &noHost{}
	in := stdInputs(h)
	in.MaxStepsPerRound = 10

	err := Execute(m, h, nil, in)
	require.NoError(t, err)
	require.LessOrEqual(t, m.Steps, in.MaxStepsPerRound)
	require.True(t, m.IsSleeping)
}
