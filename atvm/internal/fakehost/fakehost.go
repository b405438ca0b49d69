// Package fakehost is an in-memory stand-in for a real chain's host API,
// used by tests and by atvmctl run to drive a machine through rounds
// without wiring up an actual blockchain integration.
package fakehost

import (
	"fmt"
	"sync"

	"atvm"
)

// Tx is one simulated transaction, addressable by the timestamp encoding
// described in the core's host interface (block height in the high 32
// bits, transaction index within the block in the low 32 bits).
type Tx struct {
	Timestamp uint64
	Type      int64
	Amount    int64
	Message   atvm.Registers
	Address   atvm.Registers
}

// Host is a single in-memory chain state: one current block height, a
// fixed transaction log, and a balance ledger keyed by address. It is
// safe for concurrent use, matching the constraint that independent ATs
// may run concurrently against shared chain state (read-only during a
// round).
type Host struct {
	mu sync.Mutex

	blockHeight         uint32
	previousBlockHeight uint32
	creationBlockHeight uint32
	previousBlockHash   atvm.Registers
	creatorAddress      atvm.Registers

	txs []Tx

	balances map[atvm.Registers]uint64

	feePerStep       uint64
	maxStepsPerRound uint32

	// RandomNumbers feeds GenerateRandomUsingTxInA in order; once
	// exhausted, the call defers (returns ok=false) so callers can
	// exercise the sleep-and-rewind path deliberately.
	RandomNumbers []int64
	randCursor    int

	Log Logger
}

// Logger is an alias for atvm.Logger, the type of Host.Log. fakehost
// already imports atvm for Registers/OpCode, so this is purely a
// readability alias.
type Logger = atvm.Logger

// New returns a Host at the given starting block height with an empty
// transaction log and balance ledger.
func New(blockHeight uint32, feePerStep uint64, maxStepsPerRound uint32) *Host {
	return &Host{
		blockHeight:      blockHeight,
		feePerStep:       feePerStep,
		maxStepsPerRound: maxStepsPerRound,
		balances:         make(map[atvm.Registers]uint64),
	}
}

// AdvanceBlock moves the simulated chain forward by one block.
func (h *Host) AdvanceBlock() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previousBlockHeight = h.blockHeight
	h.blockHeight++
}

// SetBlockHeight jumps directly to a height, used by tests that need to
// simulate many blocks passing (e.g. waking a sleeping machine).
func (h *Host) SetBlockHeight(height uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previousBlockHeight = h.blockHeight
	h.blockHeight = height
}

// PushTx appends a transaction to the simulated log.
func (h *Host) PushTx(tx Tx) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txs = append(h.txs, tx)
}

// CreditAddress adds amount to the ledger balance of addr.
func (h *Host) CreditAddress(addr atvm.Registers, amount uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.balances[addr] += amount
}

// BalanceOf reports the ledger balance of addr.
func (h *Host) BalanceOf(addr atvm.Registers) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.balances[addr]
}

func (h *Host) CurrentBlockHeight() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.blockHeight
}

func (h *Host) PreviousBlockHeight() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.previousBlockHeight
}

func (h *Host) AtCreationBlockHeight(m *atvm.MachineState) uint32 {
	return h.creationBlockHeight
}

func (h *Host) CurrentBalance(m *atvm.MachineState) uint64 {
	return m.CurrentBalance
}

func (h *Host) PutPreviousBlockHashIntoA(m *atvm.MachineState) {
	m.A = h.previousBlockHash
}

func (h *Host) PutTransactionAfterTimestampIntoA(timestamp uint64, m *atvm.MachineState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, tx := range h.txs {
		if tx.Timestamp > timestamp {
			m.A = atvm.Registers{uint64(i) + 1, 0, 0, 0}
			return
		}
	}
	m.A = atvm.Registers{}
}

func (h *Host) txHandle(m *atvm.MachineState) (Tx, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx := m.A[0]
	if idx == 0 || idx > uint64(len(h.txs)) {
		return Tx{}, false
	}
	return h.txs[idx-1], true
}

func (h *Host) TypeFromTxInA(m *atvm.MachineState) int64 {
	tx, ok := h.txHandle(m)
	if !ok {
		return -1
	}
	return tx.Type
}

func (h *Host) AmountFromTxInA(m *atvm.MachineState) int64 {
	tx, ok := h.txHandle(m)
	if !ok {
		return -1
	}
	return tx.Amount
}

func (h *Host) TimestampFromTxInA(m *atvm.MachineState) int64 {
	tx, ok := h.txHandle(m)
	if !ok {
		return -1
	}
	return int64(tx.Timestamp)
}

func (h *Host) GenerateRandomUsingTxInA(m *atvm.MachineState) (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.randCursor >= len(h.RandomNumbers) {
		return 0, false
	}
	v := h.RandomNumbers[h.randCursor]
	h.randCursor++
	return v, true
}

func (h *Host) PutMessageFromTxInAIntoB(m *atvm.MachineState) {
	tx, ok := h.txHandle(m)
	if !ok {
		m.B = atvm.Registers{}
		return
	}
	m.B = tx.Message
}

func (h *Host) PutAddressFromTxInAIntoB(m *atvm.MachineState) {
	tx, ok := h.txHandle(m)
	if !ok {
		m.B = atvm.Registers{}
		return
	}
	m.B = tx.Address
}

func (h *Host) PutCreatorAddressIntoB(m *atvm.MachineState) {
	m.B = h.creatorAddress
}

func (h *Host) PayAmountToB(amount uint64, m *atvm.MachineState) {
	if amount > m.CurrentBalance {
		amount = m.CurrentBalance
	}
	m.CurrentBalance -= amount
	h.CreditAddress(m.B, amount)
}

func (h *Host) PayAllToB(m *atvm.MachineState) {
	h.CreditAddress(m.B, m.CurrentBalance)
	m.CurrentBalance = 0
}

func (h *Host) PayPreviousToB(m *atvm.MachineState) {
	amount := m.PreviousBalance
	if amount > m.CurrentBalance {
		amount = m.CurrentBalance
	}
	m.CurrentBalance -= amount
	h.CreditAddress(m.B, amount)
}

func (h *Host) MessageAToB(m *atvm.MachineState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txs = append(h.txs, Tx{
		Timestamp: uint64(h.blockHeight) << 32,
		Message:   m.A,
		Address:   m.B,
	})
}

func (h *Host) AddMinutesToTimestamp(timestamp uint64, minutes uint64, m *atvm.MachineState) uint64 {
	const blocksPerMinute = 4 // matches a roughly 15-second block time
	height := timestamp >> 32
	return (height + minutes*blocksPerMinute) << 32
}

func (h *Host) FeePerStep() uint64 {
	return h.feePerStep
}

func (h *Host) MaxStepsPerRound() uint32 {
	return h.maxStepsPerRound
}

func (h *Host) OpcodeSteps(op atvm.OpCode) uint32 {
	return 1
}

func (h *Host) OnFatalError(m *atvm.MachineState, err error) {
	if h.Log != nil {
		h.Log.Log(fmt.Sprintf("fatal error: %v", err))
	}
}

func (h *Host) OnFinished(remainingBalance uint64, m *atvm.MachineState) {
	h.CreditAddress(h.creatorAddress, remainingBalance)
}

func (h *Host) PlatformSpecificPostCheckExecute(rawFunctionCode uint16, params []uint64, m *atvm.MachineState) (uint64, error) {
	return 0, nil
}
