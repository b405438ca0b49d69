package atvm

/*
	Function codes are the second dispatch table, reached through the
	EXT_FUN family of opcodes. Where an opcode selects behavior by its own
	byte value, a function code selects behavior by a 2-byte id carried as
	an inline operand; the EXT_FUN variant used (EXT_FUN, EXT_FUN_DAT, ...)
	supplies 0-3 data addresses as parameters and says whether the caller
	expects a return value written back to one of them.

	Every function code declares, up front, how many data-address
	parameters it takes and whether it produces a return value. Dispatch
	verifies the calling opcode supplies exactly that shape before running
	the function; a mismatch is ErrIllegalOperation, the same as an
	unknown code.
*/

// FunctionCode identifies one entry in the extended-function table.
type FunctionCode uint16

const FnEcho FunctionCode = 0x0001

const (
	FnGetA1 FunctionCode = 0x0100 + iota
	FnGetA2
	FnGetA3
	FnGetA4
	FnGetB1
	FnGetB2
	FnGetB3
	FnGetB4
	FnGetAInd
	FnGetBInd
	FnGetADat
	FnGetBDat
)

const (
	FnSetA1 FunctionCode = 0x0110 + iota
	FnSetA2
	FnSetA3
	FnSetA4
	FnSetB1
	FnSetB2
	FnSetB3
	FnSetB4
	FnSetAInd
	FnSetBInd
	FnSetADat
	FnSetBDat
)

const (
	FnClearA FunctionCode = 0x0120 + iota
	FnClearB
	FnCopyAFromB
	FnCopyBFromA
	FnSwapAAndB
	FnOrAWithB
	FnAndAWithB
	FnXorAWithB
	FnCheckAIsZero
	FnCheckBIsZero
	FnCheckAEqualsB
	FnUnsignedCompareAWithB
	FnSignedCompareAWithB
)

const (
	FnMD5          FunctionCode = 0x0200
	FnSHA256       FunctionCode = 0x0201
	FnRMD160       FunctionCode = 0x0202
	FnHASH160      FunctionCode = 0x0203
	FnMD5Verify    FunctionCode = 0x0204
	FnSHA256Verify FunctionCode = 0x0205
	FnRMD160Verify FunctionCode = 0x0206
	FnHASH160Verify FunctionCode = 0x0207
)

const (
	FnGetCurrentBlockTimestamp  FunctionCode = 0x0300
	FnGetPreviousBlockTimestamp FunctionCode = 0x0301
	FnGetCreationTimestamp      FunctionCode = 0x0302
	FnPutPreviousBlockHashInA   FunctionCode = 0x0303
	FnPutTxAfterTimestampInA    FunctionCode = 0x0304
	FnGetTypeForTxInA           FunctionCode = 0x0305
	FnGetAmountForTxInA         FunctionCode = 0x0306
	FnGetTimestampForTxInA      FunctionCode = 0x0307
	FnGenerateRandomUsingTxInA  FunctionCode = 0x0308
	FnPutMessageFromTxInAInB    FunctionCode = 0x0309
	FnPutAddressFromTxInAInB    FunctionCode = 0x030A
	FnPutCreatorIntoB           FunctionCode = 0x030B
)

const (
	FnGetCurrentBalance         FunctionCode = 0x0400
	FnGetPreviousBalance        FunctionCode = 0x0401
	FnPayToAddressInB           FunctionCode = 0x0402
	FnPayAllToAddressInB        FunctionCode = 0x0403
	FnPayPreviousToAddressInB   FunctionCode = 0x0404
	FnMessageAToB               FunctionCode = 0x0405
	FnAddMinutesToTimestamp     FunctionCode = 0x0406
)

// platformPassthroughStart and platformPassthroughEnd bound the range of
// function codes forwarded verbatim to the host's platform-specific
// handler, rather than resolved against fnTable.
const (
	platformPassthroughStart FunctionCode = 0x0500
	platformPassthroughEnd   FunctionCode = 0x06FF
)

func isPlatformPassthrough(fc FunctionCode) bool {
	return fc >= platformPassthroughStart && fc <= platformPassthroughEnd
}

// fnDescriptor is the fixed metadata for one function code: its assembly
// mnemonic, how many data-address parameters it expects, and whether it
// writes a return value back through the caller's declared return slot.
type fnDescriptor struct {
	mnemonic     string
	paramCount   int
	returnsValue bool
}

var fnTable map[FunctionCode]fnDescriptor

func init() {
	fnTable = map[FunctionCode]fnDescriptor{
		FnEcho: {"ECHO", 1, false},

		FnGetA1: {"GET_A1", 0, true},
		FnGetA2: {"GET_A2", 0, true},
		FnGetA3: {"GET_A3", 0, true},
		FnGetA4: {"GET_A4", 0, true},
		FnGetB1: {"GET_B1", 0, true},
		FnGetB2: {"GET_B2", 0, true},
		FnGetB3: {"GET_B3", 0, true},
		FnGetB4: {"GET_B4", 0, true},
		FnGetAInd: {"GET_A_IND", 1, false},
		FnGetBInd: {"GET_B_IND", 1, false},
		FnGetADat: {"GET_A_DAT", 1, false},
		FnGetBDat: {"GET_B_DAT", 1, false},

		FnSetA1: {"SET_A1", 1, false},
		FnSetA2: {"SET_A2", 1, false},
		FnSetA3: {"SET_A3", 1, false},
		FnSetA4: {"SET_A4", 1, false},
		FnSetB1: {"SET_B1", 1, false},
		FnSetB2: {"SET_B2", 1, false},
		FnSetB3: {"SET_B3", 1, false},
		FnSetB4: {"SET_B4", 1, false},
		FnSetAInd: {"SET_A_IND", 1, false},
		FnSetBInd: {"SET_B_IND", 1, false},
		FnSetADat: {"SET_A_DAT", 1, false},
		FnSetBDat: {"SET_B_DAT", 1, false},

		FnClearA:     {"CLEAR_A", 0, false},
		FnClearB:     {"CLEAR_B", 0, false},
		FnCopyAFromB: {"COPY_A_FROM_B", 0, false},
		FnCopyBFromA: {"COPY_B_FROM_A", 0, false},
		FnSwapAAndB:  {"SWAP_A_AND_B", 0, false},
		FnOrAWithB:   {"OR_A_WITH_B", 0, false},
		FnAndAWithB:  {"AND_A_WITH_B", 0, false},
		FnXorAWithB:  {"XOR_A_WITH_B", 0, false},
		FnCheckAIsZero:          {"CHECK_A_IS_ZERO", 0, true},
		FnCheckBIsZero:          {"CHECK_B_IS_ZERO", 0, true},
		FnCheckAEqualsB:         {"CHECK_A_EQUALS_B", 0, true},
		FnUnsignedCompareAWithB: {"UNSIGNED_COMPARE_A_WITH_B", 0, true},
		FnSignedCompareAWithB:   {"SIGNED_COMPARE_A_WITH_B", 0, true},

		FnMD5:           {"MD5", 2, false},
		FnSHA256:        {"SHA256", 2, false},
		FnRMD160:        {"RMD160", 2, false},
		FnHASH160:       {"HASH160", 2, false},
		FnMD5Verify:     {"MD5_VERIFY", 2, true},
		FnSHA256Verify:  {"SHA256_VERIFY", 2, true},
		FnRMD160Verify:  {"RMD160_VERIFY", 2, true},
		FnHASH160Verify: {"HASH160_VERIFY", 2, true},

		FnGetCurrentBlockTimestamp:  {"GET_CURRENT_BLOCK_TIMESTAMP", 0, true},
		FnGetPreviousBlockTimestamp: {"GET_PREVIOUS_BLOCK_TIMESTAMP", 0, true},
		FnGetCreationTimestamp:      {"GET_CREATION_TIMESTAMP", 0, true},
		FnPutPreviousBlockHashInA:   {"PUT_PREVIOUS_BLOCK_HASH_IN_A", 0, false},
		FnPutTxAfterTimestampInA:    {"PUT_TX_AFTER_TIMESTAMP_IN_A", 1, false},
		FnGetTypeForTxInA:           {"GET_TYPE_FOR_TX_IN_A", 0, true},
		FnGetAmountForTxInA:         {"GET_AMOUNT_FOR_TX_IN_A", 0, true},
		FnGetTimestampForTxInA:      {"GET_TIMESTAMP_FOR_TX_IN_A", 0, true},
		FnGenerateRandomUsingTxInA:  {"GENERATE_RANDOM_USING_TX_IN_A", 0, true},
		FnPutMessageFromTxInAInB:    {"PUT_MESSAGE_FROM_TX_IN_A_IN_B", 0, false},
		FnPutAddressFromTxInAInB:    {"PUT_ADDRESS_FROM_TX_IN_A_IN_B", 0, false},
		FnPutCreatorIntoB:           {"PUT_CREATOR_INTO_B", 0, false},

		FnGetCurrentBalance:       {"GET_CURRENT_BALANCE", 0, true},
		FnGetPreviousBalance:      {"GET_PREVIOUS_BALANCE", 0, true},
		FnPayToAddressInB:         {"PAY_TO_ADDRESS_IN_B", 1, false},
		FnPayAllToAddressInB:      {"PAY_ALL_TO_ADDRESS_IN_B", 0, false},
		FnPayPreviousToAddressInB: {"PAY_PREVIOUS_TO_ADDRESS_IN_B", 0, false},
		FnMessageAToB:             {"MESSAGE_A_TO_B", 0, false},
		FnAddMinutesToTimestamp:   {"ADD_MINUTES_TO_TIMESTAMP", 2, true},
	}
}

func (f FunctionCode) descriptor() (fnDescriptor, bool) {
	if isPlatformPassthrough(f) {
		return fnDescriptor{mnemonic: "PLATFORM"}, true
	}
	d, ok := fnTable[f]
	return d, ok
}

func (f FunctionCode) String() string {
	if isPlatformPassthrough(f) {
		return "PLATFORM"
	}
	if d, ok := fnTable[f]; ok {
		return d.mnemonic
	}
	return "?unknown?"
}
