package atvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreationBytesRoundTrip(t *testing.T) {
	code := newAsm(Version2).
		op(SET_VAL).dataAddr(0).value(1).
		op(FIN).
		bytes()
	data := make([]byte, 40)
	data[0] = 0xAB

	raw, err := ToCreationBytes(Version2, code, data, 3, 5, 12345)
	require.NoError(t, err)

	hdr, body, err := parseCreationHeader(raw)
	require.NoError(t, err)
	require.Equal(t, Version2, hdr.version)
	require.Equal(t, uint32(3), hdr.numCallStackPages)
	require.Equal(t, uint32(5), hdr.numUserStackPages)
	require.Equal(t, uint64(12345), hdr.minActivationAmount)

	sizes := pageSizesForVersion(Version2)
	codeLen := hdr.numCodePages * sizes.code
	require.GreaterOrEqual(t, uint32(len(body)), codeLen)
	require.Equal(t, code, body[:len(code)])
}

func TestCreationHeaderVersion1OmitsMinActivation(t *testing.T) {
	code := newAsm(Version1).op(FIN).bytes()
	raw, err := ToCreationBytes(Version1, code, make([]byte, 16), 1, 1, 0)
	require.NoError(t, err)

	hdr, _, err := parseCreationHeader(raw)
	require.NoError(t, err)
	require.Equal(t, Version1, hdr.version)
	require.Equal(t, uint64(0), hdr.minActivationAmount)
}

func TestRejectNonConformingVersion1LengthFlag(t *testing.T) {
	orig := RejectNonConformingVersion1Length
	defer func() { RejectNonConformingVersion1Length = orig }()

	sizes := pageSizesForVersion(Version1)
	// Short enough to fail the corrected numDataPages*DATA_PAGE_SIZE
	// check but long enough that the flag being off parses it anyway.
	numDataPages := uint32(2)
	shortBody := make([]byte, numDataPages+sizes.data)
	raw := buildVersion1Header(numDataPages)
	raw = append(raw, shortBody...)

	RejectNonConformingVersion1Length = false
	_, _, err := parseCreationHeader(raw)
	require.NoError(t, err)

	RejectNonConformingVersion1Length = true
	_, _, err = parseCreationHeader(raw)
	require.Error(t, err)
}

func buildVersion1Header(numDataPages uint32) []byte {
	order := headerByteOrder(Version1)
	hdr := make([]byte, 2+2+4+4+4+4)
	hdr[0] = byte(Version1)
	hdr[1] = byte(Version1 >> 8)
	order.PutUint16(hdr[2:4], 0)
	order.PutUint32(hdr[4:8], 1) // numCodePages
	order.PutUint32(hdr[8:12], numDataPages)
	order.PutUint32(hdr[12:16], 1) // numCallStackPages
	order.PutUint32(hdr[16:20], 1) // numUserStackPages
	return hdr
}
