package atvm

import "fmt"

// creationHeader is the fixed, version-dependent header that precedes an
// AT's code and initial data in its creation bytes.
type creationHeader struct {
	version             Version
	reserved            uint16
	numCodePages        uint32
	numDataPages        uint32
	numCallStackPages   uint32
	numUserStackPages   uint32
	minActivationAmount uint64
}

// RejectNonConformingVersion1Length gates whether parseCreationHeader
// enforces the corrected (multiplicative) version-1 length check instead
// of reproducing the original additive one. The original computed the
// minimum body length as numDataPages + DATA_PAGE_SIZE; the correct
// figure is their product. Off by default so version-1 creation bytes
// that only satisfy the historical check still parse; set this to
// require the corrected check for newly produced version-1 bytes.
var RejectNonConformingVersion1Length = false

// parseCreationHeader reads the header from the front of raw creation
// bytes and returns it along with the remainder (code || initial data).
func parseCreationHeader(raw []byte) (creationHeader, []byte, error) {
	var hdr creationHeader

	// The header's own version field is always the first two bytes,
	// little-endian, regardless of what version it names: a reader has
	// to learn the version before it can know the header's byte order.
	if len(raw) < 2 {
		return hdr, nil, fmt.Errorf("creation bytes shorter than version field: %w", ErrCodeSegment)
	}
	hdr.version = Version(uint16(raw[0]) | uint16(raw[1])<<8)

	order := headerByteOrder(hdr.version)
	const fixedHeaderLen = 2 + 2 + 4 + 4 + 4 + 4 // version, reserved, 4 page counts
	if len(raw) < fixedHeaderLen {
		return hdr, nil, fmt.Errorf("creation bytes shorter than fixed header: %w", ErrCodeSegment)
	}

	hdr.reserved = order.Uint16(raw[2:4])
	hdr.numCodePages = order.Uint32(raw[4:8])
	hdr.numDataPages = order.Uint32(raw[8:12])
	hdr.numCallStackPages = order.Uint32(raw[12:16])
	hdr.numUserStackPages = order.Uint32(raw[16:20])

	body := raw[fixedHeaderLen:]
	if hdr.version != Version1 {
		if len(body) < 8 {
			return hdr, nil, fmt.Errorf("creation bytes shorter than min_activation_amount field: %w", ErrCodeSegment)
		}
		hdr.minActivationAmount = order.Uint64(body[:8])
		body = body[8:]
	}

	sizes := pageSizesForVersion(hdr.version)
	if hdr.version == Version1 {
		if RejectNonConformingVersion1Length {
			minLen := hdr.numDataPages * sizes.data
			if uint32(len(body)) < minLen {
				return hdr, nil, fmt.Errorf("version 1 creation bytes shorter than numDataPages*DATA_PAGE_SIZE: %w", ErrCodeSegment)
			}
		} else {
			minLen := hdr.numDataPages + sizes.data
			if uint32(len(body)) < minLen {
				return hdr, nil, fmt.Errorf("version 1 creation bytes shorter than numDataPages+DATA_PAGE_SIZE: %w", ErrCodeSegment)
			}
		}
	}

	return hdr, body, nil
}

// ToCreationBytes is the producer-side inverse of parseCreationHeader: it
// assembles header || code || initialData into the wire format a host
// deploys as a new AT. The header's code and data page counts are derived
// from len(code) and len(initialData), rounded up to whole pages for the
// chosen version, and the padding up to those page boundaries is written
// as zero bytes.
func ToCreationBytes(version Version, code, data []byte, numCallStackPages, numUserStackPages uint32, minActivationAmount uint64) ([]byte, error) {
	sizes := pageSizesForVersion(version)

	numCodePages := ceilDiv(uint32(len(code)), sizes.code)
	numDataPages := ceilDiv(uint32(len(data)), sizes.data)

	order := headerByteOrder(version)
	fixedHeaderLen := 2 + 2 + 4 + 4 + 4 + 4
	extra := 0
	if version != Version1 {
		extra = 8
	}

	codeLen := numCodePages * sizes.code
	dataLen := numDataPages * sizes.data

	out := make([]byte, fixedHeaderLen+extra+int(codeLen)+int(dataLen))

	// The version field is written little-endian up front, matching the
	// read side's bootstrap: a reader doesn't know the byte order for
	// the rest of the header until it has this much.
	out[0] = byte(version)
	out[1] = byte(version >> 8)
	order.PutUint16(out[2:4], 0)
	order.PutUint32(out[4:8], numCodePages)
	order.PutUint32(out[8:12], numDataPages)
	order.PutUint32(out[12:16], numCallStackPages)
	order.PutUint32(out[16:20], numUserStackPages)

	off := fixedHeaderLen
	if version != Version1 {
		order.PutUint64(out[off:off+8], minActivationAmount)
		off += 8
	}

	copy(out[off:], code)
	copy(out[off+int(codeLen):], data)

	return out, nil
}

func ceilDiv(n, d uint32) uint32 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}
