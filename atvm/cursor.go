package atvm

import "encoding/binary"

// cursor is a bounds-checked reader/writer over one segment of machine
// memory (code, data, or a stack). It never panics on out-of-range
// access; every method reports a bool/error instead, so callers can turn
// that directly into an ExecutionError with the right PC attached.
type cursor struct {
	buf   []byte
	pos   uint32
	order binary.ByteOrder
}

func newCursor(buf []byte, order binary.ByteOrder) *cursor {
	return &cursor{buf: buf, order: order}
}

func (c *cursor) seek(pos uint32) {
	c.pos = pos
}

func (c *cursor) tell() uint32 {
	return c.pos
}

func (c *cursor) remaining() uint32 {
	if c.pos >= uint32(len(c.buf)) {
		return 0
	}
	return uint32(len(c.buf)) - c.pos
}

// readByte consumes and returns one byte, advancing pos.
func (c *cursor) readByte() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

// readUint32 reads a 4-byte unsigned integer in the cursor's byte order.
func (c *cursor) readUint32() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := c.order.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, true
}

// readInt32 reads a 4-byte signed integer in the cursor's byte order.
func (c *cursor) readInt32() (int32, bool) {
	v, ok := c.readUint32()
	return int32(v), ok
}

// readUint64 reads an 8-byte unsigned integer in the cursor's byte order.
func (c *cursor) readUint64() (uint64, bool) {
	if c.remaining() < 8 {
		return 0, false
	}
	v := c.order.Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return v, true
}

// readInt64 reads an 8-byte signed integer in the cursor's byte order.
func (c *cursor) readInt64() (int64, bool) {
	v, ok := c.readUint64()
	return int64(v), ok
}

// readUint16 reads a 2-byte unsigned integer in the cursor's byte order.
func (c *cursor) readUint16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := c.order.Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, true
}

// readSignedByte reads one byte and reinterprets it as signed, used for
// branch offsets.
func (c *cursor) readSignedByte() (int8, bool) {
	b, ok := c.readByte()
	return int8(b), ok
}

func (c *cursor) writeByte(b byte) bool {
	if c.remaining() < 1 {
		return false
	}
	c.buf[c.pos] = b
	c.pos++
	return true
}

func (c *cursor) writeUint32(v uint32) bool {
	if c.remaining() < 4 {
		return false
	}
	c.order.PutUint32(c.buf[c.pos:c.pos+4], v)
	c.pos += 4
	return true
}

func (c *cursor) writeInt32(v int32) bool {
	return c.writeUint32(uint32(v))
}

func (c *cursor) writeUint64(v uint64) bool {
	if c.remaining() < 8 {
		return false
	}
	c.order.PutUint64(c.buf[c.pos:c.pos+8], v)
	c.pos += 8
	return true
}

func (c *cursor) writeInt64(v int64) bool {
	return c.writeUint64(uint64(v))
}

// readDataCell reads one 8-byte data cell at byte offset off. Data cells
// are always little-endian, independent of the cursor's own byte order
// (which governs headers and other scalars, not cell contents).
func readDataCell(data []byte, off uint32) uint64 {
	return binary.LittleEndian.Uint64(data[off : off+8])
}

func writeDataCell(data []byte, off uint32, v uint64) {
	binary.LittleEndian.PutUint64(data[off:off+8], v)
}
