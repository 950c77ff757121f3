package dex

import "errors"

// maxUlebBytes caps an encoding at five bytes: enough for any 32-bit
// value with one spare bit in the final group.
const maxUlebBytes = 5

// Uleb128 decodes an unsigned little-endian base-128 integer from the
// start of b. It returns the value and the number of bytes consumed so
// callers can advance their cursor.
func Uleb128(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(b) && i < maxUlebBytes; i++ {
		c := b[i]
		v |= uint32(c&0x7f) << (7 * uint(i))
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, badFormat(-1, "uleb128 missing terminator within %d bytes", maxUlebBytes)
}

// AppendUleb128 appends the minimal uleb128 encoding of v to dst.
func AppendUleb128(dst []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		dst = append(dst, c)
		if v == 0 {
			return dst
		}
	}
}

// cursor walks a region of the container byte by byte. Implicitly
// sized structures (class data, string data, encoded values) are the
// only users; fixed-stride tables are sliced directly.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) uleb() (uint32, error) {
	v, n, err := Uleb128(c.data[c.off:])
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			return 0, &FormatError{Off: c.off, Msg: fe.Msg}
		}
		return 0, err
	}
	c.off += n
	return v, nil
}

func (c *cursor) byte() (byte, error) {
	if c.off >= len(c.data) {
		return 0, badFormat(c.off, "unexpected end of data")
	}
	b := c.data[c.off]
	c.off++
	return b, nil
}

// uint reads a size-byte little-endian unsigned integer, size <= 8.
func (c *cursor) uint(size int) (uint64, error) {
	if c.off+size > len(c.data) {
		return 0, badFormat(c.off, "unexpected end of data reading %d bytes", size)
	}
	var v uint64
	for i := 0; i < size; i++ {
		v |= uint64(c.data[c.off+i]) << (8 * uint(i))
	}
	c.off += size
	return v, nil
}
