package dex

import (
	"fmt"
	"math"
)

// ValueFormat is the 5-bit type tag of an encoded_value.
type ValueFormat byte

const (
	ValueByte         ValueFormat = 0x00
	ValueShort        ValueFormat = 0x02
	ValueChar         ValueFormat = 0x03
	ValueInt          ValueFormat = 0x04
	ValueLong         ValueFormat = 0x06
	ValueFloat        ValueFormat = 0x10
	ValueDouble       ValueFormat = 0x11
	ValueMethodType   ValueFormat = 0x15
	ValueMethodHandle ValueFormat = 0x16
	ValueString       ValueFormat = 0x17
	ValueType         ValueFormat = 0x18
	ValueField        ValueFormat = 0x19
	ValueMethod       ValueFormat = 0x1a
	ValueEnum         ValueFormat = 0x1b
	ValueArray        ValueFormat = 0x1c
	ValueAnnotation   ValueFormat = 0x1d
	ValueNull         ValueFormat = 0x1e
	ValueBoolean      ValueFormat = 0x1f
)

var valueFormatNames = map[ValueFormat]string{
	ValueByte:         "byte",
	ValueShort:        "short",
	ValueChar:         "char",
	ValueInt:          "int",
	ValueLong:         "long",
	ValueFloat:        "float",
	ValueDouble:       "double",
	ValueMethodType:   "method-type",
	ValueMethodHandle: "method-handle",
	ValueString:       "string",
	ValueType:         "type",
	ValueField:        "field",
	ValueMethod:       "method",
	ValueEnum:         "enum",
	ValueArray:        "array",
	ValueAnnotation:   "annotation",
	ValueNull:         "null",
	ValueBoolean:      "boolean",
}

func (v ValueFormat) String() string {
	if s, ok := valueFormatNames[v]; ok {
		return s
	}
	return fmt.Sprintf("value-%#02x", byte(v))
}

// EncodedValue is one decoded encoded_value. Format selects which
// payload field is meaningful:
//
//	Int         Byte, Short, Int, Long (sign-extended)
//	Uint        Char and the index formats (zero-extended)
//	Float       Float, Double
//	Bool        Boolean
//	Elements    Array
//	Annotation  Annotation
//
// Null carries no payload at all.
type EncodedValue struct {
	Format     ValueFormat
	Int        int64
	Uint       uint64
	Float      float64
	Bool       bool
	Elements   []EncodedValue
	Annotation *EncodedAnnotation
}

// readEncodedValue decodes one encoded_value at the cursor. The header
// byte packs the format in its low five bits and the size/arg field in
// the top three: arg = (header >> 5) & 0x7. For size-parameterized
// formats the payload is arg+1 bytes; for Boolean the arg bit is the
// value itself.
func readEncodedValue(c *cursor) (EncodedValue, error) {
	hdrOff := c.off
	hdr, err := c.byte()
	if err != nil {
		return EncodedValue{}, err
	}
	format := ValueFormat(hdr & 0x1f)
	arg := int(hdr>>5) & 0x7
	v := EncodedValue{Format: format}

	switch format {
	case ValueByte:
		if arg != 0 {
			return v, badFormat(hdrOff, "byte value with arg %d, must be 0", arg)
		}
		v.Int, err = readSigned(c, 1)
	case ValueShort:
		v.Int, err = readSizedSigned(c, arg, 2, hdrOff)
	case ValueChar:
		v.Uint, err = readSizedUnsigned(c, arg, 2, hdrOff)
	case ValueInt:
		v.Int, err = readSizedSigned(c, arg, 4, hdrOff)
	case ValueLong:
		v.Int, err = readSizedSigned(c, arg, 8, hdrOff)
	case ValueFloat:
		var bits uint64
		bits, err = readSizedUnsigned(c, arg, 4, hdrOff)
		if err == nil {
			// Partial bit patterns are zero-extended on the right: the
			// stored bytes are the high-order ones.
			v.Float = float64(math.Float32frombits(uint32(bits) << (8 * (4 - uint(arg) - 1))))
		}
	case ValueDouble:
		var bits uint64
		bits, err = readSizedUnsigned(c, arg, 8, hdrOff)
		if err == nil {
			v.Float = math.Float64frombits(bits << (8 * (8 - uint(arg) - 1)))
		}
	case ValueMethodType, ValueMethodHandle, ValueString, ValueType,
		ValueField, ValueMethod, ValueEnum:
		v.Uint, err = readSizedUnsigned(c, arg, 4, hdrOff)
	case ValueArray:
		if arg != 0 {
			return v, badFormat(hdrOff, "array value with arg %d, must be 0", arg)
		}
		v.Elements, err = readEncodedArray(c)
	case ValueAnnotation:
		if arg != 0 {
			return v, badFormat(hdrOff, "annotation value with arg %d, must be 0", arg)
		}
		var a EncodedAnnotation
		a, err = readEncodedAnnotation(c)
		if err == nil {
			v.Annotation = &a
		}
	case ValueNull:
		if arg != 0 {
			return v, badFormat(hdrOff, "null value with arg %d, must be 0", arg)
		}
	case ValueBoolean:
		if arg > 1 {
			return v, badFormat(hdrOff, "boolean value with arg %d, must be 0 or 1", arg)
		}
		v.Bool = arg == 1
	default:
		return v, badFormat(hdrOff, "unknown value format %#02x", byte(format))
	}
	if err != nil {
		return EncodedValue{}, err
	}
	return v, nil
}

// readEncodedArray decodes an encoded_array: a uleb128 count followed
// by that many nested values.
func readEncodedArray(c *cursor) ([]EncodedValue, error) {
	n, err := c.uleb()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]EncodedValue, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := readEncodedValue(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// encodedArrayAt decodes the encoded_array_item at off.
func (f *File) encodedArrayAt(off uint32) ([]EncodedValue, error) {
	if int64(off) >= int64(len(f.data)) {
		return nil, badRef("encoded array offset", off, len(f.data))
	}
	c := cursor{data: f.data, off: int(off)}
	return readEncodedArray(&c)
}

// readSizedSigned reads an arg+1 byte payload, sign-extending to 64
// bits. max is the format's natural width in bytes.
func readSizedSigned(c *cursor, arg, max, hdrOff int) (int64, error) {
	if arg+1 > max {
		return 0, badFormat(hdrOff, "payload of %d bytes exceeds %d-byte format", arg+1, max)
	}
	return readSigned(c, arg+1)
}

// readSizedUnsigned reads an arg+1 byte payload, zero-extending to 64
// bits.
func readSizedUnsigned(c *cursor, arg, max, hdrOff int) (uint64, error) {
	if arg+1 > max {
		return 0, badFormat(hdrOff, "payload of %d bytes exceeds %d-byte format", arg+1, max)
	}
	return c.uint(arg + 1)
}

func readSigned(c *cursor, size int) (int64, error) {
	u, err := c.uint(size)
	if err != nil {
		return 0, err
	}
	shift := uint(64 - 8*size)
	return int64(u<<shift) >> shift, nil
}
