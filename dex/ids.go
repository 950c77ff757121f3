package dex

import "encoding/binary"

// Fixed record strides of the five ID tables and the class definition
// table.
const (
	stringIDSize = 4
	typeIDSize   = 4
	protoIDSize  = 12
	fieldIDSize  = 8
	methodIDSize = 8
	classDefSize = 32
)

// StringID locates a string_data_item in the data section.
type StringID struct {
	StringDataOff uint32
}

// TypeID names a type by the string index of its descriptor.
type TypeID struct {
	DescriptorIdx uint32
}

// ProtoID is a method prototype: shorty, return type, and an optional
// parameter type list (offset 0 means no parameters).
type ProtoID struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	ParametersOff uint32
}

// FieldID identifies a field by declaring class, value type, and name.
type FieldID struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

// MethodID identifies a method by declaring class, prototype, and name.
type MethodID struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

// readTable slices count stride-sized records starting at off and
// decodes each one. Only bounds are validated here; whether embedded
// indices point at anything real is checked when they are resolved,
// so a corrupt table can still be enumerated in full.
func readTable[T any](data []byte, off, count uint32, stride int, decode func([]byte) T, what string) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	end := int64(off) + int64(count)*int64(stride)
	if int64(off) > int64(len(data)) || end > int64(len(data)) {
		return nil, badFormat(int(off), "%s table [%#x, %#x) outside file of %d bytes",
			what, off, end, len(data))
	}
	out := make([]T, count)
	for i := range out {
		rec := data[int(off)+i*stride:]
		out[i] = decode(rec[:stride])
	}
	return out, nil
}

func decodeStringID(b []byte) StringID {
	return StringID{StringDataOff: binary.LittleEndian.Uint32(b)}
}

func decodeTypeID(b []byte) TypeID {
	return TypeID{DescriptorIdx: binary.LittleEndian.Uint32(b)}
}

func decodeProtoID(b []byte) ProtoID {
	return ProtoID{
		ShortyIdx:     binary.LittleEndian.Uint32(b[0:4]),
		ReturnTypeIdx: binary.LittleEndian.Uint32(b[4:8]),
		ParametersOff: binary.LittleEndian.Uint32(b[8:12]),
	}
}

func decodeFieldID(b []byte) FieldID {
	return FieldID{
		ClassIdx: binary.LittleEndian.Uint16(b[0:2]),
		TypeIdx:  binary.LittleEndian.Uint16(b[2:4]),
		NameIdx:  binary.LittleEndian.Uint32(b[4:8]),
	}
}

func decodeMethodID(b []byte) MethodID {
	return MethodID{
		ClassIdx: binary.LittleEndian.Uint16(b[0:2]),
		ProtoIdx: binary.LittleEndian.Uint16(b[2:4]),
		NameIdx:  binary.LittleEndian.Uint32(b[4:8]),
	}
}

// Descriptor resolves the type's descriptor string.
func (t TypeID) Descriptor(f *File) (string, error) {
	return f.StringAt(t.DescriptorIdx)
}

// Shorty resolves the compact signature string of the prototype.
func (p ProtoID) Shorty(f *File) (string, error) {
	return f.StringAt(p.ShortyIdx)
}

// ReturnType resolves the return type descriptor of the prototype.
func (p ProtoID) ReturnType(f *File) (string, error) {
	return f.TypeDescriptor(p.ReturnTypeIdx)
}

// Parameters resolves the parameter type list. A zero offset yields an
// empty list.
func (p ProtoID) Parameters(f *File) (TypeList, error) {
	return f.typeListAt(p.ParametersOff)
}

// Class resolves the descriptor of the field's declaring class.
func (fi FieldID) Class(f *File) (string, error) {
	return f.TypeDescriptor(uint32(fi.ClassIdx))
}

// Type resolves the descriptor of the field's value type.
func (fi FieldID) Type(f *File) (string, error) {
	return f.TypeDescriptor(uint32(fi.TypeIdx))
}

// Name resolves the field's name.
func (fi FieldID) Name(f *File) (string, error) {
	return f.StringAt(fi.NameIdx)
}

// Class resolves the descriptor of the method's declaring class.
func (m MethodID) Class(f *File) (string, error) {
	return f.TypeDescriptor(uint32(m.ClassIdx))
}

// Proto resolves the method's prototype.
func (m MethodID) Proto(f *File) (ProtoID, error) {
	return f.ProtoAt(uint32(m.ProtoIdx))
}

// Name resolves the method's name.
func (m MethodID) Name(f *File) (string, error) {
	return f.StringAt(m.NameIdx)
}
