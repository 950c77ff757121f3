// Package dextest builds small DEX images in memory for tests. An
// Image describes the desired tables; Build lays the sections out in
// header order, records every offset, and seals the result so the
// header's declared size, SHA-1 signature, and Adler-32 checksum all
// hold. Tests corrupt the sealed bytes afterwards to provoke the
// failure they are after.
package dextest

import (
	"crypto/sha1"
	"encoding/binary"
	"hash/adler32"
	"unicode/utf16"

	"github.com/RLStrug/DexParser/dex"
)

// Proto describes one proto_id_item. A nil Params means no parameter
// list (parameters_off 0), distinct from an empty one.
type Proto struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	Params        []uint16
}

// Field describes one field_id_item.
type Field struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

// Method describes one method_id_item.
type Method struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

// EncodedField is one delta-encoded field record.
type EncodedField struct {
	IdxDiff     uint32
	AccessFlags uint32
}

// EncodedMethod is one delta-encoded method record.
type EncodedMethod struct {
	IdxDiff     uint32
	AccessFlags uint32
	CodeOff     uint32
}

// ClassData describes a class_data_item.
type ClassData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// Class describes one class_def_item. Set SuperclassIdx and
// SourceFileIdx to dex.NoIndex when absent; nil Interfaces, Data, and
// StaticValues mean the corresponding offset is 0. StaticValues is a
// raw encoded_array_item payload.
type Class struct {
	ClassIdx      uint32
	AccessFlags   uint32
	SuperclassIdx uint32
	SourceFileIdx uint32
	Interfaces    []uint16
	Data          *ClassData
	StaticValues  []byte
}

// Image describes a whole container.
type Image struct {
	Strings []string
	Types   []uint32 // descriptor string indices
	Protos  []Proto
	Fields  []Field
	Methods []Method
	Classes []Class

	// EndianTag overrides the endian constant when nonzero.
	EndianTag uint32
}

// Empty builds a minimal valid container with every table empty.
func Empty() []byte {
	return (&Image{}).Build()
}

// Build assembles and seals the image.
func (im *Image) Build() []byte {
	// Fixed-stride region sizes are known up front, so every data
	// section offset can be computed while the blobs are appended.
	off := uint32(dex.HeaderSize)
	place := func(count, stride int) uint32 {
		if count == 0 {
			return 0
		}
		o := off
		off += uint32(count * stride)
		return o
	}
	stringIDsOff := place(len(im.Strings), 4)
	typeIDsOff := place(len(im.Types), 4)
	protoIDsOff := place(len(im.Protos), 12)
	fieldIDsOff := place(len(im.Fields), 8)
	methodIDsOff := place(len(im.Methods), 8)
	classDefsOff := place(len(im.Classes), 32)
	dataOff := off

	var data []byte
	abs := func() uint32 { return dataOff + uint32(len(data)) }
	align4 := func() {
		for abs()%4 != 0 {
			data = append(data, 0)
		}
	}

	stringDataOffs := make([]uint32, len(im.Strings))
	for i, s := range im.Strings {
		stringDataOffs[i] = abs()
		data = dex.AppendUleb128(data, uint32(len(utf16.Encode([]rune(s)))))
		data = append(data, s...)
		data = append(data, 0)
	}
	firstStringData := uint32(0)
	if len(im.Strings) > 0 {
		firstStringData = stringDataOffs[0]
	}

	typeList := func(entries []uint16) uint32 {
		if entries == nil {
			return 0
		}
		align4()
		o := abs()
		data = binary.LittleEndian.AppendUint32(data, uint32(len(entries)))
		for _, e := range entries {
			data = binary.LittleEndian.AppendUint16(data, e)
		}
		return o
	}

	protoParamOffs := make([]uint32, len(im.Protos))
	for i, p := range im.Protos {
		protoParamOffs[i] = typeList(p.Params)
	}
	ifaceOffs := make([]uint32, len(im.Classes))
	for i, c := range im.Classes {
		ifaceOffs[i] = typeList(c.Interfaces)
	}

	classDataOffs := make([]uint32, len(im.Classes))
	for i, c := range im.Classes {
		if c.Data == nil {
			continue
		}
		classDataOffs[i] = abs()
		data = appendClassData(data, c.Data)
	}
	staticValOffs := make([]uint32, len(im.Classes))
	for i, c := range im.Classes {
		if c.StaticValues == nil {
			continue
		}
		staticValOffs[i] = abs()
		data = append(data, c.StaticValues...)
	}

	align4()
	mapOff := abs()
	type mapEntry struct {
		code dex.TypeCode
		size uint32
		off  uint32
	}
	entries := []mapEntry{{dex.TypeHeaderItem, 1, 0}}
	addEntry := func(code dex.TypeCode, size int, off uint32) {
		if size > 0 {
			entries = append(entries, mapEntry{code, uint32(size), off})
		}
	}
	addEntry(dex.TypeStringIDItem, len(im.Strings), stringIDsOff)
	addEntry(dex.TypeTypeIDItem, len(im.Types), typeIDsOff)
	addEntry(dex.TypeProtoIDItem, len(im.Protos), protoIDsOff)
	addEntry(dex.TypeFieldIDItem, len(im.Fields), fieldIDsOff)
	addEntry(dex.TypeMethodIDItem, len(im.Methods), methodIDsOff)
	addEntry(dex.TypeClassDefItem, len(im.Classes), classDefsOff)
	addEntry(dex.TypeStringDataItem, len(im.Strings), firstStringData)
	entries = append(entries, mapEntry{dex.TypeMapList, 1, mapOff})

	data = binary.LittleEndian.AppendUint32(data, uint32(len(entries)))
	for _, e := range entries {
		data = binary.LittleEndian.AppendUint16(data, uint16(e.code))
		data = binary.LittleEndian.AppendUint16(data, 0)
		data = binary.LittleEndian.AppendUint32(data, e.size)
		data = binary.LittleEndian.AppendUint32(data, e.off)
	}

	// Assemble: header, ID tables, class defs, data.
	buf := make([]byte, dex.HeaderSize, int(dataOff)+len(data))
	copy(buf, "dex\n035\x00")
	endian := uint32(0x12345678)
	if im.EndianTag != 0 {
		endian = im.EndianTag
	}
	u32 := binary.LittleEndian.PutUint32
	u32(buf[36:], dex.HeaderSize)
	u32(buf[40:], endian)
	u32(buf[52:], mapOff)
	u32(buf[56:], uint32(len(im.Strings)))
	u32(buf[60:], stringIDsOff)
	u32(buf[64:], uint32(len(im.Types)))
	u32(buf[68:], typeIDsOff)
	u32(buf[72:], uint32(len(im.Protos)))
	u32(buf[76:], protoIDsOff)
	u32(buf[80:], uint32(len(im.Fields)))
	u32(buf[84:], fieldIDsOff)
	u32(buf[88:], uint32(len(im.Methods)))
	u32(buf[92:], methodIDsOff)
	u32(buf[96:], uint32(len(im.Classes)))
	u32(buf[100:], classDefsOff)
	u32(buf[104:], uint32(len(data)))
	u32(buf[108:], dataOff)

	for _, o := range stringDataOffs {
		buf = binary.LittleEndian.AppendUint32(buf, o)
	}
	for _, t := range im.Types {
		buf = binary.LittleEndian.AppendUint32(buf, t)
	}
	for i, p := range im.Protos {
		buf = binary.LittleEndian.AppendUint32(buf, p.ShortyIdx)
		buf = binary.LittleEndian.AppendUint32(buf, p.ReturnTypeIdx)
		buf = binary.LittleEndian.AppendUint32(buf, protoParamOffs[i])
	}
	for _, fd := range im.Fields {
		buf = binary.LittleEndian.AppendUint16(buf, fd.ClassIdx)
		buf = binary.LittleEndian.AppendUint16(buf, fd.TypeIdx)
		buf = binary.LittleEndian.AppendUint32(buf, fd.NameIdx)
	}
	for _, m := range im.Methods {
		buf = binary.LittleEndian.AppendUint16(buf, m.ClassIdx)
		buf = binary.LittleEndian.AppendUint16(buf, m.ProtoIdx)
		buf = binary.LittleEndian.AppendUint32(buf, m.NameIdx)
	}
	for i, c := range im.Classes {
		buf = binary.LittleEndian.AppendUint32(buf, c.ClassIdx)
		buf = binary.LittleEndian.AppendUint32(buf, c.AccessFlags)
		buf = binary.LittleEndian.AppendUint32(buf, c.SuperclassIdx)
		buf = binary.LittleEndian.AppendUint32(buf, ifaceOffs[i])
		buf = binary.LittleEndian.AppendUint32(buf, c.SourceFileIdx)
		buf = binary.LittleEndian.AppendUint32(buf, 0) // annotations built by hand where needed
		buf = binary.LittleEndian.AppendUint32(buf, classDataOffs[i])
		buf = binary.LittleEndian.AppendUint32(buf, staticValOffs[i])
	}
	buf = append(buf, data...)

	Seal(buf)
	return buf
}

func appendClassData(b []byte, cd *ClassData) []byte {
	b = dex.AppendUleb128(b, uint32(len(cd.StaticFields)))
	b = dex.AppendUleb128(b, uint32(len(cd.InstanceFields)))
	b = dex.AppendUleb128(b, uint32(len(cd.DirectMethods)))
	b = dex.AppendUleb128(b, uint32(len(cd.VirtualMethods)))
	for _, f := range cd.StaticFields {
		b = dex.AppendUleb128(b, f.IdxDiff)
		b = dex.AppendUleb128(b, f.AccessFlags)
	}
	for _, f := range cd.InstanceFields {
		b = dex.AppendUleb128(b, f.IdxDiff)
		b = dex.AppendUleb128(b, f.AccessFlags)
	}
	for _, m := range cd.DirectMethods {
		b = dex.AppendUleb128(b, m.IdxDiff)
		b = dex.AppendUleb128(b, m.AccessFlags)
		b = dex.AppendUleb128(b, m.CodeOff)
	}
	for _, m := range cd.VirtualMethods {
		b = dex.AppendUleb128(b, m.IdxDiff)
		b = dex.AppendUleb128(b, m.AccessFlags)
		b = dex.AppendUleb128(b, m.CodeOff)
	}
	return b
}

// Seal patches the declared file size, then recomputes the SHA-1
// signature and the Adler-32 checksum, in that order: the checksum
// covers the signature bytes.
func Seal(b []byte) {
	binary.LittleEndian.PutUint32(b[32:36], uint32(len(b)))
	sig := sha1.Sum(b[32:])
	copy(b[12:32], sig[:])
	binary.LittleEndian.PutUint32(b[8:12], adler32.Checksum(b[12:]))
}
