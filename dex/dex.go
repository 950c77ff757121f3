// Package dex decodes Android DEX containers into a fully
// cross-referenced in-memory model. See:
//
//	https://source.android.com/devices/tech/dalvik/dex-format.html
//
// for a specification of the file format.
//
// Parse makes a single pass over the buffer: the header and its
// integrity fields are validated, then the five ID tables, the class
// definition table, and the map list are sliced out. Everything
// reached through an offset or index (string data, type lists, class
// data, annotations, static values) stays unresolved until asked for,
// so a container with one broken cross-reference remains inspectable
// everywhere else.
//
// A File and everything decoded from it are immutable; independent
// Files may be used from different goroutines without coordination.
package dex

// File is a decoded container. The exported tables are ordered exactly
// as declared in the file. All of them borrow from the one underlying
// buffer, which Parse retains without copying.
type File struct {
	data []byte

	Header    Header
	StringIDs []StringID
	TypeIDs   []TypeID
	ProtoIDs  []ProtoID
	FieldIDs  []FieldID
	MethodIDs []MethodID
	ClassDefs []ClassDef
	MapList   []MapItem
}

// Parse decodes the container in data. The buffer is retained, not
// copied; the caller must not mutate it for the lifetime of the File.
func Parse(data []byte) (*File, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	f := &File{data: data, Header: h}

	if f.StringIDs, err = readTable(data, h.StringIDsOff, h.StringIDsSize,
		stringIDSize, decodeStringID, "string id"); err != nil {
		return nil, err
	}
	if f.TypeIDs, err = readTable(data, h.TypeIDsOff, h.TypeIDsSize,
		typeIDSize, decodeTypeID, "type id"); err != nil {
		return nil, err
	}
	if f.ProtoIDs, err = readTable(data, h.ProtoIDsOff, h.ProtoIDsSize,
		protoIDSize, decodeProtoID, "proto id"); err != nil {
		return nil, err
	}
	if f.FieldIDs, err = readTable(data, h.FieldIDsOff, h.FieldIDsSize,
		fieldIDSize, decodeFieldID, "field id"); err != nil {
		return nil, err
	}
	if f.MethodIDs, err = readTable(data, h.MethodIDsOff, h.MethodIDsSize,
		methodIDSize, decodeMethodID, "method id"); err != nil {
		return nil, err
	}
	if f.ClassDefs, err = readTable(data, h.ClassDefsOff, h.ClassDefsSize,
		classDefSize, decodeClassDef, "class def"); err != nil {
		return nil, err
	}
	if f.MapList, err = f.mapListAt(h.MapOff); err != nil {
		return nil, err
	}
	return f, nil
}

// StringDataAt resolves string index i to its string_data_item.
func (f *File) StringDataAt(i uint32) (StringData, error) {
	if int64(i) >= int64(len(f.StringIDs)) {
		return StringData{}, badRef("string index", i, len(f.StringIDs))
	}
	return f.stringDataAt(f.StringIDs[i].StringDataOff)
}

// StringAt resolves string index i to its decoded text.
func (f *File) StringAt(i uint32) (string, error) {
	sd, err := f.StringDataAt(i)
	return sd.Text, err
}

// TypeAt resolves type index i.
func (f *File) TypeAt(i uint32) (TypeID, error) {
	if int64(i) >= int64(len(f.TypeIDs)) {
		return TypeID{}, badRef("type index", i, len(f.TypeIDs))
	}
	return f.TypeIDs[i], nil
}

// TypeDescriptor resolves type index i to its descriptor string.
func (f *File) TypeDescriptor(i uint32) (string, error) {
	t, err := f.TypeAt(i)
	if err != nil {
		return "", err
	}
	return f.StringAt(t.DescriptorIdx)
}

// ProtoAt resolves prototype index i.
func (f *File) ProtoAt(i uint32) (ProtoID, error) {
	if int64(i) >= int64(len(f.ProtoIDs)) {
		return ProtoID{}, badRef("proto index", i, len(f.ProtoIDs))
	}
	return f.ProtoIDs[i], nil
}

// FieldAt resolves field index i.
func (f *File) FieldAt(i uint32) (FieldID, error) {
	if int64(i) >= int64(len(f.FieldIDs)) {
		return FieldID{}, badRef("field index", i, len(f.FieldIDs))
	}
	return f.FieldIDs[i], nil
}

// MethodAt resolves method index i.
func (f *File) MethodAt(i uint32) (MethodID, error) {
	if int64(i) >= int64(len(f.MethodIDs)) {
		return MethodID{}, badRef("method index", i, len(f.MethodIDs))
	}
	return f.MethodIDs[i], nil
}

// ClassDefAt resolves class definition index i.
func (f *File) ClassDefAt(i uint32) (ClassDef, error) {
	if int64(i) >= int64(len(f.ClassDefs)) {
		return ClassDef{}, badRef("class def index", i, len(f.ClassDefs))
	}
	return f.ClassDefs[i], nil
}
