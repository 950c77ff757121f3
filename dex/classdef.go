package dex

import "encoding/binary"

// ClassDef is one 32-byte class_def_item. The four *Off fields use 0
// to mean absent; SuperclassIdx and SourceFileIdx use NoIndex.
type ClassDef struct {
	ClassIdx        uint32
	AccessFlags     AccessFlags
	SuperclassIdx   uint32
	InterfacesOff   uint32
	SourceFileIdx   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

func decodeClassDef(b []byte) ClassDef {
	return ClassDef{
		ClassIdx:        binary.LittleEndian.Uint32(b[0:4]),
		AccessFlags:     AccessFlags(binary.LittleEndian.Uint32(b[4:8])),
		SuperclassIdx:   binary.LittleEndian.Uint32(b[8:12]),
		InterfacesOff:   binary.LittleEndian.Uint32(b[12:16]),
		SourceFileIdx:   binary.LittleEndian.Uint32(b[16:20]),
		AnnotationsOff:  binary.LittleEndian.Uint32(b[20:24]),
		ClassDataOff:    binary.LittleEndian.Uint32(b[24:28]),
		StaticValuesOff: binary.LittleEndian.Uint32(b[28:32]),
	}
}

// Descriptor resolves the descriptor of the class itself.
func (c ClassDef) Descriptor(f *File) (string, error) {
	return f.TypeDescriptor(c.ClassIdx)
}

// HasSuperclass reports whether the class declares a superclass; the
// root object type does not.
func (c ClassDef) HasSuperclass() bool { return c.SuperclassIdx != NoIndex }

// HasSourceFile reports whether a source file is attributed.
func (c ClassDef) HasSourceFile() bool { return c.SourceFileIdx != NoIndex }

// Superclass resolves the superclass descriptor. ok is false when the
// class has none; the sentinel is never dereferenced.
func (c ClassDef) Superclass(f *File) (desc string, ok bool, err error) {
	if !c.HasSuperclass() {
		return "", false, nil
	}
	desc, err = f.TypeDescriptor(c.SuperclassIdx)
	return desc, err == nil, err
}

// SourceFile resolves the attributed source file name. ok is false
// when none is recorded.
func (c ClassDef) SourceFile(f *File) (name string, ok bool, err error) {
	if !c.HasSourceFile() {
		return "", false, nil
	}
	name, err = f.StringAt(c.SourceFileIdx)
	return name, err == nil, err
}

// Interfaces resolves the implemented-interface list; empty when the
// class implements none.
func (c ClassDef) Interfaces(f *File) (TypeList, error) {
	return f.typeListAt(c.InterfacesOff)
}

// ClassData resolves the class_data_item holding the member lists, or
// nil for a class with no declared members.
func (c ClassDef) ClassData(f *File) (*ClassData, error) {
	if c.ClassDataOff == 0 {
		return nil, nil
	}
	return f.classDataAt(c.ClassDataOff)
}

// Annotations resolves the annotations directory, or nil when the
// class carries no annotations at all.
func (c ClassDef) Annotations(f *File) (*AnnotationsDirectory, error) {
	if c.AnnotationsOff == 0 {
		return nil, nil
	}
	return f.annotationsDirectoryAt(c.AnnotationsOff)
}

// StaticValues resolves the encoded_array_item of static field
// initial values, or nil when absent. Values are in field declaration
// order; fields past the end of the array take type defaults.
func (c ClassDef) StaticValues(f *File) ([]EncodedValue, error) {
	if c.StaticValuesOff == 0 {
		return nil, nil
	}
	return f.encodedArrayAt(c.StaticValuesOff)
}
