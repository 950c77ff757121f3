package dex

import (
	"encoding/binary"
	"fmt"
)

// Visibility tags an annotation_item with when the annotation is
// visible to the program.
type Visibility byte

const (
	VisibilityBuild   Visibility = 0x00
	VisibilityRuntime Visibility = 0x01
	VisibilitySystem  Visibility = 0x02
)

func (v Visibility) String() string {
	switch v {
	case VisibilityBuild:
		return "build"
	case VisibilityRuntime:
		return "runtime"
	case VisibilitySystem:
		return "system"
	}
	return fmt.Sprintf("visibility-%#x", byte(v))
}

// MemberAnnotation pairs a member index with an annotation_set_item
// offset. Field, method, and parameter entries all share this shape;
// for parameters the offset points at an annotation_set_ref_list.
type MemberAnnotation struct {
	MemberIdx      uint32
	AnnotationsOff uint32
}

// AnnotationsDirectory indexes every annotation attached to one class.
type AnnotationsDirectory struct {
	ClassAnnotationsOff  uint32 // 0 when the class itself is unannotated
	FieldAnnotations     []MemberAnnotation
	MethodAnnotations    []MemberAnnotation
	ParameterAnnotations []MemberAnnotation
}

// annotationsDirectoryAt decodes the annotations_directory_item at
// off: a class-level set offset, three counts, then the three member
// sequences laid out contiguously.
func (f *File) annotationsDirectoryAt(off uint32) (*AnnotationsDirectory, error) {
	if int64(off)+16 > int64(len(f.data)) {
		return nil, badRef("annotations directory offset", off, len(f.data))
	}
	b := f.data[off:]
	d := AnnotationsDirectory{
		ClassAnnotationsOff: binary.LittleEndian.Uint32(b[0:4]),
	}
	nFields := binary.LittleEndian.Uint32(b[4:8])
	nMethods := binary.LittleEndian.Uint32(b[8:12])
	nParams := binary.LittleEndian.Uint32(b[12:16])

	total := int64(nFields) + int64(nMethods) + int64(nParams)
	if int64(off)+16+total*8 > int64(len(f.data)) {
		return nil, badFormat(int(off), "annotations directory of %d entries overruns file", total)
	}

	pos := int64(off) + 16
	read := func(n uint32) []MemberAnnotation {
		if n == 0 {
			return nil
		}
		out := make([]MemberAnnotation, n)
		for i := range out {
			rec := f.data[pos:]
			out[i] = MemberAnnotation{
				MemberIdx:      binary.LittleEndian.Uint32(rec[0:4]),
				AnnotationsOff: binary.LittleEndian.Uint32(rec[4:8]),
			}
			pos += 8
		}
		return out
	}
	d.FieldAnnotations = read(nFields)
	d.MethodAnnotations = read(nMethods)
	d.ParameterAnnotations = read(nParams)
	return &d, nil
}

// ClassAnnotations resolves the class-level annotation set, or nil
// when the class itself carries none.
func (d *AnnotationsDirectory) ClassAnnotations(f *File) (AnnotationSet, error) {
	if d.ClassAnnotationsOff == 0 {
		return nil, nil
	}
	return f.AnnotationSetAt(d.ClassAnnotationsOff)
}

// Set resolves the member's annotation set.
func (m MemberAnnotation) Set(f *File) (AnnotationSet, error) {
	return f.AnnotationSetAt(m.AnnotationsOff)
}

// AnnotationSet is an annotation_set_item: offsets of the member
// annotation_items, in the order they appear in the file.
type AnnotationSet []uint32

// AnnotationSetAt decodes the annotation_set_item at off.
func (f *File) AnnotationSetAt(off uint32) (AnnotationSet, error) {
	if int64(off)+4 > int64(len(f.data)) {
		return nil, badRef("annotation set offset", off, len(f.data))
	}
	count := binary.LittleEndian.Uint32(f.data[off:])
	start := int64(off) + 4
	if start+int64(count)*4 > int64(len(f.data)) {
		return nil, badFormat(int(off), "annotation set of %d entries overruns file", count)
	}
	set := make(AnnotationSet, count)
	for i := range set {
		set[i] = binary.LittleEndian.Uint32(f.data[start+int64(i)*4:])
	}
	return set, nil
}

// Items resolves every entry of the set.
func (s AnnotationSet) Items(f *File) ([]AnnotationItem, error) {
	if len(s) == 0 {
		return nil, nil
	}
	out := make([]AnnotationItem, len(s))
	for i, off := range s {
		item, err := f.AnnotationItemAt(off)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

// AnnotationItem is one annotation_item: a visibility byte followed by
// the encoded annotation.
type AnnotationItem struct {
	Visibility Visibility
	Annotation EncodedAnnotation
}

// AnnotationItemAt decodes the annotation_item at off.
func (f *File) AnnotationItemAt(off uint32) (AnnotationItem, error) {
	if int64(off) >= int64(len(f.data)) {
		return AnnotationItem{}, badRef("annotation item offset", off, len(f.data))
	}
	c := cursor{data: f.data, off: int(off)}
	vis, err := c.byte()
	if err != nil {
		return AnnotationItem{}, err
	}
	a, err := readEncodedAnnotation(&c)
	if err != nil {
		return AnnotationItem{}, err
	}
	return AnnotationItem{Visibility: Visibility(vis), Annotation: a}, nil
}

// AnnotationElement is one (name, value) pair of an encoded
// annotation.
type AnnotationElement struct {
	NameIdx uint32
	Value   EncodedValue
}

// Name resolves the element name.
func (e AnnotationElement) Name(f *File) (string, error) {
	return f.StringAt(e.NameIdx)
}

// EncodedAnnotation is one annotation instance: its type and ordered
// elements.
type EncodedAnnotation struct {
	TypeIdx  uint32
	Elements []AnnotationElement
}

// Type resolves the annotation's type descriptor.
func (a EncodedAnnotation) Type(f *File) (string, error) {
	return f.TypeDescriptor(a.TypeIdx)
}

// readEncodedAnnotation decodes an encoded_annotation at the cursor.
// Elements are parsed strictly in sequence: each one's size is known
// only after its value has been decoded.
func readEncodedAnnotation(c *cursor) (EncodedAnnotation, error) {
	typeIdx, err := c.uleb()
	if err != nil {
		return EncodedAnnotation{}, err
	}
	size, err := c.uleb()
	if err != nil {
		return EncodedAnnotation{}, err
	}
	a := EncodedAnnotation{TypeIdx: typeIdx}
	for i := uint32(0); i < size; i++ {
		nameIdx, err := c.uleb()
		if err != nil {
			return EncodedAnnotation{}, err
		}
		v, err := readEncodedValue(c)
		if err != nil {
			return EncodedAnnotation{}, err
		}
		a.Elements = append(a.Elements, AnnotationElement{NameIdx: nameIdx, Value: v})
	}
	return a, nil
}
