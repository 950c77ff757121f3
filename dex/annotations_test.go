package dex

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// annotationFixture lays out an annotations_directory_item at offset 0,
// an annotation_set_item at 40 pointing at the annotation_item at 48,
// and an empty class-level set at 64.
func annotationFixture() *File {
	b := make([]byte, 68)
	put := func(off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

	put(0, 64) // class_annotations_off
	put(4, 1)  // fields_size
	put(8, 1)  // annotated_methods_size
	put(12, 1) // annotated_parameters_size
	put(16, 2) // field member index
	put(20, 40)
	put(24, 3) // method member index
	put(28, 40)
	put(32, 1) // parameter member index
	put(36, 40)

	put(40, 1) // set size
	put(44, 48)

	// annotation_item: runtime visibility, @type2(name4=true).
	copy(b[48:], []byte{0x01, 0x02, 0x01, 0x04, 0x3f})

	put(64, 0) // empty class set

	return &File{data: b}
}

func TestAnnotationsDirectory(t *testing.T) {
	f := annotationFixture()
	d, err := f.annotationsDirectoryAt(0)
	require.NoError(t, err)

	want := &AnnotationsDirectory{
		ClassAnnotationsOff:  64,
		FieldAnnotations:     []MemberAnnotation{{MemberIdx: 2, AnnotationsOff: 40}},
		MethodAnnotations:    []MemberAnnotation{{MemberIdx: 3, AnnotationsOff: 40}},
		ParameterAnnotations: []MemberAnnotation{{MemberIdx: 1, AnnotationsOff: 40}},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("directory mismatch (-want +got):\n%s", diff)
	}

	set, err := d.ClassAnnotations(f)
	require.NoError(t, err)
	require.Empty(t, set)
}

func TestAnnotationSetResolution(t *testing.T) {
	f := annotationFixture()
	d, err := f.annotationsDirectoryAt(0)
	require.NoError(t, err)

	set, err := d.FieldAnnotations[0].Set(f)
	require.NoError(t, err)
	require.Equal(t, AnnotationSet{48}, set)

	items, err := set.Items(f)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	require.Equal(t, VisibilityRuntime, item.Visibility)
	require.Equal(t, uint32(2), item.Annotation.TypeIdx)
	require.Len(t, item.Annotation.Elements, 1)
	require.Equal(t, uint32(4), item.Annotation.Elements[0].NameIdx)
	require.Equal(t, ValueBoolean, item.Annotation.Elements[0].Value.Format)
	require.True(t, item.Annotation.Elements[0].Value.Bool)
}

func TestAnnotationsDirectoryOverrun(t *testing.T) {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint32(b[4:], 100) // fields_size larger than the file
	f := &File{data: b}
	_, err := f.annotationsDirectoryAt(0)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestAnnotationOffsetsOutOfRange(t *testing.T) {
	f := &File{data: make([]byte, 8)}
	var re *ResolveError

	_, err := f.annotationsDirectoryAt(100)
	require.ErrorAs(t, err, &re)

	_, err = f.AnnotationSetAt(100)
	require.ErrorAs(t, err, &re)

	_, err = f.AnnotationItemAt(100)
	require.ErrorAs(t, err, &re)
}

func TestVisibilityString(t *testing.T) {
	require.Equal(t, "build", VisibilityBuild.String())
	require.Equal(t, "runtime", VisibilityRuntime.String())
	require.Equal(t, "system", VisibilitySystem.String())
	require.Equal(t, "visibility-0x7", Visibility(7).String())
}
