package dex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestClassDataDeltas(t *testing.T) {
	var b []byte
	appendPairs := func(pairs ...uint32) {
		for _, p := range pairs {
			b = AppendUleb128(b, p)
		}
	}
	appendPairs(2, 1, 2, 1) // counts
	// Static fields: absolute indices 5 then 8.
	appendPairs(5, uint32(AccStatic|AccFinal), 3, uint32(AccStatic))
	// Instance fields: the accumulator restarts, so the first delta is
	// again an absolute index.
	appendPairs(2, uint32(AccPrivate))
	// Direct methods: absolute indices 7 then 8.
	appendPairs(7, uint32(AccConstructor), 0x100, 1, uint32(AccPublic), 0)
	// Virtual methods: accumulator restarts once more.
	appendPairs(4, uint32(AccPublic), 0x200)

	f := &File{data: b}
	cd, err := f.classDataAt(0)
	require.NoError(t, err)

	want := &ClassData{
		StaticFields: []EncodedField{
			{FieldIdxDiff: 5, FieldIdx: 5, AccessFlags: AccStatic | AccFinal},
			{FieldIdxDiff: 3, FieldIdx: 8, AccessFlags: AccStatic},
		},
		InstanceFields: []EncodedField{
			{FieldIdxDiff: 2, FieldIdx: 2, AccessFlags: AccPrivate},
		},
		DirectMethods: []EncodedMethod{
			{MethodIdxDiff: 7, MethodIdx: 7, AccessFlags: AccConstructor, CodeOff: 0x100},
			{MethodIdxDiff: 1, MethodIdx: 8, AccessFlags: AccPublic, CodeOff: 0},
		},
		VirtualMethods: []EncodedMethod{
			{MethodIdxDiff: 4, MethodIdx: 4, AccessFlags: AccPublic, CodeOff: 0x200},
		},
	}
	if diff := cmp.Diff(want, cd); diff != "" {
		t.Errorf("class data mismatch (-want +got):\n%s", diff)
	}

	require.False(t, cd.DirectMethods[1].HasCode())
	require.True(t, cd.VirtualMethods[0].HasCode())
}

func TestClassDataEmpty(t *testing.T) {
	f := &File{data: []byte{0, 0, 0, 0}}
	cd, err := f.classDataAt(0)
	require.NoError(t, err)
	require.Empty(t, cd.StaticFields)
	require.Empty(t, cd.InstanceFields)
	require.Empty(t, cd.DirectMethods)
	require.Empty(t, cd.VirtualMethods)
}

func TestClassDataTruncated(t *testing.T) {
	// One static field promised, no records follow.
	f := &File{data: []byte{1, 0, 0, 0}}
	_, err := f.classDataAt(0)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestClassDataBadOffset(t *testing.T) {
	f := &File{data: []byte{0, 0, 0, 0}}
	_, err := f.classDataAt(100)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
}
