package dex_test

import (
	"crypto/sha1"
	"encoding/binary"
	"hash/adler32"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/RLStrug/DexParser/dex"
	"github.com/RLStrug/DexParser/dextest"
)

// reseal recomputes the signature and checksum without touching the
// declared file size, for tests that corrupt the size field itself.
func reseal(b []byte) {
	sig := sha1.Sum(b[32:])
	copy(b[12:32], sig[:])
	binary.LittleEndian.PutUint32(b[8:12], adler32.Checksum(b[12:]))
}

func TestParseEmpty(t *testing.T) {
	data := dextest.Empty()
	f, err := dex.Parse(data)
	require.NoError(t, err)

	require.Equal(t, "035", f.Header.Version)
	require.Equal(t, uint32(len(data)), f.Header.FileSize)
	require.Equal(t, dex.LittleEndian, f.Header.Endianness())
	require.Empty(t, f.StringIDs)
	require.Empty(t, f.TypeIDs)
	require.Empty(t, f.ProtoIDs)
	require.Empty(t, f.FieldIDs)
	require.Empty(t, f.MethodIDs)
	require.Empty(t, f.ClassDefs)

	// Even an empty container carries a map with the header item first
	// and the map list itself last.
	require.NotEmpty(t, f.MapList)
	require.Equal(t, dex.TypeHeaderItem, f.MapList[0].Type)
	require.Equal(t, dex.TypeMapList, f.MapList[len(f.MapList)-1].Type)
	require.Equal(t, f.Header.MapOff, f.MapList[len(f.MapList)-1].Offset)
}

func TestReverseEndianTagAccepted(t *testing.T) {
	im := dextest.Image{Strings: []string{"LFoo;"}, EndianTag: 0x78563412}
	data := im.Build()
	f, err := dex.Parse(data)
	require.NoError(t, err)
	require.Equal(t, dex.BigEndian, f.Header.Endianness())

	// The tag records provenance only; fields are still read
	// little-endian, so the tables decode identically.
	require.Equal(t, uint32(len(data)), f.Header.FileSize)
	s, err := f.StringAt(0)
	require.NoError(t, err)
	require.Equal(t, "LFoo;", s)
}

func TestHeaderRejections(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(b []byte) []byte
	}{
		{"truncated", func(b []byte) []byte { return b[:dex.HeaderSize-1] }},
		{"bad magic", func(b []byte) []byte {
			b[0] = 'x'
			dextest.Seal(b)
			return b
		}},
		{"version not zero terminated", func(b []byte) []byte {
			b[7] = 0x35
			dextest.Seal(b)
			return b
		}},
		{"checksum field corrupted", func(b []byte) []byte {
			b[8] ^= 0xff
			return b
		}},
		{"signature field corrupted", func(b []byte) []byte {
			b[12] ^= 0xff
			// Fix only the checksum so the signature check is reached.
			binary.LittleEndian.PutUint32(b[8:12], adler32.Checksum(b[12:]))
			return b
		}},
		{"content corrupted", func(b []byte) []byte {
			b[len(b)-1] ^= 0xff
			return b
		}},
		{"file size mismatch", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[32:36], uint32(len(b))+1)
			reseal(b)
			return b
		}},
		{"header size mismatch", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[36:40], 113)
			reseal(b)
			return b
		}},
		{"bad endian tag", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[40:44], 0xdeadbeef)
			reseal(b)
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.corrupt(dextest.Empty())
			_, err := dex.Parse(data)
			var fe *dex.FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestStringDecoding(t *testing.T) {
	// "abé" occupies three UTF-16 code units but four UTF-8 bytes; the
	// decoded text must run to the zero terminator, not to the declared
	// code-unit count.
	im := dextest.Image{Strings: []string{"", "abé", "hello"}}
	f, err := dex.Parse(im.Build())
	require.NoError(t, err)

	sd, err := f.StringDataAt(0)
	require.NoError(t, err)
	require.Equal(t, dex.StringData{Utf16Size: 0, Text: ""}, sd)

	sd, err = f.StringDataAt(1)
	require.NoError(t, err)
	require.Equal(t, uint32(3), sd.Utf16Size)
	require.Equal(t, "abé", sd.Text)
	require.Equal(t, 4, len(sd.Text))

	s, err := f.StringAt(2)
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	_, err = f.StringAt(3)
	var re *dex.ResolveError
	require.ErrorAs(t, err, &re)
}

func TestEndToEnd(t *testing.T) {
	im := dextest.Image{
		Strings: []string{
			"<init>", "Foo.java", "I", "LBar;", "LFoo;", "V", "VL", "x",
		},
		Types: []uint32{2, 3, 4, 5}, // I, LBar;, LFoo;, V
		Protos: []dextest.Proto{
			{ShortyIdx: 6, ReturnTypeIdx: 3, Params: []uint16{2}}, // V(LFoo;)
			{ShortyIdx: 5, ReturnTypeIdx: 3},                      // V()
		},
		Fields:  []dextest.Field{{ClassIdx: 2, TypeIdx: 0, NameIdx: 7}},
		Methods: []dextest.Method{{ClassIdx: 2, ProtoIdx: 0, NameIdx: 0}},
		Classes: []dextest.Class{{
			ClassIdx:      2,
			AccessFlags:   0x0001,
			SuperclassIdx: 1,
			SourceFileIdx: 1,
			Interfaces:    []uint16{1},
			Data: &dextest.ClassData{
				StaticFields:  []dextest.EncodedField{{IdxDiff: 0, AccessFlags: 0x0019}},
				DirectMethods: []dextest.EncodedMethod{{IdxDiff: 0, AccessFlags: 0x10001, CodeOff: 0}},
			},
			StaticValues: []byte{0x01, 0x04, 0x2a}, // [int 42]
		}},
	}
	f, err := dex.Parse(im.Build())
	require.NoError(t, err)

	cd, err := f.ClassDefAt(0)
	require.NoError(t, err)

	desc, err := cd.Descriptor(f)
	require.NoError(t, err)
	require.Equal(t, "LFoo;", desc)
	require.Equal(t, "public", cd.AccessFlags.String())

	super, ok, err := cd.Superclass(f)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "LBar;", super)

	src, ok, err := cd.SourceFile(f)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Foo.java", src)

	ifaces, err := cd.Interfaces(f)
	require.NoError(t, err)
	descs, err := ifaces.Descriptors(f)
	require.NoError(t, err)
	require.Equal(t, []string{"LBar;"}, descs)

	data, err := cd.ClassData(f)
	require.NoError(t, err)
	require.Len(t, data.StaticFields, 1)
	require.Len(t, data.DirectMethods, 1)
	require.Empty(t, data.InstanceFields)
	require.Empty(t, data.VirtualMethods)

	fid, err := data.StaticFields[0].Field(f)
	require.NoError(t, err)
	name, err := fid.Name(f)
	require.NoError(t, err)
	require.Equal(t, "x", name)
	typ, err := fid.Type(f)
	require.NoError(t, err)
	require.Equal(t, "I", typ)

	mid, err := data.DirectMethods[0].Method(f)
	require.NoError(t, err)
	name, err = mid.Name(f)
	require.NoError(t, err)
	require.Equal(t, "<init>", name)
	proto, err := mid.Proto(f)
	require.NoError(t, err)
	shorty, err := proto.Shorty(f)
	require.NoError(t, err)
	require.Equal(t, "VL", shorty)
	params, err := proto.Parameters(f)
	require.NoError(t, err)
	require.Equal(t, dex.TypeList{2}, params)

	vals, err := cd.StaticValues(f)
	require.NoError(t, err)
	want := []dex.EncodedValue{{Format: dex.ValueInt, Int: 42}}
	if diff := cmp.Diff(want, vals); diff != "" {
		t.Errorf("static values mismatch (-want +got):\n%s", diff)
	}
}

func TestProtoWithoutParameters(t *testing.T) {
	im := dextest.Image{
		Strings: []string{"V"},
		Types:   []uint32{0},
		Protos:  []dextest.Proto{{ShortyIdx: 0, ReturnTypeIdx: 0}},
	}
	f, err := dex.Parse(im.Build())
	require.NoError(t, err)

	p, err := f.ProtoAt(0)
	require.NoError(t, err)
	require.Zero(t, p.ParametersOff)
	params, err := p.Parameters(f)
	require.NoError(t, err)
	require.Empty(t, params)
}

func TestAbsentSuperclassAndSourceFile(t *testing.T) {
	im := dextest.Image{
		Strings: []string{"LObj;"},
		Types:   []uint32{0},
		Classes: []dextest.Class{{
			ClassIdx:      0,
			AccessFlags:   0x0001,
			SuperclassIdx: dex.NoIndex,
			SourceFileIdx: dex.NoIndex,
		}},
	}
	f, err := dex.Parse(im.Build())
	require.NoError(t, err)

	cd, err := f.ClassDefAt(0)
	require.NoError(t, err)
	require.False(t, cd.HasSuperclass())
	require.False(t, cd.HasSourceFile())

	_, ok, err := cd.Superclass(f)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = cd.SourceFile(f)
	require.NoError(t, err)
	require.False(t, ok)

	data, err := cd.ClassData(f)
	require.NoError(t, err)
	require.Nil(t, data)
	vals, err := cd.StaticValues(f)
	require.NoError(t, err)
	require.Nil(t, vals)
	ann, err := cd.Annotations(f)
	require.NoError(t, err)
	require.Nil(t, ann)
}

func TestDanglingReferenceIsLazy(t *testing.T) {
	// A type pointing at a nonexistent string parses fine; only
	// resolving it fails, and with a reference error rather than a
	// structural one.
	im := dextest.Image{
		Strings: []string{"LFoo;"},
		Types:   []uint32{99},
	}
	f, err := dex.Parse(im.Build())
	require.NoError(t, err)

	_, err = f.TypeDescriptor(0)
	var re *dex.ResolveError
	require.ErrorAs(t, err, &re)
	require.Equal(t, uint32(99), re.Index)

	// The neighboring table is still usable.
	require.Len(t, f.TypeIDs, 1)
}

func TestMapListRejectsUnknownType(t *testing.T) {
	b := dextest.Empty()
	mapOff := binary.LittleEndian.Uint32(b[52:56])
	// First map entry's type code.
	binary.LittleEndian.PutUint16(b[mapOff+4:], 0x0042)
	dextest.Seal(b)

	_, err := dex.Parse(b)
	var fe *dex.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestTableOutsideFile(t *testing.T) {
	b := dextest.Empty()
	// Claim a string ID table far past the end of the buffer.
	binary.LittleEndian.PutUint32(b[56:60], 4)          // string_ids_size
	binary.LittleEndian.PutUint32(b[60:64], 0x00ffffff) // string_ids_off
	dextest.Seal(b)

	_, err := dex.Parse(b)
	var fe *dex.FormatError
	require.ErrorAs(t, err, &fe)
}
