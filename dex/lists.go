package dex

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// StringData is the decoded payload behind a StringID. Utf16Size is
// the declared UTF-16 code-unit count; it diverges from the byte
// length of Text whenever the payload contains non-ASCII code points,
// so it is informational only and never bounds the decode.
type StringData struct {
	Utf16Size uint32
	Text      string
}

// stringDataAt decodes the string_data_item at off. The payload runs
// to its zero terminator.
func (f *File) stringDataAt(off uint32) (StringData, error) {
	if int64(off) >= int64(len(f.data)) {
		return StringData{}, badRef("string data offset", off, len(f.data))
	}
	c := cursor{data: f.data, off: int(off)}
	n, err := c.uleb()
	if err != nil {
		return StringData{}, err
	}
	rest := f.data[c.off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return StringData{}, badFormat(c.off, "string data not zero terminated")
	}
	return StringData{Utf16Size: n, Text: string(rest[:end])}, nil
}

// TypeList is a parameter or interface list: type table indices in
// declaration order.
type TypeList []uint16

// typeListAt decodes the type_list at off. Offset 0 denotes an absent
// optional list and yields an empty one without touching the buffer.
func (f *File) typeListAt(off uint32) (TypeList, error) {
	if off == 0 {
		return nil, nil
	}
	if int64(off)+4 > int64(len(f.data)) {
		return nil, badRef("type list offset", off, len(f.data))
	}
	count := binary.LittleEndian.Uint32(f.data[off:])
	start := int64(off) + 4
	end := start + int64(count)*2
	if end > int64(len(f.data)) {
		return nil, badFormat(int(off), "type list of %d entries overruns file", count)
	}
	list := make(TypeList, count)
	for i := range list {
		list[i] = binary.LittleEndian.Uint16(f.data[start+int64(i)*2:])
	}
	return list, nil
}

// Descriptors resolves every entry of the list to its type descriptor.
func (l TypeList) Descriptors(f *File) ([]string, error) {
	if len(l) == 0 {
		return nil, nil
	}
	out := make([]string, len(l))
	for i, idx := range l {
		d, err := f.TypeDescriptor(uint32(idx))
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// TypeCode tags one entry of the map list.
type TypeCode uint16

const (
	TypeHeaderItem               TypeCode = 0x0000
	TypeStringIDItem             TypeCode = 0x0001
	TypeTypeIDItem               TypeCode = 0x0002
	TypeProtoIDItem              TypeCode = 0x0003
	TypeFieldIDItem              TypeCode = 0x0004
	TypeMethodIDItem             TypeCode = 0x0005
	TypeClassDefItem             TypeCode = 0x0006
	TypeCallSiteIDItem           TypeCode = 0x0007
	TypeMethodHandleItem         TypeCode = 0x0008
	TypeMapList                  TypeCode = 0x1000
	TypeTypeList                 TypeCode = 0x1001
	TypeAnnotationSetRefList     TypeCode = 0x1002
	TypeAnnotationSetItem        TypeCode = 0x1003
	TypeClassDataItem            TypeCode = 0x2000
	TypeCodeItem                 TypeCode = 0x2001
	TypeStringDataItem           TypeCode = 0x2002
	TypeDebugInfoItem            TypeCode = 0x2003
	TypeAnnotationItem           TypeCode = 0x2004
	TypeEncodedArrayItem         TypeCode = 0x2005
	TypeAnnotationsDirectoryItem TypeCode = 0x2006
	TypeHiddenapiClassDataItem   TypeCode = 0xf000
)

var typeCodeNames = map[TypeCode]string{
	TypeHeaderItem:               "TYPE_HEADER_ITEM",
	TypeStringIDItem:             "TYPE_STRING_ID_ITEM",
	TypeTypeIDItem:               "TYPE_TYPE_ID_ITEM",
	TypeProtoIDItem:              "TYPE_PROTO_ID_ITEM",
	TypeFieldIDItem:              "TYPE_FIELD_ID_ITEM",
	TypeMethodIDItem:             "TYPE_METHOD_ID_ITEM",
	TypeClassDefItem:             "TYPE_CLASS_DEF_ITEM",
	TypeCallSiteIDItem:           "TYPE_CALL_SITE_ID_ITEM",
	TypeMethodHandleItem:         "TYPE_METHOD_HANDLE_ITEM",
	TypeMapList:                  "TYPE_MAP_LIST",
	TypeTypeList:                 "TYPE_TYPE_LIST",
	TypeAnnotationSetRefList:     "TYPE_ANNOTATION_SET_REF_LIST",
	TypeAnnotationSetItem:        "TYPE_ANNOTATION_SET_ITEM",
	TypeClassDataItem:            "TYPE_CLASS_DATA_ITEM",
	TypeCodeItem:                 "TYPE_CODE_ITEM",
	TypeStringDataItem:           "TYPE_STRING_DATA_ITEM",
	TypeDebugInfoItem:            "TYPE_DEBUG_INFO_ITEM",
	TypeAnnotationItem:           "TYPE_ANNOTATION_ITEM",
	TypeEncodedArrayItem:         "TYPE_ENCODED_ARRAY_ITEM",
	TypeAnnotationsDirectoryItem: "TYPE_ANNOTATIONS_DIRECTORY_ITEM",
	TypeHiddenapiClassDataItem:   "TYPE_HIDDENAPI_CLASS_DATA_ITEM",
}

func (t TypeCode) valid() bool {
	_, ok := typeCodeNames[t]
	return ok
}

func (t TypeCode) String() string {
	if s, ok := typeCodeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE_0x%04x", uint16(t))
}

// MapItem is one row of the file's table of contents.
type MapItem struct {
	Type   TypeCode
	Size   uint32
	Offset uint32
}

const mapItemSize = 12

// mapListAt decodes the map_list at off. The map is part of the eager
// decode pass, so a malformed one is fatal.
func (f *File) mapListAt(off uint32) ([]MapItem, error) {
	if int64(off)+4 > int64(len(f.data)) {
		return nil, badFormat(int(off), "map list outside file of %d bytes", len(f.data))
	}
	count := binary.LittleEndian.Uint32(f.data[off:])
	start := int64(off) + 4
	end := start + int64(count)*mapItemSize
	if end > int64(len(f.data)) {
		return nil, badFormat(int(off), "map list of %d entries overruns file", count)
	}
	list := make([]MapItem, count)
	for i := range list {
		rec := f.data[start+int64(i)*mapItemSize:]
		item := MapItem{
			Type:   TypeCode(binary.LittleEndian.Uint16(rec[0:2])),
			Size:   binary.LittleEndian.Uint32(rec[4:8]),
			Offset: binary.LittleEndian.Uint32(rec[8:12]),
		}
		if !item.Type.valid() {
			return nil, badFormat(int(start)+i*mapItemSize, "unknown map item type %#04x", uint16(item.Type))
		}
		list[i] = item
	}
	return list, nil
}
