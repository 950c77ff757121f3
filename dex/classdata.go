package dex

// EncodedField is one field record of a class_data_item. FieldIdxDiff
// is the stored delta; FieldIdx is the accumulated absolute index into
// the field ID table.
type EncodedField struct {
	FieldIdxDiff uint32
	FieldIdx     uint32
	AccessFlags  AccessFlags
}

// EncodedMethod is one method record of a class_data_item. CodeOff 0
// means the method is abstract or native and has no body.
type EncodedMethod struct {
	MethodIdxDiff uint32
	MethodIdx     uint32
	AccessFlags   AccessFlags
	CodeOff       uint32
}

// ClassData holds the four member sequences of a class, in the order
// they appear in the file.
type ClassData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// classDataAt decodes the class_data_item at off: four uleb128 counts,
// then the four delta-encoded sequences.
func (f *File) classDataAt(off uint32) (*ClassData, error) {
	if int64(off) >= int64(len(f.data)) {
		return nil, badRef("class data offset", off, len(f.data))
	}
	c := cursor{data: f.data, off: int(off)}

	var counts [4]uint32
	for i := range counts {
		n, err := c.uleb()
		if err != nil {
			return nil, err
		}
		counts[i] = n
	}

	var cd ClassData
	var err error
	if cd.StaticFields, err = readEncodedFields(&c, counts[0]); err != nil {
		return nil, err
	}
	if cd.InstanceFields, err = readEncodedFields(&c, counts[1]); err != nil {
		return nil, err
	}
	if cd.DirectMethods, err = readEncodedMethods(&c, counts[2]); err != nil {
		return nil, err
	}
	if cd.VirtualMethods, err = readEncodedMethods(&c, counts[3]); err != nil {
		return nil, err
	}
	return &cd, nil
}

// readEncodedFields decodes n (idx_diff, access_flags) records. The
// index accumulator starts at zero for each sequence; record i's
// absolute index is the previous absolute index plus its delta.
func readEncodedFields(c *cursor, n uint32) ([]EncodedField, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]EncodedField, 0, n)
	var idx uint32
	for i := uint32(0); i < n; i++ {
		diff, err := c.uleb()
		if err != nil {
			return nil, err
		}
		flags, err := c.uleb()
		if err != nil {
			return nil, err
		}
		idx += diff
		out = append(out, EncodedField{
			FieldIdxDiff: diff,
			FieldIdx:     idx,
			AccessFlags:  AccessFlags(flags),
		})
	}
	return out, nil
}

// readEncodedMethods decodes n (idx_diff, access_flags, code_off)
// records, accumulating indices the same way as fields.
func readEncodedMethods(c *cursor, n uint32) ([]EncodedMethod, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]EncodedMethod, 0, n)
	var idx uint32
	for i := uint32(0); i < n; i++ {
		diff, err := c.uleb()
		if err != nil {
			return nil, err
		}
		flags, err := c.uleb()
		if err != nil {
			return nil, err
		}
		codeOff, err := c.uleb()
		if err != nil {
			return nil, err
		}
		idx += diff
		out = append(out, EncodedMethod{
			MethodIdxDiff: diff,
			MethodIdx:     idx,
			AccessFlags:   AccessFlags(flags),
			CodeOff:       codeOff,
		})
	}
	return out, nil
}

// Field resolves the record's accumulated index against the field ID
// table.
func (e EncodedField) Field(f *File) (FieldID, error) {
	return f.FieldAt(e.FieldIdx)
}

// Method resolves the record's accumulated index against the method
// ID table.
func (e EncodedMethod) Method(f *File) (MethodID, error) {
	return f.MethodAt(e.MethodIdx)
}

// HasCode reports whether the method carries a bytecode body.
func (e EncodedMethod) HasCode() bool { return e.CodeOff != 0 }
