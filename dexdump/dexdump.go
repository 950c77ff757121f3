// Package dexdump renders a parsed dex.File as human-readable text.
// It walks the accessor surface of the dex package only; broken
// cross-references in a damaged container are rendered inline instead
// of aborting the dump, so everything that can be shown is shown.
package dexdump

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/RLStrug/DexParser/dex"
)

// Fprint writes the full dump of f to w: header, map list, the five
// ID tables, and every class definition with its members.
func Fprint(w io.Writer, f *dex.File) error {
	d := &dumper{w: bufio.NewWriter(w), f: f}
	d.header()
	d.mapList()
	d.strings()
	d.types()
	d.protos()
	d.fields()
	d.methods()
	d.classes()
	return d.w.Flush()
}

type dumper struct {
	w *bufio.Writer
	f *dex.File
}

func (d *dumper) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.w, format, args...)
}

// str resolves a string index, degrading to inline error text.
func (d *dumper) str(i uint32) string {
	s, err := d.f.StringAt(i)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

// typeName resolves a type index to its raw descriptor.
func (d *dumper) typeName(i uint32) string {
	s, err := d.f.TypeDescriptor(i)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func (d *dumper) header() {
	h := &d.f.Header
	d.printf("Header:\n")
	d.printf("\tVersion: %s\n", h.Version)
	d.printf("\tChecksum: %x\n", h.Checksum)
	d.printf("\tSignature: %x\n", h.Signature)
	d.printf("\tFile size: %d\n", h.FileSize)
	d.printf("\tEndianness: %s\n", h.Endianness())
	d.printf("\tLink size: %d\n", h.LinkSize)
	d.printf("\tLink off: %#x\n", h.LinkOff)
	d.printf("\tMap off: %#x\n", h.MapOff)
	d.printf("\tString ids size: %d\n", h.StringIDsSize)
	d.printf("\tString ids off: %#x\n", h.StringIDsOff)
	d.printf("\tType ids size: %d\n", h.TypeIDsSize)
	d.printf("\tType ids off: %#x\n", h.TypeIDsOff)
	d.printf("\tProto ids size: %d\n", h.ProtoIDsSize)
	d.printf("\tProto ids off: %#x\n", h.ProtoIDsOff)
	d.printf("\tField ids size: %d\n", h.FieldIDsSize)
	d.printf("\tField ids off: %#x\n", h.FieldIDsOff)
	d.printf("\tMethod ids size: %d\n", h.MethodIDsSize)
	d.printf("\tMethod ids off: %#x\n", h.MethodIDsOff)
	d.printf("\tClass defs size: %d\n", h.ClassDefsSize)
	d.printf("\tClass defs off: %#x\n", h.ClassDefsOff)
	d.printf("\tData size: %d\n", h.DataSize)
	d.printf("\tData off: %#x\n", h.DataOff)
}

func (d *dumper) mapList() {
	d.printf("Map list: (%d items)\n", len(d.f.MapList))
	for _, mi := range d.f.MapList {
		d.printf("\t%s\tsize %d\toff %#x\n", mi.Type, mi.Size, mi.Offset)
	}
}

func (d *dumper) strings() {
	d.printf("Strings:\n")
	for i, sid := range d.f.StringIDs {
		sd, err := d.f.StringDataAt(uint32(i))
		if err != nil {
			d.printf("\t%#x\t<%v>\n", sid.StringDataOff, err)
			continue
		}
		d.printf("\t%#x\t(%d)\t%s\n", sid.StringDataOff, sd.Utf16Size, sd.Text)
	}
}

func (d *dumper) types() {
	d.printf("Types:\n")
	for _, t := range d.f.TypeIDs {
		d.printf("\t(%d)\t%s\n", t.DescriptorIdx, d.str(t.DescriptorIdx))
	}
}

// paramList renders a prototype's parameter list.
func (d *dumper) paramList(p dex.ProtoID) string {
	params, err := p.Parameters(d.f)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	names := make([]string, len(params))
	for i, t := range params {
		names[i] = d.typeName(uint32(t))
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func (d *dumper) protos() {
	d.printf("Prototypes:\n")
	for _, p := range d.f.ProtoIDs {
		d.printf("\t(%d) %s\t(%d) %s\t(%#x)%s\n",
			p.ShortyIdx, d.str(p.ShortyIdx),
			p.ReturnTypeIdx, d.typeName(p.ReturnTypeIdx),
			p.ParametersOff, d.paramList(p))
	}
}

func (d *dumper) fields() {
	d.printf("Fields:\n")
	for _, fd := range d.f.FieldIDs {
		d.printf("\t(%d) %s\t(%d) %s\t(%d) %s\n",
			fd.ClassIdx, d.typeName(uint32(fd.ClassIdx)),
			fd.TypeIdx, d.typeName(uint32(fd.TypeIdx)),
			fd.NameIdx, d.str(fd.NameIdx))
	}
}

func (d *dumper) methods() {
	d.printf("Methods:\n")
	for _, m := range d.f.MethodIDs {
		proto, err := m.Proto(d.f)
		ret := "<" + fmt.Sprint(err) + ">"
		params := ""
		if err == nil {
			ret = d.typeName(proto.ReturnTypeIdx)
			params = d.paramList(proto)
		}
		d.printf("\t(%d) %s\t(%d) %s\t(%d) %s\t%s\n",
			m.ClassIdx, d.typeName(uint32(m.ClassIdx)),
			m.ProtoIdx, ret,
			m.NameIdx, d.str(m.NameIdx),
			params)
	}
}

func (d *dumper) classes() {
	d.printf("Class defs:\n")
	for _, c := range d.f.ClassDefs {
		d.printf("\tClass: (%d) %s\n", c.ClassIdx, PrettyDescriptor(d.typeName(c.ClassIdx)))
		d.printf("\tAccess flags: %s\n", c.AccessFlags)

		d.printf("\tSuperclass: (%d) ", c.SuperclassIdx)
		if super, ok, err := c.Superclass(d.f); err != nil {
			d.printf("<%v>\n", err)
		} else if !ok {
			d.printf("None\n")
		} else {
			d.printf("%s\n", PrettyDescriptor(super))
		}

		d.printf("\tInterfaces: (%#x) ", c.InterfacesOff)
		if ifaces, err := c.Interfaces(d.f); err != nil {
			d.printf("<%v>\n", err)
		} else if len(ifaces) == 0 {
			d.printf("None\n")
		} else {
			names := make([]string, len(ifaces))
			for i, t := range ifaces {
				names[i] = PrettyDescriptor(d.typeName(uint32(t)))
			}
			d.printf("(%s)\n", strings.Join(names, ", "))
		}

		d.printf("\tSource file: (%d) ", c.SourceFileIdx)
		if src, ok, err := c.SourceFile(d.f); err != nil {
			d.printf("<%v>\n", err)
		} else if !ok {
			d.printf("None\n")
		} else {
			d.printf("%s\n", src)
		}

		d.annotations(c)
		d.classData(c)
		d.staticValues(c)
		d.printf("\n")
	}
}

func (d *dumper) annotations(c dex.ClassDef) {
	d.printf("\tAnnotations: (%#x) ", c.AnnotationsOff)
	dir, err := c.Annotations(d.f)
	if err != nil {
		d.printf("<%v>\n", err)
		return
	}
	if dir == nil {
		d.printf("None\n")
		return
	}
	d.printf("\n")
	if set, err := dir.ClassAnnotations(d.f); err != nil {
		d.printf("\t\tClass: <%v>\n", err)
	} else if set != nil {
		d.printf("\t\tClass: %s\n", d.annotationSet(set))
	}
	for _, fa := range dir.FieldAnnotations {
		d.printf("\t\tField (%d): %s\n", fa.MemberIdx, d.memberAnnotations(fa))
	}
	for _, ma := range dir.MethodAnnotations {
		d.printf("\t\tMethod (%d): %s\n", ma.MemberIdx, d.memberAnnotations(ma))
	}
	for _, pa := range dir.ParameterAnnotations {
		d.printf("\t\tParameters (%d): off %#x\n", pa.MemberIdx, pa.AnnotationsOff)
	}
}

func (d *dumper) memberAnnotations(m dex.MemberAnnotation) string {
	set, err := m.Set(d.f)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return d.annotationSet(set)
}

func (d *dumper) annotationSet(set dex.AnnotationSet) string {
	items, err := set.Items(d.f)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s %s", it.Visibility, d.annotation(&it.Annotation))
	}
	return strings.Join(parts, ", ")
}

func (d *dumper) annotation(a *dex.EncodedAnnotation) string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(PrettyDescriptor(d.typeName(a.TypeIdx)))
	sb.WriteString("(")
	for i, e := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.str(e.NameIdx))
		sb.WriteString("=")
		sb.WriteString(d.value(e.Value))
	}
	sb.WriteString(")")
	return sb.String()
}

func (d *dumper) classData(c dex.ClassDef) {
	d.printf("\tClass data: (%#x) ", c.ClassDataOff)
	cd, err := c.ClassData(d.f)
	if err != nil {
		d.printf("<%v>\n", err)
		return
	}
	if cd == nil {
		d.printf("None\n")
		return
	}
	d.printf("\n")
	d.printf("\t\tStatic fields: (%d)\n", len(cd.StaticFields))
	d.encodedFields(cd.StaticFields)
	d.printf("\t\tInstance fields: (%d)\n", len(cd.InstanceFields))
	d.encodedFields(cd.InstanceFields)
	d.printf("\t\tDirect methods: (%d)\n", len(cd.DirectMethods))
	d.encodedMethods(cd.DirectMethods)
	d.printf("\t\tVirtual methods: (%d)\n", len(cd.VirtualMethods))
	d.encodedMethods(cd.VirtualMethods)
}

func (d *dumper) encodedFields(fields []dex.EncodedField) {
	for _, ef := range fields {
		name := "<" + fmt.Sprint(ef.FieldIdx) + ">"
		if fid, err := ef.Field(d.f); err == nil {
			name = d.str(fid.NameIdx)
		}
		d.printf("\t\t\t(+%d) %s\t%s\n", ef.FieldIdxDiff, name, ef.AccessFlags)
	}
}

func (d *dumper) encodedMethods(methods []dex.EncodedMethod) {
	for _, em := range methods {
		name := "<" + fmt.Sprint(em.MethodIdx) + ">"
		if mid, err := em.Method(d.f); err == nil {
			name = d.str(mid.NameIdx)
		}
		d.printf("\t\t\t(+%d) %s\t%s\tcode %#x\n",
			em.MethodIdxDiff, name, em.AccessFlags, em.CodeOff)
	}
}

func (d *dumper) staticValues(c dex.ClassDef) {
	d.printf("\tStatic values: (%#x) ", c.StaticValuesOff)
	vals, err := c.StaticValues(d.f)
	if err != nil {
		d.printf("<%v>\n", err)
		return
	}
	if vals == nil {
		d.printf("None\n")
		return
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = d.value(v)
	}
	d.printf("[%s]\n", strings.Join(parts, ", "))
}

// value renders one encoded value with its cross-references resolved.
func (d *dumper) value(v dex.EncodedValue) string {
	switch v.Format {
	case dex.ValueByte, dex.ValueShort, dex.ValueInt, dex.ValueLong:
		return fmt.Sprintf("%d", v.Int)
	case dex.ValueChar:
		return fmt.Sprintf("%q", rune(v.Uint))
	case dex.ValueFloat, dex.ValueDouble:
		return fmt.Sprintf("%g", v.Float)
	case dex.ValueMethodType:
		return fmt.Sprintf("proto@%d", v.Uint)
	case dex.ValueMethodHandle:
		return fmt.Sprintf("method-handle@%d", v.Uint)
	case dex.ValueString:
		return fmt.Sprintf("%q", d.str(uint32(v.Uint)))
	case dex.ValueType:
		return PrettyDescriptor(d.typeName(uint32(v.Uint)))
	case dex.ValueField, dex.ValueEnum:
		if fid, err := d.f.FieldAt(uint32(v.Uint)); err == nil {
			return d.str(fid.NameIdx)
		}
		return fmt.Sprintf("field@%d", v.Uint)
	case dex.ValueMethod:
		if mid, err := d.f.MethodAt(uint32(v.Uint)); err == nil {
			return d.str(mid.NameIdx)
		}
		return fmt.Sprintf("method@%d", v.Uint)
	case dex.ValueArray:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = d.value(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case dex.ValueAnnotation:
		return d.annotation(v.Annotation)
	case dex.ValueNull:
		return "null"
	case dex.ValueBoolean:
		return fmt.Sprintf("%t", v.Bool)
	}
	return v.Format.String()
}

// PrettyDescriptor converts a raw type descriptor to source notation:
// "[Ljava/lang/Object;" becomes "java.lang.Object[]". Descriptors that
// do not parse are returned unchanged.
func PrettyDescriptor(desc string) string {
	dims := 0
	for dims < len(desc) && desc[dims] == '[' {
		dims++
	}
	rest := desc[dims:]

	var base string
	if strings.HasPrefix(rest, "L") && strings.HasSuffix(rest, ";") {
		base = strings.ReplaceAll(rest[1:len(rest)-1], "/", ".")
	} else if len(rest) == 1 {
		switch rest[0] {
		case 'B':
			base = "byte"
		case 'C':
			base = "char"
		case 'D':
			base = "double"
		case 'F':
			base = "float"
		case 'I':
			base = "int"
		case 'J':
			base = "long"
		case 'S':
			base = "short"
		case 'Z':
			base = "boolean"
		case 'V':
			base = "void"
		}
	}
	if base == "" {
		return desc
	}
	return base + strings.Repeat("[]", dims)
}
