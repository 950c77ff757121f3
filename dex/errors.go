package dex

import "fmt"

// FormatError reports a violation of the container's fixed layout:
// bad magic, an integrity mismatch, a truncated structure. It is
// always fatal to the decode that detected it; a structurally invalid
// buffer cannot be walked further.
type FormatError struct {
	Off int // byte offset where the violation was noticed, -1 when not tied to one
	Msg string
}

func (e *FormatError) Error() string {
	if e.Off < 0 {
		return "dex: " + e.Msg
	}
	return fmt.Sprintf("dex: offset %#x: %s", e.Off, e.Msg)
}

func badFormat(off int, format string, args ...interface{}) error {
	return &FormatError{Off: off, Msg: fmt.Sprintf(format, args...)}
}

// ResolveError reports a decoded index or offset that falls outside
// the table or buffer it refers to. It is raised when the reference is
// resolved, not when it was decoded, so unrelated parts of a damaged
// container stay inspectable.
type ResolveError struct {
	Table string // table or region being indexed
	Index uint32
	Size  int
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("dex: %s %d out of range [0, %d)", e.Table, e.Index, e.Size)
}

func badRef(table string, index uint32, size int) error {
	return &ResolveError{Table: table, Index: index, Size: size}
}
