package dex

import (
	"fmt"
	"strings"
)

// AccessFlags is the bit set describing the accessibility and
// properties of a class or member. A few bits are overloaded between
// fields and methods (volatile/bridge, transient/varargs); the field
// reading is listed first in the String output.
type AccessFlags uint32

const (
	AccPublic       AccessFlags = 0x1
	AccPrivate      AccessFlags = 0x2
	AccProtected    AccessFlags = 0x4
	AccStatic       AccessFlags = 0x8
	AccFinal        AccessFlags = 0x10
	AccSynchronized AccessFlags = 0x20
	AccVolatile     AccessFlags = 0x40
	AccBridge       AccessFlags = 0x40
	AccTransient    AccessFlags = 0x80
	AccVarargs      AccessFlags = 0x80
	AccNative       AccessFlags = 0x100
	AccInterface    AccessFlags = 0x200
	AccAbstract     AccessFlags = 0x400
	AccStrict       AccessFlags = 0x800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccConstructor  AccessFlags = 0x10000

	AccDeclaredSynchronized AccessFlags = 0x20000
)

var accessFlagNames = []struct {
	bit  AccessFlags
	name string
}{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccSynchronized, "synchronized"},
	{AccVolatile, "volatile|bridge"},
	{AccTransient, "transient|varargs"},
	{AccNative, "native"},
	{AccInterface, "interface"},
	{AccAbstract, "abstract"},
	{AccStrict, "strict"},
	{AccSynthetic, "synthetic"},
	{AccAnnotation, "annotation"},
	{AccEnum, "enum"},
	{AccConstructor, "constructor"},
	{AccDeclaredSynchronized, "declared-synchronized"},
}

func (a AccessFlags) String() string {
	if a == 0 {
		return "0"
	}
	var parts []string
	rem := a
	for _, fl := range accessFlagNames {
		if rem&fl.bit != 0 {
			parts = append(parts, fl.name)
			rem &^= fl.bit
		}
	}
	if rem != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rem)))
	}
	return strings.Join(parts, " ")
}
