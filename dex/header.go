package dex

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"hash/adler32"
)

const (
	// HeaderSize is the fixed size of the header_item; the declared
	// header size field must match it exactly.
	HeaderSize = 112

	endianConstant        = 0x12345678
	reverseEndianConstant = 0x78563412

	// NoIndex marks an absent superclass or source-file index.
	NoIndex = 0xffffffff
)

// magic is the first four bytes of every DEX file; the three version
// digits and a zero byte follow.
var magic = [4]byte{'d', 'e', 'x', '\n'}

// Endianness records the byte order the container was produced with.
// Both tags are accepted, and all multi-byte fields are decoded
// little-endian regardless: the tag describes the file's origin, it is
// not a re-interpretation instruction.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Header is the decoded 112-byte header_item.
type Header struct {
	Version   string
	Checksum  uint32
	Signature [20]byte
	FileSize  uint32
	EndianTag uint32

	LinkSize uint32
	LinkOff  uint32
	MapOff   uint32

	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

func (h *Header) Endianness() Endianness {
	if h.EndianTag == reverseEndianConstant {
		return BigEndian
	}
	return LittleEndian
}

// parseHeader validates the header and the whole-file integrity
// fields. Checks run in order and stop at the first failure; there is
// no partially valid header.
func parseHeader(data []byte) (Header, error) {
	var h Header

	if len(data) < HeaderSize {
		return h, badFormat(0, "file too short for header: %d bytes", len(data))
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return h, badFormat(0, "bad magic %x, want %x", data[0:4], magic)
	}
	h.Version = string(data[4:7])
	if data[7] != 0 {
		return h, badFormat(7, "magic not zero terminated")
	}

	h.Checksum = binary.LittleEndian.Uint32(data[8:12])
	if sum := adler32.Checksum(data[12:]); sum != h.Checksum {
		return h, badFormat(8, "checksum mismatch: declared %#x, computed %#x", h.Checksum, sum)
	}

	copy(h.Signature[:], data[12:32])
	if sig := sha1.Sum(data[32:]); sig != h.Signature {
		return h, badFormat(12, "signature mismatch: declared %x, computed %x", h.Signature, sig)
	}

	h.FileSize = binary.LittleEndian.Uint32(data[32:36])
	if int64(h.FileSize) != int64(len(data)) {
		return h, badFormat(32, "declared file size %d, have %d bytes", h.FileSize, len(data))
	}

	if hs := binary.LittleEndian.Uint32(data[36:40]); hs != HeaderSize {
		return h, badFormat(36, "declared header size %d, want %d", hs, HeaderSize)
	}

	h.EndianTag = binary.LittleEndian.Uint32(data[40:44])
	if h.EndianTag != endianConstant && h.EndianTag != reverseEndianConstant {
		return h, badFormat(40, "unrecognized endian tag %#x", h.EndianTag)
	}

	h.LinkSize = binary.LittleEndian.Uint32(data[44:48])
	h.LinkOff = binary.LittleEndian.Uint32(data[48:52])
	h.MapOff = binary.LittleEndian.Uint32(data[52:56])
	h.StringIDsSize = binary.LittleEndian.Uint32(data[56:60])
	h.StringIDsOff = binary.LittleEndian.Uint32(data[60:64])
	h.TypeIDsSize = binary.LittleEndian.Uint32(data[64:68])
	h.TypeIDsOff = binary.LittleEndian.Uint32(data[68:72])
	h.ProtoIDsSize = binary.LittleEndian.Uint32(data[72:76])
	h.ProtoIDsOff = binary.LittleEndian.Uint32(data[76:80])
	h.FieldIDsSize = binary.LittleEndian.Uint32(data[80:84])
	h.FieldIDsOff = binary.LittleEndian.Uint32(data[84:88])
	h.MethodIDsSize = binary.LittleEndian.Uint32(data[88:92])
	h.MethodIDsOff = binary.LittleEndian.Uint32(data[92:96])
	h.ClassDefsSize = binary.LittleEndian.Uint32(data[96:100])
	h.ClassDefsOff = binary.LittleEndian.Uint32(data[100:104])
	h.DataSize = binary.LittleEndian.Uint32(data[104:108])
	h.DataOff = binary.LittleEndian.Uint32(data[108:112])

	return h, nil
}
