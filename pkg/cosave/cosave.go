// Package cosave implements the co-save file that plugins persist their
// state into alongside a game save.
//
// A co-save is a preamble followed by a body:
//
//	preamble: magic u32 "HSXC" | version u16 | flags u16
//	body:     header length u32 | header | record count u32 |
//	          records (type u32 | version u32 | length u32 | data) | crc32 u32
//
// The body is zstd-compressed when FlagZstd is set. The checksum covers
// the uncompressed body bytes before it. All integers are little endian.
package cosave

import (
	"errors"

	"github.com/rawbytedev/hexscriptex/pkg/forms"
)

const (
	Magic         uint32 = 0x43585348 // "HSXC"
	FormatVersion uint16 = 1

	FlagZstd uint16 = 0x0001

	PreambleSize     = 8
	RecordHeaderSize = 12

	// MaxStringLen is the longest text the u16 length prefix can carry.
	MaxStringLen = 0xFFFF

	// MaxBodySize caps the decompressed body of a co-save.
	MaxBodySize = 64 << 20
)

var (
	ErrBadMagic           = errors.New("cosave: bad magic")
	ErrUnsupportedVersion = errors.New("cosave: unsupported format version")
	ErrChecksum           = errors.New("cosave: checksum mismatch")
	ErrTruncated          = errors.New("cosave: truncated data")
	ErrNoRecord           = errors.New("cosave: no open record")
	ErrRecordUnderflow    = errors.New("cosave: read past end of record")
	ErrStringTooLong      = errors.New("cosave: string too long")
)

// Header is the co-save metadata written before the records.
type Header struct {
	SavedAt      int64 // unix seconds
	Plugins      []string
	LightPlugins []string
}

func (h Header) LoadOrder() forms.LoadOrder {
	return forms.LoadOrder{Plugins: h.Plugins, Light: h.LightPlugins}
}

type RecordInfo struct {
	Type    uint32
	Version uint32
	Length  uint32
}

func (r RecordInfo) TypeString() string {
	b := []byte{byte(r.Type >> 24), byte(r.Type >> 16), byte(r.Type >> 8), byte(r.Type)}
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			b[i] = '.'
		}
	}
	return string(b)
}

// FourCC packs a four character record tag, first character in the high byte.
func FourCC(s string) uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v <<= 8
		if i < len(s) {
			v |= uint32(s[i])
		} else {
			v |= ' '
		}
	}
	return v
}

// Encoder is the primitive write side handed to objects while saving.
type Encoder interface {
	WriteU32(v uint32) error
	WriteI32(v int32) error
	WriteF32(v float32) error
	WriteBool(v bool) error
	WriteString(s string) error
}

// Decoder is the primitive read side handed to objects while loading.
type Decoder interface {
	ReadU32() (uint32, error)
	ReadI32() (int32, error)
	ReadF32() (float32, error)
	ReadBool() (bool, error)
	ReadString() (string, error)

	// ResolveFormID maps an identifier stored in the save to the one valid
	// in the current session. It reports false if the form's plugin is gone.
	ResolveFormID(id forms.FormID) (forms.FormID, bool)
}

type RecordEncoder interface {
	Encoder
	OpenRecord(typ, version uint32) error
}

type RecordDecoder interface {
	Decoder
	NextRecord() (RecordInfo, bool)
}
