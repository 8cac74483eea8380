// Package codec implements the bidirectional UTF-8 <-> MS932 <-> DOS 8.3
// name translation described by the image layout's directory entries.
//
// The full MS932 code point table is treated as an oracle (spec: "a large
// static bidirectional map"); this package backs the oracle with a real
// Shift-JIS codec, golang.org/x/text/encoding/japanese, since MS932 is
// Microsoft's superset of Shift-JIS and agrees with it over the common
// single- and double-byte ranges. Lead-byte range checks and the DOS
// 0xE5/0x05 sentinel substitution are DOS-specific and hand-written.
package codec

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// MS932Oracle is the interface spec.md §1 calls out as out of scope: a
// bidirectional MS932 <-> Unicode map plus a lead-byte predicate.
type MS932Oracle interface {
	UnicodeToMS932(cp rune) (uint16, bool)
	MS932ToUnicode(code uint16) (rune, bool)
	IsLeadByte(b byte) bool
}

type shiftJISOracle struct {
	encoder *japaneseTransformCache
}

// NewMS932Oracle returns the default oracle backed by x/text's Shift-JIS
// codec.
func NewMS932Oracle() MS932Oracle {
	return &shiftJISOracle{encoder: newJapaneseTransformCache()}
}

// IsLeadByte reports whether b can only appear as the first byte of a
// two-byte MS932 sequence.
func (shiftJISOracle) IsLeadByte(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC)
}

func (o *shiftJISOracle) UnicodeToMS932(cp rune) (uint16, bool) {
	return o.encoder.encode(cp)
}

func (o *shiftJISOracle) MS932ToUnicode(code uint16) (rune, bool) {
	return o.encoder.decode(code)
}

// japaneseTransformCache performs single code point <-> MS932 conversions
// through japanese.ShiftJIS by running a fresh encoder or decoder over a
// one- or two-byte stream, since x/text's Transformer operates on byte
// streams rather than single values. Results are not cached.
type japaneseTransformCache struct {
	enc encoding.Encoding
}

func newJapaneseTransformCache() *japaneseTransformCache {
	return &japaneseTransformCache{enc: japanese.ShiftJIS}
}

func (c *japaneseTransformCache) encode(cp rune) (uint16, bool) {
	dst, err := c.enc.NewEncoder().Bytes([]byte(string(cp)))
	if err != nil || len(dst) == 0 || len(dst) > 2 {
		return 0, false
	}
	if len(dst) == 1 {
		return uint16(dst[0]), true
	}
	return uint16(dst[0])<<8 | uint16(dst[1]), true
}

func (c *japaneseTransformCache) decode(code uint16) (rune, bool) {
	var raw []byte
	if code > 0xFF {
		raw = []byte{byte(code >> 8), byte(code)}
	} else {
		raw = []byte{byte(code)}
	}

	dst, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil || len(dst) == 0 {
		return 0, false
	}

	runes, decErr := DecodeUTF8Strict(dst)
	if decErr != nil || len(runes) == 0 {
		return 0, false
	}
	return runes[0], true
}
