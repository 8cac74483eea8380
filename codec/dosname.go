package codec

import (
	"encoding/hex"
	"strings"

	"github.com/tunbehau/hdifat12/errs"
)

// RawNameSize is the size of the packed 11-byte DOS 8.3 name field (8-byte
// base + 3-byte extension, no separator).
const RawNameSize = 11

const (
	deletedSentinel    byte = 0xE5
	deletedEscapeByte  byte = 0x05
	endOfDirectoryByte byte = 0x00
)

// EncodeDOSName turns a UTF-8 name into the packed 11-byte DOS 8.3 field.
// Each part is upper-cased and encoded through the MS932 oracle; values
// above 0xFF are emitted as two bytes (high, then low). Fails with EINVAL
// ("NameTooLong") if the base exceeds 8 encoded bytes or the extension
// exceeds 3.
func EncodeDOSName(oracle MS932Oracle, utf8Name string) ([RawNameSize]byte, error) {
	var raw [RawNameSize]byte
	for i := range raw {
		raw[i] = ' '
	}

	base, ext := splitBaseExtension(utf8Name)

	baseBytes, err := encodeNamePart(oracle, base)
	if err != nil {
		return raw, err
	}
	if len(baseBytes) > 8 {
		return raw, errs.NewWithMessage(errs.EINVAL, "base name exceeds 8 bytes")
	}

	extBytes, err := encodeNamePart(oracle, ext)
	if err != nil {
		return raw, err
	}
	if len(extBytes) > 3 {
		return raw, errs.NewWithMessage(errs.EINVAL, "extension exceeds 3 bytes")
	}

	copy(raw[0:8], baseBytes)
	copy(raw[8:11], extBytes)

	// The first byte of the packed name can never be the deleted-entry
	// sentinel; substitute the escape byte on write, reversed on read.
	if raw[0] == deletedSentinel {
		raw[0] = deletedEscapeByte
	}

	return raw, nil
}

// encodeNamePart upper-folds and MS932-encodes a single name component
// (base or extension), emitting one byte for code points <= 0xFF and two
// (high, low) otherwise.
func encodeNamePart(oracle MS932Oracle, part string) ([]byte, error) {
	runes, err := DecodeUTF8Strict([]byte(part))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(runes)*2)
	for _, cp := range runes {
		folded := UpperFold(cp)
		code, ok := oracle.UnicodeToMS932(folded)
		if !ok {
			return nil, errs.NewWithMessage(errs.EINVAL, "code point has no MS932 mapping")
		}
		if code > 0xFF {
			out = append(out, byte(code>>8), byte(code))
		} else {
			out = append(out, byte(code))
		}
	}
	return out, nil
}

// splitBaseExtension splits on the first '.', mirroring the original
// decoder's split() helper.
func splitBaseExtension(name string) (base string, ext string) {
	idx := strings.IndexByte(name, '.')
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// DecodeDOSName produces the canonical UTF-8 display name for a packed
// 11-byte DOS 8.3 field. If any part fails to decode, the caller gets a
// hex-encoded fallback of the raw 11 bytes so every name is representable.
func DecodeDOSName(oracle MS932Oracle, raw [RawNameSize]byte) string {
	name, err := decodeDOSNameStrict(oracle, raw)
	if err != nil {
		return canonicalHexFallback(raw)
	}
	return name
}

func decodeDOSNameStrict(oracle MS932Oracle, raw [RawNameSize]byte) (string, error) {
	base := raw[0:8]
	ext := raw[8:11]

	baseCopy := append([]byte{}, base...)
	if baseCopy[0] == deletedEscapeByte {
		baseCopy[0] = deletedSentinel
	}

	baseName, err := decodeNamePart(oracle, baseCopy)
	if err != nil {
		return "", err
	}
	extName, err := decodeNamePart(oracle, ext)
	if err != nil {
		return "", err
	}

	baseName = strings.TrimRight(baseName, " ")
	extName = strings.TrimRight(extName, " ")

	if extName == "" {
		return baseName, nil
	}
	return baseName + "." + extName, nil
}

// decodeNamePart walks an MS932 byte stream, using IsLeadByte to detect
// two-byte sequences, mapping each code point back to Unicode and then
// UTF-8.
func decodeNamePart(oracle MS932Oracle, part []byte) (string, error) {
	var runes []rune

	for i := 0; i < len(part); {
		b := part[i]
		var code uint16
		var size int

		if oracle.IsLeadByte(b) {
			if i+1 >= len(part) {
				return "", errs.NewWithMessage(errs.EINVAL, "truncated ms932 sequence")
			}
			code = uint16(b)<<8 | uint16(part[i+1])
			size = 2
		} else {
			code = uint16(b)
			size = 1
		}

		cp, ok := oracle.MS932ToUnicode(code)
		if !ok {
			return "", errs.NewWithMessage(errs.EINVAL, "code point has no Unicode mapping")
		}
		runes = append(runes, cp)
		i += size
	}

	utf8Bytes, err := EncodeUTF8(runes)
	if err != nil {
		return "", err
	}
	return string(utf8Bytes), nil
}

// canonicalHexFallback renders the raw 11 bytes as hex so that a name that
// can't be decoded is still representable in a host directory listing.
func canonicalHexFallback(raw [RawNameSize]byte) string {
	return hex.EncodeToString(raw[:])
}

// IsEndOfDirectory reports whether the first name byte marks the physical
// end of a directory container (spec.md §3: name[0] == 0x00).
func IsEndOfDirectory(nameFirstByte byte) bool {
	return nameFirstByte == endOfDirectoryByte
}

// IsDeletedEntry reports whether the first name byte marks a deleted
// directory entry (spec.md §3: name[0] == 0xE5).
func IsDeletedEntry(nameFirstByte byte) bool {
	return nameFirstByte == deletedSentinel
}

// DeletedSentinelByte and EscapeByteForE5 expose the two reserved byte values used
// by the 0xE5/0x05 substitution trick for callers that need to write them
// directly (e.g. unlink, which sets name[0] = 0xE5).
const (
	DeletedSentinelByte = deletedSentinel
	EscapeByteForE5     = deletedEscapeByte
)
