package codec

import (
	"github.com/tunbehau/hdifat12/errs"
)

// DecodeUTF8Strict decodes b into Unicode code points, rejecting malformed
// continuation bytes rather than mirroring the permissive original decoder
// (open question #1: rejected explicitly).
func DecodeUTF8Strict(b []byte) ([]rune, error) {
	runes := make([]rune, 0, len(b))

	for i := 0; i < len(b); {
		lead := b[i]
		var size int
		var cp rune

		switch {
		case lead&0x80 == 0x00:
			size, cp = 1, rune(lead)
		case lead&0xE0 == 0xC0:
			size, cp = 2, rune(lead&0x1F)
		case lead&0xF0 == 0xE0:
			size, cp = 3, rune(lead&0x0F)
		case lead&0xF8 == 0xF0:
			size, cp = 4, rune(lead&0x07)
		default:
			return nil, errs.NewWithMessage(errs.EINVAL, "invalid utf-8 leading byte")
		}

		if i+size > len(b) {
			return nil, errs.NewWithMessage(errs.EINVAL, "truncated utf-8 sequence")
		}

		for j := 1; j < size; j++ {
			cont := b[i+j]
			if cont&0xC0 != 0x80 {
				return nil, errs.NewWithMessage(errs.EINVAL, "invalid utf-8 continuation byte")
			}
			cp = (cp << 6) | rune(cont&0x3F)
		}

		runes = append(runes, cp)
		i += size
	}

	return runes, nil
}

// EncodeUTF8 encodes code points back to a UTF-8 byte slice. Code points
// above U+10FFFF fail; no surrogate-pair validation beyond that range check.
func EncodeUTF8(runes []rune) ([]byte, error) {
	out := make([]byte, 0, len(runes))
	for _, cp := range runes {
		if cp > 0x10FFFF {
			return nil, errs.NewWithMessage(errs.EINVAL, "code point out of range")
		}
		switch {
		case cp < 0x80:
			out = append(out, byte(cp))
		case cp < 0x800:
			out = append(out, byte(0xC0|(cp>>6)), byte(0x80|(cp&0x3F)))
		case cp < 0x10000:
			out = append(out,
				byte(0xE0|(cp>>12)),
				byte(0x80|((cp>>6)&0x3F)),
				byte(0x80|(cp&0x3F)))
		default:
			out = append(out,
				byte(0xF0|(cp>>18)),
				byte(0x80|((cp>>12)&0x3F)),
				byte(0x80|((cp>>6)&0x3F)),
				byte(0x80|(cp&0x3F)))
		}
	}
	return out, nil
}

// UpperFold applies the only case fold this code page recognizes: ASCII
// a-z shifted down by 0x20.
func UpperFold(cp rune) rune {
	if cp >= 0x0061 && cp <= 0x007A {
		return cp - 0x20
	}
	return cp
}
