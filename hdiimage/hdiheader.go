package hdiimage

import (
	"encoding/binary"

	"github.com/tunbehau/hdifat12/errs"
)

// HDIHeaderSize is the fixed size of the HDI container header (spec.md
// §6: "32 bytes, little-endian, first u32 reserved == 0").
const HDIHeaderSize = 32

// HDIHeader is the optional container header a FAT12 image may be
// wrapped in.
type HDIHeader struct {
	Reserved       uint32
	Type           uint32
	HeaderSize     uint32
	DataSize       uint32
	BytesPerSector uint32
	Sectors        uint32
	Heads          uint32
	Cylinders      uint32
}

// ParseHDIHeader decodes the first 32 bytes of buf as an HDI header,
// failing if the reserved field isn't 0.
func ParseHDIHeader(buf []byte) (*HDIHeader, error) {
	if len(buf) < HDIHeaderSize {
		return nil, errs.NewWithMessage(errs.EINVAL, "buffer too small for HDI header")
	}

	h := &HDIHeader{
		Reserved:       binary.LittleEndian.Uint32(buf[0:4]),
		Type:           binary.LittleEndian.Uint32(buf[4:8]),
		HeaderSize:     binary.LittleEndian.Uint32(buf[8:12]),
		DataSize:       binary.LittleEndian.Uint32(buf[12:16]),
		BytesPerSector: binary.LittleEndian.Uint32(buf[16:20]),
		Sectors:        binary.LittleEndian.Uint32(buf[20:24]),
		Heads:          binary.LittleEndian.Uint32(buf[24:28]),
		Cylinders:      binary.LittleEndian.Uint32(buf[28:32]),
	}

	if h.Reserved != 0 {
		return nil, errs.NewWithMessage(errs.EINVAL, "HDI header reserved field is not 0")
	}

	return h, nil
}

// LooksLikeHDIHeader reports whether buf's first 32 bytes parse as a
// plausible HDI header, used to decide whether to skip past it before
// scanning for a BPB.
func LooksLikeHDIHeader(buf []byte) bool {
	h, err := ParseHDIHeader(buf)
	if err != nil {
		return false
	}
	return h.HeaderSize > 0 && int(h.HeaderSize) < len(buf)
}
