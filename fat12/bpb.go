package fat12

import (
	"bytes"
	"encoding/binary"

	"github.com/hashicorp/go-multierror"
	"github.com/tunbehau/hdifat12/errs"
)

// BPBSize is the fixed size of the BIOS Parameter Block.
const BPBSize = 512

// RawBPB is the on-disk layout of the 512-byte BIOS Parameter Block,
// decoded field-by-field the way the teacher's RawFATBootSectorWithBPB
// does for FAT16/32.
type RawBPB struct {
	JumpBoot          [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATCount          uint8
	RootEntries       uint16
	TotalSectors16    uint16
	MediaType         uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	HeadCount         uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	DriveNumber       uint8
	Reserved1         uint8
	BootSignature     uint8
	VolumeSerial      uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
}

// BPB is a validated RawBPB plus the region it was read from and the
// warnings accumulated while validating it.
type BPB struct {
	Raw      RawBPB
	Region   Region
	Warnings error
}

// ScanForBPB steps through buffer in 512-byte strides looking for a slot
// that validates as a BPB, returning the first hit (spec.md §4.2's "BPB
// scan"). Fails with EUCLEAN ("NoBpb") if none validates.
func ScanForBPB(buffer []byte) (*BPB, error) {
	for offset := 0; offset+BPBSize <= len(buffer); offset += BPBSize {
		region, err := NewRegion(buffer, offset, BPBSize)
		if err != nil {
			break
		}

		bpb, parseErr := parseBPB(region)
		if parseErr != nil {
			continue
		}

		if fatalErr := checkBPBFatal(&bpb.Raw); fatalErr != nil {
			continue
		}

		bpb.Warnings = checkBPBWarnings(&bpb.Raw, region)
		return bpb, nil
	}

	return nil, errs.NewWithMessage(errs.EUCLEAN, "no valid BPB found in image")
}

func parseBPB(region Region) (*BPB, error) {
	raw := RawBPB{}
	reader := bytes.NewReader(region.Bytes())
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return nil, errs.NewFromError(errs.EIO, err)
	}
	return &BPB{Raw: raw, Region: region}, nil
}

// checkBPBFatal runs the validations that disqualify a candidate BPB
// outright: jump prefix, bytes-per-sector, sectors-per-cluster, media
// type, root-entries alignment, drive number, reserved byte, and at
// least one of total_sectors_16/32 set.
func checkBPBFatal(raw *RawBPB) error {
	var result error

	if !checkJump(raw.JumpBoot) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "bad jump instruction prefix"))
	}
	if !checkBytesPerSector(raw.BytesPerSector) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "bad bytes_per_sector"))
	}
	if !checkSectorsPerCluster(raw.SectorsPerCluster) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "bad sectors_per_cluster"))
	}
	if !checkMediaType(raw.MediaType) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "bad media_type"))
	}
	if !checkRootEntries(raw.RootEntries, raw.BytesPerSector) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "root_entries*32 not a multiple of bytes_per_sector"))
	}
	if !checkDriveNumber(raw.DriveNumber) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "bad drive_number"))
	}
	if raw.Reserved1 != 0 {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "reserved byte must be 0"))
	}
	if !checkSectorCount(raw.TotalSectors16, raw.TotalSectors32) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EINVAL, "at least one of total_sectors_16/32 must be set"))
	}

	return result
}

// checkBPBWarnings runs the validations that are reported but never
// disqualify the BPB: the trailing 0x55/0xAA sector signature and the
// both-sector-counts-set case (§4.2: "a warning is emitted and
// total_sectors_16 is used").
func checkBPBWarnings(raw *RawBPB, region Region) error {
	var result error

	buf := region.Bytes()
	if len(buf) >= BPBSize && (buf[BPBSize-2] != 0x55 || buf[BPBSize-1] != 0xAA) {
		result = multierror.Append(result, errs.NewWithMessage(errs.EOK, "trailing signature is not 0x55 0xAA"))
	}
	if raw.TotalSectors16 != 0 && raw.TotalSectors32 != 0 {
		result = multierror.Append(result, errs.NewWithMessage(errs.EOK, "both total_sectors_16 and total_sectors_32 set; using total_sectors_16"))
	}

	return result
}

// checkJump accepts the two boot-sector jump encodings spec.md §3
// allows: a short jump followed by a nop (0xEB ?? 0x90), or a near jump
// (0xE9 ?? ??).
func checkJump(jump [3]byte) bool {
	if jump[0] == 0xEB {
		return jump[2] == 0x90
	}
	return jump[0] == 0xE9
}

func checkBytesPerSector(v uint16) bool {
	switch v {
	case 512, 1024, 2048, 4096:
		return true
	}
	return false
}

func checkSectorsPerCluster(v uint8) bool {
	return v != 0 && (v&(v-1)) == 0 && v <= 128
}

func checkMediaType(v uint8) bool {
	if v == 0xF0 {
		return true
	}
	return v >= 0xF8
}

func checkRootEntries(rootEntries, bytesPerSector uint16) bool {
	if bytesPerSector == 0 {
		return false
	}
	return (uint32(rootEntries)*32)%uint32(bytesPerSector) == 0
}

func checkDriveNumber(v uint8) bool {
	return v == 0x00 || v == 0x80
}

// checkSectorCount fails only when neither total_sectors_16 nor
// total_sectors_32 is set; both being set is a warning, not a fatal
// error (checkBPBWarnings).
func checkSectorCount(sectors16 uint16, sectors32 uint32) bool {
	return sectors16 != 0 || sectors32 != 0
}

// TotalSectors returns total_sectors_16 if set, else total_sectors_32.
func (b *BPB) TotalSectors() uint32 {
	if b.Raw.TotalSectors16 != 0 {
		return uint32(b.Raw.TotalSectors16)
	}
	return b.Raw.TotalSectors32
}
