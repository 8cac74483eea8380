package fat12

import (
	"encoding/binary"
	"time"

	"github.com/tunbehau/hdifat12/codec"
)

// DirentSize is the size of one packed directory entry.
const DirentSize = 32

// Attribute flags, spec.md §3.
const (
	AttrReadOnly   uint8 = 0x01
	AttrHidden     uint8 = 0x02
	AttrSystem     uint8 = 0x04
	AttrVolumeID   uint8 = 0x08
	AttrDirectory  uint8 = 0x10
	AttrArchive    uint8 = 0x20
)

// RawDirent is the on-disk layout of a single 32-byte directory entry.
type RawDirent struct {
	Name              [11]byte
	Attr              uint8
	Reserved          uint8
	CreateTimeTenth   uint8
	CreateTime        uint16
	CreateDate        uint16
	LastAccessDate    uint16
	FirstClusterHigh  uint16
	WriteTime         uint16
	WriteDate         uint16
	FirstClusterLow   uint16
	Size              uint32
}

// Dirent is a RawDirent bound to the live bytes it was parsed from, so
// mutations write straight back into the volume's buffer.
type Dirent struct {
	Raw    RawDirent
	Region Region
}

// ParseDirent decodes a 32-byte slot.
func ParseDirent(region Region) Dirent {
	buf := region.Bytes()
	raw := RawDirent{}
	copy(raw.Name[:], buf[0:11])
	raw.Attr = buf[11]
	raw.Reserved = buf[12]
	raw.CreateTimeTenth = buf[13]
	raw.CreateTime = binary.LittleEndian.Uint16(buf[14:16])
	raw.CreateDate = binary.LittleEndian.Uint16(buf[16:18])
	raw.LastAccessDate = binary.LittleEndian.Uint16(buf[18:20])
	raw.FirstClusterHigh = binary.LittleEndian.Uint16(buf[20:22])
	raw.WriteTime = binary.LittleEndian.Uint16(buf[22:24])
	raw.WriteDate = binary.LittleEndian.Uint16(buf[24:26])
	raw.FirstClusterLow = binary.LittleEndian.Uint16(buf[26:28])
	raw.Size = binary.LittleEndian.Uint32(buf[28:32])
	return Dirent{Raw: raw, Region: region}
}

// WriteBack serializes d.Raw back into d.Region's live bytes.
func (d *Dirent) WriteBack() {
	buf := d.Region.Bytes()
	copy(buf[0:11], d.Raw.Name[:])
	buf[11] = d.Raw.Attr
	buf[12] = d.Raw.Reserved
	buf[13] = d.Raw.CreateTimeTenth
	binary.LittleEndian.PutUint16(buf[14:16], d.Raw.CreateTime)
	binary.LittleEndian.PutUint16(buf[16:18], d.Raw.CreateDate)
	binary.LittleEndian.PutUint16(buf[18:20], d.Raw.LastAccessDate)
	binary.LittleEndian.PutUint16(buf[20:22], d.Raw.FirstClusterHigh)
	binary.LittleEndian.PutUint16(buf[22:24], d.Raw.WriteTime)
	binary.LittleEndian.PutUint16(buf[24:26], d.Raw.WriteDate)
	binary.LittleEndian.PutUint16(buf[26:28], d.Raw.FirstClusterLow)
	binary.LittleEndian.PutUint32(buf[28:32], d.Raw.Size)
}

// IsValid implements spec.md §3's validity predicate: name[0] not in
// {0x00, 0xE5}, first_cluster_low != 1, and not (first_cluster_low == 0
// and size > 0).
func (d *Dirent) IsValid() bool {
	first := d.Raw.Name[0]
	if codec.IsEndOfDirectory(first) || codec.IsDeletedEntry(first) {
		return false
	}
	if d.Raw.FirstClusterLow == 1 {
		return false
	}
	if d.Raw.FirstClusterLow == 0 && d.Raw.Size > 0 {
		return false
	}
	return true
}

func (d *Dirent) IsDirectory() bool {
	return d.Raw.Attr&AttrDirectory != 0
}

func (d *Dirent) IsReadOnly() bool {
	return d.Raw.Attr&AttrReadOnly != 0
}

func (d *Dirent) IsVolumeLabel() bool {
	return d.Raw.Attr&AttrVolumeID != 0
}

// IsDotOrDotDot reports whether this entry is "." or "..".
func (d *Dirent) IsDotOrDotDot() bool {
	return d.Raw.Name[0] == '.' && (d.Raw.Name[1] == ' ' || d.Raw.Name[1] == '.')
}

// IsEndOfDirectory reports whether this slot marks the physical end of
// the directory container.
func (d *Dirent) IsEndOfDirectory() bool {
	return codec.IsEndOfDirectory(d.Raw.Name[0])
}

// IsDeleted reports whether this slot is a deleted (but not yet
// compacted) entry.
func (d *Dirent) IsDeleted() bool {
	return codec.IsDeletedEntry(d.Raw.Name[0])
}

// MarkDeleted sets name[0] = 0xE5 (unlink's second step, spec.md §4.5's
// Forget).
func (d *Dirent) MarkDeleted() {
	d.Raw.Name[0] = codec.DeletedSentinelByte
	d.WriteBack()
}

// MarkEndOfDirectory sets name[0] = 0x00 (directory compaction).
func (d *Dirent) MarkEndOfDirectory() {
	d.Raw.Name[0] = 0x00
	d.WriteBack()
}

// Zero clears the entire 32-byte slot (Unlink's "zero the entire entry").
func (d *Dirent) Zero() {
	buf := d.Region.Bytes()
	for i := range buf {
		buf[i] = 0
	}
	d.Raw = RawDirent{}
}

// FirstCluster returns FirstClusterLow. FirstClusterHigh is ignored, since
// FAT12 always keeps it 0 (spec.md §3).
func (d *Dirent) FirstCluster() uint16 {
	return d.Raw.FirstClusterLow
}

// DateFromInt decodes a packed FAT date: day = bits[0:5), month =
// bits[5:9), year = bits[9:16) + 1980 (spec.md §4.5's Stat).
func DateFromInt(value uint16) (year int, month time.Month, day int) {
	day = int(value & 0x1F)
	month = time.Month((value >> 5) & 0x0F)
	year = 1980 + int(value>>9)
	return
}

// TimeFromInt decodes a packed FAT time: seconds = bits[0:5)*2,
// minutes = bits[5:11), hours = bits[11:16).
func TimeFromInt(value uint16) (hour, minute, second int) {
	second = int(value&0x1F) * 2
	minute = int((value >> 5) & 0x3F)
	hour = int(value >> 11)
	return
}

// TimestampFromParts combines a packed date and time into a time.Time.
// Invalid fields (month 0 or 13+, day 0) fall back to 1980-01-01 00:00
// (spec.md §4.5's Stat: "Invalid date fields yield 1980-01-01 00:00").
func TimestampFromParts(datePart, timePart uint16) time.Time {
	year, month, day := DateFromInt(datePart)
	if month < time.January || month > time.December || day == 0 {
		return time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	hour, minute, second := TimeFromInt(timePart)
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}
