package fat12_test

import (
	"encoding/binary"

	"github.com/tunbehau/hdifat12/fat12"
)

// buildImage assembles a minimal valid FAT12 image: 1 reserved sector,
// 1 FAT copy, 16 root entries, 512-byte sectors/clusters, entirely
// in-memory (mirrors the teacher's testing/images.go style of
// hand-built fixtures, but shaped for FAT12 instead of FAT16/32).
func buildImage(dataClusters int) []byte {
	const bytesPerSector = 512
	const sectorsPerCluster = 1
	const reservedSectors = 1
	const fatCount = 1
	const rootEntries = 16

	fatSectors := 1
	rootDirSectors := (rootEntries * 32) / bytesPerSector
	dataSectors := dataClusters * sectorsPerCluster
	totalSectors := reservedSectors + fatCount*fatSectors + rootDirSectors + dataSectors

	buf := make([]byte, totalSectors*bytesPerSector)

	buf[0] = 0xEB
	buf[1] = 0x3C
	buf[2] = 0x90
	binary.LittleEndian.PutUint16(buf[11:13], bytesPerSector)
	buf[13] = sectorsPerCluster
	binary.LittleEndian.PutUint16(buf[14:16], reservedSectors)
	buf[16] = fatCount
	binary.LittleEndian.PutUint16(buf[17:19], rootEntries)
	binary.LittleEndian.PutUint16(buf[19:21], uint16(totalSectors))
	buf[21] = 0xF0
	binary.LittleEndian.PutUint16(buf[22:24], uint16(fatSectors))
	buf[36] = 0x00 // drive number
	buf[37] = 0x00 // reserved1
	buf[38] = 0x29 // boot signature marker (unused field in our BPB struct)
	buf[510] = 0x55
	buf[511] = 0xAA

	fatOffset := reservedSectors * bytesPerSector
	// Entry 0 = 0xF00 | media type, entry 1 = EOC.
	buf[fatOffset+0] = 0xF0
	buf[fatOffset+1] = 0xFF
	buf[fatOffset+2] = 0xFF

	return buf
}

func mustMount(buf []byte) *fat12.Volume {
	bpb, err := fat12.ScanForBPB(buf)
	if err != nil {
		panic(err)
	}
	vol, err := fat12.NewVolume(buf, bpb)
	if err != nil {
		panic(err)
	}
	return vol
}
