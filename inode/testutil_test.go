package inode_test

import "encoding/binary"

// buildTestImage mirrors fat12's own test fixture builder; duplicated
// here (rather than exported from fat12) since it's only ever needed to
// drive inode-layer tests against a minimal valid volume.
func buildTestImage(dataClusters int) []byte {
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
	buf[510] = 0x55
	buf[511] = 0xAA

	fatOffset := reservedSectors * bytesPerSector
	buf[fatOffset+0] = 0xF0
	buf[fatOffset+1] = 0xFF
	buf[fatOffset+2] = 0xFF

	return buf
}
