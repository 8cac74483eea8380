package fat12

import (
	"bytes"
	"fmt"

	"github.com/tunbehau/hdifat12/errs"
)

// EndOfChain is the end-of-chain sentinel this implementation writes.
// Reads treat any value >= 0xFF8 as end-of-chain (spec.md §3) but only
// 0xFFF is ever produced.
const EndOfChain uint16 = 0xFFF

// BadCluster marks a cluster the FAT itself flags unusable.
const BadCluster uint16 = 0xFF7

// eocReadThreshold is the low end of the "treat as EOC on read" range.
const eocReadThreshold uint16 = 0xFF8

// Volume is a validated BPB plus its five derived regions (spec.md §3's
// Fat12Volume): the overall volume slice, one region per FAT copy, the
// root directory region, and the data region, along with cluster size
// and the maximum valid cluster index.
type Volume struct {
	BPB *BPB

	VolumeRegion Region
	FATs         []Region
	RootRegion   Region
	DataRegion   Region

	ClusterSize       int
	MaxCluster        int
	DirentsPerCluster int

	buffer []byte
}

// NewVolume derives a Volume from a validated BPB (spec.md §4.2's "Region
// derivation").
func NewVolume(buffer []byte, bpb *BPB) (*Volume, error) {
	raw := &bpb.Raw
	bytesPerSector := int(raw.BytesPerSector)
	baseOffset := bpb.Region.Offset

	volumeBytes := int(bpb.TotalSectors()) * bytesPerSector
	if baseOffset+volumeBytes > len(buffer) {
		return nil, errs.NewWithMessage(errs.EUCLEAN, "volume extends past end of buffer")
	}

	volumeRegion, err := NewRegion(buffer, baseOffset, volumeBytes)
	if err != nil {
		return nil, err
	}

	fatOffset := int(raw.ReservedSectors) * bytesPerSector
	fatSize := int(raw.SectorsPerFAT) * bytesPerSector
	fatRegionSize := int(raw.FATCount) * fatSize

	fats := make([]Region, raw.FATCount)
	for i := 0; i < int(raw.FATCount); i++ {
		fatRegion, err := volumeRegion.Sub(fatOffset+i*fatSize, fatSize)
		if err != nil {
			return nil, err
		}
		fats[i] = fatRegion
	}

	rootDirOffset := fatOffset + fatRegionSize
	rootDirSize := int(raw.RootEntries) * 32
	rootRegion, err := volumeRegion.Sub(rootDirOffset, rootDirSize)
	if err != nil {
		return nil, err
	}

	dataOffset := rootDirOffset + rootDirSize
	dataSize := volumeRegion.Length - dataOffset
	dataRegion, err := volumeRegion.Sub(dataOffset, dataSize)
	if err != nil {
		return nil, err
	}

	clusterSize := int(raw.SectorsPerCluster) * bytesPerSector
	if clusterSize == 0 {
		return nil, errs.NewWithMessage(errs.EUCLEAN, "cluster size is zero")
	}

	maxByData := dataSize / clusterSize
	maxByFat := (fatSize * 8) / 12
	maxCluster := min3(maxByData, 4094, maxByFat)

	v := &Volume{
		BPB:               bpb,
		VolumeRegion:      volumeRegion,
		FATs:              fats,
		RootRegion:        rootRegion,
		DataRegion:        dataRegion,
		ClusterSize:       clusterSize,
		MaxCluster:        maxCluster,
		DirentsPerCluster: clusterSize / DirentSize,
		buffer:            buffer,
	}

	return v, nil
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// CheckFATConsistency compares every redundant FAT copy byte-for-byte
// against FAT 0 (spec.md §4.2's "FAT consistency").
func (v *Volume) CheckFATConsistency() error {
	if len(v.FATs) == 0 {
		return nil
	}
	first := v.FATs[0].Bytes()
	for i := 1; i < len(v.FATs); i++ {
		if !bytes.Equal(first, v.FATs[i].Bytes()) {
			return errs.NewWithMessage(errs.EUCLEAN, "FAT copies disagree")
		}
	}
	return nil
}

// CheckReservedFATEntries verifies FAT entry 0 and entry 1 against their
// required values (spec.md §3; open question decision #5 in SPEC_FULL.md
// fixes the original's mis-reported diagnostic for entry 1).
func (v *Volume) CheckReservedFATEntries() (warnings []string) {
	fat := v.FAT(0)

	expectedEntry0 := 0xF00 | uint16(v.BPB.Raw.MediaType)
	if got := fat.Get(0); got != expectedEntry0 {
		warnings = append(warnings, sprintfEntryWarning(0, expectedEntry0, got))
	}

	if got := fat.Get(1); got != EndOfChain {
		warnings = append(warnings, sprintfEntryWarning(1, EndOfChain, got))
	}

	return warnings
}

func sprintfEntryWarning(index int, expected, got uint16) string {
	return fmt.Sprintf("Fat %d entry is not 0x%X, 0x%X instead", index, expected, got)
}

// Sync copies FAT 0 over every other FAT copy, the last step before
// persisting (spec.md §4.2's "Sync").
func (v *Volume) Sync() {
	if len(v.FATs) == 0 {
		return
	}
	first := v.FATs[0].Bytes()
	for i := 1; i < len(v.FATs); i++ {
		copy(v.FATs[i].Bytes(), first)
	}
}

// FAT returns a FATChain view of the i-th FAT copy.
func (v *Volume) FAT(i int) *FATChain {
	return &FATChain{region: v.FATs[i], maxCluster: v.MaxCluster}
}

// FreeClusterCount counts FAT entries equal to 0 in [2, MaxCluster)
// (spec.md §8's free-count monotonicity property; SPEC_FULL.md §12's
// free-cluster accounting).
func (v *Volume) FreeClusterCount() int {
	fat := v.FAT(0)
	count := 0
	for i := 2; i < v.MaxCluster; i++ {
		if fat.Get(uint16(i)) == 0 {
			count++
		}
	}
	return count
}
