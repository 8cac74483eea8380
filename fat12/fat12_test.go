package fat12_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunbehau/hdifat12/fat12"
)

func TestScanAndMount(t *testing.T) {
	buf := buildImage(8)
	vol := mustMount(buf)

	assert.Equal(t, 512, vol.ClusterSize)
	assert.True(t, vol.MaxCluster > 0)
	require.NoError(t, vol.CheckFATConsistency())
}

func TestFATChainGetSetPreservesNeighbour(t *testing.T) {
	buf := buildImage(8)
	vol := mustMount(buf)
	fat := vol.FAT(0)

	// Bug #4 regression: setting an even entry must not clobber the
	// neighbouring odd entry's bits, and vice versa.
	fat.Set(2, 0x0ABC)
	fat.Set(3, 0x0DEF)

	assert.EqualValues(t, 0x0ABC, fat.Get(2))
	assert.EqualValues(t, 0x0DEF, fat.Get(3))

	fat.Set(2, 0x0111)
	assert.EqualValues(t, 0x0DEF, fat.Get(3), "writing entry 2 must not disturb entry 3")

	fat.Set(3, 0x0222)
	assert.EqualValues(t, 0x0111, fat.Get(2), "writing entry 3 must not disturb entry 2")
}

func TestAllocateAndFreeChain(t *testing.T) {
	buf := buildImage(4)
	vol := mustMount(buf)
	fat := vol.FAT(0)

	first, err := fat.Allocate()
	require.NoError(t, err)
	fat.Set(first, fat12.EndOfChain)

	second, err := fat.GrowChain(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, fat12.IsEndOfChain(fat.Get(second)))

	fat.FreeChain(first)
	assert.EqualValues(t, 0, fat.Get(first))
	assert.EqualValues(t, 0, fat.Get(second))
}

func TestFileWriteReadAcrossClusterBoundary(t *testing.T) {
	buf := buildImage(8)
	vol := mustMount(buf)

	dir := fat12.NewRootDirectory(vol)
	slot, err := dir.AllocateSlot()
	require.NoError(t, err)

	f := &fat12.File{Volume: vol, Dirent: slot}

	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i % 256)
	}

	n, err := f.Write(0, data)
	require.NoError(t, err)
	assert.Equal(t, 600, n)
	assert.EqualValues(t, 600, slot.Raw.Size)

	readBack := f.Read(0, 600)
	assert.Equal(t, data, readBack)
}

func TestFileWriteAppendAtFullClusterBoundary(t *testing.T) {
	buf := buildImage(8)
	vol := mustMount(buf)

	dir := fat12.NewRootDirectory(vol)
	slot, err := dir.AllocateSlot()
	require.NoError(t, err)

	f := &fat12.File{Volume: vol, Dirent: slot}

	// Bug regression: a file whose size is an exact multiple of
	// ClusterSize must accept a follow-up Write starting at offset ==
	// size (a no-hole append), not reject it as BadSeek.
	first := make([]byte, vol.ClusterSize)
	for i := range first {
		first[i] = byte(i % 256)
	}
	n, err := f.Write(0, first)
	require.NoError(t, err)
	assert.Equal(t, vol.ClusterSize, n)
	assert.EqualValues(t, vol.ClusterSize, slot.Raw.Size)

	second := []byte("appended after a full cluster")
	n, err = f.Write(len(first), second)
	require.NoError(t, err)
	assert.Equal(t, len(second), n)
	assert.EqualValues(t, len(first)+len(second), slot.Raw.Size)

	readBack := f.Read(0, len(first)+len(second))
	assert.Equal(t, first, readBack[:len(first)])
	assert.Equal(t, second, readBack[len(first):])
}

func TestDirectoryCompactAfterUnlink(t *testing.T) {
	buf := buildImage(4)
	vol := mustMount(buf)

	dir := fat12.NewRootDirectory(vol)
	slot, err := dir.AllocateSlot()
	require.NoError(t, err)

	f := &fat12.File{Volume: vol, Dirent: slot}
	_, err = f.Write(0, []byte("hi"))
	require.NoError(t, err)

	f.Unlink()
	require.NoError(t, dir.Compact())

	entries, err := dir.Entries()
	require.NoError(t, err)
	assert.True(t, entries[0].IsEndOfDirectory())
}

func TestFreeClusterCountMonotonic(t *testing.T) {
	buf := buildImage(8)
	vol := mustMount(buf)

	before := vol.FreeClusterCount()

	dir := fat12.NewRootDirectory(vol)
	slot, err := dir.AllocateSlot()
	require.NoError(t, err)

	f := &fat12.File{Volume: vol, Dirent: slot}
	_, err = f.Write(0, make([]byte, 600))
	require.NoError(t, err)

	afterWrite := vol.FreeClusterCount()
	assert.Equal(t, before-2, afterWrite)

	f.Unlink()
	afterUnlink := vol.FreeClusterCount()
	assert.Equal(t, before, afterUnlink)
}
