package inode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunbehau/hdifat12/fat12"
	"github.com/tunbehau/hdifat12/inode"
)

func TestMountEmptyRoot(t *testing.T) {
	vol := mustMountFixture(t, 8)
	sess, err := inode.Mount(vol)
	require.NoError(t, err)

	children, err := sess.ReadDir(inode.RootID)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestCreateWriteReadRelease(t *testing.T) {
	vol := mustMountFixture(t, 8)
	sess, err := inode.Mount(vol)
	require.NoError(t, err)

	child, handle, err := sess.Create(inode.RootID, "a.txt")
	require.NoError(t, err)
	assert.False(t, child.IsDir)

	n, err := sess.Write(handle, 0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, sess.Release(handle))

	found, err := sess.Lookup(inode.RootID, "a.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 5, found.Stat().Size)

	handle2, err := sess.Open(found.ID, false, false)
	require.NoError(t, err)

	data, err := sess.Read(handle2, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestUnlinkWhileOpenDefersDeletion(t *testing.T) {
	vol := mustMountFixture(t, 8)
	sess, err := inode.Mount(vol)
	require.NoError(t, err)

	child, handle, err := sess.Create(inode.RootID, "c")
	require.NoError(t, err)

	require.NoError(t, sess.Unlink(inode.RootID, "c"))

	_, lookupErr := sess.Lookup(inode.RootID, "c")
	assert.Error(t, lookupErr)

	data, err := sess.Read(handle, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, sess.Release(handle))
	require.NoError(t, sess.Forget(child.ID, 1))

	children, err := sess.ReadDir(inode.RootID)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func mustMountFixture(t *testing.T, clusters int) *fat12.Volume {
	t.Helper()
	buf := buildTestImage(clusters)
	bpb, err := fat12.ScanForBPB(buf)
	require.NoError(t, err)
	vol, err := fat12.NewVolume(buf, bpb)
	require.NoError(t, err)
	return vol
}
