package hdiimage_test

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunbehau/hdifat12/hdiimage"
	"github.com/xaionaro-go/bytesextra"
)

func buildHDIWrappedPayload(payload []byte) []byte {
	header := make([]byte, hdiimage.HDIHeaderSize)
	binary.LittleEndian.PutUint32(header[8:12], hdiimage.HDIHeaderSize) // header_size
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(payload)))  // data_size
	return append(header, payload...)
}

func TestOpenStripsHDIHeader(t *testing.T) {
	payload := []byte("FAT12-PAYLOAD-BYTES")
	full := buildHDIWrappedPayload(payload)

	f, err := os.CreateTemp(t.TempDir(), "image-*.hdi")
	require.NoError(t, err)
	_, err = f.Write(full)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	img, err := hdiimage.Open(f.Name())
	require.NoError(t, err)
	require.NotNil(t, img.Header)
	assert.Equal(t, payload, img.Payload())
}

func TestCommitWritesShadowThenRenames(t *testing.T) {
	path := t.TempDir() + "/image.bin"
	original := []byte("ORIGINAL-DATA")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	img, err := hdiimage.Open(path)
	require.NoError(t, err)

	stream := bytesextra.NewReadWriteSeeker(img.Buffer)
	_, err = stream.Write([]byte("MUTATED-DATAX"))
	require.NoError(t, err)

	require.NoError(t, img.Commit())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MUTATED-DATAX", string(data))

	_, statErr := os.Stat(path + ".shadow")
	assert.True(t, os.IsNotExist(statErr))
}
