package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunbehau/hdifat12/codec"
)

func TestDecodeUTF8Strict_ASCII(t *testing.T) {
	runes, err := codec.DecodeUTF8Strict([]byte("HELLO"))
	require.NoError(t, err)
	assert.Equal(t, []rune("HELLO"), runes)
}

func TestDecodeUTF8Strict_BadContinuation(t *testing.T) {
	_, err := codec.DecodeUTF8Strict([]byte{0xC2, 0x20})
	assert.Error(t, err)
}

func TestEncodeUTF8_RoundTrip(t *testing.T) {
	runes := []rune("hello")
	out, err := codec.EncodeUTF8(runes)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestUpperFold(t *testing.T) {
	assert.Equal(t, 'A', codec.UpperFold('a'))
	assert.Equal(t, 'Z', codec.UpperFold('z'))
	assert.Equal(t, '1', codec.UpperFold('1'))
}

func TestEncodeDecodeDOSName_ASCIIRoundTrip(t *testing.T) {
	oracle := codec.NewMS932Oracle()

	raw, err := codec.EncodeDOSName(oracle, "hello.txt")
	require.NoError(t, err)

	name := codec.DecodeDOSName(oracle, raw)
	assert.Equal(t, "HELLO.TXT", name)
}

func TestEncodeDOSName_NameTooLong(t *testing.T) {
	oracle := codec.NewMS932Oracle()
	_, err := codec.EncodeDOSName(oracle, "averylongname.txt")
	assert.Error(t, err)
}

func TestEncodeDOSName_NoExtension(t *testing.T) {
	oracle := codec.NewMS932Oracle()
	raw, err := codec.EncodeDOSName(oracle, "readme")
	require.NoError(t, err)
	assert.Equal(t, "README", codec.DecodeDOSName(oracle, raw))
}
