package mcap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZSTDCompressorRoundTrip(t *testing.T) {
	original := []byte("some chunk payload bytes, repeated repeated repeated repeated")
	compress := NewZSTDCompressor(CompressionLevelDefault)

	name, compressed, err := compress(original)
	require.NoError(t, err)
	assert.Equal(t, string(CompressionZSTD), name)

	decompress := defaultDecompressors()[name]
	require.NotNil(t, decompress)
	out, err := decompress(compressed, uint64(len(original)))
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestLZ4CompressorRoundTrip(t *testing.T) {
	original := []byte("some other chunk payload bytes, repeated repeated repeated")
	compress := NewLZ4Compressor(CompressionLevelFast)

	name, compressed, err := compress(original)
	require.NoError(t, err)
	assert.Equal(t, string(CompressionLZ4), name)

	decompress := defaultDecompressors()[name]
	require.NotNil(t, decompress)
	out, err := decompress(compressed, uint64(len(original)))
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestCompressorForFormatUnsupported(t *testing.T) {
	_, err := compressorForFormat(CompressionFormat("lz77"), CompressionLevelDefault)
	var unsupported *ErrUnsupportedCompression
	assert.ErrorAs(t, err, &unsupported)
}

func TestCompressorForFormatNoneReturnsNil(t *testing.T) {
	fn, err := compressorForFormat(CompressionNone, CompressionLevelDefault)
	require.NoError(t, err)
	assert.Nil(t, fn)
}

func TestCompressionLevelFromString(t *testing.T) {
	assert.Equal(t, CompressionLevelFastest, CompressionLevelFromString("fastest"))
	assert.Equal(t, CompressionLevelSlowest, CompressionLevelFromString("slowest"))
	assert.Equal(t, CompressionLevelDefault, CompressionLevelFromString("bogus"))
}

// reverseCompressor implements §8 scenario 6: a custom, non-builtin
// compression scheme that simply reverses the byte order.
func reverseCompressor(uncompressed []byte) (string, []byte, error) {
	out := make([]byte, len(uncompressed))
	for i, b := range uncompressed {
		out[len(out)-1-i] = b
	}
	return "reverse", out, nil
}

func reverseDecompressor(compressed []byte, _ uint64) ([]byte, error) {
	out := make([]byte, len(compressed))
	for i, b := range compressed {
		out[len(out)-1-i] = b
	}
	return out, nil
}

func TestCustomCompressorRoundTrip(t *testing.T) {
	original := []byte("abcdefg")
	name, compressed, err := reverseCompressor(original)
	require.NoError(t, err)
	assert.Equal(t, "reverse", name)
	assert.Equal(t, []byte("gfedcba"), compressed)

	out, err := reverseDecompressor(compressed, uint64(len(original)))
	require.NoError(t, err)
	assert.Equal(t, original, out)
}
