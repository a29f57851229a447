package mcap

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32IEEEMatchesStdlib(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	assert.Equal(t, crc32.ChecksumIEEE(data), crc32IEEE(data))
}

func TestRunningCRCIncrementalMatchesOneShot(t *testing.T) {
	data := []byte("some mcap record bytes, split across writes")
	want := crc32IEEE(data)

	crc := newRunningCRC()
	crc.write(data[:10])
	crc.write(data[10:])
	assert.Equal(t, want, crc.sum())
}

func TestContinueRunningCRCResumesAccumulator(t *testing.T) {
	part1 := []byte("first half")
	part2 := []byte("second half")

	fromScratch := newRunningCRC()
	fromScratch.write(part1)
	fromScratch.write(part2)

	resumed := continueRunningCRC(crc32IEEE(part1))
	resumed.write(part2)

	assert.Equal(t, fromScratch.sum(), resumed.sum())
}

func TestCRCWriterAccumulatesOverWrites(t *testing.T) {
	var dst bytes.Buffer
	w := newCRCWriter(&dst)
	_, err := w.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", dst.String())
	assert.Equal(t, crc32IEEE([]byte("hello world")), w.Checksum())
}

func TestCRCReaderOnlyAccumulatesWhenEnabled(t *testing.T) {
	data := []byte("attachment body")

	enabled := newCRCReader(bytes.NewReader(data), true)
	buf := make([]byte, len(data))
	_, err := enabled.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, crc32IEEE(data), enabled.Checksum())

	disabled := newCRCReader(bytes.NewReader(data), false)
	_, err = disabled.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), disabled.Checksum())
}

func TestWriteSizerTracksPositionAndOptionalCRC(t *testing.T) {
	var dst bytes.Buffer
	ws := newWriteSizer(&dst, true, newRunningCRC())
	n, err := ws.Write([]byte("12345"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 5, ws.Position())
	assert.Equal(t, crc32IEEE([]byte("12345")), ws.Checksum())

	wsNoCRC := newWriteSizer(&dst, false, newRunningCRC())
	_, err = wsNoCRC.Write([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), wsNoCRC.Checksum())
}
