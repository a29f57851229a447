package mcap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorPrimitivesRoundTrip(t *testing.T) {
	buf := make([]byte, 1+2+4+8)
	off := putU8(buf, 0x7f)
	off += putU16(buf[off:], 0xbeef)
	off += putU32(buf[off:], 0xdeadbeef)
	off += putU64(buf[off:], 0x0123456789abcdef)
	require.Equal(t, len(buf), off)

	c := newCursor(buf)
	u8, err := c.u8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7f), u8)

	u16, err := c.u16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), u16)

	u32, err := c.u32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := c.u64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789abcdef), u64)

	assert.True(t, c.atEnd())
}

func TestCursorShortBufferErrors(t *testing.T) {
	c := newCursor([]byte{1, 2, 3})
	_, err := c.u32()
	assert.ErrorIs(t, err, errShortBuffer)
}

func TestCursorStringRejectsInvalidUTF8(t *testing.T) {
	buf := make([]byte, 4+2)
	putU32(buf, 2)
	buf[4] = 0xff
	buf[5] = 0xfe
	c := newCursor(buf)
	_, err := c.str()
	assert.Error(t, err)
}

func TestCursorStringMapRejectsDuplicateKeys(t *testing.T) {
	var raw []byte
	raw = append(raw, 0, 0, 0, 0) // placeholder for total length
	appendStr := func(s string) {
		tmp := make([]byte, 4+len(s))
		putPrefixedString(tmp, s)
		raw = append(raw, tmp...)
	}
	appendStr("k")
	appendStr("v1")
	appendStr("k")
	appendStr("v2")
	putU32(raw, uint32(len(raw)-4))

	c := newCursor(raw)
	_, err := c.stringMap()
	assert.ErrorIs(t, err, ErrDuplicateMapKey)
}

func TestCursorStringMapRoundTrip(t *testing.T) {
	m := map[string]string{"a": "1", "bb": "22", "ccc": "333"}
	buf := make([]byte, sizeofStringMap(m))
	n := putStringMap(buf, m)
	require.Equal(t, len(buf), n)

	c := newCursor(buf)
	got, err := c.stringMap()
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.True(t, c.atEnd())
}

func TestCursorUint16Uint64MapRejectsDuplicateKeys(t *testing.T) {
	var raw []byte
	raw = append(raw, 0, 0, 0, 0)
	appendEntry := func(k uint16, v uint64) {
		tmp := make([]byte, 10)
		putU16(tmp, k)
		putU64(tmp[2:], v)
		raw = append(raw, tmp...)
	}
	appendEntry(5, 1)
	appendEntry(5, 2)
	putU32(raw, uint32(len(raw)-4))

	c := newCursor(raw)
	_, err := c.uint16Uint64Map()
	assert.ErrorIs(t, err, ErrDuplicateMapKey)
}

func TestCursorMessageIndexEntriesRoundTrip(t *testing.T) {
	entries := []MessageIndexEntry{{Timestamp: 1, Offset: 2}, {Timestamp: 3, Offset: 4}}
	buf := make([]byte, 4+len(entries)*16)
	n := putMessageIndexEntries(buf, entries)
	require.Equal(t, len(buf), n)

	c := newCursor(buf)
	got, err := c.messageIndexEntries()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestMakeSafeRejectsOversizedLength(t *testing.T) {
	_, err := makeSafe(1 << 40)
	assert.ErrorIs(t, err, ErrLengthOutOfRange)

	n, err := makeSafe(100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}
