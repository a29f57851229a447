package mcap

import (
	"encoding/binary"
	"sort"
	"unicode/utf8"
)

// sortedKeys returns a map's string keys in ascending order, giving
// deterministic wire output for otherwise unordered Go maps.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedUint16Keys returns a map's uint16 keys in ascending order.
func sortedUint16Keys(m map[uint16]uint64) []uint16 {
	keys := make([]uint16, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// cursor reads little-endian primitives out of a bounded byte view, tracking
// its own position. It never reads past the end of buf; doing so returns
// errShortBuffer. Decode functions use a cursor to guarantee that every byte
// of a record's declared content is accounted for (§4.2: "the cursor must
// land at the end of the view").
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor { return &cursor{buf: buf} }

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) atEnd() bool { return c.pos == len(c.buf) }

func (c *cursor) u8() (byte, error) {
	if c.remaining() < 1 {
		return 0, errShortBuffer
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) u16() (uint16, error) {
	if c.remaining() < 2 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if c.remaining() < 4 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) u64() (uint64, error) {
	if c.remaining() < 8 {
		return 0, errShortBuffer
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

// bytes returns a borrowed slice of n bytes at the cursor's position,
// advancing it. The caller must copy the slice if it needs to outlive the
// backing buffer.
func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, errShortBuffer
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// str reads a u32-length-prefixed UTF-8 string, rejecting invalid encodings
// (§4.1: "strict, replacement-free").
func (c *cursor) str() (string, error) {
	n, err := c.u32()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &ErrTruncatedRecord{ExpectedLen: int(n), ActualLen: len(b)}
	}
	return string(b), nil
}

// prefixedBytes32 reads a u32-length-prefixed byte slice, returning a copy.
func (c *cursor) prefixedBytes32() ([]byte, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// prefixedBytes64 reads a u64-length-prefixed byte slice, returning a copy.
func (c *cursor) prefixedBytes64() ([]byte, error) {
	n, err := c.u64()
	if err != nil {
		return nil, err
	}
	safe, err := makeSafe(n)
	if err != nil {
		return nil, err
	}
	b, err := c.bytes(safe)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// stringMap reads a u32-total-byte-length-prefixed map<string,string>,
// rejecting duplicate keys per §4.1.
func (c *cursor) stringMap() (map[string]string, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	if c.remaining() < int(n) {
		return nil, errShortBuffer
	}
	end := c.pos + int(n)
	m := make(map[string]string)
	for c.pos < end {
		k, err := c.str()
		if err != nil {
			return nil, err
		}
		v, err := c.str()
		if err != nil {
			return nil, err
		}
		if _, dup := m[k]; dup {
			return nil, ErrDuplicateMapKey
		}
		m[k] = v
	}
	if c.pos != end {
		return nil, ErrExcessBytes
	}
	return m, nil
}

// uint16Uint64Map reads a u32-total-byte-length-prefixed map<uint16,uint64>
// (used by ChunkIndex.message_index_offsets), rejecting duplicate keys.
func (c *cursor) uint16Uint64Map() (map[uint16]uint64, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	if c.remaining() < int(n) {
		return nil, errShortBuffer
	}
	end := c.pos + int(n)
	m := make(map[uint16]uint64)
	for c.pos < end {
		k, err := c.u16()
		if err != nil {
			return nil, err
		}
		v, err := c.u64()
		if err != nil {
			return nil, err
		}
		if _, dup := m[k]; dup {
			return nil, ErrDuplicateMapKey
		}
		m[k] = v
	}
	if c.pos != end {
		return nil, ErrExcessBytes
	}
	return m, nil
}

// messageIndexEntries reads a u32-total-byte-length-prefixed array of
// (log_time:u64, offset:u64) pairs.
func (c *cursor) messageIndexEntries() ([]MessageIndexEntry, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	if n%16 != 0 {
		return nil, errShortBuffer
	}
	if c.remaining() < int(n) {
		return nil, errShortBuffer
	}
	count := int(n) / 16
	entries := make([]MessageIndexEntry, count)
	for i := 0; i < count; i++ {
		ts, err := c.u64()
		if err != nil {
			return nil, err
		}
		off, err := c.u64()
		if err != nil {
			return nil, err
		}
		entries[i] = MessageIndexEntry{Timestamp: ts, Offset: off}
	}
	return entries, nil
}

// makeSafe guards against declared lengths that cannot be represented as a
// platform int without risking overflow in downstream slice operations.
func makeSafe(n uint64) (int, error) {
	const maxSafe = 1<<31 - 1
	if n > maxSafe {
		return 0, ErrLengthOutOfRange
	}
	return int(n), nil
}

// --- encode-side helpers ---

func putU8(buf []byte, v byte) int {
	buf[0] = v
	return 1
}

func putU16(buf []byte, v uint16) int {
	binary.LittleEndian.PutUint16(buf, v)
	return 2
}

func putU32(buf []byte, v uint32) int {
	binary.LittleEndian.PutUint32(buf, v)
	return 4
}

func putU64(buf []byte, v uint64) int {
	binary.LittleEndian.PutUint64(buf, v)
	return 8
}

func putPrefixedString(buf []byte, s string) int {
	n := putU32(buf, uint32(len(s)))
	n += copy(buf[n:], s)
	return n
}

func putPrefixedBytes32(buf []byte, b []byte) int {
	n := putU32(buf, uint32(len(b)))
	n += copy(buf[n:], b)
	return n
}

func putPrefixedBytes64(buf []byte, b []byte) int {
	n := putU64(buf, uint64(len(b)))
	n += copy(buf[n:], b)
	return n
}

func putStringMap(buf []byte, m map[string]string) int {
	n := 4
	for k, v := range m {
		n += 4 + len(k) + 4 + len(v)
	}
	putU32(buf, uint32(n-4))
	off := 4
	for _, k := range sortedKeys(m) {
		off += putPrefixedString(buf[off:], k)
		off += putPrefixedString(buf[off:], m[k])
	}
	return off
}

func sizeofStringMap(m map[string]string) int {
	n := 4
	for k, v := range m {
		n += 4 + len(k) + 4 + len(v)
	}
	return n
}

func putUint16Uint64Map(buf []byte, m map[uint16]uint64) int {
	n := uint32(len(m)) * 10
	off := putU32(buf, n)
	for _, k := range sortedUint16Keys(m) {
		off += putU16(buf[off:], k)
		off += putU64(buf[off:], m[k])
	}
	return off
}

func sizeofUint16Uint64Map(m map[uint16]uint64) int {
	return 4 + len(m)*10
}

func putMessageIndexEntries(buf []byte, entries []MessageIndexEntry) int {
	off := putU32(buf, uint32(len(entries))*16)
	for _, e := range entries {
		off += putU64(buf[off:], e.Timestamp)
		off += putU64(buf[off:], e.Offset)
	}
	return off
}
