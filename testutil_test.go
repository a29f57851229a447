package mcap

import (
	"bytes"
	"io"

	"github.com/google/uuid"
)

// defaultAttachmentName returns a unique name for tests that write an
// attachment without caring about its particular value.
func defaultAttachmentName() string {
	return uuid.NewString() + ".bin"
}

// rawChunkSpec pins down exactly the messages one hand-assembled chunk
// holds, letting scenario tests control chunk boundaries precisely — the
// high-level Writer only finalizes chunks on a size threshold, which can't
// express "three chunks with these exact time ranges" directly.
type rawChunkSpec struct {
	messages []*Message
}

// buildRawIndexedFile hand-assembles a minimal indexed MCAP file — one
// schema, one channel, and the given chunks — using only the package's own
// encode functions, the same primitives Writer itself calls. Used by tests
// that need exact control over chunk boundaries (§8 scenario 3's
// overlapping chunks).
func buildRawIndexedFile(chunks []rawChunkSpec) []byte {
	var buf bytes.Buffer

	writeFramed := func(op OpCode, content []byte) int64 {
		offset := int64(buf.Len())
		var hdr [9]byte
		hdr[0] = byte(op)
		putU64(hdr[1:], uint64(len(content)))
		buf.Write(hdr[:])
		buf.Write(content)
		return offset
	}

	buf.Write(Magic)
	h := &Header{Library: "test"}
	hc := make([]byte, sizeofHeader(h))
	encodeHeader(hc, h)
	writeFramed(OpHeader, hc)

	schema := &Schema{ID: 1, Name: "test", Encoding: "none", Data: []byte{1, 2, 3}}
	channel := &Channel{ID: 0, SchemaID: 1, Topic: "/test", MessageEncoding: "none"}

	var chunkIndexes []*ChunkIndex
	for _, spec := range chunks {
		cb := newChunkBuilder(true)
		cb.addSchema(schema)
		cb.addChannelRecord(channel)
		cb.addChannel(channel.ID)
		for _, m := range spec.messages {
			cb.addMessage(m)
		}

		records := append([]byte(nil), cb.buf.bytes()...)
		chunk := &Chunk{
			MessageStartTime: cb.messageStartTime,
			MessageEndTime:   cb.messageEndTime,
			UncompressedSize: uint64(len(records)),
			UncompressedCRC:  crc32IEEE(records),
			Compression:      string(CompressionNone),
			Records:          records,
		}
		cc := make([]byte, sizeofChunk(chunk))
		encodeChunk(cc, chunk)
		chunkStart := writeFramed(OpChunk, cc)
		chunkLen := uint64(int64(buf.Len()) - chunkStart)

		miStart := buf.Len()
		offsets := make(map[uint16]uint64)
		for _, id := range cb.channelOrder {
			idx := cb.messageIndexes[id]
			mic := make([]byte, sizeofMessageIndex(idx))
			encodeMessageIndex(mic, idx)
			off := writeFramed(OpMessageIndex, mic)
			offsets[id] = uint64(off)
		}
		miLen := uint64(buf.Len() - miStart)

		chunkIndexes = append(chunkIndexes, &ChunkIndex{
			MessageStartTime:    chunk.MessageStartTime,
			MessageEndTime:      chunk.MessageEndTime,
			ChunkStartOffset:    uint64(chunkStart),
			ChunkLength:         chunkLen,
			MessageIndexOffsets: offsets,
			MessageIndexLength:  miLen,
			Compression:         CompressionNone,
			CompressedSize:      uint64(len(records)),
			UncompressedSize:    uint64(len(records)),
		})
	}

	dataEndContent := make([]byte, sizeofDataEnd())
	encodeDataEnd(dataEndContent, &DataEnd{})
	writeFramed(OpDataEnd, dataEndContent)

	summaryStart := buf.Len()

	sc := make([]byte, sizeofSchema(schema))
	encodeSchema(sc, schema)
	writeFramed(OpSchema, sc)

	chc := make([]byte, sizeofChannel(channel))
	encodeChannel(chc, channel)
	writeFramed(OpChannel, chc)

	for _, ci := range chunkIndexes {
		cic := make([]byte, sizeofChunkIndex(ci))
		encodeChunkIndex(cic, ci)
		writeFramed(OpChunkIndex, cic)
	}

	footer := &Footer{SummaryStart: uint64(summaryStart), SummaryOffsetStart: uint64(buf.Len())}
	fc := make([]byte, sizeofFooter())
	encodeFooter(fc, footer)
	writeFramed(OpFooter, fc)
	buf.Write(Magic)

	return buf.Bytes()
}

// frameRecord wraps content in the opcode+u64-length header every top-level
// and in-chunk record shares.
func frameRecord(op OpCode, content []byte) []byte {
	var hdr [9]byte
	hdr[0] = byte(op)
	putU64(hdr[1:], uint64(len(content)))
	return append(hdr[:], content...)
}

// buildIndexedFile writes one schema, one channel, and messages (all in a
// single chunk, since chunkSize is left large) via the real Writer, then
// closes it. Used by IndexedReader tests that don't need precise
// multi-chunk control.
func buildIndexedFile(messages []*Message) []byte {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, &WriterOptions{
		Chunked:               true,
		ChunkSize:             4 << 20,
		UseStatistics:         true,
		UseChunkIndex:         true,
		UseMessageIndex:       true,
		ComputeDataSectionCRC: true,
		ComputeSummaryCRC:     true,
		RepeatSchemas:         true,
		RepeatChannels:        true,
	})
	if err != nil {
		panic(err)
	}
	s, err := w.RegisterSchema("test", "none", nil)
	if err != nil {
		panic(err)
	}
	c, err := w.RegisterChannel("/test", "none", s, nil)
	if err != nil {
		panic(err)
	}
	for _, m := range messages {
		m.ChannelID = c.ID
		if err := w.WriteMessage(m); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// memAppendSink is a minimal in-memory AppendSink (io.Writer + io.Seeker +
// Truncate), standing in for *os.File in tests that exercise
// InitializeForAppending without touching the filesystem.
type memAppendSink struct {
	data []byte
	pos  int64
}

func newMemAppendSink(initial []byte) *memAppendSink {
	return &memAppendSink{data: append([]byte(nil), initial...), pos: int64(len(initial))}
}

func (s *memAppendSink) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.data)) {
		grown := make([]byte, end)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *memAppendSink) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.data))
	}
	s.pos = base + offset
	return s.pos, nil
}

func (s *memAppendSink) Truncate(size int64) error {
	if size < int64(len(s.data)) {
		s.data = s.data[:size]
	}
	return nil
}

func (s *memAppendSink) bytes() []byte { return s.data }

// collectLogTimes drains it fully, returning the log_time of every message
// in yield order. A non-EOF error aborts early and is returned.
func collectLogTimes(it *MessageIterator) ([]uint64, error) {
	var out []uint64
	for {
		_, _, m, err := it.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, m.LogTime)
	}
}
