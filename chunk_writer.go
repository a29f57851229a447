package mcap

// chunkBuilder accumulates one chunk's payload (Schema/Channel/Message
// records) plus, when message indexing is enabled, a per-channel
// MessageIndex — §4.4. messageStartTime/messageEndTime track the min/max
// log_time across added messages; hasMessages is the "no messages yet" flag
// that lets zero be a legitimate first timestamp without being confused for
// "unset" (a chunk that never sees a message keeps both times at zero and
// hasMessages false; the writer emits nothing for a builder with no
// records).
type chunkBuilder struct {
	buf              *bufferBuilder
	messageIndexes   map[uint16]*MessageIndex
	channelOrder     []uint16
	messageStartTime uint64
	messageEndTime   uint64
	hasMessages      bool
	indexingEnabled  bool
}

func newChunkBuilder(indexingEnabled bool) *chunkBuilder {
	return &chunkBuilder{
		buf:             newBufferBuilder(),
		messageIndexes:  make(map[uint16]*MessageIndex),
		indexingEnabled: indexingEnabled,
	}
}

// size is the current uncompressed payload size, compared against
// WriterOptions.ChunkSize to decide when to finalize (§4.5.4).
func (cb *chunkBuilder) size() int { return cb.buf.length() }

// empty reports whether any records have been added since creation or the
// last reset.
func (cb *chunkBuilder) empty() bool { return cb.buf.length() == 0 }

// addChannel ensures a MessageIndex slot exists for id even if no message
// arrives on it before the chunk is finalized, so readers see a
// deterministic channel set per chunk (§4.4).
func (cb *chunkBuilder) addChannel(id uint16) {
	if !cb.indexingEnabled {
		return
	}
	if _, ok := cb.messageIndexes[id]; !ok {
		cb.messageIndexes[id] = &MessageIndex{ChannelID: id}
		cb.channelOrder = append(cb.channelOrder, id)
	}
}

// writeFramed appends one opcode+length+content record to the chunk payload,
// the same framing every top-level record uses, and returns the offset of
// its opcode byte — the offset a MessageIndex entry must point at, since a
// reader decodes a chunk's contents with the same readFramedRecord it uses
// at the top level.
func (cb *chunkBuilder) writeFramed(op OpCode, content []byte) int {
	offset := cb.buf.position()
	var hdr [9]byte
	hdr[0] = byte(op)
	putU64(hdr[1:], uint64(len(content)))
	cb.buf.Write(hdr[:])
	cb.buf.Write(content)
	return offset
}

// addMessage updates the chunk's time bounds, records a (log_time, offset)
// index entry if indexing is enabled, and serializes the message into the
// payload buffer.
func (cb *chunkBuilder) addMessage(m *Message) {
	if !cb.hasMessages {
		cb.messageStartTime = m.LogTime
		cb.messageEndTime = m.LogTime
		cb.hasMessages = true
	} else {
		if m.LogTime < cb.messageStartTime {
			cb.messageStartTime = m.LogTime
		}
		if m.LogTime > cb.messageEndTime {
			cb.messageEndTime = m.LogTime
		}
	}

	if cb.indexingEnabled {
		cb.addChannel(m.ChannelID)
		cb.messageIndexes[m.ChannelID].Add(m.LogTime, uint64(cb.buf.position()))
	}

	content := make([]byte, sizeofMessage(m))
	encodeMessage(content, m)
	cb.writeFramed(OpMessage, content)
}

// addSchema serializes a framed Schema record into the payload buffer.
func (cb *chunkBuilder) addSchema(s *Schema) {
	content := make([]byte, sizeofSchema(s))
	encodeSchema(content, s)
	cb.writeFramed(OpSchema, content)
}

// addChannelRecord serializes a framed Channel record into the payload
// buffer (distinct from addChannel, which only reserves a MessageIndex
// slot).
func (cb *chunkBuilder) addChannelRecord(c *Channel) {
	content := make([]byte, sizeofChannel(c))
	encodeChannel(content, c)
	cb.writeFramed(OpChannel, content)
}

// reset clears the builder for reuse by the next chunk.
func (cb *chunkBuilder) reset() {
	cb.buf.reset()
	cb.messageIndexes = make(map[uint16]*MessageIndex)
	cb.channelOrder = cb.channelOrder[:0]
	cb.messageStartTime = 0
	cb.messageEndTime = 0
	cb.hasMessages = false
}
