package mcap

import "fmt"

// decodeHeader parses a Header record's content (§6: "profile:str,
// library:str").
func decodeHeader(buf []byte) (*Header, error) {
	c := newCursor(buf)
	profile, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read header: %w", err)
	}
	library, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read header: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &Header{Profile: profile, Library: library}, nil
}

// decodeFooter parses a Footer record's fixed 20-byte content.
func decodeFooter(buf []byte) (*Footer, error) {
	if len(buf) != 20 {
		return nil, &ErrTruncatedRecord{Opcode: OpFooter, ActualLen: len(buf), ExpectedLen: 20}
	}
	c := newCursor(buf)
	summaryStart, _ := c.u64()
	summaryOffsetStart, _ := c.u64()
	summaryCRC, _ := c.u32()
	return &Footer{SummaryStart: summaryStart, SummaryOffsetStart: summaryOffsetStart, SummaryCRC: summaryCRC}, nil
}

// decodeSchema parses a Schema record's content.
func decodeSchema(buf []byte) (*Schema, error) {
	c := newCursor(buf)
	id, err := c.u16()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read schema: %w", err)
	}
	name, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read schema: %w", err)
	}
	encoding, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read schema: %w", err)
	}
	data, err := c.prefixedBytes32()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read schema: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &Schema{ID: id, Name: name, Encoding: encoding, Data: data}, nil
}

// decodeChannel parses a Channel record's content.
func decodeChannel(buf []byte) (*Channel, error) {
	c := newCursor(buf)
	id, err := c.u16()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read channel: %w", err)
	}
	schemaID, err := c.u16()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read channel: %w", err)
	}
	topic, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read channel: %w", err)
	}
	encoding, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read channel: %w", err)
	}
	metadata, err := c.stringMap()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read channel: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &Channel{ID: id, SchemaID: schemaID, Topic: topic, MessageEncoding: encoding, Metadata: metadata}, nil
}

// decodeMessage parses a Message record's content. The fixed 22-byte prefix
// is followed by the opaque payload, which runs to the end of the view.
func decodeMessage(buf []byte) (*Message, error) {
	if len(buf) < 22 {
		return nil, &ErrTruncatedRecord{Opcode: OpMessage, ActualLen: len(buf), ExpectedLen: 22}
	}
	c := newCursor(buf)
	channelID, _ := c.u16()
	sequence, _ := c.u32()
	logTime, _ := c.u64()
	publishTime, _ := c.u64()
	data := buf[c.pos:]
	return &Message{
		ChannelID:   channelID,
		Sequence:    sequence,
		LogTime:     logTime,
		PublishTime: publishTime,
		Data:        data,
	}, nil
}

// decodeChunk parses a Chunk record's content. Records is the raw
// (possibly compressed) payload; decompression is the caller's
// responsibility (the lexer and indexed reader each have different
// decompression-timing needs).
func decodeChunk(buf []byte) (*Chunk, error) {
	c := newCursor(buf)
	start, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	end, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	uncompressedSize, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	uncompressedCRC, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	compression, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	records, err := c.prefixedBytes64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &Chunk{
		MessageStartTime: start,
		MessageEndTime:   end,
		UncompressedSize: uncompressedSize,
		UncompressedCRC:  uncompressedCRC,
		Compression:      compression,
		Records:          records,
	}, nil
}

// decodeMessageIndex parses a MessageIndex record's content.
func decodeMessageIndex(buf []byte) (*MessageIndex, error) {
	c := newCursor(buf)
	channelID, err := c.u16()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read message index: %w", err)
	}
	entries, err := c.messageIndexEntries()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read message index: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &MessageIndex{ChannelID: channelID, Records: entries, filled: len(entries)}, nil
}

// decodeChunkIndex parses a ChunkIndex record's content.
func decodeChunkIndex(buf []byte) (*ChunkIndex, error) {
	c := newCursor(buf)
	start, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	end, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	chunkStartOffset, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	chunkLength, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	offsets, err := c.uint16Uint64Map()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	messageIndexLength, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	compression, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	compressedSize, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	uncompressedSize, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk index: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &ChunkIndex{
		MessageStartTime:    start,
		MessageEndTime:      end,
		ChunkStartOffset:    chunkStartOffset,
		ChunkLength:         chunkLength,
		MessageIndexOffsets: offsets,
		MessageIndexLength:  messageIndexLength,
		Compression:         CompressionFormat(compression),
		CompressedSize:      compressedSize,
		UncompressedSize:    uncompressedSize,
	}, nil
}

// decodeAttachment parses a fully-materialized Attachment record, including
// its trailing CRC. computeCRC controls whether the CRC over [log_time,
// end of data] is verified against the trailing field.
func decodeAttachment(buf []byte, computeCRC bool) (*Attachment, error) {
	if len(buf) < 4 {
		return nil, &ErrTruncatedRecord{Opcode: OpAttachment, ActualLen: len(buf), ExpectedLen: 4}
	}
	body := buf[:len(buf)-4]
	c := newCursor(body)
	logTime, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment: %w", err)
	}
	createTime, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment: %w", err)
	}
	name, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment: %w", err)
	}
	mediaType, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment: %w", err)
	}
	data, err := c.prefixedBytes64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	trailer := newCursor(buf[len(buf)-4:])
	parsedCRC, _ := trailer.u32()
	if computeCRC && parsedCRC != 0 {
		actual := crc32IEEE(body)
		if actual != parsedCRC {
			return nil, &ErrCRCMismatch{Region: "attachment", Expected: parsedCRC, Actual: actual}
		}
	}
	return &Attachment{LogTime: logTime, CreateTime: createTime, Name: name, MediaType: mediaType, Data: data}, nil
}

// decodeAttachmentIndex parses an AttachmentIndex record's content.
func decodeAttachmentIndex(buf []byte) (*AttachmentIndex, error) {
	c := newCursor(buf)
	offset, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	length, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	logTime, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	createTime, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	dataSize, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	name, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	mediaType, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read attachment index: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &AttachmentIndex{
		Offset: offset, Length: length, LogTime: logTime, CreateTime: createTime,
		DataSize: dataSize, Name: name, MediaType: mediaType,
	}, nil
}

// decodeStatistics parses a Statistics record's content.
func decodeStatistics(buf []byte) (*Statistics, error) {
	if len(buf) < 8+2+4+4+4+4+8+8+4 {
		return nil, &ErrTruncatedRecord{Opcode: OpStatistics, ActualLen: len(buf)}
	}
	c := newCursor(buf)
	messageCount, _ := c.u64()
	schemaCount, _ := c.u16()
	channelCount, _ := c.u32()
	attachmentCount, _ := c.u32()
	metadataCount, _ := c.u32()
	chunkCount, _ := c.u32()
	start, _ := c.u64()
	end, _ := c.u64()
	counts, err := c.uint16Uint64Map()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read statistics: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &Statistics{
		MessageCount: messageCount, SchemaCount: schemaCount, ChannelCount: channelCount,
		AttachmentCount: attachmentCount, MetadataCount: metadataCount, ChunkCount: chunkCount,
		MessageStartTime: start, MessageEndTime: end, ChannelMessageCounts: counts,
		hasMessages: messageCount > 0,
	}, nil
}

// decodeMetadata parses a Metadata record's content.
func decodeMetadata(buf []byte) (*Metadata, error) {
	c := newCursor(buf)
	name, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read metadata: %w", err)
	}
	m, err := c.stringMap()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read metadata: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &Metadata{Name: name, Metadata: m}, nil
}

// decodeMetadataIndex parses a MetadataIndex record's content.
func decodeMetadataIndex(buf []byte) (*MetadataIndex, error) {
	c := newCursor(buf)
	offset, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read metadata index: %w", err)
	}
	length, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read metadata index: %w", err)
	}
	name, err := c.str()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to read metadata index: %w", err)
	}
	if !c.atEnd() {
		return nil, ErrExcessBytes
	}
	return &MetadataIndex{Offset: offset, Length: length, Name: name}, nil
}

// decodeSummaryOffset parses a SummaryOffset record's content.
func decodeSummaryOffset(buf []byte) (*SummaryOffset, error) {
	if len(buf) != 17 {
		return nil, &ErrTruncatedRecord{Opcode: OpSummaryOffset, ActualLen: len(buf), ExpectedLen: 17}
	}
	c := newCursor(buf)
	op, _ := c.u8()
	start, _ := c.u64()
	length, _ := c.u64()
	return &SummaryOffset{GroupOpcode: OpCode(op), GroupStart: start, GroupLength: length}, nil
}

// decodeDataEnd parses a DataEnd record's fixed 4-byte content.
func decodeDataEnd(buf []byte) (*DataEnd, error) {
	if len(buf) != 4 {
		return nil, &ErrTruncatedRecord{Opcode: OpDataEnd, ActualLen: len(buf), ExpectedLen: 4}
	}
	c := newCursor(buf)
	crc, _ := c.u32()
	return &DataEnd{DataSectionCRC: crc}, nil
}

// decodeRecord dispatches a single opcode+content pair to its decoder,
// returning an *UnknownRecord for opcodes this library does not recognize.
// allowUnknown must be false when decoding the contents of a chunk (§4.2:
// unknown records are forbidden inside chunks).
func decodeRecord(op OpCode, content []byte, allowUnknown bool) (interface{}, error) {
	switch op {
	case OpHeader:
		return decodeHeader(content)
	case OpFooter:
		return decodeFooter(content)
	case OpSchema:
		return decodeSchema(content)
	case OpChannel:
		return decodeChannel(content)
	case OpMessage:
		return decodeMessage(content)
	case OpChunk:
		return decodeChunk(content)
	case OpMessageIndex:
		return decodeMessageIndex(content)
	case OpChunkIndex:
		return decodeChunkIndex(content)
	case OpAttachment:
		return decodeAttachment(content, true)
	case OpAttachmentIndex:
		return decodeAttachmentIndex(content)
	case OpStatistics:
		return decodeStatistics(content)
	case OpMetadata:
		return decodeMetadata(content)
	case OpMetadataIndex:
		return decodeMetadataIndex(content)
	case OpSummaryOffset:
		return decodeSummaryOffset(content)
	case OpDataEnd:
		return decodeDataEnd(content)
	default:
		if !allowUnknown {
			return nil, fmt.Errorf("mcap: unknown opcode 0x%02x not allowed in this context", byte(op))
		}
		data := make([]byte, len(content))
		copy(data, content)
		return &UnknownRecord{Opcode: op, Data: data}, nil
	}
}
