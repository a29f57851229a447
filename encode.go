package mcap

// Each record kind gets a pair of functions: sizeofX computes the exact
// encoded content length (so the caller can size a buffer once), and
// encodeX writes the content into a buffer of that exact length, returning
// the number of bytes written (always == sizeofX's result). Framing
// (opcode + u64 content length) is applied by the writer's writeFramed,
// not here, matching §4.2's "pair (encode, decode)" split from framing.

func sizeofHeader(h *Header) int {
	return 4 + len(h.Profile) + 4 + len(h.Library)
}

func encodeHeader(buf []byte, h *Header) int {
	n := putPrefixedString(buf, h.Profile)
	n += putPrefixedString(buf[n:], h.Library)
	return n
}

func sizeofFooter() int { return 20 }

func encodeFooter(buf []byte, f *Footer) int {
	n := putU64(buf, f.SummaryStart)
	n += putU64(buf[n:], f.SummaryOffsetStart)
	n += putU32(buf[n:], f.SummaryCRC)
	return n
}

func sizeofSchema(s *Schema) int {
	return 2 + 4 + len(s.Name) + 4 + len(s.Encoding) + 4 + len(s.Data)
}

func encodeSchema(buf []byte, s *Schema) int {
	n := putU16(buf, s.ID)
	n += putPrefixedString(buf[n:], s.Name)
	n += putPrefixedString(buf[n:], s.Encoding)
	n += putPrefixedBytes32(buf[n:], s.Data)
	return n
}

func sizeofChannel(c *Channel) int {
	return 2 + 2 + 4 + len(c.Topic) + 4 + len(c.MessageEncoding) + sizeofStringMap(c.Metadata)
}

func encodeChannel(buf []byte, c *Channel) int {
	n := putU16(buf, c.ID)
	n += putU16(buf[n:], c.SchemaID)
	n += putPrefixedString(buf[n:], c.Topic)
	n += putPrefixedString(buf[n:], c.MessageEncoding)
	n += putStringMap(buf[n:], c.Metadata)
	return n
}

func sizeofMessage(m *Message) int {
	return 2 + 4 + 8 + 8 + len(m.Data)
}

func encodeMessage(buf []byte, m *Message) int {
	n := putU16(buf, m.ChannelID)
	n += putU32(buf[n:], m.Sequence)
	n += putU64(buf[n:], m.LogTime)
	n += putU64(buf[n:], m.PublishTime)
	n += copy(buf[n:], m.Data)
	return n
}

func sizeofChunk(c *Chunk) int {
	return 8 + 8 + 8 + 4 + 4 + len(c.Compression) + 8 + len(c.Records)
}

func encodeChunk(buf []byte, c *Chunk) int {
	n := putU64(buf, c.MessageStartTime)
	n += putU64(buf[n:], c.MessageEndTime)
	n += putU64(buf[n:], c.UncompressedSize)
	n += putU32(buf[n:], c.UncompressedCRC)
	n += putPrefixedString(buf[n:], c.Compression)
	n += putPrefixedBytes64(buf[n:], c.Records)
	return n
}

func sizeofMessageIndex(idx *MessageIndex) int {
	return 2 + 4 + idx.filled*16
}

func encodeMessageIndex(buf []byte, idx *MessageIndex) int {
	n := putU16(buf, idx.ChannelID)
	n += putMessageIndexEntries(buf[n:], idx.Entries())
	return n
}

func sizeofChunkIndex(ci *ChunkIndex) int {
	return 8 + 8 + 8 + 8 + sizeofUint16Uint64Map(ci.MessageIndexOffsets) + 8 + 4 + len(ci.Compression) + 8 + 8
}

func encodeChunkIndex(buf []byte, ci *ChunkIndex) int {
	n := putU64(buf, ci.MessageStartTime)
	n += putU64(buf[n:], ci.MessageEndTime)
	n += putU64(buf[n:], ci.ChunkStartOffset)
	n += putU64(buf[n:], ci.ChunkLength)
	n += putUint16Uint64Map(buf[n:], ci.MessageIndexOffsets)
	n += putU64(buf[n:], ci.MessageIndexLength)
	n += putPrefixedString(buf[n:], string(ci.Compression))
	n += putU64(buf[n:], ci.CompressedSize)
	n += putU64(buf[n:], ci.UncompressedSize)
	return n
}

// sizeofAttachment / encodeAttachment include the trailing 4-byte CRC.
func sizeofAttachment(a *Attachment) int {
	return 8 + 8 + 4 + len(a.Name) + 4 + len(a.MediaType) + 8 + len(a.Data) + 4
}

func encodeAttachment(buf []byte, a *Attachment, includeCRC bool) int {
	n := putU64(buf, a.LogTime)
	n += putU64(buf[n:], a.CreateTime)
	n += putPrefixedString(buf[n:], a.Name)
	n += putPrefixedString(buf[n:], a.MediaType)
	n += putPrefixedBytes64(buf[n:], a.Data)
	var crc uint32
	if includeCRC {
		crc = crc32IEEE(buf[:n])
	}
	n += putU32(buf[n:], crc)
	return n
}

func sizeofAttachmentIndex(ai *AttachmentIndex) int {
	return 8 + 8 + 8 + 8 + 8 + 4 + len(ai.Name) + 4 + len(ai.MediaType)
}

func encodeAttachmentIndex(buf []byte, ai *AttachmentIndex) int {
	n := putU64(buf, ai.Offset)
	n += putU64(buf[n:], ai.Length)
	n += putU64(buf[n:], ai.LogTime)
	n += putU64(buf[n:], ai.CreateTime)
	n += putU64(buf[n:], ai.DataSize)
	n += putPrefixedString(buf[n:], ai.Name)
	n += putPrefixedString(buf[n:], ai.MediaType)
	return n
}

func sizeofStatistics(s *Statistics) int {
	return 8 + 2 + 4 + 4 + 4 + 4 + 8 + 8 + sizeofUint16Uint64Map(s.ChannelMessageCounts)
}

func encodeStatistics(buf []byte, s *Statistics) int {
	n := putU64(buf, s.MessageCount)
	n += putU16(buf[n:], s.SchemaCount)
	n += putU32(buf[n:], s.ChannelCount)
	n += putU32(buf[n:], s.AttachmentCount)
	n += putU32(buf[n:], s.MetadataCount)
	n += putU32(buf[n:], s.ChunkCount)
	n += putU64(buf[n:], s.MessageStartTime)
	n += putU64(buf[n:], s.MessageEndTime)
	n += putUint16Uint64Map(buf[n:], s.ChannelMessageCounts)
	return n
}

func sizeofMetadata(m *Metadata) int {
	return 4 + len(m.Name) + sizeofStringMap(m.Metadata)
}

func encodeMetadata(buf []byte, m *Metadata) int {
	n := putPrefixedString(buf, m.Name)
	n += putStringMap(buf[n:], m.Metadata)
	return n
}

func sizeofMetadataIndex(mi *MetadataIndex) int {
	return 8 + 8 + 4 + len(mi.Name)
}

func encodeMetadataIndex(buf []byte, mi *MetadataIndex) int {
	n := putU64(buf, mi.Offset)
	n += putU64(buf[n:], mi.Length)
	n += putPrefixedString(buf[n:], mi.Name)
	return n
}

func sizeofSummaryOffset() int { return 17 }

func encodeSummaryOffset(buf []byte, so *SummaryOffset) int {
	n := putU8(buf, byte(so.GroupOpcode))
	n += putU64(buf[n:], so.GroupStart)
	n += putU64(buf[n:], so.GroupLength)
	return n
}

func sizeofDataEnd() int { return 4 }

func encodeDataEnd(buf []byte, d *DataEnd) int {
	return putU32(buf, d.DataSectionCRC)
}
