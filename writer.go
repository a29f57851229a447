package mcap

import (
	"bytes"
	"fmt"
	"io"
)

type writerState int

const (
	writerStarted writerState = iota
	writerEnded
)

// WriterOptions configures a Writer. Zero-value fields take the defaults
// applied by applyDefaults, so a caller can construct one with only the
// fields they care about set.
type WriterOptions struct {
	// Profile is recorded in the Header record; empty means no particular
	// profile.
	Profile string
	// OverrideLibrary replaces the Header.Library value normally filled in
	// from Version().
	OverrideLibrary string

	// Chunked selects whether messages are batched into compressed Chunk
	// records (true, the default) or written directly to the data section
	// (false). Only a chunked file can carry a ChunkIndex and therefore
	// support indexed random access.
	Chunked bool
	// ChunkSize is the uncompressed payload size, in bytes, at which a
	// chunk is finalized and a new one started. Zero selects a 4 MiB
	// default.
	ChunkSize int
	// Compression finalizes each chunk's payload, or leaves chunks
	// uncompressed when nil.
	Compression CompressionFunc

	UseStatistics     bool
	UseChunkIndex     bool
	UseAttachmentIndex bool
	UseMetadataIndex  bool
	UseMessageIndex   bool
	UseSummaryOffsets bool

	// RepeatSchemas and RepeatChannels additionally copy every registered
	// Schema/Channel into the summary section at Close, so a reader never
	// needs to fall back to scanning chunk contents to resolve them.
	RepeatSchemas  bool
	RepeatChannels bool

	// StartChannelID is the first id handed out by RegisterChannel.
	StartChannelID uint16

	// ComputeDataSectionCRC and ComputeSummaryCRC control whether the two
	// whole-section CRCs of §4.2 are computed and recorded; a false value
	// records zero, which readers treat as "unverified, not invalid".
	ComputeDataSectionCRC bool
	ComputeSummaryCRC     bool
}

// DefaultWriterOptions returns the options NewWriter and
// InitializeForAppending use when called with a nil *WriterOptions: a fully
// chunked, fully indexed writer with both whole-section CRCs enabled. A
// caller who passes a non-nil *WriterOptions gets exactly what they set —
// bool fields they leave unset stay false — so opting out of, say,
// attachment indexing means starting from this and clearing that one field
// rather than building a struct from scratch.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Chunked:               true,
		ChunkSize:             4 << 20,
		UseStatistics:         true,
		UseChunkIndex:         true,
		UseAttachmentIndex:    true,
		UseMetadataIndex:      true,
		UseMessageIndex:       true,
		UseSummaryOffsets:     true,
		ComputeDataSectionCRC: true,
		ComputeSummaryCRC:     true,
	}
}

func (o *WriterOptions) applyDefaults() {
	if o.ChunkSize == 0 {
		o.ChunkSize = 4 << 20
	}
}

// Writer produces MCAP files per §4.5: a single forward pass over Header,
// an interleaving of Schema/Channel/Message (direct or chunked), and a
// Close that emits DataEnd, the summary section, and the Footer.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	sink  *writeSizer
	opts  WriterOptions
	state writerState

	nextSchemaID  uint16
	nextChannelID uint16
	schemas       slicemap[Schema]
	channels      slicemap[Channel]

	schemaEmitted  map[uint16]bool
	channelEmitted map[uint16]bool

	chunk        *chunkBuilder
	chunkIndexes []*ChunkIndex

	attachmentIndexes []*AttachmentIndex
	metadataIndexes   []*MetadataIndex

	stats *Statistics
}

// NewWriter constructs a Writer over sink, immediately writing the leading
// magic and Header record.
func NewWriter(sink io.Writer, opts *WriterOptions) (*Writer, error) {
	o := DefaultWriterOptions()
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()

	w := &Writer{
		opts:           o,
		nextSchemaID:   1,
		nextChannelID:  o.StartChannelID,
		schemaEmitted:  make(map[uint16]bool),
		channelEmitted: make(map[uint16]bool),
		stats:          &Statistics{ChannelMessageCounts: make(map[uint16]uint64)},
		sink:           newWriteSizer(sink, o.ComputeDataSectionCRC, newRunningCRC()),
	}
	if o.Chunked {
		w.chunk = newChunkBuilder(o.UseMessageIndex)
	}
	if err := w.writeMagicAndHeader(); err != nil {
		return nil, err
	}
	w.state = writerStarted
	return w, nil
}

// AppendSink is the random-access contract InitializeForAppending needs:
// write, seek, and truncate, which *os.File satisfies directly.
type AppendSink interface {
	io.Writer
	io.Seeker
	Truncate(size int64) error
}

// InitializeForAppending resumes writing an already-closed, indexed MCAP
// file (§4.5.7): it seeks sink to the original DataEnd record and truncates
// from there, discarding the old summary section and footer, then imports
// schemas, channels, indexes, statistics, and the data-section CRC
// accumulator so that new records continue the same file coherently.
func InitializeForAppending(sink AppendSink, ir *IndexedReader, opts *WriterOptions) (*Writer, error) {
	o := DefaultWriterOptions()
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()

	offset := ir.DataEndOffset()
	if _, err := sink.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("mcap: failed to seek for append: %w", err)
	}
	if err := sink.Truncate(offset); err != nil {
		return nil, fmt.Errorf("mcap: failed to truncate for append: %w", err)
	}

	// A file written with the data-section CRC disabled records
	// data_section_crc == 0 in its DataEnd; appending to it must not
	// fabricate a CRC covering only the newly appended bytes (§4.5.7, §9).
	if ir.DataSectionCRC() == 0 {
		o.ComputeDataSectionCRC = false
	}

	w := &Writer{
		opts:           o,
		schemaEmitted:  make(map[uint16]bool),
		channelEmitted: make(map[uint16]bool),
		sink:           newWriteSizer(sink, o.ComputeDataSectionCRC, continueRunningCRC(ir.DataSectionCRC())),
	}
	w.sink.size = offset
	if o.Chunked {
		w.chunk = newChunkBuilder(o.UseMessageIndex)
	}

	for id, s := range ir.Schemas() {
		w.schemas.set(id, s)
		if id >= w.nextSchemaID {
			w.nextSchemaID = id + 1
		}
	}
	if w.nextSchemaID == 0 {
		w.nextSchemaID = 1
	}
	for id, c := range ir.Channels() {
		w.channels.set(id, c)
		if id >= w.nextChannelID {
			w.nextChannelID = id + 1
		}
	}

	w.chunkIndexes = append(w.chunkIndexes, ir.ChunkIndexes()...)
	w.attachmentIndexes = append(w.attachmentIndexes, ir.AttachmentIndexes()...)
	w.metadataIndexes = append(w.metadataIndexes, ir.MetadataIndexes()...)

	if existing := ir.Statistics(); existing != nil {
		counts := make(map[uint16]uint64, len(existing.ChannelMessageCounts))
		for k, v := range existing.ChannelMessageCounts {
			counts[k] = v
		}
		cp := *existing
		cp.ChannelMessageCounts = counts
		cp.hasMessages = existing.MessageCount > 0
		w.stats = &cp
	} else {
		// Statistics were never recorded for the original file: emitting a
		// fresh Statistics record here would describe only the appended
		// messages, a misleading partial summary (§4.5.7). Disable it.
		w.opts.UseStatistics = false
		w.stats = &Statistics{ChannelMessageCounts: make(map[uint16]uint64)}
	}

	w.state = writerStarted
	return w, nil
}

func (w *Writer) writeMagicAndHeader() error {
	if _, err := w.sink.Write(Magic); err != nil {
		return fmt.Errorf("mcap: failed to write leading magic: %w", err)
	}
	library := w.opts.OverrideLibrary
	if library == "" {
		library = Version()
	}
	h := &Header{Profile: w.opts.Profile, Library: library}
	content := make([]byte, sizeofHeader(h))
	encodeHeader(content, h)
	_, err := w.writeFramed(OpHeader, content, nil)
	return err
}

// writeFramed writes one opcode+length+content record to the sink,
// optionally feeding its bytes into track (used while writing the summary
// section, whose CRC is computed separately from the data-section CRC the
// sink itself accumulates).
func (w *Writer) writeFramed(op OpCode, content []byte, track *runningCRC) (int64, error) {
	offset := w.sink.Position()
	hdr := make([]byte, 9)
	hdr[0] = byte(op)
	putU64(hdr[1:], uint64(len(content)))
	if _, err := w.sink.Write(hdr); err != nil {
		return offset, err
	}
	if track != nil {
		track.write(hdr)
	}
	if len(content) > 0 {
		if _, err := w.sink.Write(content); err != nil {
			return offset, err
		}
		if track != nil {
			track.write(content)
		}
	}
	return offset, nil
}

func writerStateErr(s writerState) error {
	if s == writerEnded {
		return ErrWriterClosed
	}
	return ErrWriterNotStarted
}

// RegisterSchema assigns a new Schema its id and records it.
func (w *Writer) RegisterSchema(name, encoding string, data []byte) (*Schema, error) {
	if w.state != writerStarted {
		return nil, writerStateErr(w.state)
	}
	s := &Schema{ID: w.nextSchemaID, Name: name, Encoding: encoding, Data: data}
	w.nextSchemaID++
	w.schemas.set(s.ID, s)
	return s, nil
}

// RegisterChannel assigns a new Channel its id and records it. schema may be
// nil for a channel with no associated schema.
func (w *Writer) RegisterChannel(topic, messageEncoding string, schema *Schema, metadata map[string]string) (*Channel, error) {
	if w.state != writerStarted {
		return nil, writerStateErr(w.state)
	}
	var schemaID uint16
	if schema != nil {
		if w.schemas.get(schema.ID) == nil {
			return nil, ErrUnknownSchema
		}
		schemaID = schema.ID
	}
	c := &Channel{ID: w.nextChannelID, SchemaID: schemaID, Topic: topic, MessageEncoding: messageEncoding, Metadata: metadata}
	w.nextChannelID++
	w.channels.set(c.ID, c)
	return c, nil
}

// DeclareSchema registers a schema under a caller-assigned id rather than
// auto-assigning one — used when replaying schemas read from another file
// (e.g. a merge or re-chunk tool). Re-declaring an id already on file is
// only allowed when byte-identical to what's there (§9).
func (w *Writer) DeclareSchema(s *Schema) error {
	if w.state != writerStarted {
		return writerStateErr(w.state)
	}
	if existing := w.schemas.get(s.ID); existing != nil {
		if !schemaEqual(existing, s) {
			return ErrSchemaMismatch
		}
		return nil
	}
	w.schemas.set(s.ID, s)
	if s.ID >= w.nextSchemaID {
		w.nextSchemaID = s.ID + 1
	}
	return nil
}

// DeclareChannel registers a channel under a caller-assigned id, the
// DeclareSchema counterpart for replaying channels read from another file.
func (w *Writer) DeclareChannel(c *Channel) error {
	if w.state != writerStarted {
		return writerStateErr(w.state)
	}
	if c.SchemaID != 0 && w.schemas.get(c.SchemaID) == nil {
		return ErrUnknownSchema
	}
	if existing := w.channels.get(c.ID); existing != nil {
		if !existing.Equal(c) {
			return ErrChannelMismatch
		}
		return nil
	}
	w.channels.set(c.ID, c)
	if c.ID >= w.nextChannelID {
		w.nextChannelID = c.ID + 1
	}
	return nil
}

// ensureEmitted writes channel c's Schema (if any) and Channel record if
// they have not yet been physically emitted in the current epoch — the
// current chunk if chunking is enabled, or the whole data section
// otherwise (§4.5.4).
func (w *Writer) ensureEmitted(c *Channel) error {
	if !w.channelEmitted[c.ID] {
		if c.SchemaID != 0 && !w.schemaEmitted[c.SchemaID] {
			s := w.schemas.get(c.SchemaID)
			if s == nil {
				return ErrUnknownSchema
			}
			if err := w.emitSchema(s); err != nil {
				return err
			}
			w.schemaEmitted[c.SchemaID] = true
		}
		if err := w.emitChannel(c); err != nil {
			return err
		}
		w.channelEmitted[c.ID] = true
	}
	return nil
}

func (w *Writer) emitSchema(s *Schema) error {
	content := make([]byte, sizeofSchema(s))
	encodeSchema(content, s)
	if w.opts.Chunked {
		w.chunk.addSchema(s)
		return nil
	}
	_, err := w.writeFramed(OpSchema, content, nil)
	return err
}

func (w *Writer) emitChannel(c *Channel) error {
	content := make([]byte, sizeofChannel(c))
	encodeChannel(content, c)
	if w.opts.Chunked {
		w.chunk.addChannelRecord(c)
		return nil
	}
	_, err := w.writeFramed(OpChannel, content, nil)
	return err
}

// WriteMessage appends one message to channel m.ChannelID, chunking and
// finalizing as configured (§4.5.4).
func (w *Writer) WriteMessage(m *Message) error {
	if w.state != writerStarted {
		return writerStateErr(w.state)
	}
	c := w.channels.get(m.ChannelID)
	if c == nil {
		return ErrUnknownChannel
	}
	if err := w.ensureEmitted(c); err != nil {
		return err
	}

	w.updateMessageStats(m)

	if w.opts.Chunked {
		w.chunk.addChannel(m.ChannelID)
		w.chunk.addMessage(m)
		if w.chunk.size() >= w.opts.ChunkSize {
			if err := w.finalizeChunk(); err != nil {
				return err
			}
		}
		return nil
	}

	content := make([]byte, sizeofMessage(m))
	encodeMessage(content, m)
	_, err := w.writeFramed(OpMessage, content, nil)
	return err
}

func (w *Writer) updateMessageStats(m *Message) {
	w.stats.MessageCount++
	w.stats.ChannelMessageCounts[m.ChannelID]++
	if !w.stats.hasMessages {
		w.stats.MessageStartTime = m.LogTime
		w.stats.MessageEndTime = m.LogTime
		w.stats.hasMessages = true
		return
	}
	if m.LogTime < w.stats.MessageStartTime {
		w.stats.MessageStartTime = m.LogTime
	}
	if m.LogTime > w.stats.MessageEndTime {
		w.stats.MessageEndTime = m.LogTime
	}
}

// finalizeChunk flushes the current chunk builder's payload as a Chunk
// record, followed by its MessageIndex records and a ChunkIndex entry
// (§4.5.5), then resets the builder and the epoch-emission tracking for the
// next chunk.
func (w *Writer) finalizeChunk() error {
	if w.chunk.empty() {
		return nil
	}

	records := append([]byte(nil), w.chunk.buf.bytes()...)
	uncompressedCRC := crc32IEEE(records)

	compression := string(CompressionNone)
	payload := records
	if w.opts.Compression != nil {
		name, compressed, err := w.opts.Compression(records)
		if err != nil {
			return fmt.Errorf("mcap: chunk compression failed: %w", err)
		}
		compression = name
		payload = compressed
	}

	chunk := &Chunk{
		MessageStartTime: w.chunk.messageStartTime,
		MessageEndTime:   w.chunk.messageEndTime,
		UncompressedSize: uint64(len(records)),
		UncompressedCRC:  uncompressedCRC,
		Compression:      compression,
		Records:          payload,
	}
	content := make([]byte, sizeofChunk(chunk))
	encodeChunk(content, chunk)

	chunkStartOffset, err := w.writeFramed(OpChunk, content, nil)
	if err != nil {
		return err
	}
	chunkLength := uint64(w.sink.Position() - chunkStartOffset)

	messageIndexOffsets := make(map[uint16]uint64)
	messageIndexStart := w.sink.Position()
	if w.opts.UseMessageIndex {
		for _, id := range w.chunk.channelOrder {
			idx := w.chunk.messageIndexes[id]
			offset, err := w.writeMessageIndex(idx)
			if err != nil {
				return err
			}
			messageIndexOffsets[id] = uint64(offset)
		}
	}
	messageIndexLength := uint64(w.sink.Position() - messageIndexStart)

	if w.opts.UseChunkIndex {
		w.chunkIndexes = append(w.chunkIndexes, &ChunkIndex{
			MessageStartTime:    chunk.MessageStartTime,
			MessageEndTime:      chunk.MessageEndTime,
			ChunkStartOffset:    uint64(chunkStartOffset),
			ChunkLength:         chunkLength,
			MessageIndexOffsets: messageIndexOffsets,
			MessageIndexLength:  messageIndexLength,
			Compression:         CompressionFormat(compression),
			CompressedSize:      uint64(len(payload)),
			UncompressedSize:    uint64(len(records)),
		})
	}

	w.stats.ChunkCount++
	w.chunk.reset()
	w.schemaEmitted = make(map[uint16]bool)
	w.channelEmitted = make(map[uint16]bool)
	return nil
}

func (w *Writer) writeMessageIndex(idx *MessageIndex) (int64, error) {
	content := make([]byte, sizeofMessageIndex(idx))
	encodeMessageIndex(content, idx)
	return w.writeFramed(OpMessageIndex, content, nil)
}

// WriteAttachment writes an Attachment record at the current top-level
// position (attachments are never chunked) and, if configured, records an
// AttachmentIndex entry for it.
func (w *Writer) WriteAttachment(a *Attachment) error {
	if w.state != writerStarted {
		return writerStateErr(w.state)
	}
	content := make([]byte, sizeofAttachment(a))
	encodeAttachment(content, a, true)
	offset, err := w.writeFramed(OpAttachment, content, nil)
	if err != nil {
		return err
	}
	if w.opts.UseAttachmentIndex {
		w.attachmentIndexes = append(w.attachmentIndexes, &AttachmentIndex{
			Offset:     uint64(offset),
			Length:     uint64(w.sink.Position() - offset),
			LogTime:    a.LogTime,
			CreateTime: a.CreateTime,
			DataSize:   uint64(len(a.Data)),
			Name:       a.Name,
			MediaType:  a.MediaType,
		})
	}
	w.stats.AttachmentCount++
	return nil
}

// WriteMetadata writes a Metadata record at the current top-level position
// and, if configured, records a MetadataIndex entry for it.
func (w *Writer) WriteMetadata(m *Metadata) error {
	if w.state != writerStarted {
		return writerStateErr(w.state)
	}
	content := make([]byte, sizeofMetadata(m))
	encodeMetadata(content, m)
	offset, err := w.writeFramed(OpMetadata, content, nil)
	if err != nil {
		return err
	}
	if w.opts.UseMetadataIndex {
		w.metadataIndexes = append(w.metadataIndexes, &MetadataIndex{
			Offset: uint64(offset),
			Length: uint64(w.sink.Position() - offset),
			Name:   m.Name,
		})
	}
	w.stats.MetadataCount++
	return nil
}

// Close finalizes any open chunk, writes DataEnd, the summary section, and
// the Footer, then the trailing magic (§4.5.6). A Writer must not be used
// after Close returns.
func (w *Writer) Close() error {
	if w.state != writerStarted {
		return writerStateErr(w.state)
	}
	if w.opts.Chunked {
		if err := w.finalizeChunk(); err != nil {
			return err
		}
	}
	w.stats.SchemaCount = uint16(w.schemas.len())
	w.stats.ChannelCount = uint32(w.channels.len())

	var dataCRC uint32
	if w.opts.ComputeDataSectionCRC {
		dataCRC = w.sink.Checksum()
	}
	dataEndContent := make([]byte, sizeofDataEnd())
	encodeDataEnd(dataEndContent, &DataEnd{DataSectionCRC: dataCRC})
	if _, err := w.writeFramed(OpDataEnd, dataEndContent, nil); err != nil {
		return err
	}

	summaryStart := w.sink.Position()
	summaryCRC := newRunningCRC()
	var groups []*SummaryOffset

	if w.opts.RepeatSchemas {
		g, err := w.writeSchemaGroup(&summaryCRC)
		if err != nil {
			return err
		}
		if g != nil {
			groups = append(groups, g)
		}
	}
	if w.opts.RepeatChannels {
		g, err := w.writeChannelGroup(&summaryCRC)
		if err != nil {
			return err
		}
		if g != nil {
			groups = append(groups, g)
		}
	}
	if w.opts.UseStatistics {
		start := w.sink.Position()
		content := make([]byte, sizeofStatistics(w.stats))
		encodeStatistics(content, w.stats)
		if _, err := w.writeFramed(OpStatistics, content, &summaryCRC); err != nil {
			return err
		}
		groups = append(groups, &SummaryOffset{GroupOpcode: OpStatistics, GroupStart: uint64(start), GroupLength: uint64(w.sink.Position() - start)})
	}
	if w.opts.UseChunkIndex && len(w.chunkIndexes) > 0 {
		start := w.sink.Position()
		for _, ci := range w.chunkIndexes {
			content := make([]byte, sizeofChunkIndex(ci))
			encodeChunkIndex(content, ci)
			if _, err := w.writeFramed(OpChunkIndex, content, &summaryCRC); err != nil {
				return err
			}
		}
		groups = append(groups, &SummaryOffset{GroupOpcode: OpChunkIndex, GroupStart: uint64(start), GroupLength: uint64(w.sink.Position() - start)})
	}
	if w.opts.UseAttachmentIndex && len(w.attachmentIndexes) > 0 {
		start := w.sink.Position()
		for _, ai := range w.attachmentIndexes {
			content := make([]byte, sizeofAttachmentIndex(ai))
			encodeAttachmentIndex(content, ai)
			if _, err := w.writeFramed(OpAttachmentIndex, content, &summaryCRC); err != nil {
				return err
			}
		}
		groups = append(groups, &SummaryOffset{GroupOpcode: OpAttachmentIndex, GroupStart: uint64(start), GroupLength: uint64(w.sink.Position() - start)})
	}
	if w.opts.UseMetadataIndex && len(w.metadataIndexes) > 0 {
		start := w.sink.Position()
		for _, mi := range w.metadataIndexes {
			content := make([]byte, sizeofMetadataIndex(mi))
			encodeMetadataIndex(content, mi)
			if _, err := w.writeFramed(OpMetadataIndex, content, &summaryCRC); err != nil {
				return err
			}
		}
		groups = append(groups, &SummaryOffset{GroupOpcode: OpMetadataIndex, GroupStart: uint64(start), GroupLength: uint64(w.sink.Position() - start)})
	}

	summaryOffsetStart := w.sink.Position()
	if w.opts.UseSummaryOffsets {
		for _, so := range groups {
			content := make([]byte, sizeofSummaryOffset())
			encodeSummaryOffset(content, so)
			if _, err := w.writeFramed(OpSummaryOffset, content, &summaryCRC); err != nil {
				return err
			}
		}
	}

	footer := &Footer{SummaryStart: uint64(summaryStart), SummaryOffsetStart: uint64(summaryOffsetStart)}
	if w.opts.ComputeSummaryCRC {
		prefix := footerPrefixBytes(footer)
		summaryCRC.write(prefix)
		footer.SummaryCRC = summaryCRC.sum()
	}
	footerContent := make([]byte, sizeofFooter())
	encodeFooter(footerContent, footer)
	if _, err := w.writeFramed(OpFooter, footerContent, nil); err != nil {
		return err
	}
	if _, err := w.sink.Write(Magic); err != nil {
		return fmt.Errorf("mcap: failed to write trailing magic: %w", err)
	}

	w.state = writerEnded
	return nil
}

func (w *Writer) writeSchemaGroup(crc *runningCRC) (*SummaryOffset, error) {
	if w.schemas.len() == 0 {
		return nil, nil
	}
	start := w.sink.Position()
	var outerErr error
	w.schemas.forEach(func(_ uint16, s *Schema) {
		if outerErr != nil {
			return
		}
		content := make([]byte, sizeofSchema(s))
		encodeSchema(content, s)
		if _, err := w.writeFramed(OpSchema, content, crc); err != nil {
			outerErr = err
		}
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return &SummaryOffset{GroupOpcode: OpSchema, GroupStart: uint64(start), GroupLength: uint64(w.sink.Position() - start)}, nil
}

func (w *Writer) writeChannelGroup(crc *runningCRC) (*SummaryOffset, error) {
	if w.channels.len() == 0 {
		return nil, nil
	}
	start := w.sink.Position()
	var outerErr error
	w.channels.forEach(func(_ uint16, c *Channel) {
		if outerErr != nil {
			return
		}
		content := make([]byte, sizeofChannel(c))
		encodeChannel(content, c)
		if _, err := w.writeFramed(OpChannel, content, crc); err != nil {
			outerErr = err
		}
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return &SummaryOffset{GroupOpcode: OpChannel, GroupStart: uint64(start), GroupLength: uint64(w.sink.Position() - start)}, nil
}

// schemaEqual reports whether two schemas describing the same id are
// byte-identical, the condition re-declaration must satisfy (§9).
func schemaEqual(a, b *Schema) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Encoding == b.Encoding && bytes.Equal(a.Data, b.Data)
}
