package mcap

import (
	"bytes"
	"container/heap"
	"fmt"
	"io"
	"math"
	"sort"
)

// Source is the random-access byte-level contract an IndexedReader needs
// from its caller (§6): a size and a transient-view ReadAt. Returned slices
// from ReadAt may be reused by the caller after the call returns, so an
// IndexedReader copies anything it must retain.
type Source interface {
	io.ReaderAt
	Size() (int64, error)
}

// ByteSliceSource adapts an in-memory []byte to Source, for tests and for
// callers that have already buffered a whole file.
type ByteSliceSource []byte

func (s ByteSliceSource) Size() (int64, error) { return int64(len(s)), nil }

func (s ByteSliceSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s)) {
		return 0, io.EOF
	}
	n := copy(p, s[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

const dataEndRecordLength = 1 + 8 + 4 // opcode + content-length field + DataEnd content

// ReadOrder selects the sequence in which ReadMessages yields messages.
type ReadOrder int

const (
	// LogTimeOrder yields messages non-decreasing in log_time, merging
	// across chunks as needed (§4.6.2).
	LogTimeOrder ReadOrder = iota
	// ReverseLogTimeOrder yields the exact reverse of LogTimeOrder
	// (§8: "reverse iteration ... yields the exact reverse").
	ReverseLogTimeOrder
	// FileOrder yields chunks in ascending chunk_start_offset and, within
	// each chunk, messages in the chunk's physical byte order, without a
	// global time-ordering merge. A supplemental low-overhead mode for
	// callers that don't need cross-chunk time ordering (e.g. re-chunking
	// tools) — see SPEC_FULL.md §4.9.
	FileOrder
)

// IndexedReaderOptions configures an IndexedReader.
type IndexedReaderOptions struct {
	Decompressors DecompressorRegistry
}

// IndexedReader provides random access to an MCAP file via its summary
// section: time/topic-filtered message iteration, and direct attachment and
// metadata lookup, per §4.6.
type IndexedReader struct {
	source        Source
	decompressors DecompressorRegistry

	header *Header
	footer *Footer

	schemas           map[uint16]*Schema
	channels          map[uint16]*Channel
	statistics        *Statistics
	chunkIndexes      []*ChunkIndex
	attachmentIndexes []*AttachmentIndex
	metadataIndexes   []*MetadataIndex
	summaryOffsets    []*SummaryOffset

	dataEnd       *DataEnd
	dataEndOffset int64

	chunkCache map[uint64][]byte
}

// NewIndexedReader parses the header, footer, and summary section of src
// (§4.6.1), returning an IndexedReader ready to serve ReadMessages,
// ReadAttachments, and ReadMetadata. It fails with ErrNotIndexed if the
// file's footer declares summaryStart == 0.
func NewIndexedReader(src Source, opts *IndexedReaderOptions) (*IndexedReader, error) {
	size, err := src.Size()
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to size source: %w", err)
	}
	const minSize = int64(len(Magic))*2 + 9 + 20
	if size < minSize {
		return nil, ErrFileTooSmall
	}

	decompressors := defaultDecompressors()
	if opts != nil && opts.Decompressors != nil {
		decompressors = opts.Decompressors
	}

	ir := &IndexedReader{
		source:        src,
		decompressors: decompressors,
		schemas:       make(map[uint16]*Schema),
		channels:      make(map[uint16]*Channel),
		chunkCache:    make(map[uint64][]byte),
	}

	if err := ir.readHeader(); err != nil {
		return nil, err
	}
	if err := ir.readFooterAndSummary(size); err != nil {
		return nil, err
	}
	return ir, nil
}

func (ir *IndexedReader) readHeader() error {
	prefix := make([]byte, len(Magic)+9)
	if _, err := ir.source.ReadAt(prefix, 0); err != nil {
		return fmt.Errorf("mcap: failed to read header prefix: %w", err)
	}
	if !bytes.Equal(prefix[:len(Magic)], Magic) {
		return &ErrBadMagic{Location: magicLocationStart, Actual: prefix[:len(Magic)]}
	}
	op := OpCode(prefix[len(Magic)])
	if op != OpHeader {
		return fmt.Errorf("mcap: expected header record, found opcode 0x%02x", byte(op))
	}
	c := newCursor(prefix[len(Magic)+1:])
	contentLen, _ := c.u64()
	safeLen, err := makeSafe(contentLen)
	if err != nil {
		return err
	}
	content := make([]byte, safeLen)
	if _, err := ir.source.ReadAt(content, int64(len(prefix))); err != nil {
		return fmt.Errorf("mcap: failed to read header content: %w", err)
	}
	h, err := decodeHeader(content)
	if err != nil {
		return err
	}
	ir.header = h
	return nil
}

func (ir *IndexedReader) readFooterAndSummary(size int64) error {
	const footerTailLen = 1 + 8 + 8 + 8 + 4
	tail := make([]byte, footerTailLen+len(Magic))
	if _, err := ir.source.ReadAt(tail, size-int64(len(tail))); err != nil {
		return fmt.Errorf("mcap: failed to read footer: %w", err)
	}
	if !bytes.Equal(tail[footerTailLen:], Magic) {
		return &ErrBadMagic{Location: magicLocationEnd, Actual: tail[footerTailLen:]}
	}
	op := OpCode(tail[0])
	if op != OpFooter {
		return fmt.Errorf("mcap: expected footer record, found opcode 0x%02x", byte(op))
	}
	lenCursor := newCursor(tail[1:9])
	contentLen, _ := lenCursor.u64()
	if contentLen != 20 {
		return fmt.Errorf("mcap: footer declares content length %d, expected 20", contentLen)
	}
	footer, err := decodeFooter(tail[9:footerTailLen])
	if err != nil {
		return err
	}
	ir.footer = footer

	if footer.SummaryStart == 0 {
		return ErrNotIndexed
	}

	footerOffset := size - int64(len(tail))
	regionStart := int64(footer.SummaryStart) - dataEndRecordLength
	region := make([]byte, footerOffset-regionStart)
	if _, err := ir.source.ReadAt(region, regionStart); err != nil {
		return fmt.Errorf("mcap: failed to read summary region: %w", err)
	}

	dataEndOp, dataEndContent, summaryStartPos, err := readFramedRecord(region, 0)
	if err != nil {
		return fmt.Errorf("mcap: failed to read data end record: %w", err)
	}
	if dataEndOp != OpDataEnd {
		return fmt.Errorf("mcap: expected data end record preceding summary, found opcode 0x%02x", byte(dataEndOp))
	}
	dataEnd, err := decodeDataEnd(dataEndContent)
	if err != nil {
		return err
	}
	ir.dataEnd = dataEnd
	ir.dataEndOffset = regionStart

	summaryBytes := region[summaryStartPos:]

	if footer.SummaryCRC != 0 {
		prefix := footerPrefixBytes(footer)
		actual := crc32IEEE(append(append([]byte{}, summaryBytes...), prefix...))
		if actual != footer.SummaryCRC {
			return &ErrCRCMismatch{Region: "summary", Expected: footer.SummaryCRC, Actual: actual}
		}
	}

	return ir.parseSummaryRecords(summaryBytes)
}

// footerPrefixBytes reproduces the bytes "[opcode, content_length,
// summaryStart, summaryOffsetStart]" named by §4.2's summary CRC policy:
// the footer record's own framing and leading two fields, excluding the
// trailing summaryCrc field itself.
func footerPrefixBytes(f *Footer) []byte {
	buf := make([]byte, 1+8+8+8)
	buf[0] = byte(OpFooter)
	putU64(buf[1:], 20)
	putU64(buf[9:], f.SummaryStart)
	putU64(buf[17:], f.SummaryOffsetStart)
	return buf
}

func (ir *IndexedReader) parseSummaryRecords(buf []byte) error {
	pos := 0
	sawStatistics := false
	for pos < len(buf) {
		op, content, next, err := readFramedRecord(buf, pos)
		if err != nil {
			return err
		}
		pos = next
		if isDataSectionOnlyOpcode(op) {
			return ErrDataRecordInSummary
		}
		rec, err := decodeRecord(op, content, true)
		if err != nil {
			return err
		}
		switch v := rec.(type) {
		case *Schema:
			ir.schemas[v.ID] = v
		case *Channel:
			ir.channels[v.ID] = v
		case *Statistics:
			if sawStatistics {
				return ErrDuplicateStatistics
			}
			sawStatistics = true
			ir.statistics = v
		case *ChunkIndex:
			ir.chunkIndexes = append(ir.chunkIndexes, v)
		case *AttachmentIndex:
			ir.attachmentIndexes = append(ir.attachmentIndexes, v)
		case *MetadataIndex:
			ir.metadataIndexes = append(ir.metadataIndexes, v)
		case *SummaryOffset:
			ir.summaryOffsets = append(ir.summaryOffsets, v)
		case *UnknownRecord:
			// Legal in the summary section; carries no indexing value.
		}
	}
	return nil
}

// Info returns the aggregate view of everything learned from the summary
// section. Grounded on the teacher's mcap.go Info type (§4.9).
func (ir *IndexedReader) Info() *Info {
	return &Info{
		Header:            ir.header,
		Footer:            ir.footer,
		Statistics:        ir.statistics,
		Schemas:           ir.schemas,
		Channels:          ir.channels,
		ChunkIndexes:      ir.chunkIndexes,
		AttachmentIndexes: ir.attachmentIndexes,
		MetadataIndexes:   ir.metadataIndexes,
	}
}

// DataEndOffset is the byte offset of the DataEnd record that closes the
// data section, used by InitializeForAppending to know where to
// resume writing (§4.5.7: seek the sink there and truncate).
func (ir *IndexedReader) DataEndOffset() int64 { return ir.dataEndOffset }

// DataSectionCRC is the data-section CRC recorded in the file's DataEnd
// record, used by InitializeForAppending to seed a continued
// accumulator (§4.5.7, §9).
func (ir *IndexedReader) DataSectionCRC() uint32 { return ir.dataEnd.DataSectionCRC }

// Schemas returns the schemas known from the summary section and from any
// chunk payloads read so far, keyed by ID. Shared with the caller; do not
// mutate.
func (ir *IndexedReader) Schemas() map[uint16]*Schema { return ir.schemas }

// Channels returns the channels known from the summary section and from any
// chunk payloads read so far, keyed by ID. Shared with the caller; do not
// mutate.
func (ir *IndexedReader) Channels() map[uint16]*Channel { return ir.channels }

// Statistics returns the file's Statistics record, or nil if none was
// present.
func (ir *IndexedReader) Statistics() *Statistics { return ir.statistics }

// ChunkIndexes returns every ChunkIndex read from the summary section.
func (ir *IndexedReader) ChunkIndexes() []*ChunkIndex { return ir.chunkIndexes }

// AttachmentIndexes returns every AttachmentIndex read from the summary
// section.
func (ir *IndexedReader) AttachmentIndexes() []*AttachmentIndex { return ir.attachmentIndexes }

// MetadataIndexes returns every MetadataIndex read from the summary
// section.
func (ir *IndexedReader) MetadataIndexes() []*MetadataIndex { return ir.metadataIndexes }

// Header returns the file's Header record.
func (ir *IndexedReader) Header() *Header { return ir.header }

// Footer returns the file's Footer record.
func (ir *IndexedReader) Footer() *Footer { return ir.footer }

// --- message reading ---

// ReadMessagesOptions parameterizes ReadMessages (§4.6.2).
type ReadMessagesOptions struct {
	Topics       []string
	StartTime    uint64
	EndTime      uint64
	HasStartTime bool
	HasEndTime   bool
	Order        ReadOrder
	ValidateCRCs bool
}

// MessageIterator yields decoded messages along with their schema and
// channel. Call Next until it returns io.EOF.
type MessageIterator struct {
	reader       *IndexedReader
	relevant     map[uint16]bool
	startTime    uint64
	endTime      uint64
	reverse      bool
	validateCRCs bool

	heap        *chunkCursorHeap
	fileOrder   []*chunkCursor
	fileOrderAt int
}

// ReadMessages builds a MessageIterator over the chunks overlapping
// [StartTime, EndTime] (or the whole file's time range if unset),
// restricted to Topics (or every channel if unset), merged by the
// requested ReadOrder.
func (ir *IndexedReader) ReadMessages(opts *ReadMessagesOptions) (*MessageIterator, error) {
	var o ReadMessagesOptions
	if opts != nil {
		o = *opts
	}
	startTime := uint64(0)
	if o.HasStartTime {
		startTime = o.StartTime
	}
	endTime := uint64(math.MaxUint64)
	if o.HasEndTime {
		endTime = o.EndTime
	}

	var relevant map[uint16]bool
	if len(o.Topics) > 0 {
		topicSet := make(map[string]bool, len(o.Topics))
		for _, t := range o.Topics {
			topicSet[t] = true
		}
		relevant = make(map[uint16]bool)
		for id, ch := range ir.channels {
			if topicSet[ch.Topic] {
				relevant[id] = true
			}
		}
	}

	reverse := o.Order == ReverseLogTimeOrder

	var selected []*ChunkIndex
	for _, ci := range ir.chunkIndexes {
		if ci.MessageEndTime < startTime || ci.MessageStartTime > endTime {
			continue
		}
		if relevant != nil && !chunkReferencesAny(ci, relevant) {
			continue
		}
		selected = append(selected, ci)
	}

	it := &MessageIterator{
		reader:       ir,
		relevant:     relevant,
		startTime:    startTime,
		endTime:      endTime,
		reverse:      reverse,
		validateCRCs: o.ValidateCRCs,
	}

	if o.Order == FileOrder {
		sort.Slice(selected, func(i, j int) bool {
			return selected[i].ChunkStartOffset < selected[j].ChunkStartOffset
		})
		for _, ci := range selected {
			it.fileOrder = append(it.fileOrder, newChunkCursor(ci, relevant, startTime, endTime, false))
		}
		return it, nil
	}

	h := &chunkCursorHeap{reverse: reverse}
	for _, ci := range selected {
		heap.Push(h, newChunkCursor(ci, relevant, startTime, endTime, reverse))
	}
	it.heap = h
	return it, nil
}

func chunkReferencesAny(ci *ChunkIndex, relevant map[uint16]bool) bool {
	if len(ci.MessageIndexOffsets) == 0 {
		// An empty chunk (scenario 2) carries no per-channel offsets but
		// must still be traversable without error.
		return true
	}
	for ch := range ci.MessageIndexOffsets {
		if relevant[ch] {
			return true
		}
	}
	return false
}

// Next returns the next (schema, channel, message) triple in the
// iterator's order, or io.EOF when exhausted.
func (it *MessageIterator) Next() (*Schema, *Channel, *Message, error) {
	if it.fileOrder != nil {
		return it.nextFileOrder()
	}
	return it.nextHeapOrder()
}

func (it *MessageIterator) nextFileOrder() (*Schema, *Channel, *Message, error) {
	for it.fileOrderAt < len(it.fileOrder) {
		cur := it.fileOrder[it.fileOrderAt]
		if cur.pending() {
			entries, err := it.reader.loadMessageIndexesForChunk(cur)
			if err != nil {
				return nil, nil, nil, err
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
			cur.load(entries)
		}
		if cur.exhausted() {
			it.fileOrderAt++
			continue
		}
		return it.yield(cur)
	}
	return nil, nil, nil, io.EOF
}

func (it *MessageIterator) nextHeapOrder() (*Schema, *Channel, *Message, error) {
	for it.heap.Len() > 0 {
		top := it.heap.cursors[0]
		if top.pending() {
			entries, err := it.reader.loadMessageIndexesForChunk(top)
			if err != nil {
				return nil, nil, nil, err
			}
			top.load(entries)
			if top.exhausted() {
				heap.Pop(it.heap)
				delete(it.reader.chunkCache, top.index.ChunkStartOffset)
				continue
			}
			heap.Fix(it.heap, 0)
			continue
		}
		if top.exhausted() {
			heap.Pop(it.heap)
			delete(it.reader.chunkCache, top.index.ChunkStartOffset)
			continue
		}
		return it.yield(top)
	}
	return nil, nil, nil, io.EOF
}

// yield decodes the message at cur's current entry, advances the cursor,
// repairs heap ordering if applicable, and returns the decoded triple.
func (it *MessageIterator) yield(cur *chunkCursor) (*Schema, *Channel, *Message, error) {
	payload, err := it.reader.loadChunkPayload(cur.index, it.validateCRCs)
	if err != nil {
		return nil, nil, nil, err
	}
	entry := cur.peek()
	cur.advance()
	if it.heap != nil {
		heap.Fix(it.heap, 0)
	}

	op, content, _, err := readFramedRecord(payload, int(entry.Offset))
	if err != nil {
		return nil, nil, nil, err
	}
	if op != OpMessage {
		return nil, nil, nil, ErrChunkIndexInconsistent
	}
	msg, err := decodeMessage(content)
	if err != nil {
		return nil, nil, nil, err
	}
	if msg.LogTime != entry.Timestamp {
		return nil, nil, nil, ErrMessageOffsetMismatch
	}
	channel := it.reader.channels[msg.ChannelID]
	if channel == nil {
		return nil, nil, nil, ErrUnknownChannel
	}
	schema := it.reader.schemas[channel.SchemaID]
	return schema, channel, msg, nil
}

// loadMessageIndexesForChunk reads, flattens, sorts, validates, and clips
// one chunk's message indexes per §4.6.4.
func (ir *IndexedReader) loadMessageIndexesForChunk(cur *chunkCursor) ([]MessageIndexEntry, error) {
	ci := cur.index
	if ci.MessageIndexLength == 0 {
		if ci.MessageStartTime != 0 || ci.MessageEndTime != 0 {
			return nil, ErrChunkIndexInconsistent
		}
		return nil, nil
	}

	minOffset := uint64(math.MaxUint64)
	for _, off := range ci.MessageIndexOffsets {
		if off < minOffset {
			minOffset = off
		}
	}
	buf := make([]byte, ci.MessageIndexLength)
	if _, err := ir.source.ReadAt(buf, int64(minOffset)); err != nil {
		return nil, fmt.Errorf("mcap: failed to read message index span: %w", err)
	}

	var all []MessageIndexEntry
	pos := 0
	for pos < len(buf) {
		op, content, next, err := readFramedRecord(buf, pos)
		if err != nil {
			return nil, err
		}
		pos = next
		if op != OpMessageIndex {
			continue
		}
		mi, err := decodeMessageIndex(content)
		if err != nil {
			return nil, err
		}
		if cur.relevantChannels != nil && !cur.relevantChannels[mi.ChannelID] {
			continue
		}
		if mi.IsEmpty() {
			continue
		}
		all = append(all, mi.Entries()...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Timestamp != all[j].Timestamp {
			return all[i].Timestamp < all[j].Timestamp
		}
		return all[i].Offset < all[j].Offset
	})

	if len(all) > 0 {
		if all[0].Timestamp < ci.MessageStartTime || all[len(all)-1].Timestamp > ci.MessageEndTime {
			return nil, ErrChunkIndexInconsistent
		}
	}

	if cur.reverse {
		reverseEntries(all)
	}

	return clipEntries(all, cur.startTime, cur.endTime, cur.reverse), nil
}

func reverseEntries(s []MessageIndexEntry) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// clipEntries restricts a time-ordered (or reverse time-ordered) entry list
// to [startTime, endTime] inclusive, via binary search in the direction the
// list is already sorted.
func clipEntries(entries []MessageIndexEntry, startTime, endTime uint64, reverse bool) []MessageIndexEntry {
	if !reverse {
		lo := sort.Search(len(entries), func(i int) bool { return entries[i].Timestamp >= startTime })
		hi := sort.Search(len(entries), func(i int) bool { return entries[i].Timestamp > endTime })
		if lo >= hi {
			return nil
		}
		return entries[lo:hi]
	}
	lo := sort.Search(len(entries), func(i int) bool { return entries[i].Timestamp <= endTime })
	hi := sort.Search(len(entries), func(i int) bool { return entries[i].Timestamp < startTime })
	if lo >= hi {
		return nil
	}
	return entries[lo:hi]
}

// loadChunkPayload returns a chunk's decompressed payload, decompressing
// and caching it on first access and, on that first access, opportunistically
// registering any Schema/Channel records the chunk carries — a chunk
// emitted per §4.5.4 always re-declares the Schema/Channel of every channel
// it uses, so a reader can resolve messages even when the writer was
// configured to skip repeating schemas/channels into the summary.
func (ir *IndexedReader) loadChunkPayload(ci *ChunkIndex, validateCRC bool) ([]byte, error) {
	if cached, ok := ir.chunkCache[ci.ChunkStartOffset]; ok {
		return cached, nil
	}
	raw := make([]byte, ci.ChunkLength)
	if _, err := ir.source.ReadAt(raw, int64(ci.ChunkStartOffset)); err != nil {
		return nil, fmt.Errorf("mcap: failed to read chunk: %w", err)
	}
	_, content, _, err := readFramedRecord(raw, 0)
	if err != nil {
		return nil, err
	}
	chunk, err := decodeChunk(content)
	if err != nil {
		return nil, err
	}
	decompress, ok := ir.decompressors[chunk.Compression]
	if !ok {
		return nil, &ErrUnsupportedCompression{Format: chunk.Compression}
	}
	payload, err := decompress(chunk.Records, chunk.UncompressedSize)
	if err != nil {
		return nil, err
	}
	if validateCRC && chunk.UncompressedCRC != 0 {
		actual := crc32IEEE(payload)
		if actual != chunk.UncompressedCRC {
			return nil, &ErrCRCMismatch{Region: "chunk", Expected: chunk.UncompressedCRC, Actual: actual}
		}
	}
	ir.registerChunkDeclarations(payload)
	ir.chunkCache[ci.ChunkStartOffset] = payload
	return payload, nil
}

func (ir *IndexedReader) registerChunkDeclarations(payload []byte) {
	pos := 0
	for pos < len(payload) {
		op, content, next, err := readFramedRecord(payload, pos)
		if err != nil {
			return
		}
		pos = next
		switch op {
		case OpSchema:
			if s, err := decodeSchema(content); err == nil {
				if _, ok := ir.schemas[s.ID]; !ok {
					ir.schemas[s.ID] = s
				}
			}
		case OpChannel:
			if ch, err := decodeChannel(content); err == nil {
				if _, ok := ir.channels[ch.ID]; !ok {
					ir.channels[ch.ID] = ch
				}
			}
		}
	}
}

// --- attachments / metadata ---

// AttachmentFilter restricts ReadAttachments by name, media type, or time.
type AttachmentFilter struct {
	Name         string
	MediaType    string
	StartTime    uint64
	EndTime      uint64
	HasStartTime bool
	HasEndTime   bool
}

func (f *AttachmentFilter) matches(ai *AttachmentIndex) bool {
	if f == nil {
		return true
	}
	if f.Name != "" && f.Name != ai.Name {
		return false
	}
	if f.MediaType != "" && f.MediaType != ai.MediaType {
		return false
	}
	if f.HasStartTime && ai.LogTime < f.StartTime {
		return false
	}
	if f.HasEndTime && ai.LogTime > f.EndTime {
		return false
	}
	return true
}

// ReadAttachments decodes every Attachment record whose index matches
// filter, in file order (§4.6.5).
func (ir *IndexedReader) ReadAttachments(filter *AttachmentFilter) ([]*Attachment, error) {
	var out []*Attachment
	for _, ai := range ir.attachmentIndexes {
		if !filter.matches(ai) {
			continue
		}
		buf := make([]byte, ai.Length)
		if _, err := ir.source.ReadAt(buf, int64(ai.Offset)); err != nil {
			return nil, fmt.Errorf("mcap: failed to read attachment: %w", err)
		}
		_, content, _, err := readFramedRecord(buf, 0)
		if err != nil {
			return nil, err
		}
		a, err := decodeAttachment(content, true)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// MetadataFilter restricts ReadMetadata by name.
type MetadataFilter struct {
	Name string
}

func (f *MetadataFilter) matches(mi *MetadataIndex) bool {
	if f == nil || f.Name == "" {
		return true
	}
	return f.Name == mi.Name
}

// ReadMetadata decodes every Metadata record whose index matches filter, in
// file order (§4.6.5).
func (ir *IndexedReader) ReadMetadata(filter *MetadataFilter) ([]*Metadata, error) {
	var out []*Metadata
	for _, mi := range ir.metadataIndexes {
		if !filter.matches(mi) {
			continue
		}
		buf := make([]byte, mi.Length)
		if _, err := ir.source.ReadAt(buf, int64(mi.Offset)); err != nil {
			return nil, fmt.Errorf("mcap: failed to read metadata: %w", err)
		}
		_, content, _, err := readFramedRecord(buf, 0)
		if err != nil {
			return nil, err
		}
		m, err := decodeMetadata(content)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
