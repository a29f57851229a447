// Package mcap implements the MCAP container format: a self-describing
// container for timestamped, multi-channel, pre-serialized message data.
package mcap

import "fmt"

// Magic is the 8-byte sequence that opens and closes every MCAP file.
var Magic = []byte{0x89, 'M', 'C', 'A', 'P', 0x30, '\r', '\n'}

// CompressionFormat names a chunk compression algorithm. The empty string
// means the chunk is stored uncompressed.
type CompressionFormat string

const (
	CompressionZSTD CompressionFormat = "zstd"
	CompressionLZ4  CompressionFormat = "lz4"
	CompressionNone CompressionFormat = ""
)

func (c CompressionFormat) String() string { return string(c) }

// OpCode identifies a record kind in the MCAP wire format.
type OpCode byte

const (
	OpReserved        OpCode = 0x00
	OpHeader          OpCode = 0x01
	OpFooter          OpCode = 0x02
	OpSchema          OpCode = 0x03
	OpChannel         OpCode = 0x04
	OpMessage         OpCode = 0x05
	OpChunk           OpCode = 0x06
	OpMessageIndex    OpCode = 0x07
	OpChunkIndex      OpCode = 0x08
	OpAttachment      OpCode = 0x09
	OpAttachmentIndex OpCode = 0x0A
	OpStatistics      OpCode = 0x0B
	OpMetadata        OpCode = 0x0C
	OpMetadataIndex   OpCode = 0x0D
	OpSummaryOffset   OpCode = 0x0E
	OpDataEnd         OpCode = 0x0F
)

func (c OpCode) String() string {
	switch c {
	case OpReserved:
		return "reserved"
	case OpHeader:
		return "header"
	case OpFooter:
		return "footer"
	case OpSchema:
		return "schema"
	case OpChannel:
		return "channel"
	case OpMessage:
		return "message"
	case OpChunk:
		return "chunk"
	case OpMessageIndex:
		return "message index"
	case OpChunkIndex:
		return "chunk index"
	case OpAttachment:
		return "attachment"
	case OpAttachmentIndex:
		return "attachment index"
	case OpStatistics:
		return "statistics"
	case OpMetadata:
		return "metadata"
	case OpMetadataIndex:
		return "metadata index"
	case OpSummaryOffset:
		return "summary offset"
	case OpDataEnd:
		return "data end"
	default:
		return fmt.Sprintf("<unrecognized opcode 0x%02x>", byte(c))
	}
}

// isDataSectionOnlyOpcode reports whether op (Message, Chunk or
// MessageIndex) may appear only in the data section; any of these found in
// the summary section is fatal (§4.6.1).
func isDataSectionOnlyOpcode(op OpCode) bool {
	switch op {
	case OpMessage, OpChunk, OpMessageIndex:
		return true
	default:
		return false
	}
}

// Header is the first record in an MCAP file.
type Header struct {
	Profile string
	Library string
}

// Footer is the final fixed-size record before the trailing magic.
type Footer struct {
	SummaryStart       uint64
	SummaryOffsetStart uint64
	SummaryCRC         uint32
}

// Schema describes the shape of messages on one or more channels. Schema IDs
// are unique and nonzero within a file; re-declarations of the same ID must
// be byte-identical.
type Schema struct {
	ID       uint16
	Name     string
	Encoding string
	Data     []byte
}

// Channel names a stream of messages sharing one schema and encoding.
// Re-declarations of the same ID must agree on ID, SchemaID, Topic,
// MessageEncoding, and Metadata.
type Channel struct {
	ID              uint16
	SchemaID        uint16
	Topic           string
	MessageEncoding string
	Metadata        map[string]string
}

// Equal reports whether two Channel records describing the same ID are
// byte-equal in every field that must agree on re-declaration (§9).
func (c *Channel) Equal(o *Channel) bool {
	if c.ID != o.ID || c.SchemaID != o.SchemaID ||
		c.Topic != o.Topic || c.MessageEncoding != o.MessageEncoding {
		return false
	}
	if len(c.Metadata) != len(o.Metadata) {
		return false
	}
	for k, v := range c.Metadata {
		if ov, ok := o.Metadata[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Message is a single timestamped record on a channel. LogTime and
// PublishTime are unsigned nanoseconds; zero is a valid timestamp.
type Message struct {
	ChannelID   uint16
	Sequence    uint32
	LogTime     uint64
	PublishTime uint64
	Data        []byte
}

// Chunk batches Schema, Channel, and Message records, optionally compressed.
type Chunk struct {
	MessageStartTime uint64
	MessageEndTime   uint64
	UncompressedSize uint64
	UncompressedCRC  uint32
	Compression      string
	Records          []byte
}

// MessageIndexEntry locates one message within a chunk's decompressed
// payload by timestamp and byte offset.
type MessageIndexEntry struct {
	Timestamp uint64
	Offset    uint64
}

// MessageIndex lists, for one channel within one chunk, every message's
// (timestamp, offset) pair. Entries grow amortized O(1) via Add, so a
// MessageIndex can be reused across chunks by calling Reset.
type MessageIndex struct {
	ChannelID uint16
	Records   []MessageIndexEntry

	filled int
}

// Reset empties the index without releasing its backing array, for reuse
// across chunks.
func (idx *MessageIndex) Reset() { idx.filled = 0 }

// IsEmpty reports whether any entries have been added since the index was
// created or last Reset.
func (idx *MessageIndex) IsEmpty() bool { return idx.filled == 0 }

// Entries returns the entries added so far, in insertion order.
func (idx *MessageIndex) Entries() []MessageIndexEntry { return idx.Records[:idx.filled] }

// Add appends one (timestamp, offset) pair.
func (idx *MessageIndex) Add(timestamp, offset uint64) {
	if idx.filled >= len(idx.Records) {
		grown := make([]MessageIndexEntry, (len(idx.Records)+16)*2)
		copy(grown, idx.Records)
		idx.Records = grown
	}
	idx.Records[idx.filled] = MessageIndexEntry{Timestamp: timestamp, Offset: offset}
	idx.filled++
}

// ChunkIndex locates a Chunk record and its associated MessageIndex records
// within the file.
type ChunkIndex struct {
	MessageStartTime    uint64
	MessageEndTime      uint64
	ChunkStartOffset    uint64
	ChunkLength         uint64
	MessageIndexOffsets map[uint16]uint64
	MessageIndexLength  uint64
	Compression         CompressionFormat
	CompressedSize      uint64
	UncompressedSize    uint64
}

// Attachment is an auxiliary artifact (text, calibration data, core dumps,
// ...) stored outside any chunk.
type Attachment struct {
	LogTime    uint64
	CreateTime uint64
	Name       string
	MediaType  string
	Data       []byte
}

// AttachmentIndex locates an Attachment record within the file.
type AttachmentIndex struct {
	Offset     uint64
	Length     uint64
	LogTime    uint64
	CreateTime uint64
	DataSize   uint64
	Name       string
	MediaType  string
}

// Statistics summarizes the recorded data. At most one Statistics record
// should appear per file.
type Statistics struct {
	MessageCount         uint64
	SchemaCount          uint16
	ChannelCount         uint32
	AttachmentCount      uint32
	MetadataCount        uint32
	ChunkCount           uint32
	MessageStartTime     uint64
	MessageEndTime       uint64
	ChannelMessageCounts map[uint16]uint64

	hasMessages bool
}

// Metadata carries arbitrary user key-value data under a name.
type Metadata struct {
	Name     string
	Metadata map[string]string
}

// MetadataIndex locates a Metadata record within the file.
type MetadataIndex struct {
	Offset uint64
	Length uint64
	Name   string
}

// SummaryOffset locates one opcode-homogeneous group of records within the
// summary section.
type SummaryOffset struct {
	GroupOpcode OpCode
	GroupStart  uint64
	GroupLength uint64
}

// DataEnd marks the end of the data section.
type DataEnd struct {
	DataSectionCRC uint32
}

// UnknownRecord preserves the opaque payload of an opcode this library does
// not recognize. Unknown records are legal in the data section and summary
// section but forbidden inside a chunk (§4.2).
type UnknownRecord struct {
	Opcode OpCode
	Data   []byte
}

// Info aggregates the file-level metadata gathered from a summary section:
// schemas, channels, statistics, and the three index kinds, plus the header
// and footer.
type Info struct {
	Header            *Header
	Footer            *Footer
	Statistics        *Statistics
	Schemas           map[uint16]*Schema
	Channels          map[uint16]*Channel
	ChunkIndexes      []*ChunkIndex
	AttachmentIndexes []*AttachmentIndex
	MetadataIndexes   []*MetadataIndex
}

// ChannelCounts maps each channel's topic to its message count, using the
// per-channel counts recorded in Statistics.
func (i *Info) ChannelCounts() map[string]uint64 {
	counts := make(map[string]uint64, len(i.Channels))
	if i.Statistics == nil {
		return counts
	}
	for id, n := range i.Statistics.ChannelMessageCounts {
		if ch, ok := i.Channels[id]; ok {
			counts[ch.Topic] = n
		}
	}
	return counts
}

// CanReadMessagesUsingIndex reports whether ReadMessages can serve this file
// from its chunk indexes alone, without falling back to an unindexed scan.
func (i *Info) CanReadMessagesUsingIndex() bool {
	return len(i.ChunkIndexes) > 0 || (i.Statistics != nil && i.Statistics.MessageCount == 0)
}
