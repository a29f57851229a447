package mcap

import (
	"bytes"
	"fmt"
	"io"
)

// TokenType identifies what Lexer.Next has just read.
type TokenType int

const (
	TokenHeader TokenType = iota
	TokenFooter
	TokenSchema
	TokenChannel
	TokenMessage
	TokenChunk
	TokenMessageIndex
	TokenChunkIndex
	TokenAttachment
	TokenAttachmentIndex
	TokenStatistics
	TokenMetadata
	TokenMetadataIndex
	TokenSummaryOffset
	TokenDataEnd
	TokenUnknown
	TokenError
)

func (t TokenType) String() string {
	switch t {
	case TokenHeader:
		return "header"
	case TokenFooter:
		return "footer"
	case TokenSchema:
		return "schema"
	case TokenChannel:
		return "channel"
	case TokenMessage:
		return "message"
	case TokenChunk:
		return "chunk"
	case TokenMessageIndex:
		return "message index"
	case TokenChunkIndex:
		return "chunk index"
	case TokenAttachment:
		return "attachment"
	case TokenAttachmentIndex:
		return "attachment index"
	case TokenStatistics:
		return "statistics"
	case TokenMetadata:
		return "metadata"
	case TokenMetadataIndex:
		return "metadata index"
	case TokenSummaryOffset:
		return "summary offset"
	case TokenDataEnd:
		return "data end"
	case TokenUnknown:
		return "unknown"
	default:
		return "error"
	}
}

func tokenForOpcode(op OpCode) TokenType {
	switch op {
	case OpHeader:
		return TokenHeader
	case OpFooter:
		return TokenFooter
	case OpSchema:
		return TokenSchema
	case OpChannel:
		return TokenChannel
	case OpMessage:
		return TokenMessage
	case OpChunk:
		return TokenChunk
	case OpMessageIndex:
		return TokenMessageIndex
	case OpChunkIndex:
		return TokenChunkIndex
	case OpAttachment:
		return TokenAttachment
	case OpAttachmentIndex:
		return TokenAttachmentIndex
	case OpStatistics:
		return TokenStatistics
	case OpMetadata:
		return TokenMetadata
	case OpMetadataIndex:
		return TokenMetadataIndex
	case OpSummaryOffset:
		return TokenSummaryOffset
	case OpDataEnd:
		return TokenDataEnd
	default:
		return TokenUnknown
	}
}

// LexerOptions configures a Lexer.
type LexerOptions struct {
	// SkipMagic suppresses the leading-magic check, for callers that have
	// already consumed it.
	SkipMagic bool
	// EmitChunks surfaces Chunk records as TokenChunk instead of
	// transparently de-chunking them into their constituent records.
	EmitChunks bool
	// ValidateCRC verifies each chunk's uncompressed_crc as it is
	// de-chunked.
	ValidateCRC bool
	// MaxDecompressedChunkSize bounds how large a single chunk may
	// decompress to; zero means unbounded.
	MaxDecompressedChunkSize uint64
	// MaxRecordSize bounds any single record's declared content length;
	// zero means unbounded.
	MaxRecordSize uint64
	// Decompressors overrides the builtin zstd/lz4/none registry.
	Decompressors DecompressorRegistry
}

// Lexer is a forward-only consumer that yields records as bytes arrive from
// r — the "Stream reader" component of §2. It never seeks; chunk
// de-framing, when enabled, buffers just the chunk currently being drained.
type Lexer struct {
	r             io.Reader
	opts          LexerOptions
	decompressors DecompressorRegistry

	inChunk      bool
	chunkBuf     []byte
	chunkPos     int
	magicChecked bool
}

// NewLexer constructs a Lexer reading from r.
func NewLexer(r io.Reader, opts *LexerOptions) *Lexer {
	var o LexerOptions
	if opts != nil {
		o = *opts
	}
	decompressors := o.Decompressors
	if decompressors == nil {
		decompressors = defaultDecompressors()
	}
	return &Lexer{r: r, opts: o, decompressors: decompressors, magicChecked: o.SkipMagic}
}

func (l *Lexer) checkMagic() error {
	if l.magicChecked {
		return nil
	}
	buf := make([]byte, len(Magic))
	if _, err := io.ReadFull(l.r, buf); err != nil {
		return fmt.Errorf("mcap: failed to read leading magic: %w", err)
	}
	if !bytes.Equal(buf, Magic) {
		return &ErrBadMagic{Location: magicLocationStart, Actual: buf}
	}
	l.magicChecked = true
	return nil
}

// Next reads the next token, returning its type and a reader over exactly
// that record's content bytes. The content is read into memory before Next
// returns, so the reader need not be consumed before calling Next again.
func (l *Lexer) Next() (TokenType, io.Reader, error) {
	if err := l.checkMagic(); err != nil {
		return TokenError, nil, err
	}

	for {
		if l.inChunk {
			if l.chunkPos >= len(l.chunkBuf) {
				l.inChunk = false
				continue
			}
			op, content, newPos, err := readFramedRecord(l.chunkBuf, l.chunkPos)
			if err != nil {
				return TokenError, nil, err
			}
			l.chunkPos = newPos
			if op == OpChunk {
				return TokenError, nil, ErrNestedChunk
			}
			tt := tokenForOpcode(op)
			if tt == TokenUnknown {
				return TokenError, nil, fmt.Errorf("mcap: unknown opcode 0x%02x inside chunk", byte(op))
			}
			return tt, newLimitedReader(content), nil
		}

		op, contentLen, err := readRecordHeader(l.r)
		if err != nil {
			return TokenError, nil, err
		}
		if l.opts.MaxRecordSize > 0 && contentLen > l.opts.MaxRecordSize {
			return TokenError, nil, ErrRecordTooLarge
		}
		safeLen, err := makeSafe(contentLen)
		if err != nil {
			return TokenError, nil, err
		}

		if op == OpChunk && !l.opts.EmitChunks {
			if err := l.loadChunk(safeLen); err != nil {
				return TokenError, nil, err
			}
			continue
		}

		content := make([]byte, safeLen)
		if _, err := io.ReadFull(l.r, content); err != nil {
			return TokenError, nil, fmt.Errorf("mcap: failed to read %s content: %w", OpCode(op), err)
		}
		if op == OpFooter {
			if err := l.checkTrailingMagic(); err != nil {
				return TokenError, nil, err
			}
		}
		return tokenForOpcode(op), newLimitedReader(content), nil
	}
}

// checkTrailingMagic consumes and validates the 8 magic bytes following a
// Footer record, which is always the last thing in a well-formed stream.
func (l *Lexer) checkTrailingMagic() error {
	buf := make([]byte, len(Magic))
	if _, err := io.ReadFull(l.r, buf); err != nil {
		return fmt.Errorf("mcap: failed to read trailing magic: %w", err)
	}
	if !bytes.Equal(buf, Magic) {
		return &ErrBadMagic{Location: magicLocationEnd, Actual: buf}
	}
	return nil
}

// loadChunk reads a Chunk record's content, decompresses it in full, and
// switches the lexer into chunk-draining mode so subsequent Next calls
// yield its constituent Schema/Channel/Message records.
func (l *Lexer) loadChunk(contentLen int) error {
	raw := make([]byte, contentLen)
	if _, err := io.ReadFull(l.r, raw); err != nil {
		return fmt.Errorf("mcap: failed to read chunk content: %w", err)
	}
	chunk, err := decodeChunk(raw)
	if err != nil {
		return err
	}
	if l.opts.MaxDecompressedChunkSize > 0 && chunk.UncompressedSize > l.opts.MaxDecompressedChunkSize {
		return ErrChunkTooLarge
	}
	decompress, ok := l.decompressors[chunk.Compression]
	if !ok {
		return &ErrUnsupportedCompression{Format: chunk.Compression}
	}
	decoded, err := decompress(chunk.Records, chunk.UncompressedSize)
	if err != nil {
		return err
	}
	if l.opts.ValidateCRC && chunk.UncompressedCRC != 0 {
		actual := crc32IEEE(decoded)
		if actual != chunk.UncompressedCRC {
			return &ErrCRCMismatch{Region: "chunk", Expected: chunk.UncompressedCRC, Actual: actual}
		}
	}
	l.chunkBuf = decoded
	l.chunkPos = 0
	l.inChunk = true
	return nil
}

// readRecordHeader reads the 9-byte opcode+length prefix shared by every
// top-level record.
func readRecordHeader(r io.Reader) (OpCode, uint64, error) {
	var hdr [9]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return 0, 0, io.EOF
		}
		return 0, 0, fmt.Errorf("mcap: failed to read record header: %w", err)
	}
	op := OpCode(hdr[0])
	c := newCursor(hdr[1:])
	length, _ := c.u64()
	return op, length, nil
}

// readFramedRecord reads one opcode+length+content record out of an
// in-memory buffer (used for chunk-internal records, which are never
// streamed since the whole chunk is already decompressed in memory).
func readFramedRecord(buf []byte, pos int) (OpCode, []byte, int, error) {
	if len(buf)-pos < 9 {
		return 0, nil, pos, &ErrTruncatedRecord{ActualLen: len(buf) - pos, ExpectedLen: 9}
	}
	op := OpCode(buf[pos])
	c := newCursor(buf[pos+1 : pos+9])
	length, _ := c.u64()
	safeLen, err := makeSafe(length)
	if err != nil {
		return 0, nil, pos, err
	}
	start := pos + 9
	end := start + safeLen
	if end > len(buf) {
		return 0, nil, pos, &ErrTruncatedRecord{Opcode: op, ActualLen: len(buf) - start, ExpectedLen: safeLen}
	}
	return op, buf[start:end], end, nil
}

func newLimitedReader(content []byte) io.Reader { return bytes.NewReader(content) }
