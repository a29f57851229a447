package mcap

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerBytes(h *Header) []byte {
	c := make([]byte, sizeofHeader(h))
	encodeHeader(c, h)
	return frameRecord(OpHeader, c)
}

func schemaBytes(s *Schema) []byte {
	c := make([]byte, sizeofSchema(s))
	encodeSchema(c, s)
	return frameRecord(OpSchema, c)
}

func channelBytes(ch *Channel) []byte {
	c := make([]byte, sizeofChannel(ch))
	encodeChannel(c, ch)
	return frameRecord(OpChannel, c)
}

func messageBytes(m *Message) []byte {
	c := make([]byte, sizeofMessage(m))
	encodeMessage(c, m)
	return frameRecord(OpMessage, c)
}

func footerBytes(f *Footer) []byte {
	c := make([]byte, sizeofFooter())
	encodeFooter(c, f)
	return frameRecord(OpFooter, c)
}

func TestLexerRejectsBadLeadingMagic(t *testing.T) {
	r := bytes.NewReader([]byte("not an mcap file"))
	lex := NewLexer(r, nil)
	_, _, err := lex.Next()
	var bad *ErrBadMagic
	assert.ErrorAs(t, err, &bad)
}

func TestLexerSkipMagicOption(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(headerBytes(&Header{Profile: "x"}))

	lex := NewLexer(&buf, &LexerOptions{SkipMagic: true})
	tt, r, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenHeader, tt)
	content, _ := io.ReadAll(r)
	h, err := decodeHeader(content)
	require.NoError(t, err)
	assert.Equal(t, "x", h.Profile)
}

func TestLexerReadsPlainStreamOfRecords(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(headerBytes(&Header{}))
	buf.Write(schemaBytes(&Schema{ID: 1, Name: "n", Encoding: "e"}))
	buf.Write(channelBytes(&Channel{ID: 0, SchemaID: 1, Topic: "/t", MessageEncoding: "e"}))
	buf.Write(messageBytes(&Message{ChannelID: 0, LogTime: 42, Data: []byte("hi")}))
	buf.Write(footerBytes(&Footer{}))
	buf.Write(Magic)

	lex := NewLexer(&buf, nil)
	var got []TokenType
	for {
		tt, r, err := lex.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, tt)
		io.Copy(io.Discard, r)
	}
	assert.Equal(t, []TokenType{TokenHeader, TokenSchema, TokenChannel, TokenMessage, TokenFooter}, got)
}

func buildChunkedStream(t *testing.T, compression CompressionFormat) []byte {
	t.Helper()
	cb := newChunkBuilder(true)
	schema := &Schema{ID: 1, Name: "n", Encoding: "e"}
	channel := &Channel{ID: 0, SchemaID: 1, Topic: "/t", MessageEncoding: "e"}
	cb.addSchema(schema)
	cb.addChannelRecord(channel)
	cb.addChannel(channel.ID)
	cb.addMessage(&Message{ChannelID: 0, LogTime: 1, Data: []byte("a")})
	cb.addMessage(&Message{ChannelID: 0, LogTime: 2, Data: []byte("b")})

	records := append([]byte(nil), cb.buf.bytes()...)
	payload := records
	name := string(CompressionNone)
	if compression == CompressionZSTD {
		compress := NewZSTDCompressor(CompressionLevelDefault)
		n, c, err := compress(records)
		require.NoError(t, err)
		name = n
		payload = c
	}

	chunk := &Chunk{
		MessageStartTime: cb.messageStartTime,
		MessageEndTime:   cb.messageEndTime,
		UncompressedSize: uint64(len(records)),
		UncompressedCRC:  crc32IEEE(records),
		Compression:      name,
		Records:          payload,
	}
	cc := make([]byte, sizeofChunk(chunk))
	encodeChunk(cc, chunk)

	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(headerBytes(&Header{}))
	buf.Write(frameRecord(OpChunk, cc))
	buf.Write(footerBytes(&Footer{}))
	buf.Write(Magic)
	return buf.Bytes()
}

func TestLexerTransparentlyDechunks(t *testing.T) {
	data := buildChunkedStream(t, CompressionNone)
	lex := NewLexer(bytes.NewReader(data), nil)

	var got []TokenType
	for {
		tt, r, err := lex.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, tt)
		io.Copy(io.Discard, r)
	}
	assert.Equal(t, []TokenType{TokenHeader, TokenSchema, TokenChannel, TokenMessage, TokenMessage, TokenFooter}, got)
}

func TestLexerEmitChunksSurfacesChunkToken(t *testing.T) {
	data := buildChunkedStream(t, CompressionNone)
	lex := NewLexer(bytes.NewReader(data), &LexerOptions{EmitChunks: true})

	tt, _, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenHeader, tt)

	tt, r, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, TokenChunk, tt)
	content, _ := io.ReadAll(r)
	chunk, err := decodeChunk(content)
	require.NoError(t, err)
	assert.EqualValues(t, 1, chunk.MessageStartTime)
}

func TestLexerDecompressesZSTDChunk(t *testing.T) {
	data := buildChunkedStream(t, CompressionZSTD)
	lex := NewLexer(bytes.NewReader(data), nil)

	var got []TokenType
	for {
		tt, r, err := lex.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, tt)
		io.Copy(io.Discard, r)
	}
	assert.Equal(t, []TokenType{TokenHeader, TokenSchema, TokenChannel, TokenMessage, TokenMessage, TokenFooter}, got)
}

func TestLexerUnsupportedCompressionErrors(t *testing.T) {
	cb := newChunkBuilder(true)
	cb.addMessage(&Message{ChannelID: 0, LogTime: 1})
	records := append([]byte(nil), cb.buf.bytes()...)

	name, compressed, err := reverseCompressor(records)
	require.NoError(t, err)

	chunk := &Chunk{
		UncompressedSize: uint64(len(records)),
		UncompressedCRC:  crc32IEEE(records),
		Compression:      name,
		Records:          compressed,
	}
	cc := make([]byte, sizeofChunk(chunk))
	encodeChunk(cc, chunk)

	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(headerBytes(&Header{}))
	buf.Write(frameRecord(OpChunk, cc))

	lex := NewLexer(&buf, nil)
	_, _, err = lex.Next() // header
	require.NoError(t, err)
	_, _, err = lex.Next()
	var unsupported *ErrUnsupportedCompression
	assert.ErrorAs(t, err, &unsupported)
}

func TestLexerValidateCRCRejectsCorruptChunk(t *testing.T) {
	cb := newChunkBuilder(true)
	cb.addMessage(&Message{ChannelID: 0, LogTime: 1})
	records := append([]byte(nil), cb.buf.bytes()...)

	chunk := &Chunk{
		UncompressedSize: uint64(len(records)),
		UncompressedCRC:  crc32IEEE(records) ^ 0xFF,
		Compression:      string(CompressionNone),
		Records:          records,
	}
	cc := make([]byte, sizeofChunk(chunk))
	encodeChunk(cc, chunk)

	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(headerBytes(&Header{}))
	buf.Write(frameRecord(OpChunk, cc))

	lex := NewLexer(&buf, &LexerOptions{ValidateCRC: true})
	_, _, err := lex.Next()
	require.NoError(t, err)
	_, _, err = lex.Next()
	var mismatch *ErrCRCMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestLexerNestedChunkRejected(t *testing.T) {
	inner := frameRecord(OpChunk, []byte{0, 0})
	chunk := &Chunk{
		UncompressedSize: uint64(len(inner)),
		UncompressedCRC:  crc32IEEE(inner),
		Compression:      string(CompressionNone),
		Records:          inner,
	}
	cc := make([]byte, sizeofChunk(chunk))
	encodeChunk(cc, chunk)

	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(headerBytes(&Header{}))
	buf.Write(frameRecord(OpChunk, cc))

	lex := NewLexer(&buf, nil)
	_, _, err := lex.Next()
	require.NoError(t, err)
	_, _, err = lex.Next()
	assert.ErrorIs(t, err, ErrNestedChunk)
}

func TestLexerMaxRecordSizeEnforced(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(headerBytes(&Header{}))
	buf.Write(messageBytes(&Message{ChannelID: 0, LogTime: 1, Data: bytes.Repeat([]byte{1}, 100)}))

	lex := NewLexer(&buf, &LexerOptions{MaxRecordSize: 10})
	_, _, err := lex.Next()
	require.NoError(t, err)
	_, _, err = lex.Next()
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestLexerMaxDecompressedChunkSizeEnforced(t *testing.T) {
	data := buildChunkedStream(t, CompressionNone)
	lex := NewLexer(bytes.NewReader(data), &LexerOptions{MaxDecompressedChunkSize: 1})
	_, _, err := lex.Next()
	require.NoError(t, err)
	_, _, err = lex.Next()
	assert.ErrorIs(t, err, ErrChunkTooLarge)
}
