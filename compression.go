package mcap

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionFunc is the writer-side "compress_chunk" contract from §4.5.1
// and §6: given a finalized chunk's whole uncompressed payload, return the
// format name to record and the compressed bytes. Builtin formats are
// exposed as CompressionFunc values so a caller can also supply an entirely
// custom one (§8 scenario 6: a "reverse" compressor).
type CompressionFunc func(uncompressed []byte) (name string, compressed []byte, err error)

// CompressionLevel selects a speed/ratio tradeoff independent of the
// concrete codec, mirroring the teacher's compression_level.go.
type CompressionLevel int

const (
	CompressionLevelFastest CompressionLevel = -20
	CompressionLevelFast    CompressionLevel = -10
	CompressionLevelDefault CompressionLevel = 0
	CompressionLevelSlow    CompressionLevel = 10
	CompressionLevelSlowest CompressionLevel = 20
)

// CompressionLevelFromString parses a level name for CLI-adjacent config
// surfaces; unrecognized strings return CompressionLevelDefault.
func CompressionLevelFromString(level string) CompressionLevel {
	switch level {
	case "fastest":
		return CompressionLevelFastest
	case "fast":
		return CompressionLevelFast
	case "slow":
		return CompressionLevelSlow
	case "slowest":
		return CompressionLevelSlowest
	default:
		return CompressionLevelDefault
	}
}

func (c CompressionLevel) zstdLevel() zstd.EncoderLevel {
	switch {
	case c <= CompressionLevelFast:
		return zstd.SpeedFastest
	case c >= CompressionLevelSlowest:
		return zstd.SpeedBestCompression
	case c >= CompressionLevelSlow:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedDefault
	}
}

func (c CompressionLevel) lz4Level() lz4.CompressionLevel {
	switch {
	case c >= CompressionLevelSlowest:
		return lz4.Level9
	case c >= CompressionLevelSlow:
		return lz4.Level5
	default:
		return lz4.Level1
	}
}

// NewZSTDCompressor builds a CompressionFunc backed by
// github.com/klauspost/compress/zstd at the given level.
func NewZSTDCompressor(level CompressionLevel) CompressionFunc {
	return func(uncompressed []byte) (string, []byte, error) {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(level.zstdLevel()))
		if err != nil {
			return "", nil, fmt.Errorf("mcap: failed to construct zstd encoder: %w", err)
		}
		if _, err := enc.Write(uncompressed); err != nil {
			enc.Close()
			return "", nil, fmt.Errorf("mcap: zstd compression failed: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", nil, fmt.Errorf("mcap: zstd compression failed: %w", err)
		}
		return string(CompressionZSTD), buf.Bytes(), nil
	}
}

// NewLZ4Compressor builds a CompressionFunc backed by
// github.com/pierrec/lz4/v4 at the given level.
func NewLZ4Compressor(level CompressionLevel) CompressionFunc {
	return func(uncompressed []byte) (string, []byte, error) {
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(level.lz4Level())); err != nil {
			return "", nil, fmt.Errorf("mcap: failed to configure lz4 encoder: %w", err)
		}
		if _, err := w.Write(uncompressed); err != nil {
			w.Close()
			return "", nil, fmt.Errorf("mcap: lz4 compression failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return "", nil, fmt.Errorf("mcap: lz4 compression failed: %w", err)
		}
		return string(CompressionLZ4), buf.Bytes(), nil
	}
}

// compressorForFormat resolves one of the two builtin codecs by name, or
// nil (meaning "store uncompressed") for CompressionNone.
func compressorForFormat(format CompressionFormat, level CompressionLevel) (CompressionFunc, error) {
	switch format {
	case CompressionZSTD:
		return NewZSTDCompressor(level), nil
	case CompressionLZ4:
		return NewLZ4Compressor(level), nil
	case CompressionNone:
		return nil, nil
	default:
		return nil, &ErrUnsupportedCompression{Format: string(format)}
	}
}

// Decompressor turns a chunk's compressed payload back into its original
// uncompressed bytes, given the declared uncompressed size. The builtin zstd
// decompressor uses the size to presize its output; the builtin lz4
// decompressor reads exactly that many bytes and fails if the stream holds
// fewer.
type Decompressor func(compressed []byte, uncompressedSize uint64) ([]byte, error)

// DecompressorRegistry maps a compression format name to the function that
// reverses it, the "Decompression registry" Source/Sink contract of §6.
type DecompressorRegistry map[string]Decompressor

// defaultDecompressors is the builtin registry wired into every reader
// unless the caller supplies their own via LexerOptions/IndexedReaderOptions.
func defaultDecompressors() DecompressorRegistry {
	return DecompressorRegistry{
		string(CompressionZSTD): decompressZSTD,
		string(CompressionLZ4):  decompressLZ4,
		string(CompressionNone): decompressNone,
	}
}

func decompressZSTD(compressed []byte, uncompressedSize uint64) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("mcap: failed to construct zstd decoder: %w", err)
	}
	defer dec.Close()
	out := make([]byte, 0, uncompressedSize)
	out, err = dec.DecodeAll(compressed, out)
	if err != nil {
		return nil, fmt.Errorf("mcap: zstd decompression failed: %w", err)
	}
	return out, nil
}

func decompressLZ4(compressed []byte, uncompressedSize uint64) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(compressed))
	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("mcap: lz4 decompression failed: %w", err)
	}
	return out, nil
}

func decompressNone(compressed []byte, uncompressedSize uint64) ([]byte, error) {
	return compressed, nil
}
