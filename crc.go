package mcap

import (
	"hash/crc32"
	"io"
)

// runningCRC is an IEEE CRC-32 accumulator that can be read mid-stream and
// later continued, which is exactly what append mode needs for the
// data-section CRC (§9, "treat it as an opaque accumulator with init,
// update, finalize ... re-inverts the persisted value before continuing").
// crc32.Update already takes and returns the finalized representation, so
// continuing an accumulator from a previously-closed file is just seeding
// value with that file's last DataEnd.DataSectionCRC — no manual
// un-inversion is needed on top of what the stdlib already does internally.
type runningCRC struct {
	value uint32
	valid bool
}

func newRunningCRC() runningCRC { return runningCRC{valid: true} }

// continueRunningCRC resumes an accumulator from a previously finalized CRC
// value, as used when appending to a file that already carries a
// data-section CRC.
func continueRunningCRC(prior uint32) runningCRC { return runningCRC{value: prior, valid: true} }

func (c *runningCRC) write(p []byte) {
	c.value = crc32.Update(c.value, crc32.IEEETable, p)
}

func (c *runningCRC) sum() uint32 { return c.value }

// crcWriter wraps an io.Writer, feeding every written byte into a
// runningCRC. The Writer does not use it; it keeps its data-section CRC in
// writeSizer and its summary CRC in a separate runningCRC.
type crcWriter struct {
	w   io.Writer
	crc runningCRC
}

func newCRCWriter(w io.Writer) *crcWriter {
	return &crcWriter{w: w, crc: newRunningCRC()}
}

func (c *crcWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.crc.write(p[:n])
	}
	return n, err
}

func (c *crcWriter) Checksum() uint32 { return c.crc.sum() }

// crcReader wraps an io.Reader, optionally accumulating a CRC over every
// byte read. The readers in this package do not use it; attachments are
// decoded whole.
type crcReader struct {
	r          io.Reader
	crc        runningCRC
	computeCRC bool
}

func newCRCReader(r io.Reader, computeCRC bool) *crcReader {
	return &crcReader{r: r, crc: newRunningCRC(), computeCRC: computeCRC}
}

func (c *crcReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.computeCRC {
		c.crc.write(p[:n])
	}
	return n, err
}

func (c *crcReader) Checksum() uint32 { return c.crc.sum() }

// crc32IEEE computes a one-shot IEEE CRC-32 over buf, the variant used for
// chunk uncompressed payloads and attachment bodies where no incremental
// state needs to survive across calls.
func crc32IEEE(buf []byte) uint32 { return crc32.ChecksumIEEE(buf) }

// writeSizer wraps the sink, tracking both the current write offset (what
// §6's Sink.position() reports) and, optionally, a running CRC over every
// byte written — the data-section CRC of §4.5.3, which accumulates from
// Start through every byte up to (not including) DataEnd.
type writeSizer struct {
	w          io.Writer
	size       int64
	crc        runningCRC
	crcEnabled bool
}

func newWriteSizer(w io.Writer, crcEnabled bool, crc runningCRC) *writeSizer {
	return &writeSizer{w: w, crcEnabled: crcEnabled, crc: crc}
}

func (w *writeSizer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.size += int64(n)
	if w.crcEnabled && n > 0 {
		w.crc.write(p[:n])
	}
	return n, err
}

func (w *writeSizer) Position() int64  { return w.size }
func (w *writeSizer) Checksum() uint32 { return w.crc.sum() }
