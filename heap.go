package mcap

// chunkCursor walks one chunk's message index in time order, feeding the
// heap merge of §4.6.2. It starts "pending": its message indexes have not
// yet been loaded from the file, and its heap key falls back to the
// chunk's declared message_start_time (forward) or message_end_time
// (reverse) per §4.6.3. Once loaded, its key becomes the timestamp of its
// next unread entry.
type chunkCursor struct {
	index            *ChunkIndex
	relevantChannels map[uint16]bool // nil means "all channels"
	startTime        uint64
	endTime          uint64
	reverse          bool

	loaded  bool
	entries []MessageIndexEntry
	pos     int
}

func newChunkCursor(idx *ChunkIndex, relevantChannels map[uint16]bool, startTime, endTime uint64, reverse bool) *chunkCursor {
	return &chunkCursor{
		index:            idx,
		relevantChannels: relevantChannels,
		startTime:        startTime,
		endTime:          endTime,
		reverse:          reverse,
	}
}

func (c *chunkCursor) pending() bool { return !c.loaded }

// exhausted reports whether the cursor has no more entries to yield. A
// pending cursor is never exhausted — it must be loaded first.
func (c *chunkCursor) exhausted() bool { return c.loaded && c.pos >= len(c.entries) }

// key is this cursor's current sort key for the merge heap: either the next
// unread message's timestamp, or (while pending) the chunk's declared time
// bound nearest this cursor's direction of travel.
func (c *chunkCursor) key() uint64 {
	if c.loaded && c.pos < len(c.entries) {
		return c.entries[c.pos].Timestamp
	}
	if c.reverse {
		return c.index.MessageEndTime
	}
	return c.index.MessageStartTime
}

// peek returns the next entry without consuming it. Calling this before
// load is a programming error.
func (c *chunkCursor) peek() MessageIndexEntry {
	if !c.loaded {
		panic(ErrIndexNotLoaded)
	}
	return c.entries[c.pos]
}

func (c *chunkCursor) advance() { c.pos++ }

// load installs this cursor's clipped, sorted, filtered entry list — the
// output of loadMessageIndexesForChunk (§4.6.4) — marking it ready to
// participate in ordering by message key rather than by chunk bound.
func (c *chunkCursor) load(entries []MessageIndexEntry) {
	c.entries = entries
	c.pos = 0
	c.loaded = true
}

// popsBefore implements the full comparator of §4.6.3: pending cursors sort
// before loaded ones (forcing the caller to load before committing to an
// order); among comparably-loaded cursors, earlier key wins (later key for
// reverse); ties break on chunk_start_offset, ascending for forward and
// descending for reverse so that, combined with per-chunk physical
// ordering, same-timestamp messages replay in forward order and its exact
// reverse under reverse iteration.
func popsBefore(a, b *chunkCursor) bool {
	if a.reverse != b.reverse {
		panic(ErrCursorOrder)
	}
	if a.pending() != b.pending() {
		return a.pending()
	}
	ak, bk := a.key(), b.key()
	if ak != bk {
		if a.reverse {
			return ak > bk
		}
		return ak < bk
	}
	if a.reverse {
		return a.index.ChunkStartOffset > b.index.ChunkStartOffset
	}
	return a.index.ChunkStartOffset < b.index.ChunkStartOffset
}

// chunkCursorHeap implements container/heap.Interface over a set of chunk
// cursors sharing one iteration direction (§4.6.2's "min-heap (reverse:
// max-heap)"). The direction is carried by the cursors themselves; mixing
// forward and reverse cursors in one heap is rejected by popsBefore.
type chunkCursorHeap struct {
	cursors []*chunkCursor
	reverse bool
}

func (h *chunkCursorHeap) Len() int { return len(h.cursors) }

func (h *chunkCursorHeap) Less(i, j int) bool { return popsBefore(h.cursors[i], h.cursors[j]) }

func (h *chunkCursorHeap) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *chunkCursorHeap) Push(x interface{}) {
	c := x.(*chunkCursor)
	if c.reverse != h.reverse {
		panic(ErrCursorOrder)
	}
	h.cursors = append(h.cursors, c)
}

func (h *chunkCursorHeap) Pop() interface{} {
	old := h.cursors
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.cursors = old[:n-1]
	return item
}
