package mcap

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCursorPendingBeforeLoad(t *testing.T) {
	ci := &ChunkIndex{ChunkStartOffset: 100, MessageStartTime: 5, MessageEndTime: 9}
	c := newChunkCursor(ci, nil, 0, 100, false)
	assert.True(t, c.pending())
	assert.False(t, c.exhausted())
	assert.EqualValues(t, 5, c.key())

	c.load(nil)
	assert.False(t, c.pending())
	assert.True(t, c.exhausted())
}

func TestChunkCursorKeyTracksReverseDirection(t *testing.T) {
	ci := &ChunkIndex{MessageStartTime: 5, MessageEndTime: 9}
	c := newChunkCursor(ci, nil, 0, 100, true)
	assert.EqualValues(t, 9, c.key())
}

func TestChunkCursorPeekPanicsBeforeLoad(t *testing.T) {
	ci := &ChunkIndex{}
	c := newChunkCursor(ci, nil, 0, 100, false)
	assert.Panics(t, func() { c.peek() })
}

func TestPopsBeforePendingSortsFirst(t *testing.T) {
	pending := newChunkCursor(&ChunkIndex{MessageStartTime: 100}, nil, 0, 1000, false)
	loaded := newChunkCursor(&ChunkIndex{MessageStartTime: 1}, nil, 0, 1000, false)
	loaded.load([]MessageIndexEntry{{Timestamp: 1}})

	assert.True(t, popsBefore(pending, loaded))
	assert.False(t, popsBefore(loaded, pending))
}

func TestPopsBeforeTiebreaksOnChunkStartOffset(t *testing.T) {
	a := newChunkCursor(&ChunkIndex{ChunkStartOffset: 10}, nil, 0, 1000, false)
	b := newChunkCursor(&ChunkIndex{ChunkStartOffset: 20}, nil, 0, 1000, false)
	a.load([]MessageIndexEntry{{Timestamp: 5}})
	b.load([]MessageIndexEntry{{Timestamp: 5}})

	assert.True(t, popsBefore(a, b))
	assert.False(t, popsBefore(b, a))
}

func TestPopsBeforeMixedDirectionPanics(t *testing.T) {
	fwd := newChunkCursor(&ChunkIndex{}, nil, 0, 1000, false)
	rev := newChunkCursor(&ChunkIndex{}, nil, 0, 1000, true)
	assert.Panics(t, func() { popsBefore(fwd, rev) })
}

func TestChunkCursorHeapOrdersByKey(t *testing.T) {
	h := &chunkCursorHeap{}
	c1 := newChunkCursor(&ChunkIndex{ChunkStartOffset: 1}, nil, 0, 1000, false)
	c1.load([]MessageIndexEntry{{Timestamp: 30}})
	c2 := newChunkCursor(&ChunkIndex{ChunkStartOffset: 2}, nil, 0, 1000, false)
	c2.load([]MessageIndexEntry{{Timestamp: 10}})
	c3 := newChunkCursor(&ChunkIndex{ChunkStartOffset: 3}, nil, 0, 1000, false)
	c3.load([]MessageIndexEntry{{Timestamp: 20}})

	heap.Push(h, c1)
	heap.Push(h, c2)
	heap.Push(h, c3)

	require.Equal(t, 3, h.Len())
	var order []uint64
	for h.Len() > 0 {
		top := heap.Pop(h).(*chunkCursor)
		order = append(order, top.peek().Timestamp)
	}
	assert.Equal(t, []uint64{10, 20, 30}, order)
}

func TestChunkCursorHeapPushRejectsMismatchedDirection(t *testing.T) {
	h := &chunkCursorHeap{reverse: false}
	rev := newChunkCursor(&ChunkIndex{}, nil, 0, 1000, true)
	assert.Panics(t, func() { heap.Push(h, rev) })
}
