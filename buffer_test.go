package mcap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBuilderAppendAndRead(t *testing.T) {
	b := newBufferBuilder()
	n, err := b.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, err = b.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", string(b.bytes()))
	assert.Equal(t, 11, b.length())
	assert.Equal(t, 11, b.position())
}

func TestBufferBuilderSeekPatchesInPlace(t *testing.T) {
	b := newBufferBuilder()
	b.Write([]byte("AAAA"))
	b.Write([]byte("BBBB"))

	b.seek(0)
	b.Write([]byte("XXXX"))

	assert.Equal(t, "XXXXBBBB", string(b.bytes()))
	assert.Equal(t, 8, b.length())
}

func TestBufferBuilderSeekPastEndPanics(t *testing.T) {
	b := newBufferBuilder()
	b.Write([]byte("AA"))
	assert.Panics(t, func() { b.seek(10) })
}

func TestBufferBuilderView(t *testing.T) {
	b := newBufferBuilder()
	b.Write([]byte("0123456789"))
	assert.Equal(t, "345", string(b.view(3, 3)))
}

func TestBufferBuilderReset(t *testing.T) {
	b := newBufferBuilder()
	b.Write([]byte("some data"))
	b.reset()
	assert.Equal(t, 0, b.length())
	assert.Equal(t, 0, b.position())

	b.Write([]byte("new"))
	assert.Equal(t, "new", string(b.bytes()))
}

func TestBufferBuilderGrowsPastInitialCapacity(t *testing.T) {
	b := newBufferBuilder()
	big := make([]byte, 8192)
	for i := range big {
		big[i] = byte(i)
	}
	_, err := b.Write(big)
	require.NoError(t, err)
	assert.Equal(t, big, b.bytes())
}
