package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](2)
	_, err := rq.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	assert.ErrorIs(t, rq.Enqueue(3), ErrQueueFull)

	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, rq.Len())
}

func TestRingQueuePushDropsOldest(t *testing.T) {
	rq := NewRingQueue[string](3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		rq.Push(s)
	}
	assert.True(t, rq.IsFull())
	assert.Equal(t, []string{"c", "d", "e"}, rq.Snapshot())
}
