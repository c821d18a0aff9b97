package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueDequeue(t *testing.T) {
	q := NewQueue(4)
	msg := Message{RequestID: "r1", Player: "p", Platform: "CHESS_COM",
		StartMonth: "2024-01", EndMonth: "2024-02"}
	require.NoError(t, q.Enqueue(msg))
	assert.Equal(t, 1, q.Len())

	got, ok := q.Dequeue(context.Background())
	require.True(t, ok)
	assert.Equal(t, msg, got)
	assert.Zero(t, q.Len())
}

func TestQueueFull(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.Enqueue(Message{RequestID: "r1"}))
	assert.ErrorIs(t, q.Enqueue(Message{RequestID: "r2"}), ErrQueueFull)
}

func TestQueueDequeueStopsOnCancel(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := q.Dequeue(ctx)
	assert.False(t, ok)
}
