// Package index runs the game-indexing pipeline: it consumes indexing
// requests from a queue, fetches the player's games from the chess provider,
// extracts features and persists them. It also hosts the reanalysis and
// retention passes.
package index

import (
	"context"
	"errors"
)

// Message asks the worker to index one player's games over a month range.
type Message struct {
	RequestID  string `json:"id"`
	Player     string `json:"player"`
	Platform   string `json:"platform"`
	StartMonth string `json:"startMonth"`
	EndMonth   string `json:"endMonth"`
}

// ErrQueueFull is returned when the queue cannot accept more messages.
var ErrQueueFull = errors.New("index: queue full")

// Queue is a bounded in-memory work queue between the HTTP handlers and the
// worker.
type Queue struct {
	ch chan Message
}

// NewQueue builds a queue holding up to size pending messages.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Message, size)}
}

// Enqueue adds a message without blocking; ErrQueueFull when at capacity.
func (q *Queue) Enqueue(msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until a message is available or the context is done.
func (q *Queue) Dequeue(ctx context.Context) (Message, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	case <-ctx.Done():
		return Message{}, false
	}
}

// Len reports how many messages are waiting.
func (q *Queue) Len() int {
	return len(q.ch)
}
