// Package queue implements a bounded async FIFO: producers suspend when
// full, consumers suspend when empty,
// and after Close pending consumers drain the buffer before seeing
// end-of-stream. Backed by eapache/channels' native channel wrapper, which
// gives exactly this buffered-channel-with-closeable-iteration shape
// without reimplementing it.
package queue

import (
	"errors"

	channels "gopkg.in/eapache/channels.v1"
)

// ErrClosed is returned by Enqueue once the queue has been closed.
var ErrClosed = errors.New("queue: closed")

// Bounded is a fixed-capacity FIFO of T, safe for concurrent producers and
// consumers.
type Bounded[T any] struct {
	ch     *channels.NativeChannel
	closed chan struct{}
}

// New returns a Bounded queue of the given capacity.
func New[T any](capacity int) *Bounded[T] {
	return &Bounded[T]{
		ch:     channels.NewNativeChannel(capacity),
		closed: make(chan struct{}),
	}
}

// Enqueue adds v to the queue, blocking if it is full. It returns
// ErrClosed if the queue has already been closed.
func (q *Bounded[T]) Enqueue(v T) error {
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}
	select {
	case q.ch.In() <- v:
		return nil
	case <-q.closed:
		return ErrClosed
	}
}

// Dequeue removes and returns the next value, blocking if empty. ok is
// false once the queue is closed and drained.
func (q *Bounded[T]) Dequeue() (v T, ok bool) {
	x, ok := <-q.ch.Out()
	if !ok {
		return v, false
	}
	return x.(T), true
}

// Iter returns a channel that yields every queued value in order and is
// closed once Close has been called and the buffer has drained.
func (q *Bounded[T]) Iter() <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			v, ok := q.Dequeue()
			if !ok {
				return
			}
			out <- v
		}
	}()
	return out
}

// Close marks the queue closed: pending consumers receive every value
// already buffered, then see end-of-stream; further Enqueue calls fail.
func (q *Bounded[T]) Close() {
	select {
	case <-q.closed:
		return
	default:
		close(q.closed)
		q.ch.Close()
	}
}
