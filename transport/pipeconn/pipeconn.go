// Package pipeconn implements an in-memory transport.ByteChannel pair for
// tests: each side's WriteFrame delivers one frame to the other side's
// ReadFrame, with no underlying network.
package pipeconn

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by ReadFrame/WriteFrame once the channel has been
// closed.
var ErrClosed = errors.New("pipeconn: closed")

// Pair is one end of an in-memory byte channel.
type Pair struct {
	out      chan []byte
	in       chan []byte
	closeOnc sync.Once
	closed   chan struct{}
}

// New returns two connected Pair values; frames written on one are read on
// the other.
func New() (*Pair, *Pair) {
	ab := make(chan []byte, 16)
	ba := make(chan []byte, 16)
	closed := make(chan struct{})
	a := &Pair{out: ab, in: ba, closed: closed}
	b := &Pair{out: ba, in: ab, closed: closed}
	return a, b
}

func (p *Pair) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case f, ok := <-p.in:
		if !ok {
			return nil, ErrClosed
		}
		return f, nil
	case <-p.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pair) WriteFrame(ctx context.Context, frame []byte) error {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	select {
	case p.out <- cp:
		return nil
	case <-p.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pair) Close() error {
	p.closeOnc.Do(func() { close(p.closed) })
	return nil
}
