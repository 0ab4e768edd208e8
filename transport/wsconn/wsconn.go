// Package wsconn adapts a gorilla/websocket connection to
// transport.ByteChannel: each WriteFrame/ReadFrame call corresponds to one
// binary WebSocket message. A text message is a fatal framing violation --
// the client requires binary frames.
package wsconn

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// Conn wraps a *websocket.Conn as a transport.ByteChannel.
type Conn struct {
	ws *websocket.Conn
}

// New wraps ws.
func New(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadFrame blocks until one binary WebSocket message arrives.
func (c *Conn) ReadFrame(ctx context.Context) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			ch <- result{err: err}
			return
		}
		if mt != websocket.BinaryMessage {
			ch <- result{err: fmt.Errorf("wsconn: received non-binary message type %d", mt)}
			return
		}
		ch <- result{data: data}
	}()
	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		c.ws.Close()
		return nil, ctx.Err()
	}
}

// WriteFrame sends frame as one binary WebSocket message.
func (c *Conn) WriteFrame(ctx context.Context, frame []byte) error {
	if dl, ok := ctx.Deadline(); ok {
		c.ws.SetWriteDeadline(dl)
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, frame)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
