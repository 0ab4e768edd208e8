// Package quicconn adapts a QUIC stream to transport.ByteChannel. QUIC
// streams are byte streams, not message-framed, so each logical frame is
// wrapped in a 4-byte big-endian length prefix on the wire; this is purely
// a framing convenience over the stream and carries no protocol meaning of
// its own (compare sockatz's QUICProxyConn, which frames UDP datagrams
// instead of a stream).
package quicconn

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"

	quic "github.com/quic-go/quic-go"
)

// maxFrameSize bounds a single length-prefixed frame, large enough for any
// SMP block size (up to 65536) plus slack for the handshake's RSA-OAEP
// ciphertext.
const maxFrameSize = 1 << 20

// Conn adapts one QUIC stream, opened over conn, to transport.ByteChannel.
type Conn struct {
	conn   quic.Connection
	stream quic.Stream
}

// Dial opens a QUIC connection to addr and a single bidirectional stream
// on it.
func Dial(ctx context.Context, addr string, tlsConf *tls.Config, qcfg *quic.Config) (*Conn, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, qcfg)
	if err != nil {
		return nil, fmt.Errorf("quicconn: dial: %w", err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "stream open failed")
		return nil, fmt.Errorf("quicconn: open stream: %w", err)
	}
	return &Conn{conn: conn, stream: stream}, nil
}

// Accept wraps an already-open QUIC connection and its first incoming
// stream, for a server-role adapter sharing this framing.
func Accept(ctx context.Context, conn quic.Connection) (*Conn, error) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("quicconn: accept stream: %w", err)
	}
	return &Conn{conn: conn, stream: stream}, nil
}

// ReadFrame reads one length-prefixed frame.
func (c *Conn) ReadFrame(ctx context.Context) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		c.stream.SetReadDeadline(dl)
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.stream, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("quicconn: read length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("quicconn: frame size %d exceeds limit %d", n, maxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.stream, buf); err != nil {
		return nil, fmt.Errorf("quicconn: read frame: %w", err)
	}
	return buf, nil
}

// WriteFrame writes one length-prefixed frame.
func (c *Conn) WriteFrame(ctx context.Context, frame []byte) error {
	if len(frame) > maxFrameSize {
		return fmt.Errorf("quicconn: frame size %d exceeds limit %d", len(frame), maxFrameSize)
	}
	if dl, ok := ctx.Deadline(); ok {
		c.stream.SetWriteDeadline(dl)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(frame)))
	if _, err := c.stream.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("quicconn: write length: %w", err)
	}
	if _, err := c.stream.Write(frame); err != nil {
		return fmt.Errorf("quicconn: write frame: %w", err)
	}
	return nil
}

// Close closes the stream and the underlying QUIC connection.
func (c *Conn) Close() error {
	c.stream.Close()
	return c.conn.CloseWithError(0, "closed")
}
