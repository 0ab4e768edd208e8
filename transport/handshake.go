// handshake.go - client-role RSA handshake.
package transport

import (
	"bytes"
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/simplex-chat/smp-go/crypto"
	"github.com/simplex-chat/smp-go/internal/bytefmt"
	"github.com/simplex-chat/smp-go/internal/parser"
)

const (
	minBlockSize = 4096
	maxBlockSize = 65536
	// rsaTransportMode is the only transport mode this client speaks
	// (the client speaks only the binary RSA handshake).
	rsaTransportMode = 0
	// clientHandshakeBodySize is the size of the plaintext RSA-OAEP
	// payload the client sends: blockSize(4) + mode(2) + two AES
	// keys(32 each) + two base IVs(16 each) = 102 bytes.
	clientHandshakeBodySize = 4 + 2 + 32 + 16 + 32 + 16
)

// currentSMPVersion is the maximum protocol version this client accepts,
// compared lexicographically over its first two components.
var currentSMPVersion = [4]int{0, 4, 1, 0}

// HandshakeError reports a failure of the client handshake: malformed
// server header, a server key that doesn't match a pinned hash, or an
// incompatible protocol version. Fatal to the connection.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("smp/transport: handshake error: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

func newHandshakeError(f string, a ...interface{}) error {
	return &HandshakeError{Err: fmt.Errorf(f, a...)}
}

// serverHeader is the 8-byte fixed header the server sends before its
// public key.
type serverHeader struct {
	blockSize     uint32
	transportMode uint16
	keySize       uint16
}

// Handshake performs the client-role handshake over conn and returns a
// ready-to-use THandle. keyHash, if non-nil, must equal SHA-256 of the
// server's raw SPKI encoding or the handshake fails. metrics may be nil.
func Handshake(ctx context.Context, conn ByteChannel, keyHash []byte, metrics *Metrics) (*THandle, error) {
	acc := newFrameAccumulator(conn)

	hdrBytes, err := acc.take(ctx, 8)
	if err != nil {
		return nil, newHandshakeError("read server header: %w", err)
	}
	hdr := serverHeader{
		blockSize:     bytefmt.Uint32BE(hdrBytes[0:4]),
		transportMode: bytefmt.Uint16BE(hdrBytes[4:6]),
		keySize:       bytefmt.Uint16BE(hdrBytes[6:8]),
	}
	if hdr.blockSize < minBlockSize || hdr.blockSize > maxBlockSize {
		return nil, newHandshakeError("server block size %d out of range [%d, %d]", hdr.blockSize, minBlockSize, maxBlockSize)
	}
	if hdr.transportMode != rsaTransportMode {
		return nil, newHandshakeError("unsupported transport mode %d", hdr.transportMode)
	}

	spki, err := acc.take(ctx, int(hdr.keySize))
	if err != nil {
		return nil, newHandshakeError("read server key: %w", err)
	}
	if keyHash != nil {
		digest := crypto.SHA256(spki)
		if !bytes.Equal(digest[:], keyHash) {
			return nil, newHandshakeError("server key hash does not match")
		}
	}
	serverKey, err := crypto.DecodeSPKI(spki)
	if err != nil {
		return nil, newHandshakeError("decode server key: %w", err)
	}

	sndKey, err := NewSessionKey()
	if err != nil {
		return nil, newHandshakeError("generate send session key: %w", err)
	}
	rcvKey, err := NewSessionKey()
	if err != nil {
		return nil, newHandshakeError("generate receive session key: %w", err)
	}

	body, err := encodeClientHandshakeBody(int(hdr.blockSize), sndKey, rcvKey)
	if err != nil {
		return nil, newHandshakeError("encode handshake body: %w", err)
	}
	wrapped, err := crypto.EncryptOAEP(serverKey, body)
	if err != nil {
		return nil, newHandshakeError("wrap handshake body: %w", err)
	}
	if err := conn.WriteFrame(ctx, wrapped); err != nil {
		return nil, newHandshakeError("write handshake body: %w", err)
	}

	th := &THandle{Conn: conn, SndKey: sndKey, RcvKey: rcvKey, BlockSize: int(hdr.blockSize), Metrics: metrics}
	welcome, err := th.ReadBlock(ctx)
	if err != nil {
		return nil, newHandshakeError("read welcome block: %w", err)
	}
	if err := checkWelcomeVersion(welcome); err != nil {
		return nil, err
	}
	if metrics != nil {
		metrics.Handshakes.Inc()
	}
	return th, nil
}

func encodeClientHandshakeBody(blockSize int, sndKey, rcvKey *SessionKey) ([]byte, error) {
	if err := rsaKeyShapeOK(sndKey); err != nil {
		return nil, err
	}
	if err := rsaKeyShapeOK(rcvKey); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, clientHandshakeBodySize)
	var sizeBuf [4]byte
	bytefmt.PutUint32BE(sizeBuf[:], uint32(blockSize))
	buf = append(buf, sizeBuf[:]...)
	var modeBuf [2]byte
	bytefmt.PutUint16BE(modeBuf[:], rsaTransportMode)
	buf = append(buf, modeBuf[:]...)
	buf = append(buf, sndKey.AESKey...)
	buf = append(buf, sndKey.BaseIV...)
	buf = append(buf, rcvKey.AESKey...)
	buf = append(buf, rcvKey.BaseIV...)
	return buf, nil
}

func rsaKeyShapeOK(sk *SessionKey) error {
	if len(sk.AESKey) != crypto.AESKeySize {
		return fmt.Errorf("session AES key is %d bytes, want %d", len(sk.AESKey), crypto.AESKeySize)
	}
	if len(sk.BaseIV) != crypto.GCMNonceSize {
		return fmt.Errorf("session base IV is %d bytes, want %d", len(sk.BaseIV), crypto.GCMNonceSize)
	}
	return nil
}

// checkWelcomeVersion parses the welcome block's leading ASCII version
// token ("a.b.c.d", space- or end-terminated, '#'-padded) and rejects an
// incompatible server version.
func checkWelcomeVersion(welcome []byte) error {
	p := parser.New(welcome)
	v, ok := p.Version()
	if !ok {
		return newHandshakeError("malformed welcome version")
	}
	if v[0] > currentSMPVersion[0] || (v[0] == currentSMPVersion[0] && v[1] > currentSMPVersion[1]) {
		return newHandshakeError("incompatible server version %d.%d.%d.%d", v[0], v[1], v[2], v[3])
	}
	return nil
}

// frameAccumulator turns a sequence of ReadFrame calls into an ordinary
// byte stream, for parsing the server header and key, whose sizes are not
// required to land on the underlying channel's frame boundaries.
type frameAccumulator struct {
	conn ByteChannel
	buf  []byte
}

func newFrameAccumulator(conn ByteChannel) *frameAccumulator {
	return &frameAccumulator{conn: conn}
}

func (a *frameAccumulator) take(ctx context.Context, n int) ([]byte, error) {
	for len(a.buf) < n {
		frame, err := a.conn.ReadFrame(ctx)
		if err != nil {
			return nil, err
		}
		a.buf = append(a.buf, frame...)
	}
	out := a.buf[:n]
	a.buf = a.buf[n:]
	return out, nil
}
