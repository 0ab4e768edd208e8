// handle.go - THandle: a handshaken connection's fixed block size and
// per-direction session keys.
package transport

import (
	"context"
	"fmt"

	"github.com/simplex-chat/smp-go/crypto"
)

// THandle is a connection that has completed the encrypted handshake: a
// ByteChannel plus the two independent session keys and the block size
// negotiated for its lifetime. All plaintexts handed to WriteBlock are
// padded to exactly BlockSize-16 bytes before encryption; all ciphertexts
// ReadBlock receives are exactly BlockSize bytes.
type THandle struct {
	Conn      ByteChannel
	SndKey    *SessionKey
	RcvKey    *SessionKey
	BlockSize int
	Metrics   *Metrics
}

// PlaintextCapacity is the effective plaintext capacity of one block:
// BlockSize minus the 16-byte GCM tag.
func (th *THandle) PlaintextCapacity() int {
	return th.BlockSize - crypto.GCMTagSize
}

// WriteBlock pads plaintext to the block's plaintext capacity, encrypts it
// under the send session key's next IV, and emits exactly BlockSize bytes
// as one channel frame.
func (th *THandle) WriteBlock(ctx context.Context, plaintext []byte) error {
	padded, err := crypto.PadToBlock(plaintext, th.PlaintextCapacity())
	if err != nil {
		return err
	}
	iv, err := th.SndKey.nextIV()
	if err != nil {
		return fmt.Errorf("smp/transport: send counter: %w", err)
	}
	block, err := crypto.SealBlock(th.SndKey.AESKey, iv, padded)
	if err != nil {
		return err
	}
	if len(block) != th.BlockSize {
		return fmt.Errorf("smp/transport: sealed block is %d bytes, want %d", len(block), th.BlockSize)
	}
	if err := th.Conn.WriteFrame(ctx, block); err != nil {
		return newFrameError(err)
	}
	if th.Metrics != nil {
		th.Metrics.BlocksSent.Inc()
	}
	return nil
}

// ReadBlock reads exactly BlockSize bytes from the channel, derives the
// next receive IV, and decrypts. Authentication failure is returned as
// crypto.ErrAuthFailed, which callers surface to the application as the
// protocol-level BLOCK error.
func (th *THandle) ReadBlock(ctx context.Context) ([]byte, error) {
	frame, err := th.Conn.ReadFrame(ctx)
	if err != nil {
		return nil, newFrameError(err)
	}
	if len(frame) != th.BlockSize {
		return nil, newFrameError(fmt.Errorf("received block is %d bytes, want %d", len(frame), th.BlockSize))
	}
	iv, err := th.RcvKey.nextIV()
	if err != nil {
		return nil, fmt.Errorf("smp/transport: receive counter: %w", err)
	}
	pt, err := crypto.OpenBlock(th.RcvKey.AESKey, iv, frame)
	if th.Metrics != nil {
		if err != nil {
			th.Metrics.AuthFailures.Inc()
		} else {
			th.Metrics.BlocksReceived.Inc()
		}
	}
	return pt, err
}

// Close closes the underlying channel.
func (th *THandle) Close() error {
	return th.Conn.Close()
}
