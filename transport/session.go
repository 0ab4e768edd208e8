// session.go - per-direction session key state.
package transport

import (
	"fmt"

	"github.com/simplex-chat/smp-go/crypto"
)

// SessionKey is one direction's AES-GCM key material: a 256-bit key, a
// 16-byte base IV, and the monotonic block counter. counter increases by
// one per encrypt (send side) or decrypt (receive side); send and receive
// counters advance independently. SessionKey and THandle hold no lock:
// concurrent writers must serialize WriteBlock themselves (client.Client
// does so with its writeMu), and the receive side is used only by the
// single inbound loop.
type SessionKey struct {
	AESKey  []byte
	BaseIV  []byte
	Counter uint32
}

// NewSessionKey generates a fresh AES-256 key and 16-byte base IV, counter
// starting at zero.
func NewSessionKey() (*SessionKey, error) {
	key, err := crypto.GenerateAESKey()
	if err != nil {
		return nil, fmt.Errorf("smp/transport: session key: %w", err)
	}
	iv, err := crypto.GenerateBaseIV()
	if err != nil {
		return nil, fmt.Errorf("smp/transport: session iv: %w", err)
	}
	return &SessionKey{AESKey: key, BaseIV: iv}, nil
}

// nextIV derives the IV for the current counter value and advances the
// counter.
func (sk *SessionKey) nextIV() ([]byte, error) {
	iv := crypto.DeriveIV(sk.BaseIV, sk.Counter)
	next, err := crypto.NextCounter(sk.Counter)
	if err != nil {
		return nil, err
	}
	sk.Counter = next
	return iv, nil
}
