// guarded.go - locked-memory custody for RSA signing keys.
package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// GuardedKey holds an RSA private key's PKCS#1 DER encoding in
// memguard-locked memory, decoding it only for the duration of a Sign
// call: secrets held outside the normal GC'd heap, wiped on Destroy.
// Applied here to the recipient/sender signing keys a client transmission
// is signed with.
type GuardedKey struct {
	mu  sync.Mutex
	buf *memguard.LockedBuffer
}

// NewGuardedKey copies priv's PKCS#1 DER encoding into locked memory.
func NewGuardedKey(priv *rsa.PrivateKey) (*GuardedKey, error) {
	der := x509.MarshalPKCS1PrivateKey(priv)
	buf := memguard.NewBufferFromBytes(der)
	if buf == nil {
		return nil, fmt.Errorf("smp: failed to allocate guarded key buffer")
	}
	return &GuardedKey{buf: buf}, nil
}

// Sign signs trn with the guarded private key under RSA-PSS/SHA-256.
func (g *GuardedKey) Sign(trn []byte) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.buf.IsDestroyed() {
		return nil, fmt.Errorf("smp: guarded key already destroyed")
	}
	priv, err := x509.ParsePKCS1PrivateKey(g.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("smp: parse guarded key: %w", err)
	}
	return SignPSS(priv, trn)
}

// PublicKey returns the corresponding RSA public key.
func (g *GuardedKey) PublicKey() (*rsa.PublicKey, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	priv, err := x509.ParsePKCS1PrivateKey(g.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("smp: parse guarded key: %w", err)
	}
	return &priv.PublicKey, nil
}

// Destroy wipes the locked buffer. The GuardedKey must not be used
// afterward.
func (g *GuardedKey) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buf.Destroy()
}
