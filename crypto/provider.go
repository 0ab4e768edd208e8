// provider.go - the RSA/AES/SHA-256 crypto primitives the wire handshake
// and per-block framing are built on.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package crypto wraps the RSA-OAEP/PSS, AES-GCM, and SHA-256 primitives
// consumed by the wire handshake and per-block framing. No library in the
// teacher or the retrieval pack reimplements these over stdlib -- the
// teacher's own core/crypto packages build NIKE/hybrid schemes on top of
// exactly this kind of stdlib primitive rather than replacing it -- so
// this package is deliberately stdlib-backed (see SPEC_FULL.md §3,
// DESIGN.md).
package crypto

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/simplex-chat/smp-go/internal/bytefmt"
)

// PSSSaltLength is the RSA-PSS salt length transmission signatures use.
const PSSSaltLength = 32

// GCMNonceSize is the size of the AES-GCM nonce used for per-block and E2E
// framing: the base IV is 16 bytes, not the AES-GCM stdlib default of 12,
// so the GCM instance is constructed with an explicit nonce size.
const GCMNonceSize = 16

// GCMTagSize is the AES-GCM authentication tag size appended to every
// ciphertext.
const GCMTagSize = 16

// AESKeySize is the raw AES-256 key size.
const AESKeySize = 32

var (
	// ErrLargeMessage is returned when a caller asks to pad a plaintext
	// that doesn't fit the fixed block capacity.
	ErrLargeMessage = errors.New("smp: large message")
	// ErrAuthFailed is returned on AES-GCM authentication failure.
	ErrAuthFailed = errors.New("smp: message authentication failed")
)

// GenerateRSAKeyPair generates a fresh RSA key pair of the given modulus
// size in bits.
func GenerateRSAKeyPair(bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, bits)
}

// EncodeSPKI returns the X.509 SubjectPublicKeyInfo encoding of pub, the
// key-blob format shipped as the opaque bytes behind "rsa:".
func EncodeSPKI(pub *rsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(pub)
}

// DecodeSPKI parses an X.509 SPKI encoding of an RSA public key.
func DecodeSPKI(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("smp: parse SPKI: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("smp: SPKI key is not RSA")
	}
	return rsaPub, nil
}

// SHA256 returns the SHA-256 digest of b.
func SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// EncryptOAEP encrypts msg to pub under RSA-OAEP with SHA-256.
func EncryptOAEP(pub *rsa.PublicKey, msg []byte) ([]byte, error) {
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("smp: RSA-OAEP encrypt: %w", err)
	}
	return ct, nil
}

// DecryptOAEP decrypts an RSA-OAEP/SHA-256 ciphertext with priv.
func DecryptOAEP(priv *rsa.PrivateKey, ct []byte) ([]byte, error) {
	msg, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("smp: RSA-OAEP decrypt: %w", err)
	}
	return msg, nil
}

// SignPSS signs msg's SHA-256 digest with priv under RSA-PSS, salt length 32.
func SignPSS(priv *rsa.PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: PSSSaltLength,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("smp: RSA-PSS sign: %w", err)
	}
	return sig, nil
}

// VerifyPSS reports whether sig is a valid RSA-PSS/SHA-256 signature of
// msg under pub.
func VerifyPSS(pub *rsa.PublicKey, msg, sig []byte) bool {
	digest := sha256.Sum256(msg)
	err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: PSSSaltLength,
		Hash:       crypto.SHA256,
	})
	return err == nil
}

// GenerateAESKey returns a fresh random 256-bit AES key.
func GenerateAESKey() ([]byte, error) {
	k := make([]byte, AESKeySize)
	if _, err := rand.Read(k); err != nil {
		return nil, err
	}
	return k, nil
}

// GenerateBaseIV returns a fresh random 16-byte base IV.
func GenerateBaseIV() ([]byte, error) {
	iv := make([]byte, GCMNonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	return iv, nil
}

// PadToBlock right-pads plaintext with '#' (0x23) to exactly n bytes,
// rejecting plaintexts of n bytes or more with ErrLargeMessage.
func PadToBlock(plaintext []byte, n int) ([]byte, error) {
	if len(plaintext) >= n {
		return nil, ErrLargeMessage
	}
	return bytefmt.PadRight(plaintext, n, '#'), nil
}

// SealBlock AES-GCM encrypts a plaintext already sized to the block's
// plaintext capacity (n = blockSize-16, see transport.THandle), appending
// the 16-byte tag, and returns an n+16 byte block. No AAD.
func SealBlock(key, iv, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	// Dst starts empty; GCM's Seal appends ciphertext||tag.
	return aead.Seal(nil, iv, plaintext, nil), nil
}

// OpenBlock decrypts and authenticates a block produced by SealBlock.
// Authentication failure is reported as ErrAuthFailed, which callers
// surface to their caller as the protocol-level BLOCK error.
func OpenBlock(key, iv, block []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, iv, block, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return pt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("smp: AES key: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, GCMNonceSize)
	if err != nil {
		return nil, fmt.Errorf("smp: AES-GCM init: %w", err)
	}
	return aead, nil
}
