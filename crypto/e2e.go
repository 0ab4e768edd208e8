// e2e.go - one-shot RSA-wrapped AES-GCM message encryption. These two
// functions are deliberately primitives with no ratchet or session layer
// on top of them; see DESIGN.md.
package crypto

import (
	"crypto/rsa"
	"encoding/binary"
	"errors"
	"fmt"
)

// e2eKeyIVSize is the size of the one-shot AES-256 key + 16-byte IV blob
// wrapped under RSA-OAEP for each EncryptE2E call.
const e2eKeyIVSize = AESKeySize + GCMNonceSize

// lengthPrefixSize is the size of the explicit plaintext-length prefix
// EncryptE2E stores ahead of the padded body, letting DecryptE2E recover
// exactly the original x even though the AES-GCM block itself is padded
// to a fixed size (this differs from the plain per-block AES round trip,
// which returns the padded buffer unchanged).
const lengthPrefixSize = 4

// ErrCiphertextTooShort is returned by DecryptE2E when the input is too
// small to contain the wrapped key and at least an empty block.
var ErrCiphertextTooShort = errors.New("smp: E2E ciphertext too short")

// EncryptE2E encrypts x for pub using a fresh one-shot AES-256 key and IV,
// wrapped under RSA-OAEP/SHA-256. n is the target block size (analogous to
// transport.THandle's blockSize): the AES-GCM portion of the output is
// exactly n bytes, so the total ciphertext is modulusBytes(pub) + n.
func EncryptE2E(pub *rsa.PublicKey, n int, x []byte) ([]byte, error) {
	keyIV, err := randomKeyIV()
	if err != nil {
		return nil, err
	}
	key, iv := keyIV[:AESKeySize], keyIV[AESKeySize:]

	capacity := n - GCMTagSize
	if lengthPrefixSize+len(x) > capacity {
		return nil, ErrLargeMessage
	}
	plain := make([]byte, 0, capacity)
	var lenBuf [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(x)))
	plain = append(plain, lenBuf[:]...)
	plain = append(plain, x...)

	padded, err := PadToBlock(plain, capacity)
	if err != nil {
		return nil, err
	}
	block, err := SealBlock(key, iv, padded)
	if err != nil {
		return nil, err
	}

	wrapped, err := EncryptOAEP(pub, keyIV)
	if err != nil {
		return nil, err
	}
	return append(wrapped, block...), nil
}

// DecryptE2E reverses EncryptE2E given the matching RSA private key.
func DecryptE2E(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	modulusBytes := (priv.N.BitLen() + 7) / 8
	if len(ciphertext) < modulusBytes+GCMTagSize {
		return nil, ErrCiphertextTooShort
	}
	wrapped, block := ciphertext[:modulusBytes], ciphertext[modulusBytes:]

	keyIV, err := DecryptOAEP(priv, wrapped)
	if err != nil {
		return nil, err
	}
	if len(keyIV) != e2eKeyIVSize {
		return nil, fmt.Errorf("smp: E2E wrapped key/IV has wrong size %d", len(keyIV))
	}
	key, iv := keyIV[:AESKeySize], keyIV[AESKeySize:]

	padded, err := OpenBlock(key, iv, block)
	if err != nil {
		return nil, err
	}
	if len(padded) < lengthPrefixSize {
		return nil, ErrCiphertextTooShort
	}
	l := binary.BigEndian.Uint32(padded[:lengthPrefixSize])
	rest := padded[lengthPrefixSize:]
	if uint64(l) > uint64(len(rest)) {
		return nil, fmt.Errorf("smp: E2E length prefix %d exceeds block capacity %d", l, len(rest))
	}
	return rest[:l], nil
}

func randomKeyIV() ([]byte, error) {
	key, err := GenerateAESKey()
	if err != nil {
		return nil, err
	}
	iv, err := GenerateBaseIV()
	if err != nil {
		return nil, err
	}
	return append(key, iv...), nil
}
