// iv.go - per-block IV derivation from a base IV and a monotonic counter.
package crypto

import (
	"encoding/binary"
	"errors"
)

// ErrCounterOverflow is returned by NextCounter when counter has already
// reached its maximum value. Failing here instead of wrapping silently
// matters: a wrapped counter would reuse an (aesKey, iv) pair.
var ErrCounterOverflow = errors.New("smp: session counter would overflow")

// DeriveIV derives the per-block IV for the given base IV and counter:
// the counter is XORed (big-endian) into the first 4 bytes of baseIV, the
// remaining 12 bytes are copied unchanged.
func DeriveIV(baseIV []byte, counter uint32) []byte {
	iv := make([]byte, len(baseIV))
	copy(iv, baseIV)
	var c [4]byte
	binary.BigEndian.PutUint32(c[:], counter)
	for i := 0; i < 4 && i < len(iv); i++ {
		iv[i] ^= c[i]
	}
	return iv
}

// NextCounter returns counter+1, or ErrCounterOverflow if counter is
// already the maximum uint32 value.
func NextCounter(counter uint32) (uint32, error) {
	if counter == ^uint32(0) {
		return 0, ErrCounterOverflow
	}
	return counter + 1, nil
}
