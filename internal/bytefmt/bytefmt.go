// bytefmt.go - ASCII/base64/big-endian byte primitives for the SMP wire codec.
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

// Package bytefmt implements the low-level byte primitives the SMP wire
// codec is built from: base64 encode/decode, big-endian integer encoding,
// decimal ASCII, right-padding, and byte-class predicates. Treated as a leaf with no
// knowledge of the command grammar above it.
package bytefmt

import (
	"encoding/base64"
	"encoding/binary"
	"strconv"
)

// EncodeBase64 returns the standard base64 encoding of b, with padding.
func EncodeBase64(b []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(out, b)
	return out
}

// DecodeBase64 decodes standard base64 text.
func DecodeBase64(s []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(s)))
	n, err := base64.StdEncoding.Decode(out, s)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// PutUint32BE writes v to b in big-endian order. b must have length >= 4.
func PutUint32BE(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// Uint32BE reads a big-endian uint32 from the first 4 bytes of b.
func Uint32BE(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// PutUint16BE writes v to b in big-endian order. b must have length >= 2.
func PutUint16BE(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

// Uint16BE reads a big-endian uint16 from the first 2 bytes of b.
func Uint16BE(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// Decimal formats n as ASCII decimal digits, no sign.
func Decimal(n int) []byte {
	return []byte(strconv.FormatUint(uint64(n), 10))
}

// ParseDecimal parses ASCII decimal digits (no sign) into an unsigned int.
func ParseDecimal(b []byte) (int, error) {
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// PadRight right-fills b with the byte c until it is exactly n bytes long.
// b must already be <= n bytes; callers are expected to have rejected
// oversized payloads before calling this.
func PadRight(b []byte, n int, c byte) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	for i := len(b); i < n; i++ {
		out[i] = c
	}
	return out
}

// IsSpace reports whether c is the ASCII space byte used throughout the
// wire grammar as a field separator.
func IsSpace(c byte) bool {
	return c == ' '
}

// IsBase64Char reports whether c is a member of the base64 alphabet or the
// '=' padding character.
func IsBase64Char(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '+' || c == '/' || c == '=':
		return true
	default:
		return false
	}
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
