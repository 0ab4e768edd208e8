// parser.go - cursor-based byte parser with backtracking for the SMP grammar.
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

// Package parser implements a small cursor-based tokenizer over an
// immutable byte slice, used to parse the ASCII-framed SMP command
// grammar. All combinators except Word are non-consuming on failure: a
// failed match leaves pos exactly where it found it.
package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/simplex-chat/smp-go/internal/bytefmt"
)

// Parser is a mutable cursor over s. It is not safe for concurrent use.
type Parser struct {
	s   []byte
	pos int
}

// New returns a Parser positioned at the start of s.
func New(s []byte) *Parser {
	return &Parser{s: s}
}

// Pos returns the current cursor offset, for callers that need to slice
// the remaining input directly (e.g. "rest of the command is the body").
func (p *Parser) Pos() int {
	return p.pos
}

// Len returns the length of the underlying input.
func (p *Parser) Len() int {
	return len(p.s)
}

// End reports whether the cursor has reached the end of input.
func (p *Parser) End() bool {
	return p.pos >= len(p.s)
}

// Take returns the next n bytes and advances past them, or ok=false if
// fewer than n bytes remain (cursor is left unmoved).
func (p *Parser) Take(n int) (b []byte, ok bool) {
	if p.pos+n > len(p.s) {
		return nil, false
	}
	b = p.s[p.pos : p.pos+n]
	p.pos += n
	return b, true
}

// TakeWhile1 consumes one or more bytes satisfying pred; ok=false (and no
// advance) if zero bytes match.
func (p *Parser) TakeWhile1(pred func(byte) bool) (b []byte, ok bool) {
	start := p.pos
	for p.pos < len(p.s) && pred(p.s[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, false
	}
	return p.s[start:p.pos], true
}

// Word returns the bytes up to the next space or end of input. It may be
// empty, and unlike every other combinator here it ALWAYS advances past
// the bytes it returns -- but not past a trailing space, which a
// subsequent Space() call is expected to consume.
func (p *Parser) Word() []byte {
	start := p.pos
	for p.pos < len(p.s) && !bytefmt.IsSpace(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// Space consumes exactly one ASCII space. ok=false (no advance) if the
// next byte isn't a space.
func (p *Parser) Space() (ok bool) {
	if p.pos < len(p.s) && bytefmt.IsSpace(p.s[p.pos]) {
		p.pos++
		return true
	}
	return false
}

// Str matches the literal byte sequence tag at the cursor, advancing on
// match.
func (p *Parser) Str(tag []byte) (ok bool) {
	if p.pos+len(tag) > len(p.s) {
		return false
	}
	if !bytes.Equal(p.s[p.pos:p.pos+len(tag)], tag) {
		return false
	}
	p.pos += len(tag)
	return true
}

// SomeStr matches the longest tag in tags that matches at the cursor, in
// tags' declared iteration order on ties, and returns its key. Callers
// pass an ordered slice rather than a plain map so that tie-break order
// is controlled by the caller rather than left to map iteration.
type TagEntry struct {
	Key string
	Tag []byte
}

func (p *Parser) SomeStr(tags []TagEntry) (key string, ok bool) {
	bestLen := -1
	bestKey := ""
	for _, e := range tags {
		if p.pos+len(e.Tag) > len(p.s) {
			continue
		}
		if !bytes.Equal(p.s[p.pos:p.pos+len(e.Tag)], e.Tag) {
			continue
		}
		if len(e.Tag) > bestLen {
			bestLen = len(e.Tag)
			bestKey = e.Key
		}
	}
	if bestLen < 0 {
		return "", false
	}
	p.pos += bestLen
	return bestKey, true
}

// Base64 consumes the maximal prefix of base64 alphabet/padding bytes and
// decodes it. Fails (no advance) on an empty match or invalid encoding.
func (p *Parser) Base64() (b []byte, ok bool) {
	raw, ok := p.TakeWhile1(bytefmt.IsBase64Char)
	if !ok {
		return nil, false
	}
	dec, err := bytefmt.DecodeBase64(raw)
	if err != nil {
		p.pos -= len(raw)
		return nil, false
	}
	return dec, true
}

// Decimal consumes one or more ASCII digits and returns them as an
// unsigned integer.
func (p *Parser) Decimal() (n int, ok bool) {
	raw, ok := p.TakeWhile1(bytefmt.IsDigit)
	if !ok {
		return 0, false
	}
	v, err := bytefmt.ParseDecimal(raw)
	if err != nil {
		p.pos -= len(raw)
		return 0, false
	}
	return v, true
}

// Date parses a Word() as an RFC3339/ISO-8601 instant (MSG's ts field).
func (p *Parser) Date() (t time.Time, ok bool) {
	start := p.pos
	w := p.Word()
	if len(w) == 0 {
		p.pos = start
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(w))
	if err != nil {
		p.pos = start
		return time.Time{}, false
	}
	return parsed, true
}

// maxWelcomeTokenScan bounds the welcome version token scan at 50 bytes,
// intentionally un-tightened (see DESIGN.md): it mixes "bad welcome" with
// "long first token" into one failure mode rather than distinguishing them.
const maxWelcomeTokenScan = 50

// Version parses a Word(), capped at maxWelcomeTokenScan bytes, as a
// "a.b.c.d" welcome version token.
func (p *Parser) Version() (v [4]int, ok bool) {
	start := p.pos
	w := p.Word()
	if len(w) == 0 || len(w) > maxWelcomeTokenScan {
		p.pos = start
		return v, false
	}
	n, err := fmt.Sscanf(string(w), "%d.%d.%d.%d", &v[0], &v[1], &v[2], &v[3])
	if err != nil || n != 4 {
		p.pos = start
		return v, false
	}
	return v, true
}

// Try saves the cursor position, runs fn, and restores the position if fn
// returns false.
func Try[T any](p *Parser, fn func() (T, bool)) (T, bool) {
	save := p.pos
	v, ok := fn()
	if !ok {
		p.pos = save
	}
	return v, ok
}
