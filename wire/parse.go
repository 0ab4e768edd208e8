// parse.go - parses a Command from its ASCII wire form.
package wire

import (
	"github.com/simplex-chat/smp-go/internal/parser"
)

func tagEntries() []parser.TagEntry {
	entries := make([]parser.TagEntry, 0, len(tagOrder))
	for _, t := range tagOrder {
		entries = append(entries, parser.TagEntry{Key: string(t), Tag: []byte(t)})
	}
	return entries
}

var knownTags = tagEntries()

// ParseCommand parses one command starting at p's current position. It
// does not enforce end-of-input afterward; callers that parse a bare
// command (as in the round-trip tests) should check p.End() themselves,
// and callers parsing a framed transmission should rely on the framing to
// bound the command's extent.
//
// ok=false means the leading tag itself didn't match any known command;
// callers should synthesize Cmd(SYNTAX) in that case. A recognized tag
// whose arguments are malformed also yields ok=false, for the same
// reason: this parser makes no distinction between "unknown command" and
// "known command, bad arguments" beyond what the caller chooses to report.
func ParseCommand(p *parser.Parser) (Command, bool) {
	key, ok := p.SomeStr(knownTags)
	if !ok {
		return nil, false
	}
	tag := CmdTag(key)
	switch tag {
	case TagNEW:
		k, ok := parseRSAKey(p)
		if !ok {
			return nil, false
		}
		return New{RcvPubKey: k}, true
	case TagSUB:
		return Sub{}, true
	case TagKEY:
		k, ok := parseRSAKey(p)
		if !ok {
			return nil, false
		}
		return Key{SndPubKey: k}, true
	case TagACK:
		return Ack{}, true
	case TagOFF:
		return Off{}, true
	case TagDEL:
		return Del{}, true
	case TagSEND:
		body, ok := parseLengthPrefixedBody(p)
		if !ok {
			return nil, false
		}
		return Send{MsgBody: body}, true
	case TagPING:
		return Ping{}, true
	case TagPONG:
		return Pong{}, true
	case TagOK:
		return Ok{}, true
	case TagEND:
		return End{}, true
	case TagIDS:
		if !p.Space() {
			return nil, false
		}
		rcvId, ok := p.Base64()
		if !ok {
			return nil, false
		}
		if !p.Space() {
			return nil, false
		}
		sndId, ok := p.Base64()
		if !ok {
			return nil, false
		}
		return Ids{RcvId: rcvId, SndId: sndId}, true
	case TagMSG:
		if !p.Space() {
			return nil, false
		}
		msgId, ok := p.Base64()
		if !ok {
			return nil, false
		}
		if !p.Space() {
			return nil, false
		}
		ts, ok := p.Date()
		if !ok {
			return nil, false
		}
		if !p.Space() {
			return nil, false
		}
		body, ok := parseLengthPrefixedBody(p)
		if !ok {
			return nil, false
		}
		return Msg{MsgId: msgId, Ts: ts, MsgBody: body}, true
	case TagERR:
		if !p.Space() {
			return nil, false
		}
		sub, smpErr, ok := parseSMPError(p)
		if !ok {
			return nil, false
		}
		_ = sub
		return Err{Error: smpErr}, true
	default:
		return nil, false
	}
}

// parseRSAKey parses " " "rsa:" base64(key).
func parseRSAKey(p *parser.Parser) ([]byte, bool) {
	if !p.Space() {
		return nil, false
	}
	if !p.Str([]byte(rsaKeyPrefix)) {
		return nil, false
	}
	return p.Base64()
}

// parseLengthPrefixedBody parses decimal(|m|) ' ' m ' '.
func parseLengthPrefixedBody(p *parser.Parser) ([]byte, bool) {
	n, ok := p.Decimal()
	if !ok {
		return nil, false
	}
	if !p.Space() {
		return nil, false
	}
	body, ok := p.Take(n)
	if !ok {
		return nil, false
	}
	if !p.Space() {
		return nil, false
	}
	return body, true
}

var errSubEntries = func() []parser.TagEntry {
	entries := make([]parser.TagEntry, 0, len(cmdSubTags))
	for _, s := range cmdSubTags {
		entries = append(entries, parser.TagEntry{Key: string(s), Tag: []byte(s)})
	}
	return entries
}()

// parseSMPError parses the argument of ERR: either "CMD " sub, or a bare
// error-kind token.
func parseSMPError(p *parser.Parser) (string, SMPError, bool) {
	if p.Str([]byte(ErrCmd)) {
		if !p.Space() {
			return "", SMPError{}, false
		}
		key, ok := p.SomeStr(errSubEntries)
		if !ok {
			return "", SMPError{}, false
		}
		return key, Cmd(CmdErrSub(key)), true
	}
	for _, k := range []ErrKind{ErrBlock, ErrAuth, ErrNoMsg, ErrInternal} {
		if p.Str([]byte(k)) {
			return string(k), SMPError{Kind: k}, true
		}
	}
	return "", SMPError{}, false
}
