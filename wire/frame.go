// frame.go - the plaintext transmission framing shipped inside one block:
// base64(signature) ' ' corrId ' ' base64(queueId) ' ' serialize(command) ' '.
package wire

import (
	"bytes"

	"github.com/simplex-chat/smp-go/internal/bytefmt"
	"github.com/simplex-chat/smp-go/internal/parser"
)

// EncodeTransmissionBody concatenates the signed transmission's wire form,
// given an already-computed signature (possibly empty), the raw corrId, and
// the queueId and command, which it base64-encodes and serializes itself.
// The trailing single space is mandatory.
func EncodeTransmissionBody(sig, corrId, queueId []byte, cmd Command) []byte {
	var buf bytes.Buffer
	buf.Write(bytefmt.EncodeBase64(sig))
	buf.WriteByte(' ')
	buf.Write(corrId)
	buf.WriteByte(' ')
	buf.Write(bytefmt.EncodeBase64(queueId))
	buf.WriteByte(' ')
	buf.Write(Serialize(cmd))
	buf.WriteByte(' ')
	return buf.Bytes()
}

// Trn is the unsigned part of the transmission -- corrId ' ' base64(queueId)
// ' ' serialize(command) -- which is what the signature in
// EncodeTransmissionBody is computed over.
func Trn(corrId, queueId []byte, cmd Command) []byte {
	var buf bytes.Buffer
	buf.Write(corrId)
	buf.WriteByte(' ')
	buf.Write(bytefmt.EncodeBase64(queueId))
	buf.WriteByte(' ')
	buf.Write(Serialize(cmd))
	return buf.Bytes()
}

// ParsedFrame is a transmission parsed off the wire, before the caller has
// classified party/queue-id discipline.
type ParsedFrame struct {
	Sig     []byte
	CorrId  []byte
	QueueId []byte
	Cmd     Command
}

// ParseTransmission parses one framed transmission: signature, corrId,
// queueId, command. The signature field is present but never verified by
// the client; server-side verification is a separate concern.
func ParseTransmission(block []byte) (ParsedFrame, bool) {
	p := parser.New(block)
	sig, ok := sigField(p)
	if !ok {
		return ParsedFrame{}, false
	}
	if !p.Space() {
		return ParsedFrame{}, false
	}
	corrId := p.Word()
	if !p.Space() {
		return ParsedFrame{}, false
	}
	queueId, ok := p.Base64()
	if !ok {
		// queueId may legitimately be empty (e.g. for NEW); Base64
		// requires >=1 char, so an empty queueId is represented by
		// the absence of any base64 chars before the next space --
		// handle that explicitly.
		queueId = nil
	}
	if !p.Space() {
		return ParsedFrame{}, false
	}
	cmd, ok := ParseCommand(p)
	if !ok {
		return ParsedFrame{}, false
	}
	return ParsedFrame{Sig: sig, CorrId: corrId, QueueId: queueId, Cmd: cmd}, true
}

// sigField parses the signature's base64 token, which may legitimately be
// empty (an empty base64 token followed by a space).
func sigField(p *parser.Parser) ([]byte, bool) {
	if sig, ok := p.Base64(); ok {
		return sig, true
	}
	// Empty signature: no base64 chars to consume at all.
	return []byte{}, true
}
