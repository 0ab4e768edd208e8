// command.go - SMP command tags, parties, and typed command values.
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

// Package wire implements the SMP command grammar: tags, typed command
// values, and their ASCII serialization/parsing. Commands are tied to
// parties by giving ClientCommand and BrokerCommand distinct marker
// methods, so a broker-only command can't be used as a client command.
package wire

import "time"

// Party identifies who may issue a command.
type Party int

const (
	Recipient Party = iota
	Sender
	Broker
)

func (p Party) String() string {
	switch p {
	case Recipient:
		return "recipient"
	case Sender:
		return "sender"
	case Broker:
		return "broker"
	default:
		return "unknown"
	}
}

// CmdTag is the ASCII token identifying a command variant on the wire.
type CmdTag string

const (
	TagNEW  CmdTag = "NEW"
	TagSUB  CmdTag = "SUB"
	TagKEY  CmdTag = "KEY"
	TagACK  CmdTag = "ACK"
	TagOFF  CmdTag = "OFF"
	TagDEL  CmdTag = "DEL"
	TagSEND CmdTag = "SEND"
	TagPING CmdTag = "PING"
	TagIDS  CmdTag = "IDS"
	TagMSG  CmdTag = "MSG"
	TagEND  CmdTag = "END"
	TagOK   CmdTag = "OK"
	TagERR  CmdTag = "ERR"
	TagPONG CmdTag = "PONG"
)

// tagOrder lists every known tag. Its order governs SomeStr's tie-break
// order during parsing.
var tagOrder = []CmdTag{
	TagNEW, TagSUB, TagKEY, TagACK, TagOFF, TagDEL,
	TagSEND, TagPING,
	TagIDS, TagMSG, TagEND, TagOK, TagERR, TagPONG,
}

// tagParty maps every known tag to the party allowed to issue it.
var tagParty = map[CmdTag]Party{
	TagNEW: Recipient, TagSUB: Recipient, TagKEY: Recipient,
	TagACK: Recipient, TagOFF: Recipient, TagDEL: Recipient,
	TagSEND: Sender, TagPING: Sender,
	TagIDS: Broker, TagMSG: Broker, TagEND: Broker,
	TagOK: Broker, TagERR: Broker, TagPONG: Broker,
}

// PartyOf returns the party allowed to issue tag, and false if tag is
// unknown.
func PartyOf(tag CmdTag) (Party, bool) {
	p, ok := tagParty[tag]
	return p, ok
}

// Command is any SMP command value.
type Command interface {
	Tag() CmdTag
}

// ClientCommand is a command a recipient or a sender may issue.
type ClientCommand interface {
	Command
	isClientCommand()
}

// BrokerCommand is a command the broker may issue in response.
type BrokerCommand interface {
	Command
	isBrokerCommand()
}

// New creates a queue; RcvPubKey is the recipient's verification public key
// (X.509 SPKI encoding of an RSA public key).
type New struct{ RcvPubKey []byte }

func (New) Tag() CmdTag    { return TagNEW }
func (New) isClientCommand() {}

// Sub subscribes to queue messages.
type Sub struct{}

func (Sub) Tag() CmdTag      { return TagSUB }
func (Sub) isClientCommand() {}

// Key authorizes a sender with its verification public key.
type Key struct{ SndPubKey []byte }

func (Key) Tag() CmdTag      { return TagKEY }
func (Key) isClientCommand() {}

// Ack acknowledges the last delivered message.
type Ack struct{}

func (Ack) Tag() CmdTag      { return TagACK }
func (Ack) isClientCommand() {}

// Off suspends a queue.
type Off struct{}

func (Off) Tag() CmdTag      { return TagOFF }
func (Off) isClientCommand() {}

// Del deletes a queue.
type Del struct{}

func (Del) Tag() CmdTag      { return TagDEL }
func (Del) isClientCommand() {}

// Send submits a message body to a queue.
type Send struct{ MsgBody []byte }

func (Send) Tag() CmdTag      { return TagSEND }
func (Send) isClientCommand() {}

// Ping requests a liveness Pong from the broker.
type Ping struct{}

func (Ping) Tag() CmdTag      { return TagPING }
func (Ping) isClientCommand() {}

// Pong is the broker's reply to Ping.
type Pong struct{}

func (Pong) Tag() CmdTag      { return TagPONG }
func (Pong) isBrokerCommand() {}

// Ok is the broker's generic success acknowledgement.
type Ok struct{}

func (Ok) Tag() CmdTag      { return TagOK }
func (Ok) isBrokerCommand() {}

// End signals the broker is closing the subscription.
type End struct{}

func (End) Tag() CmdTag      { return TagEND }
func (End) isBrokerCommand() {}

// Ids is the broker's reply to New: the two opaque queue ids.
type Ids struct {
	RcvId []byte
	SndId []byte
}

func (Ids) Tag() CmdTag      { return TagIDS }
func (Ids) isBrokerCommand() {}

// Msg delivers one queued message.
type Msg struct {
	MsgId   []byte
	Ts      time.Time
	MsgBody []byte
}

func (Msg) Tag() CmdTag      { return TagMSG }
func (Msg) isBrokerCommand() {}

// Err carries a protocol-level error from the broker (or synthesized
// locally on a parse/dispatch failure).
type Err struct{ Error SMPError }

func (Err) Tag() CmdTag      { return TagERR }
func (Err) isBrokerCommand() {}
