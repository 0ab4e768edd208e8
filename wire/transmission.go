// transmission.go - the outbound/inbound framed transmission shapes.
package wire

import "crypto/rsa"

// ClientTransmission is the unit a client hands to the transport for
// signing and serialization. SignKey is nil when the command requires no
// authorization (e.g. any PING, or an unsigned SEND).
type ClientTransmission struct {
	SignKey *rsa.PrivateKey
	CorrId  []byte
	QueueId []byte
	Command ClientCommand
}

// BrokerTransmission is what the client's inbound loop produces for each
// decrypted block: either a parsed broker Command, or an SMPError (a
// locally synthesized parse/dispatch failure, or one forwarded from the
// broker's own ERR command).
type BrokerTransmission struct {
	CorrId  []byte
	QueueId []byte
	Command BrokerCommand
	Error   *SMPError
}

// BadBlock is the sentinel BrokerTransmission produced when an inbound
// block cannot be decoded as a transmission at all.
func BadBlock() BrokerTransmission {
	e := BadBlockError
	return BrokerTransmission{CorrId: []byte{}, QueueId: []byte{}, Error: &e}
}
