// ops.go - convenience operations built on sendSMPCommand, each asserting
// the broker response shape the protocol specifies for it.
package client

import (
	"context"

	"github.com/simplex-chat/smp-go/crypto"
	"github.com/simplex-chat/smp-go/wire"
)

func unexpectedResponse(got wire.BrokerCommand, want string) error {
	return newResponseError("expected %s, got %s", want, got.Tag())
}

// CreateSMPQueue sends NEW and returns the broker-assigned queue ids.
func (c *Client) CreateSMPQueue(ctx context.Context, rcvKey *crypto.GuardedKey, rcvPubKey []byte) (wire.Ids, error) {
	resp, err := c.sendSMPCommand(ctx, rcvKey, nil, wire.New{RcvPubKey: rcvPubKey})
	if err != nil {
		return wire.Ids{}, err
	}
	ids, ok := resp.(wire.Ids)
	if !ok {
		return wire.Ids{}, unexpectedResponse(resp, "IDS")
	}
	return ids, nil
}

// SubscribeSMPQueue sends SUB. An MSG response is a message that was
// already waiting and is forwarded to msgQ rather than returned here.
func (c *Client) SubscribeSMPQueue(ctx context.Context, rcvKey *crypto.GuardedKey, queueID []byte) error {
	resp, err := c.sendSMPCommand(ctx, rcvKey, queueID, wire.Sub{})
	if err != nil {
		return err
	}
	switch resp.(type) {
	case wire.Ok:
		return nil
	case wire.Msg:
		return c.msgQ.Enqueue(ServerMessage{Server: c.server, QueueID: queueID, Command: resp})
	default:
		return unexpectedResponse(resp, "OK or MSG")
	}
}

// SecureSMPQueue sends KEY, authorizing a sender's verification key.
func (c *Client) SecureSMPQueue(ctx context.Context, rcvKey *crypto.GuardedKey, queueID, sndPubKey []byte) error {
	resp, err := c.sendSMPCommand(ctx, rcvKey, queueID, wire.Key{SndPubKey: sndPubKey})
	if err != nil {
		return err
	}
	if _, ok := resp.(wire.Ok); !ok {
		return unexpectedResponse(resp, "OK")
	}
	return nil
}

// SendSMPMessage sends SEND. sndKey may be nil for an unsigned send.
func (c *Client) SendSMPMessage(ctx context.Context, sndKey *crypto.GuardedKey, queueID, msg []byte) error {
	resp, err := c.sendSMPCommand(ctx, sndKey, queueID, wire.Send{MsgBody: msg})
	if err != nil {
		return err
	}
	if _, ok := resp.(wire.Ok); !ok {
		return unexpectedResponse(resp, "OK")
	}
	return nil
}

// AckSMPMessage sends ACK.
func (c *Client) AckSMPMessage(ctx context.Context, rcvKey *crypto.GuardedKey, queueID []byte) error {
	resp, err := c.sendSMPCommand(ctx, rcvKey, queueID, wire.Ack{})
	if err != nil {
		return err
	}
	switch resp.(type) {
	case wire.Ok, wire.Msg:
		return nil
	default:
		return unexpectedResponse(resp, "OK or MSG")
	}
}

// SuspendSMPQueue sends OFF.
func (c *Client) SuspendSMPQueue(ctx context.Context, rcvKey *crypto.GuardedKey, queueID []byte) error {
	resp, err := c.sendSMPCommand(ctx, rcvKey, queueID, wire.Off{})
	if err != nil {
		return err
	}
	if _, ok := resp.(wire.Ok); !ok {
		return unexpectedResponse(resp, "OK")
	}
	return nil
}

// DeleteSMPQueue sends DEL.
func (c *Client) DeleteSMPQueue(ctx context.Context, rcvKey *crypto.GuardedKey, queueID []byte) error {
	resp, err := c.sendSMPCommand(ctx, rcvKey, queueID, wire.Del{})
	if err != nil {
		return err
	}
	if _, ok := resp.(wire.Ok); !ok {
		return unexpectedResponse(resp, "OK")
	}
	return nil
}

// Ping sends PING and waits for PONG.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.sendSMPCommand(ctx, nil, nil, wire.Ping{})
	if err != nil {
		return err
	}
	if _, ok := resp.(wire.Pong); !ok {
		return unexpectedResponse(resp, "PONG")
	}
	return nil
}
