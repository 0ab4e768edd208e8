package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simplex-chat/smp-go/config"
	smpcrypto "github.com/simplex-chat/smp-go/crypto"
	"github.com/simplex-chat/smp-go/queue"
	"github.com/simplex-chat/smp-go/transport"
	"github.com/simplex-chat/smp-go/transport/pipeconn"
	"github.com/simplex-chat/smp-go/wire"
)

// pairedHandles builds two THandles sharing session keys in opposite
// directions over an in-memory pipeconn pair, standing in for a completed
// handshake on both ends.
func pairedHandles(t *testing.T) (*transport.THandle, *transport.THandle) {
	t.Helper()
	a, b := pipeconn.New()
	k1, err := transport.NewSessionKey()
	require.NoError(t, err)
	k2, err := transport.NewSessionKey()
	require.NoError(t, err)
	thA := &transport.THandle{Conn: a, SndKey: k1, RcvKey: k2, BlockSize: 4096}
	thB := &transport.THandle{Conn: b, SndKey: k2, RcvKey: k1, BlockSize: 4096}
	return thA, thB
}

// fakeBroker reads one request and answers it on the request's corrId with
// cmd, an empty signature, and the given queueId.
func fakeBroker(t *testing.T, th *transport.THandle, queueID []byte, cmd wire.BrokerCommand) {
	t.Helper()
	block, err := th.ReadBlock(context.Background())
	require.NoError(t, err)
	frame, ok := wire.ParseTransmission(block)
	require.True(t, ok)
	resp := wire.EncodeTransmissionBody(nil, frame.CorrId, queueID, cmd)
	require.NoError(t, th.WriteBlock(context.Background(), resp))
}

func TestCreateSMPQueueRoundTrip(t *testing.T) {
	clientTH, brokerTH := pairedHandles(t)
	msgQ := queue.New[ServerMessage](8)
	c := New(clientTH, config.SMPServer{Host: "test"}, msgQ, nil, nil)
	defer c.Disconnect()

	rcvPriv, err := smpcrypto.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	rcvKey, err := smpcrypto.NewGuardedKey(rcvPriv)
	require.NoError(t, err)
	defer rcvKey.Destroy()

	rcvID := []byte("rcv-id-1")
	sndID := []byte("snd-id-1")
	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeBroker(t, brokerTH, nil, wire.Ids{RcvId: rcvID, SndId: sndID})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ids, err := c.CreateSMPQueue(ctx, rcvKey, []byte("rsa-pub-key"))
	require.NoError(t, err)
	require.Equal(t, rcvID, ids.RcvId)
	require.Equal(t, sndID, ids.SndId)
	<-done
}

func TestSendSMPMessageRejectsUnexpectedResponse(t *testing.T) {
	clientTH, brokerTH := pairedHandles(t)
	msgQ := queue.New[ServerMessage](8)
	c := New(clientTH, config.SMPServer{Host: "test"}, msgQ, nil, nil)
	defer c.Disconnect()

	go func() {
		fakeBroker(t, brokerTH, nil, wire.Ids{RcvId: []byte("x"), SndId: []byte("y")})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := c.SendSMPMessage(ctx, nil, []byte("q"), []byte("hello"))
	require.Error(t, err)
}

func TestUnsolicitedMsgGoesToQueue(t *testing.T) {
	clientTH, brokerTH := pairedHandles(t)
	msgQ := queue.New[ServerMessage](8)
	c := New(clientTH, config.SMPServer{Host: "test"}, msgQ, nil, nil)
	defer c.Disconnect()

	qID := []byte("rcv-id")
	go func() {
		body := wire.EncodeTransmissionBody(nil, []byte(""), qID, wire.Msg{
			MsgId:   []byte("m1"),
			Ts:      time.Now().UTC(),
			MsgBody: []byte("hello"),
		})
		_ = brokerTH.WriteBlock(context.Background(), body)
	}()

	select {
	case sm := <-msgQ.Iter():
		msg, ok := sm.Command.(wire.Msg)
		require.True(t, ok)
		require.Equal(t, []byte("hello"), msg.MsgBody)
		require.Equal(t, qID, sm.QueueID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for unsolicited MSG")
	}
}

// TestQueueLifecycleRoundTrip exercises subscribe->secure->send->ack->
// suspend->delete against one queue, the full scenario the bare MSG-push
// test above skips.
func TestQueueLifecycleRoundTrip(t *testing.T) {
	clientTH, brokerTH := pairedHandles(t)
	msgQ := queue.New[ServerMessage](8)
	c := New(clientTH, config.SMPServer{Host: "test"}, msgQ, nil, nil)
	defer c.Disconnect()

	rcvPriv, err := smpcrypto.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	rcvKey, err := smpcrypto.NewGuardedKey(rcvPriv)
	require.NoError(t, err)
	defer rcvKey.Destroy()

	sndPriv, err := smpcrypto.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	sndKey, err := smpcrypto.NewGuardedKey(sndPriv)
	require.NoError(t, err)
	defer sndKey.Destroy()
	sndPub, err := smpcrypto.EncodeSPKI(&sndPriv.PublicKey)
	require.NoError(t, err)

	qID := []byte("lifecycle-q")
	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeBroker(t, brokerTH, qID, wire.Ok{}) // SUB
		fakeBroker(t, brokerTH, qID, wire.Ok{}) // KEY
		fakeBroker(t, brokerTH, qID, wire.Ok{}) // SEND
		fakeBroker(t, brokerTH, qID, wire.Ok{}) // ACK
		fakeBroker(t, brokerTH, qID, wire.Ok{}) // OFF
		fakeBroker(t, brokerTH, qID, wire.Ok{}) // DEL
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.SubscribeSMPQueue(ctx, rcvKey, qID))
	require.NoError(t, c.SecureSMPQueue(ctx, rcvKey, qID, sndPub))
	require.NoError(t, c.SendSMPMessage(ctx, sndKey, qID, []byte("hi")))
	require.NoError(t, c.AckSMPMessage(ctx, rcvKey, qID))
	require.NoError(t, c.SuspendSMPQueue(ctx, rcvKey, qID))
	require.NoError(t, c.DeleteSMPQueue(ctx, rcvKey, qID))
	<-done
}

// TestConcurrentSendSMPCommandsSerializeWrites fans out concurrent PINGs
// the way cmd/smpcli's ping subcommand does, and relies on the broker side
// successfully decrypting every block: if two sendSMPCommand calls ever
// raced on th's send session key, a block would be sealed under a reused
// IV and the broker's matching OpenBlock call would fail authentication.
func TestConcurrentSendSMPCommandsSerializeWrites(t *testing.T) {
	clientTH, brokerTH := pairedHandles(t)
	msgQ := queue.New[ServerMessage](8)
	c := New(clientTH, config.SMPServer{Host: "test"}, msgQ, nil, nil)
	defer c.Disconnect()

	const n = 8
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			fakeBroker(t, brokerTH, nil, wire.Pong{})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			errs <- c.Ping(ctx)
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
	<-done
}

func TestDisconnectRejectsPendingRequests(t *testing.T) {
	clientTH, _ := pairedHandles(t)
	msgQ := queue.New[ServerMessage](8)
	c := New(clientTH, config.SMPServer{Host: "test"}, msgQ, nil, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.CreateSMPQueue(context.Background(), nil, []byte("k"))
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	c.Disconnect()

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pending request was not rejected on disconnect")
	}
}
