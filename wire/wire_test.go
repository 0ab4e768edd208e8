package wire

import (
	"testing"
	"time"

	"github.com/simplex-chat/smp-go/internal/parser"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, c Command) Command {
	t.Helper()
	ser := Serialize(c)
	p := parser.New(ser)
	got, ok := ParseCommand(p)
	require.True(t, ok, "parse failed for %q", ser)
	require.True(t, p.End(), "leftover input after parsing %q", ser)
	return got
}

func TestCommandRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []Command{
		New{RcvPubKey: []byte("rsa-pub-key-bytes")},
		Sub{},
		Key{SndPubKey: []byte("another-rsa-pub-key")},
		Ack{},
		Off{},
		Del{},
		Send{MsgBody: []byte("hello world")},
		Send{MsgBody: []byte{}},
		Ping{},
		Pong{},
		Ok{},
		End{},
		Ids{RcvId: []byte("rcv-id"), SndId: []byte("snd-id")},
		Msg{MsgId: []byte("msg-id"), Ts: ts, MsgBody: []byte("hello")},
		Err{Error: SMPError{Kind: ErrAuth}},
		Err{Error: Cmd(SubSyntax)},
		Err{Error: SMPError{Kind: ErrBlock}},
		Err{Error: SMPError{Kind: ErrNoMsg}},
		Err{Error: SMPError{Kind: ErrInternal}},
		Err{Error: Cmd(SubProhibited)},
		Err{Error: Cmd(SubKeySize)},
		Err{Error: Cmd(SubNoAuth)},
		Err{Error: Cmd(SubHasAuth)},
		Err{Error: Cmd(SubNoQueue)},
	}
	for _, c := range cases {
		got := roundTrip(t, c)
		require.Equal(t, c, got)
	}
}

func TestNewSerializedForm(t *testing.T) {
	c := New{RcvPubKey: []byte("1234")}
	require.Equal(t, "NEW rsa:MTIzNA==", string(Serialize(c)))
}

func TestSendSerializedFormHasTrailingSpace(t *testing.T) {
	c := Send{MsgBody: []byte("hi")}
	require.Equal(t, "SEND 2 hi ", string(Serialize(c)))
}

func TestErrCmdSerializedForm(t *testing.T) {
	c := Err{Error: Cmd(SubSyntax)}
	require.Equal(t, "ERR CMD SYNTAX", string(Serialize(c)))
}

func TestErrNonCmdSerializedForm(t *testing.T) {
	c := Err{Error: SMPError{Kind: ErrAuth}}
	require.Equal(t, "ERR AUTH", string(Serialize(c)))
}

func TestBareTagsSerializeToTagOnly(t *testing.T) {
	require.Equal(t, "SUB", string(Serialize(Sub{})))
	require.Equal(t, "PING", string(Serialize(Ping{})))
	require.Equal(t, "PONG", string(Serialize(Pong{})))
	require.Equal(t, "OK", string(Serialize(Ok{})))
	require.Equal(t, "END", string(Serialize(End{})))
}

func TestPartyOf(t *testing.T) {
	p, ok := PartyOf(TagNEW)
	require.True(t, ok)
	require.Equal(t, Recipient, p)

	p, ok = PartyOf(TagSEND)
	require.True(t, ok)
	require.Equal(t, Sender, p)

	p, ok = PartyOf(TagMSG)
	require.True(t, ok)
	require.Equal(t, Broker, p)

	_, ok = PartyOf("NOPE")
	require.False(t, ok)
}

func TestParseCommandUnknownTag(t *testing.T) {
	p := parser.New([]byte("BOGUS"))
	_, ok := ParseCommand(p)
	require.False(t, ok)
}

func TestParseCommandMalformedArgs(t *testing.T) {
	p := parser.New([]byte("SEND 999 short "))
	_, ok := ParseCommand(p)
	require.False(t, ok)
}

func TestTransmissionRoundTrip(t *testing.T) {
	corrId := []byte("42")
	queueId := []byte("queue-id-bytes")
	cmd := Send{MsgBody: []byte("hello")}
	body := EncodeTransmissionBody([]byte("sig-bytes"), corrId, queueId, cmd)

	frame, ok := ParseTransmission(body)
	require.True(t, ok)
	require.Equal(t, []byte("sig-bytes"), frame.Sig)
	require.Equal(t, corrId, frame.CorrId)
	require.Equal(t, queueId, frame.QueueId)
	require.Equal(t, cmd, frame.Cmd)
}

func TestTransmissionRoundTripEmptySignatureAndQueueId(t *testing.T) {
	corrId := []byte("1")
	cmd := New{RcvPubKey: []byte("pubkey")}
	body := EncodeTransmissionBody(nil, corrId, nil, cmd)

	frame, ok := ParseTransmission(body)
	require.True(t, ok)
	require.Equal(t, []byte{}, frame.Sig)
	require.Nil(t, frame.QueueId)
	require.Equal(t, cmd, frame.Cmd)
}
