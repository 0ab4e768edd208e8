package transport

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simplex-chat/smp-go/crypto"
	"github.com/simplex-chat/smp-go/transport/pipeconn"
)

func writeServerHeader(t *testing.T, conn *pipeconn.Pair, blockSize int, mode, keySize uint16) {
	t.Helper()
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(blockSize))
	binary.BigEndian.PutUint16(hdr[4:6], mode)
	binary.BigEndian.PutUint16(hdr[6:8], keySize)
	require.NoError(t, conn.WriteFrame(context.Background(), hdr[:]))
}

func TestHandshakeSucceeds(t *testing.T) {
	clientSide, serverSide := pipeconn.New()
	ctx := context.Background()

	serverPriv, err := crypto.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	spki, err := crypto.EncodeSPKI(&serverPriv.PublicKey)
	require.NoError(t, err)

	const blockSize = 4096
	done := make(chan error, 1)
	go func() {
		writeServerHeader(t, serverSide, blockSize, rsaTransportMode, uint16(len(spki)))
		require.NoError(t, serverSide.WriteFrame(ctx, spki))

		wrapped, err := serverSide.ReadFrame(ctx)
		if err != nil {
			done <- err
			return
		}
		body, err := crypto.DecryptOAEP(serverPriv, wrapped)
		if err != nil {
			done <- err
			return
		}
		if len(body) != clientHandshakeBodySize {
			done <- err
			return
		}
		sndKey := &SessionKey{AESKey: body[6:38], BaseIV: body[38:54]}
		rcvKey := &SessionKey{AESKey: body[54:86], BaseIV: body[86:102]}
		// The server's send direction is the client's receive direction.
		serverTH := &THandle{Conn: serverSide, SndKey: rcvKey, RcvKey: sndKey, BlockSize: blockSize}
		welcome := []byte("0.4.0.0 ")
		done <- serverTH.WriteBlock(ctx, welcome)
	}()

	th, err := Handshake(ctx, clientSide, nil, nil)
	require.NoError(t, err)
	require.Equal(t, blockSize, th.BlockSize)

	select {
	case werr := <-done:
		require.NoError(t, werr)
	case <-time.After(time.Second):
		t.Fatal("server goroutine did not complete")
	}
}

func TestHandshakeRejectsIncompatibleVersion(t *testing.T) {
	clientSide, serverSide := pipeconn.New()
	ctx := context.Background()

	serverPriv, err := crypto.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	spki, err := crypto.EncodeSPKI(&serverPriv.PublicKey)
	require.NoError(t, err)

	const blockSize = 4096
	go func() {
		writeServerHeader(t, serverSide, blockSize, rsaTransportMode, uint16(len(spki)))
		_ = serverSide.WriteFrame(ctx, spki)

		wrapped, err := serverSide.ReadFrame(ctx)
		require.NoError(t, err)
		body, err := crypto.DecryptOAEP(serverPriv, wrapped)
		require.NoError(t, err)
		sndKey := &SessionKey{AESKey: body[6:38], BaseIV: body[38:54]}
		rcvKey := &SessionKey{AESKey: body[54:86], BaseIV: body[86:102]}
		serverTH := &THandle{Conn: serverSide, SndKey: rcvKey, RcvKey: sndKey, BlockSize: blockSize}
		_ = serverTH.WriteBlock(ctx, []byte("0.5.0.0 "))
	}()

	_, err = Handshake(ctx, clientSide, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "incompatible server version")
}

func TestHandshakeRejectsKeyHashMismatch(t *testing.T) {
	clientSide, serverSide := pipeconn.New()
	ctx := context.Background()

	serverPriv, err := crypto.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	spki, err := crypto.EncodeSPKI(&serverPriv.PublicKey)
	require.NoError(t, err)

	go func() {
		writeServerHeader(t, serverSide, 4096, rsaTransportMode, uint16(len(spki)))
		_ = serverSide.WriteFrame(ctx, spki)
	}()

	badHash := make([]byte, 32)
	_, err = Handshake(ctx, clientSide, badHash, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "key hash does not match")
}

func TestHandshakeRejectsBadBlockSize(t *testing.T) {
	clientSide, serverSide := pipeconn.New()
	ctx := context.Background()
	go func() {
		writeServerHeader(t, serverSide, 1024, rsaTransportMode, 0)
	}()

	_, err := Handshake(ctx, clientSide, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestBlockWriteReadRoundTrip(t *testing.T) {
	a, b := pipeconn.New()
	ctx := context.Background()

	k1, err := NewSessionKey()
	require.NoError(t, err)
	k2, err := NewSessionKey()
	require.NoError(t, err)

	thA := &THandle{Conn: a, SndKey: k1, RcvKey: k2, BlockSize: 4096}
	thB := &THandle{Conn: b, SndKey: k2, RcvKey: k1, BlockSize: 4096}

	msg := []byte("hello over the wire")
	require.NoError(t, thA.WriteBlock(ctx, msg))
	got, err := thB.ReadBlock(ctx)
	require.NoError(t, err)
	require.Equal(t, append(msg, paddingFor(len(msg), thA.PlaintextCapacity())...), got)
}

func TestWriteBlockRejectsOversizedPlaintext(t *testing.T) {
	a, b := pipeconn.New()
	_ = b
	k1, err := NewSessionKey()
	require.NoError(t, err)
	k2, err := NewSessionKey()
	require.NoError(t, err)
	th := &THandle{Conn: a, SndKey: k1, RcvKey: k2, BlockSize: 32}
	err = th.WriteBlock(context.Background(), make([]byte, 32))
	require.ErrorIs(t, err, crypto.ErrLargeMessage)
}

func paddingFor(n, capacity int) []byte {
	pad := make([]byte, capacity-n)
	for i := range pad {
		pad[i] = '#'
	}
	return pad
}
