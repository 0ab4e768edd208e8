// connect.go - dials a broker over WebSocket, performs the handshake, and
// runs a brief ping/pong smoke test.
package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/simplex-chat/smp-go/client"
	"github.com/simplex-chat/smp-go/config"
	"github.com/simplex-chat/smp-go/queue"
	"github.com/simplex-chat/smp-go/transport"
	"github.com/simplex-chat/smp-go/transport/wsconn"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Dial a broker, handshake, and verify it answers PING",
	RunE:  runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

// dialBroker opens a WebSocket to host:port and completes the client
// handshake, returning a ready-to-use Client.
func dialBroker(ctx context.Context, server config.SMPServer, msgQ *queue.Bounded[client.ServerMessage]) (*client.Client, error) {
	u := url.URL{Scheme: "wss", Host: fmt.Sprintf("%s:%s", server.Host, server.Port), Path: "/"}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("smpcli: dial %s: %w", u.Host, err)
	}
	conn := wsconn.New(ws)

	keyHash, err := server.DecodedKeyHash()
	if err != nil {
		conn.Close()
		return nil, err
	}
	th, err := transport.Handshake(ctx, conn, keyHash, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client.New(th, server, msgQ, logger, nil), nil
}

func runConnect(cmd *cobra.Command, args []string) error {
	id := invocationID()
	log := logger.With("invocation", id)

	server := config.SMPServer{Host: serverHost, Port: serverPort, KeyHash: keyHashHex}
	msgQ := queue.New[client.ServerMessage](config.DefaultClientOptions().QueueSize)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c, err := dialBroker(ctx, server, msgQ)
	if err != nil {
		return err
	}
	defer c.Disconnect()

	log.Info("handshake complete", "server", server.Host)
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("smpcli: ping: %w", err)
	}
	log.Info("broker answered PONG")
	return nil
}
