// queue.go - the new-queue subcommand. The rest of the queue lifecycle
// (subscribe, secure-queue, ack, suspend-queue, delete-queue) lives in
// their own files alongside it.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simplex-chat/smp-go/client"
	"github.com/simplex-chat/smp-go/config"
	smpcrypto "github.com/simplex-chat/smp-go/crypto"
	"github.com/simplex-chat/smp-go/queue"
)

var newQueueCmd = &cobra.Command{
	Use:   "new-queue",
	Short: "Create a new SMP queue and print its recipient/sender ids",
	RunE:  runNewQueue,
}

func init() {
	rootCmd.AddCommand(newQueueCmd)
}

func runNewQueue(cmd *cobra.Command, args []string) error {
	server := config.SMPServer{Host: serverHost, Port: serverPort, KeyHash: keyHashHex}
	msgQ := queue.New[client.ServerMessage](config.DefaultClientOptions().QueueSize)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c, err := dialBroker(ctx, server, msgQ)
	if err != nil {
		return err
	}
	defer c.Disconnect()

	rcvPriv, err := smpcrypto.GenerateRSAKeyPair(2048)
	if err != nil {
		return fmt.Errorf("smpcli: generate recipient key: %w", err)
	}
	rcvKey, err := smpcrypto.NewGuardedKey(rcvPriv)
	if err != nil {
		return fmt.Errorf("smpcli: guard recipient key: %w", err)
	}
	defer rcvKey.Destroy()

	rcvPub, err := smpcrypto.EncodeSPKI(&rcvPriv.PublicKey)
	if err != nil {
		return fmt.Errorf("smpcli: encode recipient public key: %w", err)
	}

	ids, err := c.CreateSMPQueue(ctx, rcvKey, rcvPub)
	if err != nil {
		return fmt.Errorf("smpcli: create queue: %w", err)
	}

	logger.Info("queue created",
		"rcv_id", base64.StdEncoding.EncodeToString(ids.RcvId),
		"snd_id", base64.StdEncoding.EncodeToString(ids.SndId))
	fmt.Printf("rcv_id=%s\nsnd_id=%s\nrecipient_key=%s\n",
		base64.StdEncoding.EncodeToString(ids.RcvId),
		base64.StdEncoding.EncodeToString(ids.SndId),
		encodeRecipientKey(rcvPriv))
	return nil
}
