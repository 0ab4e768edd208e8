// secure.go - the secure-queue subcommand.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simplex-chat/smp-go/client"
	"github.com/simplex-chat/smp-go/config"
	"github.com/simplex-chat/smp-go/queue"
)

var (
	secureQueueID      string
	secureRecipientKey string
	secureSenderPubKey string
)

var secureCmd = &cobra.Command{
	Use:   "secure-queue",
	Short: "Authorize a sender's verification key on a queue",
	RunE:  runSecure,
}

func init() {
	secureCmd.Flags().StringVar(&secureQueueID, "queue-id", "", "base64 recipient queue id (required)")
	secureCmd.Flags().StringVar(&secureRecipientKey, "recipient-key", "", "base64 PKCS#1 DER recipient private key, as printed by new-queue (required)")
	secureCmd.Flags().StringVar(&secureSenderPubKey, "sender-pub-key", "", "base64 SPKI sender public key (required)")
	secureCmd.MarkFlagRequired("queue-id")
	secureCmd.MarkFlagRequired("recipient-key")
	secureCmd.MarkFlagRequired("sender-pub-key")
	rootCmd.AddCommand(secureCmd)
}

func runSecure(cmd *cobra.Command, args []string) error {
	queueID, err := base64.StdEncoding.DecodeString(secureQueueID)
	if err != nil {
		return fmt.Errorf("smpcli: decode --queue-id: %w", err)
	}
	sndPubKey, err := base64.StdEncoding.DecodeString(secureSenderPubKey)
	if err != nil {
		return fmt.Errorf("smpcli: decode --sender-pub-key: %w", err)
	}
	rcvKey, err := loadRecipientKey(secureRecipientKey)
	if err != nil {
		return err
	}
	defer rcvKey.Destroy()

	server := config.SMPServer{Host: serverHost, Port: serverPort, KeyHash: keyHashHex}
	msgQ := queue.New[client.ServerMessage](config.DefaultClientOptions().QueueSize)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c, err := dialBroker(ctx, server, msgQ)
	if err != nil {
		return err
	}
	defer c.Disconnect()

	if err := c.SecureSMPQueue(ctx, rcvKey, queueID, sndPubKey); err != nil {
		return fmt.Errorf("smpcli: secure-queue: %w", err)
	}
	logger.Info("queue secured", "queue_id", secureQueueID)
	return nil
}
