// ack.go - the ack subcommand.
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
	ackQueueID      string
	ackRecipientKey string
)

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge and remove the queue's current message",
	RunE:  runAck,
}

func init() {
	ackCmd.Flags().StringVar(&ackQueueID, "queue-id", "", "base64 recipient queue id (required)")
	ackCmd.Flags().StringVar(&ackRecipientKey, "recipient-key", "", "base64 PKCS#1 DER recipient private key, as printed by new-queue (required)")
	ackCmd.MarkFlagRequired("queue-id")
	ackCmd.MarkFlagRequired("recipient-key")
	rootCmd.AddCommand(ackCmd)
}

func runAck(cmd *cobra.Command, args []string) error {
	queueID, err := base64.StdEncoding.DecodeString(ackQueueID)
	if err != nil {
		return fmt.Errorf("smpcli: decode --queue-id: %w", err)
	}
	rcvKey, err := loadRecipientKey(ackRecipientKey)
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

	if err := c.AckSMPMessage(ctx, rcvKey, queueID); err != nil {
		return fmt.Errorf("smpcli: ack: %w", err)
	}
	logger.Info("message acknowledged", "queue_id", ackQueueID)
	return nil
}
