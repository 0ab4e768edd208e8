// subscribe.go - the subscribe subcommand.
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
	subscribeQueueID      string
	subscribeRecipientKey string
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe to a queue's recipient id",
	RunE:  runSubscribe,
}

func init() {
	subscribeCmd.Flags().StringVar(&subscribeQueueID, "queue-id", "", "base64 recipient queue id (required)")
	subscribeCmd.Flags().StringVar(&subscribeRecipientKey, "recipient-key", "", "base64 PKCS#1 DER recipient private key, as printed by new-queue (required)")
	subscribeCmd.MarkFlagRequired("queue-id")
	subscribeCmd.MarkFlagRequired("recipient-key")
	rootCmd.AddCommand(subscribeCmd)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	queueID, err := base64.StdEncoding.DecodeString(subscribeQueueID)
	if err != nil {
		return fmt.Errorf("smpcli: decode --queue-id: %w", err)
	}
	rcvKey, err := loadRecipientKey(subscribeRecipientKey)
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

	if err := c.SubscribeSMPQueue(ctx, rcvKey, queueID); err != nil {
		return fmt.Errorf("smpcli: subscribe: %w", err)
	}
	logger.Info("subscribed", "queue_id", subscribeQueueID)
	return nil
}
