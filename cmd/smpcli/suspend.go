// suspend.go - the suspend-queue subcommand.
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
	suspendQueueID      string
	suspendRecipientKey string
)

var suspendCmd = &cobra.Command{
	Use:   "suspend-queue",
	Short: "Suspend a queue so no new messages are accepted",
	RunE:  runSuspend,
}

func init() {
	suspendCmd.Flags().StringVar(&suspendQueueID, "queue-id", "", "base64 recipient queue id (required)")
	suspendCmd.Flags().StringVar(&suspendRecipientKey, "recipient-key", "", "base64 PKCS#1 DER recipient private key, as printed by new-queue (required)")
	suspendCmd.MarkFlagRequired("queue-id")
	suspendCmd.MarkFlagRequired("recipient-key")
	rootCmd.AddCommand(suspendCmd)
}

func runSuspend(cmd *cobra.Command, args []string) error {
	queueID, err := base64.StdEncoding.DecodeString(suspendQueueID)
	if err != nil {
		return fmt.Errorf("smpcli: decode --queue-id: %w", err)
	}
	rcvKey, err := loadRecipientKey(suspendRecipientKey)
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

	if err := c.SuspendSMPQueue(ctx, rcvKey, queueID); err != nil {
		return fmt.Errorf("smpcli: suspend-queue: %w", err)
	}
	logger.Info("queue suspended", "queue_id", suspendQueueID)
	return nil
}
