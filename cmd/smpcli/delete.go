// delete.go - the delete-queue subcommand.
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
	deleteQueueID      string
	deleteRecipientKey string
)

var deleteCmd = &cobra.Command{
	Use:   "delete-queue",
	Short: "Permanently delete a queue",
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteQueueID, "queue-id", "", "base64 recipient queue id (required)")
	deleteCmd.Flags().StringVar(&deleteRecipientKey, "recipient-key", "", "base64 PKCS#1 DER recipient private key, as printed by new-queue (required)")
	deleteCmd.MarkFlagRequired("queue-id")
	deleteCmd.MarkFlagRequired("recipient-key")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	queueID, err := base64.StdEncoding.DecodeString(deleteQueueID)
	if err != nil {
		return fmt.Errorf("smpcli: decode --queue-id: %w", err)
	}
	rcvKey, err := loadRecipientKey(deleteRecipientKey)
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

	if err := c.DeleteSMPQueue(ctx, rcvKey, queueID); err != nil {
		return fmt.Errorf("smpcli: delete-queue: %w", err)
	}
	logger.Info("queue deleted", "queue_id", deleteQueueID)
	return nil
}
