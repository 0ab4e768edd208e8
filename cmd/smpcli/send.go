// send.go - sends one unsigned message to a queue's sender id.
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
	sendQueueID string
	sendBody    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message to a queue's sender id",
	Example: `  smpcli send --queue-id <base64 snd_id> --message "hello"`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendQueueID, "queue-id", "", "base64 sender queue id (required)")
	sendCmd.Flags().StringVar(&sendBody, "message", "", "message body (required)")
	sendCmd.MarkFlagRequired("queue-id")
	sendCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	queueID, err := base64.StdEncoding.DecodeString(sendQueueID)
	if err != nil {
		return fmt.Errorf("smpcli: decode --queue-id: %w", err)
	}

	server := config.SMPServer{Host: serverHost, Port: serverPort, KeyHash: keyHashHex}
	msgQ := queue.New[client.ServerMessage](config.DefaultClientOptions().QueueSize)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c, err := dialBroker(ctx, server, msgQ)
	if err != nil {
		return err
	}
	defer c.Disconnect()

	if err := c.SendSMPMessage(ctx, nil, queueID, []byte(sendBody)); err != nil {
		return fmt.Errorf("smpcli: send: %w", err)
	}
	logger.Info("message sent", "queue_id", sendQueueID)
	return nil
}
