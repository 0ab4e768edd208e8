// ping.go - sends repeated PING commands over one connection and reports
// the success rate.
package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/simplex-chat/smp-go/client"
	"github.com/simplex-chat/smp-go/config"
	"github.com/simplex-chat/smp-go/queue"
)

var (
	pingCount       int
	pingConcurrency int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send repeated PINGs to a broker and report the success rate",
	RunE:  runPing,
}

func init() {
	pingCmd.Flags().IntVar(&pingCount, "count", 10, "number of PINGs to send")
	pingCmd.Flags().IntVar(&pingConcurrency, "concurrency", 4, "number of PINGs in flight at once")
	rootCmd.AddCommand(pingCmd)
}

func sendPing(ctx context.Context, c *client.Client) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		fmt.Printf("\nerror: %v\n", err)
		fmt.Printf(".")
		return false
	}
	return true
}

func sendPings(ctx context.Context, c *client.Client, count, concurrency int) {
	fmt.Printf("Sending %d PINGs to %s:%s\n", count, serverHost, serverPort)

	var passed, failed uint64
	wg := new(sync.WaitGroup)
	sem := make(chan struct{}, concurrency)

	for i := 0; i < count; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			if sendPing(ctx, c) {
				fmt.Printf("!")
				atomic.AddUint64(&passed, 1)
			} else {
				fmt.Printf("~")
				atomic.AddUint64(&failed, 1)
			}
			wg.Done()
			<-sem
		}()
	}
	wg.Wait()
	fmt.Printf("\n")

	percent := (float64(passed) * 100) / float64(count)
	fmt.Printf("Success rate is %f percent (%d/%d)\n", percent, passed, count)
}

func runPing(cmd *cobra.Command, args []string) error {
	server := config.SMPServer{Host: serverHost, Port: serverPort, KeyHash: keyHashHex}
	msgQ := queue.New[client.ServerMessage](config.DefaultClientOptions().QueueSize)

	dialCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	c, err := dialBroker(dialCtx, server, msgQ)
	if err != nil {
		return err
	}
	defer c.Disconnect()

	sendPings(context.Background(), c, pingCount, pingConcurrency)
	return nil
}
