// root.go - smpcli command tree root.
package main

import (
	"fmt"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	serverHost string
	serverPort string
	keyHashHex string
	logger     = log.Default()
)

var rootCmd = &cobra.Command{
	Use:     "smpcli",
	Short:   "A command-line client for an SMP broker",
	Version: versioninfo.Short(),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverHost, "host", "localhost", "SMP broker host")
	rootCmd.PersistentFlags().StringVar(&serverPort, "port", "5223", "SMP broker port")
	rootCmd.PersistentFlags().StringVar(&keyHashHex, "key-hash", "", "hex-encoded SHA-256 pin of the broker's public key")
}

// invocationID tags one smpcli run's log lines for correlation, the way a
// daemon would tag a session.
func invocationID() string {
	return uuid.NewString()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
