// Package config loads the client's TOML configuration: the set of SMP
// servers it knows about and per-connection options. Follows the
// teacher's convention of a single top-level config struct loaded with
// BurntSushi/toml (see DESIGN.md).
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// SMPServer identifies a broker the client can connect to. KeyHash, if
// non-empty, pins the server's public key.
type SMPServer struct {
	Host    string `toml:"host"`
	Port    string `toml:"port"`
	KeyHash string `toml:"key_hash"` // hex-encoded SHA-256, optional
}

// DecodedKeyHash returns the 32-byte SHA-256 pin, or nil if none was set.
func (s SMPServer) DecodedKeyHash() ([]byte, error) {
	if s.KeyHash == "" {
		return nil, nil
	}
	h, err := hex.DecodeString(s.KeyHash)
	if err != nil {
		return nil, fmt.Errorf("config: server %s: %w", s.Host, err)
	}
	if len(h) != 32 {
		return nil, fmt.Errorf("config: server %s: key_hash must be 32 bytes, got %d", s.Host, len(h))
	}
	return h, nil
}

// ClientOptions controls per-connection behavior not fixed by the wire
// protocol itself.
type ClientOptions struct {
	// QueueSize is msgQ's capacity.
	QueueSize int `toml:"queue_size"`
	// WriteTimeout is loaded from the file and defaulted by
	// DefaultClientOptions. No code in this module applies it: transport
	// writes are bounded only by the context their caller passes in.
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// DefaultClientOptions provides sane zero-config defaults for a first
// connection.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		QueueSize:    256,
		WriteTimeout: 30 * time.Second,
	}
}

// Config is the top-level TOML document.
type Config struct {
	Servers []SMPServer   `toml:"servers"`
	Client  ClientOptions `toml:"client"`
}

// Load parses a TOML config document from path.
func Load(path string) (*Config, error) {
	var c Config
	c.Client = DefaultClientOptions()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return &c, nil
}

