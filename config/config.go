// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Clock sources for distribution timestamps.
const (
	ClockWall  = "wall"  // unix seconds
	ClockChain = "chain" // best block height from the configured node
)

// Config holds the revenue ledger settings stored in <datadir>/config.
type Config struct {
	DataDir     string // ledger database and ownership table location
	Network     string // mainnet, testnet, or regtest
	Owner       string // identity allowed to record and distribute revenue
	Clock       string // ClockWall or ClockChain
	RPCURL      string // node JSON-RPC endpoint for the chain clock
	RPCUser     string
	RPCPassword string
	LogLevel    string // debug, info, warn, or error
	LogFile     string // empty logs to stderr
}

// DefaultDataDir returns ~/.revledger, falling back to ./.revledger when
// the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".revledger"
	}
	return filepath.Join(home, ".revledger")
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		Network:  "mainnet",
		Clock:    ClockWall,
		LogLevel: "info",
	}
}

// ConfigPath returns the config file path within a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// LedgerPath returns the ledger database path within a data directory.
func LedgerPath(dataDir string) string {
	return filepath.Join(dataDir, "ledger.db")
}

// OwnershipPath returns the ownership table path within a data directory.
func OwnershipPath(dataDir string) string {
	return filepath.Join(dataDir, "ownership.yaml")
}

// LoadConfig reads a key = value config file. Unset keys keep their
// defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		cfg.set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "owner":
		c.Owner = value
	case "clock":
		c.Clock = value
	case "rpcurl":
		c.RPCURL = value
	case "rpcuser":
		c.RPCUser = value
	case "rpcpass":
		c.RPCPassword = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	}
}

// SaveConfig writes cfg to path, creating parent directories as needed.
// The file is written with 0600 permissions since it may hold RPC credentials.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Revenue Ledger Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "owner = %s\n", cfg.Owner)
	fmt.Fprintf(&b, "clock = %s\n", cfg.Clock)
	fmt.Fprintf(&b, "rpcurl = %s\n", cfg.RPCURL)
	fmt.Fprintf(&b, "rpcuser = %s\n", cfg.RPCUser)
	fmt.Fprintf(&b, "rpcpass = %s\n", cfg.RPCPassword)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// IsMainnet reports whether the configured network is mainnet.
func (c Config) IsMainnet() bool {
	return c.Network == "mainnet"
}
