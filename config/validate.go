// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
// The owner is not checked here; see ValidateLedgerConfig.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	switch cfg.Clock {
	case ClockWall:
	case ClockChain:
		if cfg.RPCURL == "" && cfg.Network == "mainnet" {
			return ErrMissingRPCURL
		}
	default:
		return ErrInvalidClock
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// ValidateLedgerConfig is ValidateConfig plus the settings needed to open
// a ledger.
func ValidateLedgerConfig(cfg Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Owner) == "" {
		return ErrEmptyOwner
	}
	return nil
}
