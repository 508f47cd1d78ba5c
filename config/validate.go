// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/bitfsorg/libyield-go/account"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// maxWeeklyRateBps mirrors the distributor's rate cap.
const maxWeeklyRateBps = 1000

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
// Owner and Distributor may be empty; when set they must parse.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.Owner != "" {
		if _, err := account.Parse(cfg.Owner); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOwner, err)
		}
	}
	if cfg.Distributor != "" {
		if _, err := account.Parse(cfg.Distributor); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDistributor, err)
		}
	}

	if cfg.WeeklyRateBps > maxWeeklyRateBps {
		return fmt.Errorf("%w: %d", ErrInvalidWeeklyRate, cfg.WeeklyRateBps)
	}
	if cfg.MaxHolders <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxHolders, cfg.MaxHolders)
	}

	return nil
}

// Mainnet reports whether addresses should be rendered for mainnet.
func (c Config) Mainnet() bool {
	return c.Network == "mainnet"
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
