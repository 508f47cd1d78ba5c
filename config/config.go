// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the yieldctl configuration file.
//
// The file is a list of "key = value" lines. Blank lines and lines
// starting with '#' are ignored, as are unknown keys.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the node configuration.
type Config struct {
	DataDir    string // directory holding the database and config file
	ListenAddr string // metrics endpoint for the run command
	Network    string // "mainnet", "testnet" or "regtest"; selects address encoding
	LogLevel   string
	LogFile    string // empty logs to stderr

	Owner         string // administrator account
	Distributor   string // minter identity used for yield sweeps
	WeeklyRateBps uint32 // initial weekly rate, only used by init
	MaxHolders    int
}

const (
	defaultWeeklyRateBps = 220
	defaultMaxHolders    = 10000
)

// DefaultDataDir returns ~/.yield, or ./.yield if the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".yield"
	}
	return filepath.Join(home, ".yield")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		ListenAddr:    "127.0.0.1:9464",
		Network:       "mainnet",
		LogLevel:      "info",
		WeeklyRateBps: defaultWeeklyRateBps,
		MaxHolders:    defaultMaxHolders,
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// DatabasePath returns the database file location inside dataDir.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "yield.db")
}

// LoadConfig reads path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

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
		if err := apply(&cfg, key, value); err != nil {
			return cfg, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read: %w", err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	k, v, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key := strings.ToLower(strings.TrimSpace(k))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(v), nil
}

func apply(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "listen":
		cfg.ListenAddr = value
	case "network":
		cfg.Network = value
	case "loglevel":
		cfg.LogLevel = value
	case "logfile":
		cfg.LogFile = value
	case "owner":
		cfg.Owner = value
	case "distributor":
		cfg.Distributor = value
	case "weekly_rate_bps":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidWeeklyRate, value)
		}
		cfg.WeeklyRateBps = uint32(n)
	case "max_holders":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidMaxHolders, value)
		}
		cfg.MaxHolders = n
	}
	return nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Yield Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "listen = %s\n", cfg.ListenAddr)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Accounts\n")
	fmt.Fprintf(&b, "owner = %s\n", cfg.Owner)
	fmt.Fprintf(&b, "distributor = %s\n", cfg.Distributor)
	b.WriteString("\n# Distribution\n")
	fmt.Fprintf(&b, "weekly_rate_bps = %d\n", cfg.WeeklyRateBps)
	fmt.Fprintf(&b, "max_holders = %d\n", cfg.MaxHolders)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}
