// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidListenAddr indicates the listen address is malformed.
	ErrInvalidListenAddr = errors.New("config: invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidOwner indicates the owner is not a valid account address.
	ErrInvalidOwner = errors.New("config: invalid owner address")

	// ErrInvalidDistributor indicates the distributor is not a valid account address.
	ErrInvalidDistributor = errors.New("config: invalid distributor address")

	// ErrInvalidWeeklyRate indicates a weekly rate outside 0..1000 bps.
	ErrInvalidWeeklyRate = errors.New("config: invalid weekly rate (must be 0..1000 bps)")

	// ErrInvalidMaxHolders indicates a non-positive holder capacity.
	ErrInvalidMaxHolders = errors.New("config: max holders must be positive")
)
