package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/config"
	"github.com/bitfsorg/libyield-go/engine"
	"github.com/bitfsorg/libyield-go/logging"
	"github.com/bitfsorg/libyield-go/units"
)

// app carries the global flags and the loaded configuration.
type app struct {
	dataDir string
	as      string
	raw     bool

	cfg    config.Config
	log    *logrus.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "yieldctl",
		Short: "Operate a weekly yield distributor and its conversion queue.",
		Long: `yieldctl manages a local ledger, a registry of yield holders, the weekly ` +
			`compounding distribution and time-locked conversion requests. State lives ` +
			`in a bbolt database inside the data directory.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.dataDir, "datadir", config.DefaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&a.as, "as", "", "account to act as (defaults to the configured owner)")
	root.PersistentFlags().BoolVar(&a.raw, "raw", false, "read and print amounts in base units")

	root.AddCommand(
		newInitCmd(a),
		newStatusCmd(a),
		newMintCmd(a),
		newMinterCmd(a),
		newTransferCmd(a),
		newBalanceCmd(a),
		newRegisterCmd(a),
		newHoldersCmd(a),
		newDistributeCmd(a),
		newPauseCmd(a, true),
		newPauseCmd(a, false),
		newLedgerCmd(a),
		newRateCmd(a),
		newConvertCmd(a),
		newJournalCmd(a),
		newRunCmd(a),
	)
	return root
}

// loadConfig reads the config file of the data directory. A missing file
// yields the defaults.
func (a *app) loadConfig() error {
	cfg, err := config.LoadConfig(config.ConfigPath(a.dataDir))
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	cfg.DataDir = a.dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return a.setupLogging()
}

func (a *app) setupLogging() error {
	log, closer, err := logging.New(a.cfg)
	if err != nil {
		return err
	}
	a.log, a.closer = log, closer
	return nil
}

// open loads the configuration and opens the engine.
func (a *app) open() (*engine.Engine, error) {
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	var owner account.Address
	if a.cfg.Owner != "" {
		var err error
		if owner, err = account.Parse(a.cfg.Owner); err != nil {
			a.close()
			return nil, err
		}
	}
	e, err := engine.Open(engine.Options{
		Path:  config.DatabasePath(a.dataDir),
		Owner: owner,
		Log:   a.log,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return e, nil
}

// withEngine opens the engine, runs fn and closes everything.
func (a *app) withEngine(fn func(e *engine.Engine) error) error {
	e, err := a.open()
	if err != nil {
		return err
	}
	defer a.close()
	defer e.Close()
	return fn(e)
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
		a.closer = nil
	}
}

// caller resolves --as, falling back to the engine owner.
func (a *app) caller(e *engine.Engine) (account.Address, error) {
	if a.as == "" {
		return e.Owner(), nil
	}
	return account.Parse(a.as)
}

func (a *app) parseAmount(s string) (*uint256.Int, error) {
	if a.raw {
		return units.ParseBaseUnits(s)
	}
	return units.ParseAmount(s, units.Decimals)
}

func (a *app) formatAmount(v *uint256.Int) string {
	if a.raw {
		if v == nil {
			return "0"
		}
		return v.Dec()
	}
	return units.FormatAmount(v, units.Decimals)
}

func (a *app) formatAddr(addr account.Address) string {
	s, err := addr.Encode(a.cfg.Mainnet())
	if err != nil {
		return addr.String()
	}
	return s
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
