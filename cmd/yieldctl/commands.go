package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/config"
	"github.com/bitfsorg/libyield-go/engine"
	"github.com/bitfsorg/libyield-go/units"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		owner, distributor, network string
		rate                        uint32
		maxHolders                  int
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory, config file and database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			cfg.DataDir = a.dataDir
			cfg.Network = network
			cfg.Owner = owner
			cfg.Distributor = distributor
			cfg.WeeklyRateBps = rate
			cfg.MaxHolders = maxHolders
			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			a.cfg = cfg
			if err := a.setupLogging(); err != nil {
				return err
			}
			defer a.close()

			ownerAddr, err := account.Parse(owner)
			if err != nil {
				return err
			}
			var distAddr account.Address
			if distributor != "" {
				if distAddr, err = account.Parse(distributor); err != nil {
					return err
				}
			}

			e, err := engine.Init(engine.Options{
				Path:          config.DatabasePath(a.dataDir),
				Owner:         ownerAddr,
				Distributor:   distAddr,
				WeeklyRateBps: rate,
				MaxHolders:    maxHolders,
				Log:           a.log,
			})
			if err != nil {
				return err
			}
			defer e.Close()

			if err := config.SaveConfig(config.ConfigPath(a.dataDir), cfg); err != nil {
				return err
			}
			printf(cmd, "initialized %s\n", a.dataDir)
			printf(cmd, "owner:       %s\n", a.formatAddr(e.Owner()))
			printf(cmd, "distributor: %s\n", a.formatAddr(e.Distributor()))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "administrator account")
	cmd.Flags().StringVar(&distributor, "distributor", "", "minter account for sweeps (defaults to owner)")
	cmd.Flags().StringVar(&network, "network", "mainnet", "address network: mainnet, testnet or regtest")
	cmd.Flags().Uint32Var(&rate, "rate", 220, "initial weekly rate in basis points")
	cmd.Flags().IntVar(&maxHolders, "max-holders", 10000, "holder registry capacity")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show distribution and ledger status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				st, err := e.Status()
				if err != nil {
					return err
				}
				printf(cmd, "owner:             %s\n", a.formatAddr(st.Owner))
				printf(cmd, "distributor:       %s\n", a.formatAddr(st.Distributor))
				printf(cmd, "weekly rate:       %s (%d bps, APY %s)\n",
					units.FormatBps(st.WeeklyRateBps), st.WeeklyRateBps, units.FormatAPY(st.WeeklyRateBps))
				printf(cmd, "paused:            %t\n", st.Paused)
				printf(cmd, "ledger paused:     %t\n", st.LedgerPaused)
				printf(cmd, "total supply:      %s\n", a.formatAmount(st.TotalSupply))
				printf(cmd, "holders:           %d / %d\n", st.Holders, st.MaxHolders)
				printf(cmd, "last distribution: %s\n", st.LastDistribution.UTC().Format(time.RFC3339))
				printf(cmd, "next distribution: %s\n", st.NextDistribution.UTC().Format(time.RFC3339))
				printf(cmd, "can distribute:    %t\n", st.CanDistribute)
				printf(cmd, "requests:          %d\n", st.TotalRequests)
				printf(cmd, "journal:           %d records, head %s\n", st.JournalLength, hex.EncodeToString(st.JournalHead[:]))
				return nil
			})
		},
	}
}

func newMintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mint <to> <amount>",
		Short: "Mint to an account (owner or minter)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := account.Parse(args[0])
			if err != nil {
				return err
			}
			amount, err := a.parseAmount(args[1])
			if err != nil {
				return err
			}
			return a.withEngine(func(e *engine.Engine) error {
				caller, err := a.caller(e)
				if err != nil {
					return err
				}
				if err := e.Mint(caller, to, amount); err != nil {
					return err
				}
				printf(cmd, "minted %s to %s\n", a.formatAmount(amount), a.formatAddr(to))
				return nil
			})
		},
	}
}

func newMinterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "minter <account>",
		Short: "Authorise an additional minter (owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minter, err := account.Parse(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(e *engine.Engine) error {
				caller, err := a.caller(e)
				if err != nil {
					return err
				}
				if err := e.AddMinter(caller, minter); err != nil {
					return err
				}
				printf(cmd, "minter added: %s\n", a.formatAddr(minter))
				return nil
			})
		},
	}
}

func newTransferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer from --as to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := account.Parse(args[0])
			if err != nil {
				return err
			}
			amount, err := a.parseAmount(args[1])
			if err != nil {
				return err
			}
			return a.withEngine(func(e *engine.Engine) error {
				from, err := a.caller(e)
				if err != nil {
					return err
				}
				if err := e.Transfer(from, to, amount); err != nil {
					return err
				}
				printf(cmd, "transferred %s to %s\n", a.formatAmount(amount), a.formatAddr(to))
				return nil
			})
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Show balance, locked and available amounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				who, err := a.caller(e)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					if who, err = account.Parse(args[0]); err != nil {
						return err
					}
				}
				bal, err := e.BalanceOf(who)
				if err != nil {
					return err
				}
				avail, err := e.AvailableBalance(who)
				if err != nil {
					return err
				}
				next, err := e.CalculateYield(bal)
				if err != nil {
					return err
				}
				printf(cmd, "account:   %s\n", a.formatAddr(who))
				printf(cmd, "balance:   %s\n", a.formatAmount(bal))
				printf(cmd, "locked:    %s\n", a.formatAmount(e.LockedBalance(who)))
				printf(cmd, "available: %s\n", a.formatAmount(avail))
				printf(cmd, "next yield: %s\n", a.formatAmount(next))
				return nil
			})
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register [account...]",
		Short: "Register holders for yield (defaults to --as)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				var accounts []account.Address
				for _, s := range args {
					addr, err := account.Parse(s)
					if err != nil {
						return err
					}
					accounts = append(accounts, addr)
				}
				if len(accounts) == 0 {
					self, err := a.caller(e)
					if err != nil {
						return err
					}
					accounts = append(accounts, self)
				}
				added, err := e.Register(accounts...)
				if err != nil {
					return err
				}
				printf(cmd, "registered %d of %d\n", len(added), len(accounts))
				for _, addr := range added {
					printf(cmd, "  %s\n", a.formatAddr(addr))
				}
				return nil
			})
		},
	}
}

func newHoldersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "holders [index]",
		Short: "List registered holders, or show the holder at index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				if len(args) == 1 {
					i, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid index %q", args[0])
					}
					h, err := e.Holder(i)
					if err != nil {
						return err
					}
					printf(cmd, "%s\n", a.formatAddr(h))
					return nil
				}
				for i, h := range e.Holders() {
					bal, err := e.BalanceOf(h)
					if err != nil {
						return err
					}
					printf(cmd, "%5d  %s  %s\n", i, a.formatAddr(h), a.formatAmount(bal))
				}
				return nil
			})
		},
	}
}

func newDistributeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute",
		Short: "Run the weekly yield sweep if it is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				caller, err := a.caller(e)
				if err != nil {
					return err
				}
				before, err := e.Status()
				if err != nil {
					return err
				}
				res, err := e.Distribute(caller)
				if err != nil {
					return err
				}
				after, err := e.Status()
				if err != nil {
					return err
				}
				printf(cmd, "distributed %s to %d holders (%d credited)\n",
					a.formatAmount(res.TotalDistributed), res.HoldersCount, res.Credited)
				printf(cmd, "total supply: %s -> %s\n", a.formatAmount(before.TotalSupply), a.formatAmount(after.TotalSupply))
				printf(cmd, "next distribution: %s\n", after.NextDistribution.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newPauseCmd(a *app, pause bool) *cobra.Command {
	use, short := "resume", "Resume yield distribution (owner)"
	if pause {
		use, short = "pause", "Pause yield distribution (owner)"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				caller, err := a.caller(e)
				if err != nil {
					return err
				}
				if pause {
					err = e.PauseDistribution(caller)
				} else {
					err = e.ResumeDistribution(caller)
				}
				if err != nil {
					return err
				}
				printf(cmd, "distribution %sd\n", use)
				return nil
			})
		},
	}
}

func newLedgerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage the token ledger",
	}
	cmd.AddCommand(
		newLedgerPauseCmd(a, "pause", "Suspend ledger transfers (owner)", (*engine.Engine).PauseLedger),
		newLedgerPauseCmd(a, "unpause", "Resume ledger transfers (owner)", (*engine.Engine).UnpauseLedger),
	)
	return cmd
}

func newLedgerPauseCmd(a *app, use, short string, fn func(*engine.Engine, account.Address) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				caller, err := a.caller(e)
				if err != nil {
					return err
				}
				if err := fn(e, caller); err != nil {
					return err
				}
				printf(cmd, "ledger %sd\n", use)
				return nil
			})
		},
	}
}

func newRateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate [bps]",
		Short: "Show or set the weekly yield rate in basis points (owner)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				if len(args) == 1 {
					bps, err := strconv.ParseUint(args[0], 10, 32)
					if err != nil {
						return fmt.Errorf("invalid rate %q", args[0])
					}
					caller, err := a.caller(e)
					if err != nil {
						return err
					}
					if err := e.SetWeeklyYieldRate(caller, uint32(bps)); err != nil {
						return err
					}
				}
				st, err := e.Status()
				if err != nil {
					return err
				}
				printf(cmd, "weekly rate: %s (%d bps), APY %s\n",
					units.FormatBps(st.WeeklyRateBps), st.WeeklyRateBps, units.FormatAPY(st.WeeklyRateBps))
				return nil
			})
		},
	}
}
