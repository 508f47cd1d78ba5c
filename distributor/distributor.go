// Package distributor mints weekly compounding yield to registered holders.
//
// A distribution (sweep) visits every registered holder in registration
// order, reads the holder's current balance and mints
// floor(balance * rate / 10000) to it. The whole sweep runs inside one
// ledger transaction: either every holder is credited or none is.
// Compounding across weeks follows from each sweep reading the balances
// the previous sweep produced.
//
// Triggering a sweep is permissionless once it is due; changing the rate
// and pausing are owner only.
package distributor

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/event"
	"github.com/bitfsorg/libyield-go/governance"
	"github.com/bitfsorg/libyield-go/ledger"
	"github.com/bitfsorg/libyield-go/registry"
)

const (
	// Interval is the minimum time between two sweeps.
	Interval = 7 * 24 * time.Hour

	// MaxWeeklyRateBps caps the weekly rate at 10%.
	MaxWeeklyRateBps uint32 = 1000

	// BpsDenominator is 100% in basis points.
	BpsDenominator = 10000
)

var bpsDenominator = uint256.NewInt(BpsDenominator)

// Config wires a Distributor to its collaborators.
type Config struct {
	// Self is the account the distributor mints as. It must be an
	// authorised minter on Ledger.
	Self       account.Address
	Ledger     ledger.Transactor
	Registry   *registry.Registry
	Governance *governance.Governance
	Clock      clock.Clock
	Events     event.Sink
	Log        logrus.FieldLogger
}

// Result describes a completed sweep.
type Result struct {
	TotalDistributed *uint256.Int
	HoldersCount     int
	Credited         int // holders that received a non-zero amount
	Timestamp        time.Time
}

// Distributor owns the distribution cadence.
type Distributor struct {
	mu       sync.Mutex
	self     account.Address
	ledger   ledger.Transactor
	registry *registry.Registry
	gov      *governance.Governance
	clock    clock.Clock
	events   event.Sink
	log      logrus.FieldLogger

	lastDistribution time.Time
}

// New creates a Distributor. The cadence starts at construction time, so
// the first sweep is due one Interval later.
func New(cfg Config) (*Distributor, error) {
	if cfg.Ledger == nil || cfg.Registry == nil || cfg.Governance == nil {
		return nil, fmt.Errorf("%w: ledger, registry and governance are required", ErrNilParam)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Events == nil {
		cfg.Events = event.Discard
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &Distributor{
		self:             cfg.Self,
		ledger:           cfg.Ledger,
		registry:         cfg.Registry,
		gov:              cfg.Governance,
		clock:            cfg.Clock,
		events:           cfg.Events,
		log:              cfg.Log.WithField("component", "distributor"),
		lastDistribution: cfg.Clock.Now(),
	}, nil
}

// CalculateYield returns floor(balance * rate / 10000) for the current
// weekly rate.
func (d *Distributor) CalculateYield(balance *uint256.Int) (*uint256.Int, error) {
	return CalculateYield(balance, d.gov.WeeklyRateBps())
}

// CalculateYield returns floor(balance * rateBps / 10000). The product is
// formed in 512 bits; a quotient that does not fit in 256 bits, possible
// only for rates above 100%, returns ErrYieldOverflow.
func CalculateYield(balance *uint256.Int, rateBps uint32) (*uint256.Int, error) {
	if balance == nil {
		return new(uint256.Int), nil
	}
	z, overflow := new(uint256.Int).MulDivOverflow(balance, uint256.NewInt(uint64(rateBps)), bpsDenominator)
	if overflow {
		return nil, fmt.Errorf("%w: %s at %d bps", ErrYieldOverflow, balance.Dec(), rateBps)
	}
	return z, nil
}

// CanDistribute reports whether a sweep is currently permitted.
func (d *Distributor) CanDistribute() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canDistribute(d.clock.Now())
}

func (d *Distributor) canDistribute(now time.Time) bool {
	return !d.gov.Paused() && !now.Before(d.lastDistribution.Add(Interval))
}

// LastDistributionTime returns the time of the last successful sweep, or
// the construction time if none ran yet.
func (d *Distributor) LastDistributionTime() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastDistribution
}

// NextDistributionTime returns the earliest time the next sweep may run,
// ignoring the pause flag.
func (d *Distributor) NextDistributionTime() time.Time {
	return d.LastDistributionTime().Add(Interval)
}

// Restore sets the last distribution time from persisted state.
func (d *Distributor) Restore(last time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastDistribution = last
}

// DistributeYield runs one sweep. Any caller may trigger it once due.
// On any ledger failure nothing is minted and the cadence is unchanged,
// so the call can simply be repeated after the cause is fixed.
func (d *Distributor) DistributeYield(caller account.Address) (*Result, error) {
	return d.distribute(caller, d.ledger.Update)
}

// DistributeYieldTx runs one sweep against tx, a transactional view the
// caller commits. If DistributeYieldTx fails the caller must discard tx.
// If it succeeds but the caller cannot commit tx, the caller must Restore
// the previous LastDistributionTime.
func (d *Distributor) DistributeYieldTx(caller account.Address, tx ledger.Ledger) (*Result, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: tx", ErrNilParam)
	}
	return d.distribute(caller, func(fn func(ledger.Ledger) error) error { return fn(tx) })
}

func (d *Distributor) distribute(caller account.Address, update func(func(ledger.Ledger) error) error) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if !d.canDistribute(now) {
		return nil, fmt.Errorf("%w: paused=%t, next at %s",
			ErrNotDue, d.gov.Paused(), d.lastDistribution.Add(Interval).UTC().Format(time.RFC3339))
	}

	holders := d.registry.Holders()
	rate := d.gov.WeeklyRateBps()
	res := &Result{
		TotalDistributed: new(uint256.Int),
		HoldersCount:     len(holders),
		Timestamp:        now,
	}

	err := update(func(tx ledger.Ledger) error {
		total := new(uint256.Int)
		credited := 0
		for i, h := range holders {
			bal, err := tx.BalanceOf(h)
			if err != nil {
				return fmt.Errorf("%w: holder %d (%s): balance: %w", ErrSweepFailed, i, h, err)
			}
			amount, err := CalculateYield(bal, rate)
			if err != nil {
				return fmt.Errorf("%w: holder %d (%s): %w", ErrSweepFailed, i, h, err)
			}
			if amount.IsZero() {
				continue
			}
			if err := tx.Mint(d.self, h, amount); err != nil {
				return fmt.Errorf("%w: holder %d (%s): mint: %w", ErrSweepFailed, i, h, err)
			}
			total.Add(total, amount)
			credited++
		}
		res.TotalDistributed = total
		res.Credited = credited
		return nil
	})
	if err != nil {
		d.log.WithError(err).WithField("caller", caller.String()).Warn("yield sweep rolled back")
		return nil, err
	}

	d.lastDistribution = now
	d.log.WithFields(logrus.Fields{
		"caller":   caller.String(),
		"total":    res.TotalDistributed.Dec(),
		"holders":  res.HoldersCount,
		"credited": res.Credited,
		"rate_bps": rate,
	}).Info("yield distributed")

	d.emit(&event.YieldDistributed{
		TotalDistributed: res.TotalDistributed.Clone(),
		HoldersCount:     uint64(res.HoldersCount),
		Timestamp:        now,
	})
	return res, nil
}

// PauseDistribution stops sweeps until resumed. Owner only; pausing an
// already paused distributor is not an error.
func (d *Distributor) PauseDistribution(caller account.Address) error {
	return d.setPaused(caller, true)
}

// ResumeDistribution re-enables sweeps. Owner only.
func (d *Distributor) ResumeDistribution(caller account.Address) error {
	return d.setPaused(caller, false)
}

func (d *Distributor) setPaused(caller account.Address, paused bool) error {
	if err := d.gov.RequireOwner(caller); err != nil {
		return err
	}
	d.gov.SetPaused(paused)
	d.emit(&event.DistributionPauseChanged{Paused: paused, At: d.clock.Now()})
	return nil
}

// SetWeeklyYieldRate changes the weekly rate. Owner only.
func (d *Distributor) SetWeeklyYieldRate(caller account.Address, bps uint32) error {
	if err := d.gov.RequireOwner(caller); err != nil {
		return err
	}
	if bps > MaxWeeklyRateBps {
		return fmt.Errorf("%w: %d", ErrRateTooHigh, bps)
	}
	old := d.gov.SetWeeklyRateBps(bps)
	d.emit(&event.YieldRateUpdated{OldRateBps: old, NewRateBps: bps, At: d.clock.Now()})
	return nil
}

// emit delivers ev; the state change is already committed, so a failing
// sink is only logged.
func (d *Distributor) emit(ev event.Event) {
	if err := d.events.Emit(ev); err != nil {
		d.log.WithError(err).WithField("event", string(ev.Kind())).Warn("event sink failed")
	}
}
