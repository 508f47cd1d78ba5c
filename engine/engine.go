// Package engine is the shared business logic layer. The yieldctl
// commands and the keeper loop call Engine methods; the engine applies
// them to the yield and conversion components and persists the result.
//
// Ledger balances live in ledger.BoltLedger buckets of the same database.
// Everything else (governance, holders, distribution time, conversion
// requests, journal) is kept in memory and saved after every successful
// mutation. A yield sweep mints and saves the new state in one bbolt
// transaction, so a failed save also rolls back the mints. If a save fails
// the in-memory state is reloaded from the database and ErrPersist
// returned.
package engine

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/conversion"
	"github.com/bitfsorg/libyield-go/distributor"
	"github.com/bitfsorg/libyield-go/event"
	"github.com/bitfsorg/libyield-go/governance"
	"github.com/bitfsorg/libyield-go/ledger"
	"github.com/bitfsorg/libyield-go/metrics"
	"github.com/bitfsorg/libyield-go/registry"
	"github.com/bitfsorg/libyield-go/store"
)

// Options configures Init and Open.
type Options struct {
	// Path is the database file.
	Path string

	// Owner administers the ledger and the distributor. Required by
	// Init; when set on Open it must match the stored owner.
	Owner account.Address

	// Distributor is the minter identity used for sweeps. Init defaults
	// it to Owner.
	Distributor account.Address

	// WeeklyRateBps is the initial rate for Init. Zero selects the default.
	WeeklyRateBps uint32

	// MaxHolders is the registry capacity for Init. Zero selects the default.
	MaxHolders int

	Clock clock.Clock
	Log   logrus.FieldLogger
}

// stateStore is the persistence surface of store.BoltStore the engine uses.
type stateStore interface {
	DB() *bbolt.DB
	Commit(st *store.State, records []*event.Record) error
	CommitTx(tx *bbolt.Tx, st *store.State, records []*event.Record) error
	LoadState() (*store.State, error)
	LoadJournal() ([]*event.Record, error)
	Close() error
}

// Engine owns one database and the components built on it.
type Engine struct {
	mu     sync.Mutex
	closed bool

	store   stateStore
	ledger  *ledger.BoltLedger
	gov     *governance.Governance
	reg     *registry.Registry
	dist    *distributor.Distributor
	book    *conversion.Book
	journal *event.Journal
	metrics *metrics.Collector
	events  event.Sink

	self      account.Address
	clock     clock.Clock
	log       logrus.FieldLogger
	persisted uint64 // journal records already in the store
}

// Init creates a new engine database at opts.Path.
func Init(opts Options) (*Engine, error) {
	if opts.Owner.IsZero() {
		return nil, fmt.Errorf("engine: %w", governance.ErrZeroOwner)
	}
	if opts.Distributor.IsZero() {
		opts.Distributor = opts.Owner
	}
	if opts.WeeklyRateBps == 0 {
		opts.WeeklyRateBps = governance.DefaultWeeklyRateBps
	}
	if opts.WeeklyRateBps > distributor.MaxWeeklyRateBps {
		return nil, fmt.Errorf("engine: %w: %d", distributor.ErrRateTooHigh, opts.WeeklyRateBps)
	}
	if opts.MaxHolders <= 0 {
		opts.MaxHolders = registry.DefaultCapacity
	}

	st, err := store.Open(opts.Path)
	if err != nil {
		return nil, err
	}
	ok, err := st.Initialized()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if ok {
		_ = st.Close()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, opts.Path)
	}

	clk := defaultClock(opts.Clock)
	e, err := build(st, opts, &store.State{
		Owner:            opts.Owner,
		Distributor:      opts.Distributor,
		WeeklyRateBps:    opts.WeeklyRateBps,
		LastDistribution: clk.Now(),
		MaxHolders:       uint32(opts.MaxHolders),
	}, nil)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if opts.Distributor != opts.Owner {
		if err := e.ledger.AddMinter(opts.Owner, opts.Distributor); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	if err := e.store.Commit(e.snapshot(), nil); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	e.log.WithFields(logrus.Fields{
		"owner":       opts.Owner.String(),
		"distributor": opts.Distributor.String(),
		"rate_bps":    opts.WeeklyRateBps,
	}).Info("engine initialized")
	return e, nil
}

// Open loads an existing engine database.
func Open(opts Options) (*Engine, error) {
	st, err := store.Open(opts.Path)
	if err != nil {
		return nil, err
	}
	state, err := st.LoadState()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if !opts.Owner.IsZero() && opts.Owner != state.Owner {
		_ = st.Close()
		return nil, fmt.Errorf("%w: stored %s", ErrOwnerMismatch, state.Owner)
	}
	records, err := st.LoadJournal()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	e, err := build(st, opts, state, records)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return e, nil
}

func defaultClock(c clock.Clock) clock.Clock {
	if c == nil {
		return clock.New()
	}
	return c
}

// build wires the components and restores state into them.
func build(st stateStore, opts Options, state *store.State, records []*event.Record) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	clk := defaultClock(opts.Clock)

	l, err := ledger.NewBoltLedger(st.DB(), state.Owner)
	if err != nil {
		return nil, err
	}
	gov, err := governance.New(state.Owner)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:   st,
		ledger:  l,
		gov:     gov,
		reg:     registry.New(int(state.MaxHolders)),
		journal: event.NewJournal(clk),
		metrics: metrics.New(log),
		self:    state.Distributor,
		clock:   clk,
		log:     log.WithField("component", "engine"),
	}
	e.events = event.Fanout{e.journal, event.LogSink{Log: log}, e.metrics}

	e.dist, err = distributor.New(distributor.Config{
		Self:       state.Distributor,
		Ledger:     l,
		Registry:   e.reg,
		Governance: gov,
		Clock:      clk,
		Events:     e.events,
		Log:        log,
	})
	if err != nil {
		return nil, err
	}
	e.book, err = conversion.New(conversion.Config{
		Ledger:     l,
		Governance: gov,
		Clock:      clk,
		Events:     e.events,
		Log:        log,
	})
	if err != nil {
		return nil, err
	}

	if err := e.restore(state, records); err != nil {
		return nil, err
	}
	return e, nil
}

// restore loads persisted state into the components.
func (e *Engine) restore(state *store.State, records []*event.Record) error {
	if state.WeeklyRateBps > distributor.MaxWeeklyRateBps {
		return fmt.Errorf("engine: stored rate: %w: %d", distributor.ErrRateTooHigh, state.WeeklyRateBps)
	}
	e.gov.SetWeeklyRateBps(state.WeeklyRateBps)
	e.gov.SetPaused(state.Paused)
	if err := e.reg.Restore(state.Holders); err != nil {
		return err
	}
	e.dist.Restore(state.LastDistribution)
	if err := e.book.Restore(state.Requests); err != nil {
		return err
	}
	if err := e.journal.Restore(records); err != nil {
		return err
	}
	e.persisted = uint64(len(records))
	e.metrics.SetGovernance(state.WeeklyRateBps, state.Paused)
	return nil
}

// snapshot captures the current in-memory state.
func (e *Engine) snapshot() *store.State {
	return &store.State{
		Owner:            e.gov.Owner(),
		Distributor:      e.self,
		WeeklyRateBps:    e.gov.WeeklyRateBps(),
		Paused:           e.gov.Paused(),
		LastDistribution: e.dist.LastDistributionTime(),
		MaxHolders:       uint32(e.reg.Capacity()),
		Holders:          e.reg.Holders(),
		Requests:         e.book.Requests(),
	}
}

// commit saves the state and any unsaved journal records.
func (e *Engine) commit() error {
	return e.commitWith(nil)
}

// commitWith runs apply and the state save in one bbolt transaction. An
// error from apply rolls the transaction back and is returned as is; apply
// must leave the in-memory state unchanged when it fails. A failed save
// reloads the components from the database.
func (e *Engine) commitWith(apply func(tx *bbolt.Tx) error) error {
	var (
		records []*event.Record
		applied bool
	)
	err := e.store.DB().Update(func(tx *bbolt.Tx) error {
		if apply != nil {
			if err := apply(tx); err != nil {
				return err
			}
		}
		applied = true
		records = e.journal.Since(e.persisted, 0)
		return e.store.CommitTx(tx, e.snapshot(), records)
	})
	if err == nil {
		e.persisted += uint64(len(records))
		return nil
	}
	if !applied {
		return err
	}

	e.log.WithError(err).Error("persist failed, reloading state")
	if rerr := e.reload(); rerr != nil {
		e.log.WithError(rerr).Error("reload failed")
		return fmt.Errorf("%w: %w (reload: %w)", ErrPersist, err, rerr)
	}
	return fmt.Errorf("%w: %w", ErrPersist, err)
}

// reload re-reads the stored state into the components.
func (e *Engine) reload() error {
	state, err := e.store.LoadState()
	if err != nil {
		return err
	}
	records, err := e.store.LoadJournal()
	if err != nil {
		return err
	}
	return e.restore(state, records)
}

// lock serialises engine calls and rejects use after Close. The caller
// must defer e.mu.Unlock() when it returns nil.
func (e *Engine) lock() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// Close closes the database.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.store.Close()
}
