package engine

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/conversion"
	"github.com/bitfsorg/libyield-go/event"
)

// Status summarises the engine for operators.
type Status struct {
	Owner            account.Address
	Distributor      account.Address
	WeeklyRateBps    uint32
	Paused           bool
	LedgerPaused     bool
	TotalSupply      *uint256.Int
	Holders          int
	MaxHolders       int
	LastDistribution time.Time
	NextDistribution time.Time
	CanDistribute    bool
	TotalRequests    uint64
	JournalLength    int
	JournalHead      [event.HashSize]byte
}

// Status returns the current summary.
func (e *Engine) Status() (*Status, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	supply, err := e.ledger.TotalSupply()
	if err != nil {
		return nil, err
	}
	ledgerPaused, err := e.ledger.IsPaused()
	if err != nil {
		return nil, err
	}
	return &Status{
		Owner:            e.gov.Owner(),
		Distributor:      e.self,
		WeeklyRateBps:    e.gov.WeeklyRateBps(),
		Paused:           e.gov.Paused(),
		LedgerPaused:     ledgerPaused,
		TotalSupply:      supply,
		Holders:          e.reg.Count(),
		MaxHolders:       e.reg.Capacity(),
		LastDistribution: e.dist.LastDistributionTime(),
		NextDistribution: e.dist.NextDistributionTime(),
		CanDistribute:    e.dist.CanDistribute(),
		TotalRequests:    e.book.TotalRequests(),
		JournalLength:    e.journal.Len(),
		JournalHead:      e.journal.Head(),
	}, nil
}

// Distributor returns the minter identity used for sweeps.
func (e *Engine) Distributor() account.Address { return e.self }

// Owner returns the administrator account.
func (e *Engine) Owner() account.Address { return e.gov.Owner() }

// CanDistribute reports whether a sweep is due.
func (e *Engine) CanDistribute() bool { return e.dist.CanDistribute() }

// NextDistributionTime returns when the next sweep becomes due.
func (e *Engine) NextDistributionTime() time.Time { return e.dist.NextDistributionTime() }

// BalanceOf returns the ledger balance of a.
func (e *Engine) BalanceOf(a account.Address) (*uint256.Int, error) {
	return e.ledger.BalanceOf(a)
}

// AvailableBalance returns the balance of a not locked by conversions.
func (e *Engine) AvailableBalance(a account.Address) (*uint256.Int, error) {
	return e.book.AvailableBalance(a)
}

// LockedBalance returns the balance of a locked by conversions.
func (e *Engine) LockedBalance(a account.Address) *uint256.Int {
	return e.book.LockedBalance(a)
}

// CalculateYield returns the next sweep's yield for balance.
func (e *Engine) CalculateYield(balance *uint256.Int) (*uint256.Int, error) {
	return e.dist.CalculateYield(balance)
}

// Holders returns registered holders in registration order.
func (e *Engine) Holders() []account.Address { return e.reg.Holders() }

// Holder returns the holder at index.
func (e *Engine) Holder(index int) (account.Address, error) { return e.reg.Get(index) }

// Request returns conversion request id.
func (e *Engine) Request(id uint64) (*conversion.Request, error) { return e.book.Get(id) }

// UserRequests returns the request ids of a.
func (e *Engine) UserRequests(a account.Address) []uint64 { return e.book.UserRequests(a) }

// PendingRequests returns a window of non-terminal requests.
func (e *Engine) PendingRequests(offset, limit int) []*conversion.Request {
	return e.book.PendingRequests(offset, limit)
}

// Journal returns up to limit journal records after sequence number after.
func (e *Engine) Journal(after uint64, limit int) []*event.Record {
	return e.journal.Since(after, limit)
}

// VerifyJournal checks the hash chain of the journal.
func (e *Engine) VerifyJournal() error { return e.journal.Verify() }

// Metrics returns the prometheus registry fed by engine events.
func (e *Engine) Metrics() *prometheus.Registry { return e.metrics.Registry() }
