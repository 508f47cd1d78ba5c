// Package conversion tracks time-locked requests to convert part of a
// holder's balance.
//
// A request reserves an amount of the requester's ledger balance without
// moving any funds. The reserved sum per account (its locked balance) is
// subtracted from the ledger balance when checking new requests, so the
// same units cannot be locked twice. Requests move through
//
//	pending -> processing -> completed
//	pending -> completed            (once the lock has expired)
//	pending | processing -> cancelled
//
// and release their reservation when they reach a terminal state.
// Completion is only allowed once LockPeriod has passed since the
// request was made. Every transition except creation is owner only.
package conversion

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/event"
	"github.com/bitfsorg/libyield-go/governance"
	"github.com/bitfsorg/libyield-go/ledger"
)

// LockPeriod is the minimum time between a request and its completion.
const LockPeriod = 14 * 24 * time.Hour

// Config wires a Book to its collaborators.
type Config struct {
	Ledger     ledger.BalanceReader
	Governance *governance.Governance
	Clock      clock.Clock
	Events     event.Sink
	Log        logrus.FieldLogger
}

// Book is the conversion request store and state machine.
type Book struct {
	mu     sync.Mutex
	ledger ledger.BalanceReader
	gov    *governance.Governance
	clock  clock.Clock
	events event.Sink
	log    logrus.FieldLogger

	requests map[uint64]*Request
	byUser   map[account.Address][]uint64
	locked   map[account.Address]*uint256.Int
	nextID   uint64
}

// New creates an empty Book. The first request gets id 1.
func New(cfg Config) (*Book, error) {
	if cfg.Ledger == nil || cfg.Governance == nil {
		return nil, fmt.Errorf("%w: ledger and governance are required", ErrNilParam)
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
	return &Book{
		ledger:   cfg.Ledger,
		gov:      cfg.Governance,
		clock:    cfg.Clock,
		events:   cfg.Events,
		log:      cfg.Log.WithField("component", "conversion"),
		requests: make(map[uint64]*Request),
		byUser:   make(map[account.Address][]uint64),
		locked:   make(map[account.Address]*uint256.Int),
		nextID:   1,
	}, nil
}

// RequestConversion locks amount of the requester's available balance
// and records a pending request. It returns the new request id.
func (b *Book) RequestConversion(requester account.Address, amount *uint256.Int) (uint64, error) {
	if amount == nil || amount.IsZero() {
		return 0, ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	avail, err := b.available(requester)
	if err != nil {
		return 0, err
	}
	if amount.Gt(avail) {
		return 0, fmt.Errorf("%w: requested %s, available %s",
			ErrInsufficientAvailableBalance, amount.Dec(), avail.Dec())
	}

	now := b.clock.Now()
	req := &Request{
		ID:          b.nextID,
		Requester:   requester,
		Amount:      amount.Clone(),
		RequestedAt: now,
		LockedUntil: now.Add(LockPeriod),
		Status:      StatusPending,
	}
	b.nextID++
	b.requests[req.ID] = req
	b.byUser[requester] = append(b.byUser[requester], req.ID)
	b.lock(requester, req.Amount)

	b.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"requester":  requester.String(),
		"amount":     amount.Dec(),
	}).Debug("conversion requested")

	b.emit(&event.ConversionRequested{
		RequestID:   req.ID,
		Requester:   requester,
		Amount:      req.Amount.Clone(),
		RequestedAt: req.RequestedAt,
		LockedUntil: req.LockedUntil,
	})
	return req.ID, nil
}

// MarkAsProcessing moves a pending request to processing. Owner only.
func (b *Book) MarkAsProcessing(caller account.Address, id uint64) error {
	if err := b.gov.RequireOwner(caller); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	req, err := b.get(id)
	if err != nil {
		return err
	}
	if req.Status != StatusPending {
		return fmt.Errorf("%w: request %d is %s", ErrInvalidTransition, id, req.Status)
	}
	b.transition(req, StatusProcessing)
	return nil
}

// CompleteConversion finishes a non-terminal request whose lock has
// expired and releases its reservation. Owner only.
func (b *Book) CompleteConversion(caller account.Address, id uint64) error {
	if err := b.gov.RequireOwner(caller); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	req, err := b.get(id)
	if err != nil {
		return err
	}
	if req.Status.Terminal() {
		return fmt.Errorf("%w: request %d is %s", ErrInvalidTransition, id, req.Status)
	}
	if now := b.clock.Now(); !req.Matured(now) {
		return fmt.Errorf("%w: request %d locked for another %s",
			ErrLockNotExpired, id, req.LockedUntil.Sub(now).Round(time.Second))
	}
	b.unlock(req.Requester, req.Amount)
	b.transition(req, StatusCompleted)
	return nil
}

// CancelRequest cancels a non-terminal request and releases its
// reservation. Owner only; the lock period does not apply.
func (b *Book) CancelRequest(caller account.Address, id uint64) error {
	if err := b.gov.RequireOwner(caller); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	req, err := b.get(id)
	if err != nil {
		return err
	}
	if req.Status.Terminal() {
		return fmt.Errorf("%w: request %d is %s", ErrInvalidTransition, id, req.Status)
	}
	b.unlock(req.Requester, req.Amount)
	b.transition(req, StatusCancelled)
	return nil
}

// Get returns a copy of request id.
func (b *Book) Get(id uint64) (*Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, err := b.get(id)
	if err != nil {
		return nil, err
	}
	return req.Clone(), nil
}

// LockedBalance returns the amount a currently has reserved.
func (b *Book) LockedBalance(a account.Address) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.locked[a]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// AvailableBalance returns the ledger balance of a minus its locked
// balance, floored at zero.
func (b *Book) AvailableBalance(a account.Address) (*uint256.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.available(a)
}

// UserRequests returns the ids of every request a has made, oldest first.
func (b *Book) UserRequests(a account.Address) []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.byUser[a]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// PendingRequests returns non-terminal requests in id order, skipping
// the first offset of them and returning at most limit. A limit <= 0
// means no limit.
func (b *Book) PendingRequests(offset, limit int) []*Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*Request
	skipped := 0
	for id := uint64(1); id < b.nextID; id++ {
		req, ok := b.requests[id]
		if !ok || req.Status.Terminal() {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, req.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// TotalRequests returns the number of ids issued so far.
func (b *Book) TotalRequests() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextID - 1
}

// Requests returns copies of every request in id order.
func (b *Book) Requests() []*Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Request, 0, len(b.requests))
	for _, r := range b.requests {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore replaces the book's contents with previously persisted
// requests. Ids must be unique and contiguous from 1; locked balances
// are rebuilt from the non-terminal requests.
func (b *Book) Restore(requests []*Request) error {
	sorted := make([]*Request, len(requests))
	copy(sorted, requests)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	reqs := make(map[uint64]*Request, len(sorted))
	byUser := make(map[account.Address][]uint64)
	locked := make(map[account.Address]*uint256.Int)
	for i, r := range sorted {
		if r == nil || r.Amount == nil || r.Amount.IsZero() {
			return fmt.Errorf("%w: request at position %d has no amount", ErrInvalidSnapshot, i)
		}
		if r.ID != uint64(i)+1 {
			return fmt.Errorf("%w: expected id %d, got %d", ErrInvalidSnapshot, i+1, r.ID)
		}
		if !r.Status.Valid() {
			return fmt.Errorf("%w: request %d: %w", ErrInvalidSnapshot, r.ID, ErrInvalidStatus)
		}
		c := r.Clone()
		reqs[c.ID] = c
		byUser[c.Requester] = append(byUser[c.Requester], c.ID)
		if !c.Status.Terminal() {
			sum, ok := locked[c.Requester]
			if !ok {
				sum = new(uint256.Int)
				locked[c.Requester] = sum
			}
			if _, overflow := sum.AddOverflow(sum, c.Amount); overflow {
				return fmt.Errorf("%w: locked balance of %s overflows", ErrInvalidSnapshot, c.Requester)
			}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = reqs
	b.byUser = byUser
	b.locked = locked
	b.nextID = uint64(len(sorted)) + 1
	return nil
}

func (b *Book) get(id uint64) (*Request, error) {
	req, ok := b.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return req, nil
}

func (b *Book) available(a account.Address) (*uint256.Int, error) {
	bal, err := b.ledger.BalanceOf(a)
	if err != nil {
		return nil, fmt.Errorf("conversion: balance of %s: %w", a, err)
	}
	locked, ok := b.locked[a]
	if !ok {
		return bal.Clone(), nil
	}
	// The ledger balance can drop below the locked amount through
	// transfers, since the lock is not enforced by the ledger.
	if bal.Lt(locked) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(bal, locked), nil
}

func (b *Book) lock(a account.Address, amount *uint256.Int) {
	sum, ok := b.locked[a]
	if !ok {
		b.locked[a] = amount.Clone()
		return
	}
	sum.Add(sum, amount)
}

func (b *Book) unlock(a account.Address, amount *uint256.Int) {
	sum, ok := b.locked[a]
	if !ok {
		return
	}
	if sum.Lt(amount) {
		sum.Clear()
	} else {
		sum.Sub(sum, amount)
	}
	if sum.IsZero() {
		delete(b.locked, a)
	}
}

func (b *Book) transition(req *Request, to Status) {
	from := req.Status
	req.Status = to
	now := b.clock.Now()

	b.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"from":       from.String(),
		"to":         to.String(),
	}).Debug("conversion status changed")

	b.emit(&event.ConversionStatusChanged{
		RequestID: req.ID,
		Requester: req.Requester,
		Amount:    req.Amount.Clone(),
		From:      from.String(),
		To:        to.String(),
		At:        now,
	})
}

func (b *Book) emit(ev event.Event) {
	if err := b.events.Emit(ev); err != nil {
		b.log.WithError(err).WithField("event", string(ev.Kind())).Warn("event sink failed")
	}
}
