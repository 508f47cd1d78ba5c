package engine

import (
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/distributor"
	"github.com/bitfsorg/libyield-go/event"
)

// Mint credits amount to `to`. The caller must be the owner or a minter.
func (e *Engine) Mint(caller, to account.Address, amount *uint256.Int) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return e.ledger.Mint(caller, to, amount)
}

// Transfer moves amount from `from` to `to`. Locked conversion amounts
// are not enforced by the ledger.
func (e *Engine) Transfer(from, to account.Address, amount *uint256.Int) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return e.ledger.Transfer(from, to, amount)
}

// PauseLedger suspends ledger transfers. Owner only.
func (e *Engine) PauseLedger(caller account.Address) error {
	return e.setLedgerPaused(caller, true)
}

// UnpauseLedger resumes ledger transfers. Owner only.
func (e *Engine) UnpauseLedger(caller account.Address) error {
	return e.setLedgerPaused(caller, false)
}

func (e *Engine) setLedgerPaused(caller account.Address, paused bool) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	var err error
	if paused {
		err = e.ledger.Pause(caller)
	} else {
		err = e.ledger.Unpause(caller)
	}
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"caller": caller.String(),
		"paused": paused,
	}).Info("ledger pause changed")
	return nil
}

// AddMinter authorises minter on the ledger. Owner only.
func (e *Engine) AddMinter(caller, minter account.Address) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return e.ledger.AddMinter(caller, minter)
}

// Register adds holders with a positive balance and returns those added.
func (e *Engine) Register(accounts ...account.Address) ([]account.Address, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	added, err := e.reg.Register(e.ledger, accounts...)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return nil, nil
	}
	ev := &event.HoldersRegistered{Accounts: added, At: e.clock.Now()}
	if err := e.events.Emit(ev); err != nil {
		e.log.WithError(err).Warn("event sink failed")
	}
	return added, e.commit()
}

// Distribute runs a yield sweep if one is due.
func (e *Engine) Distribute(caller account.Address) (*distributor.Result, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	var res *distributor.Result
	err := e.commitWith(func(tx *bbolt.Tx) error {
		var err error
		res, err = e.dist.DistributeYieldTx(caller, e.ledger.Bind(tx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PauseDistribution stops sweeps. Owner only.
func (e *Engine) PauseDistribution(caller account.Address) error {
	return e.mutate(func() error { return e.dist.PauseDistribution(caller) })
}

// ResumeDistribution re-enables sweeps. Owner only.
func (e *Engine) ResumeDistribution(caller account.Address) error {
	return e.mutate(func() error { return e.dist.ResumeDistribution(caller) })
}

// SetWeeklyYieldRate changes the weekly rate. Owner only.
func (e *Engine) SetWeeklyYieldRate(caller account.Address, bps uint32) error {
	return e.mutate(func() error { return e.dist.SetWeeklyYieldRate(caller, bps) })
}

// RequestConversion locks amount of requester's balance.
func (e *Engine) RequestConversion(requester account.Address, amount *uint256.Int) (uint64, error) {
	var id uint64
	err := e.mutate(func() error {
		var err error
		id, err = e.book.RequestConversion(requester, amount)
		return err
	})
	return id, err
}

// MarkAsProcessing moves a pending request to processing. Owner only.
func (e *Engine) MarkAsProcessing(caller account.Address, id uint64) error {
	return e.mutate(func() error { return e.book.MarkAsProcessing(caller, id) })
}

// CompleteConversion completes a matured request. Owner only.
func (e *Engine) CompleteConversion(caller account.Address, id uint64) error {
	return e.mutate(func() error { return e.book.CompleteConversion(caller, id) })
}

// CancelRequest cancels an open request. Owner only.
func (e *Engine) CancelRequest(caller account.Address, id uint64) error {
	return e.mutate(func() error { return e.book.CancelRequest(caller, id) })
}

// mutate runs fn under the engine lock and persists if it succeeds.
func (e *Engine) mutate(fn func() error) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	return e.commit()
}
