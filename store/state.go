package store

import (
	"time"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/conversion"
)

// State is everything the engine needs to resume after a restart,
// except the ledger balances, which live in the ledger's own buckets.
type State struct {
	Owner            account.Address
	Distributor      account.Address
	WeeklyRateBps    uint32
	Paused           bool
	LastDistribution time.Time
	MaxHolders       uint32
	Holders          []account.Address
	Requests         []*conversion.Request
}
