// Package governance holds the administrative state shared by the yield
// distributor and the conversion book: the owner account, the weekly
// yield rate and the distribution pause flag. Both subsystems receive the
// same *Governance; neither keeps a private copy.
package governance

import (
	"fmt"
	"sync"

	"github.com/bitfsorg/libyield-go/account"
)

// DefaultWeeklyRateBps is the initial weekly yield rate (2.2%).
const DefaultWeeklyRateBps uint32 = 220

// Governance is the owner-controlled configuration.
type Governance struct {
	mu            sync.RWMutex
	owner         account.Address
	weeklyRateBps uint32
	paused        bool
}

// New creates a Governance owned by owner with the default rate.
func New(owner account.Address) (*Governance, error) {
	if owner.IsZero() {
		return nil, ErrZeroOwner
	}
	return &Governance{owner: owner, weeklyRateBps: DefaultWeeklyRateBps}, nil
}

// Owner returns the administrator account.
func (g *Governance) Owner() account.Address {
	return g.owner
}

// RequireOwner fails with ErrUnauthorized unless caller is the owner.
func (g *Governance) RequireOwner(caller account.Address) error {
	if caller != g.owner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}

// WeeklyRateBps returns the current weekly rate in basis points.
func (g *Governance) WeeklyRateBps() uint32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.weeklyRateBps
}

// SetWeeklyRateBps stores a new rate. Range checks are the caller's job.
func (g *Governance) SetWeeklyRateBps(bps uint32) (old uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old = g.weeklyRateBps
	g.weeklyRateBps = bps
	return old
}

// Paused reports whether distribution is paused.
func (g *Governance) Paused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

// SetPaused sets the distribution pause flag.
func (g *Governance) SetPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = paused
}
