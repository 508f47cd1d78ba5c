package conversion

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
)

// Status is the lifecycle position of a conversion request.
type Status uint8

const (
	StatusPending Status = iota
	StatusProcessing
	StatusCompleted
	StatusCancelled
)

var statusNames = [...]string{
	StatusPending:    "pending",
	StatusProcessing: "processing",
	StatusCompleted:  "completed",
	StatusCancelled:  "cancelled",
}

// String returns the lower-case status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return s <= StatusCancelled }

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Request is one conversion request.
type Request struct {
	ID          uint64
	Requester   account.Address
	Amount      *uint256.Int
	RequestedAt time.Time
	LockedUntil time.Time
	Status      Status
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	c := *r
	if r.Amount != nil {
		c.Amount = r.Amount.Clone()
	}
	return &c
}

// Matured reports whether the lock period has elapsed at now.
func (r *Request) Matured(now time.Time) bool {
	return !now.Before(r.LockedUntil)
}
