package event

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
)

// Kind names an event type.
type Kind string

const (
	KindYieldDistributed         Kind = "YieldDistributed"
	KindConversionRequested      Kind = "ConversionRequested"
	KindConversionStatusChanged  Kind = "ConversionStatusChanged"
	KindYieldRateUpdated         Kind = "YieldRateUpdated"
	KindDistributionPauseChanged Kind = "DistributionPauseChanged"
	KindHoldersRegistered        Kind = "HoldersRegistered"
)

// Event is a notification with a stable binary encoding.
type Event interface {
	Kind() Kind
	MarshalBinary() ([]byte, error)
}

// YieldDistributed summarises one successful sweep.
type YieldDistributed struct {
	TotalDistributed *uint256.Int
	HoldersCount     uint64
	Timestamp        time.Time
}

func (*YieldDistributed) Kind() Kind { return KindYieldDistributed }

func (e *YieldDistributed) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.amount(e.TotalDistributed)
	enc.u64(e.HoldersCount)
	enc.time(e.Timestamp)
	return enc.buf, nil
}

func (e *YieldDistributed) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	e.TotalDistributed = d.amount()
	e.HoldersCount = d.u64()
	e.Timestamp = d.time()
	return d.finish()
}

// ConversionRequested records a new conversion request.
type ConversionRequested struct {
	RequestID   uint64
	Requester   account.Address
	Amount      *uint256.Int
	RequestedAt time.Time
	LockedUntil time.Time
}

func (*ConversionRequested) Kind() Kind { return KindConversionRequested }

func (e *ConversionRequested) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.u64(e.RequestID)
	enc.addr(e.Requester)
	enc.amount(e.Amount)
	enc.time(e.RequestedAt)
	enc.time(e.LockedUntil)
	return enc.buf, nil
}

func (e *ConversionRequested) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	e.RequestID = d.u64()
	e.Requester = d.addr()
	e.Amount = d.amount()
	e.RequestedAt = d.time()
	e.LockedUntil = d.time()
	return d.finish()
}

// ConversionStatusChanged records an owner transition of a request.
type ConversionStatusChanged struct {
	RequestID uint64
	Requester account.Address
	Amount    *uint256.Int
	From      string
	To        string
	At        time.Time
}

func (*ConversionStatusChanged) Kind() Kind { return KindConversionStatusChanged }

func (e *ConversionStatusChanged) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.u64(e.RequestID)
	enc.addr(e.Requester)
	enc.amount(e.Amount)
	enc.str(e.From)
	enc.str(e.To)
	enc.time(e.At)
	return enc.buf, nil
}

func (e *ConversionStatusChanged) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	e.RequestID = d.u64()
	e.Requester = d.addr()
	e.Amount = d.amount()
	e.From = d.str()
	e.To = d.str()
	e.At = d.time()
	return d.finish()
}

// YieldRateUpdated records a weekly rate change.
type YieldRateUpdated struct {
	OldRateBps uint32
	NewRateBps uint32
	At         time.Time
}

func (*YieldRateUpdated) Kind() Kind { return KindYieldRateUpdated }

func (e *YieldRateUpdated) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.u32(e.OldRateBps)
	enc.u32(e.NewRateBps)
	enc.time(e.At)
	return enc.buf, nil
}

func (e *YieldRateUpdated) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	e.OldRateBps = d.u32()
	e.NewRateBps = d.u32()
	e.At = d.time()
	return d.finish()
}

// DistributionPauseChanged records a pause or resume call.
type DistributionPauseChanged struct {
	Paused bool
	At     time.Time
}

func (*DistributionPauseChanged) Kind() Kind { return KindDistributionPauseChanged }

func (e *DistributionPauseChanged) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.boolean(e.Paused)
	enc.time(e.At)
	return enc.buf, nil
}

func (e *DistributionPauseChanged) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	e.Paused = d.boolean()
	e.At = d.time()
	return d.finish()
}

// HoldersRegistered lists accounts added to the holder registry.
type HoldersRegistered struct {
	Accounts []account.Address
	At       time.Time
}

func (*HoldersRegistered) Kind() Kind { return KindHoldersRegistered }

func (e *HoldersRegistered) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.u32(uint32(len(e.Accounts)))
	for _, a := range e.Accounts {
		enc.addr(a)
	}
	enc.time(e.At)
	return enc.buf, nil
}

func (e *HoldersRegistered) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	n := int(d.u32())
	if n*account.Size > len(data) {
		return fmt.Errorf("%w: %d accounts in %d bytes", ErrInvalidEventData, n, len(data))
	}
	e.Accounts = make([]account.Address, 0, n)
	for i := 0; i < n; i++ {
		e.Accounts = append(e.Accounts, d.addr())
	}
	e.At = d.time()
	return d.finish()
}

// Decode rebuilds a typed event from its kind and encoding.
func Decode(kind Kind, data []byte) (Event, error) {
	var ev interface {
		Event
		UnmarshalBinary([]byte) error
	}
	switch kind {
	case KindYieldDistributed:
		ev = &YieldDistributed{}
	case KindConversionRequested:
		ev = &ConversionRequested{}
	case KindConversionStatusChanged:
		ev = &ConversionStatusChanged{}
	case KindYieldRateUpdated:
		ev = &YieldRateUpdated{}
	case KindDistributionPauseChanged:
		ev = &DistributionPauseChanged{}
	case KindHoldersRegistered:
		ev = &HoldersRegistered{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := ev.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return ev, nil
}
