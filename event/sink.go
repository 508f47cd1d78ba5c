package event

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Sink receives events after the state change they describe is committed.
type Sink interface {
	Emit(ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event) error

// Emit calls f(ev).
func (f SinkFunc) Emit(ev Event) error { return f(ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) error { return nil })

// Fanout delivers each event to every sink and joins their errors.
type Fanout []Sink

// Emit delivers ev to all sinks, even if an earlier one fails.
func (f Fanout) Emit(ev Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes one structured log line per event.
type LogSink struct {
	Log logrus.FieldLogger
}

// Emit logs ev at info level.
func (s LogSink) Emit(ev Event) error {
	s.Log.WithFields(Fields(ev)).Info(string(ev.Kind()))
	return nil
}

// Fields flattens ev into logrus fields.
func Fields(ev Event) logrus.Fields {
	f := logrus.Fields{"event": string(ev.Kind())}
	switch e := ev.(type) {
	case *YieldDistributed:
		f["total_distributed"] = e.TotalDistributed.Dec()
		f["holders"] = e.HoldersCount
		f["timestamp"] = e.Timestamp.UTC()
	case *ConversionRequested:
		f["request_id"] = e.RequestID
		f["requester"] = e.Requester.String()
		f["amount"] = e.Amount.Dec()
		f["locked_until"] = e.LockedUntil.UTC()
	case *ConversionStatusChanged:
		f["request_id"] = e.RequestID
		f["requester"] = e.Requester.String()
		f["amount"] = e.Amount.Dec()
		f["from"] = e.From
		f["to"] = e.To
	case *YieldRateUpdated:
		f["old_rate_bps"] = e.OldRateBps
		f["new_rate_bps"] = e.NewRateBps
	case *DistributionPauseChanged:
		f["paused"] = e.Paused
	case *HoldersRegistered:
		f["count"] = len(e.Accounts)
	}
	return f
}
