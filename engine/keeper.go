package engine

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libyield-go/distributor"
)

// DefaultKeeperInterval is how often RunKeeper checks for a due sweep.
const DefaultKeeperInterval = time.Minute

// RunKeeper checks on start and then every interval whether a sweep is
// due and runs it as the distributor account. It returns when ctx is done. Sweep failures
// are logged and retried on the next tick.
func (e *Engine) RunKeeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultKeeperInterval
	}
	ticker := e.clock.Ticker(interval)
	defer ticker.Stop()

	e.log.WithFields(logrus.Fields{
		"interval": interval,
		"next":     e.dist.NextDistributionTime().UTC(),
	}).Info("keeper started")

	e.tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	if !e.dist.CanDistribute() {
		return
	}
	res, err := e.Distribute(e.self)
	switch {
	case err == nil:
		e.log.WithFields(logrus.Fields{
			"total":   res.TotalDistributed.Dec(),
			"holders": res.HoldersCount,
			"next":    e.dist.NextDistributionTime().UTC(),
		}).Info("keeper distributed yield")
	case errors.Is(err, distributor.ErrNotDue):
		// Paused or raced with a manual sweep.
	default:
		e.log.WithError(err).Error("keeper sweep failed")
	}
}
