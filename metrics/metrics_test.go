package metrics

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/event"
)

func newCollector(t *testing.T) *Collector {
	t.Helper()
	log, _ := test.NewNullLogger()
	return New(log)
}

func TestCollector_YieldDistributed(t *testing.T) {
	c := newCollector(t)
	at := time.Unix(1736164800, 0)

	require.NoError(t, c.Emit(&event.YieldDistributed{
		TotalDistributed: uint256.NewInt(33),
		HoldersCount:     2,
		Timestamp:        at,
	}))
	require.NoError(t, c.Emit(&event.YieldDistributed{
		TotalDistributed: uint256.NewInt(34),
		HoldersCount:     3,
		Timestamp:        at.Add(7 * 24 * time.Hour),
	}))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Distributions))
	assert.Equal(t, 67.0, testutil.ToFloat64(c.YieldMinted))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.HoldersSwept))
	assert.Equal(t, float64(at.Add(7*24*time.Hour).Unix()), testutil.ToFloat64(c.LastDistribution))
}

func TestCollector_Conversions(t *testing.T) {
	c := newCollector(t)
	var a account.Address
	a[0] = 1

	require.NoError(t, c.Emit(&event.ConversionRequested{RequestID: 1, Requester: a, Amount: uint256.NewInt(5)}))
	require.NoError(t, c.Emit(&event.ConversionStatusChanged{RequestID: 1, Requester: a, Amount: uint256.NewInt(5), From: "pending", To: "processing"}))
	require.NoError(t, c.Emit(&event.ConversionStatusChanged{RequestID: 1, Requester: a, Amount: uint256.NewInt(5), From: "processing", To: "completed"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConversionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConversionStatus.WithLabelValues("processing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConversionStatus.WithLabelValues("completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ConversionStatus.WithLabelValues("cancelled")))
}

func TestCollector_Governance(t *testing.T) {
	c := newCollector(t)
	c.SetGovernance(220, false)
	assert.Equal(t, 220.0, testutil.ToFloat64(c.WeeklyRateBps))

	require.NoError(t, c.Emit(&event.YieldRateUpdated{OldRateBps: 220, NewRateBps: 500}))
	require.NoError(t, c.Emit(&event.DistributionPauseChanged{Paused: true}))
	assert.Equal(t, 500.0, testutil.ToFloat64(c.WeeklyRateBps))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DistributionPaused))

	require.NoError(t, c.Emit(&event.HoldersRegistered{Accounts: make([]account.Address, 4)}))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.HoldersRegistered))
}

func TestCollector_RegistryGathers(t *testing.T) {
	c := newCollector(t)
	n, err := testutil.GatherAndCount(c.Registry())
	require.NoError(t, err)
	// The vec has no children until a label is used.
	assert.Equal(t, 8, n)
}
