// Package metrics exposes prometheus collectors fed from engine events.
package metrics

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libyield-go/event"
)

// Namespace prefixes every metric name.
const Namespace = "yield"

// Collector owns a registry and updates it from events. It implements
// event.Sink.
type Collector struct {
	log      logrus.FieldLogger
	registry *prometheus.Registry

	Distributions      prometheus.Counter
	YieldMinted        prometheus.Counter
	LastDistribution   prometheus.Gauge
	HoldersSwept       prometheus.Gauge
	HoldersRegistered  prometheus.Counter
	ConversionsOpened  prometheus.Counter
	ConversionStatus   *prometheus.CounterVec
	WeeklyRateBps      prometheus.Gauge
	DistributionPaused prometheus.Gauge
}

var _ event.Sink = (*Collector)(nil)

// New creates a Collector with a private registry.
func New(log logrus.FieldLogger) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Collector{
		log:      log.WithField("component", "metrics"),
		registry: prometheus.NewRegistry(),

		Distributions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "distributions_total",
			Help:      "Number of successful yield sweeps.",
		}),
		YieldMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "minted_base_units_total",
			Help:      "Yield minted across all sweeps, in base units.",
		}),
		LastDistribution: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_distribution_timestamp_seconds",
			Help:      "Unix time of the last successful sweep.",
		}),
		HoldersSwept: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "holders_swept",
			Help:      "Registered holders visited by the last sweep.",
		}),
		HoldersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "holders_registered_total",
			Help:      "Holders added to the registry.",
		}),
		ConversionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "conversions_requested_total",
			Help:      "Conversion requests created.",
		}),
		ConversionStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "conversion_transitions_total",
			Help:      "Conversion request status transitions by target status.",
		}, []string{"status"}),
		WeeklyRateBps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "weekly_rate_bps",
			Help:      "Current weekly yield rate in basis points.",
		}),
		DistributionPaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "distribution_paused",
			Help:      "1 while distribution is paused.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.Distributions, c.YieldMinted, c.LastDistribution, c.HoldersSwept,
		c.HoldersRegistered, c.ConversionsOpened, c.ConversionStatus,
		c.WeeklyRateBps, c.DistributionPaused,
	} {
		c.registry.MustRegister(col)
	}
	return c
}

// Registry returns the registry holding every collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetGovernance seeds the gauges that otherwise only change on events.
func (c *Collector) SetGovernance(rateBps uint32, paused bool) {
	c.WeeklyRateBps.Set(float64(rateBps))
	c.DistributionPaused.Set(boolGauge(paused))
}

// Emit updates the collectors for ev.
func (c *Collector) Emit(ev event.Event) error {
	switch e := ev.(type) {
	case *event.YieldDistributed:
		c.Distributions.Inc()
		c.YieldMinted.Add(toFloat(e.TotalDistributed))
		c.LastDistribution.Set(float64(e.Timestamp.Unix()))
		c.HoldersSwept.Set(float64(e.HoldersCount))
	case *event.HoldersRegistered:
		c.HoldersRegistered.Add(float64(len(e.Accounts)))
	case *event.ConversionRequested:
		c.ConversionsOpened.Inc()
	case *event.ConversionStatusChanged:
		c.ConversionStatus.WithLabelValues(e.To).Inc()
	case *event.YieldRateUpdated:
		c.WeeklyRateBps.Set(float64(e.NewRateBps))
	case *event.DistributionPauseChanged:
		c.DistributionPaused.Set(boolGauge(e.Paused))
	default:
		c.log.WithField("event", string(ev.Kind())).Debug("no metric for event")
	}
	return nil
}

func toFloat(v *uint256.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
