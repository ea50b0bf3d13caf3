package opwatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// pollerMetrics holds the Prometheus collectors for a poller.
// A nil *pollerMetrics is valid and records nothing, so the poller can
// call observe methods unconditionally.
type pollerMetrics struct {
	polls        *prometheus.CounterVec
	pollDuration prometheus.Histogram
	waits        *prometheus.CounterVec
}

// newPollerMetrics creates and registers the poller's collectors.
func newPollerMetrics(reg prometheus.Registerer) (*pollerMetrics, error) {
	m := &pollerMetrics{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opwatch_polls_total",
			Help: "Status-check round trips, by outcome (ok or error).",
		}, []string{"outcome"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opwatch_poll_duration_seconds",
			Help:    "Latency of status-check round trips.",
			Buckets: prometheus.DefBuckets,
		}),
		waits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opwatch_waits_total",
			Help: "Completed waits, by terminal state.",
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{m.polls, m.pollDuration, m.waits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observePoll records one status-check round trip.
func (m *pollerMetrics) observePoll(took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.polls.WithLabelValues(outcome).Inc()
	m.pollDuration.Observe(took.Seconds())
}

// observeWait records one completed wait.
func (m *pollerMetrics) observeWait(state State) {
	if m == nil {
		return
	}
	m.waits.WithLabelValues(state.String()).Inc()
}
