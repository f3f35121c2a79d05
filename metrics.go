package goAccounts

import "sync/atomic"

// MetricID identifies one in-process counter.
type MetricID int

const (
	MetricRegistration MetricID = iota
	MetricRegistrationFailure
	MetricActivationSuccess
	MetricActivationFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricSocialAuth
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricLogout
	MetricSessionCreated
	MetricProfileUpdate
	MetricPasswordChange
	MetricPasswordResetRequest
	MetricPasswordResetSuccess
	MetricPasswordResetFailure
	MetricMailFailure

	metricIDCount
)

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of a counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id < 0 || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snapshot
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = m.counters[id].Load()
	}
	return snapshot
}
