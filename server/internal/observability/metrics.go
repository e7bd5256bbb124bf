package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts handled Telegram updates per handler.
type Metrics struct {
	mu sync.Mutex

	updateTotal  atomic.Int64
	updateFailed atomic.Int64

	handlers map[string]*HandlerMetrics
}

// HandlerMetrics holds the counters of one handler ("command", "message", "callback").
type HandlerMetrics struct {
	count         atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{handlers: make(map[string]*HandlerMetrics)}
}

// RecordUpdate records a handled update and its duration.
func (m *Metrics) RecordUpdate(handler string, d time.Duration) {
	m.updateTotal.Add(1)
	hm := m.handler(handler)
	hm.count.Add(1)
	hm.totalDuration.Add(d.Milliseconds())
}

// RecordFailure records a failed update.
func (m *Metrics) RecordFailure(handler string) {
	m.updateFailed.Add(1)
	m.handler(handler).errorCount.Add(1)
}

func (m *Metrics) handler(name string) *HandlerMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	hm, ok := m.handlers[name]
	if !ok {
		hm = &HandlerMetrics{}
		m.handlers[name] = hm
	}
	return hm
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.updateTotal.Store(0)
	m.updateFailed.Store(0)

	m.mu.Lock()
	m.handlers = make(map[string]*HandlerMetrics)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlers := make(map[string]*HandlerSnapshot, len(m.handlers))
	for name, hm := range m.handlers {
		s := &HandlerSnapshot{
			Count:         hm.count.Load(),
			TotalDuration: hm.totalDuration.Load(),
			ErrorCount:    hm.errorCount.Load(),
		}
		if s.Count > 0 {
			s.AverageDuration = s.TotalDuration / s.Count
		}
		handlers[name] = s
	}

	return &MetricsSnapshot{
		UpdateTotal:  m.updateTotal.Load(),
		UpdateFailed: m.updateFailed.Load(),
		Handlers:     handlers,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	UpdateTotal  int64                       `json:"update_total"`
	UpdateFailed int64                       `json:"update_failed"`
	Handlers     map[string]*HandlerSnapshot `json:"handlers"`
}

// HandlerSnapshot represents metrics for one handler.
type HandlerSnapshot struct {
	Count           int64 `json:"count"`
	TotalDuration   int64 `json:"total_duration_ms"`
	ErrorCount      int64 `json:"error_count"`
	AverageDuration int64 `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.UpdateTotal == 0 {
		return 100.0
	}
	return float64(s.UpdateTotal-s.UpdateFailed) / float64(s.UpdateTotal) * 100.0
}
