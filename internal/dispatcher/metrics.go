package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
)

// Metrics collects probe and dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	handlerMetrics map[string]*HandlerMetrics

	totalDispatches uint64
	totalUnclaimed  uint64
	totalErrors     uint64
	totalPanics     uint64
	totalDuration   time.Duration
}

// HandlerMetrics holds metrics for a specific handler.
type HandlerMetrics struct {
	Name            string
	ProbeCount      uint64
	ApplicableCount uint64
	DispatchCount   uint64
	ErrorCount      uint64
	PanicCount      uint64
	TotalDuration   time.Duration
	MinDuration     time.Duration
	MaxDuration     time.Duration
	LastStatus      handler.ResultStatus
	LastDispatch    time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{handlerMetrics: make(map[string]*HandlerMetrics)}
}

func (m *Metrics) get(name string) *HandlerMetrics {
	hm := m.handlerMetrics[name]
	if hm == nil {
		hm = &HandlerMetrics{Name: name}
		m.handlerMetrics[name] = hm
	}
	return hm
}

// RecordProbe records one probe outcome.
func (m *Metrics) RecordProbe(handlerName string, applicable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hm := m.get(handlerName)
	hm.ProbeCount++
	if applicable {
		hm.ApplicableCount++
	}
}

// RecordDispatch records a dispatch event. An empty handler name means the
// cell went unclaimed.
func (m *Metrics) RecordDispatch(handlerName string, duration time.Duration, status handler.ResultStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration
	if status == handler.StatusError {
		m.totalErrors++
	}
	if handlerName == "" {
		m.totalUnclaimed++
		return
	}

	hm := m.get(handlerName)
	if hm.DispatchCount == 0 {
		hm.MinDuration = duration
		hm.MaxDuration = duration
	}
	hm.DispatchCount++
	hm.TotalDuration += duration
	hm.LastStatus = status
	hm.LastDispatch = time.Now()
	if status == handler.StatusError {
		hm.ErrorCount++
	}
	if duration < hm.MinDuration {
		hm.MinDuration = duration
	}
	if duration > hm.MaxDuration {
		hm.MaxDuration = duration
	}
}

// RecordPanic records a handler panic.
func (m *Metrics) RecordPanic(handlerName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
	m.get(handlerName).PanicCount++
}

// TotalDispatches returns the total number of dispatches.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalUnclaimed returns the number of cells no handler claimed.
func (m *Metrics) TotalUnclaimed() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalUnclaimed
}

// TotalErrors returns the total number of error results.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalErrors
}

// TotalPanics returns the total number of recovered panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// Handler returns a copy of the metrics for one handler.
func (m *Metrics) Handler(name string) (HandlerMetrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hm, ok := m.handlerMetrics[name]
	if !ok {
		return HandlerMetrics{}, false
	}
	return *hm, true
}

// Handlers returns copies of all handler metrics sorted by name.
func (m *Metrics) Handlers() []HandlerMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]HandlerMetrics, 0, len(m.handlerMetrics))
	for _, hm := range m.handlerMetrics {
		out = append(out, *hm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset clears all collected metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlerMetrics = make(map[string]*HandlerMetrics)
	m.totalDispatches = 0
	m.totalUnclaimed = 0
	m.totalErrors = 0
	m.totalPanics = 0
	m.totalDuration = 0
}
