package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_chat_turns_total",
			Help: "Completed chat turns by outcome",
		},
		[]string{"outcome"},
	)
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_chat_actions_total",
			Help: "Parsed chat actions by type",
		},
		[]string{"type"},
	)
	cartMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_cart_mutations_total",
			Help: "Cart mutations by operation",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(turnsTotal, actionsTotal, cartMutationsTotal)
}

// Monitor collects runtime metrics for the ordering service. It feeds
// the prometheus counters above and keeps a snapshot map for the JSON
// metrics endpoint. It implements the cart observer and the chat turn
// recorder, so mutation and turn events flow here instead of living
// inside the aggregate or the orchestrator.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// CartEvent implements the cart observer: one call per mutation.
func (m *Monitor) CartEvent(op string, itemID string, quantity int) {
	cartMutationsTotal.WithLabelValues(op).Inc()
	m.bump("cart_" + op + "_total")
}

// TurnCompleted implements the chat recorder for turn outcomes.
func (m *Monitor) TurnCompleted(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
	m.bump("chat_turns_" + outcome + "_total")
	m.RecordMetric("chat_last_turn_at", time.Now().Format(time.RFC3339))
}

// ActionParsed implements the chat recorder for parsed action types.
func (m *Monitor) ActionParsed(actionType string) {
	actionsTotal.WithLabelValues(actionType).Inc()
	m.bump("chat_action_" + actionType + "_total")
}

func (m *Monitor) bump(name string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	if current, ok := m.metrics[name].(int); ok {
		m.metrics[name] = current + 1
	} else {
		m.metrics[name] = 1
	}
}
