package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "engine",
		Name:      "tutorial_transitions_total",
		Help:      "Tutorial state transitions, by exited state id.",
	}, []string{"state"})

	hintRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "engine",
		Name:      "hint_renders_total",
		Help:      "Hint decorations written, by state id.",
	}, []string{"state"})

	hintSuppressionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "engine",
		Name:      "hint_suppressions_total",
		Help:      "Hint renders suppressed while a suggestion was in flight.",
	})

	shippedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "engine",
		Name:      "shipped_events_total",
		Help:      "Telemetry events shipped to the collector.",
	})

	droppedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nudge",
		Subsystem: "engine",
		Name:      "dropped_events_total",
		Help:      "Telemetry events dropped because the queue was full.",
	})
)

// CountTransition records a tutorial edge by exited state id.
func CountTransition(stateID string) {
	transitionsTotal.WithLabelValues(stateID).Inc()
}

// CountHintRender records a written hint decoration.
func CountHintRender(stateID string) {
	hintRendersTotal.WithLabelValues(stateID).Inc()
}

// CountHintSuppression records a render suppressed by an in-flight request.
func CountHintSuppression() {
	hintSuppressionsTotal.Inc()
}
