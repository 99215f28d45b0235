package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Rejection reasons.
const (
	reasonUnknown = "unknown"
	reasonIllegal = "illegal"
)

// unregisteredTransition replaces caller-supplied names that match no transition,
// keeping the label set bounded.
const unregisteredTransition = "unregistered"

// Metric definitions with appropriate labels.
var (
	// transitionsTotal tracks finished apply calls by outcome (success/error).
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transitions_total",
		Help: "Total number of applied transitions by machine, transition, from_state, to_state and outcome",
	}, []string{"machine", "transition", "from_state", "to_state", "outcome"})

	// transitionRejectionsTotal tracks apply calls rejected before any mutation.
	transitionRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transition_rejections_total",
		Help: "Total number of rejected transitions by machine, transition and reason (unknown or illegal)",
	}, []string{"machine", "transition", "reason"})

	// applyDuration tracks how long apply takes, collaborators included.
	applyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_apply_duration_seconds",
		Help:    "Duration of transition apply by machine, transition and outcome",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"machine", "transition", "outcome"})

	// bindingsTotal tracks SetObject calls, split by whether the subject had to be initialized.
	bindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_bindings_total",
		Help: "Total number of subjects bound by machine and whether the initial state was written",
	}, []string{"machine", "initialized"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}

func sanitizeState(state string) string {
	if state == "" {
		return "none"
	}

	return state
}
