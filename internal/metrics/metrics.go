package metrics

import (
	"github.com/localnerve/paperdb/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels besides the error kinds.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// WorkflowCommands counts engine commands by name and outcome. The outcome is
// "ok", an error kind such as "conflict", or "error" for infrastructure failures.
var WorkflowCommands = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paperdb",
		Subsystem: "workflow",
		Name:      "commands_total",
		Help:      "Workflow commands executed, by command and outcome.",
	},
	[]string{"command", "outcome"},
)

// SearchCacheLookups counts search cache hits and misses.
var SearchCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paperdb",
		Subsystem: "search",
		Name:      "cache_lookups_total",
		Help:      "Search cache lookups, by result.",
	},
	[]string{"result"},
)

// Outcome returns the outcome label for a command result.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind := types.KindOf(err); kind != "" {
		return string(kind)
	}
	return OutcomeError
}

// ObserveCommand records one command execution.
func ObserveCommand(command string, err error) {
	WorkflowCommands.WithLabelValues(command, Outcome(err)).Inc()
}
