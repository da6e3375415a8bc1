// Package metrics provides optional Prometheus instrumentation for the
// reactor: a recorder interface with a real implementation gated behind a
// build tag and a no-op default, so the core never forces the dependency
// on a caller that has no metrics backend.
package metrics

// Recorder records reactor-level counters. Handlers never see a Recorder
// directly; the server calls it from the reactor tick and from eviction.
type Recorder interface {
	ConnectionAccepted()
	ConnectionEvicted(reason string)
	ActiveConnections(n int)
	TickDuration(seconds float64)
}
