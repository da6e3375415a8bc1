//go:build !prometheus

package metrics

// NewRecorder returns the default no-op Recorder. Build with the
// "prometheus" tag to get the real github.com/prometheus/client_golang
// backed implementation in prometheus.go.
func NewRecorder() Recorder {
	return noopRecorder{}
}

type noopRecorder struct{}

func (noopRecorder) ConnectionAccepted()             {}
func (noopRecorder) ConnectionEvicted(reason string) {}
func (noopRecorder) ActiveConnections(n int)         {}
func (noopRecorder) TickDuration(seconds float64)    {}
