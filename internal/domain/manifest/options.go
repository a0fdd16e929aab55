package manifest

import (
	"time"

	"github.com/fabworks/rackforge/internal/metrics"
)

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the timestamp source. Tests use this.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithMetrics wires storage-operation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.met = m }
}

// WithIDGenerator overrides the change/configuration id source. Tests use
// this for deterministic ids.
func WithIDGenerator(next func() int64) Option {
	return func(s *Service) { s.nextIDFn = next }
}
