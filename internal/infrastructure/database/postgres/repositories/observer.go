package repositories

import "time"

// QueryObserver receives the name and wall-clock latency of one repository
// operation, typically bound to a Prometheus histogram.
type QueryObserver func(operation string, elapsed time.Duration)

// Option configures a repository.
type Option func(*settings)

// WithQueryObserver installs a latency observer on every query the
// repository runs.
func WithQueryObserver(obs QueryObserver) Option {
	return func(s *settings) { s.observer = obs }
}

type settings struct {
	observer QueryObserver
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// observe is meant to be deferred at the top of a repository method.
func (s settings) observe(operation string, start time.Time) {
	if s.observer != nil {
		s.observer(operation, time.Since(start))
	}
}
