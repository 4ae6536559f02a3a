package pipeline

import "time"

// TimeProvider exists so run-store expiry can be driven by a fake clock in
// tests.
type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}

var timeProvider TimeProvider = &realTimeProvider{}
