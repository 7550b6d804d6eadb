package mock

import (
	"time"

	"github.com/fwojciec/folio/cache"
)

var _ cache.Metrics = (*Metrics)(nil)

// Metrics is a mock implementation of cache.Metrics.
type Metrics struct {
	ObserveMaterializedFn func(d time.Duration)
	ObserveFailureFn      func()
	ObserveRetryFn        func()
	ObserveWaitFn         func(result string, d time.Duration)
	RecordQueueDepthFn    func(n int)
}

func (m *Metrics) ObserveMaterialized(d time.Duration) {
	m.ObserveMaterializedFn(d)
}

func (m *Metrics) ObserveFailure() {
	m.ObserveFailureFn()
}

func (m *Metrics) ObserveRetry() {
	m.ObserveRetryFn()
}

func (m *Metrics) ObserveWait(result string, d time.Duration) {
	m.ObserveWaitFn(result, d)
}

func (m *Metrics) RecordQueueDepth(n int) {
	m.RecordQueueDepthFn(n)
}
