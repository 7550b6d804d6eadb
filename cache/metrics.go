package cache

import "time"

// Wait results reported to Metrics.ObserveWait.
const (
	WaitHit      = "hit"      // page was already ready
	WaitMiss     = "miss"     // caller blocked until the page was ready
	WaitTimeout  = "timeout"  // wait ended by deadline
	WaitCanceled = "canceled" // wait ended by cancellation
)

// Metrics provides observability for page cache operations.
//
// Metrics are optional. A nil Metrics in Config disables collection.
type Metrics interface {
	// ObserveMaterialized records a page that reached Ready.
	ObserveMaterialized(duration time.Duration)

	// ObserveFailure records a page abandoned after its final attempt.
	ObserveFailure()

	// ObserveRetry records a failed attempt that will be retried.
	ObserveRetry()

	// ObserveWait records a foreground wait and how it ended.
	ObserveWait(result string, duration time.Duration)

	// RecordQueueDepth records the number of pending page requests.
	RecordQueueDepth(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveMaterialized(time.Duration) {}
func (nopMetrics) ObserveFailure()                   {}
func (nopMetrics) ObserveRetry()                     {}
func (nopMetrics) ObserveWait(string, time.Duration) {}
func (nopMetrics) RecordQueueDepth(int)              {}
