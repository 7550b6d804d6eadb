package cache

import "github.com/fwojciec/folio"

// Default prefetch window widths. Reading is mostly forward, so the window
// ahead of the current page is wider than the one behind it.
const (
	DefaultAhead  = 5
	DefaultBehind = 3
)

// Scheduler picks the next page to materialize around the last request.
type Scheduler struct {
	Ahead  int
	Behind int
}

// Next returns the next Pending page to materialize, in priority order:
// the requested page itself, then the pages after it up to Ahead, then the
// pages before it down to Behind. The bool result is false when every page
// in the window is already past Pending.
func (s Scheduler) Next(last int, states StateReader, numPages int) (int, bool) {
	if last < 1 || last > numPages {
		return 0, false
	}

	if states.Get(last) == folio.PagePending {
		return last, true
	}

	for p := last + 1; p <= min(numPages, last+s.Ahead); p++ {
		if states.Get(p) == folio.PagePending {
			return p, true
		}
	}

	for p := last - 1; p >= max(1, last-s.Behind); p-- {
		if states.Get(p) == folio.PagePending {
			return p, true
		}
	}

	return 0, false
}
