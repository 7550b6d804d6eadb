package cache

import (
	"container/list"
	"context"
	"sync"
)

// RequestQueue is an unbounded queue of requested pages. The most recently
// pushed page is popped first. Duplicate and stale entries are kept.
// It is safe for concurrent use by multiple goroutines.
type RequestQueue struct {
	mu     sync.Mutex
	items  *list.List
	notify chan struct{}
}

// NewRequestQueue creates an empty queue.
func NewRequestQueue() *RequestQueue {
	return &RequestQueue{
		items:  list.New(),
		notify: make(chan struct{}, 1),
	}
}

// PushFront adds page to the front of the queue. It never blocks.
func (q *RequestQueue) PushFront(page int) {
	q.mu.Lock()
	q.items.PushFront(page)
	q.mu.Unlock()

	q.signal()
}

// PopFront removes and returns the front page, blocking until one is
// available. Returns ctx.Err() if ctx ends first.
func (q *RequestQueue) PopFront(ctx context.Context) (int, error) {
	for {
		q.mu.Lock()
		if front := q.items.Front(); front != nil {
			page, _ := q.items.Remove(front).(int)
			remaining := q.items.Len()
			q.mu.Unlock()

			// Leave a wakeup behind for whoever pops next.
			if remaining > 0 {
				q.signal()
			}
			return page, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len returns the number of pending requests.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *RequestQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
