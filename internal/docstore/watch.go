package docstore

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Subscription is a change subscription over one query. C delivers the full
// current result set on every observed change, starting with the initial
// snapshot. Close is idempotent and must be called before attaching a
// replacement subscription for a different scope; a leaked subscription
// keeps delivering stale rows.
type Subscription struct {
	C <-chan []Document

	closeOnce sync.Once
	closeFn   func()
}

// Close tears the subscription down and stops deliveries.
func (s *Subscription) Close() {
	s.closeOnce.Do(s.closeFn)
}

func newSubscription(ch chan []Document, closeFn func()) *Subscription {
	return &Subscription{C: ch, closeFn: closeFn}
}

// pollInterval is how often polling backends re-run the watched query.
const pollInterval = 2 * time.Second

// pollWatch emulates change subscriptions for backends without native change
// feeds by re-running the query and delivering when the result set differs.
func pollWatch(ctx context.Context, store Store, q Query, interval time.Duration) (*Subscription, error) {
	initial, err := store.List(ctx, q)
	if err != nil {
		return nil, err
	}

	ch := make(chan []Document, 1)
	done := make(chan struct{})
	sub := newSubscription(ch, func() { close(done) })

	ch <- initial

	go func() {
		defer close(ch)
		last := initial
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				docs, err := store.List(ctx, q)
				if err != nil {
					continue
				}
				if reflect.DeepEqual(docs, last) {
					continue
				}
				last = docs
				select {
				case ch <- docs:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}
