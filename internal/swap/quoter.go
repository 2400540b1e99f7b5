package swap

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the pause after the last quote request before the
// price fetch actually runs.
const DefaultDebounce = 800 * time.Millisecond

// Quoter debounces quote requests so rapid input edits collapse into one
// price fetch. Only the latest request's result is delivered; superseded
// fetches are dropped even if they finish later.
type Quoter struct {
	orchestrator *Orchestrator
	debounce     time.Duration
	deliver      func(*Quote, error)

	mu    sync.Mutex
	timer *time.Timer
}

// NewQuoter creates a quoter feeding results to deliver. The callback runs
// on a timer goroutine and must not block for long.
func NewQuoter(o *Orchestrator, debounce time.Duration, deliver func(*Quote, error)) *Quoter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Quoter{orchestrator: o, debounce: debounce, deliver: deliver}
}

// Request schedules a quote for after the debounce window. A newer request
// restarts the window and supersedes this one.
func (q *Quoter) Request(ctx context.Context, req QuoteRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.timer != nil {
		q.timer.Stop()
	}

	gen := q.orchestrator.beginQuote()
	q.timer = time.AfterFunc(q.debounce, func() {
		quote, err := q.orchestrator.fetchQuote(ctx, req, gen)
		q.orchestrator.finishQuote(gen, quote, err)

		if q.deliver != nil && q.orchestrator.isCurrent(gen) {
			q.deliver(quote, err)
		}
	})
}

// Stop cancels any pending request without delivering it.
func (q *Quoter) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.orchestrator.Reset()
}
