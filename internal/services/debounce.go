package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DebounceQueue coalesces photo IDs arriving from independent callers into
// single batch runs. IDs are claimed on arrival, collected into a pending
// set, and dispatched together once no new IDs have arrived for the debounce
// window. While a run is in progress no new run starts; IDs arriving during a
// run are picked up by a follow-up batch after a short cooldown instead of
// waiting out another full window.
type DebounceQueue struct {
	logger   *slog.Logger
	claims   *ClaimSet
	runner   *BatchRunner
	debounce time.Duration
	cooldown time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	order   []string
	timer   *time.Timer
	running bool
	stopped bool
}

// NewDebounceQueue returns a queue dispatching to runner after window of
// quiet time, with cooldown between chained runs.
func NewDebounceQueue(logger *slog.Logger, claims *ClaimSet, runner *BatchRunner, window, cooldown time.Duration) *DebounceQueue {
	if window <= 0 {
		window = 2 * time.Second
	}
	if cooldown <= 0 {
		cooldown = 500 * time.Millisecond
	}
	return &DebounceQueue{
		logger:   logger,
		claims:   claims,
		runner:   runner,
		debounce: window,
		cooldown: cooldown,
		pending:  make(map[string]struct{}),
	}
}

// Enqueue accepts photo IDs from any caller. IDs already claimed are
// dropped; the rest are claimed immediately so a second caller racing in
// during the debounce window cannot re-queue them. A stopped queue drops
// IDs without claiming them. Enqueue never blocks on the dispatched work.
func (q *DebounceQueue) Enqueue(photoIDs []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	fresh := q.claims.ClaimNew(photoIDs)
	if len(fresh) == 0 {
		return
	}
	q.addPendingLocked(fresh)
	if q.running {
		// The active flush loop re-checks the pending set after its run
		// finishes; no new timer while busy.
		return
	}
	// Restart the window: the queue flushes after the last arrival, not the first.
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.debounce, q.flush)
}

// RunNow claims the given IDs and flushes immediately, skipping the debounce
// window. It returns when the flush loop it started has drained, or right
// away if another run is already in progress (those IDs are then picked up
// by that run's follow-up batch).
func (q *DebounceQueue) RunNow(photoIDs []string) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	fresh := q.claims.ClaimNew(photoIDs)
	if len(fresh) == 0 {
		q.mu.Unlock()
		return
	}
	q.addPendingLocked(fresh)
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.mu.Unlock()

	q.flush()
}

// Stop prevents future dispatches. An in-flight run always completes
// naturally; there is no cancellation of started work.
func (q *DebounceQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// PendingCount returns the number of IDs collected but not yet dispatched.
func (q *DebounceQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

func (q *DebounceQueue) addPendingLocked(ids []string) {
	for _, id := range ids {
		if _, ok := q.pending[id]; ok {
			continue
		}
		q.pending[id] = struct{}{}
		q.order = append(q.order, id)
	}
}

// flush dispatches pending batches until the pending set is empty, waiting
// cooldown between consecutive runs so IDs arriving during a run ride along
// in a follow-up batch. At most one flush loop makes progress at a time.
func (q *DebounceQueue) flush() {
	for {
		q.mu.Lock()
		if q.stopped || q.running || len(q.order) == 0 {
			q.mu.Unlock()
			return
		}
		batch := q.order
		q.order = nil
		q.pending = make(map[string]struct{})
		q.running = true
		q.mu.Unlock()

		q.logger.Debug("dispatching batch", "size", len(batch))
		// Runs are never cancelled mid-flight; dismissing a session hides its
		// history entry but does not stop its network calls.
		q.runner.Run(context.Background(), batch)

		q.mu.Lock()
		q.running = false
		q.mu.Unlock()

		time.Sleep(q.cooldown)
	}
}
