package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"phototagger/internal/domain"
)

// PhotoWatcher polls the photo backend and feeds photos that newly finished
// backend processing into the debounce queue. The claim set keeps a photo
// from ever being queued twice even though the same photo keeps reappearing
// in consecutive polls.
type PhotoWatcher struct {
	logger   *slog.Logger
	photos   domain.PhotoBackend
	queue    *DebounceQueue
	claims   *ClaimSet
	health   *HealthMonitor
	interval time.Duration

	mu          sync.Mutex
	lastRefresh time.Time

	kick chan struct{}
	done chan struct{}
	once sync.Once
}

// NewPhotoWatcher returns a watcher polling photos every interval.
// interval <= 0 falls back to 10 seconds.
func NewPhotoWatcher(logger *slog.Logger, photos domain.PhotoBackend, queue *DebounceQueue, claims *ClaimSet, health *HealthMonitor, interval time.Duration) *PhotoWatcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &PhotoWatcher{
		logger:   logger,
		photos:   photos,
		queue:    queue,
		claims:   claims,
		health:   health,
		interval: interval,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start polls once immediately, then on every tick or Refresh kick until Stop.
func (w *PhotoWatcher) Start(ctx context.Context) {
	go func() {
		w.Poll(ctx)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Poll(ctx)
			case <-w.kick:
				w.Poll(ctx)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the polling loop. Safe to call more than once.
func (w *PhotoWatcher) Stop() {
	w.once.Do(func() { close(w.done) })
}

// Refresh requests an immediate re-poll. Used as the batch runner's refresh
// callback so tag changes show up without waiting for the next tick.
func (w *PhotoWatcher) Refresh() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// LastRefresh returns when the photo collection was last fetched.
func (w *PhotoWatcher) LastRefresh() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRefresh
}

// Poll fetches the collection once and queues unclaimed photos that are
// ready for tagging. Skipped entirely while the AI proxy is unavailable.
func (w *PhotoWatcher) Poll(ctx context.Context) {
	if !w.health.Status().IsAvailable {
		return
	}

	photos, err := w.photos.ListPhotos(ctx)
	if err != nil {
		w.logger.Warn("photo poll failed", "err", err)
		return
	}

	w.mu.Lock()
	w.lastRefresh = time.Now()
	w.mu.Unlock()

	var ids []string
	for _, p := range photos {
		if p.NeedsTagging() && !w.claims.HasBeenClaimed(p.ID) {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	w.logger.Info("queuing photos for tagging", "count", len(ids))
	w.queue.Enqueue(ids)
}
