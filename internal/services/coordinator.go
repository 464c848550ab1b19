package services

import (
	"context"
	"log/slog"
	"time"

	"phototagger/internal/domain"
)

// CoordinatorConfig carries the coordinator tunables.
type CoordinatorConfig struct {
	DebounceWindow time.Duration
	RunCooldown    time.Duration
	ChunkSize      int
	SubBatchSize   int
	HealthInterval time.Duration
	PollInterval   time.Duration
	MaxSessions    int
}

// Coordinator owns all batch-tagging state for the process: the claim set,
// the debounce queue, the batch runner, the session tracker, the health
// monitor, and the photo watcher. Exactly one coordinator exists per running
// instance; every UI surface funnels through it.
type Coordinator struct {
	logger  *slog.Logger
	claims  *ClaimSet
	tracker *SessionTracker
	runner  *BatchRunner
	queue   *DebounceQueue
	health  *HealthMonitor
	watcher *PhotoWatcher

	cancel context.CancelFunc
}

// NewCoordinator wires the coordinator from its collaborators. The returned
// coordinator is idle until Start.
func NewCoordinator(logger *slog.Logger, proxy domain.AIProxyClient, photos domain.PhotoBackend, cfg CoordinatorConfig) *Coordinator {
	claims := NewClaimSet()
	tracker := NewSessionTracker(cfg.MaxSessions)
	runner := NewBatchRunner(logger, proxy, tracker, cfg.ChunkSize, cfg.SubBatchSize)
	queue := NewDebounceQueue(logger, claims, runner, cfg.DebounceWindow, cfg.RunCooldown)
	health := NewHealthMonitor(logger, proxy, cfg.HealthInterval)
	watcher := NewPhotoWatcher(logger, photos, queue, claims, health, cfg.PollInterval)
	runner.RegisterRefresh(watcher.Refresh)

	return &Coordinator{
		logger:  logger,
		claims:  claims,
		tracker: tracker,
		runner:  runner,
		queue:   queue,
		health:  health,
		watcher: watcher,
	}
}

// Start launches the health monitor and photo watcher loops.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.health.Start(ctx)
	c.watcher.Start(ctx)
	c.logger.Info("batch tagging coordinator started")
}

// Stop halts the background loops and prevents future dispatches. An
// in-flight batch run completes naturally.
func (c *Coordinator) Stop() {
	c.queue.Stop()
	c.watcher.Stop()
	c.health.Stop()
	if c.cancel != nil {
		c.cancel()
	}
	c.logger.Info("batch tagging coordinator stopped")
}

// QueuePhotosForTagging is the fire-and-forget debounced entry point.
func (c *Coordinator) QueuePhotosForTagging(photoIDs []string) {
	c.queue.Enqueue(photoIDs)
}

// StartBatchTagging claims and dispatches the given photos without waiting
// out the debounce window, used when a user explicitly asks to tag them now.
func (c *Coordinator) StartBatchTagging(ctx context.Context, photoIDs []string) error {
	c.queue.RunNow(photoIDs)
	return nil
}

// HasBeenTagged reports whether the photo was already claimed this session.
func (c *Coordinator) HasBeenTagged(photoID string) bool {
	return c.claims.HasBeenClaimed(photoID)
}

// MarkAsTagged claims photos without queuing them, for UI-side optimistic
// marking after manual single-photo tagging.
func (c *Coordinator) MarkAsTagged(photoIDs []string) {
	c.claims.Claim(photoIDs)
}

// Sessions returns the session history, most-recent-first.
func (c *Coordinator) Sessions() []domain.TaggingSession {
	return c.tracker.List()
}

// DismissSession removes one session from history. It does not stop the
// session's underlying network calls.
func (c *Coordinator) DismissSession(sessionID string) {
	c.tracker.DismissSession(sessionID)
}

// ClearSessions empties the session history.
func (c *Coordinator) ClearSessions() {
	c.tracker.ClearAll()
}

// Health returns the AI proxy availability snapshot.
func (c *Coordinator) Health() domain.HealthStatus {
	return c.health.Status()
}

// CheckHealth performs one manual probe and returns availability.
func (c *Coordinator) CheckHealth(ctx context.Context) bool {
	return c.health.Check(ctx)
}

// LastRefresh returns when the photo collection was last fetched.
func (c *Coordinator) LastRefresh() time.Time {
	return c.watcher.LastRefresh()
}
