package domain

import (
	"context"
	"time"
)

// SessionStatus is the lifecycle state of a tagging session.
// Transitions are monotonic: in_progress -> completed or failed.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// TaggingSession tracks one batch-tagging run from start to terminal status.
// Counters are monotonically non-decreasing and satisfy
// Processed == Succeeded + Failed after every update.
// swagger:model TaggingSession
type TaggingSession struct {
	ID           string        `json:"id"`
	Status       SessionStatus `json:"status"`
	Total        int           `json:"total"`
	Processed    int           `json:"processed"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	CurrentChunk int           `json:"current_chunk"`
	TotalChunks  int           `json:"total_chunks"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// NewTaggingSession returns an in-progress session with zeroed counters.
// ID is set by the session tracker on start.
func NewTaggingSession(total, totalChunks int, startedAt time.Time) *TaggingSession {
	return &TaggingSession{
		Status:       SessionStatusInProgress,
		Total:        total,
		TotalChunks:  totalChunks,
		CurrentChunk: 1,
		StartedAt:    startedAt,
	}
}

// SessionUpdate is a partial update merged into a session by the tracker.
// Nil fields are left unchanged.
type SessionUpdate struct {
	Status       *SessionStatus
	Processed    *int
	Succeeded    *int
	Failed       *int
	CurrentChunk *int
	CompletedAt  *time.Time
}

// TaggingCoordinator is the only interface the rest of the application
// should use to drive batch tagging.
type TaggingCoordinator interface {
	// QueuePhotosForTagging is the fire-and-forget debounced entry point.
	QueuePhotosForTagging(photoIDs []string)
	// StartBatchTagging claims and runs the given photos now, skipping the
	// debounce window. It returns once the dispatched work has finished.
	StartBatchTagging(ctx context.Context, photoIDs []string) error
	// HasBeenTagged reports whether the photo was already claimed this session.
	HasBeenTagged(photoID string) bool
	// MarkAsTagged claims photos without queuing them (UI optimistic marking).
	MarkAsTagged(photoIDs []string)
	Sessions() []TaggingSession
	DismissSession(sessionID string)
	ClearSessions()
	Health() HealthStatus
	CheckHealth(ctx context.Context) bool
}
