package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"phototagger/internal/domain"
)

// SessionTracker keeps the ordered history of tagging sessions started this
// process lifetime, most-recent-first. History is bounded: when a new session
// would exceed maxSessions, the oldest entries are dropped from the tail.
// Dismiss and clear remain explicit caller actions.
type SessionTracker struct {
	mu          sync.RWMutex
	sessions    []*domain.TaggingSession
	maxSessions int
	now         func() time.Time
}

// NewSessionTracker returns a tracker bounded to maxSessions entries.
// maxSessions <= 0 falls back to 50.
func NewSessionTracker(maxSessions int) *SessionTracker {
	if maxSessions <= 0 {
		maxSessions = 50
	}
	return &SessionTracker{
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// StartSession creates an in-progress session and prepends it to history.
func (t *SessionTracker) StartSession(total, totalChunks int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := domain.NewTaggingSession(total, totalChunks, t.now())
	s.ID = uuid.NewString()
	t.sessions = append([]*domain.TaggingSession{s}, t.sessions...)
	if len(t.sessions) > t.maxSessions {
		t.sessions = t.sessions[:t.maxSessions]
	}
	return s.ID
}

// UpdateSession merges the partial update into the matching session.
// Updating a dismissed or unknown session is a silent no-op: the session may
// have been removed by the user while its run was still executing.
func (t *SessionTracker) UpdateSession(sessionID string, upd domain.SessionUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.sessions {
		if s.ID != sessionID {
			continue
		}
		if upd.Status != nil {
			s.Status = *upd.Status
		}
		if upd.Processed != nil {
			s.Processed = *upd.Processed
		}
		if upd.Succeeded != nil {
			s.Succeeded = *upd.Succeeded
		}
		if upd.Failed != nil {
			s.Failed = *upd.Failed
		}
		if upd.CurrentChunk != nil {
			s.CurrentChunk = *upd.CurrentChunk
		}
		if upd.CompletedAt != nil && s.CompletedAt == nil {
			completed := *upd.CompletedAt
			s.CompletedAt = &completed
		}
		return
	}
}

// DismissSession removes one session from history.
func (t *SessionTracker) DismissSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.sessions {
		if s.ID == sessionID {
			t.sessions = append(t.sessions[:i], t.sessions[i+1:]...)
			return
		}
	}
}

// ClearAll empties the session history.
func (t *SessionTracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions = nil
}

// List returns a snapshot of the history, most-recent-first.
func (t *SessionTracker) List() []domain.TaggingSession {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.TaggingSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	return out
}
