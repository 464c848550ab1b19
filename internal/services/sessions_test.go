package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phototagger/internal/domain"
)

func intPtr(v int) *int { return &v }

func statusPtr(s domain.SessionStatus) *domain.SessionStatus { return &s }

func TestSessionTracker_StartSession(t *testing.T) {
	tr := NewSessionTracker(50)

	id := tr.StartSession(25, 3)
	require.NotEmpty(t, id)

	sessions := tr.List()
	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, id, s.ID)
	assert.Equal(t, domain.SessionStatusInProgress, s.Status)
	assert.Equal(t, 25, s.Total)
	assert.Equal(t, 3, s.TotalChunks)
	assert.Equal(t, 1, s.CurrentChunk)
	assert.Zero(t, s.Processed)
	assert.False(t, s.StartedAt.IsZero())
	assert.Nil(t, s.CompletedAt)
}

func TestSessionTracker_MostRecentFirst(t *testing.T) {
	tr := NewSessionTracker(50)

	first := tr.StartSession(1, 1)
	second := tr.StartSession(2, 1)

	sessions := tr.List()
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID)
	assert.Equal(t, first, sessions[1].ID)
}

func TestSessionTracker_UpdateSession(t *testing.T) {
	tr := NewSessionTracker(50)
	id := tr.StartSession(10, 1)

	tr.UpdateSession(id, domain.SessionUpdate{
		Processed: intPtr(10),
		Succeeded: intPtr(7),
		Failed:    intPtr(3),
	})

	s := tr.List()[0]
	assert.Equal(t, 10, s.Processed)
	assert.Equal(t, 7, s.Succeeded)
	assert.Equal(t, 3, s.Failed)
	assert.Equal(t, s.Processed, s.Succeeded+s.Failed)
	// Untouched fields keep their values.
	assert.Equal(t, domain.SessionStatusInProgress, s.Status)
	assert.Equal(t, 10, s.Total)
}

func TestSessionTracker_UpdateDismissedSessionIsNoop(t *testing.T) {
	tr := NewSessionTracker(50)
	id := tr.StartSession(5, 1)
	tr.DismissSession(id)

	// Must neither panic nor resurrect the dismissed session.
	tr.UpdateSession(id, domain.SessionUpdate{
		Status:    statusPtr(domain.SessionStatusCompleted),
		Processed: intPtr(5),
	})
	assert.Empty(t, tr.List())
}

func TestSessionTracker_CompletedAtSetOnce(t *testing.T) {
	tr := NewSessionTracker(50)
	id := tr.StartSession(5, 1)

	first := time.Now()
	tr.UpdateSession(id, domain.SessionUpdate{CompletedAt: &first})
	later := first.Add(time.Hour)
	tr.UpdateSession(id, domain.SessionUpdate{CompletedAt: &later})

	s := tr.List()[0]
	require.NotNil(t, s.CompletedAt)
	assert.True(t, s.CompletedAt.Equal(first))
}

func TestSessionTracker_DismissUnknownIsNoop(t *testing.T) {
	tr := NewSessionTracker(50)
	tr.StartSession(1, 1)
	tr.DismissSession("missing")
	assert.Len(t, tr.List(), 1)
}

func TestSessionTracker_ClearAll(t *testing.T) {
	tr := NewSessionTracker(50)
	tr.StartSession(1, 1)
	tr.StartSession(2, 1)
	tr.ClearAll()
	assert.Empty(t, tr.List())
}

func TestSessionTracker_RetentionCap(t *testing.T) {
	tr := NewSessionTracker(3)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, tr.StartSession(i+1, 1))
	}

	sessions := tr.List()
	require.Len(t, sessions, 3)
	// Newest retained, oldest dropped from the tail.
	assert.Equal(t, ids[4], sessions[0].ID)
	assert.Equal(t, ids[2], sessions[2].ID)
}
