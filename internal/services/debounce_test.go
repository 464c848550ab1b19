package services

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phototagger/internal/domain"
)

func newTestQueue(t *testing.T, proxy *fakeProxy, window, cooldown time.Duration) (*DebounceQueue, *SessionTracker) {
	t.Helper()
	claims := NewClaimSet()
	tracker := NewSessionTracker(50)
	runner := NewBatchRunner(testLogger(), proxy, tracker, 10, 5)
	return NewDebounceQueue(testLogger(), claims, runner, window, cooldown), tracker
}

func flatten(batches [][]string) []string {
	var out []string
	for _, b := range batches {
		out = append(out, b...)
	}
	sort.Strings(out)
	return out
}

// Several enqueues inside one debounce window coalesce into exactly one run
// containing the union of all ID sets.
func TestDebounceQueue_Coalescing(t *testing.T) {
	proxy := &fakeProxy{}
	q, _ := newTestQueue(t, proxy, 60*time.Millisecond, 5*time.Millisecond)

	q.Enqueue([]string{"p1"})
	time.Sleep(20 * time.Millisecond)
	q.Enqueue([]string{"p2"})
	time.Sleep(20 * time.Millisecond)
	q.Enqueue([]string{"p3"})

	// Still inside the window of the last arrival: nothing dispatched yet.
	assert.Empty(t, proxy.batchCalls())

	require.Eventually(t, func() bool {
		return len(proxy.batchCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"p1", "p2", "p3"}, flatten(proxy.batchCalls()))

	// No further runs appear afterwards.
	time.Sleep(150 * time.Millisecond)
	assert.Len(t, proxy.batchCalls(), 1)
}

// Overlapping enqueues never put the same ID in two dispatched batches.
func TestDebounceQueue_AtMostOncePerPhoto(t *testing.T) {
	proxy := &fakeProxy{}
	q, _ := newTestQueue(t, proxy, 20*time.Millisecond, 5*time.Millisecond)

	q.Enqueue([]string{"p1", "p2"})
	q.Enqueue([]string{"p2", "p3"})
	q.Enqueue([]string{"p1", "p3", "p4"})

	require.Eventually(t, func() bool {
		return len(proxy.batchCalls()) >= 1 && q.PendingCount() == 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, flatten(proxy.batchCalls()))
}

// IDs enqueued while a run is in progress must not start a concurrent run;
// they ride in a follow-up batch after the cooldown.
func TestDebounceQueue_BusyFollowUp(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	proxy := &fakeProxy{}
	proxy.batchFn = func(call int, ids []string) (*domain.BatchAnalysisResult, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		return allSucceeded(ids), nil
	}
	q, tracker := newTestQueue(t, proxy, 10*time.Millisecond, 5*time.Millisecond)

	q.Enqueue([]string{"p1"})
	<-entered

	// A run is now blocked in flight; these must wait for it.
	q.Enqueue([]string{"p2", "p3"})
	time.Sleep(30 * time.Millisecond)
	require.Len(t, proxy.batchCalls(), 1)

	close(release)
	require.Eventually(t, func() bool {
		return len(proxy.batchCalls()) == 2
	}, time.Second, 5*time.Millisecond)

	calls := proxy.batchCalls()
	assert.Equal(t, []string{"p1"}, calls[0])
	assert.ElementsMatch(t, []string{"p2", "p3"}, calls[1])

	require.Eventually(t, func() bool {
		return len(tracker.List()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDebounceQueue_AllClaimedIsNoop(t *testing.T) {
	proxy := &fakeProxy{}
	claims := NewClaimSet()
	claims.Claim([]string{"p1", "p2"})
	tracker := NewSessionTracker(50)
	runner := NewBatchRunner(testLogger(), proxy, tracker, 10, 5)
	q := NewDebounceQueue(testLogger(), claims, runner, 10*time.Millisecond, 5*time.Millisecond)

	q.Enqueue([]string{"p1", "p2"})
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, proxy.batchCalls())
	assert.Empty(t, tracker.List())
}

// RunNow skips the debounce window and waits for the dispatched work.
func TestDebounceQueue_RunNow(t *testing.T) {
	proxy := &fakeProxy{}
	q, tracker := newTestQueue(t, proxy, time.Hour, 5*time.Millisecond)

	q.RunNow([]string{"p1", "p2"})

	require.Len(t, proxy.batchCalls(), 1)
	assert.Equal(t, []string{"p1", "p2"}, proxy.batchCalls()[0])
	require.Len(t, tracker.List(), 1)
	assert.Equal(t, domain.SessionStatusCompleted, tracker.List()[0].Status)
}

func TestDebounceQueue_StopPreventsDispatch(t *testing.T) {
	proxy := &fakeProxy{}
	q, _ := newTestQueue(t, proxy, 10*time.Millisecond, 5*time.Millisecond)

	q.Enqueue([]string{"p1"})
	q.Stop()
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, proxy.batchCalls())

	// Later enqueues are ignored outright.
	q.Enqueue([]string{"p2"})
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, proxy.batchCalls())
}

// IDs arriving after Stop must not be claimed: they were never dispatched,
// so a later poll or restart must still be able to pick them up.
func TestDebounceQueue_StoppedQueueDoesNotClaim(t *testing.T) {
	proxy := &fakeProxy{}
	claims := NewClaimSet()
	tracker := NewSessionTracker(50)
	runner := NewBatchRunner(testLogger(), proxy, tracker, 10, 5)
	q := NewDebounceQueue(testLogger(), claims, runner, 10*time.Millisecond, 5*time.Millisecond)

	q.Stop()
	q.Enqueue([]string{"p1", "p2"})
	q.RunNow([]string{"p3"})

	assert.Empty(t, proxy.batchCalls())
	assert.False(t, claims.HasBeenClaimed("p1"))
	assert.False(t, claims.HasBeenClaimed("p2"))
	assert.False(t, claims.HasBeenClaimed("p3"))
	assert.Zero(t, q.PendingCount())
}
