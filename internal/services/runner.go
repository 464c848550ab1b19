package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"phototagger/internal/domain"
)

// BatchRunner drives one batch-tagging run: it splits the input into
// fixed-size chunks, calls the AI proxy once per chunk in order, and updates
// the session tracker after every chunk so the UI sees live progress.
type BatchRunner struct {
	logger       *slog.Logger
	proxy        domain.AIProxyClient
	tracker      *SessionTracker
	chunkSize    int
	subBatchSize int

	onRefresh func()
	now       func() time.Time
}

// NewBatchRunner returns a runner with the given chunk sizes.
// chunkSize <= 0 falls back to 10, subBatchSize <= 0 to 5.
func NewBatchRunner(logger *slog.Logger, proxy domain.AIProxyClient, tracker *SessionTracker, chunkSize, subBatchSize int) *BatchRunner {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	if subBatchSize <= 0 {
		subBatchSize = 5
	}
	return &BatchRunner{
		logger:       logger,
		proxy:        proxy,
		tracker:      tracker,
		chunkSize:    chunkSize,
		subBatchSize: subBatchSize,
		now:          time.Now,
	}
}

// RegisterRefresh sets the callback invoked exactly once when a run exits,
// on every exit path. Consumers use it as the "data may have changed,
// re-fetch" signal.
func (r *BatchRunner) RegisterRefresh(fn func()) {
	r.onRefresh = fn
}

// Run processes the already-deduplicated photo IDs. Callers must not pass an
// empty list. Run never returns an error: a chunk that fails entirely is
// counted as that many failed photos and the remaining chunks still run.
func (r *BatchRunner) Run(ctx context.Context, photoIDs []string) {
	defer func() {
		if r.onRefresh != nil {
			r.onRefresh()
		}
	}()

	chunks := chunkIDs(photoIDs, r.chunkSize)
	sessionID := r.tracker.StartSession(len(photoIDs), len(chunks))
	r.logger.Info("batch tagging started",
		"session_id", sessionID,
		"total", len(photoIDs),
		"chunks", len(chunks),
	)

	defer func() {
		if p := recover(); p != nil {
			// A failure outside per-chunk handling marks the whole session
			// failed; it must not propagate past the debounce queue.
			r.logger.Error("batch tagging run panicked", "session_id", sessionID, "panic", fmt.Sprint(p))
			r.finish(sessionID, domain.SessionStatusFailed)
		}
	}()

	processed, succeeded, failed := 0, 0, 0
	for i, chunk := range chunks {
		currentChunk := i + 1
		// Mark the chunk as current before the call so readers see
		// "processing chunk N" while the request is in flight.
		r.tracker.UpdateSession(sessionID, domain.SessionUpdate{CurrentChunk: &currentChunk})

		result, err := r.proxy.AnalyzeBatch(ctx, chunk, r.subBatchSize)
		if err != nil {
			// The whole chunk failed in transport; count every photo in it
			// as failed and keep going.
			r.logger.Warn("chunk failed",
				"session_id", sessionID,
				"chunk", currentChunk,
				"size", len(chunk),
				"err", err,
			)
			processed += len(chunk)
			failed += len(chunk)
		} else {
			processed += result.Processed
			succeeded += result.Succeeded
			failed += result.Failed
			for _, item := range result.Results {
				if !item.Success {
					r.logger.Warn("photo tagging failed", "session_id", sessionID, "photo_id", item.PhotoID, "err", item.Error)
				}
			}
		}

		r.tracker.UpdateSession(sessionID, domain.SessionUpdate{
			Processed: &processed,
			Succeeded: &succeeded,
			Failed:    &failed,
		})
	}

	r.finish(sessionID, domain.SessionStatusCompleted)
	r.logger.Info("batch tagging finished",
		"session_id", sessionID,
		"processed", processed,
		"succeeded", succeeded,
		"failed", failed,
	)
}

func (r *BatchRunner) finish(sessionID string, status domain.SessionStatus) {
	completedAt := r.now()
	r.tracker.UpdateSession(sessionID, domain.SessionUpdate{
		Status:      &status,
		CompletedAt: &completedAt,
	})
}

// chunkIDs partitions ids into slices of at most size elements, preserving order.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
