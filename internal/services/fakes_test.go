package services

import (
	"context"
	"sync"

	"phototagger/internal/domain"
)

// fakeProxy is an in-memory domain.AIProxyClient for tests. Without a
// batchFn every photo in a batch succeeds.
type fakeProxy struct {
	mu          sync.Mutex
	batches     [][]string
	healthCalls int
	healthErr   error
	batchFn     func(call int, photoIDs []string) (*domain.BatchAnalysisResult, error)
}

func (f *fakeProxy) CheckHealth(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthCalls++
	return f.healthErr
}

func (f *fakeProxy) Analyze(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	return &domain.AnalysisResult{PhotoID: photoID, Tags: []string{"tag"}}, nil
}

func (f *fakeProxy) AnalyzeAndApply(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	return f.Analyze(ctx, photoID)
}

func (f *fakeProxy) AnalyzeBatch(ctx context.Context, photoIDs []string, subBatchSize int) (*domain.BatchAnalysisResult, error) {
	f.mu.Lock()
	call := len(f.batches)
	f.batches = append(f.batches, append([]string(nil), photoIDs...))
	fn := f.batchFn
	f.mu.Unlock()

	if fn != nil {
		return fn(call, photoIDs)
	}
	return allSucceeded(photoIDs), nil
}

func (f *fakeProxy) batchCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.batches))
	copy(out, f.batches)
	return out
}

func allSucceeded(photoIDs []string) *domain.BatchAnalysisResult {
	out := &domain.BatchAnalysisResult{Processed: len(photoIDs), Succeeded: len(photoIDs)}
	for _, id := range photoIDs {
		out.Results = append(out.Results, domain.BatchItemResult{PhotoID: id, Success: true, Tags: []string{"tag"}})
	}
	return out
}

// fakePhotoBackend is an in-memory domain.PhotoBackend for tests.
type fakePhotoBackend struct {
	mu      sync.Mutex
	photos  []*domain.Photo
	listErr error
	lists   int
}

func (f *fakePhotoBackend) ListPhotos(ctx context.Context) ([]*domain.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*domain.Photo(nil), f.photos...), nil
}

func (f *fakePhotoBackend) FetchImage(ctx context.Context, photoID string) ([]byte, string, error) {
	return []byte("jpeg-bytes"), "image/jpeg", nil
}

func (f *fakePhotoBackend) ApplyTags(ctx context.Context, photoID string, tags []string) error {
	return nil
}

func (f *fakePhotoBackend) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
