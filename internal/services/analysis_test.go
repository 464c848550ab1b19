package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phototagger/internal/domain"
)

// fakeAnalyzer implements domain.Analyzer for tests.
type fakeAnalyzer struct {
	tags  []string
	err   error
	calls int
}

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, data []byte, mimeType string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func (f *fakeAnalyzer) Model() string { return "gemini-test" }

// fakeCache is an in-memory domain.AnalysisCacheRepository.
type fakeCache struct {
	byID   map[string]*domain.AnalysisResult
	getErr error
	putErr error
	puts   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{byID: make(map[string]*domain.AnalysisResult)}
}

func (f *fakeCache) Get(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.byID[photoID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCache) Put(ctx context.Context, result *domain.AnalysisResult) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	copied := *result
	f.byID[result.PhotoID] = &copied
	return nil
}

// applyingBackend records ApplyTags calls on top of fakePhotoBackend.
type applyingBackend struct {
	fakePhotoBackend
	applied  map[string][]string
	applyErr map[string]error
	fetchErr map[string]error
}

func newApplyingBackend() *applyingBackend {
	return &applyingBackend{
		applied:  make(map[string][]string),
		applyErr: make(map[string]error),
		fetchErr: make(map[string]error),
	}
}

func (b *applyingBackend) FetchImage(ctx context.Context, photoID string) ([]byte, string, error) {
	if err := b.fetchErr[photoID]; err != nil {
		return nil, "", err
	}
	return []byte("jpeg-bytes"), "image/jpeg", nil
}

func (b *applyingBackend) ApplyTags(ctx context.Context, photoID string, tags []string) error {
	if err := b.applyErr[photoID]; err != nil {
		return err
	}
	b.applied[photoID] = tags
	return nil
}

func TestAnalysisService_Analyze(t *testing.T) {
	analyzer := &fakeAnalyzer{tags: []string{"beach", "sunrise"}}
	cache := newFakeCache()
	svc := NewAnalysisService(testLogger(), analyzer, cache, newApplyingBackend(), time.Second)

	result, err := svc.Analyze(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", result.PhotoID)
	assert.Equal(t, []string{"beach", "sunrise"}, result.Tags)
	assert.Equal(t, "gemini-test", result.Model)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, cache.puts)
}

// A cache hit serves the stored result without touching the image or the
// AI backend again.
func TestAnalysisService_AnalyzeCacheHit(t *testing.T) {
	analyzer := &fakeAnalyzer{tags: []string{"beach"}}
	cache := newFakeCache()
	svc := NewAnalysisService(testLogger(), analyzer, cache, newApplyingBackend(), time.Second)

	_, err := svc.Analyze(context.Background(), "p1")
	require.NoError(t, err)

	result, err := svc.Analyze(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, []string{"beach"}, result.Tags)
	assert.Equal(t, 1, analyzer.calls)
}

func TestAnalysisService_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(a *fakeAnalyzer, b *applyingBackend, c *fakeCache)
		wantErrIs error
	}{
		{
			name: "image fetch fails",
			setup: func(a *fakeAnalyzer, b *applyingBackend, c *fakeCache) {
				b.fetchErr["p1"] = domain.ErrNotFound
			},
			wantErrIs: domain.ErrNotFound,
		},
		{
			name: "analyzer fails",
			setup: func(a *fakeAnalyzer, b *applyingBackend, c *fakeCache) {
				a.err = domain.ErrAnalyzerUnavailable
			},
			wantErrIs: domain.ErrAnalyzerUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{tags: []string{"beach"}}
			backend := newApplyingBackend()
			cache := newFakeCache()
			tt.setup(analyzer, backend, cache)
			svc := NewAnalysisService(testLogger(), analyzer, cache, backend, time.Second)

			_, err := svc.Analyze(context.Background(), "p1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErrIs)
		})
	}
}

// Cache failures degrade to a fresh analysis; they never fail the request.
func TestAnalysisService_CacheFailuresAreNonFatal(t *testing.T) {
	analyzer := &fakeAnalyzer{tags: []string{"beach"}}
	cache := newFakeCache()
	cache.getErr = errors.New("db down")
	cache.putErr = errors.New("db down")
	svc := NewAnalysisService(testLogger(), analyzer, cache, newApplyingBackend(), time.Second)

	result, err := svc.Analyze(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"beach"}, result.Tags)
}

func TestAnalysisService_AnalyzeAndApply(t *testing.T) {
	analyzer := &fakeAnalyzer{tags: []string{"beach"}}
	backend := newApplyingBackend()
	svc := NewAnalysisService(testLogger(), analyzer, newFakeCache(), backend, time.Second)

	_, err := svc.AnalyzeAndApply(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"beach"}, backend.applied["p1"])
}

func TestAnalysisService_AnalyzeBatch(t *testing.T) {
	analyzer := &fakeAnalyzer{tags: []string{"beach"}}
	backend := newApplyingBackend()
	backend.applyErr["p2"] = errors.New("backend rejected tags")
	svc := NewAnalysisService(testLogger(), analyzer, newFakeCache(), backend, time.Second)

	result, err := svc.AnalyzeBatch(context.Background(), []string{"p1", "p2", "p3"}, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, result.Processed, result.Succeeded+result.Failed)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.Contains(t, result.Results[1].Error, "backend rejected tags")
	assert.True(t, result.Results[2].Success)
}
