package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"phototagger/internal/domain"
)

type analysisService struct {
	logger         *slog.Logger
	analyzer       domain.Analyzer
	cache          domain.AnalysisCacheRepository
	photos         domain.PhotoBackend
	contextTimeout time.Duration
}

// NewAnalysisService returns the business logic behind the analyze endpoints.
func NewAnalysisService(logger *slog.Logger, analyzer domain.Analyzer, cache domain.AnalysisCacheRepository, photos domain.PhotoBackend, timeout time.Duration) domain.AnalysisService {
	return &analysisService{
		logger:         logger,
		analyzer:       analyzer,
		cache:          cache,
		photos:         photos,
		contextTimeout: timeout,
	}
}

// Analyze returns tags for one photo, serving repeated requests from the
// result cache so the paid AI backend is only called once per photo.
func (s *analysisService) Analyze(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cached, err := s.cache.Get(ctx, photoID)
	if err == nil {
		cached.FromCache = true
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("analysis cache lookup failed", "photo_id", photoID, "err", err)
	}

	data, mimeType, err := s.photos.FetchImage(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", photoID, err)
	}

	tags, err := s.analyzer.AnalyzeImage(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("analyze image %s: %w", photoID, err)
	}

	result := &domain.AnalysisResult{
		PhotoID:    photoID,
		Tags:       tags,
		Model:      s.analyzer.Model(),
		AnalyzedAt: time.Now(),
	}
	if err := s.cache.Put(ctx, result); err != nil {
		// Cache write failure never fails the analysis.
		s.logger.Warn("analysis cache store failed", "photo_id", photoID, "err", err)
	}
	return result, nil
}

// AnalyzeAndApply analyzes one photo and writes the tags back through the
// photo backend.
func (s *analysisService) AnalyzeAndApply(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	result, err := s.Analyze(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if err := s.photos.ApplyTags(ctx, photoID, result.Tags); err != nil {
		return nil, fmt.Errorf("apply tags %s: %w", photoID, err)
	}
	return result, nil
}

// AnalyzeBatch runs AnalyzeAndApply over the given photos in sequential
// sub-batches. A failing photo is recorded and never aborts the rest.
func (s *analysisService) AnalyzeBatch(ctx context.Context, photoIDs []string, subBatchSize int) (*domain.BatchAnalysisResult, error) {
	if subBatchSize <= 0 {
		subBatchSize = 5
	}

	out := &domain.BatchAnalysisResult{Results: make([]domain.BatchItemResult, 0, len(photoIDs))}
	for _, batch := range chunkIDs(photoIDs, subBatchSize) {
		for _, photoID := range batch {
			result, err := s.AnalyzeAndApply(ctx, photoID)
			out.Processed++
			if err != nil {
				out.Failed++
				out.Results = append(out.Results, domain.BatchItemResult{PhotoID: photoID, Error: err.Error()})
				s.logger.Warn("batch item failed", "photo_id", photoID, "err", err)
				continue
			}
			out.Succeeded++
			out.Results = append(out.Results, domain.BatchItemResult{PhotoID: photoID, Success: true, Tags: result.Tags})
		}
	}
	return out, nil
}
