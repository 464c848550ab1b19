package domain

import (
	"context"
	"time"
)

// AnalysisResult is the outcome of analyzing a single photo.
// swagger:model AnalysisResult
type AnalysisResult struct {
	PhotoID    string    `json:"photo_id"`
	Tags       []string  `json:"tags"`
	Model      string    `json:"model"`
	FromCache  bool      `json:"from_cache"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// BatchItemResult is the per-photo entry in a batch analysis result.
// swagger:model BatchItemResult
type BatchItemResult struct {
	PhotoID string   `json:"photo_id"`
	Success bool     `json:"success"`
	Tags    []string `json:"tags,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// BatchAnalysisResult aggregates a batch analyze-and-apply call.
// Processed == Succeeded + Failed == len(Results).
// swagger:model BatchAnalysisResult
type BatchAnalysisResult struct {
	Processed int               `json:"processed"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

// HealthStatus is the AI proxy availability snapshot kept by the health monitor.
// swagger:model HealthStatus
type HealthStatus struct {
	IsAvailable bool      `json:"is_available"`
	IsChecking  bool      `json:"is_checking"`
	LastChecked time.Time `json:"last_checked"`
	Error       string    `json:"error,omitempty"`
}

// Analyzer produces tags for one image. Implementations call a generative
// AI backend.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) ([]string, error)
	Model() string
}

// AnalysisCacheRepository stores analysis results keyed by photo ID so
// repeated analyze calls do not re-spend paid API requests.
type AnalysisCacheRepository interface {
	Get(ctx context.Context, photoID string) (*AnalysisResult, error)
	Put(ctx context.Context, result *AnalysisResult) error
}

// AnalysisService is the proxy-side business logic behind the analyze endpoints.
type AnalysisService interface {
	Analyze(ctx context.Context, photoID string) (*AnalysisResult, error)
	AnalyzeAndApply(ctx context.Context, photoID string) (*AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, photoIDs []string, subBatchSize int) (*BatchAnalysisResult, error)
}

// AIProxyClient is the coordinator-side client for the AI-tagging proxy.
type AIProxyClient interface {
	// CheckHealth performs one probe; any non-2xx or transport error is returned.
	CheckHealth(ctx context.Context) error
	Analyze(ctx context.Context, photoID string) (*AnalysisResult, error)
	AnalyzeAndApply(ctx context.Context, photoID string) (*AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, photoIDs []string, subBatchSize int) (*BatchAnalysisResult, error)
}
