package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"phototagger/internal/domain"
)

type analysisCacheRepository struct {
	DB *sql.DB
}

// NewAnalysisCacheRepository returns a domain.AnalysisCacheRepository
// implemented with Postgres.
func NewAnalysisCacheRepository(db *sql.DB) domain.AnalysisCacheRepository {
	return &analysisCacheRepository{DB: db}
}

func (r *analysisCacheRepository) Get(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	result := domain.AnalysisResult{PhotoID: photoID}
	err := r.DB.QueryRowContext(ctx,
		`SELECT tags, model, analyzed_at FROM analysis_results WHERE photo_id = $1`,
		photoID).Scan(pq.Array(&result.Tags), &result.Model, &result.AnalyzedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *analysisCacheRepository) Put(ctx context.Context, result *domain.AnalysisResult) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO analysis_results (photo_id, tags, model, analyzed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (photo_id) DO UPDATE SET tags = $2, model = $3, analyzed_at = $4`,
		result.PhotoID, pq.Array(result.Tags), result.Model, result.AnalyzedAt)
	return err
}
