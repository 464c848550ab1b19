package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"phototagger/internal/delivery/http/helpers"
	"phototagger/internal/domain"
)

// AnalysisController serves the AI-tagging proxy endpoints.
type AnalysisController struct {
	Logger  *slog.Logger
	Service domain.AnalysisService
}

func NewAnalysisController(logger *slog.Logger, svc domain.AnalysisService) *AnalysisController {
	return &AnalysisController{
		Logger:  logger,
		Service: svc,
	}
}

// HealthResponse is the body of GET /ai/health.
// swagger:model HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

// Health godoc
// @Summary AI proxy health probe
// @Description Returns 200 when the proxy is up. Callers rely on the status code only.
// @Tags ai
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains {status: ok}"
// @Router /ai/health [get]
func (c *AnalysisController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// AnalyzeRequest is the request body for POST /ai/analyze and /ai/analyze-and-apply.
type AnalyzeRequest struct {
	PhotoID string `json:"photo_id"`
}

// Validate implements Validator.
func (a AnalyzeRequest) Validate() []string {
	var errs []string
	if a.PhotoID == "" {
		errs = append(errs, "photo_id is required")
	}
	return errs
}

// Analyze godoc
// @Summary Analyze one photo
// @Description Returns AI-generated tags for a photo. Repeated calls for the same photo are served from the result cache.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Photo to analyze"
// @Success 200 {object} helpers.APIResponse "data contains an AnalysisResult"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ai/analyze [post]
func (c *AnalysisController) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Analyze(r.Context(), req.PhotoID)
	if err != nil {
		c.writeAnalysisError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// AnalyzeAndApply godoc
// @Summary Analyze one photo and apply the tags
// @Description Analyzes a photo and writes the resulting tags back to the photo backend.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Photo to analyze"
// @Success 200 {object} helpers.APIResponse "data contains an AnalysisResult"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ai/analyze-and-apply [post]
func (c *AnalysisController) AnalyzeAndApply(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.AnalyzeAndApply(r.Context(), req.PhotoID)
	if err != nil {
		c.writeAnalysisError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// AnalyzeBatchRequest is the request body for POST /ai/analyze-batch.
type AnalyzeBatchRequest struct {
	PhotoIDs     []string `json:"photo_ids"`
	SubBatchSize int      `json:"sub_batch_size"`
}

// Validate implements Validator.
func (a AnalyzeBatchRequest) Validate() []string {
	var errs []string
	if len(a.PhotoIDs) == 0 {
		errs = append(errs, "photo_ids is required")
	}
	if a.SubBatchSize < 0 {
		errs = append(errs, "sub_batch_size must be positive")
	}
	return errs
}

// AnalyzeBatch godoc
// @Summary Analyze and apply tags for a batch of photos
// @Description Processes the photos in sequential sub-batches. A failing photo is recorded in results and never aborts the batch.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body AnalyzeBatchRequest true "Photos to analyze"
// @Success 200 {object} helpers.APIResponse "data contains a BatchAnalysisResult"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ai/analyze-batch [post]
func (c *AnalysisController) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.AnalyzeBatch(r.Context(), req.PhotoIDs, req.SubBatchSize)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

func (c *AnalysisController) writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "photo not found")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
