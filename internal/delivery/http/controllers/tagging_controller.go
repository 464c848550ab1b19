package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"phototagger/internal/delivery/http/helpers"
	"phototagger/internal/domain"
)

// TaggingController exposes the batch tagging coordinator to the SPA.
type TaggingController struct {
	Logger      *slog.Logger
	Coordinator domain.TaggingCoordinator
}

func NewTaggingController(logger *slog.Logger, coordinator domain.TaggingCoordinator) *TaggingController {
	return &TaggingController{
		Logger:      logger,
		Coordinator: coordinator,
	}
}

// QueuePhotosRequest is the request body for POST /tagging/queue,
// POST /tagging/batch, and POST /tagging/claims.
type QueuePhotosRequest struct {
	PhotoIDs []string `json:"photo_ids"`
}

// Validate implements Validator.
func (q QueuePhotosRequest) Validate() []string {
	var errs []string
	if len(q.PhotoIDs) == 0 {
		errs = append(errs, "photo_ids is required")
	}
	return errs
}

// Queue godoc
// @Summary Queue photos for debounced batch tagging
// @Description Fire-and-forget entry into the debounce queue. Photos already claimed this session are dropped.
// @Tags tagging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body QueuePhotosRequest true "Photo IDs to queue"
// @Success 202 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/queue [post]
func (c *TaggingController) Queue(w http.ResponseWriter, r *http.Request) {
	var req QueuePhotosRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.Coordinator.QueuePhotosForTagging(req.PhotoIDs)
	helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]int{"queued": len(req.PhotoIDs)})
}

// StartBatch godoc
// @Summary Start a batch tagging run now
// @Description Direct, non-debounced entry used when a user explicitly requests tagging. Photos already claimed are dropped.
// @Tags tagging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body QueuePhotosRequest true "Photo IDs to tag"
// @Success 202 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/batch [post]
func (c *TaggingController) StartBatch(w http.ResponseWriter, r *http.Request) {
	var req QueuePhotosRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	// The run outlives this request; completion is observed through the
	// session history, not this response.
	go func() {
		if err := c.Coordinator.StartBatchTagging(context.Background(), req.PhotoIDs); err != nil {
			c.Logger.Error("batch tagging failed", "err", err)
		}
	}()
	helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]int{"accepted": len(req.PhotoIDs)})
}

// ListSessions godoc
// @Summary List tagging sessions
// @Description Returns the session history, most recent first.
// @Tags tagging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains a list of TaggingSession"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/sessions [get]
func (c *TaggingController) ListSessions(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Coordinator.Sessions())
}

// DismissSession godoc
// @Summary Dismiss one tagging session
// @Description Removes the session from history. Does not stop an in-flight run.
// @Tags tagging
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/sessions/{sessionID} [delete]
func (c *TaggingController) DismissSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing sessionID")
		return
	}
	c.Coordinator.DismissSession(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// ClearSessions godoc
// @Summary Clear all tagging sessions
// @Tags tagging
// @Produce json
// @Security BearerAuth
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/sessions [delete]
func (c *TaggingController) ClearSessions(w http.ResponseWriter, r *http.Request) {
	c.Coordinator.ClearSessions()
	w.WriteHeader(http.StatusNoContent)
}

// ClaimStatusResponse is the body of GET /tagging/claims/{photoID}.
// swagger:model ClaimStatusResponse
type ClaimStatusResponse struct {
	PhotoID string `json:"photo_id"`
	Claimed bool   `json:"claimed"`
}

// GetClaim godoc
// @Summary Check whether a photo was already claimed for tagging
// @Tags tagging
// @Produce json
// @Security BearerAuth
// @Param photoID path string true "Photo ID"
// @Success 200 {object} helpers.APIResponse "data contains a ClaimStatusResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/claims/{photoID} [get]
func (c *TaggingController) GetClaim(w http.ResponseWriter, r *http.Request) {
	photoID := r.PathValue("photoID")
	if photoID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing photoID")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ClaimStatusResponse{
		PhotoID: photoID,
		Claimed: c.Coordinator.HasBeenTagged(photoID),
	})
}

// MarkClaims godoc
// @Summary Mark photos as tagged without queuing them
// @Description Used for UI-side optimistic marking after manual single-photo tagging.
// @Tags tagging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body QueuePhotosRequest true "Photo IDs to mark"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/claims [post]
func (c *TaggingController) MarkClaims(w http.ResponseWriter, r *http.Request) {
	var req QueuePhotosRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.Coordinator.MarkAsTagged(req.PhotoIDs)
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth godoc
// @Summary Read the AI proxy availability snapshot
// @Tags tagging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains a HealthStatus"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/health [get]
func (c *TaggingController) GetHealth(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Coordinator.Health())
}

// CheckHealth godoc
// @Summary Re-probe the AI proxy now
// @Tags tagging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains a HealthStatus"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tagging/health/check [post]
func (c *TaggingController) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	c.Coordinator.CheckHealth(ctx)
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Coordinator.Health())
}
