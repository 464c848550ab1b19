package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"phototagger/internal/delivery/http/controllers"
	"phototagger/internal/delivery/http/middleware"
	"phototagger/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// The /tagging routes require a verified bearer token; /ai/health stays open
// for probes.
func NewRouter(analysisController *controllers.AnalysisController, taggingController *controllers.TaggingController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// AI proxy. Left open: the coordinator reaches these over HTTP without a
	// user token, matching the proxy's standalone deployment.
	mux.HandleFunc("GET /ai/health", analysisController.Health)
	mux.HandleFunc("POST /ai/analyze", analysisController.Analyze)
	mux.HandleFunc("POST /ai/analyze-and-apply", analysisController.AnalyzeAndApply)
	mux.HandleFunc("POST /ai/analyze-batch", analysisController.AnalyzeBatch)

	// Batch tagging coordinator
	mux.HandleFunc("POST /tagging/queue", requireAuth(taggingController.Queue))
	mux.HandleFunc("POST /tagging/batch", requireAuth(taggingController.StartBatch))
	mux.HandleFunc("GET /tagging/sessions", requireAuth(taggingController.ListSessions))
	mux.HandleFunc("DELETE /tagging/sessions/{sessionID}", requireAuth(taggingController.DismissSession))
	mux.HandleFunc("DELETE /tagging/sessions", requireAuth(taggingController.ClearSessions))
	mux.HandleFunc("GET /tagging/claims/{photoID}", requireAuth(taggingController.GetClaim))
	mux.HandleFunc("POST /tagging/claims", requireAuth(taggingController.MarkClaims))
	mux.HandleFunc("GET /tagging/health", requireAuth(taggingController.GetHealth))
	mux.HandleFunc("POST /tagging/health/check", requireAuth(taggingController.CheckHealth))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
