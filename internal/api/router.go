package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// NewRouter mounts the pipeline endpoints under /api. swaggerURL points the
// UI at the generated doc.json.
func NewRouter(a *API, swaggerURL string) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	if swaggerURL == "" {
		swaggerURL = "/swagger/doc.json"
	}
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL(swaggerURL),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := a.svc.Ping(r.Context()); err != nil {
			a.log.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	api := http.NewServeMux()

	// Requisitions
	api.HandleFunc("/api/requisitions", a.RequisitionsHandler)
	api.HandleFunc("/api/requisitions/{id}", a.RequisitionHandler)

	// Candidates & assessments
	api.HandleFunc("/api/candidates", a.CandidatesHandler)
	api.HandleFunc("/api/candidates/{id}", a.CandidateHandler)
	api.HandleFunc("/api/candidates/{id}/status", a.CandidateStatusHandler)
	api.HandleFunc("/api/candidates/{id}/score", a.ScoreCandidateHandler)
	api.HandleFunc("/api/candidates/{id}/assessments", a.AssessmentsHandler)
	api.HandleFunc("/api/candidates/{id}/resume", a.ResumeUploadHandler)

	// Interviews
	api.HandleFunc("/api/interviews", a.InterviewsHandler)
	api.HandleFunc("/api/interviews/{id}", a.InterviewHandler)
	api.HandleFunc("/api/interviews/{id}/feedback", a.FeedbackHandler)
	api.HandleFunc("/api/interviews/{id}/complete", a.CompleteInterviewHandler)

	// Offers
	api.HandleFunc("/api/offers", a.OffersHandler)
	api.HandleFunc("/api/offers/{id}", a.OfferHandler)
	api.HandleFunc("/api/offers/{id}/transition", a.OfferTransitionHandler)

	mux.Handle("/api/", withLogging(a.log, withTenant(api)))
	return mux
}
