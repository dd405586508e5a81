package api

import (
	"net/http"
	"time"

	"hiring-pipeline/internal/domain"
)

type interviewRequest struct {
	CandidateID          string     `json:"candidate_id"`
	Round                int        `json:"round"`
	Type                 string     `json:"interview_type"`
	ScheduledAt          *time.Time `json:"scheduled_at"`
	ExpectedInterviewers []string   `json:"expected_interviewers"`
}

// InterviewsHandler schedules an interview round
// @Summary Schedule interview
// @Tags interviews
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param interview body interviewRequest true "Interview"
// @Success 201 {object} response
// @Failure 422 {object} response
// @Router /interviews [post]
func (a *API) InterviewsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req interviewRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	tenant := tenantFrom(r.Context())
	res, err := a.svc.ScheduleInterview(r.Context(), domain.Interview{
		TenantID:             tenant,
		CandidateID:          req.CandidateID,
		Round:                req.Round,
		Type:                 req.Type,
		ScheduledAt:          req.ScheduledAt,
		ExpectedInterviewers: req.ExpectedInterviewers,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// InterviewHandler returns one interview
// @Summary Get interview
// @Tags interviews
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Interview ID"
// @Success 200 {object} response
// @Failure 404 {object} response
// @Router /interviews/{id} [get]
func (a *API) InterviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	iv, err := a.svc.Interview(r.Context(), tenantFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

type feedbackRequest struct {
	InterviewerID  string                `json:"interviewer_id"`
	Scores         domain.CategoryScores `json:"scores"`
	Strengths      []string              `json:"strengths"`
	Weaknesses     []string              `json:"weaknesses"`
	Concerns       []string              `json:"concerns"`
	Recommendation domain.Recommendation `json:"recommendation"`
	Notes          string                `json:"notes"`
}

// FeedbackHandler submits or lists interviewer feedback
// @Summary Submit or list interview feedback
// @Description Each interviewer submits once. The submission that completes the expected panel aggregates the interview.
// @Tags interviews
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Interview ID"
// @Param feedback body feedbackRequest false "Feedback"
// @Success 200 {object} response
// @Failure 409 {object} response
// @Router /interviews/{id}/feedback [post]
// @Router /interviews/{id}/feedback [get]
func (a *API) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r.Context())
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		list, err := a.svc.Feedback(r.Context(), tenant, id)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req feedbackRequest
		if err := decode(r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}
		res, err := a.svc.SubmitInterviewFeedback(r.Context(), tenant, id, domain.Feedback{
			InterviewerID:  req.InterviewerID,
			Scores:         req.Scores,
			Strengths:      req.Strengths,
			Weaknesses:     req.Weaknesses,
			Concerns:       req.Concerns,
			Recommendation: req.Recommendation,
			Notes:          req.Notes,
		})
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		a.queueTriggers(tenant, res.Triggers)
		writeJSON(w, http.StatusCreated, res)
	default:
		methodNotAllowed(w)
	}
}

// CompleteInterviewHandler aggregates the interview
// @Summary Complete interview
// @Description Aggregates feedback into a consensus. Repeated calls return the stored result; with feedback missing all_feedback_collected is false.
// @Tags interviews
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Interview ID"
// @Success 200 {object} response
// @Failure 404 {object} response
// @Router /interviews/{id}/complete [post]
func (a *API) CompleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	tenant := tenantFrom(r.Context())
	res, err := a.svc.CompleteInterview(r.Context(), tenant, r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.queueTriggers(tenant, res.Triggers)
	writeJSON(w, http.StatusOK, res)
}
