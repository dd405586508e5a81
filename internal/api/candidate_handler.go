package api

import (
	"net/http"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
)

type candidateRequest struct {
	RequisitionID string `json:"requisition_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// CandidatesHandler creates and lists candidates
// @Summary Create or list candidates
// @Tags candidates
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param candidate body candidateRequest false "Candidate"
// @Param requisition_id query string false "Requisition filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Router /candidates [post]
// @Router /candidates [get]
func (a *API) CandidatesHandler(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		limit, err := queryLimit(r)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		q := r.URL.Query()
		list, err := a.svc.Candidates(r.Context(), tenant, storage.CandidateFilter{
			RequisitionID: q.Get("requisition_id"),
			Status:        domain.CandidateStatus(q.Get("status")),
			Limit:         limit,
		})
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req candidateRequest
		if err := decode(r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}
		created, err := a.svc.CreateCandidate(r.Context(), domain.Candidate{
			TenantID:      tenant,
			RequisitionID: req.RequisitionID,
			Name:          req.Name,
			Email:         req.Email,
		})
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

// CandidateHandler returns one candidate
// @Summary Get candidate
// @Tags candidates
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Candidate ID"
// @Success 200 {object} response
// @Failure 404 {object} response
// @Router /candidates/{id} [get]
func (a *API) CandidateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	c, err := a.svc.Candidate(r.Context(), tenantFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ScoreCandidateHandler aggregates the candidate's assessments
// @Summary Aggregate candidate score
// @Description Recomputes the composite score and tier. Missing assessment types count as 0 and are reported in warnings.
// @Tags candidates
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Candidate ID"
// @Success 200 {object} response
// @Failure 404 {object} response
// @Router /candidates/{id}/score [post]
func (a *API) ScoreCandidateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	tenant := tenantFrom(r.Context())
	res, err := a.svc.AggregateCandidateScore(r.Context(), tenant, r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.queueTriggers(tenant, res.Triggers)
	writeJSON(w, http.StatusOK, res)
}

type statusRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// CandidateStatusHandler applies a recruiter action
// @Summary Update candidate status
// @Description Actions: reject, withdraw, hold, reactivate.
// @Tags candidates
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Candidate ID"
// @Param action body statusRequest true "Action"
// @Success 200 {object} response
// @Failure 422 {object} response
// @Router /candidates/{id}/status [post]
func (a *API) CandidateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	tenant := tenantFrom(r.Context())
	res, err := a.svc.UpdateCandidateStatus(r.Context(), tenant, r.PathValue("id"), req.Action, req.Reason)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.queueTriggers(tenant, res.Triggers)
	writeJSON(w, http.StatusOK, res)
}

type assessmentRequest struct {
	Type             domain.AssessmentType `json:"assessment_type"`
	OverallScore     float64               `json:"overall_score"`
	ExperienceScore  *float64              `json:"experience_score"`
	PassingThreshold float64               `json:"passing_threshold"`
	Strengths        []string              `json:"strengths"`
	Weaknesses       []string              `json:"weaknesses"`
	SkillGaps        []string              `json:"skill_gaps"`
}

// AssessmentsHandler records or lists assessments
// @Summary Record or list assessments
// @Description POST stores a manual assessment; the candidate is re-scored once all three types exist.
// @Tags candidates
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Candidate ID"
// @Param assessment body assessmentRequest false "Assessment"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Router /candidates/{id}/assessments [post]
// @Router /candidates/{id}/assessments [get]
func (a *API) AssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r.Context())
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		list, err := a.svc.Assessments(r.Context(), tenant, id)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req assessmentRequest
		if err := decode(r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}
		res, err := a.svc.RecordAssessment(r.Context(), domain.Assessment{
			TenantID:         tenant,
			CandidateID:      id,
			Type:             req.Type,
			OverallScore:     req.OverallScore,
			ExperienceScore:  req.ExperienceScore,
			PassingThreshold: req.PassingThreshold,
			Strengths:        req.Strengths,
			Weaknesses:       req.Weaknesses,
			SkillGaps:        req.SkillGaps,
			Source:           domain.SourceManual,
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
