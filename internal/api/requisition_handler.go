package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"hiring-pipeline/internal/domain"
)

type requisitionRequest struct {
	Title             string                   `json:"title"`
	Department        string                   `json:"department"`
	SalaryMin         decimal.Decimal          `json:"salary_min"`
	SalaryMax         decimal.Decimal          `json:"salary_max"`
	Currency          string                   `json:"currency"`
	RequiredSkills    []string                 `json:"required_skills"`
	PreferredSkills   []string                 `json:"preferred_skills"`
	Weights           domain.ScoreWeights      `json:"weights"`
	Urgency           domain.Urgency           `json:"urgency"`
	NumberOfPositions int                      `json:"number_of_positions"`
	Status            domain.RequisitionStatus `json:"status"`
}

// RequisitionsHandler creates and lists requisitions
// @Summary Create or list requisitions
// @Description POST creates a requisition; weights must sum to 1.0 or be omitted. GET lists requisitions, optionally by status.
// @Tags requisitions
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param requisition body requisitionRequest false "Requisition"
// @Param status query string false "Status filter"
// @Success 200 {object} response
// @Failure 400 {object} response
// @Router /requisitions [post]
// @Router /requisitions [get]
func (a *API) RequisitionsHandler(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		list, err := a.svc.Requisitions(r.Context(), tenant, domain.RequisitionStatus(r.URL.Query().Get("status")))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req requisitionRequest
		if err := decode(r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}
		created, err := a.svc.CreateRequisition(r.Context(), domain.Requisition{
			TenantID:          tenant,
			Title:             req.Title,
			Department:        req.Department,
			SalaryMin:         req.SalaryMin,
			SalaryMax:         req.SalaryMax,
			Currency:          req.Currency,
			RequiredSkills:    req.RequiredSkills,
			PreferredSkills:   req.PreferredSkills,
			Weights:           req.Weights,
			Urgency:           req.Urgency,
			NumberOfPositions: req.NumberOfPositions,
			Status:            req.Status,
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

// RequisitionHandler returns one requisition
// @Summary Get requisition
// @Tags requisitions
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Requisition ID"
// @Success 200 {object} response
// @Failure 404 {object} response
// @Router /requisitions/{id} [get]
func (a *API) RequisitionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	req, err := a.svc.Requisition(r.Context(), tenantFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
