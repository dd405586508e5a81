package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
	"hiring-pipeline/internal/workflow"
)

// OffersHandler creates and lists offers
// @Summary Create or list offers
// @Description POST drafts an offer; a candidate holds at most one active offer. GET lists a candidate's offers.
// @Tags offers
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param offer body workflow.OfferParams false "Offer"
// @Param candidate_id query string false "Candidate filter"
// @Success 200 {object} response
// @Failure 422 {object} response
// @Router /offers [post]
// @Router /offers [get]
func (a *API) OffersHandler(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		limit, err := queryLimit(r)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		list, err := a.svc.Offers(r.Context(), tenant, storage.OfferFilter{
			CandidateID: r.URL.Query().Get("candidate_id"),
			Limit:       limit,
		})
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var p workflow.OfferParams
		if err := decode(r, &p); err != nil {
			a.writeError(w, r, err)
			return
		}
		p.TenantID = tenant
		res, err := a.svc.CreateOffer(r.Context(), p)
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

// OfferHandler returns one offer
// @Summary Get offer
// @Tags offers
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Offer ID"
// @Success 200 {object} response
// @Failure 404 {object} response
// @Router /offers/{id} [get]
func (a *API) OfferHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	o, err := a.svc.Offer(r.Context(), tenantFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type transitionRequest struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

// OfferTransitionHandler moves an offer through its lifecycle
// @Summary Transition offer
// @Description Actions: update, submit, approve, send, negotiate, revise, accept, reject, withdraw, expire. The payload may carry salary, bonus, equity, currency, start_date and note.
// @Tags offers
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant"
// @Param id path string true "Offer ID"
// @Param transition body transitionRequest true "Transition"
// @Success 200 {object} response
// @Failure 409 {object} response
// @Failure 422 {object} response
// @Router /offers/{id}/transition [post]
func (a *API) OfferTransitionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	// Numbers stay json.Number so money is never parsed as a float.
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		a.badRequest(w, "could not read body")
		return
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	var req transitionRequest
	if err := dec.Decode(&req); err != nil {
		a.writeError(w, r, domain.Invalid("body", "invalid JSON: %v", err))
		return
	}

	tenant := tenantFrom(r.Context())
	res, err := a.svc.TransitionOffer(r.Context(), tenant, r.PathValue("id"), req.Action, req.Payload)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.queueTriggers(tenant, res.Triggers)
	writeJSON(w, http.StatusOK, res)
}
