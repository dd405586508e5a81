package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/notify"
	"hiring-pipeline/internal/resume"
	"hiring-pipeline/internal/workflow"
)

type API struct {
	svc        *workflow.Service
	parser     *resume.Parser
	dispatcher notify.Dispatcher
	log        *zap.Logger

	dispatchQueue chan TriggerJob // Background queue for trigger delivery
	queueMu       sync.RWMutex
	queueClosed   bool
	workers       conc.WaitGroup
}

type Options struct {
	// Workers is the number of trigger dispatch workers.
	Workers int
	// QueueSize bounds the pending trigger batches; extra batches are dropped.
	QueueSize int
}

func NewAPI(svc *workflow.Service, parser *resume.Parser, dispatcher notify.Dispatcher, log *zap.Logger, opts Options) *API {
	if log == nil {
		log = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = notify.NewLogDispatcher(log)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 100
	}

	a := &API{
		svc:           svc,
		parser:        parser,
		dispatcher:    dispatcher,
		log:           log.Named("api"),
		dispatchQueue: make(chan TriggerJob, opts.QueueSize),
	}

	// Start background workers
	a.StartBackgroundWorkers(opts.Workers)

	return a
}

// response is the envelope of every JSON reply.
type response struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	Error        string `json:"error,omitempty"`
	CurrentState string `json:"current_state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := response{Error: err.Error()}

	var te *domain.TransitionError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &te):
		status = http.StatusUnprocessableEntity
		body.CurrentState = te.Current
	case errors.Is(err, domain.ErrConcurrencyConflict):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrNoScorer):
		status = http.StatusServiceUnavailable
	default:
		a.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body.Error = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (a *API) badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(response{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("body", "invalid JSON: %v", err)
	}
	return nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid("limit", "must be a non-negative integer")
	}
	return n, nil
}
