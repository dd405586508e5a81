// Package memstore is an in-memory storage.Store for tests and local runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
)

type data struct {
	requisitions map[string]domain.Requisition
	candidates   map[string]domain.Candidate
	assessments  map[string]domain.Assessment
	interviews   map[string]domain.Interview
	feedback     map[string]domain.Feedback
	offers       map[string]domain.Offer
}

func newData() *data {
	return &data{
		requisitions: map[string]domain.Requisition{},
		candidates:   map[string]domain.Candidate{},
		assessments:  map[string]domain.Assessment{},
		interviews:   map[string]domain.Interview{},
		feedback:     map[string]domain.Feedback{},
		offers:       map[string]domain.Offer{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.requisitions {
		c.requisitions[k] = v.Clone()
	}
	for k, v := range d.candidates {
		c.candidates[k] = v.Clone()
	}
	for k, v := range d.assessments {
		c.assessments[k] = v.Clone()
	}
	for k, v := range d.interviews {
		c.interviews[k] = v.Clone()
	}
	for k, v := range d.feedback {
		c.feedback[k] = v.Clone()
	}
	for k, v := range d.offers {
		c.offers[k] = v.Clone()
	}
	return c
}

// Store serializes transactions with one lock. A transaction works on a
// copy that replaces the live data only on success.
type Store struct {
	mu   sync.RWMutex
	data *data
}

func New() *Store {
	return &Store{data: newData()}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Repo) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &repo{d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// read and write run a single operation outside any caller transaction.
func (s *Store) read(fn func(r *repo) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&repo{d: s.data})
}

func (s *Store) write(fn func(r *repo) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&repo{d: s.data})
}

func (s *Store) CreateRequisition(ctx context.Context, r *domain.Requisition) error {
	return s.write(func(rp *repo) error { return rp.CreateRequisition(ctx, r) })
}

func (s *Store) GetRequisition(ctx context.Context, tenantID, id string) (out domain.Requisition, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.GetRequisition(ctx, tenantID, id); return err })
	return out, err
}

func (s *Store) ListRequisitions(ctx context.Context, tenantID string, status domain.RequisitionStatus) (out []domain.Requisition, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListRequisitions(ctx, tenantID, status); return err })
	return out, err
}

func (s *Store) UpdateRequisition(ctx context.Context, r *domain.Requisition, expected int) error {
	return s.write(func(rp *repo) error { return rp.UpdateRequisition(ctx, r, expected) })
}

func (s *Store) CreateCandidate(ctx context.Context, c *domain.Candidate) error {
	return s.write(func(rp *repo) error { return rp.CreateCandidate(ctx, c) })
}

func (s *Store) GetCandidate(ctx context.Context, tenantID, id string) (out domain.Candidate, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.GetCandidate(ctx, tenantID, id); return err })
	return out, err
}

func (s *Store) ListCandidates(ctx context.Context, tenantID string, f storage.CandidateFilter) (out []domain.Candidate, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListCandidates(ctx, tenantID, f); return err })
	return out, err
}

func (s *Store) UpdateCandidate(ctx context.Context, c *domain.Candidate, expected int) error {
	return s.write(func(rp *repo) error { return rp.UpdateCandidate(ctx, c, expected) })
}

func (s *Store) InsertAssessment(ctx context.Context, a *domain.Assessment) error {
	return s.write(func(rp *repo) error { return rp.InsertAssessment(ctx, a) })
}

func (s *Store) ListAssessments(ctx context.Context, tenantID, candidateID string) (out []domain.Assessment, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListAssessments(ctx, tenantID, candidateID); return err })
	return out, err
}

func (s *Store) CreateInterview(ctx context.Context, i *domain.Interview) error {
	return s.write(func(rp *repo) error { return rp.CreateInterview(ctx, i) })
}

func (s *Store) GetInterview(ctx context.Context, tenantID, id string) (out domain.Interview, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.GetInterview(ctx, tenantID, id); return err })
	return out, err
}

func (s *Store) LockInterview(ctx context.Context, tenantID, id string) (out domain.Interview, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.LockInterview(ctx, tenantID, id); return err })
	return out, err
}

func (s *Store) ListInterviews(ctx context.Context, tenantID, candidateID string) (out []domain.Interview, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListInterviews(ctx, tenantID, candidateID); return err })
	return out, err
}

func (s *Store) UpdateInterview(ctx context.Context, i *domain.Interview, expected int) error {
	return s.write(func(rp *repo) error { return rp.UpdateInterview(ctx, i, expected) })
}

func (s *Store) SaveAggregation(ctx context.Context, i *domain.Interview, expected int) error {
	return s.write(func(rp *repo) error { return rp.SaveAggregation(ctx, i, expected) })
}

func (s *Store) InsertFeedback(ctx context.Context, f *domain.Feedback) error {
	return s.write(func(rp *repo) error { return rp.InsertFeedback(ctx, f) })
}

func (s *Store) ListFeedback(ctx context.Context, tenantID, interviewID string) (out []domain.Feedback, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListFeedback(ctx, tenantID, interviewID); return err })
	return out, err
}

func (s *Store) CreateOffer(ctx context.Context, o *domain.Offer) error {
	return s.write(func(rp *repo) error { return rp.CreateOffer(ctx, o) })
}

func (s *Store) GetOffer(ctx context.Context, tenantID, id string) (out domain.Offer, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.GetOffer(ctx, tenantID, id); return err })
	return out, err
}

func (s *Store) ListOffers(ctx context.Context, tenantID string, f storage.OfferFilter) (out []domain.Offer, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListOffers(ctx, tenantID, f); return err })
	return out, err
}

func (s *Store) UpdateOffer(ctx context.Context, o *domain.Offer, expected int) error {
	return s.write(func(rp *repo) error { return rp.UpdateOffer(ctx, o, expected) })
}

func (s *Store) ListExpiredOffers(ctx context.Context, now time.Time, limit int) (out []domain.Offer, err error) {
	err = s.read(func(rp *repo) error { out, err = rp.ListExpiredOffers(ctx, now, limit); return err })
	return out, err
}

// repo implements storage.Repo over one data snapshot. Callers hold the lock.
type repo struct {
	d *data
}

func conflict(entity, id string) error {
	return fmt.Errorf("%s %s changed concurrently: %w", entity, id, domain.ErrConcurrencyConflict)
}

func exists(entity, id string) error {
	return fmt.Errorf("%s %s already exists: %w", entity, id, domain.ErrConcurrencyConflict)
}

func (r *repo) CreateRequisition(_ context.Context, req *domain.Requisition) error {
	if _, ok := r.d.requisitions[req.ID]; ok {
		return exists("requisition", req.ID)
	}
	r.d.requisitions[req.ID] = req.Clone()
	return nil
}

func (r *repo) GetRequisition(_ context.Context, tenantID, id string) (domain.Requisition, error) {
	req, ok := r.d.requisitions[id]
	if !ok || req.TenantID != tenantID {
		return domain.Requisition{}, domain.NotFound("requisition", id)
	}
	return req.Clone(), nil
}

func (r *repo) ListRequisitions(_ context.Context, tenantID string, status domain.RequisitionStatus) ([]domain.Requisition, error) {
	var out []domain.Requisition
	for _, req := range r.d.requisitions {
		if req.TenantID == tenantID && (status == "" || req.Status == status) {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r *repo) UpdateRequisition(_ context.Context, req *domain.Requisition, expected int) error {
	cur, ok := r.d.requisitions[req.ID]
	if !ok || cur.TenantID != req.TenantID {
		return domain.NotFound("requisition", req.ID)
	}
	if cur.Version != expected {
		return conflict("requisition", req.ID)
	}
	r.d.requisitions[req.ID] = req.Clone()
	return nil
}

func (r *repo) CreateCandidate(_ context.Context, c *domain.Candidate) error {
	if _, ok := r.d.candidates[c.ID]; ok {
		return exists("candidate", c.ID)
	}
	r.d.candidates[c.ID] = c.Clone()
	return nil
}

func (r *repo) GetCandidate(_ context.Context, tenantID, id string) (domain.Candidate, error) {
	c, ok := r.d.candidates[id]
	if !ok || c.TenantID != tenantID {
		return domain.Candidate{}, domain.NotFound("candidate", id)
	}
	return c.Clone(), nil
}

func (r *repo) ListCandidates(_ context.Context, tenantID string, f storage.CandidateFilter) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, c := range r.d.candidates {
		if c.TenantID != tenantID {
			continue
		}
		if f.RequisitionID != "" && c.RequisitionID != f.RequisitionID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *repo) UpdateCandidate(_ context.Context, c *domain.Candidate, expected int) error {
	cur, ok := r.d.candidates[c.ID]
	if !ok || cur.TenantID != c.TenantID {
		return domain.NotFound("candidate", c.ID)
	}
	if cur.Version != expected {
		return conflict("candidate", c.ID)
	}
	r.d.candidates[c.ID] = c.Clone()
	return nil
}

func (r *repo) InsertAssessment(_ context.Context, a *domain.Assessment) error {
	if _, ok := r.d.assessments[a.ID]; ok {
		return exists("assessment", a.ID)
	}
	r.d.assessments[a.ID] = a.Clone()
	return nil
}

func (r *repo) ListAssessments(_ context.Context, tenantID, candidateID string) ([]domain.Assessment, error) {
	var out []domain.Assessment
	for _, a := range r.d.assessments {
		if a.TenantID == tenantID && a.CandidateID == candidateID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return older(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r *repo) CreateInterview(_ context.Context, i *domain.Interview) error {
	if _, ok := r.d.interviews[i.ID]; ok {
		return exists("interview", i.ID)
	}
	r.d.interviews[i.ID] = i.Clone()
	return nil
}

func (r *repo) GetInterview(_ context.Context, tenantID, id string) (domain.Interview, error) {
	i, ok := r.d.interviews[id]
	if !ok || i.TenantID != tenantID {
		return domain.Interview{}, domain.NotFound("interview", id)
	}
	return i.Clone(), nil
}

// LockInterview is GetInterview; transactions are already serialized.
func (r *repo) LockInterview(ctx context.Context, tenantID, id string) (domain.Interview, error) {
	return r.GetInterview(ctx, tenantID, id)
}

func (r *repo) ListInterviews(_ context.Context, tenantID, candidateID string) ([]domain.Interview, error) {
	var out []domain.Interview
	for _, i := range r.d.interviews {
		if i.TenantID == tenantID && i.CandidateID == candidateID {
			out = append(out, i.Clone())
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Round != out[b].Round {
			return out[a].Round < out[b].Round
		}
		return older(out[a].CreatedAt, out[b].CreatedAt, out[a].ID, out[b].ID)
	})
	return out, nil
}

func (r *repo) UpdateInterview(_ context.Context, i *domain.Interview, expected int) error {
	cur, ok := r.d.interviews[i.ID]
	if !ok || cur.TenantID != i.TenantID {
		return domain.NotFound("interview", i.ID)
	}
	if cur.Version != expected {
		return conflict("interview", i.ID)
	}
	// only scheduling fields move here; aggregation goes through SaveAggregation
	cur.ScheduledAt = i.ScheduledAt
	cur.ExpectedInterviewers = i.ExpectedInterviewers
	cur.Status = i.Status
	cur.Version = i.Version
	cur.UpdatedAt = i.UpdatedAt
	r.d.interviews[i.ID] = cur.Clone()
	return nil
}

func (r *repo) SaveAggregation(_ context.Context, i *domain.Interview, expected int) error {
	cur, ok := r.d.interviews[i.ID]
	if !ok || cur.TenantID != i.TenantID {
		return domain.NotFound("interview", i.ID)
	}
	if cur.Version != expected || cur.Aggregated() {
		return conflict("interview", i.ID)
	}
	r.d.interviews[i.ID] = i.Clone()
	return nil
}

func (r *repo) InsertFeedback(_ context.Context, f *domain.Feedback) error {
	for _, existing := range r.d.feedback {
		if existing.InterviewID == f.InterviewID && strings.EqualFold(existing.InterviewerID, f.InterviewerID) {
			return domain.ErrDuplicateFeedback
		}
	}
	r.d.feedback[f.ID] = f.Clone()
	return nil
}

func (r *repo) ListFeedback(_ context.Context, tenantID, interviewID string) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, f := range r.d.feedback {
		if f.TenantID == tenantID && f.InterviewID == interviewID {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].InterviewerID < out[j].InterviewerID
	})
	return out, nil
}

func (r *repo) CreateOffer(_ context.Context, o *domain.Offer) error {
	if _, ok := r.d.offers[o.ID]; ok {
		return exists("offer", o.ID)
	}
	if o.Status.IsActive() {
		for _, existing := range r.d.offers {
			if existing.CandidateID == o.CandidateID && existing.Status.IsActive() {
				return fmt.Errorf("candidate already holds an active offer: %w", domain.ErrConcurrencyConflict)
			}
		}
	}
	r.d.offers[o.ID] = o.Clone()
	return nil
}

func (r *repo) GetOffer(_ context.Context, tenantID, id string) (domain.Offer, error) {
	o, ok := r.d.offers[id]
	if !ok || o.TenantID != tenantID {
		return domain.Offer{}, domain.NotFound("offer", id)
	}
	return o.Clone(), nil
}

func (r *repo) ListOffers(_ context.Context, tenantID string, f storage.OfferFilter) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range r.d.offers {
		if o.TenantID != tenantID {
			continue
		}
		if f.CandidateID != "" && o.CandidateID != f.CandidateID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, o.Status) {
			continue
		}
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *repo) UpdateOffer(_ context.Context, o *domain.Offer, expected int) error {
	cur, ok := r.d.offers[o.ID]
	if !ok || cur.TenantID != o.TenantID {
		return domain.NotFound("offer", o.ID)
	}
	if cur.Version != expected {
		return conflict("offer", o.ID)
	}
	r.d.offers[o.ID] = o.Clone()
	return nil
}

func (r *repo) ListExpiredOffers(_ context.Context, now time.Time, limit int) ([]domain.Offer, error) {
	var out []domain.Offer
	for _, o := range r.d.offers {
		if (o.Status == domain.OfferSent || o.Status == domain.OfferNegotiating) &&
			o.ExpiryDate != nil && o.ExpiryDate.Before(now) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func hasStatus(set []domain.OfferStatus, s domain.OfferStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func newer(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA > idB
}

func older(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return idA < idB
}

var _ storage.Store = (*Store)(nil)
