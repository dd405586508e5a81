package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
)

func seedCandidate(t *testing.T, s *Store) domain.Candidate {
	t.Helper()
	c := domain.Candidate{
		ID:            "c-1",
		TenantID:      "t-1",
		RequisitionID: "r-1",
		Name:          "Ada",
		Status:        domain.CandidateApplied,
		Stage:         domain.StageApplication,
		Version:       1,
	}
	if err := s.CreateCandidate(context.Background(), &c); err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	return c
}

func TestTenantMismatchIsNotFound(t *testing.T) {
	t.Parallel()

	s := New()
	seedCandidate(t, s)

	_, err := s.GetCandidate(context.Background(), "t-2", "c-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateChecksVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	c := seedCandidate(t, s)

	c.Status = domain.CandidateScreening
	c.Version = 2
	if err := s.UpdateCandidate(ctx, &c, 1); err != nil {
		t.Fatalf("first update: %v", err)
	}

	stale := c
	stale.Version = 2
	if err := s.UpdateCandidate(ctx, &stale, 1); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	c := seedCandidate(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
		c.Status = domain.CandidateRejected
		c.Version = 2
		if err := tx.UpdateCandidate(ctx, &c, 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := s.GetCandidate(ctx, "t-1", "c-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.CandidateApplied || got.Version != 1 {
		t.Fatalf("transaction leaked: %+v", got)
	}
}

func TestDuplicateFeedback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	f := domain.Feedback{ID: "f-1", TenantID: "t-1", InterviewID: "i-1", InterviewerID: "alice"}
	if err := s.InsertFeedback(ctx, &f); err != nil {
		t.Fatalf("insert: %v", err)
	}
	again := domain.Feedback{ID: "f-2", TenantID: "t-1", InterviewID: "i-1", InterviewerID: "Alice"}
	err := s.InsertFeedback(ctx, &again)
	if !errors.Is(err, domain.ErrDuplicateFeedback) || !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected duplicate feedback conflict, got %v", err)
	}
}

func TestSaveAggregationOnlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	i := domain.Interview{ID: "i-1", TenantID: "t-1", CandidateID: "c-1", Round: 1, Status: domain.InterviewScheduled, Version: 1}
	if err := s.CreateInterview(ctx, &i); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now()
	agg := i
	agg.AggregatedAt = &now
	agg.Recommendation = domain.RecommendYes
	agg.Version = 2
	if err := s.SaveAggregation(ctx, &agg, 1); err != nil {
		t.Fatalf("first aggregation: %v", err)
	}
	agg.Version = 3
	if err := s.SaveAggregation(ctx, &agg, 2); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict on second aggregation, got %v", err)
	}
}

func TestOneActiveOfferPerCandidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	first := domain.Offer{ID: "o-1", TenantID: "t-1", CandidateID: "c-1", Status: domain.OfferDraft, Version: 1}
	if err := s.CreateOffer(ctx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := domain.Offer{ID: "o-2", TenantID: "t-1", CandidateID: "c-1", Status: domain.OfferDraft, Version: 1}
	if err := s.CreateOffer(ctx, &second); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	active, err := storage.ActiveOffer(ctx, s, "t-1", "c-1")
	if err != nil || active.ID != "o-1" {
		t.Fatalf("expected o-1 active, got %+v, %v", active, err)
	}
}

func TestListExpiredOffers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	now := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	offers := []domain.Offer{
		{ID: "o-1", TenantID: "t-1", CandidateID: "c-1", Status: domain.OfferSent, ExpiryDate: &past},
		{ID: "o-2", TenantID: "t-2", CandidateID: "c-2", Status: domain.OfferNegotiating, ExpiryDate: &past},
		{ID: "o-3", TenantID: "t-1", CandidateID: "c-3", Status: domain.OfferSent, ExpiryDate: &future},
		{ID: "o-4", TenantID: "t-1", CandidateID: "c-4", Status: domain.OfferAccepted, ExpiryDate: &past},
	}
	for i := range offers {
		if err := s.CreateOffer(ctx, &offers[i]); err != nil {
			t.Fatalf("create %s: %v", offers[i].ID, err)
		}
	}

	got, err := s.ListExpiredOffers(ctx, now, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expired offers, got %d", len(got))
	}
}
