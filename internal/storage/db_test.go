package storage_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
)

// openTestDB connects to DATABASE_URL and applies the schema. Tests using it
// are skipped when no database is configured. Every test works in its own
// tenant, so runs never see each other's rows.
func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping postgres tests")
	}
	db, err := storage.NewDB(dsn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

type seed struct {
	tenant      string
	requisition domain.Requisition
	candidate   domain.Candidate
	interview   domain.Interview
}

func seedInterview(t *testing.T, db *storage.DB, panel ...string) seed {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	s := seed{tenant: "t-" + uuid.NewString()}

	s.requisition = domain.Requisition{
		ID: uuid.NewString(), TenantID: s.tenant, Title: "Backend Engineer",
		SalaryMin: decimal.NewFromInt(100000), SalaryMax: decimal.NewFromInt(150000), Currency: "USD",
		Weights: domain.DefaultWeights(), Urgency: domain.UrgencyMedium, NumberOfPositions: 1,
		Status: domain.RequisitionOpen, Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.CreateRequisition(ctx, &s.requisition); err != nil {
		t.Fatalf("CreateRequisition: %v", err)
	}
	s.candidate = domain.Candidate{
		ID: uuid.NewString(), TenantID: s.tenant, RequisitionID: s.requisition.ID, Name: "Ada",
		Status: domain.CandidateInterview, Stage: domain.StageTechnicalAssessment, InterviewRound: 1,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.CreateCandidate(ctx, &s.candidate); err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	s.interview = domain.Interview{
		ID: uuid.NewString(), TenantID: s.tenant, CandidateID: s.candidate.ID, Round: 1,
		ExpectedInterviewers: panel, Status: domain.InterviewScheduled,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.CreateInterview(ctx, &s.interview); err != nil {
		t.Fatalf("CreateInterview: %v", err)
	}
	return s
}

func (s seed) feedback(interviewer string) domain.Feedback {
	return domain.Feedback{
		ID:             uuid.NewString(),
		TenantID:       s.tenant,
		InterviewID:    s.interview.ID,
		InterviewerID:  interviewer,
		Scores:         domain.CategoryScores{Technical: domain.Float(4)},
		Recommendation: domain.RecommendYes,
		SubmittedAt:    time.Now().UTC(),
	}
}

func TestPostgresDuplicateFeedbackIgnoresCase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := seedInterview(t, db, "alice", "bob")

	first := s.feedback("alice")
	if err := db.InsertFeedback(ctx, &first); err != nil {
		t.Fatalf("InsertFeedback: %v", err)
	}
	again := s.feedback("ALICE")
	err := db.InsertFeedback(ctx, &again)
	if !errors.Is(err, domain.ErrDuplicateFeedback) || !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected duplicate feedback conflict, got %v", err)
	}

	list, err := db.ListFeedback(ctx, s.tenant, s.interview.ID)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 feedback row, got %d", len(list))
	}
}

func TestPostgresSaveAggregationOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := seedInterview(t, db, "alice")

	now := time.Now().UTC()
	agg := s.interview
	agg.Status = domain.InterviewCompleted
	agg.Recommendation = domain.RecommendYes
	agg.OverallScore = domain.Float(1)
	agg.AggregatedAt = &now
	agg.Version = 2
	if err := db.SaveAggregation(ctx, &agg, 1); err != nil {
		t.Fatalf("first SaveAggregation: %v", err)
	}

	// A racing writer that read version 1 loses.
	late := agg
	late.Recommendation = domain.RecommendNo
	if err := db.SaveAggregation(ctx, &late, 1); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// Even with the current version the stored consensus is never overwritten.
	late.Version = 3
	if err := db.SaveAggregation(ctx, &late, 2); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict on aggregated interview, got %v", err)
	}

	got, err := db.GetInterview(ctx, s.tenant, s.interview.ID)
	if err != nil {
		t.Fatalf("GetInterview: %v", err)
	}
	if got.Recommendation != domain.RecommendYes || !got.Aggregated() {
		t.Fatalf("stored aggregation changed: %+v", got)
	}
}

func TestPostgresUpdateDistinguishesMissingFromStale(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := seedInterview(t, db)

	stale := s.candidate
	stale.Status = domain.CandidateOnHold
	stale.Version = 2
	if err := db.UpdateCandidate(ctx, &stale, 1); err != nil {
		t.Fatalf("UpdateCandidate: %v", err)
	}
	stale.Version = 3
	if err := db.UpdateCandidate(ctx, &stale, 1); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}

	missing := s.candidate
	missing.ID = uuid.NewString()
	if err := db.UpdateCandidate(ctx, &missing, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// Another tenant's row is reported as missing, not as a conflict.
	foreign := s.candidate
	foreign.TenantID = "someone-else"
	if err := db.UpdateCandidate(ctx, &foreign, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for another tenant, got %v", err)
	}
}

func TestPostgresOneActiveOfferPerCandidate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := seedInterview(t, db)

	now := time.Now().UTC()
	newOffer := func() domain.Offer {
		return domain.Offer{
			ID: uuid.NewString(), TenantID: s.tenant, CandidateID: s.candidate.ID,
			RequisitionID: s.requisition.ID,
			Terms:         domain.Terms{Salary: decimal.NewFromInt(120000), Currency: "USD"},
			Status:        domain.OfferDraft, Version: 1, CreatedAt: now, UpdatedAt: now,
		}
	}

	first := newOffer()
	if err := db.CreateOffer(ctx, &first); err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	second := newOffer()
	if err := db.CreateOffer(ctx, &second); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict for a second active offer, got %v", err)
	}

	// Once the first offer is terminal a new one may be drafted.
	first.Status = domain.OfferWithdrawn
	first.Version = 2
	if err := db.UpdateOffer(ctx, &first, 1); err != nil {
		t.Fatalf("UpdateOffer: %v", err)
	}
	if err := db.CreateOffer(ctx, &second); err != nil {
		t.Fatalf("CreateOffer after withdrawal: %v", err)
	}
}

func TestPostgresLockInterviewSerializesTransactions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := seedInterview(t, db, "alice", "bob")

	locked := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- db.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
			if _, err := tx.LockInterview(ctx, s.tenant, s.interview.ID); err != nil {
				close(locked)
				return err
			}
			fb := s.feedback("alice")
			if err := tx.InsertFeedback(ctx, &fb); err != nil {
				close(locked)
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	var seen int
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- db.InTx(ctx, func(ctx context.Context, tx storage.Repo) error {
			if _, err := tx.LockInterview(ctx, s.tenant, s.interview.ID); err != nil {
				return err
			}
			fb := s.feedback("bob")
			if err := tx.InsertFeedback(ctx, &fb); err != nil {
				return err
			}
			all, err := tx.ListFeedback(ctx, s.tenant, s.interview.ID)
			seen = len(all)
			return err
		})
	}()

	select {
	case err := <-secondDone:
		t.Fatalf("second transaction finished while the interview was locked: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	close(release)

	if err := <-firstDone; err != nil {
		t.Fatalf("first transaction: %v", err)
	}
	if err := <-secondDone; err != nil {
		t.Fatalf("second transaction: %v", err)
	}
	if seen != 2 {
		t.Fatalf("second transaction should count both submissions, saw %d", seen)
	}
}
