package workflow

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"hiring-pipeline/internal/domain"
	"hiring-pipeline/internal/storage"
)

// postgresService runs the workflow against DATABASE_URL. Ids stay uuids to
// match the schema.
func postgresService(t *testing.T) *Service {
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
	return New(db, WithLogger(zaptest.NewLogger(t)))
}

func postgresInterview(t *testing.T, svc *Service, tenantID string, panel ...string) domain.Interview {
	t.Helper()
	ctx := context.Background()

	req, err := svc.CreateRequisition(ctx, domain.Requisition{
		TenantID:          tenantID,
		Title:             "Backend Engineer",
		SalaryMin:         decimal.RequireFromString("100000"),
		SalaryMax:         decimal.RequireFromString("140000"),
		Currency:          "USD",
		NumberOfPositions: 1,
	})
	if err != nil {
		t.Fatalf("CreateRequisition: %v", err)
	}
	c, err := svc.CreateCandidate(ctx, domain.Candidate{TenantID: tenantID, RequisitionID: req.ID, Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	for _, kind := range []domain.AssessmentType{domain.AssessmentResumeReview, domain.AssessmentSkills, domain.AssessmentCultureFit} {
		if _, err := svc.RecordAssessment(ctx, domain.Assessment{
			TenantID: tenantID, CandidateID: c.ID, Type: kind, OverallScore: 85,
		}); err != nil {
			t.Fatalf("RecordAssessment(%s): %v", kind, err)
		}
	}
	res, err := svc.ScheduleInterview(ctx, domain.Interview{
		TenantID:             tenantID,
		CandidateID:          c.ID,
		Round:                1,
		ExpectedInterviewers: panel,
	})
	if err != nil {
		t.Fatalf("ScheduleInterview: %v", err)
	}
	return res.Interview
}

func TestPostgresConcurrentFeedbackAggregates(t *testing.T) {
	svc := postgresService(t)
	ctx := context.Background()
	tenantID := "t-" + uuid.NewString()

	panel := []string{"p1", "p2", "p3", "p4"}
	iv := postgresInterview(t, svc, tenantID, panel...)

	results := make([]FeedbackResult, len(panel))
	errs := make([]error, len(panel))
	var wg sync.WaitGroup
	for i, who := range panel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.SubmitInterviewFeedback(ctx, tenantID, iv.ID, feedback(who, domain.RecommendYes))
		}()
	}
	wg.Wait()

	aggregations := 0
	for i := range panel {
		if errs[i] != nil {
			t.Fatalf("submission %d: %v", i, errs[i])
		}
		if results[i].Consensus != nil {
			aggregations++
		}
	}
	if aggregations != 1 {
		t.Fatalf("aggregated %d times, want 1", aggregations)
	}

	got, err := svc.Interview(ctx, tenantID, iv.ID)
	if err != nil {
		t.Fatalf("Interview: %v", err)
	}
	if !got.Aggregated() || got.Recommendation != domain.RecommendYes {
		t.Fatalf("interview not aggregated: %+v", got)
	}
}

func TestPostgresFeedbackCaseVariants(t *testing.T) {
	svc := postgresService(t)
	ctx := context.Background()
	tenantID := "t-" + uuid.NewString()

	iv := postgresInterview(t, svc, tenantID)

	first, err := svc.SubmitInterviewFeedback(ctx, tenantID, iv.ID, feedback("Alice", domain.RecommendYes))
	if err != nil {
		t.Fatalf("SubmitInterviewFeedback: %v", err)
	}
	if first.Feedback.InterviewerID != "alice" {
		t.Fatalf("stored interviewer %q", first.Feedback.InterviewerID)
	}
	_, err = svc.SubmitInterviewFeedback(ctx, tenantID, iv.ID, feedback("ALICE", domain.RecommendNo))
	if !errors.Is(err, domain.ErrDuplicateFeedback) {
		t.Fatalf("expected duplicate feedback, got %v", err)
	}

	fb, err := svc.Feedback(ctx, tenantID, iv.ID)
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if len(fb) != 1 {
		t.Fatalf("stored %d feedback rows, want 1", len(fb))
	}
}
