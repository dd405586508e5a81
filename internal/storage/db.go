package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"hiring-pipeline/internal/domain"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the PostgreSQL Store.
type DB struct {
	repo
	connection *sql.DB
	log        *zap.Logger
}

func NewDB(dataSourceName string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{repo: repo{q: db}, connection: db, log: log.With(zap.String("component", "storage"))}, nil
}

func (db *DB) Close() error {
	if err := db.connection.Close(); err != nil {
		db.log.Error("closing the database connection", zap.Error(err))
		return err
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.connection.PingContext(ctx)
}

// Migrate applies the embedded schema. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.connection.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	db.log.Info("schema applied")
	return nil
}

func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(ctx, &repo{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type repo struct {
	q queryer
}

// --- requisitions

const requisitionColumns = `id, tenant_id, title, department, salary_min, salary_max, currency,
	required_skills, preferred_skills, weight_culture, weight_skills, weight_resume, urgency,
	number_of_positions, positions_filled, status, closed_date, version, created_at, updated_at`

func (r *repo) CreateRequisition(ctx context.Context, req *domain.Requisition) error {
	query := `INSERT INTO requisitions (` + requisitionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.ExecContext(ctx, query,
		req.ID, req.TenantID, req.Title, req.Department, req.SalaryMin, req.SalaryMax, req.Currency,
		textArray(req.RequiredSkills), textArray(req.PreferredSkills),
		req.Weights.Culture, req.Weights.Skills, req.Weights.Resume, string(req.Urgency),
		req.NumberOfPositions, req.PositionsFilled, string(req.Status), req.ClosedDate,
		req.Version, req.CreatedAt, req.UpdatedAt,
	)
	return mapError(err)
}

func (r *repo) GetRequisition(ctx context.Context, tenantID, id string) (domain.Requisition, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+requisitionColumns+` FROM requisitions WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	req, err := scanRequisition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return req, domain.NotFound("requisition", id)
	}
	return req, err
}

func (r *repo) ListRequisitions(ctx context.Context, tenantID string, status domain.RequisitionStatus) ([]domain.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, req)
	}
	return res, rows.Err()
}

func (r *repo) UpdateRequisition(ctx context.Context, req *domain.Requisition, expected int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE requisitions SET
			title = $4, department = $5, salary_min = $6, salary_max = $7, currency = $8,
			required_skills = $9, preferred_skills = $10, weight_culture = $11, weight_skills = $12,
			weight_resume = $13, urgency = $14, number_of_positions = $15, positions_filled = $16,
			status = $17, closed_date = $18, version = $19, updated_at = $20
		WHERE id = $1 AND tenant_id = $2 AND version = $3`,
		req.ID, req.TenantID, expected,
		req.Title, req.Department, req.SalaryMin, req.SalaryMax, req.Currency,
		textArray(req.RequiredSkills), textArray(req.PreferredSkills),
		req.Weights.Culture, req.Weights.Skills, req.Weights.Resume, string(req.Urgency),
		req.NumberOfPositions, req.PositionsFilled, string(req.Status), req.ClosedDate,
		req.Version, req.UpdatedAt,
	)
	return r.checkUpdated(ctx, res, err, "requisitions", "requisition", req.TenantID, req.ID)
}

func scanRequisition(s scanner) (domain.Requisition, error) {
	var req domain.Requisition
	var urgency, status string
	err := s.Scan(&req.ID, &req.TenantID, &req.Title, &req.Department, &req.SalaryMin, &req.SalaryMax,
		&req.Currency, pq.Array(&req.RequiredSkills), pq.Array(&req.PreferredSkills),
		&req.Weights.Culture, &req.Weights.Skills, &req.Weights.Resume, &urgency,
		&req.NumberOfPositions, &req.PositionsFilled, &status, &req.ClosedDate,
		&req.Version, &req.CreatedAt, &req.UpdatedAt)
	req.Urgency = domain.Urgency(urgency)
	req.Status = domain.RequisitionStatus(status)
	return req, err
}

// --- candidates

const candidateColumns = `id, tenant_id, requisition_id, name, email, resume_score, skills_score,
	culture_score, experience_score, overall_score, status, stage, ai_recommendation, strengths,
	weaknesses, interview_round, version, created_at, updated_at`

func (r *repo) CreateCandidate(ctx context.Context, c *domain.Candidate) error {
	query := `INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.ExecContext(ctx, query,
		c.ID, c.TenantID, c.RequisitionID, c.Name, c.Email, c.ResumeScore, c.SkillsScore,
		c.CultureScore, c.ExperienceScore, c.OverallScore, string(c.Status), string(c.Stage),
		string(c.AIRecommendation), textArray(c.Strengths), textArray(c.Weaknesses),
		c.InterviewRound, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	return mapError(err)
}

func (r *repo) GetCandidate(ctx context.Context, tenantID, id string) (domain.Candidate, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.NotFound("candidate", id)
	}
	return c, err
}

// ListCandidates returns candidates matching the provided filter, newest first.
func (r *repo) ListCandidates(ctx context.Context, tenantID string, f CandidateFilter) ([]domain.Candidate, error) {
	base := `SELECT ` + candidateColumns + ` FROM candidates`
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	i := 2

	if f.RequisitionID != "" {
		where = append(where, fmt.Sprintf("requisition_id = $%d", i))
		args = append(args, f.RequisitionID)
		i++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", i))
		args = append(args, string(f.Status))
		i++
	}
	base += " WHERE " + strings.Join(where, " AND ") + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		base += fmt.Sprintf(" LIMIT $%d", i)
		args = append(args, f.Limit)
	}

	rows, err := r.q.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *repo) UpdateCandidate(ctx context.Context, c *domain.Candidate, expected int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE candidates SET
			name = $4, email = $5, resume_score = $6, skills_score = $7, culture_score = $8,
			experience_score = $9, overall_score = $10, status = $11, stage = $12,
			ai_recommendation = $13, strengths = $14, weaknesses = $15, interview_round = $16,
			version = $17, updated_at = $18
		WHERE id = $1 AND tenant_id = $2 AND version = $3`,
		c.ID, c.TenantID, expected,
		c.Name, c.Email, c.ResumeScore, c.SkillsScore, c.CultureScore, c.ExperienceScore,
		c.OverallScore, string(c.Status), string(c.Stage), string(c.AIRecommendation),
		textArray(c.Strengths), textArray(c.Weaknesses), c.InterviewRound, c.Version, c.UpdatedAt,
	)
	return r.checkUpdated(ctx, res, err, "candidates", "candidate", c.TenantID, c.ID)
}

func scanCandidate(s scanner) (domain.Candidate, error) {
	var c domain.Candidate
	var status, stage, tier string
	err := s.Scan(&c.ID, &c.TenantID, &c.RequisitionID, &c.Name, &c.Email, &c.ResumeScore,
		&c.SkillsScore, &c.CultureScore, &c.ExperienceScore, &c.OverallScore, &status, &stage,
		&tier, pq.Array(&c.Strengths), pq.Array(&c.Weaknesses), &c.InterviewRound, &c.Version,
		&c.CreatedAt, &c.UpdatedAt)
	c.Status = domain.CandidateStatus(status)
	c.Stage = domain.Stage(stage)
	c.AIRecommendation = domain.Tier(tier)
	return c, err
}

// --- assessments

const assessmentColumns = `id, tenant_id, candidate_id, assessment_type, overall_score,
	experience_score, passing_threshold, passed, strengths, weaknesses, skill_gaps, source,
	degraded, degraded_reason, created_at`

func (r *repo) InsertAssessment(ctx context.Context, a *domain.Assessment) error {
	query := `INSERT INTO assessments (` + assessmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.ExecContext(ctx, query,
		a.ID, a.TenantID, a.CandidateID, string(a.Type), a.OverallScore, a.ExperienceScore,
		a.PassingThreshold, a.Passed, textArray(a.Strengths), textArray(a.Weaknesses),
		textArray(a.SkillGaps), string(a.Source), a.Degraded, a.DegradedReason, a.CreatedAt,
	)
	return mapError(err)
}

func (r *repo) ListAssessments(ctx context.Context, tenantID, candidateID string) ([]domain.Assessment, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+assessmentColumns+` FROM assessments
		WHERE tenant_id = $1 AND candidate_id = $2 ORDER BY created_at`, tenantID, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Assessment
	for rows.Next() {
		var a domain.Assessment
		var kind, source string
		if err := rows.Scan(&a.ID, &a.TenantID, &a.CandidateID, &kind, &a.OverallScore,
			&a.ExperienceScore, &a.PassingThreshold, &a.Passed, pq.Array(&a.Strengths),
			pq.Array(&a.Weaknesses), pq.Array(&a.SkillGaps), &source, &a.Degraded,
			&a.DegradedReason, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = domain.AssessmentType(kind)
		a.Source = domain.AssessmentSource(source)
		res = append(res, a)
	}
	return res, rows.Err()
}

// --- interviews

const interviewColumns = `id, tenant_id, candidate_id, round, interview_type, scheduled_at,
	expected_interviewers, status, technical_score, communication_score, problem_solving_score,
	culture_score, leadership_score, overall_score, recommendation, strengths, weaknesses,
	concerns, aggregated_at, version, created_at, updated_at`

func (r *repo) CreateInterview(ctx context.Context, i *domain.Interview) error {
	query := `INSERT INTO interviews (` + interviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.ExecContext(ctx, query,
		i.ID, i.TenantID, i.CandidateID, i.Round, i.Type, i.ScheduledAt,
		textArray(i.ExpectedInterviewers), string(i.Status),
		i.Scores.Technical, i.Scores.Communication, i.Scores.ProblemSolving, i.Scores.Culture,
		i.Scores.Leadership, i.OverallScore, string(i.Recommendation),
		textArray(i.Strengths), textArray(i.Weaknesses), textArray(i.Concerns),
		i.AggregatedAt, i.Version, i.CreatedAt, i.UpdatedAt,
	)
	return mapError(err)
}

func (r *repo) GetInterview(ctx context.Context, tenantID, id string) (domain.Interview, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	i, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return i, domain.NotFound("interview", id)
	}
	return i, err
}

func (r *repo) LockInterview(ctx context.Context, tenantID, id string) (domain.Interview, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id, tenantID)
	i, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return i, domain.NotFound("interview", id)
	}
	return i, err
}

func (r *repo) ListInterviews(ctx context.Context, tenantID, candidateID string) ([]domain.Interview, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+interviewColumns+` FROM interviews
		WHERE tenant_id = $1 AND candidate_id = $2 ORDER BY round, created_at`, tenantID, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Interview
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, i)
	}
	return res, rows.Err()
}

func (r *repo) UpdateInterview(ctx context.Context, i *domain.Interview, expected int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE interviews SET
			scheduled_at = $4, expected_interviewers = $5, status = $6, version = $7, updated_at = $8
		WHERE id = $1 AND tenant_id = $2 AND version = $3`,
		i.ID, i.TenantID, expected, i.ScheduledAt, textArray(i.ExpectedInterviewers),
		string(i.Status), i.Version, i.UpdatedAt,
	)
	return r.checkUpdated(ctx, res, err, "interviews", "interview", i.TenantID, i.ID)
}

// SaveAggregation only matches rows that were never aggregated, so a second
// writer loses with a conflict and re-reads the stored result.
func (r *repo) SaveAggregation(ctx context.Context, i *domain.Interview, expected int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE interviews SET
			status = $4, technical_score = $5, communication_score = $6, problem_solving_score = $7,
			culture_score = $8, leadership_score = $9, overall_score = $10, recommendation = $11,
			strengths = $12, weaknesses = $13, concerns = $14, aggregated_at = $15,
			version = $16, updated_at = $17
		WHERE id = $1 AND tenant_id = $2 AND version = $3 AND aggregated_at IS NULL`,
		i.ID, i.TenantID, expected, string(i.Status),
		i.Scores.Technical, i.Scores.Communication, i.Scores.ProblemSolving, i.Scores.Culture,
		i.Scores.Leadership, i.OverallScore, string(i.Recommendation),
		textArray(i.Strengths), textArray(i.Weaknesses), textArray(i.Concerns),
		i.AggregatedAt, i.Version, i.UpdatedAt,
	)
	return r.checkUpdated(ctx, res, err, "interviews", "interview", i.TenantID, i.ID)
}

func scanInterview(s scanner) (domain.Interview, error) {
	var i domain.Interview
	var status, rec string
	err := s.Scan(&i.ID, &i.TenantID, &i.CandidateID, &i.Round, &i.Type, &i.ScheduledAt,
		pq.Array(&i.ExpectedInterviewers), &status, &i.Scores.Technical, &i.Scores.Communication,
		&i.Scores.ProblemSolving, &i.Scores.Culture, &i.Scores.Leadership, &i.OverallScore, &rec,
		pq.Array(&i.Strengths), pq.Array(&i.Weaknesses), pq.Array(&i.Concerns), &i.AggregatedAt,
		&i.Version, &i.CreatedAt, &i.UpdatedAt)
	i.Status = domain.InterviewStatus(status)
	i.Recommendation = domain.Recommendation(rec)
	return i, err
}

// --- feedback

const feedbackColumns = `id, tenant_id, interview_id, interviewer_id, technical_score,
	communication_score, problem_solving_score, culture_score, leadership_score, strengths,
	weaknesses, concerns, recommendation, notes, submitted_at`

func (r *repo) InsertFeedback(ctx context.Context, f *domain.Feedback) error {
	query := `INSERT INTO interview_feedback (` + feedbackColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.ExecContext(ctx, query,
		f.ID, f.TenantID, f.InterviewID, f.InterviewerID,
		f.Scores.Technical, f.Scores.Communication, f.Scores.ProblemSolving, f.Scores.Culture,
		f.Scores.Leadership, textArray(f.Strengths), textArray(f.Weaknesses), textArray(f.Concerns),
		string(f.Recommendation), f.Notes, f.SubmittedAt,
	)
	return mapError(err)
}

func (r *repo) ListFeedback(ctx context.Context, tenantID, interviewID string) ([]domain.Feedback, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+feedbackColumns+` FROM interview_feedback
		WHERE tenant_id = $1 AND interview_id = $2 ORDER BY submitted_at, interviewer_id`, tenantID, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		var rec string
		if err := rows.Scan(&f.ID, &f.TenantID, &f.InterviewID, &f.InterviewerID,
			&f.Scores.Technical, &f.Scores.Communication, &f.Scores.ProblemSolving,
			&f.Scores.Culture, &f.Scores.Leadership, pq.Array(&f.Strengths),
			pq.Array(&f.Weaknesses), pq.Array(&f.Concerns), &rec, &f.Notes, &f.SubmittedAt); err != nil {
			return nil, err
		}
		f.Recommendation = domain.Recommendation(rec)
		res = append(res, f)
	}
	return res, rows.Err()
}

// --- offers

const offerColumns = `id, tenant_id, candidate_id, requisition_id, salary, bonus, equity, currency,
	start_date, status, version, sent_date, expiry_date, responded_at, negotiation_history, notes,
	created_at, updated_at`

func (r *repo) CreateOffer(ctx context.Context, o *domain.Offer) error {
	history, err := json.Marshal(historyOrEmpty(o.NegotiationHistory))
	if err != nil {
		return err
	}
	query := `INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.q.ExecContext(ctx, query,
		o.ID, o.TenantID, o.CandidateID, o.RequisitionID, o.Terms.Salary, o.Terms.Bonus,
		o.Terms.Equity, o.Terms.Currency, o.Terms.StartDate, string(o.Status), o.Version,
		o.SentDate, o.ExpiryDate, o.RespondedAt, history, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	return mapError(err)
}

func (r *repo) GetOffer(ctx context.Context, tenantID, id string) (domain.Offer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return o, domain.NotFound("offer", id)
	}
	return o, err
}

func (r *repo) ListOffers(ctx context.Context, tenantID string, f OfferFilter) ([]domain.Offer, error) {
	base := `SELECT ` + offerColumns + ` FROM offers`
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	i := 2

	if f.CandidateID != "" {
		where = append(where, fmt.Sprintf("candidate_id = $%d", i))
		args = append(args, f.CandidateID)
		i++
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for k, s := range f.Statuses {
			statuses[k] = string(s)
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", i))
		args = append(args, pq.Array(statuses))
		i++
	}
	base += " WHERE " + strings.Join(where, " AND ") + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		base += fmt.Sprintf(" LIMIT $%d", i)
		args = append(args, f.Limit)
	}
	return r.queryOffers(ctx, base, args...)
}

func (r *repo) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers
		WHERE status IN ('sent', 'negotiating') AND expiry_date < $1 ORDER BY expiry_date`
	args := []any{now}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.queryOffers(ctx, query, args...)
}

func (r *repo) UpdateOffer(ctx context.Context, o *domain.Offer, expected int) error {
	history, err := json.Marshal(historyOrEmpty(o.NegotiationHistory))
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `UPDATE offers SET
			salary = $4, bonus = $5, equity = $6, currency = $7, start_date = $8, status = $9,
			version = $10, sent_date = $11, expiry_date = $12, responded_at = $13,
			negotiation_history = $14, notes = $15, updated_at = $16
		WHERE id = $1 AND tenant_id = $2 AND version = $3`,
		o.ID, o.TenantID, expected,
		o.Terms.Salary, o.Terms.Bonus, o.Terms.Equity, o.Terms.Currency, o.Terms.StartDate,
		string(o.Status), o.Version, o.SentDate, o.ExpiryDate, o.RespondedAt, history, o.Notes,
		o.UpdatedAt,
	)
	return r.checkUpdated(ctx, res, err, "offers", "offer", o.TenantID, o.ID)
}

func (r *repo) queryOffers(ctx context.Context, query string, args ...any) ([]domain.Offer, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func scanOffer(s scanner) (domain.Offer, error) {
	var o domain.Offer
	var status string
	var history []byte
	err := s.Scan(&o.ID, &o.TenantID, &o.CandidateID, &o.RequisitionID, &o.Terms.Salary,
		&o.Terms.Bonus, &o.Terms.Equity, &o.Terms.Currency, &o.Terms.StartDate, &status,
		&o.Version, &o.SentDate, &o.ExpiryDate, &o.RespondedAt, &history, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	o.Status = domain.OfferStatus(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.NegotiationHistory); err != nil {
			return o, fmt.Errorf("decode negotiation history of offer %s: %w", o.ID, err)
		}
	}
	return o, nil
}

// --- helpers

type scanner interface {
	Scan(dest ...any) error
}

// checkUpdated turns a zero-row conditional update into NotFound or a conflict.
func (r *repo) checkUpdated(ctx context.Context, res sql.Result, err error, table, entity, tenantID, id string) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM ` + table + ` WHERE id = $1 AND tenant_id = $2)`
	if err := r.q.QueryRowContext(ctx, query, id, tenantID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.NotFound(entity, id)
	}
	return fmt.Errorf("%s %s changed concurrently: %w", entity, id, domain.ErrConcurrencyConflict)
}

func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "interview_feedback_once":
		return domain.ErrDuplicateFeedback
	case "offers_one_active_per_candidate":
		return fmt.Errorf("candidate already holds an active offer: %w", domain.ErrConcurrencyConflict)
	}
	return fmt.Errorf("%s: %w", pqErr.Message, domain.ErrConcurrencyConflict)
}

// textArray never yields NULL for the NOT NULL array columns.
func textArray(s []string) any {
	if s == nil {
		s = []string{}
	}
	return pq.Array(s)
}

func historyOrEmpty(h []domain.Snapshot) []domain.Snapshot {
	if h == nil {
		return []domain.Snapshot{}
	}
	return h
}
