// Package assessment produces resume_review, skills and culture_fit
// assessments from a resume and a requisition profile.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"hiring-pipeline/internal/domain"
)

// Generator is the text completion backend the scorer talks to.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Enabled() bool
}

// Request is the input for one scoring pass.
type Request struct {
	TenantID    string
	CandidateID string
	ResumeText  string
	Requisition domain.Requisition
}

type Scorer struct {
	gen         Generator
	cache       *Cache
	log         *zap.Logger
	concurrency int
	now         func() time.Time
}

type Option func(*Scorer)

func WithCache(c *Cache) Option { return func(s *Scorer) { s.cache = c } }

func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *Scorer) { s.now = now } }

func NewScorer(gen Generator, log *zap.Logger, opts ...Option) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scorer{
		gen:         gen,
		log:         log.Named("assessment"),
		concurrency: len(domain.AssessmentTypes),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score never fails: when the provider is missing or misbehaves the returned
// assessment is degraded with a score of 0 and the reason recorded.
func (s *Scorer) Score(ctx context.Context, req Request, kind domain.AssessmentType) domain.Assessment {
	a := domain.Assessment{
		TenantID:    req.TenantID,
		CandidateID: req.CandidateID,
		Type:        kind,
		Source:      domain.SourceAI,
		CreatedAt:   s.now().UTC(),
	}

	score, err := s.score(ctx, req, kind)
	if err != nil {
		s.log.Warn("assessment degraded",
			zap.String("candidate_id", req.CandidateID),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
		a.Degraded = true
		a.DegradedReason = err.Error()
		a.Finalize()
		return a
	}

	a.OverallScore = score.OverallScore
	a.ExperienceScore = score.ExperienceScore
	a.Strengths = score.Strengths
	a.Weaknesses = score.Weaknesses
	a.SkillGaps = score.SkillGaps
	a.Finalize()
	return a
}

// ScoreAll runs every assessment type concurrently. The result order follows
// domain.AssessmentTypes.
func (s *Scorer) ScoreAll(ctx context.Context, req Request) []domain.Assessment {
	p := pool.NewWithResults[domain.Assessment]().WithMaxGoroutines(s.concurrency)
	for _, kind := range domain.AssessmentTypes {
		p.Go(func() domain.Assessment {
			return s.Score(ctx, req, kind)
		})
	}
	return p.Wait()
}

var errNoResume = errors.New("resume text is empty")

func (s *Scorer) score(ctx context.Context, req Request, kind domain.AssessmentType) (Score, error) {
	if !kind.Valid() {
		return Score{}, fmt.Errorf("unknown assessment type %q", kind)
	}
	if s.gen == nil || !s.gen.Enabled() {
		return Score{}, errors.New("no LLM provider configured")
	}
	if req.ResumeText == "" {
		return Score{}, errNoResume
	}

	key := cacheKey(string(kind), req.Requisition.Title, req.Requisition.RequiredSkills, req.ResumeText)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.log.Debug("cache hit", zap.String("type", string(kind)))
			return cached, nil
		}
	}

	response, err := s.gen.Generate(ctx, systemPrompt, buildPrompt(kind, req))
	if err != nil {
		return Score{}, fmt.Errorf("LLM call failed: %w", err)
	}
	score, err := parseScore(response)
	if err != nil {
		return Score{}, err
	}
	score.OverallScore = domain.ClampScore(score.OverallScore)

	if s.cache != nil {
		s.cache.Set(key, score)
	}
	return score, nil
}
