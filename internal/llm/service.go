package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none"
)

// ErrNotConfigured is returned when no provider is set up.
var ErrNotConfigured = errors.New("LLM provider not configured")

const groqBaseURL = "https://api.groq.com/openai/v1"

// Options configures a Service.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint (OpenAI compatible or Ollama).
	BaseURL string
	Timeout time.Duration
}

// backend is one provider's completion call.
type backend interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

type Service struct {
	provider Provider
	model    string
	timeout  time.Duration
	backend  backend
	log      *zap.Logger
}

// NewService builds the client for the configured provider. ProviderNone
// yields a Service whose Generate always fails with ErrNotConfigured.
func NewService(ctx context.Context, opts Options, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	provider := Provider(strings.ToLower(strings.TrimSpace(opts.Provider)))
	if provider == "" {
		provider = ProviderNone
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 600 * time.Second // large resumes on slow local models
	}

	s := &Service{
		provider: provider,
		model:    opts.Model,
		timeout:  timeout,
		log:      log.With(zap.String("component", "llm"), zap.String("provider", string(provider))),
	}

	var err error
	switch provider {
	case ProviderOpenAI:
		s.backend, err = newOpenAIBackend(opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderGroq:
		base := opts.BaseURL
		if base == "" {
			base = groqBaseURL
		}
		s.backend, err = newOpenAIBackend(opts.APIKey, opts.Model, base)
	case ProviderGemini:
		s.backend, err = newGeminiBackend(ctx, opts.APIKey, opts.Model)
	case ProviderOllama:
		s.backend = newOllamaBackend(opts.BaseURL, opts.Model, timeout)
	case ProviderNone:
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Provider() Provider { return s.provider }

func (s *Service) Model() string { return s.model }

// Enabled reports whether Generate can reach a provider.
func (s *Service) Enabled() bool { return s != nil && s.backend != nil }

// Generate sends one system+user prompt and returns the raw text answer.
func (s *Service) Generate(ctx context.Context, system, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.backend.complete(ctx, system, prompt)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Warn("completion failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", fmt.Errorf("%s completion: %w", s.provider, err)
	}
	s.log.Debug("completion done",
		zap.Duration("elapsed", elapsed),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(out)),
	)
	return out, nil
}
