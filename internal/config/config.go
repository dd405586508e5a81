package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"hiring-pipeline/internal/domain"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	DatabaseURL string `mapstructure:"database-url"`
	Port        string `mapstructure:"port"`
	// Store selects the persistence backend: "postgres" or "memory".
	Store      string `mapstructure:"store"`
	UploadsDir string `mapstructure:"uploads-dir"`

	OfferValidity  time.Duration       `mapstructure:"offer-validity"`
	DefaultWeights domain.ScoreWeights `mapstructure:"default-weights"`

	LLM      LLMConfig      `mapstructure:"llm"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Workers  WorkersConfig  `mapstructure:"workers"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "openai", "groq", "gemini", "ollama" or "none"
	Model    string `mapstructure:"model"`
	// APIKey is resolved from the provider specific key below.
	APIKey      string        `mapstructure:"-"`
	OpenAIKey   string        `mapstructure:"openai-api-key"`
	GroqKey     string        `mapstructure:"groq-api-key"`
	GeminiKey   string        `mapstructure:"gemini-api-key"`
	OllamaURL   string        `mapstructure:"ollama-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache-ttl"`
	Concurrency int           `mapstructure:"concurrency"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// Enabled reports whether triggers should be published to RabbitMQ.
func (r RabbitMQConfig) Enabled() bool { return r.URL != "" }

type WorkersConfig struct {
	Dispatch  int `mapstructure:"dispatch"`
	QueueSize int `mapstructure:"queue-size"`
}

var envBindings = map[string]string{
	"database-url":       "DATABASE_URL",
	"port":               "PORT",
	"store":              "HIRING_STORE",
	"uploads-dir":        "UPLOADS_DIR",
	"offer-validity":     "OFFER_VALIDITY",
	"llm.provider":       "LLM_PROVIDER",
	"llm.model":          "LLM_MODEL",
	"llm.openai-api-key": "OPENAI_API_KEY",
	"llm.groq-api-key":   "GROQ_API_KEY",
	"llm.gemini-api-key": "GEMINI_API_KEY",
	"llm.ollama-url":     "OLLAMA_URL",
	"llm.timeout":        "LLM_TIMEOUT",
	"llm.cache-ttl":      "LLM_CACHE_TTL",
	"llm.concurrency":    "LLM_CONCURRENCY",
	"rabbitmq.url":       "RABBITMQ_URL",
	"rabbitmq.exchange":  "RABBITMQ_EXCHANGE",
	"rabbitmq.queue":     "RABBITMQ_QUEUE",
	"workers.dispatch":   "DISPATCH_WORKERS",
	"workers.queue-size": "DISPATCH_QUEUE_SIZE",
}

func setDefaults(v *viper.Viper) {
	w := domain.DefaultWeights()
	v.SetDefault("port", "8080")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("uploads-dir", "./uploads")
	v.SetDefault("offer-validity", 7*24*time.Hour)
	v.SetDefault("default-weights.culture", w.Culture)
	v.SetDefault("default-weights.skills", w.Skills)
	v.SetDefault("default-weights.resume", w.Resume)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.ollama-url", "http://localhost:11434")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.cache-ttl", 24*time.Hour)
	v.SetDefault("llm.concurrency", 3)
	v.SetDefault("rabbitmq.exchange", "")
	v.SetDefault("rabbitmq.queue", "hiring_triggers")
	v.SetDefault("workers.dispatch", 2)
	v.SetDefault("workers.queue-size", 100)
}

// Load reads .env, then an optional config file, then the environment.
// An empty path looks for hiring.yaml in the working directory.
func Load(path string, log *zap.Logger) (*Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env in working directory, trying parent", zap.Error(err))
		if err := godotenv.Load("../../.env"); err != nil {
			log.Debug("could not load .env file, using environment variables")
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("hiring")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		log.Info("config file loaded", zap.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.LLM.APIKey = cfg.LLM.keyFor(cfg.LLM.Provider)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l LLMConfig) keyFor(provider string) string {
	switch provider {
	case "openai":
		return l.OpenAIKey
	case "groq":
		return l.GroqKey
	case "gemini":
		return l.GeminiKey
	}
	return ""
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.LLM.Provider {
	case "openai", "groq", "gemini", "ollama", "none":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.OfferValidity <= 0 {
		return errors.New("offer-validity must be positive")
	}
	if c.Workers.Dispatch < 1 || c.Workers.QueueSize < 1 {
		return errors.New("workers.dispatch and workers.queue-size must be at least 1")
	}
	if err := c.DefaultWeights.Validate(); err != nil {
		return fmt.Errorf("default-weights: %w", err)
	}
	return nil
}
