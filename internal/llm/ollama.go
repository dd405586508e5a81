package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httpclient "hiring-pipeline/pkg/http"
)

const defaultOllamaURL = "http://localhost:11434"

type ollamaBackend struct {
	client  *httpclient.Client
	baseURL string
	model   string
}

func newOllamaBackend(baseURL, model string, timeout time.Duration) *ollamaBackend {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &ollamaBackend{
		client:  httpclient.NewClient(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (b *ollamaBackend) complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  b.model,
		"system": system,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := b.client.PostJSON(ctx, b.baseURL+"/api/generate", reqBody, &result); err != nil {
		return "", fmt.Errorf("ollama connection failed (is Ollama running?): %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}
	if result.Response == "" {
		return "", errors.New("ollama returned empty response")
	}
	return result.Response, nil
}
