package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
	anthropicTimeout        = 2 * time.Minute

	// maxResponseSize caps the response body read.
	maxResponseSize = 10 * 1024 * 1024
)

// AnthropicProvider evaluates prompts against the Anthropic messages API.
type AnthropicProvider struct {
	httpClient *http.Client
	opts       Options
}

// NewAnthropicProvider creates a provider from the given options.
func NewAnthropicProvider(opts Options) *AnthropicProvider {
	return &AnthropicProvider{
		httpClient: &http.Client{Timeout: anthropicTimeout},
		opts:       opts,
	}
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Evaluate sends the prompt and parses the response into a judgment.
// API failures come back as ProviderError.
func (p *AnthropicProvider) Evaluate(ctx context.Context, prompt string) (*Judgment, error) {
	maxTokens := p.opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       p.opts.Model,
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		Temperature: p.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.opts.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: fmt.Sprintf("reading response: %v", err)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: fmt.Sprintf("malformed response (%d): %v", resp.StatusCode, err)}
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &ProviderError{Provider: p.Name(), Message: msg}
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	judgment, err := ParseJudgment(text.String())
	if err != nil {
		return nil, fmt.Errorf("anthropic judgment: %w", err)
	}
	return judgment, nil
}

func (p *AnthropicProvider) endpoint() string {
	base := p.opts.BaseURL
	if base == "" {
		base = anthropicDefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/v1/messages"
}
