package judge

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt pins the judge persona for chat-style providers. The rubric
// itself arrives in the user prompt.
const systemPrompt = "You are a rigorous note-quality judge. " +
	"Respond with a single JSON object and nothing else."

// Options configures a judge provider.
type Options struct {
	// Model names the model to evaluate with.
	Model string
	// APIKey authenticates against the provider.
	APIKey string
	// BaseURL overrides the provider endpoint. For OpenAI this is how an
	// OpenAI-compatible server such as Ollama is reached.
	BaseURL string
	// Temperature controls sampling randomness.
	Temperature float64
	// MaxTokens limits response length. 0 uses the provider default.
	MaxTokens int
}

// OpenAIProvider evaluates prompts against the OpenAI chat-completions API
// or any endpoint speaking the same protocol.
type OpenAIProvider struct {
	client *openai.Client
	opts   Options
}

// NewOpenAIProvider creates a provider from the given options.
func NewOpenAIProvider(opts Options) *OpenAIProvider {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Evaluate sends the prompt and parses the response into a judgment.
// API failures come back as ProviderError.
func (p *OpenAIProvider) Evaluate(ctx context.Context, prompt string) (*Judgment, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.opts.Model,
		Temperature: float32(p.opts.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if p.opts.MaxTokens > 0 {
		req.MaxTokens = p.opts.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Message: "empty response: no choices"}
	}

	judgment, err := ParseJudgment(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai judgment: %w", err)
	}
	return judgment, nil
}
