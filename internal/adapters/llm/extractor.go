// Package llm extracts scheduling intent from free text with a chat model.
//
// The model is forced to call a single function whose arguments are
// validated by Decode before anything reaches the planner. The extractor
// makes one request per call with no retries and honors the context
// deadline. Callers fall back to the rule-based path on any error.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/okian/studyplan/pkg/logger"
)

// Defaults.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 8 * time.Second
	temperature    = 0.1
)

// ChatClient is the part of the go-openai client the extractor uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor calls the chat model.
type Extractor struct {
	client  ChatClient
	model   string
	timeout time.Duration
}

// New creates an Extractor against the OpenAI API, or any compatible
// endpoint when baseURL is set.
func New(apiKey, baseURL string, opts ...Option) *Extractor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	e := &Extractor{
		client:  openai.NewClientWithConfig(cfg),
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the configured model name.
func (e *Extractor) Model() string { return e.model }

// Analyze sends input to the model and returns the validated extraction.
func (e *Extractor) Analyze(ctx context.Context, input string) (Analysis, error) {
	if strings.TrimSpace(input) == "" {
		return Analysis{}, ErrEmptyInput
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		Tools: []openai.Tool{extractionTool()},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: functionName},
		},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("llm: chat completion: %w", err)
	}

	args, err := toolArguments(resp)
	if err != nil {
		return Analysis{}, err
	}
	a, err := Decode(args)
	if err != nil {
		return Analysis{}, err
	}

	logger.Get().Debug(ctx, "llm extraction decoded",
		logger.String("model", e.model),
		logger.String("intent", string(a.Intent)),
		logger.Float64("confidence", a.Confidence),
		logger.Int("prompt_tokens", resp.Usage.PromptTokens),
		logger.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return a, nil
}

func toolArguments(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrNoToolCall
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == functionName && call.Function.Arguments != "" {
			return call.Function.Arguments, nil
		}
	}
	return "", ErrNoToolCall
}
