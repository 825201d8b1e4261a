package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pricescout/backend/internal/domain"
)

// Client calls the generative-reasoning backend to pick the best offer from
// a normalized comparison table. The API key is not held by the client; it
// arrives per call because each request forwards the caller's credential.
type Client struct {
	model   string
	baseURL string
	timeout time.Duration
	debug   bool
}

// NewClient creates a new reasoning client. baseURL may be empty to use the
// provider default; tests point it at a local server.
func NewClient(model, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
	}
}

// SetDebug enables payload logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Recommend asks the reasoning backend for a single natural-language verdict
// on the best purchase. Returns ErrCredentialRejected when the provider
// refuses the forwarded key, ErrEmptyRecommendation when the call succeeds
// but yields no text, and ErrSynthesisFailed for anything else.
func (c *Client) Recommend(
	ctx context.Context,
	apiKey string,
	request *domain.SearchRequest,
	rows []domain.ComparisonRow,
) (string, error) {
	if apiKey == "" {
		return "", domain.ErrMissingAPIKey
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := buildUserPrompt(request, rows)
	if c.debug {
		log.Printf("[LLM] Sending payload (%d chars, ~%d tokens):\n%s",
			len(userPrompt), len(userPrompt)/4, userPrompt)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		apiErr := &openai.APIError{}
		if errors.As(err, &apiErr) &&
			(apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden) {
			return "", fmt.Errorf("%w: %v", domain.ErrCredentialRejected, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrEmptyRecommendation
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", domain.ErrEmptyRecommendation
	}

	log.Printf("[LLM] Recommendation received (%d chars)", len(answer))
	return answer, nil
}
