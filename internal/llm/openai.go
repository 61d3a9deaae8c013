// OpenAI-compatible chat completion implementation of [Completer]
//
// Works against api.openai.com or any OpenAI-compatible router (LiteLLM
// proxy, gateway) that serves multiple upstream models behind one API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plexmuse/plexmuse/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is an OpenAI-compatible chat completion client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a completion client. requestsPerSecond bounds outgoing
// calls; zero or negative disables rate limiting.
func NewClient(baseURL, apiKey string, httpClient *http.Client, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// NewClientFromConfig builds a client from the LLM configuration, using
// the first configured provider key.
func NewClientFromConfig(cfg shared.LLMConfig) (*Client, error) {
	apiKey := cfg.OpenAIKey
	if apiKey == "" {
		apiKey = cfg.AnthropicKey
	}
	if apiKey == "" {
		apiKey = cfg.GeminiKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no LLM API key configured", shared.ErrMissingCredentials)
	}

	return NewClient(cfg.BaseURL, apiKey, nil, cfg.RateLimit), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a system+user message pair and returns the raw reply text.
func (c *Client) Complete(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: undecodable completion response (status %d)", shared.ErrAPIRequest, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(body))
		if parsed.Error != nil {
			detail = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: completion returned status %d: %s", shared.ErrAPIRequest, resp.StatusCode, detail)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", shared.ErrEmptyResult)
	}

	return parsed.Choices[0].Message.Content, nil
}
