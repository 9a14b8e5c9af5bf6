// Package orchestrator drives the bounded tool-use loop: build a
// system prompt naming the tool catalog, call the chat-completions
// endpoint, parse the reply as either a tool call or a final answer,
// dispatch through the Tool Surface, and repeat until the model
// answers or the call budget runs out.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"edgarqa/internal/ratelimit"
)

// Message is one turn in the chat-completions conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest mirrors the teacher's ZAIRequest shape: a flat messages
// array, fixed temperature, bounded token count. The endpoint here is
// a generic chat-completions API reached over Basic Auth rather than
// a named provider SDK, since spec.md treats the LLM as a
// vendor-agnostic credentialed endpoint.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Config configures a Client.
type Config struct {
	Endpoint    string
	Username    string
	Password    string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns spec.md's fixed temperature (0.2) and a
// conservative token ceiling, with the caller supplying endpoint and
// credential.
func DefaultConfig(endpoint, username, password string) Config {
	return Config{
		Endpoint:    endpoint,
		Username:    username,
		Password:    password,
		Model:       "default",
		Timeout:     30 * time.Second,
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}

// Client calls a chat-completions endpoint over HTTP Basic Auth. A
// process-wide semaphore bounds simultaneous calls and an optional
// token bucket paces call rate, per spec.md §4.8's concurrency gate.
type Client struct {
	cfg        Config
	httpClient *http.Client
	gate       *ratelimit.Semaphore
	pacing     *ratelimit.TokenBucket
}

// New builds a Client from cfg with no concurrency gate or pacing.
func New(cfg Config) *Client {
	return NewWithLimits(cfg, nil, nil)
}

// NewWithLimits builds a Client that acquires gate and pacing before
// every Complete call. Either may be nil, in which case that
// dimension is unbounded.
func NewWithLimits(cfg Config, gate *ratelimit.Semaphore, pacing *ratelimit.TokenBucket) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		gate:       gate,
		pacing:     pacing,
	}
}

// Complete sends messages to the endpoint and returns the assistant's
// reply text. Non-2xx responses and network errors are returned
// as-is; completeWithRetry wraps this for the exponential-backoff
// contract.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := c.gate.Acquire(ctx); err != nil {
		return "", fmt.Errorf("acquiring LLM concurrency ticket: %w", err)
	}
	defer c.gate.Release()
	if err := c.pacing.Acquire(ctx, c.cfg.Model); err != nil {
		return "", fmt.Errorf("acquiring LLM pacing token: %w", err)
	}

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat endpoint returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
