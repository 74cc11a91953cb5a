// Package gemini implements the chat-completion capability task handlers
// depend on, backed by Google's Gemini API. Transient API failures are
// retried with exponential backoff and jitter inside the client, so
// handlers see a single call that either succeeds or fails definitively.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/sureup/worker-api/internal/config"
)

const defaultRetryBaseDelay = 2 * time.Second

// Client wraps the genai client with retry and logging.
type Client struct {
	client     *genai.Client
	model      string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewClient creates a Gemini chat client from the LLM configuration.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	return &Client{
		client:     client,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  defaultRetryBaseDelay,
		logger:     logger.With("component", "gemini_client"),
	}, nil
}

// Chat sends a prompt (with an optional system instruction) to the model
// and returns the response text. Transient errors are retried up to the
// configured limit with exponential backoff and jitter; safety blocks and
// empty responses are permanent and returned immediately.
func (c *Client) Chat(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	var genCfg *genai.GenerateContentConfig
	if system != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		c.logger.Info("calling Gemini API",
			"model", c.model,
			"attempt", attempt+1,
			"max_attempts", c.maxRetries+1)

		text, err := c.generate(ctx, prompt, genCfg)
		if err == nil {
			return text, nil
		}

		c.logger.Error("Gemini API call failed", "attempt", attempt+1, "error", err)

		// Permanent errors are not worth retrying
		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			return "", err
		}

		if attempt >= c.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, c.maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(c.baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		c.logger.Info("retrying after delay", "attempt", attempt+1, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// generate performs one GenerateContent call and validates the response.
func (c *Client) generate(
	ctx context.Context,
	prompt string,
	genCfg *genai.GenerateContentConfig,
) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", ErrInvalidResponse)
	}

	return text, nil
}
