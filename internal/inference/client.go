// Package inference wraps the hosted LLM document API used to annotate
// and answer PA form fields.
package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	retry "github.com/avast/retry-go/v4"
	genai "google.golang.org/genai"
)

// ErrMissingAPIKey is returned at construction time when no credential
// is configured. Callers treat this as fatal before any request is made.
var ErrMissingAPIKey = errors.New("inference API key not configured")

const defaultModel = "gemini-2.5-flash"

// DocumentQuerier issues one prompt-plus-document inference request and
// returns the raw text reply. The pipeline depends on this interface so
// tests can substitute a mock.
type DocumentQuerier interface {
	QueryDocument(ctx context.Context, prompt string, pdf []byte) (string, error)
}

// Config holds client construction parameters.
type Config struct {
	APIKey     string
	Model      string
	Timeout    time.Duration // bound applied to each attempt
	MaxRetries uint
	Logger     *slog.Logger
}

// Client is a DocumentQuerier backed by the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retries uint
	logger  *slog.Logger
}

var _ DocumentQuerier = (*Client)(nil)

// New creates a Gemini-backed client. Construction fails with
// ErrMissingAPIKey when no credential is configured.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		client:  c,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retries: cfg.MaxRetries,
		logger:  cfg.Logger,
	}, nil
}

// QueryDocument sends the prompt together with the PDF bytes inline and
// requests a JSON-typed reply. Each attempt runs under a bounded
// timeout; transient failures are retried with backoff.
func (c *Client) QueryDocument(ctx context.Context, prompt string, pdf []byte) (string, error) {
	content := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: pdf}},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var text string
	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			res, err := c.client.Models.GenerateContent(callCtx, c.model, content, config)
			if err != nil {
				return err
			}
			text = res.Text()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(1*time.Second),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("inference request retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	return text, nil
}
