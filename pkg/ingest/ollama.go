package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/httputil"
	"github.com/PeterMaltzoff/huh/pkg/observability"
)

// Defaults for a local Ollama install.
const (
	DefaultOllamaURL = "http://localhost:11434"
	DefaultModel     = "gemma3"
)

// Generator sends one prompt to a language model and returns its answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// OllamaClient calls the Ollama generate API without streaming.
type OllamaClient struct {
	baseURL string
	model   string
	http    *httputil.Client
	logger  *log.Logger
}

// OllamaOption configures an [OllamaClient].
type OllamaOption func(*OllamaClient)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *httputil.Client) OllamaOption {
	return func(o *OllamaClient) { o.http = c }
}

// WithOllamaLogger sets the logger.
func WithOllamaLogger(l *log.Logger) OllamaOption {
	return func(o *OllamaClient) { o.logger = l }
}

// NewOllamaClient returns a client for the Ollama server at baseURL using
// model. Empty values fall back to [DefaultOllamaURL] and [DefaultModel].
func NewOllamaClient(baseURL, model string, opts ...OllamaOption) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultModel
	}
	c := &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httputil.NewClient(nil)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c
}

// Model returns the model name sent with every request.
func (c *OllamaClient) Model() string { return c.model }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate posts prompt to /api/generate and returns the response text.
// Unreachable servers yield NETWORK_ERROR; error statuses yield
// UPSTREAM_ERROR.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	var out generateResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/api/generate", generateRequest{
		Model:  c.model,
		Prompt: prompt,
	}, &out)
	observability.Ingest().OnGenerate(ctx, c.model, len(prompt), time.Since(start), err)
	if err != nil {
		c.logger.Debug("generate failed", "model", c.model, "err", err)
		return "", classify(err, c.baseURL)
	}
	c.logger.Debug("generate", "model", c.model, "prompt", len(prompt), "response", len(out.Response), "took", time.Since(start))
	return out.Response, nil
}

func classify(err error, url string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || httputil.IsTimeout(err) {
		return huherrors.Wrap(huherrors.ErrCodeTimeout, err, "model service at %s timed out", url)
	}
	var se *httputil.StatusError
	if errors.As(err, &se) && se.Code != http.StatusServiceUnavailable && se.Code != http.StatusBadGateway {
		return huherrors.Wrap(huherrors.ErrCodeUpstream, err, "model service at %s answered %d", url, se.Code)
	}
	return huherrors.Wrap(huherrors.ErrCodeNetwork, err, "failed to reach model service at %s", url)
}
