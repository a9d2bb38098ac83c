package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/pkg/cache"
	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/events"
	"github.com/PeterMaltzoff/huh/pkg/observability"
)

// ErrEmptyText is returned for submissions with no text.
var ErrEmptyText = huherrors.New(huherrors.ErrCodeInvalidInput, "Text is required")

// DefaultCacheTTL is how long responses stay cached.
const DefaultCacheTTL = 24 * time.Hour

// Prompts sent to the model. The conversion prompt is followed by
// jsonOnlyInstruction.
const (
	explainPrompt = "Explain this: "
	convertPrompt = "Convert this into JSON: "

	jsonOnlyInstruction = "\n\nIMPORTANT: Your response must ONLY contain the JSON object, with no additional text, explanations, or markdown formatting. Do not include backticks, the word 'json', or any other text. Just return a valid, parseable JSON object."
)

// Ingestor turns free-form text into a [Response].
type Ingestor interface {
	Ingest(ctx context.Context, text string) (*Response, error)
}

// Service asks a model to explain text and then to restate the explanation
// as JSON.
type Service struct {
	gen       Generator
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	publisher events.Publisher
	logger    *log.Logger
}

// Option configures a [Service].
type Option func(*Service)

// WithCache caches responses in c under keys from keyer. A nil keyer uses
// [cache.NewDefaultKeyer].
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.keyer = keyer
		s.ttl = ttl
	}
}

// WithPublisher publishes an event after every successful ingestion.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a service over gen.
func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{gen: gen, ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.publisher == nil {
		s.publisher = &events.NoopPublisher{}
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Ingest runs both model calls for text. Output that is not valid JSON is
// not an error: the response comes back with IsValidJSON unset. Errors are
// INVALID_INPUT for bad text and NETWORK_ERROR, UPSTREAM_ERROR or TIMEOUT
// when the model service fails.
func (s *Service) Ingest(ctx context.Context, text string) (*Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := huherrors.ValidateText(text); err != nil {
		return nil, err
	}

	model := s.gen.Model()
	key := s.keyer.ResponseKey(model, text)
	var cached Response
	switch err := cache.GetJSON(ctx, s.cache, "response", key, &cached); {
	case err == nil:
		s.logger.Debug("response cache hit", "model", model)
		return &cached, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("response cache read failed", "err", err)
	}

	hooks := observability.Ingest()
	hooks.OnIngestStart(ctx, model, len(text))
	start := time.Now()

	resp, err := s.run(ctx, text)
	if err != nil {
		hooks.OnIngestComplete(ctx, model, false, time.Since(start), err)
		return nil, err
	}
	hooks.OnIngestComplete(ctx, model, resp.IsValidJSON, time.Since(start), nil)

	if err := cache.SetJSON(ctx, s.cache, "response", key, resp, s.ttl); err != nil {
		s.logger.Warn("response cache write failed", "err", err)
	}
	if err := s.publisher.Publish(ctx, events.TopicIngestCompleted, events.IngestCompleted{
		Model:       model,
		IsValidJSON: resp.IsValidJSON,
	}); err != nil {
		s.logger.Warn("publish failed", "topic", events.TopicIngestCompleted, "err", err)
	}

	s.logger.Info("ingested text", "model", model, "valid_json", resp.IsValidJSON, "took", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func (s *Service) run(ctx context.Context, text string) (*Response, error) {
	explained, err := s.gen.Generate(ctx, explainPrompt+text)
	if err != nil {
		return nil, wrapStage(err, "Failed to connect to Ollama service. Make sure Ollama is running.")
	}

	raw, err := s.gen.Generate(ctx, convertPrompt+explained+jsonOnlyInstruction)
	if err != nil {
		return nil, wrapStage(err, "Failed to convert to JSON with Ollama service.")
	}

	resp := Extract(raw)
	if !resp.IsValidJSON {
		s.logger.Warn("model output is not valid JSON, using raw text", "length", len(raw))
	}
	return resp, nil
}

// wrapStage keeps the code of a model error and replaces its message with
// one fit for users.
func wrapStage(err error, msg string) error {
	code := huherrors.GetCode(err)
	if code == "" {
		if errors.Is(err, context.Canceled) {
			return err
		}
		code = huherrors.ErrCodeUpstream
	}
	return huherrors.Wrap(code, err, "%s", msg)
}

var _ Ingestor = (*Service)(nil)
