// Package cli implements the huh command-line interface.
//
// # Commands
//
//   - serve: HTTP API with session navigation and a websocket view stream
//   - ask: explain text and print the JSON response
//   - graph: materialize a JSON file as graph JSON, DOT or SVG
//   - explore: walk a graph in the terminal
//   - cache: inspect and clear the response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and read back with loggerFromContext.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/PeterMaltzoff/huh/internal/config"
	"github.com/PeterMaltzoff/huh/pkg/buildinfo"
	"github.com/PeterMaltzoff/huh/pkg/cache"
	"github.com/PeterMaltzoff/huh/pkg/events"
	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/httputil"
	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/nav"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "huh"

	// retryDelay is the pause before the first retry of a model call.
	retryDelay = 500 * time.Millisecond
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "huh explains text and lets you explore the explanation as a graph",
		Long:         `huh sends text to a local language model, asks it to explain the text as JSON, and shows that JSON as a graph you can walk one level at a time.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.askCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Component Factories
// =============================================================================

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.Cache.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	default:
		return cache.NewMemoryCache(cfg.Cache.Size)
	}
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		return &events.NoopPublisher{}, nil
	}
	return events.NewNATSPublisher(cfg.Events.NATSURL)
}

func newHTTPClient(cfg *config.Config) *httputil.Client {
	return httputil.NewClient(&http.Client{Timeout: cfg.Ollama.Timeout.Duration}).
		WithRetry(cfg.Ollama.Retries+1, retryDelay)
}

// newIngestor returns a client of another huh server when remote is set and
// a local Ollama pipeline otherwise.
func newIngestor(cfg *config.Config, c cache.Cache, pub events.Publisher, logger *log.Logger, remote string) (ingest.Ingestor, error) {
	hc := newHTTPClient(cfg)
	if remote != "" {
		if err := huherrors.ValidateURL(remote); err != nil {
			return nil, fmt.Errorf("--remote: %w", err)
		}
		return ingest.NewRemoteClient(remote, hc), nil
	}
	gen := ingest.NewOllamaClient(cfg.Ollama.URL, cfg.Ollama.Model,
		ingest.WithHTTPClient(hc),
		ingest.WithOllamaLogger(logger))
	return ingest.NewService(gen,
		ingest.WithCache(c, cache.NewDefaultKeyer(), cfg.Cache.TTL.Duration),
		ingest.WithPublisher(pub),
		ingest.WithLogger(logger)), nil
}

func newAdapter(cfg *config.Config, c cache.Cache, logger *log.Logger) *layout.Adapter {
	engine := layout.NewCachedEngine(layout.NewGraphvizEngine(), c, cache.NewDefaultKeyer(), cfg.Cache.TTL.Duration)
	return layout.NewAdapter(engine, logger)
}

func graphOptions(cfg *config.Config, logger *log.Logger) []graph.Option {
	return []graph.Option{
		graph.WithSpecialFormat(graph.SpecialFormat{
			Enabled:        cfg.Graph.SpecialFormat,
			NameKey:        cfg.Graph.NameKey,
			MaxExtraFields: cfg.Graph.MaxExtraFields,
		}),
		graph.WithLogger(logger),
	}
}

func newController(cfg *config.Config, l nav.Layouter, pub events.Publisher, logger *log.Logger, name string) *nav.Controller {
	return nav.New(l,
		nav.WithInitialLayout(cfg.LayoutKind()),
		nav.WithPublisher(pub),
		nav.WithLogger(logger),
		nav.WithName(name))
}
