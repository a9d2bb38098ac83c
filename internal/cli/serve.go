package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PeterMaltzoff/huh/internal/server"
	"github.com/PeterMaltzoff/huh/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		remote string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the ingestion endpoint and the session API.

Sessions live in memory and are dropped after a period of inactivity.
Committed views are pushed to websocket subscribers at /api/sessions/{id}/ws.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			store, err := newCache(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			pub, err := newPublisher(cfg)
			if err != nil {
				return fmt.Errorf("connect events: %w", err)
			}
			defer pub.Close()

			ing, err := newIngestor(cfg, store, pub, logger, remote)
			if err != nil {
				return err
			}
			adapter := newAdapter(cfg, store, logger)
			opts := graphOptions(cfg, logger)

			sessions := session.NewStore(func(id string) *session.Session {
				ctrl := newController(cfg, adapter, pub, logger, id)
				return session.New(id, ing, ctrl,
					session.WithGraphOptions(opts...),
					session.WithLogger(logger))
			}, cfg.Session.Capacity, cfg.Session.TTL.Duration)

			srv := server.New(ing, sessions, server.WithLogger(logger))

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
			printKeyValue("model", cfg.Ollama.Model)
			printKeyValue("cache", cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&remote, "remote", "", "forward ingestion to another huh server at this URL")

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
