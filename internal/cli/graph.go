package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeterMaltzoff/huh/internal/config"
	"github.com/PeterMaltzoff/huh/pkg/cache"
	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/pipeline"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		formats  string
		output   string
		kindName string
		rootID   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Convert a JSON document into a graph",
		Long: `Convert a JSON document, a saved "huh ask" response or raw model output
into a graph and write it as graph JSON, Graphviz DOT or SVG.

Input without valid JSON becomes the raw-text graph. With --root only the
view rooted at that node (the node and its children) is written. With
several formats, -o names the base path and each format gets its extension.`,
		Example: `  huh graph doc.json
  huh graph answer.json -f svg --kind radial -o answer.svg
  huh graph doc.json -f json,dot,svg -o out/doc
  huh graph doc.json -f dot --root node-2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			kind, err := layout.ParseKind(kindName)
			if err != nil {
				return err
			}
			formatList := pipeline.ParseFormats(formats)
			if output == "" && len(formatList) > 1 {
				return fmt.Errorf("several formats need -o")
			}

			resp, err := loadResponse(args[0])
			if err != nil {
				return err
			}

			store := cache.NewNullCache()
			if cfg.Cache.Backend == config.CacheFile {
				if fc, err := cache.NewFileCache(cfg.Cache.Dir); err == nil {
					store = fc
				}
			}
			defer store.Close()

			prog := newProgress(logger)
			runner := pipeline.NewRunner(store, nil, logger)
			result, err := runner.Execute(ctx, resp, pipeline.Options{
				Formats:  formatList,
				Kind:     kind,
				RootID:   rootID,
				Detailed: detailed,
				Graph:    graphOptions(cfg, logger),
			})
			if err != nil {
				return err
			}
			if result.Raw {
				printWarning("%s has no valid JSON; using raw text", filepath.Base(args[0]))
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(result.Artifacts[formatList[0]])
				return err
			}
			for _, format := range formatList {
				path := output
				if len(formatList) > 1 {
					path = output + "." + format
				}
				if err := writeArtifact(path, result.Artifacts[format]); err != nil {
					return err
				}
				printFile(path)
			}
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, string(kind))
			prog.done("Wrote graph")
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatJSON, "output formats, comma-separated: json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or base path for several formats (default stdout)")
	cmd.Flags().StringVar(&kindName, "kind", string(layout.Vertical), "diagram kind: vertical, horizontal, radial, force")
	cmd.Flags().StringVar(&rootID, "root", "", "write only the view rooted at this node")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add node ids and kinds to labels")

	return cmd
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// loadResponse reads a saved ingestion response, a JSON document or raw
// model output from path.
func loadResponse(path string) (*ingest.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseResponse(data), nil
}

// parseResponse recognises the {"result", "isValidJson"} wire shape and
// otherwise extracts JSON the way model output is handled.
func parseResponse(data []byte) *ingest.Response {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) && bytes.Contains(trimmed, []byte(`"isValidJson"`)) {
		var fields map[string]json.RawMessage
		if json.Unmarshal(trimmed, &fields) == nil {
			if _, ok := fields["isValidJson"]; ok {
				var resp ingest.Response
				if err := json.Unmarshal(trimmed, &resp); err == nil {
					return &resp
				}
			}
		}
	}
	return ingest.Extract(strings.TrimSpace(string(data)))
}
