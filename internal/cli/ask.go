package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeterMaltzoff/huh/pkg/ingest"
)

// askCommand creates the ask command.
func (c *CLI) askCommand() *cobra.Command {
	var (
		remote string
		output string
	)

	cmd := &cobra.Command{
		Use:   "ask [text]",
		Short: "Explain text and print the JSON response",
		Long: `Ask the model to explain text and restate the explanation as JSON.

The text is read from the arguments, or from stdin when none are given.
The response is printed in the same shape as POST /api/ollama.`,
		Example: `  huh ask "What is a monad?"
  pbpaste | huh ask -o answer.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
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

			prog := newProgress(logger)
			spin := newSpinnerWithContext(ctx, "Asking "+cfg.Ollama.Model+"...")
			spin.Start()
			resp, err := ing.Ingest(ctx, text)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done("Explained text")

			if !resp.IsValidJSON {
				printWarning("The model did not return valid JSON; showing raw text")
			}
			return writeResponse(cmd.OutOrStdout(), output, resp)
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "ask another huh server at this URL instead of Ollama")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the response to a file")

	return cmd
}

// readText joins args, or reads all of r when there are none.
func readText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func writeResponse(w io.Writer, path string, resp *ingest.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	printNextStep("Explore it", "huh explore "+path)
	return nil
}
