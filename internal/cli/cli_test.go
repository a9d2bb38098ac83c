package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/internal/config"
	"github.com/PeterMaltzoff/huh/pkg/cache"
	"github.com/PeterMaltzoff/huh/pkg/events"
)

// isolateConfig points the config file at an empty directory and clears
// HUH_* variables.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "HUH_") {
			t.Setenv(k, "")
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"serve", "ask", "graph", "explore", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestGraphCommand(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"a": 1, "b": {"c": true}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "json",
			args: []string{"graph", path},
			want: []string{`"node-0"`, `"node-3"`, `"edge-node-2-node-3"`},
		},
		{
			name: "dot",
			args: []string{"graph", path, "-f", "dot", "--kind", "horizontal"},
			want: []string{"digraph G {", `rankdir="LR";`, `"node-2" -> "node-3";`},
		},
		{
			name: "dot rooted",
			args: []string{"graph", path, "-f", "dot", "--root", "node-2"},
			want: []string{`"node-2" -> "node-3";`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("graph: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}

	out, err := runCLI(t, "graph", path, "-f", "dot", "--root", "node-2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `"node-1"`) {
		t.Errorf("rooted output contains nodes outside the view:\n%s", out)
	}
}

func TestGraphCommandErrors(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`[1, 2]`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := [][]string{
		{"graph", path, "-f", "png"},
		{"graph", path, "--kind", "spiral"},
		{"graph", path, "--root", "node-9"},
		{"graph", filepath.Join(t.TempDir(), "missing.json")},
	}
	for _, args := range tests {
		if _, err := runCLI(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantText  string
	}{
		{"plain document", `{"a": 1}`, true, ""},
		{"array document", `[1, 2, 3]`, true, ""},
		{"fenced model output", "Here:\n```json\n{\"a\": 1}\n```", true, ""},
		{"saved valid response", `{"result": {"a": 1}, "isValidJson": true}`, true, ""},
		{"saved raw response", `{"result": "prose", "isValidJson": false, "rawResponse": "prose!"}`, false, "prose"},
		{"prose", "no json at all", false, "no json at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := parseResponse([]byte(tt.input))
			if resp.IsValidJSON != tt.wantValid {
				t.Fatalf("IsValidJSON = %v, want %v", resp.IsValidJSON, tt.wantValid)
			}
			if !tt.wantValid && resp.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", resp.Text, tt.wantText)
			}
		})
	}
}

func TestReadText(t *testing.T) {
	got, err := readText([]string{"what", "is", "this"}, strings.NewReader("ignored"))
	if err != nil || got != "what is this" {
		t.Errorf("readText(args) = %q, %v", got, err)
	}
	got, err = readText(nil, strings.NewReader("from stdin"))
	if err != nil || got != "from stdin" {
		t.Errorf("readText(stdin) = %q, %v", got, err)
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":          "localhost:8080",
		"127.0.0.1:9000": "127.0.0.1:9000",
		"":               "",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGraphCommandSeveralFormats(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte(`{"a": [1, 2]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "graph", path, "-f", "json,dot"); err == nil {
		t.Error("several formats without -o should fail")
	}

	base := filepath.Join(dir, "out", "doc")
	if _, err := runCLI(t, "graph", path, "-f", "json,dot", "-o", base); err != nil {
		t.Fatalf("graph: %v", err)
	}
	for _, ext := range []string{".json", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", base+ext, err)
		}
	}
}

func TestNewIngestorRemote(t *testing.T) {
	cfg := config.Default()
	quiet := newLogger(io.Discard, log.InfoLevel)

	tests := []struct {
		remote  string
		wantErr bool
	}{
		{"", false},
		{"http://huh.internal:8080", false},
		{"ftp://huh.internal", true},
		{"huh.internal:8080", true},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			ing, err := newIngestor(cfg, cache.NewNullCache(), &events.NoopPublisher{}, quiet, tt.remote)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newIngestor(%q) error = %v, wantErr %v", tt.remote, err, tt.wantErr)
			}
			if !tt.wantErr && ing == nil {
				t.Error("newIngestor returned nil ingestor")
			}
		})
	}
}
