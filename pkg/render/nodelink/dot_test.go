package nodelink

import (
	"strings"
	"testing"

	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/value"
)

func testGraph(t *testing.T, doc string) *graph.Graph {
	t.Helper()
	v, err := value.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return graph.Materialize(v)
}

func TestToDOT(t *testing.T) {
	g := testGraph(t, `{"a": 1, "b": {"c": true}}`)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G {",
		`rankdir="TB";`,
		`"node-0" [label="{Object}", fillcolor=lightgrey, penwidth=2];`,
		`"node-1" [label="a: 1"];`,
		`"node-2" [label="b: {Object}", fillcolor=lightgrey];`,
		`"node-0" -> "node-1";`,
		`"node-2" -> "node-3";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "layout=") {
		t.Error("engine option leaked into graph attributes")
	}
}

func TestToDOTKinds(t *testing.T) {
	g := testGraph(t, `[1, 2]`)
	tests := []struct {
		kind layout.Kind
		want string
	}{
		{layout.Vertical, `rankdir="TB";`},
		{layout.Horizontal, `rankdir="LR";`},
		{layout.Radial, `overlap="false";`},
		{layout.Force, `maxiter="300";`},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if dot := ToDOT(g, Options{Kind: tt.kind}); !strings.Contains(dot, tt.want) {
				t.Errorf("DOT for %s missing %q", tt.kind, tt.want)
			}
		})
	}
}

func TestToDOTSpecialFormatAndDetail(t *testing.T) {
	g := testGraph(t, `{"person": {"name": "Ann", "age": 30}}`)
	dot := ToDOT(g, Options{Detailed: true})

	if !strings.Contains(dot, `style="rounded,filled,dashed"`) {
		t.Errorf("special-format node not dashed:\n%s", dot)
	}
	if !strings.Contains(dot, `node-2 (object)`) {
		t.Errorf("detailed label missing id and kind:\n%s", dot)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer text", 5, "much…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %q, want %q", got, want)
	}
}
