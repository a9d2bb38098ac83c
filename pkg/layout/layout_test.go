package layout

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/value"
	"github.com/PeterMaltzoff/huh/pkg/view"
)

type recordingEngine struct {
	req       Request
	calls     int
	positions map[string]graph.Point
	err       error
}

func (e *recordingEngine) Compute(_ context.Context, req Request) (map[string]graph.Point, error) {
	e.calls++
	e.req = req
	return e.positions, e.err
}

func subgraph(t *testing.T, s string) view.Subgraph {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := graph.Materialize(v)
	root, _ := g.Root()
	return view.Project(g, root.ID, nil)
}

func TestAdapterMergesPositions(t *testing.T) {
	sub := subgraph(t, `{"a": 1, "b": 2}`)
	sub.Nodes[2].Position = graph.Point{X: 7, Y: 8}

	engine := &recordingEngine{positions: map[string]graph.Point{
		"node-0": {X: 10, Y: 20},
		"node-1": {X: 30, Y: 40},
		"ghost":  {X: 99, Y: 99},
	}}
	nodes, err := NewAdapter(engine, nil).Layout(context.Background(), sub, Vertical, nil)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	want := map[string]graph.Point{
		"node-0": {X: 10, Y: 20},
		"node-1": {X: 30, Y: 40},
		"node-2": {X: 7, Y: 8},
	}
	if len(nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(nodes))
	}
	for _, n := range nodes {
		if n.Position != want[n.ID] {
			t.Errorf("%s position = %v, want %v", n.ID, n.Position, want[n.ID])
		}
	}
	if sub.Nodes[0].Position != (graph.Point{}) {
		t.Error("Layout modified its input")
	}
}

func TestAdapterEngineFailure(t *testing.T) {
	sub := subgraph(t, `[1]`)
	sub.Nodes[0].Position = graph.Point{X: 5, Y: 5}

	engine := &recordingEngine{err: errors.New("engine down")}
	nodes, err := NewAdapter(engine, nil).Layout(context.Background(), sub, Force, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if nodes != nil {
		t.Errorf("nodes = %v, want nil on failure", nodes)
	}
	if sub.Nodes[0].Position != (graph.Point{X: 5, Y: 5}) {
		t.Error("failed layout changed input positions")
	}
}

func TestAdapterRequest(t *testing.T) {
	sub := subgraph(t, `{"a": 1, "b": {"c": 2}}`)
	sub.Nodes[1].Position = graph.Point{X: 3, Y: 4}

	engine := &recordingEngine{}
	_, err := NewAdapter(engine, nil).Layout(context.Background(), sub, Horizontal, map[string]string{
		"ranksep": "9",
		"extra":   "x",
	})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	req := engine.req
	if len(req.Nodes) != 3 || len(req.Edges) != 2 {
		t.Fatalf("request has %d nodes, %d edges", len(req.Nodes), len(req.Edges))
	}
	if req.Options["ranksep"] != "9" {
		t.Errorf("override lost: ranksep = %q", req.Options["ranksep"])
	}
	if req.Options["extra"] != "x" {
		t.Error("extra option not forwarded")
	}
	if req.Options["rankdir"] != "LR" {
		t.Errorf("rankdir = %q, want LR", req.Options["rankdir"])
	}
	if req.Options[OptionEngine] != "dot" {
		t.Errorf("engine = %q, want dot", req.Options[OptionEngine])
	}

	e := req.Edges[0]
	if e.ID != "edge-node-0-node-1" || len(e.Sources) != 1 || e.Sources[0] != "node-0" || e.Targets[0] != "node-1" {
		t.Errorf("edge spec = %+v", e)
	}

	if req.Nodes[0].X != nil {
		t.Error("origin placeholder should not be sent as a hint")
	}
	if req.Nodes[1].X == nil || *req.Nodes[1].X != 3 || *req.Nodes[1].Y != 4 {
		t.Error("position hint not forwarded")
	}
	if req.Nodes[0].Height != NodeHeight {
		t.Errorf("height = %v, want %v", req.Nodes[0].Height, NodeHeight)
	}
}

func TestAdapterEmpty(t *testing.T) {
	engine := &recordingEngine{}
	nodes, err := NewAdapter(engine, nil).Layout(context.Background(), view.Empty(), Radial, nil)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("nodes = %d, want 0", len(nodes))
	}
	if engine.calls != 0 {
		t.Error("engine should not run for an empty subgraph")
	}
}

func TestAdapterInvalidKind(t *testing.T) {
	_, err := NewAdapter(&recordingEngine{}, nil).Layout(context.Background(), view.Empty(), Kind("spiral"), nil)
	if !huherrors.Is(err, huherrors.ErrCodeInvalidLayout) {
		t.Errorf("err = %v, want INVALID_LAYOUT", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	tests := []struct {
		kind   Kind
		engine string
		key    string
		want   string
	}{
		{Vertical, "dot", "rankdir", "TB"},
		{Horizontal, "dot", "rankdir", "LR"},
		{Radial, "twopi", "overlap", "false"},
		{Force, "fdp", "maxiter", "300"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			opts := DefaultOptions(tt.kind)
			if opts[OptionEngine] != tt.engine {
				t.Errorf("engine = %q, want %q", opts[OptionEngine], tt.engine)
			}
			if opts[tt.key] != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, opts[tt.key], tt.want)
			}
			if opts["splines"] != "line" {
				t.Error("common options missing")
			}
		})
	}

	a := DefaultOptions(Vertical)
	a["rankdir"] = "BT"
	if DefaultOptions(Vertical)["rankdir"] != "TB" {
		t.Error("DefaultOptions returned shared map")
	}
}

func TestHorizontalWiderThanVertical(t *testing.T) {
	v := DefaultOptions(Vertical)["ranksep"]
	h := DefaultOptions(Horizontal)["ranksep"]
	if !(h > v) {
		t.Errorf("horizontal ranksep %s should exceed vertical %s", h, v)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"vertical", Vertical, false},
		{" Horizontal ", Horizontal, false},
		{"RADIAL", Radial, false},
		{"force", Force, false},
		{"", DefaultKind, false},
		{"tree", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKindNext(t *testing.T) {
	k := Vertical
	seen := map[Kind]bool{}
	for range Kinds() {
		seen[k] = true
		k = k.Next()
	}
	if k != Vertical || len(seen) != 4 {
		t.Errorf("Next does not cycle through all kinds: end=%s seen=%d", k, len(seen))
	}
}

func TestNodeSize(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{"", 180},
		{"a: 1", 212},
		{strings.Repeat("x", 100), MaxWidth},
	}
	for _, tt := range tests {
		w, h := NodeSize(graph.Node{Label: tt.label})
		if w != tt.want {
			t.Errorf("width(%q) = %v, want %v", tt.label, w, tt.want)
		}
		if h != NodeHeight {
			t.Errorf("height = %v, want %v", h, NodeHeight)
		}
	}
}

func TestToDOT(t *testing.T) {
	x, y := 72.0, 144.0
	dot := ToDOT(Request{
		Nodes: []NodeSpec{
			{ID: "node-0", Width: 180, Height: 100},
			{ID: "node-1", Width: 216, Height: 100, X: &x, Y: &y},
		},
		Edges:   []EdgeSpec{{ID: "e", Sources: []string{"node-0"}, Targets: []string{"node-1"}}},
		Options: MergeOptions(Vertical, nil),
	})

	for _, want := range []string{
		"digraph G {",
		`rankdir="TB";`,
		`"node-0" [width=2.500, height=1.389];`,
		`"node-1" [width=3.000, height=1.389, pos="1.000,-2.000"];`,
		`"node-0" -> "node-1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "layout=") {
		t.Error("engine option should not be written as an attribute")
	}
}

func TestParsePlain(t *testing.T) {
	plain := `graph 1 10 5
node "node-0" 2 4 2.5 1.389 "" solid box black lightgrey
node node1 5 1 1 1 "" solid box black lightgrey
edge "node-0" node1 4 2 4 3 3 4 2 5 1 solid black
stop
`
	got, err := ParsePlain([]byte(plain))
	if err != nil {
		t.Fatalf("ParsePlain: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("positions = %d, want 2", len(got))
	}

	check := func(id string, wantX, wantY float64) {
		t.Helper()
		p, ok := got[id]
		if !ok {
			t.Fatalf("%s missing", id)
		}
		if math.Abs(p.X-wantX) > 1e-6 || math.Abs(p.Y-wantY) > 1e-6 {
			t.Errorf("%s = %v, want (%v, %v)", id, p, wantX, wantY)
		}
	}
	check("node-0", (2-1.25)*72, (5-4-0.6945)*72)
	check("node1", 4.5*72, 3.5*72)
}

func TestParsePlainErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"ShortGraph", "graph 1 2\n"},
		{"ShortNode", "graph 1 2 3\nnode a 1 2\n"},
		{"BadNumber", "graph 1 2 3\nnode a x 1 1 1\n"},
		{"NodeBeforeGraph", "node a 1 1 1 1\n"},
		{"Unterminated", "graph 1 2 3\nnode \"a 1 1 1 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePlain([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSplitPlain(t *testing.T) {
	got, err := splitPlain(`node "a \"b\" c" 1  2`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"node", `a "b" c`, "1", "2"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitPlain = %q, want %q", got, want)
	}
}
