package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/nav"
	"github.com/PeterMaltzoff/huh/pkg/session"
	"github.com/PeterMaltzoff/huh/pkg/view"
)

type identityLayouter struct{}

func (identityLayouter) Layout(_ context.Context, sub view.Subgraph, _ layout.Kind, _ map[string]string) ([]graph.Node, error) {
	return sub.Clone().Nodes, nil
}

// fakeIngestor maps submitted text to raw model output.
type fakeIngestor struct {
	answers map[string]string
	err     error
}

func (f *fakeIngestor) Ingest(_ context.Context, text string) (*ingest.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return ingest.Extract(f.answers[text]), nil
}

func newTestServer(t *testing.T, ing *fakeIngestor) *Server {
	t.Helper()
	store := session.NewStore(func(id string) *session.Session {
		return session.New(id, ing, nav.New(identityLayouter{}))
	}, 8, time.Minute)
	return New(ing, store)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// viewBody is the subset of a session view the tests look at.
type viewBody struct {
	Session     string     `json:"session"`
	RootID      string     `json:"rootId"`
	Layout      string     `json:"layout"`
	Mode        string     `json:"mode"`
	IsValidJSON bool       `json:"isValidJson"`
	View        graphSlice `json:"view"`
}

type graphSlice struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	v := decodeBody[viewBody](t, rec)
	require.NotEmpty(t, v.Session)
	return v.Session
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{})
	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIngestEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{answers: map[string]string{
		"ann":   "```json\n{\"name\": \"Ann\"}\n```",
		"prose": "sorry, no json",
	}})

	rec := do(t, srv, http.MethodPost, "/api/ollama", map[string]string{"text": "ann"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":{"name":"Ann"},"isValidJson":true}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/ollama", map[string]string{"text": "prose"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, body["isValidJson"])
	assert.Equal(t, "sorry, no json", body["rawResponse"])
}

func TestIngestEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		ing    *fakeIngestor
		body   string
		status int
	}{
		{"empty text", &fakeIngestor{}, `{"text": "  "}`, http.StatusBadRequest},
		{"malformed body", &fakeIngestor{}, `{"text":`, http.StatusBadRequest},
		{
			"upstream failure",
			&fakeIngestor{err: huherrors.New(huherrors.ErrCodeUpstream, "model unavailable")},
			`{"text": "hi"}`,
			http.StatusBadGateway,
		},
		{
			"timeout",
			&fakeIngestor{err: huherrors.New(huherrors.ErrCodeTimeout, "model timed out")},
			`{"text": "hi"}`,
			http.StatusGatewayTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.ing)
			req := httptest.NewRequest(http.MethodPost, "/api/ollama", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody[map[string]string](t, rec)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{answers: map[string]string{
		"doc": `{"a": 1, "b": {"c": true}}`,
	}})
	id := createSession(t, srv)
	base := "/api/sessions/" + id

	rec := do(t, srv, http.MethodPost, base+"/submit", map[string]string{"text": "doc"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	submitted := decodeBody[struct {
		View    viewBody `json:"view"`
		Warning string   `json:"warning"`
	}](t, rec)
	assert.Equal(t, "node-0", submitted.View.RootID)
	assert.Equal(t, "json", submitted.View.Mode)
	assert.Empty(t, submitted.Warning)
	assert.Len(t, submitted.View.View.Nodes, 3)

	rec = do(t, srv, http.MethodPost, base+"/promote", map[string]string{"nodeId": "node-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	promoted := decodeBody[struct {
		View     viewBody `json:"view"`
		Promoted bool     `json:"promoted"`
	}](t, rec)
	assert.True(t, promoted.Promoted)
	assert.Equal(t, "node-2", promoted.View.RootID)
	require.Len(t, promoted.View.View.Nodes, 2)
	assert.Equal(t, "node-3", promoted.View.View.Nodes[1].ID)

	rec = do(t, srv, http.MethodPost, base+"/promote", map[string]string{"nodeId": "node-3"})
	require.Equal(t, http.StatusOK, rec.Code)
	leaf := decodeBody[struct {
		Promoted bool `json:"promoted"`
	}](t, rec)
	assert.False(t, leaf.Promoted, "leaf promotion must be a no-op")

	rec = do(t, srv, http.MethodPost, base+"/layout", map[string]string{"kind": "vertical"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vertical", decodeBody[viewBody](t, rec).Layout)

	rec = do(t, srv, http.MethodPost, base+"/layout", map[string]string{"kind": "spiral"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decodeBody[viewBody](t, rec)
	assert.Equal(t, "raw", raw.Mode)
	assert.Equal(t, graph.RawRootID, raw.RootID)

	rec = do(t, srv, http.MethodPost, base+"/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := decodeBody[viewBody](t, rec)
	assert.Empty(t, cleared.RootID)
	assert.Empty(t, cleared.View.Nodes)
}

func TestSubmitInvalidJSON(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{answers: map[string]string{"x": "just words"}})
	id := createSession(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/sessions/"+id+"/submit", map[string]string{"text": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		View    viewBody `json:"view"`
		Warning string   `json:"warning"`
	}](t, rec)
	assert.Equal(t, RawWarning, body.Warning)
	assert.Equal(t, "raw", body.View.Mode)

	rec = do(t, srv, http.MethodPost, "/api/sessions/"+id+"/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No valid JSON available to display."}`, rec.Body.String())
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{})
	for _, path := range []string{"/api/sessions/nope", "/api/sessions/nope/ws"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := do(t, srv, http.MethodPost, "/api/sessions/nope/promote", map[string]string{"nodeId": "node-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{})
	id := createSession(t, srv)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/sessions/"+id, nil).Code)
}

func TestWebSocketStreamsViews(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{answers: map[string]string{"doc": `{"a": {"b": 1}}`}})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	id := createSession(t, srv)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first viewBody
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, id, first.Session)
	assert.Empty(t, first.RootID)

	rec := do(t, srv, http.MethodPost, "/api/sessions/"+id+"/submit", map[string]string{"text": "doc"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var v viewBody
		require.NoError(t, conn.ReadJSON(&v))
		if v.RootID == "node-0" && len(v.View.Nodes) == 2 {
			break
		}
	}
}
