package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
)

func TestRemoteClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ollama" {
			http.NotFound(w, r)
			return
		}
		var req ingestRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Text == "fail" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Text is required"}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":"not json","isValidJson":false,"rawResponse":"not json!"}`))
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, nil)
	resp, err := c.Ingest(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if resp.IsValidJSON || resp.Text != "not json" || resp.RawResponse != "not json!" {
		t.Errorf("resp = %+v", resp)
	}

	_, err = c.Ingest(context.Background(), "fail")
	if !huherrors.Is(err, huherrors.ErrCodeInvalidInput) || huherrors.UserMessage(err) != "Text is required" {
		t.Errorf("err = %v", err)
	}
}
