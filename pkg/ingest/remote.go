package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/httputil"
)

// RemoteClient ingests text through the /api/ollama endpoint of a running
// huh server.
type RemoteClient struct {
	baseURL string
	http    *httputil.Client
}

// NewRemoteClient returns a client for the server at baseURL. A nil hc uses
// [httputil.NewClient] defaults.
func NewRemoteClient(baseURL string, hc *httputil.Client) *RemoteClient {
	if hc == nil {
		hc = httputil.NewClient(nil)
	}
	return &RemoteClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type ingestRequest struct {
	Text string `json:"text"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Ingest posts text and decodes the response. A failure status is reported
// with the message from the server's {"error": ...} body.
func (c *RemoteClient) Ingest(ctx context.Context, text string) (*Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var out Response
	err := c.http.PostJSON(ctx, c.baseURL+"/api/ollama", ingestRequest{Text: text}, &out)
	if err == nil {
		return &out, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	var se *httputil.StatusError
	if errors.As(err, &se) {
		msg := se.Body
		var body errorBody
		if json.Unmarshal([]byte(se.Body), &body) == nil && body.Error != "" {
			msg = body.Error
		}
		code := huherrors.ErrCodeUpstream
		if se.Code >= 400 && se.Code < 500 {
			code = huherrors.ErrCodeInvalidInput
		}
		return nil, huherrors.Wrap(code, err, "%s", msg)
	}
	return nil, huherrors.Wrap(huherrors.ErrCodeNetwork, err, "failed to reach huh server at %s", c.baseURL)
}

var _ Ingestor = (*RemoteClient)(nil)
