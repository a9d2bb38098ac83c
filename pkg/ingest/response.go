package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/value"
)

// Response is the outcome of one ingestion.
//
// When IsValidJSON is set, Result holds the parsed document. Otherwise Text
// holds the best-effort extraction and RawResponse the untouched model
// output; both feed the raw-text view.
type Response struct {
	Result      value.Value
	Text        string
	IsValidJSON bool
	RawResponse string
}

type wireResponse struct {
	Result      json.RawMessage `json:"result"`
	IsValidJSON bool            `json:"isValidJson"`
	RawResponse string          `json:"rawResponse,omitempty"`
}

// MarshalJSON encodes r as {"result": ..., "isValidJson": ..., "rawResponse": ...}.
// The result is the JSON document itself when valid and a string otherwise.
func (r Response) MarshalJSON() ([]byte, error) {
	var (
		result []byte
		err    error
	)
	if r.IsValidJSON {
		result, err = r.Result.MarshalJSON()
	} else {
		result, err = json.Marshal(r.Text)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireResponse{
		Result:      result,
		IsValidJSON: r.IsValidJSON,
		RawResponse: r.RawResponse,
	})
}

// UnmarshalJSON decodes the wire form written by MarshalJSON.
func (r *Response) UnmarshalJSON(data []byte) error {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Response{IsValidJSON: w.IsValidJSON, RawResponse: w.RawResponse}
	if w.IsValidJSON {
		v, err := value.Parse(w.Result)
		if err != nil {
			return fmt.Errorf("result: %w", err)
		}
		out.Result = v
	} else if len(w.Result) > 0 && string(w.Result) != "null" {
		if err := json.Unmarshal(w.Result, &out.Text); err != nil {
			return fmt.Errorf("result: %w", err)
		}
	}
	*r = out
	return nil
}

// DisplayText is the text shown by the raw view: the compact document for
// valid responses, the extracted text otherwise.
func (r *Response) DisplayText() string {
	if r.IsValidJSON {
		data, err := r.Result.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
	return r.Text
}

// Graph materializes the response: the document graph when valid, the
// raw-text chunk graph otherwise.
func (r *Response) Graph(opts ...graph.Option) *graph.Graph {
	if r.IsValidJSON {
		return graph.Materialize(r.Result, opts...)
	}
	return r.RawGraph()
}

// RawGraph builds the raw-text chunk graph of the response.
func (r *Response) RawGraph() *graph.Graph {
	return graph.RawText(r.DisplayText(), r.RawResponse)
}
