package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PeterMaltzoff/huh/pkg/value"
)

// fencedJSON matches an object inside ```json fences, bare ``` fences or
// single backticks.
var fencedJSON = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```|`(\\{[\\s\\S]*?\\})`")

// Extract recovers a JSON document from model output.
//
// The output is trimmed and, when it wraps an object in markdown fences,
// narrowed to that object. If the result does not parse, the span from the
// first '{' to the last '}' is tried. Output that still does not parse is
// returned as text with IsValidJSON unset and RawResponse holding the
// original output. Documents that are null, false, zero or the empty string
// carry nothing to explore and are treated as text too.
func Extract(raw string) *Response {
	text := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		if m[1] != "" {
			text = strings.TrimSpace(m[1])
		} else {
			text = strings.TrimSpace(m[2])
		}
	}

	if v, err := value.Parse([]byte(text)); err == nil && !falsy(v) {
		return &Response{Result: v, IsValidJSON: true}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if v, err := value.Parse([]byte(text[start : end+1])); err == nil {
			return &Response{Result: v, IsValidJSON: true}
		}
	}

	return &Response{Text: text, RawResponse: raw}
}

func falsy(v value.Value) bool {
	switch v.Type() {
	case value.TypeNull:
		return true
	case value.TypeBool:
		return !v.Boolean()
	case value.TypeString:
		return v.Text() == ""
	case value.TypeNumber:
		f, err := strconv.ParseFloat(v.Text(), 64)
		return err == nil && f == 0
	}
	return false
}
