package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the display classification of a value. It drives node styling and
// is carried on graph nodes as a structured field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindUnknown Kind = "unknown"
)

// Type markers used as the label fragment of container values.
const (
	ObjectMarker = "{Object}"
	ArrayMarker  = "[Array]"
)

// Classify returns the display kind of v.
//
// Rules, in priority order: null, boolean, number (including strings that
// parse fully as a finite number), object, array, string.
func Classify(v Value) Kind {
	switch v.typ {
	case TypeNull:
		return KindNull
	case TypeBool:
		return KindBoolean
	case TypeNumber:
		return KindNumber
	case TypeString:
		if IsNumericString(v.text) {
			return KindNumber
		}
		return KindString
	case TypeObject:
		return KindObject
	case TypeArray:
		return KindArray
	}
	return KindUnknown
}

// IsNumericString reports whether s, ignoring surrounding whitespace, parses
// as a finite number.
func IsNumericString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Format returns the label fragment for v. Strings are not quoted; numbers
// keep their literal; containers render as [ObjectMarker] or [ArrayMarker].
func Format(v Value) string {
	switch v.typ {
	case TypeString, TypeNumber:
		return v.text
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNull:
		return "null"
	case TypeObject:
		return ObjectMarker
	case TypeArray:
		return ArrayMarker
	}
	return ""
}

// Marker returns the container marker for v, or "" for primitives.
func Marker(v Value) string {
	switch v.typ {
	case TypeObject:
		return ObjectMarker
	case TypeArray:
		return ArrayMarker
	}
	return ""
}
