package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strconv"
)

var (
	// ErrTrailingData is returned by [Parse] and [Decode] when the input holds
	// more than one top-level JSON value.
	ErrTrailingData = errors.New("trailing data after JSON value")

	// ErrEmptyInput is returned by [Parse] when the input is empty or whitespace.
	ErrEmptyInput = errors.New("empty JSON input")
)

// Type is the JSON type of a [Value].
type Type int

const (
	// TypeInvalid is the type of the zero Value.
	TypeInvalid Type = iota
	TypeNull
	TypeBool
	TypeNumber
	TypeString
	TypeObject
	TypeArray
)

// String returns the JSON name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "invalid"
	}
}

// Member is one name/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is invalid and classifies
// as [KindUnknown].
type Value struct {
	typ     Type
	text    string // string contents or number literal
	b       bool
	members []Member
	items   []Value
}

// =============================================================================
// Constructors
// =============================================================================

// String returns a JSON string value.
func String(s string) Value { return Value{typ: TypeString, text: s} }

// Number returns a JSON number value holding the literal n.
func Number(n json.Number) Value { return Value{typ: TypeNumber, text: n.String()} }

// Float returns a JSON number value for f in plain decimal notation.
func Float(f float64) Value {
	return Value{typ: TypeNumber, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Int returns a JSON number value for n.
func Int(n int64) Value { return Value{typ: TypeNumber, text: strconv.FormatInt(n, 10)} }

// Bool returns a JSON boolean value.
func Bool(b bool) Value { return Value{typ: TypeBool, b: b} }

// Null returns the JSON null value.
func Null() Value { return Value{typ: TypeNull} }

// Object returns an object with the given members in order. When a key
// repeats, the later value replaces the earlier one at the earlier position.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{typ: TypeObject, members: out}
}

// Array returns an array holding items in order.
func Array(items ...Value) Value {
	return Value{typ: TypeArray, items: slices.Clone(items)}
}

// =============================================================================
// Accessors
// =============================================================================

// Type returns the JSON type of v.
func (v Value) Type() Type { return v.typ }

// IsValid reports whether v is anything other than the zero Value.
func (v Value) IsValid() bool { return v.typ != TypeInvalid }

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool { return v.typ == TypeObject || v.typ == TypeArray }

// IsPrimitive reports whether v is a string, number, boolean or null.
func (v Value) IsPrimitive() bool { return v.IsValid() && !v.IsContainer() }

// Text returns the contents of a string value, or the literal of a number.
func (v Value) Text() string { return v.text }

// Number returns the literal of a number value.
func (v Value) Number() json.Number { return json.Number(v.text) }

// Boolean returns the value of a boolean.
func (v Value) Boolean() bool { return v.b }

// Len returns the number of members of an object or items of an array.
func (v Value) Len() int {
	switch v.typ {
	case TypeObject:
		return len(v.members)
	case TypeArray:
		return len(v.items)
	}
	return 0
}

// Members returns a copy of the members of an object in document order.
func (v Value) Members() []Member { return slices.Clone(v.members) }

// Items returns a copy of the items of an array.
func (v Value) Items() []Value { return slices.Clone(v.items) }

// Keys returns the member names of an object in document order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the member named key of an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th item of an array.
func (v Value) Index(i int) (Value, bool) {
	if i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// =============================================================================
// Decoding
// =============================================================================

// Parse decodes exactly one JSON value from data.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmptyInput
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON value from r, preserving object member order.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (Value, error) {
	var members []Member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Object(members...), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{typ: TypeArray, items: items}, nil
}

// FromAny converts a value produced by encoding/json (or built by hand from
// maps, slices and primitives) into a Value. Map keys are sorted because Go
// maps carry no order. Unsupported types yield the zero Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case json.Number:
		return Number(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Null()
		}
		return Float(t)
	case float32:
		return FromAny(float64(t))
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case int32:
		return Int(int64(t))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: FromAny(t[k])}
		}
		return Value{typ: TypeObject, members: members}
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Value{typ: TypeArray, items: items}
	}
	return Value{}
}

// =============================================================================
// Encoding
// =============================================================================

// MarshalJSON encodes v, keeping object members in document order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data into v, preserving member order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.typ {
	case TypeNull:
		buf.WriteString("null")
	case TypeBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case TypeNumber:
		buf.WriteString(v.text)
	case TypeString:
		data, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(data)
	case TypeObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case TypeArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return errors.New("cannot encode invalid value")
	}
	return nil
}
