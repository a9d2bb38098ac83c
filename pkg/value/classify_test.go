package value

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Kind
	}{
		{"Null", Null(), KindNull},
		{"True", Bool(true), KindBoolean},
		{"Number", Int(42), KindNumber},
		{"NumericString", String("42"), KindNumber},
		{"FloatString", String(" 3.14 "), KindNumber},
		{"ExponentString", String("1e3"), KindNumber},
		{"InfinityString", String("Infinity"), KindString},
		{"NaNString", String("NaN"), KindString},
		{"EmptyString", String(""), KindString},
		{"PartialNumber", String("42abc"), KindString},
		{"PlainString", String("Ann"), KindString},
		{"Object", Object(), KindObject},
		{"Array", Array(), KindArray},
		{"Zero", Value{}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.v); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyKeepsJSONType(t *testing.T) {
	v := String("42")
	if v.Type() != TypeString {
		t.Errorf("Type() = %v, want string", v.Type())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"String", String("hello world"), "hello world"},
		{"StringWithQuotes", String(`say "hi"`), `say "hi"`},
		{"Number", Number("1.50"), "1.50"},
		{"True", Bool(true), "true"},
		{"False", Bool(false), "false"},
		{"Null", Null(), "null"},
		{"Object", Object(Member{Key: "a", Value: Int(1)}), "{Object}"},
		{"Array", Array(Int(1)), "[Array]"},
		{"Zero", Value{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.v); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarker(t *testing.T) {
	if Marker(Object()) != ObjectMarker {
		t.Error("object marker mismatch")
	}
	if Marker(Array()) != ArrayMarker {
		t.Error("array marker mismatch")
	}
	if Marker(String("x")) != "" {
		t.Error("primitives have no marker")
	}
}
