// Package value provides the JSON value model that huh builds graphs from.
//
// # Overview
//
// A [Value] is an immutable tagged union over the six JSON types: string,
// number, boolean, null, object and array. Unlike decoding into map[string]any,
// objects keep their members in document order, which is what makes graph
// materialization deterministic and replayable: the same input always yields
// the same node ids in the same order.
//
// # Parsing
//
// Use [Parse] for byte slices and [Decode] for streams:
//
//	v, err := value.Parse([]byte(`{"b": 1, "a": [true, null]}`))
//	v.Keys() // [b a]
//
// Numbers keep their literal text (as [encoding/json.Number]), so a graph
// label shows "1.50" exactly as the model wrote it.
//
// # Classification
//
// [Classify] maps a value to its display [Kind] and [Format] renders the
// label fragment used on graph nodes:
//
//	value.Classify(value.String("42")) // KindNumber (numeric-string coercion)
//	value.Format(value.String("Ann"))  // Ann (unquoted)
//	value.Format(obj)                  // {Object}
//
// Strings that parse fully as a finite number classify as [KindNumber]. The
// JSON type is still available through [Value.Type]; the coercion only
// affects display styling.
package value
