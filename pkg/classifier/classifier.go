// Package classifier decides whether a value is a primitive, an ordered sequence or a
// keyed mapping.
package classifier

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/rom111419/formtree/pkg/value"
)

// Kind is the verdict of Classify.
type Kind int

const (
	// KindInvalid marks values that are not JSON-like.
	KindInvalid Kind = iota
	KindPrimitive
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether v is a string, number, boolean, nil or value.Undefined.
func IsPrimitive(v any) bool {
	return Classify(v) == KindPrimitive
}

// IsObject reports whether v is a keyed mapping: not primitive, not nil and not a
// sequence.
func IsObject(v any) bool {
	return Classify(v) == KindObject
}

// IsArray reports whether v is an ordered sequence.
func IsArray(v any) bool {
	return Classify(v) == KindArray
}

// Classify returns the kind of v. Nil pointers, nil slices and nil maps are primitives
// (null), matching how encoding/json writes them.
func Classify(v any) Kind {
	kind, _ := classify(v)
	return kind
}

// Reason explains why v is KindInvalid. It returns an empty string for JSON-like values.
func Reason(v any) string {
	_, reason := classify(v)
	return reason
}

func classify(v any) (Kind, string) {
	v = value.Indirect(v)
	switch x := v.(type) {
	case nil, value.UndefinedType, string, bool, json.Number:
		return KindPrimitive, ""
	case float64:
		return floatKind(x)
	case float32:
		return floatKind(float64(x))
	case *value.Object:
		return KindObject, ""
	case json.RawMessage:
		return KindInvalid, "raw JSON must be decoded first"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindPrimitive, ""
	case reflect.Float32, reflect.Float64:
		return floatKind(rv.Float())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindInvalid, "binary data is not supported"
		}
		if rv.IsNil() {
			return KindPrimitive, ""
		}
		return KindArray, ""
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindInvalid, "binary data is not supported"
		}
		return KindArray, ""
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return KindInvalid, "map keys must be strings"
		}
		if rv.IsNil() {
			return KindPrimitive, ""
		}
		return KindObject, ""
	case reflect.Struct:
		return KindObject, ""
	case reflect.Func:
		return KindInvalid, "functions are not supported"
	case reflect.Chan:
		return KindInvalid, "channels are not supported"
	case reflect.Complex64, reflect.Complex128:
		return KindInvalid, "complex numbers are not supported"
	case reflect.Pointer:
		return KindInvalid, "pointer chain is too deep"
	}
	return KindInvalid, "unsupported type " + rv.Type().String()
}

func floatKind(f float64) (Kind, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return KindInvalid, "non-finite numbers are not supported"
	}
	return KindPrimitive, ""
}
