// Package value models the JSON-like input values a form tree is built from.
//
// A value is nil, a primitive (string, number, boolean), an ordered sequence or a keyed
// mapping. Besides the types declared here, any plain Go value of the same shape is
// accepted: maps with string keys, structs, slices, arrays and pointers to any of them.
package value

import (
	"reflect"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a keyed mapping that iterates in insertion order.
type Object = orderedmap.OrderedMap[string, any]

// Array is an ordered sequence of values.
type Array []any

// Field is a single entry of a keyed mapping.
type Field struct {
	Name  string
	Value any
}

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

// Undefined stands for an absent value. It classifies as a primitive and builds the
// same leaf as nil.
var Undefined UndefinedType

// maxIndirections bounds pointer chasing in Indirect so self-referencing pointers
// cannot loop forever.
const maxIndirections = 64

// NewObject returns an ordered object holding fields in the given order. A repeated
// name keeps its first position and takes the last value.
func NewObject(fields ...Field) *Object {
	obj := orderedmap.New[string, any](len(fields))
	for _, f := range fields {
		obj.Set(f.Name, f.Value)
	}
	return obj
}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}

// Indirect strips pointers and interfaces from v. A nil pointer yields nil. Ordered
// objects are returned as is.
func Indirect(v any) any {
	for i := 0; i < maxIndirections; i++ {
		switch x := v.(type) {
		case nil:
			return nil
		case *Object:
			if x == nil {
				return nil
			}
			return x
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return v
}

// Unwrap returns the plain form of a primitive value: pointers are stripped and
// Undefined, nil slices and nil maps become nil.
func Unwrap(v any) any {
	v = Indirect(v)
	if v == nil || IsUndefined(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}

// Fields returns the entries of a keyed mapping in iteration order. Ordered objects
// keep insertion order, Go maps are sorted by key and structs follow declaration order
// using the name from their json tag. The second result is false when v is not keyed.
func Fields(v any) ([]Field, bool) {
	v = Indirect(v)
	switch x := v.(type) {
	case *Object:
		fields := make([]Field, 0, x.Len())
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			fields = append(fields, Field{Name: pair.Key, Value: pair.Value})
		}
		return fields, true
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Name: k, Value: x[k]})
		}
		return fields, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Name: k.String(), Value: rv.MapIndex(k).Interface()})
		}
		return fields, true
	case reflect.Struct:
		return structFields(rv), true
	}
	return nil, false
}

func structFields(rv reflect.Value) []Field {
	t := rv.Type()
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		fields = append(fields, Field{Name: name, Value: rv.Field(i).Interface()})
	}
	return fields
}

// Items returns the elements of an ordered sequence. The second result is false when v
// is not a sequence.
func Items(v any) ([]any, bool) {
	v = Indirect(v)
	switch x := v.(type) {
	case Array:
		return x, true
	case []any:
		return x, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}
