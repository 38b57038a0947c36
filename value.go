package jsonkit

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/reoring/jsonkit/ordered"
)

// Kind is the JSON kind of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a decoded JSON value with narrowing accessors. The zero Value is
// null.
type Value struct {
	raw any
}

// Parse decodes text into a Value.
func Parse(text string, opts ...DecodeOpt) (Value, error) {
	raw, err := Decode(text, opts...)
	if err != nil {
		return Value{}, err
	}
	return Value{raw: raw}, nil
}

// ValueOf wraps a raw value as produced by Decode. Other Go values are not
// accepted; use Encode and Parse to convert them.
func ValueOf(raw any) (Value, error) {
	if _, err := kindOf(raw); err != nil {
		return Value{}, err
	}
	return Value{raw: raw}, nil
}

func kindOf(raw any) (Kind, error) {
	switch raw.(type) {
	case nil:
		return KindNull, nil
	case bool:
		return KindBool, nil
	case json.Number, float64:
		return KindNumber, nil
	case string:
		return KindString, nil
	case []any:
		return KindArray, nil
	case *ordered.Map:
		return KindObject, nil
	}
	return KindNull, newIssue(CodeTypeMismatch, "", fmt.Sprintf("%T is not a raw JSON value", raw), nil)
}

// Kind reports the underlying kind.
func (v Value) Kind() Kind {
	k, _ := kindOf(v.raw)
	return k
}

// Raw returns the underlying raw value.
func (v Value) Raw() any { return v.raw }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.raw == nil }

func (v Value) mismatch(want Kind) error {
	return newIssue(CodeTypeMismatch, "", fmt.Sprintf("expected %s, got %s", want, v.Kind()), map[string]any{"expected": want.String(), "got": v.Kind().String()})
}

// AsMap narrows to an object.
func (v Value) AsMap() (*ordered.Map, error) {
	if m, ok := v.raw.(*ordered.Map); ok {
		return m, nil
	}
	return nil, v.mismatch(KindObject)
}

// AsObject narrows to an object with typed getters.
func (v Value) AsObject() (Object, error) {
	m, err := v.AsMap()
	if err != nil {
		return Object{}, err
	}
	return Object{m: m}, nil
}

// AsArray narrows to an array.
func (v Value) AsArray() ([]any, error) {
	if a, ok := v.raw.([]any); ok {
		return a, nil
	}
	return nil, v.mismatch(KindArray)
}

// AsString narrows to a string.
func (v Value) AsString() (string, error) {
	if s, ok := v.raw.(string); ok {
		return s, nil
	}
	return "", v.mismatch(KindString)
}

// AsBool narrows to a bool.
func (v Value) AsBool() (bool, error) {
	if b, ok := v.raw.(bool); ok {
		return b, nil
	}
	return false, v.mismatch(KindBool)
}

// AsNumber narrows to a number. float64 values decoded with NumberFloat64 are
// rendered back to their shortest text.
func (v Value) AsNumber() (json.Number, error) {
	switch n := v.raw.(type) {
	case json.Number:
		return n, nil
	case float64:
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64)), nil
	}
	return "", v.mismatch(KindNumber)
}

// Object is a read-only view over a decoded JSON object.
type Object struct {
	m *ordered.Map
}

// Map returns the underlying ordered map.
func (o Object) Map() *ordered.Map { return o.m }

// Keys returns the keys in document order.
func (o Object) Keys() []string { return o.m.Keys() }

// Len returns the number of entries.
func (o Object) Len() int { return o.m.Len() }

// Has reports whether the key is present, including keys holding null.
func (o Object) Has(key string) bool { return o.m.Has(key) }

// Get returns the raw value for key.
func (o Object) Get(key string) (any, bool) { return o.m.Get(key) }

// GetValue returns the entry as a Value; missing keys yield null.
func (o Object) GetValue(key string) Value {
	raw, _ := o.m.Get(key)
	return Value{raw: raw}
}

// GetString returns the string at key. A missing key or null yields "".
func (o Object) GetString(key string) (string, error) {
	v := o.GetValue(key)
	if v.IsNull() {
		return "", nil
	}
	s, err := v.AsString()
	return s, atKey(err, key)
}

// GetBool returns the bool at key. A missing key or null yields false.
func (o Object) GetBool(key string) (bool, error) {
	v := o.GetValue(key)
	if v.IsNull() {
		return false, nil
	}
	b, err := v.AsBool()
	return b, atKey(err, key)
}

// GetInt64 returns the integer at key. A missing key or null yields 0.
func (o Object) GetInt64(key string) (int64, error) {
	v := o.GetValue(key)
	if v.IsNull() {
		return 0, nil
	}
	n, err := v.AsNumber()
	if err != nil {
		return 0, atKey(err, key)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, atKey(wrapIssue(CodeTypeMismatch, "", err), key)
	}
	return i, nil
}

// GetFloat64 returns the number at key. A missing key or null yields 0.
func (o Object) GetFloat64(key string) (float64, error) {
	v := o.GetValue(key)
	if v.IsNull() {
		return 0, nil
	}
	n, err := v.AsNumber()
	if err != nil {
		return 0, atKey(err, key)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, atKey(wrapIssue(CodeTypeMismatch, "", err), key)
	}
	return f, nil
}

// GetObject returns the nested object at key. A missing key or null yields
// ok=false without error.
func (o Object) GetObject(key string) (Object, bool, error) {
	v := o.GetValue(key)
	if v.IsNull() {
		return Object{}, false, nil
	}
	obj, err := v.AsObject()
	if err != nil {
		return Object{}, false, atKey(err, key)
	}
	return obj, true, nil
}

// GetArray returns the array at key. A missing key or null yields nil.
func (o Object) GetArray(key string) ([]any, error) {
	v := o.GetValue(key)
	if v.IsNull() {
		return nil, nil
	}
	a, err := v.AsArray()
	return a, atKey(err, key)
}

// ForEach calls fn for every entry in document order until fn returns false.
func (o Object) ForEach(fn func(key string, v Value) bool) {
	for k, raw := range o.m.All() {
		if !fn(k, Value{raw: raw}) {
			return
		}
	}
}

func atKey(err error, key string) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	copy(out, iss)
	for i := range out {
		out[i].Path = joinPath(key, out[i].Path)
	}
	return out
}
