package jsonkit

import (
	"io"
	"reflect"
	"strings"

	"github.com/reoring/jsonkit/ordered"
)

// Encode writes v as JSON text. A nil or missing Settings means MaxSettings.
func Encode(v any, s ...*Settings) (string, error) {
	var set *Settings
	if len(s) > 0 {
		set = s[len(s)-1]
	}
	return EncodeWith(v, set, DefaultWriteOpt())
}

// EncodeWith is Encode with explicit writer options.
func EncodeWith(v any, s *Settings, opt WriteOpt) (string, error) {
	var b strings.Builder
	if err := EncodeTo(&b, v, s, opt); err != nil {
		return "", err
	}
	return b.String(), nil
}

// EncodeTo streams v to out. On error, whatever was already written to out
// stays there.
func EncodeTo(out io.Writer, v any, s *Settings, opts ...WriteOpt) error {
	w := NewWriter(out, s, opts...)
	if err := w.Value(v); err != nil {
		return err
	}
	return w.Flush()
}

// DecodeInto decodes text and converts the result into target, a non-nil
// pointer.
func DecodeInto(text string, target any, opts ...DecodeOpt) error {
	raw, err := Decode(text, opts...)
	if err != nil {
		return err
	}
	return Convert(raw, target)
}

// DecodeAs decodes text into a new T. When T is an interface registered with
// RegisterType, the discriminator picks the concrete type.
func DecodeAs[T any](text string, opts ...DecodeOpt) (T, error) {
	var out T
	err := DecodeInto(text, &out, opts...)
	return out, err
}

// DecodeMap decodes text that must hold an object.
func DecodeMap(text string, opts ...DecodeOpt) (*ordered.Map, error) {
	v, err := Parse(text, opts...)
	if err != nil {
		return nil, err
	}
	return v.AsMap()
}

// DecodeArray decodes text that must hold an array.
func DecodeArray(text string, opts ...DecodeOpt) ([]any, error) {
	v, err := Parse(text, opts...)
	if err != nil {
		return nil, err
	}
	return v.AsArray()
}

// MissingProperties decodes text as an object and reports the keys target's
// type has no property for. See ResolveMissingProperties.
func MissingProperties(text string, target reflect.Type, opts ...DecodeOpt) ([]string, error) {
	m, err := DecodeMap(text, opts...)
	if err != nil {
		return nil, err
	}
	return ResolveMissingProperties(target, m), nil
}
