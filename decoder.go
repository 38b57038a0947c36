package jsonkit

import (
	"errors"
	"io"

	eng "github.com/reoring/jsonkit/internal/engine"
)

// Decode parses text into a raw value tree: nil, bool, json.Number (float64
// with NumberFloat64), string, *ordered.Map or []any. Object key order is
// preserved.
func Decode(text string, opts ...DecodeOpt) (any, error) {
	return DecodeBytes([]byte(text), opts...)
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(b []byte, opts ...DecodeOpt) (any, error) {
	opt := lastDecodeOpt(opts)
	src, err := openBytes(b, opt)
	if err != nil {
		return nil, err
	}
	return decodeFrom(src, opt)
}

// DecodeReader is Decode over a stream. The reader must hold exactly one value.
func DecodeReader(r io.Reader, opts ...DecodeOpt) (any, error) {
	opt := lastDecodeOpt(opts)
	src, err := openSource(r, opt)
	if err != nil {
		return nil, err
	}
	return decodeFrom(src, opt)
}

func decodeFrom(src eng.TokenSource, opt DecodeOpt) (any, error) {
	conv := eng.AsJSONNumber
	if opt.NumberMode == NumberFloat64 {
		conv = eng.AsFloat64
	}
	v, err := eng.DecodeAnyFromSourceWithConv(src, conv)
	if err != nil {
		return nil, toIssues(err, src.Location())
	}
	return v, nil
}

// toIssues maps tokenizer and enforcement errors onto the Issues family.
func toIssues(err error, offset int64) error {
	if err == nil {
		return nil
	}
	if _, ok := AsIssues(err); ok {
		return err
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		iss := newIssue(ie.Code, ie.Path, ie.Message, nil)
		iss[0].Offset = offset
		return iss
	}
	iss := wrapIssue(CodeParseError, "", err)
	iss[0].Offset = offset
	return iss
}
