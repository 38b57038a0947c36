package jsonkit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/jsonkit/i18n"
	eng "github.com/reoring/jsonkit/internal/engine"
)

// Issue codes.
const (
	CodeSinkWrite       = "sink_write"
	CodeExceedMaxDepth  = "exceed_max_depth"
	CodeCyclicReference = "cyclic_reference"
	CodeMissingTypeName = "missing_type_name"
	CodeTypeMismatch    = "type_mismatch"
	CodeConflictingKey  = "conflicting_key"
	CodeDuplicateKey    = "duplicate_key"
	CodeParseError      = "parse_error"
	CodeInvalidPath     = "invalid_path"
	CodeUnsupportedType = "unsupported_type"
	CodeMarshalerFailed = "marshaler_failed"
	CodeTruncated       = "truncated"
)

// Issue is a single failure entry.
type Issue struct {
	Path    string // Dotted path (for example: items[2].price). Empty for the root.
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input (-1 when unknown).
	// Params carries structured parameters (e.g., {"keys": [...]}) for i18n
	// and logging.
	Params map[string]any
}

// Issues is the single error family returned by this package. It implements
// error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path != "" {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		} else {
			b.WriteString(it.Code)
		}
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the underlying causes so errors.Is/As can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// newIssue builds a one-element Issues with a translated message. detail, when
// set, is appended to the translated text.
func newIssue(code, path, detail string, params map[string]any) Issues {
	msg := i18n.T(code, nil)
	if detail != "" {
		msg += ": " + detail
	}
	return Issues{{Path: path, Code: code, Message: msg, Offset: -1, Params: params}}
}

func wrapIssue(code, path string, cause error) Issues {
	iss := newIssue(code, path, cause.Error(), nil)
	iss[0].Cause = cause
	return iss
}

// joinPath prefixes a relative dotted path with an object key.
func joinPath(key, sub string) string {
	k := eng.JoinKey("", key)
	switch {
	case sub == "":
		return k
	case sub[0] == '[':
		return k + sub
	}
	return k + "." + sub
}

func keyPath(base, key string) string { return eng.JoinKey(base, key) }

func indexPath(base string, i int) string { return eng.JoinIndex(base, i) }
