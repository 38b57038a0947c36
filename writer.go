package jsonkit

import (
	"io"
	"reflect"
	"strconv"
	"unicode"

	"github.com/goccy/go-json"

	eng "github.com/reoring/jsonkit/internal/engine"
)

// Marshaler is implemented by values that write themselves.
type Marshaler interface {
	WriteJSON(w *Writer) error
}

type frame struct {
	array      bool
	count      int    // entries written so far
	key        string // last key, for error paths
	keyPending bool   // a key was written and awaits its value
}

type identity struct {
	ptr uintptr
	typ reflect.Type
}

// Writer streams JSON to a sink under a Settings policy. It is single-use and
// must stay on one goroutine. After the first error every call returns that
// error; output already written to the sink is not rolled back.
type Writer struct {
	out      io.Writer
	s        *Settings
	opt      WriteOpt
	reg      *Registry
	depth    int
	inflight map[identity]struct{}
	stack    []frame
	err      error
}

// NewWriter returns a Writer over out. A nil Settings means MaxSettings.
func NewWriter(out io.Writer, s *Settings, opts ...WriteOpt) *Writer {
	if s == nil {
		s = MaxSettings
	}
	w := &Writer{out: out, s: s, opt: lastWriteOpt(opts), reg: DefaultRegistry}
	if w.opt.DetectCyclic {
		w.inflight = make(map[identity]struct{})
	}
	return w
}

// WithRegistry sets the registry consulted for discriminators. It must be
// called before writing.
func (w *Writer) WithRegistry(r *Registry) *Writer {
	if r != nil {
		w.reg = r
	}
	return w
}

// Settings returns the emission policy.
func (w *Writer) Settings() *Settings { return w.s }

// Err returns the sticky error, if any.
func (w *Writer) Err() error { return w.err }

// path renders the dotted path of the current write position.
func (w *Writer) path() string {
	p := ""
	for _, f := range w.stack {
		if f.array {
			if f.count > 0 {
				p = eng.JoinIndex(p, f.count-1)
			}
			continue
		}
		if f.count > 0 {
			p = eng.JoinKey(p, f.key)
		}
	}
	return p
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) failf(code, detail string) error {
	return w.fail(newIssue(code, w.path(), detail, nil))
}

func (w *Writer) write(s string) error {
	if w.err != nil {
		return w.err
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		return w.fail(wrapIssue(CodeSinkWrite, w.path(), err))
	}
	return nil
}

// beginValue places the separator before a value in the enclosing container.
func (w *Writer) beginValue() error {
	if w.err != nil {
		return w.err
	}
	n := len(w.stack)
	if n == 0 {
		return nil
	}
	top := &w.stack[n-1]
	if top.array {
		top.count++
		if top.count > 1 {
			return w.write(",")
		}
		return nil
	}
	if !top.keyPending {
		return w.failf(CodeParseError, "value written without a key")
	}
	top.keyPending = false
	return nil
}

// StartObject writes '{'.
func (w *Writer) StartObject() error {
	if err := w.beginValue(); err != nil {
		return err
	}
	w.stack = append(w.stack, frame{})
	return w.write("{")
}

// EndObject writes '}'.
func (w *Writer) EndObject() error {
	if w.err != nil {
		return w.err
	}
	if n := len(w.stack); n == 0 || w.stack[n-1].array {
		return w.failf(CodeParseError, "EndObject without matching StartObject")
	}
	w.stack = w.stack[:len(w.stack)-1]
	return w.write("}")
}

// StartArray writes '['.
func (w *Writer) StartArray() error {
	if err := w.beginValue(); err != nil {
		return err
	}
	w.stack = append(w.stack, frame{array: true})
	return w.write("[")
}

// EndArray writes ']'.
func (w *Writer) EndArray() error {
	if w.err != nil {
		return w.err
	}
	if n := len(w.stack); n == 0 || !w.stack[n-1].array {
		return w.failf(CodeParseError, "EndArray without matching StartArray")
	}
	w.stack = w.stack[:len(w.stack)-1]
	return w.write("]")
}

// Key writes an object key followed by ':'. The name is quoted and escaped;
// with key quoting disabled, names made only of letters, digits, '_', '$'
// and inner '-' are written bare and every other name is still quoted.
func (w *Writer) Key(name string) error {
	if w.err != nil {
		return w.err
	}
	n := len(w.stack)
	if n == 0 || w.stack[n-1].array || w.stack[n-1].keyPending {
		return w.failf(CodeParseError, "key "+strconv.Quote(name)+" outside an object")
	}
	top := &w.stack[n-1]
	sep := ""
	if top.count > 0 {
		sep = ","
	}
	top.count++
	top.key = name
	top.keyPending = true
	if !w.s.keyQuoted && isBareKey(name) {
		return w.write(sep + name + ":")
	}
	q, err := w.quote(name)
	if err != nil {
		return err
	}
	return w.write(sep + q + ":")
}

// Property writes key and value.
func (w *Writer) Property(key string, v any) error {
	if err := w.Key(key); err != nil {
		return err
	}
	return w.Value(v)
}

// PropertyIgnorable writes key and value unless the elision policy drops the
// pair: nulls, empty strings, empty arrays or false, each when enabled.
func (w *Writer) PropertyIgnorable(key string, v any) error {
	return w.propertyIgnorable(key, v, valueCtx{})
}

// Value writes any Go value. See the package documentation for the mapping.
func (w *Writer) Value(v any) error {
	return w.value(v, valueCtx{})
}

// Null writes the null literal.
func (w *Writer) Null() error {
	if err := w.beginValue(); err != nil {
		return err
	}
	return w.write("null")
}

// Raw writes pre-encoded JSON text as one value. The text is not validated.
func (w *Writer) Raw(text string) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	return w.write(text)
}

// Map writes a mapping: *ordered.Map in its own order, Go maps with keys
// sorted. Entries follow the PropertyIgnorable rules and keys pass through
// the naming style. A nil map writes null.
func (w *Writer) Map(m any) error {
	return w.value(m, valueCtx{mapOnly: true})
}

// Bean writes a struct or pointer to struct as an object.
func (w *Writer) Bean(v any) error {
	return w.value(v, valueCtx{beanOnly: true})
}

// Flush flushes the sink when it supports it.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	type flusher interface{ Flush() error }
	if f, ok := w.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return w.fail(wrapIssue(CodeSinkWrite, "", err))
		}
	}
	return nil
}

func isBareKey(s string) bool {
	if s == "" || s[0] == '-' {
		return false
	}
	for _, r := range s {
		switch {
		case r == '_' || r == '$' || r == '-':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func (w *Writer) quote(s string) (string, error) {
	var (
		b   []byte
		err error
	)
	if w.s.htmlEscape {
		b, err = json.Marshal(s)
	} else {
		b, err = json.MarshalNoEscape(s)
	}
	if err != nil {
		return "", w.fail(wrapIssue(CodeSinkWrite, w.path(), err))
	}
	return string(b), nil
}

// writeString writes a quoted, escaped string value.
func (w *Writer) writeString(s string) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	if s == "" {
		return w.write(`""`)
	}
	q, err := w.quote(s)
	if err != nil {
		return err
	}
	return w.write(q)
}

// writeLiteral writes unquoted text as one value.
func (w *Writer) writeLiteral(s string) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	return w.write(s)
}
