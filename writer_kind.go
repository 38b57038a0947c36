package jsonkit

import (
	"encoding/base64"
	"fmt"
	"iter"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/reoring/jsonkit/ordered"
)

// Enum is implemented by enumerated types. Go enums are usually named
// primitives, so enum-ness is checked before the primitive kinds.
type Enum interface {
	EnumName() string
}

// EnumValuer is an Enum with a declared associated value, written instead of
// the name.
type EnumValuer interface {
	Enum
	EnumValue() any
}

// Iterable is a collection that can be written as a JSON array.
type Iterable interface {
	Iter() iter.Seq[any]
}

// valueKind is the closed set of write strategies, in dispatch precedence.
type valueKind int

const (
	kindNull valueKind = iota
	kindString
	kindBool
	kindChar
	kindNumber
	kindTemporal
	kindClassRef
	kindBinary
	kindEnum
	kindSequence
	kindIterator
	kindSelf
	kindMapping
	kindBean
	kindUnsupported
)

var kindNames = [...]string{"null", "string", "bool", "char", "number", "temporal", "class-ref", "binary", "enum", "sequence", "iterator", "self-describing", "mapping", "bean", "unsupported"}

func (k valueKind) String() string { return kindNames[k] }

var (
	typeTime     = reflect.TypeFor[time.Time]()
	typeSeq      = reflect.TypeFor[iter.Seq[any]]()
	typeIterable = reflect.TypeFor[Iterable]()
	typeMarsh    = reflect.TypeFor[Marshaler]()
)

// classify returns the write strategy for v. rv is v with pointers to
// non-bean values removed; for beans it keeps the pointer so identity can be
// tracked.
func classify(v any) (valueKind, reflect.Value) {
	if v == nil {
		return kindNull, reflect.Value{}
	}
	switch x := v.(type) {
	case json.Number:
		return kindNumber, reflect.ValueOf(v)
	case *big.Int:
		if x == nil {
			return kindNull, reflect.Value{}
		}
		return kindNumber, reflect.ValueOf(v)
	case *big.Float:
		if x == nil {
			return kindNull, reflect.Value{}
		}
		return kindNumber, reflect.ValueOf(v)
	case *big.Rat:
		if x == nil {
			return kindNull, reflect.Value{}
		}
		return kindNumber, reflect.ValueOf(v)
	case time.Time, LocalDate, LocalTime, LocalDateTime:
		return kindTemporal, reflect.ValueOf(v)
	case reflect.Type:
		return kindClassRef, reflect.ValueOf(v)
	case Char:
		return kindChar, reflect.ValueOf(v)
	case *ordered.Map:
		if x == nil {
			return kindNull, reflect.Value{}
		}
		return kindMapping, reflect.ValueOf(v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		if !implementsAny(rv.Type()) && !isBeanStruct(rv.Type().Elem()) {
			return classify(rv.Elem().Interface())
		}
	}
	if _, ok := v.(Enum); ok {
		return kindEnum, rv
	}
	switch rv.Kind() {
	case reflect.String:
		return kindString, rv
	case reflect.Bool:
		return kindBool, rv
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return kindNumber, rv
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return kindBinary, rv
		}
	}
	if rv.Type().Implements(typeIterable) {
		if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice || rv.Kind() == reflect.Func {
			if rv.IsNil() {
				return kindNull, reflect.Value{}
			}
		}
		return kindIterator, rv
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		return kindSequence, rv
	case reflect.Array:
		return kindSequence, rv
	case reflect.Func:
		if rv.Type().ConvertibleTo(typeSeq) {
			if rv.IsNil() {
				return kindNull, reflect.Value{}
			}
			return kindIterator, rv
		}
		return kindUnsupported, rv
	}
	if _, ok := v.(Marshaler); ok {
		return kindSelf, rv
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return kindNull, reflect.Value{}
		}
		return kindMapping, rv
	case reflect.Struct:
		return kindBean, rv
	case reflect.Pointer:
		if rv.Type().Elem().Kind() == reflect.Struct {
			return kindBean, rv
		}
	}
	return kindUnsupported, rv
}

// isBeanStruct reports whether t is a struct written as a bean, as opposed to
// struct-shaped scalar types.
func isBeanStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	switch t {
	case typeTime, reflect.TypeFor[LocalDate](), reflect.TypeFor[LocalTime](), reflect.TypeFor[LocalDateTime]():
		return false
	}
	return true
}

// implementsAny reports whether pointer type t carries one of the behaviour
// interfaces, in which case the pointer must not be dereferenced.
func implementsAny(t reflect.Type) bool {
	return t.Implements(typeMarsh) || t.Implements(typeIterable) || t.Implements(reflect.TypeFor[Enum]())
}

// valueCtx carries per-value options down one call of value.
type valueCtx struct {
	// declared is the static type the value was read from, for
	// discriminator lookup.
	declared reflect.Type
	// date overrides the settings formatter for time.Time values.
	date     DateFormatter
	mapOnly  bool
	beanOnly bool
}

func (w *Writer) value(v any, c valueCtx) error {
	if w.err != nil {
		return w.err
	}
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > w.opt.MaxDepth {
		return w.failf(CodeExceedMaxDepth, "max depth "+strconv.Itoa(w.opt.MaxDepth)+" exceeded")
	}

	k, rv := classify(v)
	switch {
	case c.mapOnly && k != kindMapping && k != kindNull:
		return w.failf(CodeTypeMismatch, fmt.Sprintf("expected a mapping, got %T", v))
	case c.beanOnly && k != kindBean && k != kindNull:
		return w.failf(CodeTypeMismatch, fmt.Sprintf("expected a struct, got %T", v))
	}
	switch k {
	case kindNull:
		return w.Null()
	case kindString:
		return w.writeString(rv.String())
	case kindBool:
		return w.writeLiteral(strconv.FormatBool(rv.Bool()))
	case kindChar:
		return w.writeString(string(rune(rv.Int())))
	case kindNumber:
		return w.writeLiteral(numberText(rv))
	case kindTemporal:
		return w.writeTemporal(rv.Interface(), c.date)
	case kindClassRef:
		return w.writeString(TypeName(rv.Interface().(reflect.Type)))
	case kindBinary:
		return w.writeBinary(rv.Bytes())
	case kindEnum:
		if ev, ok := v.(EnumValuer); ok {
			return w.value(ev.EnumValue(), valueCtx{})
		}
		return w.writeString(v.(Enum).EnumName())
	case kindSequence:
		return w.writeSequence(rv)
	case kindIterator:
		next, stop := pullOf(rv)
		defer stop()
		first, ok := next()
		return w.writePulled(first, ok, next)
	case kindSelf:
		return w.writeSelf(v.(Marshaler))
	case kindMapping:
		return w.writeMapping(rv)
	case kindBean:
		return w.writeBeanChecked(rv, c.declared)
	}
	return w.failf(CodeUnsupportedType, fmt.Sprintf("cannot write %T", v))
}

func numberText(rv reflect.Value) string {
	switch x := rv.Interface().(type) {
	case json.Number:
		return string(x)
	case *big.Int:
		return x.String()
	case *big.Float:
		return x.Text('g', -1)
	case *big.Rat:
		if x.IsInt() {
			return x.Num().String()
		}
		return x.FloatString(20)
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	}
	return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
}

// writeTemporal writes time.Time as epoch millis, or as a quoted string when a
// formatter applies. Civil types always write ISO text.
func (w *Writer) writeTemporal(v any, override DateFormatter) error {
	switch t := v.(type) {
	case time.Time:
		f := override
		if f == nil {
			f = w.s.dateFormatter
		}
		if f == nil {
			return w.writeLiteral(strconv.FormatInt(t.UnixMilli(), 10))
		}
		return w.writeString(f.Format(t))
	case LocalDate:
		return w.writeString(t.String())
	case LocalTime:
		return w.writeString(t.String())
	case LocalDateTime:
		return w.writeString(t.String())
	}
	return w.failf(CodeUnsupportedType, fmt.Sprintf("cannot write %T as a date", v))
}

func (w *Writer) writeBinary(b []byte) error {
	if len(b) == 0 {
		return w.writeString("")
	}
	return w.writeString(base64.StdEncoding.EncodeToString(b))
}

func (w *Writer) writeSequence(rv reflect.Value) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := w.value(rv.Index(i).Interface(), valueCtx{declared: rv.Type().Elem()}); err != nil {
			return err
		}
	}
	return w.EndArray()
}

// pullOf turns an Iterable or iter.Seq[any] into a pull iterator.
func pullOf(rv reflect.Value) (func() (any, bool), func()) {
	var seq iter.Seq[any]
	if it, ok := rv.Interface().(Iterable); ok {
		seq = it.Iter()
	} else {
		seq = rv.Convert(typeSeq).Interface().(iter.Seq[any])
	}
	if seq == nil {
		return func() (any, bool) { return nil, false }, func() {}
	}
	return iter.Pull(seq)
}

// writePulled writes an array whose first element has already been pulled.
func (w *Writer) writePulled(first any, ok bool, next func() (any, bool)) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	for v := first; ok; v, ok = next() {
		if err := w.value(v, valueCtx{}); err != nil {
			return err
		}
	}
	return w.EndArray()
}

func (w *Writer) writeSelf(m Marshaler) error {
	depth := len(w.stack)
	if err := m.WriteJSON(w); err != nil {
		if _, ok := AsIssues(err); !ok {
			err = wrapIssue(CodeMarshalerFailed, w.path(), err)
		}
		return w.fail(err)
	}
	if len(w.stack) != depth {
		return w.failf(CodeParseError, "Marshaler left an unbalanced container")
	}
	return nil
}

func (w *Writer) writeMapping(rv reflect.Value) error {
	if err := w.StartObject(); err != nil {
		return err
	}
	if om, ok := rv.Interface().(*ordered.Map); ok {
		for k, v := range om.All() {
			if err := w.mapEntry(k, v, valueCtx{}); err != nil {
				return err
			}
		}
		return w.EndObject()
	}
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		entries = append(entries, entry{key: mapKey(it.Key()), val: it.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	declared := rv.Type().Elem()
	for _, e := range entries {
		if err := w.mapEntry(e.key, e.val.Interface(), valueCtx{declared: declared}); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if s, ok := k.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(k.Interface())
}

// mapEntry writes one mapping entry: naming style on the key, elision, and
// "" for nulls when NullToEmptyString is on.
func (w *Writer) mapEntry(key string, v any, c valueCtx) error {
	key = w.s.namingStyle(key)
	if isNull(v) && !w.s.ignoreNull && w.s.nullToEmptyString {
		if err := w.Key(key); err != nil {
			return err
		}
		return w.writeString("")
	}
	return w.propertyIgnorable(key, v, c)
}

// propertyIgnorable applies the elision policy, then writes key and value.
// Enum values and bean filters are resolved first, so a value that would be
// written as null is elided too. Iterators are pulled once so the emptiness
// check and the write share state.
func (w *Writer) propertyIgnorable(key string, v any, c valueCtx) error {
	if w.err != nil {
		return w.err
	}
	k, rv := classify(v)
	if k == kindEnum {
		if ev, ok := v.(EnumValuer); ok {
			v = ev.EnumValue()
			k, rv = classify(v)
		}
	}
	if k == kindBean && w.s.beanFilter != nil && !w.s.beanFilter(rv.Interface()) {
		v, k = nil, kindNull
	}
	if w.s.ignoreNull && k == kindNull {
		return nil
	}
	if w.s.ignoreEmptyString && k == kindString && rv.Len() == 0 {
		return nil
	}
	if w.s.ignoreEmptyArray {
		switch k {
		case kindSequence, kindBinary:
			if rv.Len() == 0 {
				return nil
			}
		case kindIterator:
			next, stop := pullOf(rv)
			defer stop()
			first, ok := next()
			if !ok {
				return nil
			}
			if err := w.Key(key); err != nil {
				return err
			}
			return w.nested(func() error { return w.writePulled(first, ok, next) })
		}
	}
	if w.s.ignoreFalse && k == kindBool && !rv.Bool() {
		return nil
	}
	if err := w.Key(key); err != nil {
		return err
	}
	return w.value(v, c)
}

// nested runs fn one level deeper, as value does for its own dispatch.
func (w *Writer) nested(fn func() error) error {
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > w.opt.MaxDepth {
		return w.failf(CodeExceedMaxDepth, "max depth "+strconv.Itoa(w.opt.MaxDepth)+" exceeded")
	}
	return fn()
}

// isNull reports whether v writes as null.
func isNull(v any) bool {
	k, _ := classify(v)
	return k == kindNull
}
