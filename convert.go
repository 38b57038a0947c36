package jsonkit

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/reoring/jsonkit/codec"
	"github.com/reoring/jsonkit/internal/beans"
	"github.com/reoring/jsonkit/ordered"
)

// DynamicProperties is implemented by types that accept arbitrary keys.
// Unknown object keys are handed to SetDynamicProperty and are never reported
// as missing.
type DynamicProperties interface {
	SetDynamicProperty(name string, value any)
}

// EnumParser is implemented (on the pointer receiver) by enum types that can
// be read back from their name.
type EnumParser interface {
	ParseEnum(name string) error
}

var (
	typeDynamic    = reflect.TypeFor[DynamicProperties]()
	typeEnumParser = reflect.TypeFor[EnumParser]()
	typeValue      = reflect.TypeFor[Value]()
	typeOrderedMap = reflect.TypeFor[*ordered.Map]()
)

// Convert coerces a raw value (as produced by Decode) into target, which must
// be a non-nil pointer. Interface targets and registered base types consult
// DefaultRegistry to pick a concrete type. Unknown object keys are ignored.
func Convert(raw any, target any) error {
	return ConvertWith(DefaultRegistry, raw, target)
}

// ConvertWith is Convert with an explicit registry.
func ConvertWith(reg *Registry, raw any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newIssue(CodeUnsupportedType, "", fmt.Sprintf("target must be a non-nil pointer, got %T", target), nil)
	}
	c := converter{reg: reg}
	return c.into(raw, rv.Elem(), "")
}

type converter struct {
	reg *Registry
}

func (c converter) mismatch(path string, raw any, t reflect.Type) error {
	return newIssue(CodeTypeMismatch, path, fmt.Sprintf("cannot convert %s to %s", rawKindName(raw), t), map[string]any{"target": t.String()})
}

func rawKindName(raw any) string {
	k, err := kindOf(raw)
	if err != nil {
		return fmt.Sprintf("%T", raw)
	}
	return k.String()
}

// into stores raw into the settable value dst.
func (c converter) into(raw any, dst reflect.Value, path string) error {
	t := dst.Type()
	if raw == nil {
		dst.SetZero()
		return nil
	}
	switch t {
	case typeValue:
		dst.Set(reflect.ValueOf(Value{raw: raw}))
		return nil
	case typeOrderedMap:
		m, ok := raw.(*ordered.Map)
		if !ok {
			return c.mismatch(path, raw, t)
		}
		dst.Set(reflect.ValueOf(m))
		return nil
	case typeTime:
		tm, err := toTime(raw)
		if err != nil {
			return wrapIssue(CodeTypeMismatch, path, err)
		}
		dst.Set(reflect.ValueOf(tm))
		return nil
	}
	if ok, err := c.special(raw, dst, path); ok {
		return err
	}
	if s, ok := raw.(string); ok && reflect.PointerTo(t).Implements(typeEnumParser) {
		if err := dst.Addr().Interface().(EnumParser).ParseEnum(s); err != nil {
			return wrapIssue(CodeTypeMismatch, path, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Interface:
		return c.intoInterface(raw, dst, path)
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(t.Elem()))
		}
		return c.into(raw, dst.Elem(), path)
	case reflect.String:
		switch x := raw.(type) {
		case string:
			dst.SetString(x)
		case json.Number:
			dst.SetString(string(x))
		case bool:
			dst.SetString(strconv.FormatBool(x))
		case float64:
			dst.SetString(strconv.FormatFloat(x, 'g', -1, 64))
		default:
			return c.mismatch(path, raw, t)
		}
		return nil
	case reflect.Bool:
		switch x := raw.(type) {
		case bool:
			dst.SetBool(x)
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return c.mismatch(path, raw, t)
			}
			dst.SetBool(b)
		default:
			return c.mismatch(path, raw, t)
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(numberString(raw), 10, 64)
		if err != nil || dst.OverflowInt(n) {
			return c.mismatch(path, raw, t)
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(numberString(raw), 10, 64)
		if err != nil || dst.OverflowUint(n) {
			return c.mismatch(path, raw, t)
		}
		dst.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(numberString(raw), t.Bits())
		if err != nil {
			return c.mismatch(path, raw, t)
		}
		dst.SetFloat(f)
		return nil
	case reflect.Slice:
		arr, ok := raw.([]any)
		if !ok {
			return c.mismatch(path, raw, t)
		}
		out := reflect.MakeSlice(t, len(arr), len(arr))
		for i, v := range arr {
			if err := c.into(v, out.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		arr, ok := raw.([]any)
		if !ok {
			return c.mismatch(path, raw, t)
		}
		dst.SetZero()
		for i := 0; i < len(arr) && i < dst.Len(); i++ {
			if err := c.into(arr[i], dst.Index(i), indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		m, ok := raw.(*ordered.Map)
		if !ok {
			return c.mismatch(path, raw, t)
		}
		return c.intoMap(m, dst, path)
	case reflect.Struct:
		m, ok := raw.(*ordered.Map)
		if !ok {
			return c.mismatch(path, raw, t)
		}
		return c.intoStruct(m, dst, path)
	}
	return newIssue(CodeUnsupportedType, path, "cannot convert into "+t.String(), nil)
}

// special handles scalar-shaped types with their own text forms. ok reports
// whether dst was one of them.
func (c converter) special(raw any, dst reflect.Value, path string) (ok bool, err error) {
	fail := func(e error) error { return wrapIssue(CodeTypeMismatch, path, e) }
	switch dst.Addr().Interface().(type) {
	case *json.Number:
		s := numberString(raw)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return true, c.mismatch(path, raw, dst.Type())
		}
		dst.SetString(s)
		return true, nil
	case *[]byte:
		s, isStr := raw.(string)
		if !isStr {
			if _, isArr := raw.([]any); isArr {
				return false, nil
			}
			return true, c.mismatch(path, raw, dst.Type())
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return true, fail(err)
		}
		dst.SetBytes(b)
		return true, nil
	case *big.Int:
		n, good := new(big.Int).SetString(numberString(raw), 10)
		if !good {
			return true, c.mismatch(path, raw, dst.Type())
		}
		dst.Set(reflect.ValueOf(*n))
		return true, nil
	case *big.Float:
		f, _, err := big.ParseFloat(numberString(raw), 10, 256, big.ToNearestEven)
		if err != nil {
			return true, fail(err)
		}
		dst.Set(reflect.ValueOf(*f))
		return true, nil
	case *Char:
		s, isStr := raw.(string)
		rs := []rune(s)
		if !isStr || len(rs) != 1 {
			return true, c.mismatch(path, raw, dst.Type())
		}
		dst.SetInt(int64(rs[0]))
		return true, nil
	case *LocalDate:
		d, err := ParseLocalDate(fmt.Sprint(raw))
		if err != nil {
			return true, fail(err)
		}
		dst.Set(reflect.ValueOf(d))
		return true, nil
	case *LocalTime:
		lt, err := ParseLocalTime(fmt.Sprint(raw))
		if err != nil {
			return true, fail(err)
		}
		dst.Set(reflect.ValueOf(lt))
		return true, nil
	case *LocalDateTime:
		dt, err := ParseLocalDateTime(fmt.Sprint(raw))
		if err != nil {
			return true, fail(err)
		}
		dst.Set(reflect.ValueOf(dt))
		return true, nil
	}
	return false, nil
}

func (c converter) intoInterface(raw any, dst reflect.Value, path string) error {
	t := dst.Type()
	if m, ok := raw.(*ordered.Map); ok {
		if inst, ok := c.reg.Resolve(t, m); ok {
			iv := reflect.ValueOf(inst)
			if err := c.into(raw, iv.Elem(), path); err != nil {
				return err
			}
			switch {
			case iv.Type().Implements(t):
				dst.Set(iv)
			case iv.Elem().Type().Implements(t):
				dst.Set(iv.Elem())
			default:
				return newIssue(CodeTypeMismatch, path, fmt.Sprintf("%s does not implement %s", iv.Type(), t), nil)
			}
			return nil
		}
	}
	if t.NumMethod() == 0 {
		dst.Set(reflect.ValueOf(raw))
		return nil
	}
	return newIssue(CodeUnsupportedType, path, "no concrete type registered for "+t.String(), nil)
}

func (c converter) intoMap(m *ordered.Map, dst reflect.Value, path string) error {
	t := dst.Type()
	out := reflect.MakeMapWithSize(t, m.Len())
	kt, vt := t.Key(), t.Elem()
	for k, v := range m.All() {
		kv := reflect.New(kt).Elem()
		if err := c.into(k, kv, keyPath(path, k)); err != nil {
			return err
		}
		ev := reflect.New(vt).Elem()
		if err := c.into(v, ev, keyPath(path, k)); err != nil {
			return err
		}
		out.SetMapIndex(kv, ev)
	}
	dst.Set(out)
	return nil
}

func (c converter) intoStruct(m *ordered.Map, dst reflect.Value, path string) error {
	desc := beans.Of(dst.Type())
	var dyn DynamicProperties
	if reflect.PointerTo(dst.Type()).Implements(typeDynamic) {
		dyn = dst.Addr().Interface().(DynamicProperties)
	}
	for k, v := range m.All() {
		f, ok := desc.Lookup(k)
		if !ok {
			if dyn != nil {
				dyn.SetDynamicProperty(k, v)
			}
			continue
		}
		fv := f.Settable(dst)
		if !fv.IsValid() {
			continue
		}
		if err := c.into(v, fv, keyPath(path, k)); err != nil {
			return err
		}
	}
	return nil
}

func numberString(raw any) string {
	switch x := raw.(type) {
	case json.Number:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(raw)
}

func toTime(raw any) (time.Time, error) {
	switch x := raw.(type) {
	case string:
		return codec.ParseTime(x)
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms), nil
	case float64:
		return time.UnixMilli(int64(x)), nil
	}
	return time.Time{}, fmt.Errorf("cannot read %s as time", rawKindName(raw))
}
