package jsonkit

import (
	"reflect"
	"sort"

	"github.com/reoring/jsonkit/internal/beans"
	"github.com/reoring/jsonkit/ordered"
)

// ResolveMissingProperties returns, sorted, the dotted paths of keys present
// in m that the target type t has no property for. Nested objects are checked
// against struct-typed fields (a.b) and sequences of objects per element
// (a[0].b). The discriminator property of a registered type is not reported.
// Types implementing DynamicProperties and maps with interface values accept
// anything and report nothing.
func ResolveMissingProperties(t reflect.Type, m *ordered.Map) []string {
	set := map[string]struct{}{}
	collectMissing(DefaultRegistry, t, m, "", set)
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func acceptsAnything(t reflect.Type) bool {
	return t.Implements(typeDynamic) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(typeDynamic))
}

func collectMissing(reg *Registry, t reflect.Type, m *ordered.Map, prefix string, set map[string]struct{}) {
	if m.Len() == 0 || acceptsAnything(t) {
		return
	}
	t = indirectType(t)
	switch t.Kind() {
	case reflect.Interface:
		if inst, ok := reg.Resolve(t, m); ok {
			collectMissing(reg, reflect.TypeOf(inst), m, prefix, set)
		}
	case reflect.Map:
		vt := t.Elem()
		if vt.Kind() == reflect.Interface && vt.NumMethod() == 0 {
			return
		}
		for k, v := range m.All() {
			collectNested(reg, vt, v, keyPath(prefix, k), set)
		}
	case reflect.Struct:
		if !isBeanStruct(t) {
			return
		}
		desc := beans.Of(t)
		disc, _, _, _ := reg.discriminatorFor(nil, t)
		for k, v := range m.All() {
			f, ok := desc.Lookup(k)
			if !ok {
				if disc != "" && k == disc {
					continue
				}
				set[keyPath(prefix, k)] = struct{}{}
				continue
			}
			collectNested(reg, f.Type, v, keyPath(prefix, k), set)
		}
	}
}

// collectNested descends into v when the declared type can hold it.
func collectNested(reg *Registry, t reflect.Type, v any, path string, set map[string]struct{}) {
	t = indirectType(t)
	switch x := v.(type) {
	case *ordered.Map:
		switch t.Kind() {
		case reflect.Struct, reflect.Map, reflect.Interface:
			collectMissing(reg, t, x, path, set)
		}
	case []any:
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return
		}
		et := t.Elem()
		for i, e := range x {
			collectNested(reg, et, e, indexPath(path, i), set)
		}
	}
}
