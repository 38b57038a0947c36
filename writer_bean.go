package jsonkit

import (
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/reoring/jsonkit/internal/beans"
)

// writeBeanChecked guards the bean against back-edges, then writes it.
func (w *Writer) writeBeanChecked(rv reflect.Value, declared reflect.Type) error {
	if w.inflight != nil && rv.Kind() == reflect.Pointer {
		id := identity{ptr: rv.Pointer(), typ: rv.Type()}
		if _, ok := w.inflight[id]; ok {
			if w.opt.IgnoreCyclic {
				Logger().Debug("cyclic reference written as null", zap.String("path", w.path()), zap.Stringer("type", rv.Type()))
				return w.Null()
			}
			return w.failf(CodeCyclicReference, "back-edge to "+rv.Type().String())
		}
		w.inflight[id] = struct{}{}
		defer delete(w.inflight, id)
	}
	return w.writeBean(rv, declared)
}

// writeBean writes the discriminator, if any, then every readable field in
// declaration order.
func (w *Writer) writeBean(rv reflect.Value, declared reflect.Type) error {
	if w.s.beanFilter != nil && !w.s.beanFilter(rv.Interface()) {
		return w.Null()
	}
	sv := rv
	if sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	} else {
		// Copy so getters declared on the pointer receiver are callable.
		cp := reflect.New(sv.Type()).Elem()
		cp.Set(sv)
		sv = cp
	}
	desc := beans.Of(sv.Type())
	wire := make([]string, len(desc.Fields))
	for i, f := range desc.Fields {
		wire[i] = w.s.namingStyle(f.Key)
	}

	prop, name, _, err := w.reg.discriminatorFor(declared, rv.Type())
	if err != nil {
		iss, _ := AsIssues(err)
		iss[0].Path = w.path()
		return w.fail(iss)
	}

	if err := w.StartObject(); err != nil {
		return err
	}
	if name != "" && !slices.Contains(wire, prop) {
		if err := w.Property(prop, name); err != nil {
			return err
		}
	}
	for i, f := range desc.Fields {
		if w.s.propertyFilter != nil && !w.s.propertyFilter(BeanProperty{Owner: sv.Type(), Name: f.Name, WireName: wire[i], Type: f.Type}) {
			continue
		}
		fv, ok := f.Value(sv)
		if !ok {
			continue
		}
		if err := w.beanField(wire[i], f, fv); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func (w *Writer) beanField(key string, f beans.Field, fv reflect.Value) error {
	var v any
	if fv.IsValid() && fv.CanInterface() {
		v = fv.Interface()
	}
	c := valueCtx{declared: f.Type}
	if f.DateFormat != "" {
		c.date = layoutFormatter(f.DateFormat)
	}
	if isNull(v) && !w.s.ignoreNull && w.s.nullToEmptyString && isStringType(f.Type) {
		if err := w.Key(key); err != nil {
			return err
		}
		return w.writeString("")
	}
	return w.propertyIgnorable(key, v, c)
}

// isStringType reports whether a field of type t holds text, possibly behind
// pointers.
func isStringType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}
