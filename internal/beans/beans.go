// Package beans builds per-type field descriptors for struct values and caches
// them. A descriptor lists the exported, non-transient fields in declaration
// order together with their wire names, accessors and format overrides.
package beans

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag read for field options.
const TagName = "jsonkit"

// Field describes one readable property of a struct type.
type Field struct {
	Name string // Go field name.
	// Key is the wire key before any naming style: the tag override when set,
	// otherwise the Go field name.
	Key string
	// Named reports whether Key came from a tag override.
	Named bool
	Type  reflect.Type
	Index []int
	// UseField bypasses the getter and reads the field directly.
	UseField bool
	// DateFormat overrides the settings formatter for time values.
	DateFormat string

	getter    string
	getterPtr bool // getter is declared on the pointer receiver
	hasGetter bool
}

// Descriptor is the cached view of one struct type.
type Descriptor struct {
	Type   reflect.Type
	Fields []Field
	byKey  map[string]int
}

// Lookup finds a field by wire key, then by Go name or key ignoring case,
// underscores and hyphens, so "user_id" and "userId" both find UserID.
func (d *Descriptor) Lookup(key string) (Field, bool) {
	if i, ok := d.byKey[key]; ok {
		return d.Fields[i], true
	}
	nk := fold(key)
	for _, f := range d.Fields {
		if fold(f.Name) == nk || fold(f.Key) == nk {
			return f, true
		}
	}
	return Field{}, false
}

var separators = strings.NewReplacer("_", "", "-", "")

func fold(s string) string {
	return strings.ToLower(separators.Replace(s))
}

// Has reports whether a field with the given wire key exists.
func (d *Descriptor) Has(key string) bool {
	_, ok := d.byKey[key]
	return ok
}

var cache sync.Map // reflect.Type -> *Descriptor

// Of returns the descriptor for t, which must be a struct type or a pointer
// to one.
func Of(t reflect.Type) *Descriptor {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if d, ok := cache.Load(t); ok {
		return d.(*Descriptor)
	}
	d := build(t)
	actual, _ := cache.LoadOrStore(t, d)
	return actual.(*Descriptor)
}

func build(t reflect.Type) *Descriptor {
	d := &Descriptor{Type: t, byKey: map[string]int{}}
	collect(d, t, nil, map[reflect.Type]bool{t: true})
	return d
}

func collect(d *Descriptor, t reflect.Type, index []int, seen map[reflect.Type]bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		opt := parseTag(sf)
		if opt.skip || opt.transient {
			continue
		}
		idx := append(append([]int(nil), index...), i)
		if sf.Anonymous && !opt.named {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && !seen[et] {
				seen[et] = true
				collect(d, et, idx, seen)
				delete(seen, et)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		f := Field{
			Name:       sf.Name,
			Key:        sf.Name,
			Named:      opt.named,
			Type:       sf.Type,
			Index:      idx,
			UseField:   opt.useField,
			DateFormat: opt.dateFormat,
		}
		if opt.named {
			f.Key = opt.name
		}
		if len(index) == 0 {
			bindGetter(&f, d.Type)
		}
		if at, dup := d.byKey[f.Key]; dup {
			// Shallower fields win, as with encoding/json. At equal depth the
			// first declared field is kept.
			if len(d.Fields[at].Index) <= len(f.Index) {
				continue
			}
			d.remove(at)
		}
		d.byKey[f.Key] = len(d.Fields)
		d.Fields = append(d.Fields, f)
	}
}

// remove drops the field at position at and reindexes the key table.
func (d *Descriptor) remove(at int) {
	d.Fields = append(d.Fields[:at], d.Fields[at+1:]...)
	clear(d.byKey)
	for i, f := range d.Fields {
		d.byKey[f.Key] = i
	}
}

// bindGetter looks for a Get<Name>() method returning exactly one value.
func bindGetter(f *Field, owner reflect.Type) {
	name := "Get" + f.Name
	if m, ok := owner.MethodByName(name); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		f.getter, f.hasGetter = name, true
		return
	}
	if m, ok := reflect.PointerTo(owner).MethodByName(name); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		f.getter, f.hasGetter, f.getterPtr = name, true, true
	}
}

// Value reads the field from struct value v. The getter is used unless
// UseField is set or it needs a pointer receiver and v is not addressable.
// ok is false when an embedded nil pointer hides the field.
func (f Field) Value(v reflect.Value) (reflect.Value, bool) {
	if f.hasGetter && !f.UseField {
		recv := v
		if f.getterPtr {
			if !v.CanAddr() {
				return f.fieldValue(v)
			}
			recv = v.Addr()
		}
		return recv.MethodByName(f.getter).Call(nil)[0], true
	}
	return f.fieldValue(v)
}

func (f Field) fieldValue(v reflect.Value) (reflect.Value, bool) {
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// Settable returns the field of addressable struct value v for assignment,
// allocating embedded nil pointers on the way. The result is invalid when a
// nil embedded pointer to an unexported type blocks the way.
func (f Field) Settable(v reflect.Value) reflect.Value {
	for i, x := range f.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

type tagOptions struct {
	name       string
	named      bool
	skip       bool
	transient  bool
	useField   bool
	dateFormat string
}

// parseTag resolves a field's options. Priority for the name:
// jsonkit:"name=..." > json tag name > field name; "-" in either tag
// disables the field.
func parseTag(sf reflect.StructField) tagOptions {
	var o tagOptions
	if gt, ok := sf.Tag.Lookup(TagName); ok {
		if gt == "-" {
			o.skip = true
			return o
		}
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			switch {
			case strings.HasPrefix(p, "name="):
				o.name, o.named = strings.TrimPrefix(p, "name="), true
			case strings.HasPrefix(p, "dateformat="):
				o.dateFormat = strings.TrimPrefix(p, "dateformat=")
			case p == "transient":
				o.transient = true
			case p == "field":
				o.useField = true
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			o.skip = true
			return o
		}
		if !o.named {
			name := jt
			if i := strings.IndexByte(jt, ','); i >= 0 {
				name = jt[:i]
			}
			if name != "" {
				o.name, o.named = name, true
			}
		}
	}
	return o
}
