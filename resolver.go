package jsonkit

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/reoring/jsonkit/ordered"
)

// MetaMode selects how the discriminator names a concrete type.
type MetaMode int

const (
	// MetaClassName: the discriminator is the fully qualified Go type name
	// (pkgpath.Name) of a type registered with RegisterClass.
	MetaClassName MetaMode = iota
	// MetaTypeName: the discriminator is a short name looked up in
	// TypeMeta.Subtypes.
	MetaTypeName
)

// Default discriminator properties.
const (
	DefaultClassProperty = "@class"
	DefaultTypeProperty  = "@type"
)

// Subtype binds a discriminator name to a constructor. New must return a
// pointer to a fresh zero value.
type Subtype struct {
	Name string
	New  func() any
}

// TypeMeta is the discriminator metadata attached to a base type.
type TypeMeta struct {
	Mode MetaMode
	// Property is the discriminator key; empty selects the mode default.
	Property string
	// Subtypes is the TYPE_NAME table, scanned in order.
	Subtypes []Subtype
}

func (m TypeMeta) property() string {
	if m.Property != "" {
		return m.Property
	}
	if m.Mode == MetaTypeName {
		return DefaultTypeProperty
	}
	return DefaultClassProperty
}

type subtypeRef struct {
	base reflect.Type
	name string
}

// Registry holds discriminator metadata per base type and the CLASS_NAME
// constructors. It is populated at startup and safe for concurrent reads.
type Registry struct {
	mu      sync.RWMutex
	metas   map[reflect.Type]TypeMeta
	classes map[string]func() any
	// reverse maps a concrete type (the element type for pointers) to the
	// bases that list it, for the encode side.
	reverse map[reflect.Type][]subtypeRef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		metas:   make(map[reflect.Type]TypeMeta),
		classes: make(map[string]func() any),
		reverse: make(map[reflect.Type][]subtypeRef),
	}
}

// DefaultRegistry is used by the facade functions and the writer.
var DefaultRegistry = NewRegistry()

// Register attaches meta to base. A later registration for the same base
// replaces the earlier one.
func (r *Registry) Register(base reflect.Type, meta TypeMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.metas[base]; ok {
		r.dropReverseLocked(base, old)
	}
	r.metas[base] = meta
	for _, st := range meta.Subtypes {
		if st.New == nil {
			continue
		}
		ct := indirectType(reflect.TypeOf(st.New()))
		r.reverse[ct] = append(r.reverse[ct], subtypeRef{base: base, name: st.Name})
	}
	Logger().Debug("registered type metadata", zap.Stringer("base", base), zap.Int("subtypes", len(meta.Subtypes)))
}

func (r *Registry) dropReverseLocked(base reflect.Type, meta TypeMeta) {
	for _, st := range meta.Subtypes {
		if st.New == nil {
			continue
		}
		ct := indirectType(reflect.TypeOf(st.New()))
		refs := r.reverse[ct][:0]
		for _, ref := range r.reverse[ct] {
			if ref.base != base {
				refs = append(refs, ref)
			}
		}
		r.reverse[ct] = refs
	}
}

// RegisterClass self-registers a constructor under the fully qualified name
// of T, for CLASS_NAME discriminators.
func (r *Registry) RegisterClass(t reflect.Type, factory func() any) {
	name := TypeName(t)
	r.mu.Lock()
	r.classes[name] = factory
	r.mu.Unlock()
	Logger().Debug("registered class", zap.String("class", name))
}

// Meta returns the metadata registered for base.
func (r *Registry) Meta(base reflect.Type) (TypeMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metas[base]
	return m, ok
}

// Resolve picks the concrete type for a decoded object. It returns a fresh
// instance (a pointer) and true, or nil and false when base carries no
// metadata, the discriminator is absent or not a string, or no subtype matches.
func (r *Registry) Resolve(base reflect.Type, m *ordered.Map) (any, bool) {
	meta, ok := r.Meta(base)
	if !ok {
		return nil, false
	}
	raw, ok := m.Get(meta.property())
	if !ok {
		return nil, false
	}
	name, ok := raw.(string)
	if !ok {
		return nil, false
	}
	if meta.Mode == MetaClassName {
		r.mu.RLock()
		f := r.classes[name]
		r.mu.RUnlock()
		if f == nil {
			return nil, false
		}
		return f(), true
	}
	for _, st := range meta.Subtypes {
		if st.Name == name && st.New != nil {
			return st.New(), true
		}
	}
	return nil, false
}

// discriminatorFor returns the discriminator property and value for writing a
// bean of runtime type rt read from a value of static type declared. When
// declared carries no metadata (or is nil) the first base listing rt is used,
// then the CLASS_NAME constructors. found reports whether any metadata applied.
func (r *Registry) discriminatorFor(declared, rt reflect.Type) (prop, name string, found bool, err error) {
	ct := indirectType(rt)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if declared != nil {
		if meta, ok := r.metas[declared]; ok {
			if meta.Mode == MetaClassName {
				return meta.property(), TypeName(ct), true, nil
			}
			for _, ref := range r.reverse[ct] {
				if ref.base == declared {
					return meta.property(), ref.name, true, nil
				}
			}
			return "", "", true, newIssue(CodeMissingTypeName, "", "no type name for "+TypeName(ct)+" under "+declared.String(), map[string]any{"type": TypeName(ct), "base": declared.String()})
		}
	}
	if refs := r.reverse[ct]; len(refs) > 0 {
		meta := r.metas[refs[0].base]
		return meta.property(), refs[0].name, true, nil
	}
	if _, ok := r.classes[TypeName(ct)]; ok {
		return DefaultClassProperty, TypeName(ct), true, nil
	}
	return "", "", false, nil
}

// RegisterType attaches meta to the base type B in DefaultRegistry.
func RegisterType[B any](meta TypeMeta) {
	DefaultRegistry.Register(reflect.TypeFor[B](), meta)
}

// RegisterClass registers factory under the fully qualified name of T in
// DefaultRegistry.
func RegisterClass[T any](factory func() *T) {
	DefaultRegistry.RegisterClass(reflect.TypeFor[T](), func() any { return factory() })
}

// TypeName returns the fully qualified name (pkgpath.Name) of t, looking
// through pointers. Unnamed types fall back to t.String().
func TypeName(t reflect.Type) string {
	t = indirectType(t)
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
