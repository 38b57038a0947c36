package jsonkit

import (
	"reflect"
	"time"
)

// DateFormatter renders legacy date values (time.Time). codec.RFC3339 and
// codec.Layout satisfy it.
type DateFormatter interface {
	Format(t time.Time) string
}

// DateFormatterFunc adapts a function to DateFormatter.
type DateFormatterFunc func(time.Time) string

func (f DateFormatterFunc) Format(t time.Time) string { return f(t) }

type layoutFormatter string

func (l layoutFormatter) Format(t time.Time) string { return t.Format(string(l)) }

// BeanProperty describes one bean field as seen by a PropertyFilter.
type BeanProperty struct {
	Owner    reflect.Type
	Name     string // Go field name.
	WireName string // Key after tag overrides and naming style.
	Type     reflect.Type
}

// Settings is the immutable emission policy. Build one with SettingsBuilder;
// a *Settings may be shared by concurrent encode calls.
type Settings struct {
	keyQuoted         bool
	ignoreNull        bool
	ignoreFalse       bool
	ignoreEmptyString bool
	ignoreEmptyArray  bool
	nullToEmptyString bool
	htmlEscape        bool
	namingStyle       NamingStyle
	dateFormatter     DateFormatter
	propertyFilter    func(BeanProperty) bool
	beanFilter        func(any) bool
}

// Presets.
var (
	// MaxSettings emits everything with quoted keys.
	MaxSettings = NewSettingsBuilder().Build()
	// MinSettings drops nulls, empty strings and empty arrays and leaves keys
	// unquoted.
	MinSettings = NewSettingsBuilder().KeyQuoted(false).IgnoreEmpty(true).IgnoreNull(true).Build()
)

func (s *Settings) KeyQuoted() bool          { return s.keyQuoted }
func (s *Settings) IgnoreNull() bool         { return s.ignoreNull }
func (s *Settings) IgnoreFalse() bool        { return s.ignoreFalse }
func (s *Settings) IgnoreEmptyString() bool  { return s.ignoreEmptyString }
func (s *Settings) IgnoreEmptyArray() bool   { return s.ignoreEmptyArray }
func (s *Settings) NullToEmptyString() bool  { return s.nullToEmptyString }
func (s *Settings) HTMLEscape() bool         { return s.htmlEscape }
func (s *Settings) NamingStyle() NamingStyle { return s.namingStyle }

// DateFormatter returns the configured formatter, nil meaning epoch millis.
func (s *Settings) DateFormatter() DateFormatter { return s.dateFormatter }

// SettingsBuilder builds Settings. Start from NewSettingsBuilder for the
// MaxSettings defaults or From to customize an existing instance.
type SettingsBuilder struct {
	s Settings
}

// NewSettingsBuilder returns a builder with nothing ignored, keys quoted and
// the Raw naming style.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{s: Settings{keyQuoted: true, namingStyle: Raw}}
}

// From copies every field of s into the builder.
func (b *SettingsBuilder) From(s *Settings) *SettingsBuilder {
	if s != nil {
		b.s = *s
	}
	return b
}

func (b *SettingsBuilder) KeyQuoted(v bool) *SettingsBuilder {
	b.s.keyQuoted = v
	return b
}

func (b *SettingsBuilder) IgnoreNull(v bool) *SettingsBuilder {
	b.s.ignoreNull = v
	return b
}

func (b *SettingsBuilder) IgnoreFalse(v bool) *SettingsBuilder {
	b.s.ignoreFalse = v
	return b
}

func (b *SettingsBuilder) IgnoreEmptyString(v bool) *SettingsBuilder {
	b.s.ignoreEmptyString = v
	return b
}

func (b *SettingsBuilder) IgnoreEmptyArray(v bool) *SettingsBuilder {
	b.s.ignoreEmptyArray = v
	return b
}

// IgnoreEmpty toggles both empty strings and empty arrays.
func (b *SettingsBuilder) IgnoreEmpty(v bool) *SettingsBuilder {
	b.s.ignoreEmptyString = v
	b.s.ignoreEmptyArray = v
	return b
}

func (b *SettingsBuilder) NullToEmptyString(v bool) *SettingsBuilder {
	b.s.nullToEmptyString = v
	return b
}

// HTMLEscape escapes <, > and & inside strings.
func (b *SettingsBuilder) HTMLEscape(v bool) *SettingsBuilder {
	b.s.htmlEscape = v
	return b
}

// NamingStyle sets the key style; nil resets to Raw.
func (b *SettingsBuilder) NamingStyle(ns NamingStyle) *SettingsBuilder {
	if ns == nil {
		ns = Raw
	}
	b.s.namingStyle = ns
	return b
}

// DateFormatter sets the formatter for time.Time values; nil restores epoch
// millis.
func (b *SettingsBuilder) DateFormatter(f DateFormatter) *SettingsBuilder {
	b.s.dateFormatter = f
	return b
}

// DateLayout installs a time.Format layout as the date formatter. An empty
// layout clears it.
func (b *SettingsBuilder) DateLayout(layout string) *SettingsBuilder {
	if layout == "" {
		b.s.dateFormatter = nil
		return b
	}
	b.s.dateFormatter = layoutFormatter(layout)
	return b
}

// PropertyFilter keeps only bean fields for which keep returns true.
func (b *SettingsBuilder) PropertyFilter(keep func(BeanProperty) bool) *SettingsBuilder {
	b.s.propertyFilter = keep
	return b
}

// BeanFilter writes null in place of beans for which keep returns false.
func (b *SettingsBuilder) BeanFilter(keep func(any) bool) *SettingsBuilder {
	b.s.beanFilter = keep
	return b
}

// Build returns an immutable snapshot; the builder may be reused.
func (b *SettingsBuilder) Build() *Settings {
	s := b.s
	return &s
}
