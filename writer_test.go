package jsonkit

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/reoring/jsonkit/ordered"
)

type address struct {
	City string
	Zip  string
}

type person struct {
	Name string
	Age  int
	Tags []string
	Home *address
}

func TestEncode_RoundTrip(t *testing.T) {
	in := person{Name: "Ann", Age: 30, Tags: []string{"a", "b"}, Home: &address{City: "Kyoto", Zip: "600"}}
	text, err := Encode(in)
	require.NoError(t, err)
	require.Equal(t, `{"Name":"Ann","Age":30,"Tags":["a","b"],"Home":{"City":"Kyoto","Zip":"600"}}`, text)

	out, err := DecodeAs[person](text)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncode_MinSettingsRoundTripsThroughRelaxedDecode(t *testing.T) {
	in := person{Name: "Ann", Age: 30, Tags: []string{"a"}, Home: &address{City: "Kyoto", Zip: "600"}}
	text, err := Encode(in, MinSettings)
	require.NoError(t, err)
	require.Equal(t, `{Name:"Ann",Age:30,Tags:["a"],Home:{City:"Kyoto",Zip:"600"}}`, text)

	out, err := DecodeAs[person](text, DecodeOpt{Relaxed: true})
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncode_UnquotedKeysFallBackToQuotes(t *testing.T) {
	text, err := Encode(map[string]int{"a b": 1, "c:d": 2, "ok_1": 3, "-x": 4}, MinSettings)
	require.NoError(t, err)
	require.Equal(t, `{"-x":4,"a b":1,"c:d":2,ok_1:3}`, text)

	back, err := DecodeMap(text, DecodeOpt{Relaxed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"-x", "a b", "c:d", "ok_1"}, back.Keys())
}

type sparse struct {
	A *string
	B string
	C []int
	D int
	E bool
}

func TestEncode_IgnoreNullAndEmpty(t *testing.T) {
	text, err := Encode(sparse{}, MinSettings)
	require.NoError(t, err)
	require.Equal(t, `{D:0,E:false}`, text)

	s := NewSettingsBuilder().From(MinSettings).IgnoreFalse(true).Build()
	text, err = Encode(sparse{}, s)
	require.NoError(t, err)
	require.Equal(t, `{D:0}`, text)

	text, err = Encode(sparse{}, MaxSettings)
	require.NoError(t, err)
	require.Equal(t, `{"A":null,"B":"","C":null,"D":0,"E":false}`, text)
}

func TestEncode_NullToEmptyString(t *testing.T) {
	s := NewSettingsBuilder().NullToEmptyString(true).Build()
	text, err := Encode(sparse{}, s)
	require.NoError(t, err)
	// Only string-typed fields turn into "".
	require.Equal(t, `{"A":"","B":"","C":null,"D":0,"E":false}`, text)

	text, err = Encode(ordered.FromPairs("x", nil), s)
	require.NoError(t, err)
	require.Equal(t, `{"x":""}`, text)
}

type node struct {
	Name string
	Next *node
}

func TestEncode_CyclicReference(t *testing.T) {
	n := &node{Name: "a"}
	n.Next = n

	_, err := Encode(n)
	require.Error(t, err)
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeCyclicReference, iss[0].Code)
	assert.Equal(t, "Next", iss[0].Path)

	text, err := EncodeWith(n, nil, WriteOpt{DetectCyclic: true, IgnoreCyclic: true})
	require.NoError(t, err)
	require.Equal(t, `{"Name":"a","Next":null}`, text)

	_, err = EncodeWith(n, nil, WriteOpt{MaxDepth: 50})
	require.True(t, HasCode(err, CodeExceedMaxDepth), "got %v", err)
}

func TestEncode_SharedPointerIsNotACycle(t *testing.T) {
	shared := &address{City: "Nara"}
	text, err := Encode([]*address{shared, shared})
	require.NoError(t, err)
	require.Equal(t, `[{"City":"Nara","Zip":""},{"City":"Nara","Zip":""}]`, text)
}

type color int

const (
	red color = iota
	green
)

func (c color) EnumName() string { return [...]string{"RED", "GREEN"}[c] }

func (c *color) ParseEnum(name string) error {
	switch name {
	case "RED":
		*c = red
	case "GREEN":
		*c = green
	default:
		return fmt.Errorf("unknown color %q", name)
	}
	return nil
}

type level int

func (level) EnumName() string { return "HIGH" }
func (level) EnumValue() any   { return 3 }

func TestEncode_Enums(t *testing.T) {
	text, err := Encode(green)
	require.NoError(t, err)
	require.Equal(t, `"GREEN"`, text)

	text, err = Encode(level(0))
	require.NoError(t, err)
	require.Equal(t, `3`, text)

	c, err := DecodeAs[color](`"GREEN"`)
	require.NoError(t, err)
	require.Equal(t, green, c)

	_, err = DecodeAs[color](`"BLUE"`)
	require.True(t, HasCode(err, CodeTypeMismatch))
}

func TestEncode_Bytes(t *testing.T) {
	text, err := Encode([]byte{})
	require.NoError(t, err)
	require.Equal(t, `""`, text)

	text, err = Encode([]byte{0, 1})
	require.NoError(t, err)
	require.Equal(t, `"AAE="`, text)

	b, err := DecodeAs[[]byte](text)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, b)
}

func TestEncode_HTMLEscape(t *testing.T) {
	text, err := Encode("<a&b>")
	require.NoError(t, err)
	require.Equal(t, `"<a&b>"`, text)

	s := NewSettingsBuilder().HTMLEscape(true).Build()
	text, err = Encode("<a&b>", s)
	require.NoError(t, err)
	require.Equal(t, `"\u003ca\u0026b\u003e"`, text)
}

type account struct {
	User   string
	Secret string
	Owner  *address
}

func TestEncode_Filters(t *testing.T) {
	s := NewSettingsBuilder().
		PropertyFilter(func(p BeanProperty) bool { return p.Name != "Secret" }).
		BeanFilter(func(v any) bool {
			_, isAddr := v.(*address)
			return !isAddr
		}).
		Build()
	text, err := Encode(account{User: "u", Secret: "s", Owner: &address{City: "c"}}, s)
	require.NoError(t, err)
	require.Equal(t, `{"User":"u","Owner":null}`, text)
}

type unset int

func (unset) EnumName() string { return "UNSET" }
func (unset) EnumValue() any   { return nil }

type flagged struct {
	E unset
	F level
}

func TestEncode_IgnoreNullCoversLateNulls(t *testing.T) {
	s := NewSettingsBuilder().
		IgnoreNull(true).
		BeanFilter(func(v any) bool {
			_, isAddr := v.(*address)
			return !isAddr
		}).
		Build()
	text, err := Encode(account{User: "u", Owner: &address{City: "c"}}, s)
	require.NoError(t, err)
	require.Equal(t, `{"User":"u","Secret":""}`, text)

	text, err = Encode(flagged{}, s)
	require.NoError(t, err)
	require.Equal(t, `{"F":3}`, text)

	text, err = Encode(ordered.FromPairs("e", unset(0), "f", level(0)), s)
	require.NoError(t, err)
	require.Equal(t, `{"f":3}`, text)

	text, err = Encode(flagged{})
	require.NoError(t, err)
	require.Equal(t, `{"E":null,"F":3}`, text)
}

type labelBase struct {
	Name string
	Kind string
}

type relabeled struct {
	labelBase
	Name string
}

func TestEncode_OuterFieldShadowsEmbedded(t *testing.T) {
	text, err := Encode(relabeled{labelBase: labelBase{Name: "inner", Kind: "k"}, Name: "outer"})
	require.NoError(t, err)
	require.Equal(t, `{"Kind":"k","Name":"outer"}`, text)

	var got relabeled
	require.NoError(t, DecodeInto(`{"Name":"x"}`, &got))
	assert.Equal(t, "x", got.Name)
	assert.Empty(t, got.labelBase.Name)
}

type ids struct {
	UserID    int
	HTTPProxy string
	Label     string `jsonkit:"name=DisplayLabel"`
}

func TestEncode_NamingStyles(t *testing.T) {
	v := ids{UserID: 1, HTTPProxy: "p", Label: "l"}
	cases := []struct {
		style NamingStyle
		want  string
	}{
		{Raw, `{"UserID":1,"HTTPProxy":"p","DisplayLabel":"l"}`},
		{LowerCamel, `{"userId":1,"httpProxy":"p","displayLabel":"l"}`},
		{UpperCamel, `{"UserId":1,"HttpProxy":"p","DisplayLabel":"l"}`},
		{LowerUnderscore, `{"user_id":1,"http_proxy":"p","display_label":"l"}`},
		{UpperUnderscore, `{"USER_ID":1,"HTTP_PROXY":"p","DISPLAY_LABEL":"l"}`},
	}
	for _, c := range cases {
		text, err := Encode(v, NewSettingsBuilder().NamingStyle(c.style).Build())
		require.NoError(t, err)
		assert.Equal(t, c.want, text)
	}
}

func TestEncode_MapsAreSortedAndOrderedMapsKeepOrder(t *testing.T) {
	text, err := Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":2,"c":3}`, text)

	text, err = Encode(ordered.FromPairs("z", 1, "a", 2))
	require.NoError(t, err)
	require.Equal(t, `{"z":1,"a":2}`, text)
}

type event struct {
	At   time.Time
	Day  time.Time `jsonkit:"dateformat=2006-01-02"`
	Date LocalDate
}

func TestEncode_Dates(t *testing.T) {
	at := time.UnixMilli(1735787045000).UTC()
	ev := event{At: at, Day: at, Date: LocalDate{Year: 2024, Month: time.March, Day: 9}}

	text, err := Encode(ev)
	require.NoError(t, err)
	require.Equal(t, `{"At":1735787045000,"Day":"2025-01-02","Date":"2024-03-09"}`, text)

	s := NewSettingsBuilder().DateLayout(time.RFC3339).Build()
	text, err = Encode(ev, s)
	require.NoError(t, err)
	require.Equal(t, "2025-01-02T03:04:05Z", gjson.Get(text, "At").String())
	require.Equal(t, "2025-01-02", gjson.Get(text, "Day").String())

	back, err := DecodeAs[event](text)
	require.NoError(t, err)
	require.True(t, back.At.Equal(at))
	require.Equal(t, ev.Date, back.Date)
}

func TestEncode_Iterators(t *testing.T) {
	var seq iter.Seq[any] = func(yield func(any) bool) {
		for _, v := range []any{1, "two"} {
			if !yield(v) {
				return
			}
		}
	}
	text, err := Encode(seq)
	require.NoError(t, err)
	require.Equal(t, `[1,"two"]`, text)

	var empty iter.Seq[any] = func(func(any) bool) {}
	text, err = Encode(ordered.FromPairs("e", empty, "s", seq), MinSettings)
	require.NoError(t, err)
	require.Equal(t, `{s:[1,"two"]}`, text)
}

type point struct{ X, Y int }

func (p point) WriteJSON(w *Writer) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	if err := w.Value(p.X); err != nil {
		return err
	}
	if err := w.Value(p.Y); err != nil {
		return err
	}
	return w.EndArray()
}

type broken struct{}

func (broken) WriteJSON(*Writer) error { return errors.New("boom") }

func TestEncode_Marshaler(t *testing.T) {
	text, err := Encode(map[string]any{"p": point{1, 2}})
	require.NoError(t, err)
	require.Equal(t, `{"p":[1,2]}`, text)

	_, err = Encode(map[string]any{"b": broken{}})
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeMarshalerFailed, iss[0].Code)
	assert.Equal(t, "b", iss[0].Path)
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(map[string]any{"ch": make(chan int)})
	require.True(t, HasCode(err, CodeUnsupportedType))
}

func TestWriter_CommaPlacement(t *testing.T) {
	var b bytes.Buffer
	w := NewWriter(&b, nil)
	require.NoError(t, w.StartObject())
	require.NoError(t, w.Property("a", 1))
	require.NoError(t, w.Key("b"))
	require.NoError(t, w.StartArray())
	require.NoError(t, w.Value(1))
	require.NoError(t, w.Null())
	require.NoError(t, w.Raw(`{"r":true}`))
	require.NoError(t, w.EndArray())
	require.NoError(t, w.PropertyIgnorable("c", nil))
	require.NoError(t, w.EndObject())
	require.Equal(t, `{"a":1,"b":[1,null,{"r":true}],"c":null}`, b.String())
}

func TestWriter_MisuseIsSticky(t *testing.T) {
	var b bytes.Buffer
	w := NewWriter(&b, nil)
	require.NoError(t, w.StartObject())
	err := w.Value(1)
	require.True(t, HasCode(err, CodeParseError))
	require.Equal(t, err, w.Key("a"))
	require.Equal(t, err, w.Err())
}

func TestWriter_MapAndBeanGuards(t *testing.T) {
	var b bytes.Buffer
	require.True(t, HasCode(NewWriter(&b, nil).Map(3), CodeTypeMismatch))
	require.True(t, HasCode(NewWriter(&b, nil).Bean(map[string]int{}), CodeTypeMismatch))

	b.Reset()
	require.NoError(t, NewWriter(&b, nil).Bean(address{City: "x"}))
	require.Equal(t, `{"City":"x","Zip":""}`, b.String())
}

// failingWriter accepts limit bytes, then fails.
type failingWriter struct {
	limit int
	n     int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n+len(p) > f.limit {
		return 0, errors.New("disk full")
	}
	f.n += len(p)
	return len(p), nil
}

func TestWriter_SinkFailure(t *testing.T) {
	fw := &failingWriter{limit: 5}
	err := EncodeTo(fw, person{Name: "Ann"}, nil)
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeSinkWrite, iss[0].Code)
	assert.Contains(t, err.Error(), "disk full")
}

type bufferedSink struct {
	strings.Builder
	flushed bool
}

func (b *bufferedSink) Flush() error {
	b.flushed = true
	return nil
}

func TestEncodeTo_Flushes(t *testing.T) {
	var sink bufferedSink
	require.NoError(t, EncodeTo(&sink, []int{1}, nil))
	require.True(t, sink.flushed)
	require.Equal(t, `[1]`, sink.String())
}
