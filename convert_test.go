package jsonkit

import (
	"math/big"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/jsonkit/ordered"
)

type order struct {
	ID       uint32 `json:"id"`
	Customer string `jsonkit:"name=customer_name"`
	Lines    []line
	Totals   map[string]float64
	Flags    [2]bool
	Note     *string
	Raw      Value
	Extra    *ordered.Map
	Amount   json.Number
	Big      *big.Int
	Grade    Char
	Placed   time.Time
	Internal string `jsonkit:"-"`
}

type line struct {
	SKU string
	Qty int8
}

func TestConvert_Struct(t *testing.T) {
	text := `{
		"id": 42,
		"customer_name": "Ann",
		"lines": [{"sku": "A-1", "qty": 2}],
		"Totals": {"net": 10.5},
		"Flags": [true],
		"Note": "n",
		"Raw": [1, "x"],
		"Extra": {"k": "v"},
		"Amount": 19.99,
		"Big": 123456789012345678901234567890,
		"Grade": "A",
		"Placed": "2025-01-02T03:04:05Z",
		"Internal": "ignored",
		"unknown": true
	}`
	var o order
	require.NoError(t, DecodeInto(text, &o))

	assert.Equal(t, uint32(42), o.ID)
	assert.Equal(t, "Ann", o.Customer)
	assert.Equal(t, []line{{SKU: "A-1", Qty: 2}}, o.Lines)
	assert.Equal(t, map[string]float64{"net": 10.5}, o.Totals)
	assert.Equal(t, [2]bool{true, false}, o.Flags)
	require.NotNil(t, o.Note)
	assert.Equal(t, "n", *o.Note)
	assert.Equal(t, KindArray, o.Raw.Kind())
	assert.Equal(t, []string{"k"}, o.Extra.Keys())
	assert.Equal(t, json.Number("19.99"), o.Amount)
	assert.Equal(t, "123456789012345678901234567890", o.Big.String())
	assert.Equal(t, Char('A'), o.Grade)
	assert.True(t, o.Placed.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Empty(t, o.Internal)
}

func TestConvert_OverflowAndMismatchPaths(t *testing.T) {
	var o order
	err := DecodeInto(`{"lines":[{"qty":1},{"qty":300}]}`, &o)
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeTypeMismatch, iss[0].Code)
	assert.Equal(t, "lines[1].qty", iss[0].Path)

	err = DecodeInto(`{"Totals":{"a.b":"x"}}`, &o)
	iss, ok = AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, `Totals.a\.b`, iss[0].Path)

	err = DecodeInto(`{"Grade":"AB"}`, &o)
	require.True(t, HasCode(err, CodeTypeMismatch))
}

func TestConvert_NullResetsAndTargetMustBePointer(t *testing.T) {
	o := order{Customer: "keep", Note: new(string)}
	require.NoError(t, DecodeInto(`{"Note":null}`, &o))
	assert.Nil(t, o.Note)
	assert.Equal(t, "keep", o.Customer)

	require.True(t, HasCode(Convert(1, o), CodeUnsupportedType))
}

func TestConvert_ScalarsFromStrings(t *testing.T) {
	var b bool
	require.NoError(t, Convert("true", &b))
	assert.True(t, b)

	var s string
	require.NoError(t, Convert(json.Number("12"), &s))
	assert.Equal(t, "12", s)

	var n int
	require.NoError(t, Convert("15", &n))
	assert.Equal(t, 15, n)

	var f float64
	require.NoError(t, Convert(1.5, &f))
	assert.Equal(t, 1.5, f)

	var any1 any
	require.NoError(t, Convert(ordered.FromPairs("a", 1), &any1))
	assert.IsType(t, &ordered.Map{}, any1)
}

func TestConvert_EpochMillisTime(t *testing.T) {
	var tm time.Time
	require.NoError(t, Convert(json.Number("1735787045000"), &tm))
	assert.Equal(t, int64(1735787045000), tm.UnixMilli())
}

type bag struct {
	Name string
	rest map[string]any
}

func (b *bag) SetDynamicProperty(name string, v any) {
	if b.rest == nil {
		b.rest = map[string]any{}
	}
	b.rest[name] = v
}

func TestConvert_DynamicProperties(t *testing.T) {
	var b bag
	require.NoError(t, DecodeInto(`{"Name":"n","color":"red","size":3}`, &b))
	assert.Equal(t, "n", b.Name)
	assert.Equal(t, map[string]any{"color": "red", "size": json.Number("3")}, b.rest)
}
