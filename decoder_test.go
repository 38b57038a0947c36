package jsonkit

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/jsonkit/ordered"
)

func TestDecode_EveryDriverPreservesOrder(t *testing.T) {
	for _, d := range Drivers() {
		t.Run(d, func(t *testing.T) {
			v, err := Decode(`{"b":1,"a":[true,null,"x",2.50]}`, DecodeOpt{Driver: d})
			require.NoError(t, err)
			m, ok := v.(*ordered.Map)
			require.True(t, ok, "got %T", v)
			require.Equal(t, []string{"b", "a"}, m.Keys())
			a, _ := m.Get("a")
			require.Equal(t, []any{true, nil, "x", json.Number("2.50")}, a)
		})
	}
}

func TestDecode_UnknownDriver(t *testing.T) {
	_, err := Decode(`1`, DecodeOpt{Driver: "nope"})
	require.True(t, HasCode(err, CodeParseError))
	require.Error(t, SetDefaultDriver("nope"))
}

func TestDecode_RelaxedInput(t *testing.T) {
	v, err := Decode("{a:1, b:'two', c:[1,2,], d:{e:null}} # note", DecodeOpt{Relaxed: true})
	require.NoError(t, err)
	want := ordered.FromPairs(
		"a", json.Number("1"),
		"b", "two",
		"c", []any{json.Number("1"), json.Number("2")},
		"d", ordered.FromPairs("e", nil),
	)
	require.True(t, ordered.Equal(want, v), "got %#v", v)

	_, err = Decode(`{a:1}`)
	require.True(t, HasCode(err, CodeParseError))
}

func TestDecode_DuplicateKeys(t *testing.T) {
	v, err := Decode(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	m := v.(*ordered.Map)
	require.Equal(t, []string{"a", "b"}, m.Keys())
	got, _ := m.Get("a")
	require.Equal(t, json.Number("3"), got)

	_, err = Decode(`{"x":{"a":1,"a":3}}`, DecodeOpt{OnDuplicateKey: Error})
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "x.a", iss[0].Path)
}

func TestDecode_DuplicateKeyWarnIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	_, err := Decode(`{"a":1,"a":2}`, DecodeOpt{OnDuplicateKey: Warn})
	require.NoError(t, err)
	entries := logs.FilterMessage("duplicate key").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ContextMap()["path"])
}

func TestDecode_MaxDepth(t *testing.T) {
	_, err := Decode(`{"a":[[1]]}`, DecodeOpt{MaxDepth: 2})
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeExceedMaxDepth, iss[0].Code)
	assert.Equal(t, "a[0]", iss[0].Path)

	_, err = Decode(`{"a":[[1]]}`, DecodeOpt{MaxDepth: 3})
	require.NoError(t, err)
}

func TestDecode_NumberModes(t *testing.T) {
	v, err := Decode(`1.5`, DecodeOpt{NumberMode: NumberFloat64})
	require.NoError(t, err)
	require.Equal(t, 1.5, v)

	v, err = Decode(`12345678901234567890`)
	require.NoError(t, err)
	require.Equal(t, json.Number("12345678901234567890"), v)
}

func TestDecode_Errors(t *testing.T) {
	for _, in := range []string{`{"a":}`, `[1,2`, `1 2`, ``} {
		_, err := Decode(in)
		require.True(t, HasCode(err, CodeParseError), "input %q: %v", in, err)
	}
}

func TestDecode_StdlibDriverReportsOffset(t *testing.T) {
	_, err := Decode(`{"a":1,"b":}`, DecodeOpt{Driver: DriverStdlib})
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeParseError, iss[0].Code)
	assert.GreaterOrEqual(t, iss[0].Offset, int64(0))
}

func TestDecodeReader(t *testing.T) {
	v, err := DecodeReader(strings.NewReader(`[1]`))
	require.NoError(t, err)
	require.Equal(t, []any{json.Number("1")}, v)
}

func TestDecodeMapAndArray(t *testing.T) {
	m, err := DecodeMap(`{"a":1}`)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	_, err = DecodeMap(`[1]`)
	require.True(t, HasCode(err, CodeTypeMismatch))

	a, err := DecodeArray(`[1,"x"]`)
	require.NoError(t, err)
	require.Len(t, a, 2)

	_, err = DecodeArray(`{}`)
	require.True(t, HasCode(err, CodeTypeMismatch))
}

func TestDetectDuplicateKeys_ReaderTruncates(t *testing.T) {
	iss, err := DetectDuplicateKeysReader(strings.NewReader(`{"a":1,"a":2,"a":3}`), Warn, 1)
	require.NoError(t, err)
	require.Len(t, iss, 2)
	assert.Equal(t, CodeTruncated, iss[1].Code)
}
