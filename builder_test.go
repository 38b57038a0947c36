package jsonkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func build(t *testing.T, b *Builder) string {
	t.Helper()
	m, err := b.Build()
	require.NoError(t, err)
	text, err := Encode(m)
	require.NoError(t, err)
	return text
}

func TestBuilder_MergesPaths(t *testing.T) {
	text := build(t, NewBuilder().
		Set("a.b[0].c", 1).
		Set("a.b[0].d", 2).
		Set("a.e", 1))
	require.Equal(t, `{"a":{"b":[{"c":1,"d":2}],"e":1}}`, text)
}

func TestBuilder_SparseIndexesPadWithNull(t *testing.T) {
	text := build(t, NewBuilder().Set("l[2]", "x").Set("m[1][1]", true))
	require.Equal(t, `{"l":[null,null,"x"],"m":[null,[null,true]]}`, text)
}

func TestBuilder_EscapedDot(t *testing.T) {
	text := build(t, NewBuilder().Set(`span\.kind`, "server").Set("tags.env", "prod"))
	require.Equal(t, `{"span.kind":"server","tags":{"env":"prod"}}`, text)
	require.Equal(t, "server", gjson.Get(text, `span\.kind`).String())
}

func TestBuilder_ConflictingKeys(t *testing.T) {
	_, err := NewBuilder().Set("a", 1).Set("a.b", 2).Build()
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeConflictingKey, iss[0].Code)
	assert.Equal(t, []string{"a", "a.b"}, iss[0].Params["keys"])

	_, err = NewBuilder().Set("a", 1).Set("a[0]", 2).Build()
	require.True(t, HasCode(err, CodeConflictingKey))
}

func TestBuilder_SharedPrefixIsNotAConflict(t *testing.T) {
	text := build(t, NewBuilder().Set("a", 1).Set("ab", 2))
	require.Equal(t, `{"a":1,"ab":2}`, text)
}

func TestBuilder_OverwriteSamePath(t *testing.T) {
	b := NewBuilder().Set("a.b", 1).Set("a.b", 2)
	require.Equal(t, 1, b.Len())
	require.Equal(t, `{"a":{"b":2}}`, build(t, b))
}

func TestBuilder_CompositeValuesAreFlattened(t *testing.T) {
	text := build(t, NewBuilder().
		Set("user", person{Name: "Ann", Tags: []string{}}).
		Set("user.Extra", "x"))
	require.Equal(t, "Ann", gjson.Get(text, "user.Name").String())
	require.Equal(t, "x", gjson.Get(text, "user.Extra").String())
	require.True(t, gjson.Get(text, "user.Tags").IsArray())
	require.Equal(t, 0, len(gjson.Get(text, "user.Tags").Array()))
}

func TestBuilder_DuplicateAfterFlattening(t *testing.T) {
	_, err := NewBuilder().
		Set("a", map[string]any{"b": 1}).
		Set("a.b", 2).
		Build()
	iss, ok := AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, []string{"a.b"}, iss[0].Params["keys"])
}

func TestBuilder_InvalidPath(t *testing.T) {
	for _, p := range []string{"a..b", ".a", "a.", "a[x]"} {
		_, err := NewBuilder().Set(p, 1).Build()
		require.True(t, HasCode(err, CodeInvalidPath), "path %q: %v", p, err)
	}
}

func TestBuilder_IndexAboveLimit(t *testing.T) {
	_, err := NewBuilder().Set("a[2000000000]", 1).Build()
	require.True(t, HasCode(err, CodeInvalidPath), "%v", err)
}

func TestBuilder_TrailingBackslashIsNotAnEscapedDot(t *testing.T) {
	text := build(t, NewBuilder().Set(`a\`, 1).Set(`a\.b`, 2))
	require.Equal(t, `{"a\\":1,"a.b":2}`, text)

	_, err := NewBuilder().Set(`a\`, 1).Set(`a\[0]`, 2).Build()
	require.True(t, HasCode(err, CodeConflictingKey), "%v", err)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	require.Panics(t, func() { NewBuilder().Set("a", 1).Set("a.b", 1).MustBuild() })
}
