package pathkey

import (
	"errors"
	"reflect"
	"testing"
)

func scanAll(path string) []string {
	var out []string
	sc := NewScanner(path)
	for !sc.Done() {
		out = append(out, sc.Next())
	}
	return out
}

func TestScanner_Segments(t *testing.T) {
	cases := map[string][]string{
		"a":            {"a"},
		"a.b.c":        {"a", "b", "c"},
		`span\.kind`:   {"span.kind"},
		`a.span\.kind`: {"a", "span.kind"},
		`a\b.c`:        {`a\b`, "c"},
		"a.":           {"a", ""},
		"":             {""},
		"q.f[0].range": {"q", "f[0]", "range"},
	}
	for in, want := range cases {
		if got := scanAll(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
	}
}

func TestScanner_TrailingLoneBackslashIsLiteral(t *testing.T) {
	if got := scanAll(`a.b\`); !reflect.DeepEqual(got, []string{"a", `b\`}) {
		t.Fatalf("unexpected segments: %q", got)
	}
	p, _ := Parse(`a\`)
	q, _ := Parse(`a\.b`)
	if HasPrefix(q, p) || Compare(p, q) == 0 {
		t.Fatalf("%v and %v must be unrelated", p, q)
	}
}

func TestCompare_PrefixesSortFirst(t *testing.T) {
	parse := func(s string) []Segment {
		segs, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return segs
	}
	a, ab, a0, ac, b := parse("a"), parse("ab"), parse("a[0]"), parse("a.c"), parse("b")
	if !HasPrefix(a0, a) || !HasPrefix(ac, a) || HasPrefix(ab, a) {
		t.Fatalf("unexpected prefix relation")
	}
	if Compare(a, a0) >= 0 || Compare(a, ac) >= 0 || Compare(a0, b) >= 0 || Compare(a, a) != 0 {
		t.Fatalf("unexpected order")
	}
}

func TestSplitIndex(t *testing.T) {
	name, idx, err := SplitIndex("b[1][2]")
	if err != nil || name != "b" || !reflect.DeepEqual(idx, []int{1, 2}) {
		t.Fatalf("got %q %v %v", name, idx, err)
	}
	name, idx, err = SplitIndex("plain")
	if err != nil || name != "plain" || idx != nil {
		t.Fatalf("got %q %v %v", name, idx, err)
	}
	if _, _, err := SplitIndex("b[x]"); err == nil {
		t.Fatalf("expected error for non-numeric index")
	}
	if _, _, err := SplitIndex("b[1048576]"); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("expected ErrIndexRange, got %v", err)
	}
	if _, _, err := SplitIndex("[0]"); !errors.Is(err, ErrEmptySegment) {
		t.Fatalf("expected ErrEmptySegment, got %v", err)
	}
}

func TestParse_EmptySegment(t *testing.T) {
	for _, p := range []string{"a..b", ".a", "a.", ""} {
		if _, err := Parse(p); !errors.Is(err, ErrEmptySegment) {
			t.Fatalf("%q: expected ErrEmptySegment, got %v", p, err)
		}
	}
}

func TestSegment_StringRoundTrip(t *testing.T) {
	segs, err := Parse(`a.x\.y[3]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := segs[1].String(); got != `x\.y[3]` {
		t.Fatalf("unexpected rendering: %s", got)
	}
}
