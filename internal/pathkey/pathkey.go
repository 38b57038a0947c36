// Package pathkey splits dotted property paths such as a.b[0].c into
// segments. A literal dot inside a segment is written as \. and any other
// backslash, including a trailing one, is kept as is.
package pathkey

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex is the largest array index a path may name. Builders pad arrays
// up to the index, so the bound also caps their allocation.
const MaxIndex = 1<<20 - 1

// ErrEmptySegment is returned for paths such as "a..b", ".a" or "a.".
var ErrEmptySegment = errors.New("empty path segment")

// ErrIndexRange is returned for an index above MaxIndex.
var ErrIndexRange = errors.New("path index out of range")

// Scanner yields the segments of one path in order.
type Scanner struct {
	s    string
	pos  int
	done bool
}

// NewScanner returns a Scanner over path.
func NewScanner(path string) *Scanner { return &Scanner{s: path} }

// Done reports whether every segment has been returned.
func (sc *Scanner) Done() bool { return sc.done }

// Next returns the next segment with \. unescaped. The input ends cleanly
// without a trailing separator; a trailing separator yields one more, empty,
// segment.
func (sc *Scanner) Next() string {
	var b strings.Builder
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		switch {
		case c == '\\' && sc.pos+1 < len(sc.s) && sc.s[sc.pos+1] == '.':
			b.WriteByte('.')
			sc.pos += 2
		case c == '.':
			sc.pos++
			return b.String()
		default:
			b.WriteByte(c)
			sc.pos++
		}
	}
	sc.done = true
	return b.String()
}

// Segment is one path step: a field name followed by zero or more array
// indexes.
type Segment struct {
	Name    string
	Indexes []int
}

func (s Segment) String() string {
	var b strings.Builder
	b.WriteString(Escape(s.Name))
	for _, i := range s.Indexes {
		b.WriteString("[" + strconv.Itoa(i) + "]")
	}
	return b.String()
}

// Parse splits path into segments. Empty segments and malformed indexes are
// errors.
func Parse(path string) ([]Segment, error) {
	var out []Segment
	sc := NewScanner(path)
	for !sc.Done() {
		raw := sc.Next()
		name, idx, err := SplitIndex(raw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		out = append(out, Segment{Name: name, Indexes: idx})
	}
	return out, nil
}

// SplitIndex strips trailing [N] suffixes from seg: "b[1][2]" -> ("b",
// [1 2]). The name must not be empty.
func SplitIndex(seg string) (string, []int, error) {
	var idx []int
	name := seg
	for strings.HasSuffix(name, "]") {
		open := strings.LastIndexByte(name, '[')
		if open < 0 {
			break
		}
		n, err := strconv.Atoi(name[open+1 : len(name)-1])
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("invalid index in segment %q", seg)
		}
		if n > MaxIndex {
			return "", nil, fmt.Errorf("segment %q: %w (max %d)", seg, ErrIndexRange, MaxIndex)
		}
		idx = append(idx, n)
		name = name[:open]
	}
	if name == "" {
		return "", nil, ErrEmptySegment
	}
	// Collected right to left.
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return name, idx, nil
}

// Escape escapes literal dots in a field name.
func Escape(name string) string {
	return strings.ReplaceAll(name, ".", `\.`)
}

// step is one name or index of a path, in order.
type step struct {
	name  string
	index int
	isIdx bool
}

func steps(segs []Segment) []step {
	var out []step
	for _, s := range segs {
		out = append(out, step{name: s.Name})
		for _, i := range s.Indexes {
			out = append(out, step{index: i, isIdx: true})
		}
	}
	return out
}

func compareStep(a, b step) int {
	switch {
	case a.isIdx != b.isIdx:
		if a.isIdx {
			return 1
		}
		return -1
	case a.isIdx:
		return cmp.Compare(a.index, b.index)
	}
	return strings.Compare(a.name, b.name)
}

// Compare orders parsed paths step by step, names before indexes. A path
// sorts directly before every path it is a prefix of.
func Compare(a, b []Segment) int {
	sa, sb := steps(a), steps(b)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if c := compareStep(sa[i], sb[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(sa), len(sb))
}

// HasPrefix reports whether every step of p starts q. Equal paths count.
func HasPrefix(q, p []Segment) bool {
	sq, sp := steps(q), steps(p)
	if len(sp) > len(sq) {
		return false
	}
	for i := range sp {
		if compareStep(sp[i], sq[i]) != 0 {
			return false
		}
	}
	return true
}
