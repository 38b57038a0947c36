package jsonkit

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/jsonkit/internal/pathkey"
	"github.com/reoring/jsonkit/ordered"
)

// Builder assembles one nested JSON object from dotted-path assignments:
//
//	b := jsonkit.NewBuilder().
//		Set("query.bool.filter[0].range.timestamp.gte", "2017-12-29").
//		Set(`query.bool.filter[1].term.span\.kind`, "server").
//		Set("size", 0)
//	obj, err := b.Build()
//
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	list []assignment
}

type assignment struct {
	path  string
	value any
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Set records an assignment. A later Set with the identical path replaces the
// earlier one.
func (b *Builder) Set(path string, value any) *Builder {
	b.list = slices.DeleteFunc(b.list, func(a assignment) bool { return a.path == path })
	b.list = append(b.list, assignment{path: path, value: value})
	return b
}

// Len returns the number of recorded assignments.
func (b *Builder) Len() int { return len(b.list) }

// Build flattens composite values into leaf assignments, rejects overlapping
// and duplicate paths, and materializes the tree.
func (b *Builder) Build() (*ordered.Map, error) {
	flat, err := b.flatten()
	if err != nil {
		return nil, err
	}
	if err := checkPaths(flat); err != nil {
		return nil, err
	}
	root := ordered.New(len(flat))
	for _, leaf := range flat {
		if err := materialize(root, leaf); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *ordered.Map {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

type flatLeaf struct {
	path  string // canonical rendering of segs
	segs  []pathkey.Segment
	value any
}

func (b *Builder) flatten() ([]flatLeaf, error) {
	var out []flatLeaf
	for _, a := range b.list {
		if isLeafValue(a.value) {
			leaf, err := newLeaf(a.path, a.value)
			if err != nil {
				return nil, err
			}
			out = append(out, leaf)
			continue
		}
		text, err := Encode(a.value, MaxSettings)
		if err != nil {
			return nil, err
		}
		raw, err := Decode(text)
		if err != nil {
			return nil, err
		}
		if out, err = flattenRaw(a.path, raw, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isLeafValue reports whether v is assigned as-is rather than re-encoded and
// split into sub-paths.
func isLeafValue(v any) bool {
	switch k, _ := classify(v); k {
	case kindSequence, kindIterator, kindSelf, kindMapping, kindBean:
		return false
	}
	return true
}

func flattenRaw(path string, raw any, out []flatLeaf) ([]flatLeaf, error) {
	var err error
	switch x := raw.(type) {
	case *ordered.Map:
		if x.Len() == 0 {
			break
		}
		for k, v := range x.All() {
			if out, err = flattenRaw(path+"."+pathkey.Escape(k), v, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	case []any:
		if len(x) == 0 {
			break
		}
		for i, v := range x {
			if out, err = flattenRaw(path+"["+strconv.Itoa(i)+"]", v, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	leaf, err := newLeaf(path, raw)
	if err != nil {
		return nil, err
	}
	return append(out, leaf), nil
}

func newLeaf(path string, v any) (flatLeaf, error) {
	segs, err := pathkey.Parse(path)
	if err != nil {
		iss := newIssue(CodeInvalidPath, path, err.Error(), nil)
		iss[0].Cause = err
		return flatLeaf{}, iss
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return flatLeaf{path: strings.Join(parts, "."), segs: segs, value: v}, nil
}

// checkPaths sorts the leaves and rejects a path that is a segment-wise
// prefix of another (conflicting_key) and exact repeats (duplicate_key).
func checkPaths(flat []flatLeaf) error {
	sorted := make([]flatLeaf, len(flat))
	copy(sorted, flat)
	slices.SortStableFunc(sorted, func(a, b flatLeaf) int { return pathkey.Compare(a.segs, b.segs) })

	dup := make([]bool, len(sorted))
	for i := range sorted {
		p := sorted[i]
		for j := i + 1; j < len(sorted) && pathkey.HasPrefix(sorted[j].segs, p.segs); j++ {
			q := sorted[j]
			if pathkey.Compare(p.segs, q.segs) == 0 {
				dup[i], dup[j] = true, true
				continue
			}
			return newIssue(CodeConflictingKey, p.path, p.path+" <-> "+q.path, map[string]any{"keys": []string{p.path, q.path}})
		}
	}
	var keys []string
	for i, l := range sorted {
		if !dup[i] {
			continue
		}
		Logger().Error("duplicate key", zap.String("path", l.path), zap.Any("value", l.value))
		if !slices.Contains(keys, l.path) {
			keys = append(keys, l.path)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return newIssue(CodeDuplicateKey, "", fmt.Sprint(keys), map[string]any{"keys": keys})
}

// slot is a settable position in the tree being built.
type slot struct {
	get func() any
	set func(any)
}

func mapSlot(m *ordered.Map, key string) slot {
	return slot{
		get: func() any {
			v, _ := m.Get(key)
			return v
		},
		set: func(v any) { m.Set(key, v) },
	}
}

func materialize(root *ordered.Map, leaf flatLeaf) error {
	cur := root
	path := ""
	for si, seg := range leaf.segs {
		if path != "" {
			path += "."
		}
		path += pathkey.Escape(seg.Name)
		sl := mapSlot(cur, seg.Name)
		for _, idx := range seg.Indexes {
			list, ok := asList(sl.get())
			if !ok {
				return newIssue(CodeConflictingKey, path, "expected an array at "+path, nil)
			}
			for len(list) <= idx {
				list = append(list, nil)
			}
			sl.set(list)
			path += "[" + strconv.Itoa(idx) + "]"
			sl = slot{get: func() any { return list[idx] }, set: func(v any) { list[idx] = v }}
		}
		if si == len(leaf.segs)-1 {
			if old := sl.get(); old != nil {
				return newIssue(CodeConflictingKey, path, "value already present at "+path, nil)
			}
			sl.set(leaf.value)
			return nil
		}
		next, ok := asObject(sl.get())
		if !ok {
			return newIssue(CodeConflictingKey, path, "expected an object at "+path, nil)
		}
		sl.set(next)
		cur = next
	}
	return nil
}

func asList(v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}
	l, ok := v.([]any)
	return l, ok
}

func asObject(v any) (*ordered.Map, bool) {
	if v == nil {
		return ordered.New(0), true
	}
	m, ok := v.(*ordered.Map)
	return m, ok
}
