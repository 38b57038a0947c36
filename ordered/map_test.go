package ordered

import "testing"

func TestMap_InsertionOrderAndReplace(t *testing.T) {
	m := New(0)
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Fatalf("expected replaced value 3, got %v", v)
	}
}

func TestMap_Delete(t *testing.T) {
	m := FromPairs("a", 1, "b", 2, "c", 3)
	if !m.Delete("b") {
		t.Fatalf("expected delete to report true")
	}
	if m.Delete("zz") {
		t.Fatalf("expected delete of missing key to report false")
	}
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Fatalf("unexpected keys after delete: %v", keys)
	}
}

func TestMap_ZeroValueAndNil(t *testing.T) {
	var nilMap *Map
	if nilMap.Len() != 0 || nilMap.Has("x") {
		t.Fatalf("nil map must behave as empty")
	}
	var m Map
	m.Set("x", nil)
	if !m.Has("x") {
		t.Fatalf("expected key to be present even with nil value")
	}
}

func TestEqual_IgnoresKeyOrder(t *testing.T) {
	a := FromPairs("x", "1", "y", []any{FromPairs("k", true)})
	b := FromPairs("y", []any{FromPairs("k", true)}, "x", "1")
	if !Equal(a, b) {
		t.Fatalf("expected maps to be equal regardless of order")
	}
	c := FromPairs("y", []any{FromPairs("k", false)}, "x", "1")
	if Equal(a, c) {
		t.Fatalf("expected maps with different nested values to differ")
	}
}

func TestToMap_Nested(t *testing.T) {
	m := FromPairs("a", FromPairs("b", []any{FromPairs("c", "x")}))
	pm := m.ToMap()
	inner := pm["a"].(map[string]any)["b"].([]any)[0].(map[string]any)
	if inner["c"] != "x" {
		t.Fatalf("unexpected conversion: %#v", pm)
	}
}
