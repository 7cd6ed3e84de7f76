package dotpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetCreatesIntermediateContainers(t *testing.T) {
	root := map[string]any{}

	if err := Set(root, "household.size", 3); err != nil {
		t.Fatalf("set size: %v", err)
	}
	if err := Set(root, "household.persons.1.age", 42); err != nil {
		t.Fatalf("set age: %v", err)
	}

	want := map[string]any{
		"household": map[string]any{
			"size": 3,
			"persons": []any{
				nil,
				map[string]any{"age": 42},
			},
		},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestGetResolvesNestedValues(t *testing.T) {
	root := map[string]any{
		"persons": []any{map[string]any{"nickname": "Alex"}},
	}

	got, ok := Get(root, "persons.0.nickname")
	if !ok || got != "Alex" {
		t.Fatalf("Get() = %v, %v; want Alex, true", got, ok)
	}
	if _, ok := Get(root, "persons.3.nickname"); ok {
		t.Fatalf("expected out of range index to miss")
	}
	if _, ok := Get(root, ""); ok {
		t.Fatalf("expected empty path to miss")
	}
}

func TestSetOverwritesScalarWithContainer(t *testing.T) {
	root := map[string]any{"home": "unknown"}
	if err := Set(root, "home.region", "north"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := Get(root, "home.region")
	if got != "north" {
		t.Fatalf("expected region north, got %v", got)
	}
}

func TestDelete(t *testing.T) {
	root := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
	Delete(root, "a.b")
	Delete(root, "missing.path")

	want := map[string]any{"a": map[string]any{"c": 2}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}
