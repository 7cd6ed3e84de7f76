package question

import "testing"

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"foo.test":            "foo-test",
		"persons[0].nickname": "persons-0-nickname",
		" household..size ":   "household-size",
		"_segment_1":          "_segment_1",
		"...":                 "unknown",
		"":                    "unknown",
		"accès.durée":         "acc-s-dur-e",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIDsAreDerivedFromPath(t *testing.T) {
	id := idsFor("foo.test")
	if id.root != "question-foo-test" || id.err != "question-foo-test-error" || id.option(2) != "question-foo-test-input-2" {
		t.Fatalf("unexpected ids %+v", id)
	}
}
