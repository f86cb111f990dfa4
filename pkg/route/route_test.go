package route

import (
	"reflect"
	"testing"
)

func TestParseVariants(t *testing.T) {
	tests := []struct {
		in   string
		want Route
	}{
		{in: "about", want: Route{Kind: KindPath, Path: "about"}},
		{in: "/about/", want: Route{Kind: KindPath, Path: "about"}},
		{in: " /blog/first-post ", want: Route{Kind: KindPath, Path: "blog/first-post"}},
		{in: "posts:abc123", want: Route{Kind: KindCollectionItem, Collection: "posts", ID: "abc123"}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsInvalidInputs(t *testing.T) {
	for _, in := range []string{"", "   ", "/", ":abc", "posts:", "a/../b", "posts:../x", "po/sts:x"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestNormalizeIsFixedPoint(t *testing.T) {
	for _, in := range []string{"", "/", "about", "/about", "about/", "/about/", "//about//", " /a/b/ ", "a/b"} {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not a fixed point for %q: %q then %q", in, once, twice)
		}
	}
	if got := Normalize("/about/"); got != "about" {
		t.Fatalf("Normalize(/about/) = %q", got)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	for _, in := range []string{"about", "posts:abc123", "docs/guide"} {
		r, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		again, err := Parse(r.Key())
		if err != nil {
			t.Fatalf("Parse(Key()) error = %v", err)
		}
		if again != r {
			t.Fatalf("key round trip mismatch: %#v vs %#v", r, again)
		}
	}
}

func TestParseAllDedupesAfterNormalization(t *testing.T) {
	routes, invalid := ParseAll([]string{"about", "/about/", "posts:a", "posts:a", "", "contact"})
	want := []Route{PathRoute("about"), ItemRoute("posts", "a"), PathRoute("contact")}
	if !reflect.DeepEqual(routes, want) {
		t.Fatalf("ParseAll routes = %#v, want %#v", routes, want)
	}
	if len(invalid) != 1 || invalid[0].Input != "" {
		t.Fatalf("expected one invalid empty input, got %#v", invalid)
	}
}

func TestSubstituteID(t *testing.T) {
	if got := SubstituteID("/blog/:id/", "abc"); got != "blog/abc" {
		t.Fatalf("SubstituteID = %q", got)
	}
	if got := SubstituteID("vi/bai-viet/:id", "x1"); got != "vi/bai-viet/x1" {
		t.Fatalf("SubstituteID = %q", got)
	}
}

func TestSortedUnique(t *testing.T) {
	got := SortedUnique([]string{"b", "a", "b", ""})
	want := []string{"", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedUnique = %#v, want %#v", got, want)
	}
}
