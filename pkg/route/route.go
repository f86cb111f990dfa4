package route

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the two route variants.
type Kind int

const (
	KindPath Kind = iota
	KindCollectionItem
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindCollectionItem:
		return "database"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Route is one renderable unit: a literal path or a collection item reference.
// The variant is decided once by Parse.
type Route struct {
	Kind       Kind
	Path       string
	Collection string
	ID         string
}

// PathRoute builds a path route from an already normalized path.
func PathRoute(path string) Route {
	return Route{Kind: KindPath, Path: Normalize(path)}
}

// ItemRoute builds a collection item route.
func ItemRoute(collection, id string) Route {
	return Route{Kind: KindCollectionItem, Collection: strings.TrimSpace(collection), ID: strings.TrimSpace(id)}
}

// Parse turns a raw route input into a Route. Inputs of the form
// "collection:id" are collection items; everything else is a path.
func Parse(raw string) (Route, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Route{}, fmt.Errorf("route is empty")
	}
	if collection, id, ok := strings.Cut(raw, ":"); ok {
		r := ItemRoute(collection, id)
		if r.Collection == "" || r.ID == "" {
			return Route{}, fmt.Errorf("invalid collection route %q (expected collection:id)", raw)
		}
		if strings.ContainsAny(r.Collection, `/\`) || strings.ContainsAny(r.ID, `/\:`) || r.ID == ".." || r.Collection == ".." {
			return Route{}, fmt.Errorf("invalid collection route %q", raw)
		}
		return r, nil
	}
	path := Normalize(raw)
	if path == "" {
		return Route{}, fmt.Errorf("route %q is the site root; use index rendering instead", raw)
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." || segment == "." || segment == "" {
			return Route{}, fmt.Errorf("invalid path route %q", raw)
		}
	}
	return PathRoute(path), nil
}

// Normalize strips surrounding whitespace and the leading and trailing slashes
// of a path. Normalize(Normalize(x)) == Normalize(x).
func Normalize(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// Key is the canonical identifier: "about" or "posts:abc123".
func (r Route) Key() string {
	if r.Kind == KindCollectionItem {
		return r.Collection + ":" + r.ID
	}
	return r.Path
}

func (r Route) String() string {
	return r.Key()
}

// IsItem reports whether r references a collection item.
func (r Route) IsItem() bool {
	return r.Kind == KindCollectionItem
}

// Invalid is an input that could not be parsed.
type Invalid struct {
	Input string
	Err   error
}

// ParseAll parses and deduplicates inputs after normalization, keeping the
// first occurrence order. Unparseable inputs are returned separately.
func ParseAll(inputs []string) ([]Route, []Invalid) {
	seen := make(map[string]struct{}, len(inputs))
	routes := make([]Route, 0, len(inputs))
	var invalid []Invalid
	for _, input := range inputs {
		r, err := Parse(input)
		if err != nil {
			invalid = append(invalid, Invalid{Input: input, Err: err})
			continue
		}
		key := r.Kind.String() + "|" + r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		routes = append(routes, r)
	}
	return routes, invalid
}

// SubstituteID fills the ":id" placeholder of a path template.
func SubstituteID(template, id string) string {
	return Normalize(strings.ReplaceAll(template, ":id", id))
}

// SortedUnique returns a sorted copy of values without duplicates.
func SortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
