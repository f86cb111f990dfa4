package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatTable, "table": FormatTable, "JSON": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML}
	for in, want := range cases {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Fatalf("ParseFormat(%q) got=%q err=%v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestWriteStructuredJSONAndYAML(t *testing.T) {
	payload := map[string]any{"pathRendering": []string{"about"}, "content": "<p>hi</p>"}

	jsonOut := &bytes.Buffer{}
	if err := WriteStructured(jsonOut, FormatJSON, payload); err != nil {
		t.Fatalf("WriteStructured(JSON) error = %v", err)
	}
	if !strings.Contains(jsonOut.String(), `"content": "<p>hi</p>"`) {
		t.Fatalf("expected unescaped html in json output: %s", jsonOut.String())
	}

	yamlOut := &bytes.Buffer{}
	if err := WriteStructured(yamlOut, FormatYAML, payload); err != nil {
		t.Fatalf("WriteStructured(YAML) error = %v", err)
	}
	if !strings.Contains(yamlOut.String(), "pathRendering:\n  - about") {
		t.Fatalf("unexpected yaml output: %s", yamlOut.String())
	}

	if err := WriteStructured(&bytes.Buffer{}, FormatTable, payload); err == nil {
		t.Fatalf("expected table format to be rejected")
	}
}

func TestWriteTable(t *testing.T) {
	out := &bytes.Buffer{}
	err := WriteTable(out, []string{"KIND", "ROUTES"}, [][]string{{"path", "2"}, {"database", "14"}})
	if err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[2], "database  14") {
		t.Fatalf("unexpected table output: %q", out.String())
	}

	if err := WriteTable(&bytes.Buffer{}, []string{"KIND", "ROUTES"}, [][]string{{"path"}}); err == nil {
		t.Fatalf("expected short row to be rejected")
	}
}

func TestCellHelpers(t *testing.T) {
	if got := OrNone("  "); got != "<none>" {
		t.Fatalf("OrNone(blank) = %q", got)
	}
	if got := Truncate("bài viết mới nhất", 8); got != "bài v..." {
		t.Fatalf("Truncate() = %q", got)
	}
	if got := Plural(1, "route"); got != "1 route" {
		t.Fatalf("Plural(1) = %q", got)
	}
	if got := Plural(0, "route"); got != "0 routes" {
		t.Fatalf("Plural(0) = %q", got)
	}
}
