package ogimage

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

func TestGenerateSizeAndDeterminism(t *testing.T) {
	card := Card{Title: "About us", Description: "Who we are", SiteName: "Example", URL: "https://example.com/about/"}
	first, err := Generate(card)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != Width || cfg.Height != Height {
		t.Fatalf("unexpected dimensions %dx%d", cfg.Width, cfg.Height)
	}
	second, err := Generate(card)
	if err != nil {
		t.Fatalf("Generate(second) error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output for identical cards")
	}
}

func TestGenerateDrawsTextAndAccent(t *testing.T) {
	blank, err := Generate(Card{})
	if err != nil {
		t.Fatalf("Generate(blank) error = %v", err)
	}
	text, err := Generate(Card{Title: "Alpha"})
	if err != nil {
		t.Fatalf("Generate(text) error = %v", err)
	}
	accent, err := Generate(Card{Accent: "#f00"})
	if err != nil {
		t.Fatalf("Generate(accent) error = %v", err)
	}
	if bytes.Equal(blank, text) || bytes.Equal(blank, accent) {
		t.Fatalf("expected text and accent to change the image")
	}
}

func TestKeyAndFileName(t *testing.T) {
	a := Card{Title: "  Hello   world ", SiteName: "S"}
	b := Card{Title: "Hello world", SiteName: "S"}
	if Key(a) != Key(b) {
		t.Fatalf("expected whitespace-insensitive keys")
	}
	if Key(b) == Key(Card{Title: "Hello world", SiteName: "S", URL: "https://example.com/x/"}) {
		t.Fatalf("expected url to be part of the key")
	}
	name := FileName(b)
	if !strings.HasPrefix(name, "og-") || !strings.HasSuffix(name, ".png") || len(name) != len("og-")+16+len(".png") {
		t.Fatalf("unexpected file name %q", name)
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{in: "#fff", want: color.RGBA{R: 255, G: 255, B: 255, A: 255}, ok: true},
		{in: "3B82F6", want: color.RGBA{R: 59, G: 130, B: 246, A: 255}, ok: true},
		{in: "#12345", ok: false},
		{in: "#zzzzzz", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseHexColor(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseHexColor(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWrapLimitsLines(t *testing.T) {
	if err := loadFonts(); err != nil {
		t.Fatalf("loadFonts() error = %v", err)
	}
	face, err := opentype.NewFace(plainFont, &opentype.FaceOptions{Size: 20, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	defer face.Close()

	lines := wrap(face, strings.Repeat("word ", 200), 300, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected truncated last line, got %q", lines[1])
	}
	for _, line := range lines {
		if measure(face, line) > 300 {
			t.Fatalf("line %q wider than limit", line)
		}
	}
	if got := wrap(face, "   ", 300, 2); got != nil {
		t.Fatalf("expected no lines for blank text, got %#v", got)
	}
}
