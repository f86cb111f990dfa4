// Package ogimage draws the Open Graph preview card used for pages that have
// no image of their own.
package ogimage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 1200
	Height = 630

	// layoutVersion is part of every key; bump it when the drawing changes.
	layoutVersion = "ngxer-og-v1:"

	titleLines       = 3
	descriptionLines = 2
	margin           = 80

	defaultAccent = "#3b82f6"
)

// Card is the text drawn on one preview image.
type Card struct {
	Title       string
	Description string
	SiteName    string
	// URL is printed in the footer as host and path.
	URL    string
	Accent string
}

var (
	fontsOnce sync.Once
	fontsErr  error
	boldFont  *opentype.Font
	plainFont *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if boldFont, fontsErr = opentype.Parse(gobold.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
			return
		}
		if plainFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
		}
	})
	return fontsErr
}

// Generate draws c as a PNG. Equal cards produce equal bytes.
func Generate(c Card) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	c = c.normalized()
	accent, ok := ParseHexColor(c.Accent)
	if !ok {
		accent, _ = ParseHexColor(defaultAccent)
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fill(img, img.Bounds(), color.RGBA{R: 250, G: 250, B: 249, A: 255})
	fill(img, image.Rect(0, 0, Width, 16), accent)
	fill(img, image.Rect(margin, Height-110, Width-margin, Height-108), color.RGBA{R: 214, G: 211, B: 209, A: 255})

	faces := map[string]font.Face{}
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()
	for name, spec := range map[string]struct {
		f    *opentype.Font
		size float64
	}{
		"site":  {boldFont, 30},
		"title": {boldFont, 64},
		"desc":  {plainFont, 34},
		"foot":  {plainFont, 26},
	} {
		face, err := opentype.NewFace(spec.f, &opentype.FaceOptions{Size: spec.size, DPI: 72, Hinting: font.HintingNone})
		if err != nil {
			return nil, fmt.Errorf("create %s font face: %w", name, err)
		}
		faces[name] = face
	}

	ink := color.RGBA{R: 28, G: 25, B: 23, A: 255}
	muted := color.RGBA{R: 87, G: 83, B: 78, A: 255}
	width := Width - 2*margin

	drawLines(img, faces["site"], wrap(faces["site"], strings.ToUpper(c.SiteName), width, 1), margin, 100, 0, accent)
	y := drawLines(img, faces["title"], wrap(faces["title"], c.Title, width, titleLines), margin, 196, 76, ink)
	drawLines(img, faces["desc"], wrap(faces["desc"], c.Description, width, descriptionLines), margin, y+24, 46, muted)
	drawLines(img, faces["foot"], wrap(faces["foot"], displayURL(c.URL), width, 1), margin, Height-56, 0, muted)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Key identifies the image Generate draws for c. It is stable across runs and
// changes whenever any drawn text does.
func Key(c Card) string {
	c = c.normalized()
	sum := sha256.Sum256([]byte(layoutVersion + strings.Join([]string{c.Title, c.Description, c.SiteName, c.URL, c.Accent}, "\x00")))
	return hex.EncodeToString(sum[:])
}

// FileName is the file a card is stored under, next to the page it belongs to.
func FileName(c Card) string {
	return "og-" + Key(c)[:16] + ".png"
}

func (c Card) normalized() Card {
	return Card{
		Title:       collapse(c.Title),
		Description: collapse(c.Description),
		SiteName:    collapse(c.SiteName),
		URL:         strings.TrimSpace(c.URL),
		Accent:      strings.ToLower(strings.TrimSpace(c.Accent)),
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func displayURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimRight(u.Host+u.Path, "/")
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawLines draws lines from baseline y and returns the baseline after the
// last one.
func drawLines(img draw.Image, face font.Face, lines []string, x, y, step int, c color.Color) int {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	for _, line := range lines {
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += step
	}
	return y
}

// wrap breaks text into at most max lines of width px, marking cut text with
// an ellipsis.
func wrap(face font.Face, text string, width, max int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || max <= 0 {
		return nil
	}
	var lines []string
	i := 0
	for i < len(words) && len(lines) < max {
		line := words[i]
		i++
		for i < len(words) && measure(face, line+" "+words[i]) <= width {
			line += " " + words[i]
			i++
		}
		lines = append(lines, ellipsize(face, line, width))
	}
	if i < len(words) {
		last := len(lines) - 1
		lines[last] = ellipsize(face, lines[last]+" …", width)
	}
	return lines
}

func ellipsize(face font.Face, text string, width int) string {
	if measure(face, text) <= width {
		return text
	}
	r := []rune(strings.TrimSuffix(text, " …"))
	for len(r) > 0 {
		r = r[:len(r)-1]
		candidate := strings.TrimRight(string(r), " ") + "…"
		if measure(face, candidate) <= width {
			return candidate
		}
	}
	return "…"
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// ParseHexColor reads #rgb or #rrggbb, with or without the '#'.
func ParseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 255}, true
}
