package htmlmeta

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/benedict2310/ngxer/pkg/model"
)

const (
	IndexFile         = "index.html"
	OriginalIndexFile = "index-original.html"
)

// Template is the SPA's index.html parsed once per command. Its default field
// values double as search patterns when composing pages.
type Template struct {
	Full     string
	Defaults model.Metadata
	Pairs    map[model.Field]Pair
	Scripts  []string
	Styles   []string
}

// ParseTemplate minifies raw and extracts the default metadata and the
// relative bundle references.
func ParseTemplate(raw string, content Pair) (*Template, error) {
	full, err := Minify(raw)
	if err != nil {
		return nil, err
	}
	pairs := DefaultPairs(content)
	return &Template{
		Full:     full,
		Defaults: extractFields(full, pairs),
		Pairs:    pairs,
		Scripts:  AllBetween(full, ScriptPair.Start, ScriptPair.End, isBundleRef),
		Styles:   AllBetween(full, StylePair.Start, StylePair.End, isBundleRef),
	}, nil
}

// LoadTemplate parses outDir/index-original.html, creating it from
// outDir/index.html on first use so later runs never parse composed output.
func LoadTemplate(outDir string, content Pair) (*Template, error) {
	original := filepath.Join(outDir, OriginalIndexFile)
	if _, err := os.Stat(original); errors.Is(err, os.ErrNotExist) {
		if err := copyFile(filepath.Join(outDir, IndexFile), original); err != nil {
			return nil, fmt.Errorf("preserve original index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", original, err)
	}
	raw, err := os.ReadFile(original)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", original, err)
	}
	tpl, err := ParseTemplate(string(raw), content)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", original, err)
	}
	return tpl, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copy %s to %s: %w", src, tmp, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s to %s: %w", tmp, dst, err)
	}
	return nil
}
