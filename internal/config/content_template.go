package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ContentTemplate is either one template for every locale or a map keyed by
// locale. A value ending in ".html" names a file relative to the config.
type ContentTemplate struct {
	Value    string
	ByLocale map[string]string
}

func (c ContentTemplate) IsZero() bool {
	return c.Value == "" && len(c.ByLocale) == 0
}

func (c ContentTemplate) MarshalJSON() ([]byte, error) {
	if len(c.ByLocale) > 0 {
		return json.Marshal(c.ByLocale)
	}
	return json.Marshal(c.Value)
}

func (c *ContentTemplate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ContentTemplate{Value: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("contentTemplate must be a string or an object of locale to template")
	}
	*c = ContentTemplate{ByLocale: m}
	return nil
}

func (c ContentTemplate) MarshalYAML() (any, error) {
	if len(c.ByLocale) > 0 {
		return c.ByLocale, nil
	}
	return c.Value, nil
}

func (c *ContentTemplate) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = ContentTemplate{Value: node.Value}
		return nil
	case yaml.MappingNode:
		m := map[string]string{}
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("decode contentTemplate: %w", err)
		}
		*c = ContentTemplate{ByLocale: m}
		return nil
	default:
		return fmt.Errorf("contentTemplate must be a string or a mapping of locale to template")
	}
}

// Load reads file-backed entries relative to baseDir and returns the
// template text.
func (c ContentTemplate) Load(baseDir string) (ContentTemplate, error) {
	out := ContentTemplate{}
	var err error
	if out.Value, err = readTemplateValue(baseDir, c.Value); err != nil {
		return ContentTemplate{}, err
	}
	if len(c.ByLocale) > 0 {
		out.ByLocale = make(map[string]string, len(c.ByLocale))
		for locale, v := range c.ByLocale {
			text, err := readTemplateValue(baseDir, v)
			if err != nil {
				return ContentTemplate{}, fmt.Errorf("contentTemplate[%s]: %w", locale, err)
			}
			out.ByLocale[locale] = text
		}
	}
	return out, nil
}

func readTemplateValue(baseDir, v string) (string, error) {
	trimmed := strings.TrimSpace(v)
	if !strings.HasSuffix(strings.ToLower(trimmed), ".html") || strings.ContainsAny(trimmed, "<>\n") {
		return v, nil
	}
	path := trimmed
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read content template %s: %w", path, err)
	}
	return string(b), nil
}
