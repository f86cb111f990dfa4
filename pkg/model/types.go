package model

import (
	"fmt"
	"strings"
)

// Field names one metadata field of a page.
type Field string

const (
	FieldURL         Field = "url"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldImage       Field = "image"
	FieldLocale      Field = "locale"
	FieldLang        Field = "lang"
	FieldAuthorName  Field = "authorName"
	FieldAuthorURL   Field = "authorUrl"
	FieldCreatedAt   Field = "createdAt"
	FieldUpdatedAt   Field = "updatedAt"
	FieldContent     Field = "content"
)

// Fields lists every metadata field in a stable order.
var Fields = []Field{
	FieldURL,
	FieldTitle,
	FieldDescription,
	FieldImage,
	FieldLocale,
	FieldLang,
	FieldAuthorName,
	FieldAuthorURL,
	FieldCreatedAt,
	FieldUpdatedAt,
	FieldContent,
}

// Metadata is the per-route record used to compose final HTML.
type Metadata struct {
	URL         string `json:"url" yaml:"url"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
	Locale      string `json:"locale" yaml:"locale"`
	Lang        string `json:"lang" yaml:"lang"`
	AuthorName  string `json:"authorName,omitempty" yaml:"authorName,omitempty"`
	AuthorURL   string `json:"authorUrl,omitempty" yaml:"authorUrl,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Content     string `json:"content" yaml:"content"`
}

// Get returns the value of field f.
func (m Metadata) Get(f Field) string {
	switch f {
	case FieldURL:
		return m.URL
	case FieldTitle:
		return m.Title
	case FieldDescription:
		return m.Description
	case FieldImage:
		return m.Image
	case FieldLocale:
		return m.Locale
	case FieldLang:
		return m.Lang
	case FieldAuthorName:
		return m.AuthorName
	case FieldAuthorURL:
		return m.AuthorURL
	case FieldCreatedAt:
		return m.CreatedAt
	case FieldUpdatedAt:
		return m.UpdatedAt
	case FieldContent:
		return m.Content
	default:
		return ""
	}
}

// Set assigns value to field f.
func (m *Metadata) Set(f Field, value string) {
	switch f {
	case FieldURL:
		m.URL = value
	case FieldTitle:
		m.Title = value
	case FieldDescription:
		m.Description = value
	case FieldImage:
		m.Image = value
	case FieldLocale:
		m.Locale = value
	case FieldLang:
		m.Lang = value
	case FieldAuthorName:
		m.AuthorName = value
	case FieldAuthorURL:
		m.AuthorURL = value
	case FieldCreatedAt:
		m.CreatedAt = value
	case FieldUpdatedAt:
		m.UpdatedAt = value
	case FieldContent:
		m.Content = value
	}
}

// FirstNonEmpty is the single fallback rule used for every field: the first
// candidate that is not blank wins, in the order given.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// WithDefaults fills every blank field from defaults. The url always ends
// with a slash afterwards.
func (m Metadata) WithDefaults(defaults Metadata) Metadata {
	out := m
	for _, f := range Fields {
		out.Set(f, FirstNonEmpty(m.Get(f), defaults.Get(f)))
	}
	out.URL = EnsureTrailingSlash(out.URL)
	return out
}

// EnsureTrailingSlash appends "/" to a non-empty url that lacks one.
func EnsureTrailingSlash(url string) string {
	if url == "" || strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}

// FromMap reads string-valued fields from an arbitrary payload. Values of
// other types are ignored.
func FromMap(data map[string]any) Metadata {
	var m Metadata
	for _, f := range Fields {
		if v, ok := data[string(f)].(string); ok {
			m.Set(f, v)
		}
	}
	return m
}

// ToMap is the inverse of FromMap.
func (m Metadata) ToMap() map[string]any {
	out := make(map[string]any, len(Fields))
	for _, f := range Fields {
		out[string(f)] = m.Get(f)
	}
	return out
}

// Document is one record of a collection as returned by a document source.
type Document map[string]any

// ID returns the document identifier.
func (d Document) ID() string {
	return d.String("id")
}

// String returns the value under key when it is a string, or a formatted
// number; other types yield "".
func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

// Nested returns d[key][sub] when d[key] is an object.
func (d Document) Nested(key, sub string) string {
	obj, ok := d[key].(map[string]any)
	if !ok {
		return ""
	}
	return Document(obj).String(sub)
}
