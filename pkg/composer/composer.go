// Package composer turns the parsed SPA template and a route's metadata into
// the final static page.
package composer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benedict2310/ngxer/pkg/htmlmeta"
	"github.com/benedict2310/ngxer/pkg/model"
)

const (
	ContentPlaceholder = "<!--PRERENDER_CONTENT_PLACEHOLDER-->"
	DefaultMount       = "app-root"
	DefaultSplashID    = "splashscreen"
	sessionKeyPrefix   = "prerender_data:"
)

// ContentTemplate wraps page content before it is mounted. ByLocale wins over
// Default; an empty result leaves content unwrapped.
type ContentTemplate struct {
	Default  string
	ByLocale map[string]string
}

func (c ContentTemplate) For(locale string) string {
	if v, ok := c.ByLocale[locale]; ok && v != "" {
		return v
	}
	return c.Default
}

func (c ContentTemplate) IsZero() bool {
	return c.Default == "" && len(c.ByLocale) == 0
}

type Options struct {
	Mount           string
	ContentTemplate ContentTemplate
	// Locale selects the content template; the page's own locale is used
	// when empty.
	Locale              string
	SessionData         model.Document
	SplashscreenTimeout time.Duration
	SplashID            string
}

// attrFields are replaced inside attribute values only (="value").
var attrFields = []model.Field{
	model.FieldDescription,
	model.FieldImage,
	model.FieldURL,
	model.FieldLocale,
	model.FieldLang,
	model.FieldAuthorName,
	model.FieldAuthorURL,
	model.FieldCreatedAt,
	model.FieldUpdatedAt,
}

// Compose produces the final HTML for one route. The output depends only on
// its inputs.
func Compose(tpl *htmlmeta.Template, meta model.Metadata, opts Options) (string, error) {
	if tpl == nil {
		return "", fmt.Errorf("compose: template is required")
	}
	defaults := tpl.Defaults
	if meta.URL != "" {
		meta.URL = model.EnsureTrailingSlash(meta.URL)
	}

	out := tpl.Full
	if defaults.Title != "" && meta.Title != "" {
		out = strings.ReplaceAll(out, defaults.Title, quoteSafe(meta.Title))
	}
	for _, f := range attrFields {
		from, to := defaults.Get(f), quoteSafe(meta.Get(f))
		if from == "" || to == "" || from == to {
			continue
		}
		out = strings.ReplaceAll(out, `="`+from+`"`, `="`+to+`"`)
	}

	out = absolutize(out, "src", tpl.Scripts)
	out = absolutize(out, "href", tpl.Styles)

	locale := opts.Locale
	if locale == "" {
		locale = model.FirstNonEmpty(meta.Locale, defaults.Locale)
	}
	content := model.FirstNonEmpty(meta.Content, defaults.Content, defaults.Description, defaults.Title)
	if wrapper := opts.ContentTemplate.For(locale); wrapper != "" {
		content = ComposeContent(content, wrapper)
	}
	out = Mount(out, opts.Mount, content)

	if opts.SessionData.ID() != "" {
		script, err := SessionScript(opts.SessionData)
		if err != nil {
			return "", err
		}
		out = strings.Replace(out, "</title>", "</title>"+script, 1)
	}
	if opts.SplashscreenTimeout > 0 {
		out = strings.Replace(out, "</body>", SplashScript(opts.SplashID, opts.SplashscreenTimeout)+"</body>", 1)
	}
	return out, nil
}

// ComposeContent substitutes content into the wrapper's placeholder and
// minifies the result without comments.
func ComposeContent(content, wrapper string) string {
	composed := strings.Replace(wrapper, ContentPlaceholder, content, 1)
	minified, err := htmlmeta.MinifyFragment(composed)
	if err != nil {
		return composed
	}
	return minified
}

// Mount fills the first empty mount element with content.
func Mount(page, mount, content string) string {
	if mount == "" {
		mount = DefaultMount
	}
	empty := "<" + mount + "></" + mount + ">"
	return strings.Replace(page, empty, "<"+mount+">"+content+"</"+mount+">", 1)
}

func absolutize(page, attr string, refs []string) string {
	for _, ref := range refs {
		page = strings.ReplaceAll(page, attr+`="`+ref+`"`, attr+`="/`+ref+`"`)
	}
	return page
}

// SessionScript seeds sessionStorage with data under prerender_data:<id>.
func SessionScript(data model.Document) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode session data %s: %w", data.ID(), err)
	}
	payload := strings.ReplaceAll(string(raw), `\`, `\\`)
	payload = strings.ReplaceAll(payload, `'`, `\'`)
	return "<script>if(window.sessionStorage){sessionStorage.setItem('" +
		sessionKeyPrefix + jsString(data.ID()) + "','" + payload + "');}</script>", nil
}

// SplashScript hides the splash element once the delay has passed.
func SplashScript(id string, delay time.Duration) string {
	if id == "" {
		id = DefaultSplashID
	}
	return "<script>setTimeout(function(){var s=document.getElementById('" + jsString(id) +
		"');if(s){s.style.display='none';}}," + strconv.FormatInt(delay.Milliseconds(), 10) + ");</script>"
}

func jsString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// quoteSafe keeps a value from closing the attribute it replaces. Values
// already escaped pass through unchanged.
func quoteSafe(v string) string {
	return strings.ReplaceAll(v, `"`, "&quot;")
}
