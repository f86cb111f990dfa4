package composer

import (
	"strings"
	"testing"
	"time"

	"github.com/benedict2310/ngxer/pkg/htmlmeta"
	"github.com/benedict2310/ngxer/pkg/model"
)

func testTemplate() *htmlmeta.Template {
	full := `<html lang="en"><head><title>Acme</title>` +
		`<meta name="description" content="Default description">` +
		`<meta property="og:description" content="Default description">` +
		`<link rel="canonical" href="https://acme.test/">` +
		`<link rel="stylesheet" href="styles.css"></head>` +
		`<body><div id="splashscreen"></div><app-root></app-root>` +
		`<script src="main.js"></script><script src="https://cdn.test/x.js"></script></body></html>`
	return &htmlmeta.Template{
		Full: full,
		Defaults: model.Metadata{
			Title:       "Acme",
			Description: "Default description",
			URL:         "https://acme.test/",
			Lang:        "en",
		},
		Scripts: []string{"main.js"},
		Styles:  []string{"styles.css"},
	}
}

func TestComposeReplacesDefaultsEverywhere(t *testing.T) {
	meta := model.Metadata{
		Title:       "About us",
		Description: "Who we are",
		URL:         "https://acme.test/about",
		Content:     "<h1>About</h1>",
	}
	got, err := Compose(testTemplate(), meta, Options{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	for _, want := range []string{
		"<title>About us</title>",
		`<meta name="description" content="Who we are">`,
		`<meta property="og:description" content="Who we are">`,
		`<link rel="canonical" href="https://acme.test/about/">`,
		`<link rel="stylesheet" href="/styles.css">`,
		`<script src="/main.js">`,
		`<script src="https://cdn.test/x.js">`,
		"<app-root><h1>About</h1></app-root>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Default description") {
		t.Fatalf("template description leaked into output:\n%s", got)
	}
	if !strings.Contains(got, `<html lang="en">`) {
		t.Fatalf("expected missing lang to keep template default:\n%s", got)
	}
}

func TestComposeEscapesQuotesInAttributes(t *testing.T) {
	tpl := testTemplate()
	tpl.Full = strings.Replace(tpl.Full, "</title>", `</title><meta property="og:title" content="Acme">`, 1)
	meta := model.Metadata{
		Title:       `Say "hi"`,
		Description: `The "best" shop`,
		URL:         "https://acme.test/hi",
	}
	got, err := Compose(tpl, meta, Options{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	for _, want := range []string{
		`<meta property="og:title" content="Say &quot;hi&quot;">`,
		`<meta name="description" content="The &quot;best&quot; shop">`,
		"<title>Say &quot;hi&quot;</title>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}

	meta.Title = "Say &quot;hi&quot;"
	again, err := Compose(tpl, meta, Options{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if strings.Contains(again, "&amp;quot;") || !strings.Contains(again, `content="Say &quot;hi&quot;"`) {
		t.Fatalf("escaped title must compose unchanged:\n%s", again)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	tpl := testTemplate()
	meta := model.Metadata{Title: "Post", Content: "<p>x</p>"}
	opts := Options{
		SessionData:         model.Document{"id": "abc", "title": "Post"},
		SplashscreenTimeout: 2 * time.Second,
	}
	first, err := Compose(tpl, meta, opts)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	second, err := Compose(tpl, meta, opts)
	if err != nil {
		t.Fatalf("Compose() second error = %v", err)
	}
	if first != second {
		t.Fatalf("Compose() not deterministic:\n%s\n%s", first, second)
	}
}

func TestComposeContentFallback(t *testing.T) {
	got, err := Compose(testTemplate(), model.Metadata{}, Options{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(got, "<app-root>Default description</app-root>") {
		t.Fatalf("expected description fallback as content:\n%s", got)
	}
}

func TestComposeContentTemplateByLocale(t *testing.T) {
	opts := Options{
		Mount: "app-root",
		ContentTemplate: ContentTemplate{
			Default:  `<main>` + ContentPlaceholder + `</main>`,
			ByLocale: map[string]string{"vi-VN": `<main class="vi"><!-- wrapper -->` + ContentPlaceholder + `</main>`},
		},
	}
	got, err := Compose(testTemplate(), model.Metadata{Locale: "vi-VN", Content: "<p>chao</p>"}, opts)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(got, `<app-root><main class="vi"><p>chao</p></main></app-root>`) {
		t.Fatalf("expected localized wrapper without comments:\n%s", got)
	}

	got, err = Compose(testTemplate(), model.Metadata{Locale: "en-US", Content: "<p>hi</p>"}, opts)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(got, `<app-root><main><p>hi</p></main></app-root>`) {
		t.Fatalf("expected default wrapper:\n%s", got)
	}
}

func TestComposeSessionAndSplashScripts(t *testing.T) {
	opts := Options{
		SessionData:         model.Document{"id": "p1", "title": "It's here"},
		SplashscreenTimeout: 1500 * time.Millisecond,
	}
	got, err := Compose(testTemplate(), model.Metadata{}, opts)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	wantSession := `</title><script>if(window.sessionStorage){sessionStorage.setItem('prerender_data:p1','{"id":"p1","title":"It\'s here"}');}</script>`
	if !strings.Contains(got, wantSession) {
		t.Fatalf("expected session script after title:\n%s", got)
	}
	wantSplash := `getElementById('splashscreen');if(s){s.style.display='none';}},1500);</script></body>`
	if !strings.Contains(got, wantSplash) {
		t.Fatalf("expected splash script before body end:\n%s", got)
	}
}

func TestComposeSkipsSessionWithoutID(t *testing.T) {
	got, err := Compose(testTemplate(), model.Metadata{}, Options{SessionData: model.Document{"title": "x"}})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if strings.Contains(got, "sessionStorage") {
		t.Fatalf("expected no session script without id:\n%s", got)
	}
}

func TestContentTemplateFor(t *testing.T) {
	c := ContentTemplate{ByLocale: map[string]string{"en": "a"}}
	if c.For("en") != "a" || c.For("fr") != "" {
		t.Fatalf("unexpected lookup results")
	}
	if (ContentTemplate{}).IsZero() != true || c.IsZero() {
		t.Fatalf("unexpected IsZero results")
	}
}
