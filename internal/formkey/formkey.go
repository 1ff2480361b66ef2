// Package formkey bootstraps the per-account signing secret from the
// service's served script bundles. The web client computes the secret inside
// an obfuscated function; we rebuild a minimal window environment from the
// page's scripts and evaluate that function in an embedded JS interpreter.
package formkey

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// Source supplies the signing secret. The client core depends only on this.
type Source interface {
	FormKey(ctx context.Context) (string, error)
}

// Static wraps a pre-known secret.
type Static string

// FormKey returns the wrapped secret.
func (s Static) FormKey(ctx context.Context) (string, error) { return string(s), nil }

var (
	formKeyPattern      = regexp.MustCompile(`window\.([a-zA-Z0-9]+)=function\(\)\{return window`)
	windowSecretPattern = regexp.MustCompile(`let useFormkeyDecode=[\s\S]*?(window\.[\w]+="[^"]+")`)
)

// windowPreamble stubs just enough of the DOM for the extracted scripts to
// run outside a browser.
const windowPreamble = `const window={document:{hack:1},navigator:{userAgent:'safari <3'}};`

// Extractor fetches the home document once and caches the evaluated secret.
type Extractor struct {
	http    *http.Client
	baseURL string
	logger  zerolog.Logger

	window string
	key    string
}

// New creates an extractor. hc must carry the session cookies and default
// headers, the backend serves a different document to anonymous clients.
func New(hc *http.Client, baseURL string, logger zerolog.Logger) *Extractor {
	return &Extractor{
		http:    hc,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "formkey").Logger(),
	}
}

// FormKey returns the signing secret, bootstrapping it on first call.
func (e *Extractor) FormKey(ctx context.Context) (string, error) {
	if e.key != "" {
		return e.key, nil
	}
	if e.window == "" {
		if err := e.collectScripts(ctx); err != nil {
			return "", err
		}
	}

	m := formKeyPattern.FindStringSubmatch(e.window)
	if m == nil {
		return "", fmt.Errorf("formkey accessor not found in page scripts")
	}

	script := fmt.Sprintf("%swindow.%s().slice(0, 32)", e.window, m[1])
	vm := goja.New()
	value, err := vm.RunString(script)
	if err != nil {
		return "", fmt.Errorf("evaluating formkey script: %w", err)
	}
	key := value.String()
	if key == "" {
		return "", fmt.Errorf("formkey script evaluated to empty string")
	}

	e.key = key
	e.logger.Info().Msg("retrieved form key")
	return key, nil
}

// collectScripts assembles the window script: the DOM stub, every relevant
// inline script, and the window-secret assignment from the app bundle.
func (e *Extractor) collectScripts(ctx context.Context) error {
	e.logger.Debug().Msg("collecting javascript source")

	page, err := e.get(ctx, e.baseURL)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	var window strings.Builder
	window.WriteString(windowPreamble)
	var appErr error

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			if strings.Contains(src, "app") && appErr == nil {
				secret, err := e.appSecret(ctx, src)
				if err != nil {
					appErr = err
					return
				}
				window.WriteString(secret)
				window.WriteString(";")
			}
			return
		}

		text := s.Text()
		if text == "" || strings.Contains(text, "document.") || !strings.Contains(text, "function") {
			return
		}
		if s.AttrOr("type", "") == "application/json" {
			return
		}
		window.WriteString(text)
	})
	if appErr != nil {
		return appErr
	}

	e.window = window.String()
	return nil
}

// appSecret fetches the app bundle and extracts the window-secret assignment.
func (e *Extractor) appSecret(ctx context.Context, src string) (string, error) {
	bundle, err := e.get(ctx, e.resolve(src))
	if err != nil {
		return "", err
	}
	m := windowSecretPattern.FindStringSubmatch(bundle)
	if m == nil {
		return "", fmt.Errorf("window secret not found in app bundle %s", src)
	}
	return m[1], nil
}

func (e *Extractor) resolve(src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	base, err := url.Parse(e.baseURL)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

func (e *Extractor) get(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", u, err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", u, err)
	}
	return string(body), nil
}
