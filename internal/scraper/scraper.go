// Package scraper fetches a web page and reduces it to a title plus the
// main readable content, bounded so downstream prompts stay affordable.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/studyloom/studyloom/pkg/logging"
)

const (
	// DefaultTimeout bounds the whole fetch.
	DefaultTimeout = 30 * time.Second

	// MaxContentLength caps extracted content; the cap exists to bound
	// downstream prompt and token cost.
	MaxContentLength = 50000

	// minSectionLength is the smallest selector match accepted as the
	// page's main content.
	minSectionLength = 100

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Tags and class markers that never carry article content.
const boilerplateSelector = "script, style, nav, footer, header, aside, .advertisement, .ads"

// Selectors tried in order when locating the main content region.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	".main-content",
	".post-content",
	".entry-content",
	"#content",
	".container",
}

// FetchError reports a failed page retrieval: network error, timeout, or a
// non-2xx response. The caller marks the source failed and never retries.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the scraped page.
type Result struct {
	FinalURL string `json:"finalUrl"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// Scraper fetches and cleans web pages.
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New returns a scraper with the default timeout and client identity.
func New() *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
	}
}

// NewWithClient returns a scraper using the given HTTP client.
func NewWithClient(client *http.Client) *Scraper {
	return &Scraper{client: client, userAgent: defaultUserAgent}
}

// Scrape fetches rawURL and extracts its title and main content. The
// returned URL is the redirect-resolved final URL, since sources are later
// addressed by canonical URL.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Result, error) {
	log := logging.GetLogger("scraper")
	targetURL := NormalizeURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: targetURL, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}

	doc.Find(boilerplateSelector).Remove()

	title := extractTitle(doc)
	content := extractMainContent(doc)
	content = CollapseWhitespace(content)
	content = truncate(content, MaxContentLength)

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	log.Debug().
		Str("url", finalURL).
		Str("title", title).
		Int("content_length", len(content)).
		Msg("Scraped page")

	return &Result{
		FinalURL: finalURL,
		Title:    title,
		Content:  content,
	}, nil
}

// NormalizeURL prepends https:// when the scheme is missing.
func NormalizeURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled"
}

// extractMainContent tries the content selectors in priority order and
// takes the first whose text exceeds the minimum length. Pages with no
// qualifying region fall back to the full body text.
func extractMainContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.First().Text())
		if len(text) > minSectionLength {
			return text
		}
	}
	return strings.TrimSpace(doc.Find("body").Text())
}

var (
	spaceRuns   = regexp.MustCompile(`[^\S\n]+`)
	newlineRuns = regexp.MustCompile(`\n+`)
)

// CollapseWhitespace folds runs of whitespace into single spaces and runs
// of newlines into single newlines.
func CollapseWhitespace(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
