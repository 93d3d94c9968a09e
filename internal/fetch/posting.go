// Package fetch retrieves job posting pages and reduces them to clean
// description text. Search snippets are short; the scorer produces much
// better analyses when the posting body is available, so the pipeline uses
// this package to enrich hits before scoring.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the HTTP request timeout for posting fetches.
const DefaultTimeout = 30 * time.Second

// defaultUserAgent identifies the assistant to job boards.
const defaultUserAgent = "Mozilla/5.0 (compatible; JobAssistant/1.0)"

// maxDescriptionLength caps enriched descriptions before they enter prompts.
const maxDescriptionLength = 6000

// Error represents a posting fetch failure.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures posting fetches.
type Options struct {
	Timeout time.Duration
	// UseBrowser enables the headless-browser fallback for pages whose
	// server-rendered HTML carries too little text.
	UseBrowser bool
	Verbose    bool
}

// Fetcher downloads and extracts job posting text.
type Fetcher struct {
	client *http.Client
	opts   Options
}

// New builds a fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// Posting fetches a job posting URL and returns its description text,
// falling back to browser rendering for SPA boards when enabled.
func (f *Fetcher) Posting(ctx context.Context, postingURL string) (string, error) {
	parsed, err := url.Parse(postingURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: postingURL, Message: "invalid URL", Cause: err}
	}

	html, err := f.get(ctx, postingURL)
	if err != nil {
		return "", err
	}

	text, err := extractPostingText(html, parsed.Host)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "failed to extract posting text", Cause: err}
	}

	if f.opts.UseBrowser && looksUnrendered(text) {
		rendered, berr := renderWithBrowser(ctx, postingURL, f.opts.Timeout, f.opts.Verbose)
		if berr == nil {
			if browserText, eerr := extractPostingText(rendered, parsed.Host); eerr == nil && len(browserText) > len(text) {
				text = browserText
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: postingURL, Message: "no posting text found"}
	}
	if len(text) > maxDescriptionLength {
		text = text[:maxDescriptionLength]
	}
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, postingURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postingURL, nil)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: postingURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return string(body), nil
}

// postingSelectors are tried in order against the parsed page; the first
// match wins. Board-specific selectors come before the generic ones.
func postingSelectors(host string) []string {
	host = strings.ToLower(host)
	var selectors []string
	switch {
	case strings.Contains(host, "greenhouse.io"):
		selectors = []string{".job__description.body", ".job__description", "#content"}
	case strings.Contains(host, "lever.co"):
		selectors = []string{".posting-description", ".posting-page", ".content"}
	case strings.Contains(host, "linkedin.com"):
		selectors = []string{".description__text", ".show-more-less-html__markup"}
	case strings.Contains(host, "indeed.com"):
		selectors = []string{"#jobDescriptionText", ".jobsearch-JobComponent-description"}
	case strings.Contains(host, "glassdoor."):
		selectors = []string{".jobDescriptionContent", "[class*='JobDetails_jobDescription']"}
	}
	return append(selectors,
		".job-description", "#job-description", ".job-details",
		"[data-testid='job-description']", "main", "article", ".content", "#content")
}

// extractPostingText strips noise elements and returns the text of the best
// matching content region, falling back to the whole body.
func extractPostingText(html, host string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .ads, .sidebar, .cookie-banner, .popup").Remove()

	var content *goquery.Selection
	for _, selector := range postingSelectors(host) {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return cleanWhitespace(content.Text()), nil
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)
var blankRun = regexp.MustCompile(`\n{3,}`)

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
	}
	joined := strings.Join(lines, "\n")
	joined = blankRun.ReplaceAllString(joined, "\n\n")
	return strings.TrimSpace(joined)
}
