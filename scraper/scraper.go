// Package scraper retrieves visa bulletin documents from the State
// Department site: building the fiscal-year URLs, fetching individual
// bulletin pages, and discovering which months exist from the index page.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kmorales/visatrack/bulletin"
)

// DefaultBaseURL is the production site. Tests point the client elsewhere.
const DefaultBaseURL = "https://travel.state.gov"

const (
	indexPath        = "/content/travel/en/legal/visa-law0/visa-bulletin.html"
	defaultUserAgent = "visatrack/1.0 (visa bulletin tracker)"
	defaultTimeout   = 30 * time.Second
)

// bulletinLink matches bulletin filenames on the index page, capturing the
// month name and four-digit calendar year.
var bulletinLink = regexp.MustCompile(`visa-bulletin-for-(\w+)-(\d{4})\.html`)

// FetchError describes a failed document retrieval: a transport error or a
// non-success HTTP status. Retry policy belongs to the caller.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches bulletin documents with a bounded timeout. It performs no
// retries of its own.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. An empty baseURL means
// the production site.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *Client) SetUserAgent(ua string) {
	c.userAgent = ua
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// BulletinURL builds the locator for a bulletin. The path embeds the federal
// fiscal year, the lowercase month name, and the calendar year; the format
// must be reproduced exactly for historical URLs to resolve.
func (c *Client) BulletinURL(year, month int) string {
	return fmt.Sprintf(
		"%s/content/travel/en/legal/visa-law0/visa-bulletin/%d/visa-bulletin-for-%s-%d.html",
		c.baseURL, bulletin.FiscalYear(year, month), bulletin.MonthName(month), year,
	)
}

// FetchBulletin retrieves the raw HTML for one bulletin month.
func (c *Client) FetchBulletin(ctx context.Context, year, month int) (string, error) {
	url := c.BulletinURL(year, month)

	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return body, nil
}

// DiscoverBulletins fetches the bulletin index page and returns the months
// it links to, de-duplicated, in the order first encountered. Links that do
// not match the bulletin filename pattern, or that name an unknown month,
// are skipped so one malformed link cannot fail the whole discovery.
func (c *Client) DiscoverBulletins(ctx context.Context) ([]bulletin.Month, error) {
	body, err := c.get(ctx, c.baseURL+indexPath)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	var months []bulletin.Month
	seen := map[bulletin.Month]bool{}

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		m := bulletinLink.FindStringSubmatch(href)
		if m == nil {
			return
		}
		monthNum, ok := bulletin.MonthNumber(strings.ToLower(m[1]))
		if !ok {
			return
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			return
		}
		month := bulletin.Month{Year: year, Month: monthNum}
		if !seen[month] {
			seen[month] = true
			months = append(months, month)
		}
	})

	return months, nil
}

// get performs one GET request and returns the response body as text.
func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	return string(body), nil
}
