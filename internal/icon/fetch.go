package icon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	fetchTimeout      = 10 * time.Second
	maxRedirects      = 5
	maxResponseBytes  = 10 << 20 // icons and pages past this are suspect
	maxFaviconProbes  = 4
)

// fetcher downloads icon payloads and target pages with bounded timeouts,
// bounded redirects, and a bounded response size.
type fetcher struct {
	client    *http.Client
	userAgent string
}

func newFetcher(userAgent string) *fetcher {
	return &fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch downloads rawURL and returns at most maxResponseBytes of the body.
func (f *fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch %s: empty body", rawURL)
	}
	return data, nil
}

// DiscoverFavicons returns candidate icon URLs for a target page, best
// first. Declared <link rel="icon"> entries come before the well-known
// paths at the site root.
func (f *fetcher) DiscoverFavicons(ctx context.Context, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var candidates []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			candidates = append(candidates, u)
		}
	}

	if body, err := f.Fetch(ctx, pageURL); err == nil {
		for _, href := range extractIconLinks(body) {
			if ref, err := url.Parse(href); err == nil {
				add(base.ResolveReference(ref).String())
			}
		}
	}

	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	for _, wellKnown := range []string{"/favicon.ico", "/favicon.png", "/apple-touch-icon.png"} {
		add(root.JoinPath(wellKnown).String())
	}

	if len(candidates) > maxFaviconProbes {
		candidates = candidates[:maxFaviconProbes]
	}
	return candidates
}

// extractIconLinks pulls href values from <link rel="icon"> style tags of a
// parsed HTML document, in document order.
func extractIconLinks(body []byte) []string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" && isIconRel(getAttr(n, "rel")) {
			if href := getAttr(n, "href"); href != "" {
				links = append(links, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// isIconRel matches the rel values browsers treat as icon declarations.
func isIconRel(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		switch token {
		case "icon", "shortcut", "apple-touch-icon", "apple-touch-icon-precomposed", "mask-icon":
			if token != "shortcut" {
				return true
			}
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
