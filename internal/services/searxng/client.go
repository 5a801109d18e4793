// Package searxng queries a SearXNG instance for web search results.
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelcheck/internal/services"
	"reelcheck/internal/websearch"
)

const defaultHTTPTimeout = 15 * time.Second

// Client implements the search provider against SearXNG's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a search client for the given SearXNG search URL,
// e.g. http://127.0.0.1:8080/search.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

type searchResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// Search executes the query and returns result URLs, at most
// params.MaxResults of them. Zero provider results yield an empty slice; an
// unreachable provider or an empty query is an error.
func (c *Client) Search(ctx context.Context, params websearch.SearchParams) ([]string, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search", "search query is empty", nil)
	}
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search", "search provider url not configured", nil)
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("safesearch", safeSearchLevel(params.SafeSearch))
	if timeRange := timeRangeFor(params.TimeLimit); timeRange != "" {
		values.Set("time_range", timeRange)
	}
	if language := languageFor(params.Region); language != "" {
		values.Set("language", language)
	}
	if engines := enginesFor(params.Backend); engines != "" {
		values.Set("engines", engines)
	}

	endpoint := c.baseURL + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search", "build search request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search", "search provider unreachable", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search", "read search response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search",
			fmt.Sprintf("search provider returned status %d", resp.StatusCode), nil)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrSearch, "evidence", "search", "decode search response", err)
	}

	urls := make([]string, 0, len(decoded.Results))
	seen := make(map[string]bool, len(decoded.Results))
	for _, result := range decoded.Results {
		target := strings.TrimSpace(result.URL)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		urls = append(urls, target)
		if params.MaxResults > 0 && len(urls) >= params.MaxResults {
			break
		}
	}
	return urls, nil
}

func safeSearchLevel(value string) string {
	switch value {
	case websearch.SafeSearchOff:
		return "0"
	case websearch.SafeSearchOn:
		return "2"
	default:
		return "1"
	}
}

func timeRangeFor(limit string) string {
	switch limit {
	case "d":
		return "day"
	case "w":
		return "week"
	case "m":
		return "month"
	case "y":
		return "year"
	default:
		return ""
	}
}

// enginesFor maps the backend selection onto SearXNG's engines parameter.
// "auto" defers to the instance's configured engine set.
func enginesFor(backend string) string {
	backend = strings.TrimSpace(backend)
	if backend == "" || backend == websearch.DefaultBackend {
		return ""
	}
	return backend
}

// languageFor converts the country-language region format ("us-en") into the
// language tag SearXNG expects ("en-US"). The worldwide region maps to "all".
func languageFor(region string) string {
	if region == "" {
		return ""
	}
	if region == "wt-wt" {
		return "all"
	}
	parts := strings.SplitN(region, "-", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1] + "-" + strings.ToUpper(parts[0])
}
