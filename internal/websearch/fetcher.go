package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reelcheck/internal/logging"
	"reelcheck/internal/verify"
)

// Fetcher retrieves search result pages and reduces them to visible text.
type Fetcher struct {
	client  *http.Client
	workers int
	logger  *slog.Logger
}

// NewFetcher builds a fetcher with the given concurrency bound and per-URL
// timeout.
func NewFetcher(workers int, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if workers < 1 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		workers: workers,
		logger:  logger,
	}
}

// Fetch retrieves one URL and strips its markup down to whitespace-joined
// visible text. Non-2xx responses and empty pages count as failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (verify.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return verify.Document{}, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; reelcheck/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return verify.Document{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return verify.Document{}, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return verify.Document{}, fmt.Errorf("parse %s: %w", url, err)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return verify.Document{}, fmt.Errorf("fetch %s: no visible text", url)
	}
	return verify.Document{URL: url, Text: text}, nil
}

// FetchAll fetches every URL concurrently under the worker bound and returns
// the documents that succeeded, in input order. Individual failures are
// logged and skipped; an all-failed batch yields an empty slice.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []verify.Document {
	if len(urls) == 0 {
		return nil
	}

	results := make([]*verify.Document, len(urls))
	sem := make(chan struct{}, f.workers)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(index int, target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc, err := f.Fetch(ctx, target)
			if err != nil {
				f.logger.Debug("page fetch failed",
					logging.String("component", "websearch"),
					logging.String("url", target),
					logging.Error(err))
				return
			}
			results[index] = &doc
		}(i, url)
	}
	wg.Wait()

	docs := make([]verify.Document, 0, len(urls))
	for _, doc := range results {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}
