// Package resolver turns a public social post URL into a direct video URL
// by scraping the post page's Open Graph metadata.
package resolver

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reelcheck/internal/services"
	"reelcheck/internal/verify"
)

const defaultHTTPTimeout = 15 * time.Second

var (
	postPattern  = regexp.MustCompile(`^https://(?:www\.)?instagram\.com/p/([a-zA-Z0-9_-]+)/?(?:\?.*)?$`)
	reelPattern  = regexp.MustCompile(`^https://(?:www\.)?instagram\.com/reels?/([a-zA-Z0-9_-]+)/?(?:\?.*)?$`)
	sharePattern = regexp.MustCompile(`^https://(?:www\.)?instagram\.com/share/([a-zA-Z0-9_-]+)/?(?:\?.*)?$`)

	redirectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/reel/([a-zA-Z0-9_-]+)`),
		regexp.MustCompile(`/p/([a-zA-Z0-9_-]+)`),
		regexp.MustCompile(`/reels/([a-zA-Z0-9_-]+)`),
	}
)

// Resolver fetches post pages and extracts the direct media URL.
type Resolver struct {
	httpClient *http.Client
	baseURL    string
}

// Option customizes the resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithBaseURL overrides the post page host, useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(r *Resolver) {
		if baseURL != "" {
			r.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New constructs a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    "https://www.instagram.com",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve validates the post URL and returns the direct video URL, a stable
// filename derived from the post ID, and the post caption when present.
func (r *Resolver) Resolve(ctx context.Context, postURL string) (verify.LinkInfo, error) {
	var empty verify.LinkInfo

	postURL = strings.TrimSpace(postURL)
	if postURL == "" {
		return empty, services.Wrap(services.ErrValidation, "link", "resolve", "post url is required", nil)
	}
	if !strings.HasPrefix(postURL, "https://") {
		return empty, services.Wrap(services.ErrValidation, "link", "resolve", "post url must start with https://", nil)
	}
	if !strings.Contains(postURL, "instagram.com/") {
		return empty, services.Wrap(services.ErrValidation, "link", "resolve", "post url is not an instagram link", nil)
	}

	postID, err := r.postID(ctx, postURL)
	if err != nil {
		return empty, err
	}

	info, err := r.scrapePostPage(ctx, postID)
	if err != nil {
		return empty, err
	}
	return info, nil
}

func (r *Resolver) postID(ctx context.Context, postURL string) (string, error) {
	for _, pattern := range []*regexp.Regexp{postPattern, reelPattern} {
		if match := pattern.FindStringSubmatch(postURL); match != nil {
			return match[1], nil
		}
	}
	if sharePattern.MatchString(postURL) {
		return r.resolveShareURL(ctx, postURL)
	}
	return "", services.Wrap(services.ErrValidation, "link", "resolve",
		"url does not match a post, reel, or share link", nil)
}

// resolveShareURL follows the share link's redirect chain and reads the post
// ID from the final URL.
func (r *Resolver) resolveShareURL(ctx context.Context, shareURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shareURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrResolution, "link", "resolve", "build share request", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrResolution, "link", "resolve", "fetch share url", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrResolution, "link", "resolve",
			fmt.Sprintf("share url returned status %d", resp.StatusCode), nil)
	}

	final := resp.Request.URL.String()
	for _, pattern := range redirectPatterns {
		if match := pattern.FindStringSubmatch(final); match != nil {
			return match[1], nil
		}
	}
	return "", services.Wrap(services.ErrResolution, "link", "resolve",
		fmt.Sprintf("post id not found in redirected url %s", final), nil)
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/117.0"

func (r *Resolver) scrapePostPage(ctx context.Context, postID string) (verify.LinkInfo, error) {
	var empty verify.LinkInfo

	pageURL := fmt.Sprintf("%s/p/%s/", r.baseURL, postID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return empty, services.Wrap(services.ErrResolution, "link", "resolve", "build page request", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrResolution, "link", "resolve", "fetch post page", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return empty, services.Wrap(services.ErrResolution, "link", "resolve",
			fmt.Sprintf("post page returned status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrResolution, "link", "resolve", "parse post page", err)
	}

	videoURL, _ := doc.Find(`meta[property="og:video"]`).Attr("content")
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return empty, services.Wrap(services.ErrResolution, "link", "resolve",
			"video link for this post is not public or accessible", nil)
	}

	caption, _ := doc.Find(`meta[property="og:description"]`).Attr("content")

	return verify.LinkInfo{
		VideoURL: videoURL,
		Filename: fmt.Sprintf("reel_%s.mp4", postID),
		Caption:  strings.TrimSpace(caption),
	}, nil
}
