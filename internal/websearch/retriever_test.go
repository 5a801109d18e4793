package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelcheck/internal/ranking"
)

type stubSearcher struct {
	urls []string
	err  error
	got  SearchParams
}

func (s *stubSearcher) Search(_ context.Context, params SearchParams) ([]string, error) {
	s.got = params
	return s.urls, s.err
}

type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func newTestRetriever(searcher Searcher) *Retriever {
	return NewRetriever(
		NewOptimizer(nil, "us-en", 10, nil),
		searcher,
		NewFetcher(2, time.Second, nil),
		ranking.NewRanker(flatEmbedder{}, 5, 1000),
		nil,
	)
}

func TestGatherEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body>evidence from %s</body></html>", r.URL.Path)
	}))
	defer server.Close()

	searcher := &stubSearcher{urls: []string{server.URL + "/a", server.URL + "/b"}}
	retriever := newTestRetriever(searcher)

	items, err := retriever.Gather(context.Background(), "the moon landing happened in 1969")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 evidence items, got %d", len(items))
	}
	if searcher.got.Query == "" {
		t.Fatal("searcher did not receive optimized params")
	}
	for _, item := range items {
		if item.Score < 0 || item.Score > 1 {
			t.Fatalf("score out of range: %v", item)
		}
	}
}

func TestGatherEmptySearchResultsIsNotAnError(t *testing.T) {
	retriever := newTestRetriever(&stubSearcher{urls: nil})

	items, err := retriever.Gather(context.Background(), "obscure claim")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no evidence, got %v", items)
	}
}

func TestGatherPropagatesSearchError(t *testing.T) {
	retriever := newTestRetriever(&stubSearcher{err: errors.New("provider unreachable")})

	if _, err := retriever.Gather(context.Background(), "claim"); err == nil {
		t.Fatal("expected search error")
	}
}

func TestGatherAllFetchesFailedYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	retriever := newTestRetriever(&stubSearcher{urls: []string{server.URL + "/a"}})
	items, err := retriever.Gather(context.Background(), "claim")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no evidence when every fetch fails, got %v", items)
	}
}
