// Package ranking orders fetched documents by semantic similarity to a
// claim using embedding vectors.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"reelcheck/internal/services"
	"reelcheck/internal/verify"
)

// Embedder turns a batch of texts into one vector per text, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Ranker scores documents against a claim and keeps the best few.
type Ranker struct {
	embedder      Embedder
	topK          int
	snippetLength int
}

// NewRanker builds a ranker. topK and snippetLength fall back to sane
// defaults when non-positive.
func NewRanker(embedder Embedder, topK, snippetLength int) *Ranker {
	if topK <= 0 {
		topK = 5
	}
	if snippetLength <= 0 {
		snippetLength = 1000
	}
	return &Ranker{embedder: embedder, topK: topK, snippetLength: snippetLength}
}

// Rank embeds the claim alongside the truncated documents and returns the
// topK most similar ones, best first. Ties keep input order. An empty
// document set yields an empty result without calling the embedder.
func (r *Ranker) Rank(ctx context.Context, claim string, docs []verify.Document) ([]verify.EvidenceItem, error) {
	if len(docs) == 0 {
		return []verify.EvidenceItem{}, nil
	}

	texts := make([]string, 0, len(docs)+1)
	texts = append(texts, claim)
	for _, doc := range docs {
		texts = append(texts, truncateRunes(doc.Text, r.snippetLength))
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, services.Wrap(services.ErrNoEvidence, "evidence", "embed", "embedding documents failed", err)
	}
	if len(vectors) != len(texts) {
		return nil, services.Wrap(services.ErrNoEvidence, "evidence", "embed",
			fmt.Sprintf("embedder returned %d vectors for %d texts", len(vectors), len(texts)), nil)
	}

	claimVector := vectors[0]
	items := make([]verify.EvidenceItem, 0, len(docs))
	for i, doc := range docs {
		distance := cosineDistance(claimVector, vectors[i+1])
		items = append(items, verify.EvidenceItem{
			URL:     doc.URL,
			Snippet: texts[i+1],
			Score:   similarityScore(distance),
		})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Score > items[b].Score
	})
	if len(items) > r.topK {
		items = items[:r.topK]
	}
	return items, nil
}

// similarityScore converts a cosine distance into a similarity rounded to
// four decimals and clamped to [0, 1].
func similarityScore(distance float64) float64 {
	score := math.Round((1-distance)*10000) / 10000
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// cosineDistance is 1 minus the cosine similarity of a and b. Mismatched or
// zero-magnitude vectors count as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
