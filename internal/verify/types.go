package verify

import "strings"

// Category classifies the topic of an extracted claim.
type Category string

const (
	CategoryHealthMedical       Category = "health_medical"
	CategoryPoliticalNews       Category = "political_news"
	CategoryCelebrityGossip     Category = "celebrity_gossip"
	CategoryFinancialMarket     Category = "financial_market"
	CategoryScientificFact      Category = "scientific_fact"
	CategoryHistoricalEvent     Category = "historical_event"
	CategoryProductReview       Category = "product_review"
	CategorySocialIssue         Category = "social_issue"
	CategoryTechnology          Category = "technology_tech"
	CategorySportsEntertainment Category = "sports_entertainment"
	CategoryWeatherNatural      Category = "weather_natural"
	CategoryBusinessEconomy     Category = "business_economy"
	CategoryEducationAcademic   Category = "education_academic"
	CategoryLegalRegulatory     Category = "legal_regulatory"
	CategoryCulturalTrend       Category = "cultural_trend"
)

var allCategories = []Category{
	CategoryHealthMedical,
	CategoryPoliticalNews,
	CategoryCelebrityGossip,
	CategoryFinancialMarket,
	CategoryScientificFact,
	CategoryHistoricalEvent,
	CategoryProductReview,
	CategorySocialIssue,
	CategoryTechnology,
	CategorySportsEntertainment,
	CategoryWeatherNatural,
	CategoryBusinessEconomy,
	CategoryEducationAcademic,
	CategoryLegalRegulatory,
	CategoryCulturalTrend,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(allCategories))
	for _, category := range allCategories {
		set[category] = struct{}{}
	}
	return set
}()

// AllCategories returns the ordered list of known claim categories.
func AllCategories() []Category {
	cp := make([]Category, len(allCategories))
	copy(cp, allCategories)
	return cp
}

// ParseCategory converts a string into a known Category. Unknown values map
// to CategoryCulturalTrend so a sloppy extractor never poisons the record.
func ParseCategory(value string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := categorySet[normalized]; ok {
		return normalized
	}
	return CategoryCulturalTrend
}

// Claim is a single verifiable statement extracted from a transcript.
// Claims are immutable once produced.
type Claim struct {
	Text     string   `json:"claim"`
	Category Category `json:"category"`
}

// Document is a fetched, cleaned web page used as ranking input.
type Document struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// EvidenceItem is a ranked snippet supporting or refuting a claim. Score is
// a cosine-similarity-derived value in [0, 1] rounded to 4 decimal places.
type EvidenceItem struct {
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// LinkInfo is the outcome of resolving a post reference.
type LinkInfo struct {
	VideoURL string `json:"videoUrl"`
	Filename string `json:"filename"`
	Caption  string `json:"caption,omitempty"`
}

// MediaInfo locates the audio extracted from a downloaded post.
type MediaInfo struct {
	VideoPath string `json:"video"`
	AudioPath string `json:"audio"`
}
