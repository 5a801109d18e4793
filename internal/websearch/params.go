package websearch

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// SearchParams is a validated search request for the search provider.
type SearchParams struct {
	Query      string `json:"query"`
	Region     string `json:"region"`
	SafeSearch string `json:"safesearch"`
	TimeLimit  string `json:"timelimit,omitempty"`
	MaxResults int    `json:"max_results"`
	Backend    string `json:"backend"`
}

const (
	SafeSearchOn       = "on"
	SafeSearchModerate = "moderate"
	SafeSearchOff      = "off"

	DefaultRegion     = "us-en"
	DefaultBackend    = "auto"
	DefaultMaxResults = 10
)

var validRegions = map[string]bool{
	"us-en": true, "uk-en": true, "ca-en": true, "au-en": true,
	"de-de": true, "fr-fr": true, "es-es": true, "it-it": true,
	"ru-ru": true, "cn-zh": true, "jp-jp": true, "kr-kr": true,
	"in-en": true, "br-pt": true, "mx-es": true, "ar-es": true,
	"nl-nl": true, "se-sv": true, "no-no": true, "dk-da": true,
	"fi-fi": true, "pl-pl": true, "wt-wt": true,
}

var validBackends = map[string]bool{
	"auto": true, "bing": true, "brave": true, "duckduckgo": true,
	"google": true, "mojeek": true, "mullvad_brave": true,
	"mullvad_google": true, "yandex": true, "yahoo": true, "wikipedia": true,
}

// Sanitize clamps every field to a valid value, falling back to defaults
// for anything out of range. The query itself is only trimmed.
func (p SearchParams) Sanitize() SearchParams {
	p.Query = strings.TrimSpace(p.Query)

	p.Region = strings.ToLower(strings.TrimSpace(p.Region))
	if !validRegions[p.Region] {
		p.Region = DefaultRegion
	}

	switch strings.ToLower(strings.TrimSpace(p.SafeSearch)) {
	case SafeSearchOn:
		p.SafeSearch = SafeSearchOn
	case SafeSearchOff:
		p.SafeSearch = SafeSearchOff
	default:
		p.SafeSearch = SafeSearchModerate
	}

	switch strings.ToLower(strings.TrimSpace(p.TimeLimit)) {
	case "d", "w", "m", "y":
		p.TimeLimit = strings.ToLower(strings.TrimSpace(p.TimeLimit))
	default:
		p.TimeLimit = ""
	}

	if p.MaxResults < 1 {
		p.MaxResults = DefaultMaxResults
	} else if p.MaxResults > 200 {
		p.MaxResults = 200
	}

	p.Backend = strings.ToLower(strings.TrimSpace(p.Backend))
	if p.Backend == "" {
		p.Backend = DefaultBackend
	} else if strings.Contains(p.Backend, ",") {
		for _, part := range strings.Split(p.Backend, ",") {
			if !validBackends[strings.TrimSpace(part)] {
				p.Backend = DefaultBackend
				break
			}
		}
	} else if !validBackends[p.Backend] {
		p.Backend = DefaultBackend
	}

	return p
}

// RegionFromLocale maps a BCP 47 tag like "en-US" or "pt-BR" onto the
// provider's country-language region format. Unknown or unmapped locales
// fall back to the worldwide default.
func RegionFromLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultRegion
	}
	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return DefaultRegion
	}
	candidate := strings.ToLower(region.String()) + "-" + base.String()
	if validRegions[candidate] {
		return candidate
	}
	return DefaultRegion
}

func (p SearchParams) String() string {
	limit := p.TimeLimit
	if limit == "" {
		limit = "none"
	}
	return "query=" + strconv.Quote(p.Query) +
		" region=" + p.Region +
		" safesearch=" + p.SafeSearch +
		" timelimit=" + limit +
		" max_results=" + strconv.Itoa(p.MaxResults) +
		" backend=" + p.Backend
}
