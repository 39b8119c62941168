package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// Filters
	TagSlugs []string // Any of these tag slugs (products only)
	MinPrice int64    // Minimum price in cents
	MaxPrice int64    // Maximum price in cents; 0 = unbounded

	Limit  int
	Offset int

	SortBy    string // "relevance", "name", "recent", "price"
	SortOrder string // "asc", "desc"

	IncludeFacets bool
}

// DefaultSearchParams returns the storefront defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"tookMs"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitzero"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Slug       string            `json:"slug"`
	Name       string            `json:"name"`
	Brand      string            `json:"brand,omitempty"`
	ImageURL   string            `json:"imageUrl,omitempty"`
	PriceCents int64             `json:"priceCents,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Types []FacetCount `json:"types,omitempty"`
	Tags  []FacetCount `json:"tags,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)
	if params.IncludeFacets {
		req.AddFacet("type", bleve.NewFacetRequest("type", 10))
		req.AddFacet("tags", bleve.NewFacetRequest("tags", 20))
	}
	if params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
	}
	req.Fields = []string{"id", "type", "slug", "name", "brand", "image_url", "price_cents"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		h.Slug, _ = hit.Fields["slug"].(string)
		h.Name, _ = hit.Fields["name"].(string)
		h.Brand, _ = hit.Fields["brand"].(string)
		h.ImageURL, _ = hit.Fields["image_url"].(string)
		if p, ok := hit.Fields["price_cents"].(float64); ok {
			h.PriceCents = int64(p)
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}
	return result, nil
}

// buildSearchQuery constructs the Bleve query from params. Text matches on
// name rank above brand and description matches.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		brandMatch := bleve.NewMatchQuery(q)
		brandMatch.SetField("brand")
		brandMatch.SetBoost(1.5)

		descMatch := bleve.NewMatchQuery(q)
		descMatch.SetField("description")
		descMatch.SetBoost(0.7)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, brandMatch, descMatch, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		queries = append(queries, anyTerm("type", params.Types))
	}
	if len(params.TagSlugs) > 0 {
		queries = append(queries, anyTerm("tags", params.TagSlugs))
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		lo := float64(params.MinPrice)
		hi := float64(params.MaxPrice)
		if params.MaxPrice == 0 {
			hi = math.MaxFloat64
		}
		inclusive := true
		r := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		r.SetField("price_cents")
		queries = append(queries, r)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func anyTerm(field string, values []string) query.Query {
	qs := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		qs[i] = tq
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	desc := params.SortOrder == "desc"
	switch params.SortBy {
	case "name", "title":
		if desc {
			req.SortBy([]string{"-name", "id"})
		} else {
			req.SortBy([]string{"name", "id"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at", "id"})
		} else {
			req.SortBy([]string{"-created_at", "id"})
		}
	case "price":
		if desc {
			req.SortBy([]string{"-price_cents", "id"})
		} else {
			req.SortBy([]string{"price_cents", "id"})
		}
	default:
		req.SortBy([]string{"-_score", "id"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}
	if f, ok := result.Facets["type"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if f, ok := result.Facets["tags"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	return facets
}
