package enrich

import "context"

// Result is one ranked web result returned by a search provider.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchProvider abstracts the hosted search API used for enrichment.
// Implementations may call an official API or scrape; limit caps the
// number of results returned per query.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
