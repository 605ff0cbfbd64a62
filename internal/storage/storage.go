package storage

import (
	"context"

	"github.com/glazeops/glaze/internal/catalog"
)

// Filter narrows product and record queries.
type Filter struct {
	URL      string
	Category string
	Brand    string
	Limit    int
	Offset   int
}

// Store persists scraped products during a run and the selected, enriched
// records at the end of it. Products come back in scrape order; records
// come back ranked by aggregate score.
type Store interface {
	SaveProduct(ctx context.Context, p *catalog.Product) error
	Products(ctx context.Context, filter Filter) ([]*catalog.Product, error)
	SaveRecord(ctx context.Context, r *catalog.Record) error
	Records(ctx context.Context, filter Filter) ([]*catalog.Record, error)
	Close() error
}
