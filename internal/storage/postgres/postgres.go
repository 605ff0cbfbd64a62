package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresStore implements storage.Store
var _ storage.Store = (*postgresStore)(nil)

type postgresStore struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	url TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	name TEXT NOT NULL,
	brand TEXT,
	category TEXT,
	size TEXT,
	ingredients JSONB NOT NULL,
	description TEXT,
	image_url TEXT,
	position INTEGER NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	product_url TEXT PRIMARY KEY,
	category TEXT,
	brand TEXT,
	position INTEGER NOT NULL,
	score INTEGER NOT NULL,
	record JSONB NOT NULL
);
`

// New creates a Postgres-backed storage.Store.
func New(ctx context.Context, dsn string) (storage.Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) SaveProduct(ctx context.Context, p *catalog.Product) error {
	ingredients, err := json.Marshal(p.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}

	query := `
	INSERT INTO products (
		url, id, name, brand, category, size, ingredients, description, image_url, position, scraped_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (url) DO UPDATE SET
		id = EXCLUDED.id, name = EXCLUDED.name, brand = EXCLUDED.brand,
		category = EXCLUDED.category, size = EXCLUDED.size,
		ingredients = EXCLUDED.ingredients, description = EXCLUDED.description,
		image_url = EXCLUDED.image_url, position = EXCLUDED.position,
		scraped_at = EXCLUDED.scraped_at
	`

	_, err = s.pool.Exec(ctx, query,
		p.URL, p.ID, p.Name, p.Brand, p.Category, p.Size,
		string(ingredients), p.Description, p.ImageURL, p.Position, p.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *postgresStore) Products(ctx context.Context, filter storage.Filter) ([]*catalog.Product, error) {
	query := `SELECT url, id, name, brand, category, size, ingredients, description, image_url, position, scraped_at FROM products WHERE 1=1`
	args := []any{}

	if filter.URL != "" {
		args = append(args, filter.URL)
		query += fmt.Sprintf(` AND url = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		query += fmt.Sprintf(` AND brand = $%d`, len(args))
	}

	query += ` ORDER BY position ASC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		var p catalog.Product
		var ingredients string

		err := rows.Scan(
			&p.URL, &p.ID, &p.Name, &p.Brand, &p.Category, &p.Size,
			&ingredients, &p.Description, &p.ImageURL, &p.Position, &p.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(ingredients), &p.Ingredients); err != nil {
			return nil, fmt.Errorf("unmarshal ingredients: %w", err)
		}

		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (s *postgresStore) SaveRecord(ctx context.Context, r *catalog.Record) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	query := `
	INSERT INTO records (product_url, category, brand, position, score, record)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (product_url) DO UPDATE SET
		category = EXCLUDED.category, brand = EXCLUDED.brand,
		position = EXCLUDED.position, score = EXCLUDED.score,
		record = EXCLUDED.record
	`

	_, err = s.pool.Exec(ctx, query,
		r.Product.URL, r.Product.Category, r.Product.Brand,
		r.Product.Position, r.Enrichment.Score, string(blob),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *postgresStore) Records(ctx context.Context, filter storage.Filter) ([]*catalog.Record, error) {
	query := `SELECT record FROM records WHERE 1=1`
	args := []any{}

	if filter.URL != "" {
		args = append(args, filter.URL)
		query += fmt.Sprintf(` AND product_url = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		query += fmt.Sprintf(` AND brand = $%d`, len(args))
	}

	query += ` ORDER BY score DESC, position ASC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*catalog.Record
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		var r catalog.Record
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
