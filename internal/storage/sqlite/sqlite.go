package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteStore implements storage.Store
var _ storage.Store = (*sqliteStore)(nil)

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	url TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	name TEXT NOT NULL,
	brand TEXT,
	category TEXT,
	size TEXT,
	ingredients TEXT NOT NULL,
	description TEXT,
	image_url TEXT,
	position INTEGER NOT NULL,
	scraped_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	product_url TEXT PRIMARY KEY,
	category TEXT,
	brand TEXT,
	position INTEGER NOT NULL,
	score INTEGER NOT NULL,
	record TEXT NOT NULL
);
`

// New creates a SQLite-backed storage.Store.
func New(dsn string) (storage.Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) SaveProduct(ctx context.Context, p *catalog.Product) error {
	ingredients, err := json.Marshal(p.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO products (
		url, id, name, brand, category, size, ingredients, description, image_url, position, scraped_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		p.URL, p.ID, p.Name, p.Brand, p.Category, p.Size,
		string(ingredients), p.Description, p.ImageURL, p.Position, p.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *sqliteStore) Products(ctx context.Context, filter storage.Filter) ([]*catalog.Product, error) {
	query := `SELECT url, id, name, brand, category, size, ingredients, description, image_url, position, scraped_at FROM products WHERE 1=1`
	args := []any{}

	if filter.URL != "" {
		query += ` AND url = ?`
		args = append(args, filter.URL)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Brand != "" {
		query += ` AND brand = ?`
		args = append(args, filter.Brand)
	}

	query += ` ORDER BY position ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *sqliteStore) SaveRecord(ctx context.Context, r *catalog.Record) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO records (product_url, category, brand, position, score, record)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		r.Product.URL, r.Product.Category, r.Product.Brand,
		r.Product.Position, r.Enrichment.Score, string(blob),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *sqliteStore) Records(ctx context.Context, filter storage.Filter) ([]*catalog.Record, error) {
	query := `SELECT record FROM records WHERE 1=1`
	args := []any{}

	if filter.URL != "" {
		query += ` AND product_url = ?`
		args = append(args, filter.URL)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Brand != "" {
		query += ` AND brand = ?`
		args = append(args, filter.Brand)
	}

	query += ` ORDER BY score DESC, position ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
