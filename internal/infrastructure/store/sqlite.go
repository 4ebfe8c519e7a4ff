// Package store archives raw scraped rows to SQLite. The archive is an
// append-only log for later analysis; the merge engine never reads it.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quickcompare/backend/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	name TEXT,
	quantity TEXT,
	price TEXT,
	product_url TEXT,
	image_url TEXT,
	in_stock BOOLEAN,
	scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_platform ON products(platform);
CREATE INDEX IF NOT EXISTS idx_products_batch ON products(batch_id);
CREATE INDEX IF NOT EXISTS idx_products_scraped_at ON products(scraped_at);
`

// archivedProduct maps a products table row.
type archivedProduct struct {
	BatchID    string    `db:"batch_id"`
	Platform   string    `db:"platform"`
	Name       string    `db:"name"`
	Quantity   string    `db:"quantity"`
	Price      string    `db:"price"`
	ProductURL string    `db:"product_url"`
	ImageURL   string    `db:"image_url"`
	InStock    bool      `db:"in_stock"`
	ScrapedAt  time.Time `db:"scraped_at"`
}

// SQLiteArchive implements domain.ProductArchive on a local SQLite file.
// Each SaveBatch call is tagged with a fresh batch id so one scrape run's
// rows can be pulled back together.
type SQLiteArchive struct {
	db *sqlx.DB
}

// Open opens (or creates) the archive database and ensures the schema.
func Open(path string) (*SQLiteArchive, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// SaveBatch appends one scrape run's raw rows.
func (a *SQLiteArchive) SaveBatch(ctx context.Context, products []domain.RawProduct) error {
	if len(products) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	now := time.Now().UTC()

	rows := make([]archivedProduct, 0, len(products))
	for _, p := range products {
		rows = append(rows, archivedProduct{
			BatchID:    batchID,
			Platform:   p.Platform,
			Name:       p.Name,
			Quantity:   p.Quantity,
			Price:      p.Price,
			ProductURL: p.ProductURL,
			ImageURL:   p.ImageURL,
			InStock:    p.InStock,
			ScrapedAt:  now,
		})
	}

	_, err := a.db.NamedExecContext(ctx, `
		INSERT INTO products (batch_id, platform, name, quantity, price, product_url, image_url, in_stock, scraped_at)
		VALUES (:batch_id, :platform, :name, :quantity, :price, :product_url, :image_url, :in_stock, :scraped_at)`,
		rows)
	if err != nil {
		return fmt.Errorf("failed to archive products: %w", err)
	}
	return nil
}

// CountByPlatform reports how many rows each platform has contributed,
// for monitoring scraper health.
func (a *SQLiteArchive) CountByPlatform(ctx context.Context) (map[string]int, error) {
	rows, err := a.db.QueryxContext(ctx, `SELECT platform, COUNT(*) AS n FROM products GROUP BY platform`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, err
		}
		counts[platform] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
