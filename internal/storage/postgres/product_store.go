package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

const productColumns = `platform, product_id, name, description, url, image_url, price, currency,
		sales_volume, rating, reviews_count, category, popularity_score, price_tier,
		sentiment_score, keywords, collected_at`

// ProductStore implements storage.ProductStore using PostgreSQL.
type ProductStore struct {
	db Connector
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db Connector) *ProductStore {
	return &ProductStore{db: db}
}

// Compile-time interface check.
var _ storage.ProductStore = (*ProductStore)(nil)

// Upsert inserts or replaces the record keyed by (platform, product_id).
// The serial id assigned on first insert fixes storage order.
func (s *ProductStore) Upsert(ctx context.Context, p *domain.ProductRecord) error {
	if p == nil || p.Platform == "" || p.ProductID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (platform, product_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			image_url = EXCLUDED.image_url,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			sales_volume = EXCLUDED.sales_volume,
			rating = EXCLUDED.rating,
			reviews_count = EXCLUDED.reviews_count,
			category = EXCLUDED.category,
			popularity_score = EXCLUDED.popularity_score,
			price_tier = EXCLUDED.price_tier,
			sentiment_score = EXCLUDED.sentiment_score,
			keywords = EXCLUDED.keywords,
			collected_at = EXCLUDED.collected_at,
			updated_at = now()
	`

	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return s.db.WithConn(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, query,
			p.Platform,
			p.ProductID,
			p.Name,
			p.Description,
			p.URL,
			p.ImageURL,
			p.Price,
			p.Currency,
			p.SalesVolume,
			p.Rating,
			p.ReviewsCount,
			p.Category,
			p.PopularityScore,
			p.PriceTier,
			p.SentimentScore,
			keywords,
			p.CollectedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upsert product: %w", err)
		}
		return nil
	})
}

// Get retrieves one record. Returns ErrNotFound if not exists.
func (s *ProductStore) Get(ctx context.Context, platform, productID string) (*domain.ProductRecord, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE platform = $1 AND product_id = $2
	`

	var p *domain.ProductRecord
	err := s.db.WithConn(ctx, func(q Querier) error {
		var err error
		p, err = scanProduct(q.QueryRow(ctx, query, platform, productID))
		return err
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// QueryCurrent returns records matching the filter in storage order.
func (s *ProductStore) QueryCurrent(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductRecord, error) {
	where, args := productWhere(filter)
	query := `
		SELECT ` + productColumns + `
		FROM products` + where + `
		ORDER BY id ASC
	`

	var products []*domain.ProductRecord
	err := s.db.WithConn(ctx, func(q Querier) error {
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		products, err = scanProducts(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query current products: %w", err)
	}
	return products, nil
}

// DistinctCategories returns the sorted set of non-empty categories.
func (s *ProductStore) DistinctCategories(ctx context.Context, platform string) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM products
		WHERE category <> '' AND ($1::text = '' OR platform = $1)
		ORDER BY category ASC
	`

	var categories []string
	err := s.db.WithConn(ctx, func(q Querier) error {
		rows, err := q.Query(ctx, query, platform)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				return err
			}
			categories = append(categories, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return categories, nil
}

// productWhere builds the WHERE clause for a filter with positional args.
func productWhere(f domain.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Platform != "" {
		add("platform = $%d", f.Platform)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.PriceRange != nil {
		add("price >= $%d", f.PriceRange.Min)
		if f.PriceRange.Max != nil {
			add("price < $%d", *f.PriceRange.Max)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

// scanProduct scans a single row into a ProductRecord.
func scanProduct(row pgx.Row) (*domain.ProductRecord, error) {
	var p domain.ProductRecord
	err := row.Scan(
		&p.Platform,
		&p.ProductID,
		&p.Name,
		&p.Description,
		&p.URL,
		&p.ImageURL,
		&p.Price,
		&p.Currency,
		&p.SalesVolume,
		&p.Rating,
		&p.ReviewsCount,
		&p.Category,
		&p.PopularityScore,
		&p.PriceTier,
		&p.SentimentScore,
		&p.Keywords,
		&p.CollectedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CollectedAt = p.CollectedAt.UTC()
	return &p, nil
}

// scanProducts scans multiple rows into ProductRecords.
func scanProducts(rows pgx.Rows) ([]*domain.ProductRecord, error) {
	var products []*domain.ProductRecord
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}
