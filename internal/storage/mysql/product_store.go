package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

var productUpdateColumns = []string{
	"name", "description", "url", "image_url", "price", "currency", "sales_volume",
	"rating", "reviews_count", "category", "popularity_score", "price_tier",
	"sentiment_score", "keywords", "collected_at", "updated_at",
}

// ProductStore implements storage.ProductStore on gorm.
type ProductStore struct {
	db *gorm.DB
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

var _ storage.ProductStore = (*ProductStore)(nil)

// Upsert inserts or replaces the record keyed by (platform, product_id).
func (s *ProductStore) Upsert(ctx context.Context, p *domain.ProductRecord) error {
	if p == nil || p.Platform == "" || p.ProductID == "" {
		return storage.ErrInvalidInput
	}

	m := toProductModel(p)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns(productUpdateColumns),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Get retrieves one record. Returns ErrNotFound if not exists.
func (s *ProductStore) Get(ctx context.Context, platform, productID string) (*domain.ProductRecord, error) {
	var m productModel
	err := s.db.WithContext(ctx).
		Where("platform = ? AND product_id = ?", platform, productID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return m.toDomain(), nil
}

// QueryCurrent returns records matching the filter in storage order.
// The query runs on one dedicated connection released when it returns.
func (s *ProductStore) QueryCurrent(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductRecord, error) {
	var models []productModel
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return applyProductFilter(tx, filter).Order("id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query current products: %w", err)
	}

	products := make([]*domain.ProductRecord, 0, len(models))
	for i := range models {
		products = append(products, models[i].toDomain())
	}
	return products, nil
}

// DistinctCategories returns the sorted set of non-empty categories.
func (s *ProductStore) DistinctCategories(ctx context.Context, platform string) ([]string, error) {
	q := s.db.WithContext(ctx).Model(&productModel{}).Where("category <> ''")
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}

	var categories []string
	if err := q.Distinct().Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return categories, nil
}

func applyProductFilter(q *gorm.DB, f domain.ProductFilter) *gorm.DB {
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.PriceRange != nil {
		q = q.Where("price >= ?", f.PriceRange.Min)
		if f.PriceRange.Max != nil {
			q = q.Where("price < ?", *f.PriceRange.Max)
		}
	}
	return q
}
