package mysql

import (
	"time"

	"ecommerce-trend-lab/internal/domain"
)

type productModel struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Platform        string    `gorm:"column:platform;type:varchar(32);not null;uniqueIndex:uk_platform_product,priority:1;index:idx_platform_category,priority:1"`
	ProductID       string    `gorm:"column:product_id;type:varchar(128);not null;uniqueIndex:uk_platform_product,priority:2"`
	Name            string    `gorm:"column:name;type:varchar(512)"`
	Description     string    `gorm:"column:description;type:text"`
	URL             string    `gorm:"column:url;type:varchar(1024)"`
	ImageURL        string    `gorm:"column:image_url;type:varchar(1024)"`
	Price           float64   `gorm:"column:price;not null;default:0;index"`
	Currency        string    `gorm:"column:currency;type:varchar(8);default:'CNY'"`
	SalesVolume     int64     `gorm:"column:sales_volume;not null;default:0"`
	Rating          float64   `gorm:"column:rating;not null;default:0"`
	ReviewsCount    int64     `gorm:"column:reviews_count;not null;default:0"`
	Category        string    `gorm:"column:category;type:varchar(128);index:idx_platform_category,priority:2"`
	PopularityScore float64   `gorm:"column:popularity_score;not null;default:0"`
	PriceTier       string    `gorm:"column:price_tier;type:varchar(32)"`
	SentimentScore  *float64  `gorm:"column:sentiment_score"`
	Keywords        []string  `gorm:"column:keywords;serializer:json"`
	CollectedAt     time.Time `gorm:"column:collected_at;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (productModel) TableName() string { return "products" }

type historyModel struct {
	Platform     string    `gorm:"column:platform;type:varchar(32);primaryKey"`
	ProductID    string    `gorm:"column:product_id;type:varchar(128);primaryKey"`
	Date         time.Time `gorm:"column:snapshot_date;primaryKey;index"`
	SnapshotID   string    `gorm:"column:snapshot_id;type:varchar(64)"`
	Category     string    `gorm:"column:category;type:varchar(128);index"`
	Price        float64   `gorm:"column:price"`
	SalesVolume  int64     `gorm:"column:sales_volume"`
	Rating       float64   `gorm:"column:rating"`
	ReviewsCount int64     `gorm:"column:reviews_count"`
	CreatedAt    time.Time
}

func (historyModel) TableName() string { return "product_history" }

func toProductModel(p *domain.ProductRecord) *productModel {
	return &productModel{
		Platform:        p.Platform,
		ProductID:       p.ProductID,
		Name:            p.Name,
		Description:     p.Description,
		URL:             p.URL,
		ImageURL:        p.ImageURL,
		Price:           p.Price,
		Currency:        p.Currency,
		SalesVolume:     p.SalesVolume,
		Rating:          p.Rating,
		ReviewsCount:    p.ReviewsCount,
		Category:        p.Category,
		PopularityScore: p.PopularityScore,
		PriceTier:       p.PriceTier,
		SentimentScore:  p.SentimentScore,
		Keywords:        p.Keywords,
		CollectedAt:     p.CollectedAt.UTC(),
	}
}

func (m *productModel) toDomain() *domain.ProductRecord {
	return &domain.ProductRecord{
		Platform:        m.Platform,
		ProductID:       m.ProductID,
		Name:            m.Name,
		Description:     m.Description,
		URL:             m.URL,
		ImageURL:        m.ImageURL,
		Price:           m.Price,
		Currency:        m.Currency,
		SalesVolume:     m.SalesVolume,
		Rating:          m.Rating,
		ReviewsCount:    m.ReviewsCount,
		Category:        m.Category,
		PopularityScore: m.PopularityScore,
		PriceTier:       m.PriceTier,
		SentimentScore:  m.SentimentScore,
		Keywords:        m.Keywords,
		CollectedAt:     m.CollectedAt.UTC(),
	}
}

func toHistoryModel(s *domain.HistorySnapshot) *historyModel {
	return &historyModel{
		Platform:     s.Platform,
		ProductID:    s.ProductID,
		Date:         s.Date.UTC(),
		SnapshotID:   s.SnapshotID,
		Category:     s.Category,
		Price:        s.Price,
		SalesVolume:  s.SalesVolume,
		Rating:       s.Rating,
		ReviewsCount: s.ReviewsCount,
	}
}

func (m *historyModel) toDomain() *domain.HistorySnapshot {
	return &domain.HistorySnapshot{
		SnapshotID:   m.SnapshotID,
		ProductID:    m.ProductID,
		Platform:     m.Platform,
		Category:     m.Category,
		Date:         m.Date.UTC(),
		Price:        m.Price,
		SalesVolume:  m.SalesVolume,
		Rating:       m.Rating,
		ReviewsCount: m.ReviewsCount,
	}
}
