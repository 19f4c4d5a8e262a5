package search

import (
	"context"
	"strings"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type candidate struct {
	ProductID        int64
	ProductName      string
	ImagePath        string
	SupermarketID    int64
	SupermarketName  string
	SupermarketImage *string
	LocationID       int64
	LocationName     string
	Latitude         float64
	Longitude        float64
	Country          string
	Price            decimal.Decimal
	LastUpdated      time.Time
	OnDeal           bool
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Candidates returns every price row in country matching the optional name
// fragment and chain, ordered by product name then location id.
func (r *Repository) Candidates(ctx context.Context, country, text string, supermarketID int64) ([]candidate, error) {
	query := r.DB(ctx).
		Table("prices AS pr").
		Select(`p.id AS product_id, p.name AS product_name, p.image_path AS image_path,
			s.id AS supermarket_id, s.name AS supermarket_name, s.image_path AS supermarket_image,
			l.id AS location_id, l.name AS location_name, l.latitude AS latitude, l.longitude AS longitude,
			l.country AS country, pr.price AS price, pr.last_updated AS last_updated, pr.on_deal AS on_deal`).
		Joins("JOIN products AS p ON p.id = pr.product_id").
		Joins("JOIN supermarket_locations AS l ON l.id = pr.location_id").
		Joins("JOIN supermarkets AS s ON s.id = l.supermarket_id").
		Where("l.country = ?", country)
	if text != "" {
		query = query.Where("LOWER(p.name) LIKE ?", "%"+stripWildcards(strings.ToLower(text))+"%")
	}
	if supermarketID > 0 {
		query = query.Where("s.id = ?", supermarketID)
	}

	var rows []candidate
	if err := query.Order("p.name ASC, p.id ASC, l.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func stripWildcards(s string) string {
	return strings.NewReplacer(`%`, ``, `_`, ``).Replace(s)
}
