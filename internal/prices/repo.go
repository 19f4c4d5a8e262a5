package prices

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceView is a price row with the product, location and chain it belongs to.
type PriceView struct {
	PriceID          int64           `json:"price_id"`
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ImagePath        string          `json:"image_path"`
	LocationID       int64           `json:"location_id"`
	LocationName     string          `json:"location_name"`
	SupermarketName  string          `json:"supermarket_name"`
	SupermarketImage *string         `json:"supermarket_image"`
	Price            decimal.Decimal `json:"price"`
	OnDeal           bool            `json:"on_deal"`
}

const viewColumns = `p.id AS price_id, p.product_id AS product_id, pr.name AS product_name,
	pr.image_path AS image_path, p.location_id AS location_id, l.name AS location_name,
	s.name AS supermarket_name, s.image_path AS supermarket_image, p.price AS price, p.on_deal AS on_deal`

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) views(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("prices AS p").
		Select(viewColumns).
		Joins("JOIN products AS pr ON pr.id = p.product_id").
		Joins("JOIN supermarket_locations AS l ON l.id = p.location_id").
		Joins("JOIN supermarkets AS s ON s.id = l.supermarket_id")
}

func (r *Repository) List(ctx context.Context) ([]PriceView, error) {
	var rows []PriceView
	if err := r.views(ctx).Order("p.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ByProduct lists a product's price rows, cheapest first.
func (r *Repository) ByProduct(ctx context.Context, productID int64) ([]PriceView, error) {
	var rows []PriceView
	err := r.views(ctx).
		Where("p.product_id = ?", productID).
		Order("p.price ASC, p.location_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// View returns gorm.ErrRecordNotFound when the pair has no price row.
func (r *Repository) View(ctx context.Context, productID, locationID int64) (*PriceView, error) {
	var rows []PriceView
	err := r.views(ctx).
		Where("p.product_id = ? AND p.location_id = ?", productID, locationID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *Repository) Find(ctx context.Context, productID, locationID int64) (*models.Price, error) {
	var row models.Price
	err := r.DB(ctx).Where("product_id = ? AND location_id = ?", productID, locationID).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Price) error {
	return r.DB(ctx).Create(row).Error
}

// SetPrice overwrites the amount of an existing row.
func (r *Repository) SetPrice(ctx context.Context, priceID int64, amount decimal.Decimal, at time.Time) error {
	return r.DB(ctx).Model(&models.Price{}).
		Where("id = ?", priceID).
		Updates(map[string]any{"price": amount, "last_updated": at}).Error
}
