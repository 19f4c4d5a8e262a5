package product

import (
	"context"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines catalog reads and the product/price writes owned by this
// package.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Product, error)
	Find(ctx context.Context, id int64) (*models.Product, error)
	PriceAt(ctx context.Context, productID, locationID int64) (*models.Price, error)
	DealAt(ctx context.Context, productID, locationID int64) (*models.Deal, error)
	InStock(ctx context.Context, locationID int64) ([]InStockItem, error)
	LocationCountry(ctx context.Context, locationID int64) (string, error)
	CategoryName(ctx context.Context, categoryID int64) (string, error)
	CreateProduct(ctx context.Context, row *models.Product) error
	CreatePrice(ctx context.Context, row *models.Price) error
	DeletePrice(ctx context.Context, priceID int64) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Find(ctx context.Context, id int64) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) PriceAt(ctx context.Context, productID, locationID int64) (*models.Price, error) {
	var row models.Price
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) DealAt(ctx context.Context, productID, locationID int64) (*models.Deal, error) {
	var row models.Deal
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Order("start_at DESC").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) InStock(ctx context.Context, locationID int64) ([]InStockItem, error) {
	var rows []InStockItem
	err := r.db.WithContext(ctx).
		Table("products AS p").
		Select(`p.id AS product_id, p.name AS product_name, p.image_path AS image_path,
			p.category_id AS category_id, c.name AS category_name, pr.id AS price_id,
			pr.price AS price, pr.on_deal AS on_deal`).
		Joins("JOIN prices AS pr ON pr.product_id = p.id").
		Joins("JOIN categories AS c ON c.id = p.category_id").
		Where("pr.location_id = ?", locationID).
		Order("p.name ASC, p.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) LocationCountry(ctx context.Context, locationID int64) (string, error) {
	var loc models.Location
	if err := r.db.WithContext(ctx).Select("country").Where("id = ?", locationID).Take(&loc).Error; err != nil {
		return "", err
	}
	return loc.Country, nil
}

func (r *repositoryImpl) CategoryName(ctx context.Context, categoryID int64) (string, error) {
	var cat models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", categoryID).Take(&cat).Error; err != nil {
		return "", err
	}
	return cat.Name, nil
}

func (r *repositoryImpl) CreateProduct(ctx context.Context, row *models.Product) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repositoryImpl) CreatePrice(ctx context.Context, row *models.Price) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repositoryImpl) DeletePrice(ctx context.Context, priceID int64) error {
	return r.db.WithContext(ctx).Where("id = ?", priceID).Delete(&models.Price{}).Error
}

// InStockItem is one product carried at a location.
type InStockItem struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ImagePath    string          `json:"image_path"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	PriceID      int64           `json:"price_id"`
	Price        decimal.Decimal `json:"price"`
	OnDeal       bool            `json:"on_deal"`
}
