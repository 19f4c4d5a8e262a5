package deals

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type dealRow struct {
	DealID           int64
	ProductID        int64
	ProductName      string
	ImagePath        string
	LocationID       int64
	LocationName     string
	SupermarketName  string
	SupermarketImage *string
	Price            decimal.Decimal
	Percentage       decimal.Decimal
	StartAt          time.Time
	EndAt            time.Time
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("deals AS d").
		Select(`d.id AS deal_id, d.product_id AS product_id, pr.name AS product_name, pr.image_path AS image_path,
			d.location_id AS location_id, l.name AS location_name, s.name AS supermarket_name,
			s.image_path AS supermarket_image, p.price AS price, d.percentage AS percentage,
			d.start_at AS start_at, d.end_at AS end_at`).
		Joins("JOIN products AS pr ON pr.id = d.product_id").
		Joins("JOIN prices AS p ON p.product_id = d.product_id AND p.location_id = d.location_id").
		Joins("JOIN supermarket_locations AS l ON l.id = d.location_id").
		Joins("JOIN supermarkets AS s ON s.id = l.supermarket_id")
}

// Active lists deals whose [start, end] contains now.
func (r *Repository) Active(ctx context.Context, now time.Time) ([]dealRow, error) {
	var rows []dealRow
	err := r.joined(ctx).
		Where("d.start_at <= ? AND d.end_at >= ?", now, now).
		Order("d.end_at ASC, d.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) View(ctx context.Context, productID, locationID int64) (*dealRow, error) {
	var rows []dealRow
	err := r.joined(ctx).
		Where("d.product_id = ? AND d.location_id = ?", productID, locationID).
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

func (r *Repository) Find(ctx context.Context, productID, locationID int64) (*models.Deal, error) {
	var deal models.Deal
	if err := r.DB(ctx).Where("product_id = ? AND location_id = ?", productID, locationID).Take(&deal).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *Repository) PriceExists(ctx context.Context, productID, locationID int64) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Price{}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, deal *models.Deal) error {
	return r.DB(ctx).Create(deal).Error
}

func (r *Repository) UpdateTerms(ctx context.Context, dealID int64, pct decimal.Decimal, end time.Time) error {
	return r.DB(ctx).Model(&models.Deal{}).
		Where("id = ?", dealID).
		Updates(map[string]any{"percentage": pct, "end_at": end}).Error
}

func (r *Repository) Delete(ctx context.Context, dealID int64) error {
	return r.DB(ctx).Where("id = ?", dealID).Delete(&models.Deal{}).Error
}

// DeleteForPrice removes the deal of a (product, location) pair, if any.
func (r *Repository) DeleteForPrice(ctx context.Context, productID, locationID int64) error {
	return r.DB(ctx).Where("product_id = ? AND location_id = ?", productID, locationID).Delete(&models.Deal{}).Error
}

func (r *Repository) SetOnDeal(ctx context.Context, productID, locationID int64, onDeal bool) error {
	return r.DB(ctx).Model(&models.Price{}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Update("on_deal", onDeal).Error
}

// EndedBefore lists deals whose end has passed.
func (r *Repository) EndedBefore(ctx context.Context, now time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	if err := r.DB(ctx).Where("end_at < ?", now).Order("id ASC").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// ActivateAt flips on_deal for every price row with a deal covering now and
// returns how many rows changed.
func (r *Repository) ActivateAt(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB(ctx).Model(&models.Price{}).
		Where("on_deal = ?", false).
		Where(`EXISTS (SELECT 1 FROM deals AS d
			WHERE d.product_id = prices.product_id AND d.location_id = prices.location_id
			AND d.start_at <= ? AND d.end_at >= ?)`, now, now).
		Update("on_deal", true)
	return result.RowsAffected, result.Error
}
