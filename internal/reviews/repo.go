package reviews

import (
	"context"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"gorm.io/gorm"
)

type ReviewView struct {
	ID           int64     `json:"review_id"`
	CustomerID   int64     `json:"customer_id"`
	ProductID    int64     `json:"product_id"`
	LocationID   int64     `json:"location_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	CustomerName string    `json:"customer_name"`
	LocationName string    `json:"location_name"`
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) views(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("reviews AS r").
		Select(`r.id AS id, r.customer_id AS customer_id, r.product_id AS product_id, r.location_id AS location_id,
			r.rating AS rating, r.comment AS comment, r.created_at AS created_at,
			c.username AS customer_name, l.name AS location_name`).
		Joins("JOIN customers AS c ON c.id = r.customer_id").
		Joins("JOIN supermarket_locations AS l ON l.id = r.location_id")
}

func (r *Repository) ListFor(ctx context.Context, productID, locationID int64) ([]ReviewView, error) {
	var rows []ReviewView
	err := r.views(ctx).
		Where("r.product_id = ? AND r.location_id = ?", productID, locationID).
		Order("r.created_at DESC, r.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) View(ctx context.Context, id int64) (*ReviewView, error) {
	var rows []ReviewView
	if err := r.views(ctx).Where("r.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *Repository) Create(ctx context.Context, row *models.Review) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) Find(ctx context.Context, id int64) (*models.Review, error) {
	var row models.Review
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Review{}).Error
}
