package favorites

import (
	"context"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/repo"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	var rows []models.Favorite
	if err := r.DB(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Exists(ctx context.Context, userID, productID, priceID int64) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ? AND price_id = ?", userID, productID, priceID).
		Count(&count).Error
	return count > 0, err
}

// PricePointExists reports whether priceID is a price row of productID.
func (r *Repository) PricePointExists(ctx context.Context, productID, priceID int64) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Price{}).
		Where("id = ? AND product_id = ?", priceID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, row *models.Favorite) error {
	return r.DB(ctx).Create(row).Error
}

// Delete reports whether a favorite was removed.
func (r *Repository) Delete(ctx context.Context, userID, productID, priceID int64) (bool, error) {
	result := r.DB(ctx).
		Where("user_id = ? AND product_id = ? AND price_id = ?", userID, productID, priceID).
		Delete(&models.Favorite{})
	return result.RowsAffected > 0, result.Error
}

// DeleteForPrice drops every favorite of a price row.
func (r *Repository) DeleteForPrice(ctx context.Context, priceID int64) error {
	return r.DB(ctx).Where("price_id = ?", priceID).Delete(&models.Favorite{}).Error
}
