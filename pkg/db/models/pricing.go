package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the single price row of a product at a location.
type Price struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ProductID   int64           `gorm:"column:product_id;not null;uniqueIndex:idx_prices_product_location"`
	LocationID  int64           `gorm:"column:location_id;not null;uniqueIndex:idx_prices_product_location"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	OnDeal      bool            `gorm:"column:on_deal;not null;default:false"`
	LastUpdated time.Time       `gorm:"column:last_updated;not null"`
}

// Deal is a time-bounded percentage discount on a price row.
type Deal struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	ProductID  int64           `gorm:"column:product_id;not null;uniqueIndex:idx_deals_product_location"`
	LocationID int64           `gorm:"column:location_id;not null;uniqueIndex:idx_deals_product_location"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:numeric(5,2);not null"`
	StartAt    time.Time       `gorm:"column:start_at;not null"`
	EndAt      time.Time       `gorm:"column:end_at;not null;index"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null"`
}

// PriceSubmission is a customer-proposed price awaiting owner review.
type PriceSubmission struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	CustomerID    int64           `gorm:"column:customer_id;not null;index"`
	ProductID     int64           `gorm:"column:product_id;not null"`
	LocationID    int64           `gorm:"column:location_id;not null;index"`
	NewPrice      decimal.Decimal `gorm:"column:new_price;type:numeric(10,2);not null"`
	EvidenceURL   *string         `gorm:"column:evidence_url"`
	EvidenceImage *string         `gorm:"column:evidence_image"`
	Status        string          `gorm:"column:status;not null;default:'pending'"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null"`
	ApprovedAt    *time.Time      `gorm:"column:approved_at"`
	RejectedAt    *time.Time      `gorm:"column:rejected_at"`
}
