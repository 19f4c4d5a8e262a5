package models

import "time"

// Favorite ties a user to one product price point.
type Favorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_favorites_user_product_price"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:idx_favorites_user_product_price"`
	PriceID   int64     `gorm:"column:price_id;not null;uniqueIndex:idx_favorites_user_product_price;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// Alert is a durable user notification.
type Alert struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	UserID     int64      `gorm:"column:user_id;not null;index:idx_alerts_user"`
	UserType   string     `gorm:"column:user_type;not null;index:idx_alerts_user"`
	Message    string     `gorm:"column:message;not null"`
	Type       string     `gorm:"column:type;not null"`
	ProductID  *int64     `gorm:"column:product_id"`
	LocationID *int64     `gorm:"column:location_id"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	ReadAt     *time.Time `gorm:"column:read_at"`
}

// Review is a customer rating of a product at a location.
type Review struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	CustomerID int64     `gorm:"column:customer_id;not null"`
	ProductID  int64     `gorm:"column:product_id;not null;index:idx_reviews_product_location"`
	LocationID int64     `gorm:"column:location_id;not null;index:idx_reviews_product_location"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment;not null;default:''"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}
