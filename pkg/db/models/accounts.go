package models

import "time"

// Customer is a shopper account.
type Customer struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Country      string    `gorm:"column:country;not null"`
	CurrencyCode string    `gorm:"column:currency_code;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// Owner manages exactly one supermarket location.
type Owner struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	LocationID   int64     `gorm:"column:location_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}
