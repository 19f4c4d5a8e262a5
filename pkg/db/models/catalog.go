package models

import "time"

// Category groups products for browsing.
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null;uniqueIndex"`
}

// Supermarket is a retail chain with one or more locations.
type Supermarket struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"column:name;not null;uniqueIndex"`
	ImagePath *string `gorm:"column:image_path"`
}

// Location is a single store of a supermarket chain.
type Location struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	SupermarketID int64     `gorm:"column:supermarket_id;not null;index"`
	Name          string    `gorm:"column:name;not null"`
	Latitude      float64   `gorm:"column:latitude;not null"`
	Longitude     float64   `gorm:"column:longitude;not null"`
	Country       string    `gorm:"column:country;not null;index"`
	CurrencyCode  string    `gorm:"column:currency_code;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
}

func (Location) TableName() string { return "supermarket_locations" }

// Product is the country-scoped catalog entry. Prices live per location.
type Product struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;not null;index"`
	ImagePath  string    `gorm:"column:image_path;not null;default:''"`
	CategoryID int64     `gorm:"column:category_id;not null;index"`
	Country    string    `gorm:"column:country;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}
