package product

import (
	"io"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/prices"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog entry as exposed over the API.
type ProductDTO struct {
	ID         int64  `json:"product_id"`
	Name       string `json:"product_name"`
	ImagePath  string `json:"image_path"`
	CategoryID int64  `json:"category_id"`
	Country    string `json:"country"`
}

// DealInfo describes the deal running on a price row.
type DealInfo struct {
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DealPrice          decimal.Decimal `json:"deal_price"`
	DealEndDate        time.Time       `json:"deal_end_date"`
}

// ProductAtLocation is a product with its price at one location.
type ProductAtLocation struct {
	ProductDTO
	LocationID int64           `json:"location_id"`
	Price      decimal.Decimal `json:"price"`
	OnDeal     bool            `json:"on_deal"`
	Deal       *DealInfo       `json:"deal"`
}

// ProductDetails lists a product's prices across every location, cheapest
// first.
type ProductDetails struct {
	ProductDTO
	Prices []prices.PriceView `json:"prices"`
}

// CreateInput is the parsed multipart create form.
type CreateInput struct {
	Name       string
	Price      decimal.Decimal
	CategoryID int64
	ImageName  string
	Image      io.Reader
}

// CreatedProduct is returned from a successful create.
type CreatedProduct struct {
	ProductDTO
	LocationID   int64           `json:"location_id"`
	Price        decimal.Decimal `json:"price"`
	CategoryName string          `json:"category_name"`
}

// Deleted is pushed as productDeleted.
type Deleted struct {
	ProductID  int64 `json:"productId"`
	LocationID int64 `json:"locationId"`
}

func toDTO(m models.Product) ProductDTO {
	return ProductDTO{ID: m.ID, Name: m.Name, ImagePath: m.ImagePath, CategoryID: m.CategoryID, Country: m.Country}
}
