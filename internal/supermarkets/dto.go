package supermarkets

import "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"

type SupermarketDTO struct {
	ID        int64   `json:"supermarket_id"`
	Name      string  `json:"supermarket_name"`
	ImagePath *string `json:"image_path,omitempty"`
}

type CreateSupermarketRequest struct {
	Name string `json:"supermarket_name" validate:"required,max=100"`
}

type LocationDTO struct {
	ID            int64   `json:"location_id"`
	SupermarketID int64   `json:"supermarket_id"`
	Name          string  `json:"location_name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Country       string  `json:"country"`
	CurrencyCode  string  `json:"currency_code"`
}

// LocationName is the compact shape served by GET /locations.
type LocationName struct {
	ID   int64  `json:"location_id"`
	Name string `json:"location_name"`
}

// LocationRequest creates or updates a location. Coordinates, country and
// currency default to the caller's own values on create.
type LocationRequest struct {
	SupermarketID int64    `json:"supermarket_id" validate:"required,gt=0"`
	Name          string   `json:"location_name" validate:"required,max=100"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Country       string   `json:"country,omitempty"`
	CurrencyCode  string   `json:"currency_code,omitempty"`
}

func supermarketFromModel(m models.Supermarket) SupermarketDTO {
	return SupermarketDTO{ID: m.ID, Name: m.Name, ImagePath: m.ImagePath}
}

func locationFromModel(m models.Location) LocationDTO {
	return LocationDTO{
		ID:            m.ID,
		SupermarketID: m.SupermarketID,
		Name:          m.Name,
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		Country:       m.Country,
		CurrencyCode:  m.CurrencyCode,
	}
}
