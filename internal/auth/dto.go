package auth

import (
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/types"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the flat session description the frontend stores.
type LoginResponse struct {
	Token        string     `json:"token"`
	Role         enums.Role `json:"role"`
	UserID       int64      `json:"userId"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	LocationID   *int64     `json:"locationId"`
	LocationName *string    `json:"locationName"`
	Country      string     `json:"country"`
	CurrencyCode string     `json:"currency_code"`
}

// RegisterRequest creates either a customer or an owner with a new location.
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Country      string `json:"country" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=customer owner"`
	CurrencyCode string `json:"currency_code" validate:"required"`

	// Owner only.
	SupermarketLocation *types.Coordinates `json:"supermarketLocation,omitempty"`
	SupermarketType     *int64             `json:"supermarketType,omitempty"`
	SupermarketName     string             `json:"supermarketName,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}
