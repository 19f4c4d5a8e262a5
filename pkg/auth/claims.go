package auth

import (
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID              int64
	Role                enums.Role
	Country             string
	CurrencyCode        string
	Email               string
	Name                string
	SupermarketLocation string
	LocationID          *int64
	JTI                 string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID              int64      `json:"userId"`
	Role                enums.Role `json:"role"`
	Country             string     `json:"country"`
	CurrencyCode        string     `json:"currency_code"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	SupermarketLocation string     `json:"supermarket_location,omitempty"`
	LocationID          *int64     `json:"location_id,omitempty"`
	jwt.RegisteredClaims
}

// OwnsLocation reports whether the claims belong to the owner of locationID.
func (c *AccessTokenClaims) OwnsLocation(locationID int64) bool {
	return c != nil && c.Role == enums.RoleOwner && c.LocationID != nil && *c.LocationID == locationID
}
