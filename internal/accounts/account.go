// Package accounts resolves customers and owners behind a single lookup.
package accounts

import (
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
)

// Account is implemented by Customer and Owner.
type Account interface {
	AccountID() int64
	Role() enums.Role
	DisplayName() string
	EmailAddress() string
	PasswordHash() string
	// Country and CurrencyCode come from the owner's location for owners.
	Country() string
	CurrencyCode() string
}

type Customer struct {
	ID       int64
	Username string
	Email    string
	Hash     string
	Nation   string
	Currency string
}

func (c *Customer) AccountID() int64     { return c.ID }
func (c *Customer) Role() enums.Role     { return enums.RoleCustomer }
func (c *Customer) DisplayName() string  { return c.Username }
func (c *Customer) EmailAddress() string { return c.Email }
func (c *Customer) PasswordHash() string { return c.Hash }
func (c *Customer) Country() string      { return c.Nation }
func (c *Customer) CurrencyCode() string { return c.Currency }

type Owner struct {
	ID           int64
	Username     string
	Email        string
	Hash         string
	LocationID   int64
	LocationName string
	Nation       string
	Currency     string
}

func (o *Owner) AccountID() int64     { return o.ID }
func (o *Owner) Role() enums.Role     { return enums.RoleOwner }
func (o *Owner) DisplayName() string  { return o.Username }
func (o *Owner) EmailAddress() string { return o.Email }
func (o *Owner) PasswordHash() string { return o.Hash }
func (o *Owner) Country() string      { return o.Nation }
func (o *Owner) CurrencyCode() string { return o.Currency }
