package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Catalog holds the ids created by SeedCatalog.
type Catalog struct {
	SupermarketID   int64
	LocationID      int64
	OtherLocationID int64
	CategoryID      int64
	ProductID       int64
	PriceID         int64
	OtherPriceID    int64
}

// SeedCatalog creates one Hungarian product ("Milk") priced 100.00 at a
// central Budapest location and 120.00 at a Debrecen location of the same
// chain.
func SeedCatalog(t *testing.T, client *db.Client) Catalog {
	t.Helper()
	now := time.Now().UTC()

	sm := models.Supermarket{Name: "Lidl"}
	mustCreate(t, client, &sm)
	central := models.Location{SupermarketID: sm.ID, Name: "Deak", Latitude: 47.4979, Longitude: 19.0402, Country: "Hungary", CurrencyCode: "HUF"}
	mustCreate(t, client, &central)
	debrecen := models.Location{SupermarketID: sm.ID, Name: "Debrecen", Latitude: 47.5316, Longitude: 21.6273, Country: "Hungary", CurrencyCode: "HUF"}
	mustCreate(t, client, &debrecen)
	cat := models.Category{Name: "Dairy"}
	mustCreate(t, client, &cat)
	product := models.Product{Name: "Milk", CategoryID: cat.ID, Country: "Hungary", ImagePath: "/uploads/images/milk.png"}
	mustCreate(t, client, &product)
	price := models.Price{ProductID: product.ID, LocationID: central.ID, Price: decimal.NewFromInt(100), LastUpdated: now}
	mustCreate(t, client, &price)
	other := models.Price{ProductID: product.ID, LocationID: debrecen.ID, Price: decimal.NewFromInt(120), LastUpdated: now}
	mustCreate(t, client, &other)

	return Catalog{
		SupermarketID:   sm.ID,
		LocationID:      central.ID,
		OtherLocationID: debrecen.ID,
		CategoryID:      cat.ID,
		ProductID:       product.ID,
		PriceID:         price.ID,
		OtherPriceID:    other.ID,
	}
}

// SeedCustomer inserts a customer named name in Hungary.
func SeedCustomer(t *testing.T, client *db.Client, name string) int64 {
	t.Helper()
	row := models.Customer{
		Username:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		Country:      "Hungary",
		CurrencyCode: "HUF",
	}
	mustCreate(t, client, &row)
	return row.ID
}

// SeedOwner inserts an owner of locationID.
func SeedOwner(t *testing.T, client *db.Client, name string, locationID int64) int64 {
	t.Helper()
	row := models.Owner{
		Username:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		LocationID:   locationID,
	}
	mustCreate(t, client, &row)
	return row.ID
}

func mustCreate(t *testing.T, client *db.Client, row any) {
	t.Helper()
	if err := client.DB().Create(row).Error; err != nil {
		t.Fatalf("seed %T: %v", row, err)
	}
}
