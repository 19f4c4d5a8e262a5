package deals

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp accepts RFC 3339 as well as the plain date and datetime forms
// sent by HTML date inputs. Values without a zone are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string")
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}

type CreateDealRequest struct {
	ProductID  int64           `json:"productId" validate:"required,gt=0"`
	LocationID int64           `json:"locationId" validate:"required,gt=0"`
	Percentage decimal.Decimal `json:"PercentageDiscount"`
	StartDate  Timestamp       `json:"dealStartDate"`
	EndDate    Timestamp       `json:"dealEndDate"`
}

type UpdateDealRequest struct {
	LocationID int64           `json:"locationId" validate:"required,gt=0"`
	Percentage decimal.Decimal `json:"PercentageDiscount"`
	EndDate    Timestamp       `json:"dealEndDate"`
}

// DealView is the deal as clients see it, with the computed deal price.
type DealView struct {
	DealID           int64           `json:"deal_id"`
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ImagePath        string          `json:"image_path"`
	LocationID       int64           `json:"location_id"`
	LocationName     string          `json:"location_name"`
	SupermarketName  string          `json:"supermarket_name"`
	SupermarketImage *string         `json:"supermarket_image"`
	Price            decimal.Decimal `json:"price"`
	Percentage       decimal.Decimal `json:"deal_percentage"`
	StartDate        time.Time       `json:"deal_start_date"`
	EndDate          time.Time       `json:"deal_end_date"`
	DealPrice        decimal.Decimal `json:"deal_price"`
}

// Removed is pushed as dealRemoved.
type Removed struct {
	ProductID  int64 `json:"productId"`
	LocationID int64 `json:"locationId"`
}

func viewFromRow(row dealRow) DealView {
	return DealView{
		DealID:           row.DealID,
		ProductID:        row.ProductID,
		ProductName:      row.ProductName,
		ImagePath:        row.ImagePath,
		LocationID:       row.LocationID,
		LocationName:     row.LocationName,
		SupermarketName:  row.SupermarketName,
		SupermarketImage: row.SupermarketImage,
		Price:            row.Price,
		Percentage:       row.Percentage,
		StartDate:        row.StartAt,
		EndDate:          row.EndAt,
		DealPrice:        DealPrice(row.Price, row.Percentage),
	}
}
