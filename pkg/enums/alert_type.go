package enums

import "fmt"

// AlertType classifies persisted user alerts.
type AlertType string

const (
	AlertTypePriceChange    AlertType = "price_change"
	AlertTypeDealExpiration AlertType = "deal_expiration"
)

var validAlertTypes = []AlertType{
	AlertTypePriceChange,
	AlertTypeDealExpiration,
}

// IsValid checks whether the given type matches the canonical enum.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts raw strings into AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}
