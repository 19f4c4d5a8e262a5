package models

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&Category{},
		&Supermarket{},
		&Location{},
		&Customer{},
		&Owner{},
		&Product{},
		&Price{},
		&Deal{},
		&Favorite{},
		&Alert{},
		&PriceSubmission{},
		&Review{},
	}
}
