package pricingrules

import "time"

// DiscountRule grants a discount once an order reaches a page-count threshold.
// Percent applies to the subtotal; Amount is a flat reduction on top.
type DiscountRule struct {
	ID          int64     `json:"id"`
	MinQuantity int       `json:"min_quantity"`
	Percent     float64   `json:"percent"`
	Amount      float64   `json:"amount"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceCombination prices one printable configuration per page.
type ServiceCombination struct {
	ID          int64     `json:"id"`
	Color       string    `json:"color"`
	Paper       string    `json:"paper"`
	Quality     string    `json:"quality"`
	Side        string    `json:"side"`
	RatePerPage float64   `json:"rate_per_page"`
	GSTPercent  float64   `json:"gst_percent"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BindingOption prices an optional binding applied per print job.
type BindingOption struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Rate      float64   `json:"rate"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleSet is the full pricing configuration snapshot used for quoting.
type RuleSet struct {
	Discounts    []DiscountRule       `json:"discounts"`
	Combinations []ServiceCombination `json:"combinations"`
	Bindings     []BindingOption      `json:"bindings"`
}
