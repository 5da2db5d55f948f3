// Package pricing implements rupee rounding and order total arithmetic.
//
// Line items keep paise precision; only the final payable amount is rounded
// to whole rupees, matching the totals printed on customer invoices.
package pricing

import (
	"fmt"
	"math"
)

// OrderAmounts carries the priced parts of an order. Tax is supplied either as
// a combined GST figure or split into CGST/SGST/IGST components.
type OrderAmounts struct {
	Subtotal   float64 `json:"subtotal"`
	Discount   float64 `json:"discount"`
	GST        float64 `json:"gst"`
	CGST       float64 `json:"cgst"`
	SGST       float64 `json:"sgst"`
	IGST       float64 `json:"igst"`
	Delivery   float64 `json:"delivery"`
	GrandTotal float64 `json:"grand_total"`
}

// RoundIndianPrice rounds a rupee amount to a whole number using the 50-paise
// boundary: fractions of 0.50 and above round up, everything else rounds down.
// Invalid input (NaN or infinity) yields 0 rather than an error. The rule is
// only exercised for non-negative amounts; prices are never negative here.
func RoundIndianPrice(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	frac := amount - math.Floor(amount)
	if frac >= 0.5 {
		return int64(math.Ceil(amount))
	}
	return int64(math.Floor(amount))
}

// FormatPrice renders a rounded rupee amount, optionally with two decimal
// places. Invalid input yields "₹0".
func FormatPrice(amount float64, showDecimals bool) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "₹0"
	}
	rounded := RoundIndianPrice(amount)
	if showDecimals {
		return fmt.Sprintf("₹%d.00", rounded)
	}
	return fmt.Sprintf("₹%d", rounded)
}

// FormatPriceWithDecimals renders the raw amount to two decimal places without
// rounding to whole rupees. Used for line items where paise must stay visible.
func FormatPriceWithDecimals(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "₹0.00"
	}
	return fmt.Sprintf("₹%.2f", amount)
}

// TotalGST resolves the tax figure: the combined GST value when present,
// otherwise the sum of the split components.
func (a OrderAmounts) TotalGST() float64 {
	if a.GST != 0 && !math.IsNaN(a.GST) {
		return a.GST
	}
	return a.CGST + a.SGST + a.IGST
}

// CalculateRoundedTotal computes the payable whole-rupee total from the order
// parts: subtotal − discount + tax + delivery, rounded at the 50-paise
// boundary. The GrandTotal field is intentionally ignored; the total is always
// recomputed from its parts.
func CalculateRoundedTotal(amounts OrderAmounts) int64 {
	final := amounts.Subtotal - amounts.Discount + amounts.TotalGST() + amounts.Delivery
	return RoundIndianPrice(final)
}
