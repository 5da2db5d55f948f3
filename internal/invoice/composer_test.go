package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipiprint/lipiprint/internal/orders"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(CompanyInfo{
		Name:    "LipiPrint",
		Address: "Saharanpur, Uttar Pradesh",
		GSTIN:   "09ABCDE1234F1Z5",
		Email:   "support@lipiprint.in",
	})
	require.NoError(t, err)
	return c
}

func sampleOrder() *orders.Order {
	awb := "AWB-991"
	courier := "DTDC"
	return &orders.Order{
		ID:              42,
		UserID:          7,
		Status:          orders.OrderStatusPrinted,
		DeliveryType:    orders.DeliveryTypeDelivery,
		DeliveryAddress: "12 MG Road, Saharanpur",
		IsIntraState:    true,
		Subtotal:        100,
		CGST:            9,
		SGST:            9,
		DeliveryFee:     30,
		TotalAmount:     148,
		GrandTotal:      148,
		AWBNumber:       &awb,
		CourierName:     &courier,
		Customer: orders.OrderCustomer{
			Name:  "Asha Verma",
			Phone: "9876543210",
		},
		Breakdown: []orders.BreakdownItem{{
			Description: "thesis.pdf",
			Quantity:    100,
			HSN:         "4911",
			Rate:        1,
			Amount:      100,
			Total:       100,
		}},
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestComposeNilOrderFailsFast(t *testing.T) {
	c := newTestComposer(t)

	_, err := c.Compose(nil)
	assert.ErrorIs(t, err, ErrNilOrder)
}

func TestComposeMinimalOrder(t *testing.T) {
	c := newTestComposer(t)

	html, err := c.Compose(&orders.Order{ID: 1})
	require.NoError(t, err)
	assert.Contains(t, html, "LP1")
	assert.Contains(t, html, "Customer")
	assert.Contains(t, html, "₹0")
}

func TestComposeFullOrder(t *testing.T) {
	c := newTestComposer(t)

	html, err := c.Compose(sampleOrder())
	require.NoError(t, err)

	assert.Contains(t, html, "LP42")
	assert.Contains(t, html, "Asha Verma")
	assert.Contains(t, html, "Home Delivery")
	assert.Contains(t, html, "thesis.pdf")
	assert.Contains(t, html, "CGST")
	assert.Contains(t, html, "SGST")
	assert.NotContains(t, html, "IGST")
	assert.Contains(t, html, "AWB-991")
	assert.Contains(t, html, "DTDC")
	assert.Contains(t, html, "₹148")
	// no discount row when discount is zero
	assert.NotContains(t, html, "Discount</td>")
}

func TestComposeInterStateUsesIGST(t *testing.T) {
	c := newTestComposer(t)

	o := sampleOrder()
	o.IsIntraState = false
	o.CGST, o.SGST = 0, 0
	o.IGST = 18

	html, err := c.Compose(o)
	require.NoError(t, err)
	assert.Contains(t, html, "IGST")
	assert.NotContains(t, html, "CGST")
}

func TestComposePickupHidesShipping(t *testing.T) {
	c := newTestComposer(t)

	o := sampleOrder()
	o.DeliveryType = orders.DeliveryTypePickup

	html, err := c.Compose(o)
	require.NoError(t, err)
	assert.Contains(t, html, "Store Pickup")
	assert.NotContains(t, html, "AWB-991")
}

func TestComposeDeliveryWithoutAWBHidesShipping(t *testing.T) {
	c := newTestComposer(t)

	o := sampleOrder()
	o.AWBNumber = nil
	o.CourierName = nil

	html, err := c.Compose(o)
	require.NoError(t, err)
	assert.NotContains(t, html, "Shipping")
}

func TestComposeGrandTotalFallsBackToTotalAmount(t *testing.T) {
	c := newTestComposer(t)

	o := sampleOrder()
	o.GrandTotal = 0
	o.TotalAmount = 147.5

	html, err := c.Compose(o)
	require.NoError(t, err)
	assert.Contains(t, html, "₹148")
}

func TestComposePrintJobFallbackLines(t *testing.T) {
	c := newTestComposer(t)

	o := sampleOrder()
	o.Breakdown = nil
	o.PrintJobs = []orders.PrintJob{{
		FileName: "notes.pdf",
		Pages:    10,
		Copies:   2,
		Options:  `{"color":"bw"}`,
	}}

	html, err := c.Compose(o)
	require.NoError(t, err)
	assert.Contains(t, html, "notes.pdf")
	assert.Contains(t, html, "20")
	assert.Contains(t, html, "color: bw")
}

func TestTruncateFilename(t *testing.T) {
	assert.Equal(t, "short.pdf", truncateFilename("short.pdf", 32))

	long := strings.Repeat("a", 60) + ".pdf"
	got := truncateFilename(long, 32)
	assert.LessOrEqual(t, len([]rune(got)), 32)
	assert.True(t, strings.HasSuffix(got, "...pdf") || strings.HasSuffix(got, ".pdf"))
	assert.Contains(t, got, "...")
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "LP1", Number(1))
	assert.Equal(t, "LP42", Number(42))
}
