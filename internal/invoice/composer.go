// Package invoice composes printable invoice documents for orders.
package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/pricing"
	"github.com/lipiprint/lipiprint/web"
)

// ErrNilOrder indicates a compose call without order data. Assembling an
// invoice for a missing order is a programming error, not a render fallback.
var ErrNilOrder = errors.New("invoice: order data required")

// maxFilenameLength bounds file names shown on invoice lines.
const maxFilenameLength = 32

// CompanyInfo is the seller block printed on every invoice.
type CompanyInfo struct {
	Name    string
	Address string
	GSTIN   string
	Phone   string
	Email   string
}

// Composer renders invoice HTML from order data.
type Composer struct {
	tmpl    *template.Template
	company CompanyInfo
	printer *message.Printer
	now     func() time.Time
}

// NewComposer parses the embedded invoice template.
func NewComposer(company CompanyInfo) (*Composer, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	if company.Name == "" {
		company.Name = "LipiPrint"
	}
	return &Composer{
		tmpl:    tmpl,
		company: company,
		printer: message.NewPrinter(language.MustParse("en-IN")),
		now:     time.Now,
	}, nil
}

// Number returns the invoice number for an order.
func Number(orderID int64) string {
	return fmt.Sprintf("LP%d", orderID)
}

type lineView struct {
	Index       int
	Description string
	Options     string
	Quantity    string
	Rate        string
	Amount      string
	Discount    string
	Total       string
}

type taxRow struct {
	Label string
	Value string
}

type shippingView struct {
	AWB      string
	Courier  string
	Expected string
}

type customerView struct {
	Name    string
	Email   string
	Phone   string
	Address string
	GSTIN   string
}

type invoiceView struct {
	Number          string
	Date            string
	Status          string
	Company         CompanyInfo
	Customer        customerView
	OrderID         int64
	OrderDate       string
	DeliveryLabel   string
	DeliveryAddress string
	Lines           []lineView
	Subtotal        string
	Discount        string
	TaxRows         []taxRow
	DeliveryFee     string
	GrandTotal      string
	Shipping        *shippingView
	GeneratedAt     string
}

// Compose renders the invoice HTML for an order. A nil order fails fast;
// missing sub-fields fall back to sensible defaults instead of aborting the
// render.
func (c *Composer) Compose(o *orders.Order) (string, error) {
	if o == nil {
		return "", ErrNilOrder
	}

	view := invoiceView{
		Number:          Number(o.ID),
		Status:          string(o.Status),
		Company:         c.company,
		OrderID:         o.ID,
		DeliveryLabel:   o.DeliveryType.Label(),
		DeliveryAddress: o.DeliveryAddress,
		GeneratedAt:     c.now().Format(time.RFC1123),
	}

	invoiceDate := o.CreatedAt
	if invoiceDate.IsZero() {
		invoiceDate = c.now()
	}
	view.Date = invoiceDate.Format("02 Jan 2006")
	view.OrderDate = invoiceDate.Format("02 Jan 2006")

	view.Customer = customerView{
		Name:    o.Customer.Name,
		Email:   o.Customer.Email,
		Phone:   o.Customer.Phone,
		Address: o.Customer.Address,
		GSTIN:   o.Customer.GSTIN,
	}
	if view.Customer.Name == "" {
		view.Customer.Name = "Customer"
	}

	view.Lines = buildLines(o)
	view.Subtotal = pricing.FormatPriceWithDecimals(o.Subtotal)
	if o.Discount > 0 {
		view.Discount = pricing.FormatPriceWithDecimals(o.Discount)
	}
	view.TaxRows = buildTaxRows(o)
	if o.DeliveryFee > 0 {
		view.DeliveryFee = pricing.FormatPriceWithDecimals(o.DeliveryFee)
	}
	view.GrandTotal = c.groupedRupees(grandTotal(o))

	if o.DeliveryType == orders.DeliveryTypeDelivery {
		awb := deref(o.AWBNumber)
		courier := deref(o.CourierName)
		if awb != "" || courier != "" {
			shipping := &shippingView{AWB: awb, Courier: courier}
			if o.ExpectedDeliveryDate != nil {
				shipping.Expected = o.ExpectedDeliveryDate.Format("02 Jan 2006")
			}
			view.Shipping = shipping
		}
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

// grandTotal resolves the payable figure: the stored grand total when present,
// else the raw order total, else zero, always re-rounded at the 50-paise
// boundary.
func grandTotal(o *orders.Order) int64 {
	amount := o.GrandTotal
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = o.TotalAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return pricing.RoundIndianPrice(amount)
}

// buildLines prefers the server-priced breakdown; orders without one fall back
// to one display row per print job.
func buildLines(o *orders.Order) []lineView {
	if len(o.Breakdown) > 0 {
		lines := make([]lineView, 0, len(o.Breakdown))
		for i, item := range o.Breakdown {
			lines = append(lines, lineView{
				Index:       i + 1,
				Description: truncateFilename(item.Description, maxFilenameLength),
				Options:     item.PrintOptions,
				Quantity:    fmt.Sprintf("%g", item.Quantity),
				Rate:        pricing.FormatPriceWithDecimals(item.Rate),
				Amount:      pricing.FormatPriceWithDecimals(item.Amount),
				Discount:    pricing.FormatPriceWithDecimals(item.Discount),
				Total:       pricing.FormatPriceWithDecimals(item.Total),
			})
		}
		return lines
	}

	lines := make([]lineView, 0, len(o.PrintJobs))
	for i, job := range o.PrintJobs {
		lines = append(lines, lineView{
			Index:       i + 1,
			Description: truncateFilename(job.FileName, maxFilenameLength),
			Options:     orders.ParsePrintOptions(job.Options).Summary(),
			Quantity:    fmt.Sprintf("%d", job.Pages*max(job.Copies, 1)),
			Rate:        "-",
			Amount:      "-",
			Discount:    "-",
			Total:       "-",
		})
	}
	return lines
}

func buildTaxRows(o *orders.Order) []taxRow {
	if o.IsIntraState {
		return []taxRow{
			{Label: "CGST", Value: pricing.FormatPriceWithDecimals(o.CGST)},
			{Label: "SGST", Value: pricing.FormatPriceWithDecimals(o.SGST)},
		}
	}
	igst := o.IGST
	if igst == 0 && o.GST != 0 {
		igst = o.GST
	}
	return []taxRow{{Label: "IGST", Value: pricing.FormatPriceWithDecimals(igst)}}
}

// groupedRupees renders a whole-rupee amount with Indian digit grouping,
// e.g. ₹1,23,456.
func (c *Composer) groupedRupees(v int64) string {
	return "₹" + c.printer.Sprint(number.Decimal(v))
}

// truncateFilename shortens long file names to "prefix...ext", keeping the
// extension visible.
func truncateFilename(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	ext := filepath.Ext(name)
	keep := maxLen - len([]rune(ext)) - 3
	if keep < 1 {
		return string(runes[:maxLen])
	}
	base := strings.TrimSuffix(name, ext)
	baseRunes := []rune(base)
	if keep > len(baseRunes) {
		keep = len(baseRunes)
	}
	return string(baseRunes[:keep]) + "..." + ext
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
