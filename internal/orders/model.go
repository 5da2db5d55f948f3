package orders

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusPrinted        OrderStatus = "PRINTED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "DELIVERY"
	DeliveryTypePickup   DeliveryType = "PICKUP"
)

// Label returns the display name shown on invoices and order summaries.
func (d DeliveryType) Label() string {
	if d == DeliveryTypeDelivery {
		return "Home Delivery"
	}
	return "Store Pickup"
}

type PrintJobStatus string

const (
	PrintJobStatusQueued    PrintJobStatus = "QUEUED"
	PrintJobStatusPrinting  PrintJobStatus = "PRINTING"
	PrintJobStatusCompleted PrintJobStatus = "COMPLETED"
)

type Order struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"user_id"`
	Customer             OrderCustomer   `json:"customer"`
	Status               OrderStatus     `json:"status"`
	DeliveryType         DeliveryType    `json:"delivery_type"`
	DeliveryAddress      string          `json:"delivery_address,omitempty"`
	IsIntraState         bool            `json:"is_intra_state"`
	Subtotal             float64         `json:"subtotal"`
	Discount             float64         `json:"discount"`
	GST                  float64         `json:"gst"`
	CGST                 float64         `json:"cgst"`
	SGST                 float64         `json:"sgst"`
	IGST                 float64         `json:"igst"`
	DeliveryFee          float64         `json:"delivery"`
	TotalAmount          float64         `json:"total_amount"`
	GrandTotal           float64         `json:"grand_total"`
	AWBNumber            *string         `json:"awb_number,omitempty"`
	CourierName          *string         `json:"courier_name,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	InvoicePath          *string         `json:"invoice_path,omitempty"`
	PrintJobs            []PrintJob      `json:"print_jobs,omitempty"`
	Breakdown            []BreakdownItem `json:"breakdown,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OrderCustomer is the customer snapshot attached to an order, used for
// display and invoicing. Lifecycle of the user record itself lives elsewhere.
type OrderCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

type PrintJob struct {
	ID        int64          `json:"id"`
	OrderID   int64          `json:"order_id"`
	FileID    int64          `json:"file_id"`
	FileName  string         `json:"file_name"`
	Pages     int            `json:"pages"`
	Copies    int            `json:"copies"`
	Options   string         `json:"options"`
	Status    PrintJobStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// BreakdownItem is one priced invoice line for an order.
type BreakdownItem struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	HSN          string  `json:"hsn,omitempty"`
	Rate         float64 `json:"rate"`
	Amount       float64 `json:"amount"`
	Discount     float64 `json:"discount"`
	Total        float64 `json:"total"`
	PrintOptions string  `json:"print_options,omitempty"`
	LineOrder    int     `json:"line_order"`
}

// statusTransitions enumerates the legal order lifecycle moves. CANCELLED is
// reachable from every non-final state and handled separately.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusProcessing},
	OrderStatusProcessing:     {OrderStatusPrinted},
	OrderStatusPrinted:        {OrderStatusOutForDelivery, OrderStatusDelivered},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == OrderStatusCancelled {
		return !from.IsFinal()
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsFinal reports whether the status terminates the order lifecycle.
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
