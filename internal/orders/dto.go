package orders

import "time"

type CreatePrintJobRequest struct {
	FileID  int64  `json:"file_id" validate:"required,gt=0"`
	Copies  int    `json:"copies" validate:"gte=1,lte=500"`
	Options string `json:"options"`
}

type CreateOrderRequest struct {
	DeliveryType    DeliveryType            `json:"delivery_type" validate:"required,oneof=DELIVERY PICKUP"`
	DeliveryAddress string                  `json:"delivery_address" validate:"required_if=DeliveryType DELIVERY,max=500"`
	IsIntraState    bool                    `json:"is_intra_state"`
	PrintJobs       []CreatePrintJobRequest `json:"print_jobs" validate:"required,min=1,dive"`
	IdempotencyKey  string                  `json:"idempotency_key,omitempty" validate:"omitempty,max=80"`
}

type ListOrdersRequest struct {
	UserID   *int64       `json:"user_id,omitempty"`
	Status   *OrderStatus `json:"status,omitempty"`
	DateFrom *time.Time   `json:"date_from,omitempty"`
	DateTo   *time.Time   `json:"date_to,omitempty"`
	Limit    int          `json:"limit" validate:"gte=0,lte=200"`
	Offset   int          `json:"offset" validate:"gte=0"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=PENDING PROCESSING PRINTED OUT_FOR_DELIVERY DELIVERED CANCELLED"`
}

type AssignShipmentRequest struct {
	AWBNumber            string     `json:"awb_number" validate:"required,max=40"`
	CourierName          string     `json:"courier_name" validate:"required,max=80"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
