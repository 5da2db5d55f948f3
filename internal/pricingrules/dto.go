package pricingrules

type UpsertDiscountRuleRequest struct {
	MinQuantity int     `json:"min_quantity" validate:"required,gt=0"`
	Percent     float64 `json:"percent" validate:"gte=0,lte=100"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Active      bool    `json:"active"`
}

type UpsertServiceCombinationRequest struct {
	Color       string  `json:"color" validate:"required,max=30"`
	Paper       string  `json:"paper" validate:"required,max=30"`
	Quality     string  `json:"quality" validate:"required,max=30"`
	Side        string  `json:"side" validate:"required,max=30"`
	RatePerPage float64 `json:"rate_per_page" validate:"required,gt=0"`
	GSTPercent  float64 `json:"gst_percent" validate:"gte=0,lte=100"`
	Active      bool    `json:"active"`
}

type UpsertBindingOptionRequest struct {
	Type   string  `json:"type" validate:"required,max=40"`
	Rate   float64 `json:"rate" validate:"gte=0"`
	Active bool    `json:"active"`
}

// JobSpec describes one print job for quoting.
type JobSpec struct {
	Description string `json:"description"`
	Color       string `json:"color" validate:"required"`
	Paper       string `json:"paper" validate:"required"`
	Quality     string `json:"quality" validate:"required"`
	Side        string `json:"side" validate:"required"`
	Binding     string `json:"binding"`
	Pages       int    `json:"pages" validate:"required,gt=0"`
	Copies      int    `json:"copies" validate:"gte=1"`
}

type QuoteRequest struct {
	Jobs        []JobSpec `json:"jobs" validate:"required,min=1,dive"`
	DeliveryFee float64   `json:"delivery_fee" validate:"gte=0"`
	IntraState  bool      `json:"intra_state"`
}
