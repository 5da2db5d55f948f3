// Package jobs contains background task definitions and the Asynq worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoiceGenerate renders and stores the invoice PDF for an order.
	TaskInvoiceGenerate = "invoice:generate"
	// TaskTrackingSync polls the courier for shipments out for delivery.
	TaskTrackingSync = "tracking:sync"
)

// InvoiceGeneratePayload identifies the order to invoice.
type InvoiceGeneratePayload struct {
	OrderID int64 `json:"order_id"`
}

// NewInvoiceGenerateTask constructs an Asynq task.
func NewInvoiceGenerateTask(payload InvoiceGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceGenerate, data), nil
}

// TrackingSyncPayload tunes a tracking sweep.
type TrackingSyncPayload struct {
	// Concurrency bounds parallel carrier lookups. Zero means the default.
	Concurrency int `json:"concurrency,omitempty"`
}

// NewTrackingSyncTask constructs an Asynq task.
func NewTrackingSyncTask(payload TrackingSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrackingSync, data), nil
}
