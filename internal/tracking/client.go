// Package tracking integrates courier shipment tracking.
package tracking

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Status is the carrier-reported shipment state.
type Status string

const (
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusUnknown   Status = "UNKNOWN"
)

// ErrNotTracked indicates the carrier has no record for the AWB.
var ErrNotTracked = errors.New("tracking: awb not tracked")

// Info is one tracking snapshot for a shipment.
type Info struct {
	AWB              string
	Status           Status
	ExpectedDelivery *time.Time
}

// Client queries a courier for shipment status.
type Client interface {
	Track(ctx context.Context, awb string) (Info, error)
}

// StubClient is an in-memory carrier used until a real courier API is wired.
// Shipments default to in-transit; MarkDelivered flips them.
type StubClient struct {
	mu        sync.RWMutex
	delivered map[string]bool
}

// NewStubClient constructs the stub carrier.
func NewStubClient() *StubClient {
	return &StubClient{delivered: map[string]bool{}}
}

// MarkDelivered records a shipment as delivered.
func (c *StubClient) MarkDelivered(awb string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered[awb] = true
}

// Track returns the current shipment status.
func (c *StubClient) Track(_ context.Context, awb string) (Info, error) {
	if awb == "" {
		return Info{}, ErrNotTracked
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := StatusInTransit
	if c.delivered[awb] {
		status = StatusDelivered
	}
	return Info{AWB: awb, Status: status}, nil
}
