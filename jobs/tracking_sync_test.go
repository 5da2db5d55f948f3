package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/tracking"
)

type mockOrderTracker struct {
	mu     sync.Mutex
	orders map[int64]*orders.Order
}

func newMockOrderTracker(list ...*orders.Order) *mockOrderTracker {
	m := &mockOrderTracker{orders: map[int64]*orders.Order{}}
	for _, o := range list {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderTracker) ListByStatus(_ context.Context, status orders.OrderStatus) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, o := range m.orders {
		if o.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockOrderTracker) Get(_ context.Context, id int64) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderTracker) UpdateStatus(_ context.Context, id int64, status orders.OrderStatus, _ int64) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	o.Status = status
	return o, nil
}

func shipment(id int64, awb string) *orders.Order {
	o := &orders.Order{
		ID:           id,
		Status:       orders.OrderStatusOutForDelivery,
		DeliveryType: orders.DeliveryTypeDelivery,
	}
	if awb != "" {
		o.AWBNumber = &awb
	}
	return o
}

func trackingTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewTrackingSyncTask(TrackingSyncPayload{})
	require.NoError(t, err)
	return task
}

func TestTrackingSyncMarksDelivered(t *testing.T) {
	tracker := newMockOrderTracker(
		shipment(1, "AWB-1"),
		shipment(2, "AWB-2"),
		shipment(3, "AWB-3"),
	)
	carrier := tracking.NewStubClient()
	carrier.MarkDelivered("AWB-1")
	carrier.MarkDelivered("AWB-3")

	job := NewTrackingSyncJob(tracker, carrier, nil, nil)
	require.NoError(t, job.Handle(context.Background(), trackingTask(t)))

	o1, _ := tracker.Get(context.Background(), 1)
	o2, _ := tracker.Get(context.Background(), 2)
	o3, _ := tracker.Get(context.Background(), 3)
	assert.Equal(t, orders.OrderStatusDelivered, o1.Status)
	assert.Equal(t, orders.OrderStatusOutForDelivery, o2.Status)
	assert.Equal(t, orders.OrderStatusDelivered, o3.Status)
}

func TestTrackingSyncSkipsMissingAWB(t *testing.T) {
	tracker := newMockOrderTracker(shipment(1, ""))
	job := NewTrackingSyncJob(tracker, tracking.NewStubClient(), nil, nil)

	require.NoError(t, job.Handle(context.Background(), trackingTask(t)))

	o, _ := tracker.Get(context.Background(), 1)
	assert.Equal(t, orders.OrderStatusOutForDelivery, o.Status)
}

func TestTrackingSyncNoShipments(t *testing.T) {
	job := NewTrackingSyncJob(newMockOrderTracker(), tracking.NewStubClient(), nil, nil)
	assert.NoError(t, job.Handle(context.Background(), trackingTask(t)))
}

type mockGenerator struct {
	calls []int64
}

func (m *mockGenerator) Generate(_ context.Context, orderID int64) (string, error) {
	m.calls = append(m.calls, orderID)
	return "/invoices/LP42.pdf", nil
}

func TestInvoiceGenerateJob(t *testing.T) {
	gen := &mockGenerator{}
	job := NewInvoiceGenerateJob(gen, nil, nil)

	task, err := NewInvoiceGenerateTask(InvoiceGeneratePayload{OrderID: 42})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []int64{42}, gen.calls)
}

func TestInvoiceGenerateJobBadPayload(t *testing.T) {
	job := NewInvoiceGenerateJob(&mockGenerator{}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskInvoiceGenerate, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
