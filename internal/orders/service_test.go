package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipiprint/lipiprint/internal/pricing"
	"github.com/lipiprint/lipiprint/internal/pricingrules"
	"github.com/lipiprint/lipiprint/internal/shared"
)

type mockRepo struct {
	byID   map[int64]*Order
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[int64]*Order{}, nextID: 1}
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockRepo) List(_ context.Context, _ ListOrdersRequest) ([]Order, int, error) {
	return nil, 0, nil
}

func (m *mockRepo) Create(_ context.Context, o Order) (int64, error) {
	o.ID = m.nextID
	m.nextID++
	o.CreatedAt = time.Now()
	stored := o
	m.byID[o.ID] = &stored
	return o.ID, nil
}

func (m *mockRepo) UpdateStatusFrom(_ context.Context, id int64, from, to OrderStatus) error {
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrInvalidTransition
	}
	o.Status = to
	return nil
}

func (m *mockRepo) UpdateShipment(_ context.Context, id int64, awb, courier string, expected *time.Time) error {
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.AWBNumber = &awb
	o.CourierName = &courier
	o.ExpectedDeliveryDate = expected
	return nil
}

func (m *mockRepo) SetInvoicePath(_ context.Context, id int64, path string) error {
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.InvoicePath = &path
	return nil
}

func (m *mockRepo) ListByStatus(_ context.Context, status OrderStatus) ([]int64, error) {
	var ids []int64
	for id, o := range m.byID {
		if o.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type mockCatalog struct{}

func (mockCatalog) Meta(_ context.Context, id int64) (FileMeta, error) {
	return FileMeta{Name: "doc.pdf", Pages: 10}, nil
}

type mockQuoter struct {
	lastReq pricingrules.QuoteRequest
}

func (m *mockQuoter) Quote(_ context.Context, req pricingrules.QuoteRequest) (*pricingrules.Quote, error) {
	m.lastReq = req
	amounts := pricing.OrderAmounts{Subtotal: 100, Discount: 0, CGST: 9, SGST: 9, Delivery: req.DeliveryFee}
	return &pricingrules.Quote{
		Lines: []pricingrules.QuoteLine{{
			Description: "doc.pdf", Quantity: 10, HSN: "4911", Rate: 10, Amount: 100, Total: 100,
		}},
		Amounts:    amounts,
		GrandTotal: pricing.CalculateRoundedTotal(amounts),
	}, nil
}

type mockEnqueuer struct {
	enqueued []int64
}

func (m *mockEnqueuer) EnqueueInvoiceGenerate(_ context.Context, orderID int64) error {
	m.enqueued = append(m.enqueued, orderID)
	return nil
}

type mockGuard struct {
	seen map[string]bool
}

func (m *mockGuard) CheckAndInsert(_ context.Context, key, _ string) error {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	m.seen[key] = true
	return nil
}

func (m *mockGuard) Delete(_ context.Context, key string) error {
	delete(m.seen, key)
	return nil
}

func newTestService(repo Store, quoter Quoter, enqueuer InvoiceEnqueuer, guard IdempotencyGuard) *Service {
	return NewService(repo, mockCatalog{}, quoter, nil, guard, enqueuer, nil, nil, ServiceConfig{DeliveryFee: 30})
}

func createRequest() CreateOrderRequest {
	return CreateOrderRequest{
		DeliveryType:    DeliveryTypeDelivery,
		DeliveryAddress: "12 MG Road, Saharanpur",
		IsIntraState:    true,
		PrintJobs:       []CreatePrintJobRequest{{FileID: 1, Copies: 1, Options: `{"color":"BW"}`}},
	}
}

func TestCreateOrderPricesAndPersists(t *testing.T) {
	repo := newMockRepo()
	quoter := &mockQuoter{}
	svc := newTestService(repo, quoter, nil, nil)

	order, err := svc.Create(context.Background(), 7, createRequest())
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 9.0, order.CGST)
	assert.Equal(t, 9.0, order.SGST)
	assert.Equal(t, 30.0, order.DeliveryFee)
	// raw unrounded total vs rounded grand total
	assert.Equal(t, 148.0, order.TotalAmount)
	assert.Equal(t, 148.0, order.GrandTotal)
	assert.Len(t, order.Breakdown, 1)
	assert.Len(t, order.PrintJobs, 1)

	// delivery fee only passed through for home delivery
	assert.Equal(t, 30.0, quoter.lastReq.DeliveryFee)
	assert.True(t, quoter.lastReq.IntraState)
}

func TestCreatePickupSkipsDeliveryFee(t *testing.T) {
	quoter := &mockQuoter{}
	svc := newTestService(newMockRepo(), quoter, nil, nil)

	req := createRequest()
	req.DeliveryType = DeliveryTypePickup
	req.DeliveryAddress = ""

	_, err := svc.Create(context.Background(), 7, req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, quoter.lastReq.DeliveryFee)
}

func TestCreateDuplicateIdempotencyKey(t *testing.T) {
	guard := &mockGuard{}
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, guard)
	ctx := context.Background()

	req := createRequest()
	req.IdempotencyKey = "abc-123"

	_, err := svc.Create(ctx, 7, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 7, req)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	repo := newMockRepo()
	enqueuer := &mockEnqueuer{}
	svc := newTestService(repo, &mockQuoter{}, enqueuer, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, 7, createRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusPrinted, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusProcessing, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, OrderStatusPrinted, 1)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPrinted, updated.Status)
	assert.Equal(t, []int64{order.ID}, enqueuer.enqueued)
}

// staleRepo serves an outdated status from Get, emulating a concurrent
// writer that advanced the order between the read and the update.
type staleRepo struct {
	*mockRepo
	staleStatus OrderStatus
}

func (r *staleRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, err := r.mockRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = r.staleStatus
	return o, nil
}

func TestUpdateStatusRefusesStaleRead(t *testing.T) {
	repo := newMockRepo()
	setup := newTestService(repo, &mockQuoter{}, nil, nil)
	ctx := context.Background()

	order, err := setup.Create(ctx, 7, createRequest())
	require.NoError(t, err)
	repo.byID[order.ID].Status = OrderStatusPrinted

	svc := newTestService(&staleRepo{mockRepo: repo, staleStatus: OrderStatusProcessing}, &mockQuoter{}, nil, nil)

	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusPrinted, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusPrinted, repo.byID[order.ID].Status)
}

func TestAssignShipmentRequiresDelivery(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockQuoter{}, nil, nil)
	ctx := context.Background()

	req := createRequest()
	req.DeliveryType = DeliveryTypePickup
	req.DeliveryAddress = ""
	order, err := svc.Create(ctx, 7, req)
	require.NoError(t, err)

	_, err = svc.AssignShipment(ctx, order.ID, AssignShipmentRequest{AWBNumber: "AWB1", CourierName: "DTDC"}, 1)
	assert.ErrorIs(t, err, ErrNotShippable)
}

func TestAssignShipmentMovesOutForDelivery(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockQuoter{}, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, 7, createRequest())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusProcessing, 1)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, OrderStatusPrinted, 1)
	require.NoError(t, err)

	shipped, err := svc.AssignShipment(ctx, order.ID, AssignShipmentRequest{AWBNumber: "AWB1", CourierName: "DTDC"}, 1)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOutForDelivery, shipped.Status)
	require.NotNil(t, shipped.AWBNumber)
	assert.Equal(t, "AWB1", *shipped.AWBNumber)
}

func TestCancelFinalOrderRefused(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockQuoter{}, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, 7, createRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, order.ID, "changed my mind", 7)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, order.ID, "again", 7)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatusTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusProcessing))
	assert.True(t, CanTransition(OrderStatusPrinted, OrderStatusDelivered))
	assert.True(t, CanTransition(OrderStatusPrinted, OrderStatusOutForDelivery))
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusPrinted))
	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusCancelled))
	assert.False(t, CanTransition(OrderStatusCancelled, OrderStatusPending))
	assert.True(t, CanTransition(OrderStatusOutForDelivery, OrderStatusCancelled))
}
