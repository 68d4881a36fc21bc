package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order   *models.Order
	updates map[string]any
	listed  []models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	if s.order == nil || s.order.StripeSessionID != sessionID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, params ListFilter) ([]models.Order, *pagination.Cursor, error) {
	return s.listed, nil, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubOrdersRepo) NextOrderNumber(ctx context.Context) (string, error) {
	return "ANN-001000", nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubRestocker struct {
	calls int
}

func (s *stubRestocker) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	s.calls++
	return nil
}

func newTestService(t *testing.T, repo *stubOrdersRepo) (Service, *stubOutbox, *stubRestocker) {
	t.Helper()
	ob := &stubOutbox{}
	restocker := &stubRestocker{}
	svc, err := NewService(repo, stubTxRunner{}, ob, restocker)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, ob, restocker
}

func testOrder(status enums.OrderStatus, payment enums.PaymentStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ANN-001042",
		Status:        status,
		PaymentStatus: payment,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Quantity: 2, StockCommitted: true},
			{ProductID: uuid.New(), Quantity: 1, StockCommitted: false},
		},
	}
}

func TestUpdateStatusForwardMove(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusPending, enums.PaymentStatusPaid)}
	svc, ob, _ := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusProcessing,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("status = %s, want processing", updated.Status)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderStatusMoved {
		t.Fatalf("expected one status_moved event, got %+v", ob.events)
	}
}

func TestUpdateStatusBackwardMoveRejected(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusDelivered, enums.PaymentStatusPaid)}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusProcessing,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusFromTerminalRejected(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusCancelled, enums.PaymentStatusPaid)}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusShipped,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusProcessing, enums.PaymentStatusPaid)}
	svc, ob, _ := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusProcessing,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated == nil || repo.updates != nil || len(ob.events) != 0 {
		t.Fatalf("expected noop, got updates=%v events=%v", repo.updates, ob.events)
	}
}

func TestUpdateStatusShippedStampsTimestamp(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusProcessing, enums.PaymentStatusPaid)}
	svc, _, _ := newTestService(t, repo)

	if _, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusShipped,
	}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, ok := repo.updates["shipped_at"]; !ok {
		t.Fatalf("expected shipped_at stamp, got %v", repo.updates)
	}
}

func TestUpdateStatusCancelRestocksCommittedItems(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusProcessing, enums.PaymentStatusPaid)}
	svc, ob, restocker := newTestService(t, repo)

	if _, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusCancelled,
	}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if restocker.calls != 1 {
		t.Fatalf("restock calls = %d, want 1 (only committed items)", restocker.calls)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderCancelled {
		t.Fatalf("expected cancelled event, got %+v", ob.events)
	}
}

func TestUpdateStatusCancelAfterShipmentDoesNotRestock(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusShipped, enums.PaymentStatusPaid)}
	svc, _, restocker := newTestService(t, repo)

	if _, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusCancelled,
	}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if restocker.calls != 0 {
		t.Fatalf("restock calls = %d, want 0 after shipment", restocker.calls)
	}
}

func TestUpdateStatusRefundMovesPaymentAxis(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{order: testOrder(enums.OrderStatusProcessing, enums.PaymentStatusPaid)}
	svc, _, _ := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusRefunded,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusRefunded {
		t.Fatalf("payment status = %s, want refunded", updated.PaymentStatus)
	}
	if _, ok := repo.updates["refunded_at"]; !ok {
		t.Fatalf("expected refunded_at stamp, got %v", repo.updates)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		OrderID: uuid.New(),
		Status:  enums.OrderStatusProcessing,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListInvalidStatusFilter(t *testing.T) {
	t.Parallel()

	repo := &stubOrdersRepo{}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.List(context.Background(), ListParams{Status: "bogus"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
