package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/internal/inventory"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Restocker returns committed stock when an unshipped order is cancelled.
type Restocker interface {
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error
}

// Service drives the post-creation order lifecycle.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateStatus(ctx context.Context, input StatusUpdateInput) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	restocker Restocker
}

// ListParams configures filtering and pagination for the admin listing.
type ListParams struct {
	Status            string
	PaymentStatus     string
	RequiresAttention *bool
	Limit             int
	Cursor            string
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// StatusUpdateInput captures an operator-driven status change.
type StatusUpdateInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Source  string
}

// StatusMovedEvent is emitted whenever the fulfillment status changes.
type StatusMovedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, restocker Restocker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if restocker == nil {
		return nil, fmt.Errorf("restocker required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		restocker: restocker,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	filter := ListFilter{
		Limit:             params.Limit,
		RequiresAttention: params.RequiresAttention,
	}
	if params.Status != "" {
		status, err := enums.ParseOrderStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	if params.PaymentStatus != "" {
		status, err := enums.ParsePaymentStatus(params.PaymentStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filter.PaymentStatus = &status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		filter.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// UpdateStatus moves the fulfillment status, stamping the matching
// timestamp and keeping the payment axis consistent. Cancelling an
// unshipped order returns its committed stock.
func (s *service) UpdateStatus(ctx context.Context, input StatusUpdateInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == input.Status {
			updated = order
			return nil
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": input.Status}
		switch input.Status {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
		case enums.OrderStatusRefunded:
			updates["refunded_at"] = now
			if order.PaymentStatus.CanTransitionTo(enums.PaymentStatusRefunded) {
				updates["payment_status"] = enums.PaymentStatusRefunded
			}
		}

		if input.Status == enums.OrderStatusCancelled && order.Status != enums.OrderStatusShipped {
			for _, item := range order.Items {
				if !item.StockCommitted {
					continue
				}
				if err := s.restocker.Restock(ctx, tx, item.ProductID, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		eventType := enums.EventOrderStatusMoved
		if input.Status == enums.OrderStatusCancelled {
			eventType = enums.EventOrderCancelled
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Source:        input.Source,
			Data: StatusMovedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				From:        order.Status,
				To:          input.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		order.Status = input.Status
		if payment, ok := updates["payment_status"].(enums.PaymentStatus); ok {
			order.PaymentStatus = payment
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type restockerImpl struct{}

// NewRestocker exposes the default inventory restock implementation.
func NewRestocker() Restocker {
	return restockerImpl{}
}

func (restockerImpl) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	return inventory.Restock(ctx, tx, productID, variantID, qty)
}
