package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/email"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
	"github.com/hims91/audio-nature-nexus-backend/pkg/metrics"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox/idempotency"
)

const orderNotificationConsumer = "order-notifications"

// Notification kinds surfaced to the operator feed.
const (
	KindOrderFlagged = "order_flagged"
)

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches published order events and fans them out: a paid
// order emails the customer and the operator, a flagged order lands in
// the operator feed with an alert email.
type Consumer struct {
	repo          repository
	subscription  *pubsub.Subscriber
	idempotency   *idempotency.Manager
	sender        email.Sender
	metrics       *metrics.CheckoutMetrics
	operatorEmail string
	logg          *logger.Logger
}

// ConsumerParams collects the consumer dependencies.
type ConsumerParams struct {
	Repo          repository
	Subscription  *pubsub.Subscriber
	Idempotency   *idempotency.Manager
	Sender        email.Sender
	Metrics       *metrics.CheckoutMetrics
	OperatorEmail string
	Logger        *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Subscription == nil {
		return nil, fmt.Errorf("order event subscription required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:          params.Repo,
		subscription:  params.Subscription,
		idempotency:   params.Idempotency,
		sender:        params.Sender,
		metrics:       params.Metrics,
		operatorEmail: params.OperatorEmail,
		logg:          params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	switch eventType {
	case string(enums.EventOrderPaid), string(enums.EventOrderFlagged):
	default:
		c.logg.Info(logCtx, "skipping unrelated event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType string, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case string(enums.EventOrderPaid):
		var payload orderPaidPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order.paid payload: %w", err)
		}
		return c.handleOrderPaid(ctx, payload, logCtx)
	case string(enums.EventOrderFlagged):
		var payload orderFlaggedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order.flagged payload: %w", err)
		}
		return c.handleOrderFlagged(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) handleOrderPaid(ctx context.Context, payload orderPaidPayload, logCtx context.Context) error {
	if payload.Email == "" {
		return fmt.Errorf("customer email missing")
	}

	var err error
	if sendErr := c.sender.Send(ctx, confirmationEmail(payload)); sendErr != nil {
		c.metrics.IncEmail("confirmation", "error")
		err = multierr.Append(err, sendErr)
	} else {
		c.metrics.IncEmail("confirmation", "sent")
	}

	if c.operatorEmail != "" {
		if sendErr := c.sender.Send(ctx, operatorPaidEmail(c.operatorEmail, payload)); sendErr != nil {
			c.metrics.IncEmail("operator_paid", "error")
			err = multierr.Append(err, sendErr)
		} else {
			c.metrics.IncEmail("operator_paid", "sent")
		}
	}
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "paid order emails sent")
	return nil
}

func (c *Consumer) handleOrderFlagged(ctx context.Context, payload orderFlaggedPayload, logCtx context.Context) error {
	orderID := payload.OrderID
	notification := &models.Notification{
		OrderID: &orderID,
		Kind:    KindOrderFlagged,
		Message: fmt.Sprintf("Order %s needs attention: %s", payload.OrderNumber, payload.Note),
	}
	err := c.repo.Create(ctx, notification)

	if c.operatorEmail != "" {
		if sendErr := c.sender.Send(ctx, operatorAlertEmail(c.operatorEmail, payload)); sendErr != nil {
			c.metrics.IncEmail("operator_alert", "error")
			err = multierr.Append(err, sendErr)
		} else {
			c.metrics.IncEmail("operator_alert", "sent")
		}
	}
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "operator alerted to flagged order")
	return nil
}

type orderPaidPayload struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Email       string         `json:"email"`
	TotalCents  int            `json:"total_cents"`
	Currency    enums.Currency `json:"currency"`
}

type orderFlaggedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Note        string    `json:"note"`
}
