package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
	"github.com/hims91/audio-nature-nexus-backend/pkg/metrics"
)

// sourceWebhook labels orders created from a webhook delivery, as
// opposed to the client poll racing it.
const sourceWebhook = "webhook"

// Reconciler turns a paid checkout session into an order and retires
// sessions whose async payment definitively failed.
type Reconciler interface {
	Reconcile(ctx context.Context, stripeSessionID, source string) (*checkout.ReconcileResult, error)
	FailSession(ctx context.Context, stripeSessionID string) error
}

type ServiceParams struct {
	Reconciler Reconciler
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
}

// Service routes verified Stripe events into reconciliation.
type Service struct {
	reconciler Reconciler
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler required")
	}
	return &Service{
		reconciler: params.Reconciler,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent reacts to checkout session lifecycle events. Paid and
// expired sessions funnel into Reconcile, which decides from Stripe's
// payment status what (if anything) to write. A failed async payment is
// only knowable from its event type (a session fetch shows the same
// unpaid status as a payment still processing), so that one marks the
// session failed directly. Unhandled types ack silently so Stripe stops
// retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionExpired:
		sessionID, err := sessionIDFromEvent(event)
		if err != nil {
			return err
		}
		return s.reconcileSession(ctx, event, sessionID)
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		sessionID, err := sessionIDFromEvent(event)
		if err != nil {
			return err
		}
		return s.failSession(ctx, event, sessionID)
	default:
		s.metrics.IncWebhookEvent(string(event.Type), "ignored")
		return nil
	}
}

func sessionIDFromEvent(event *stripe.Event) (string, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	if session.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}
	return session.ID, nil
}

func (s *Service) reconcileSession(ctx context.Context, event *stripe.Event, sessionID string) error {
	result, err := s.reconciler.Reconcile(ctx, sessionID, sourceWebhook)
	if err != nil {
		// A session this service never opened. Nothing to reconcile,
		// and retries will not change that.
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("stripe event %s references unknown session %s", event.ID, sessionID))
			}
			s.metrics.IncWebhookEvent(string(event.Type), "unknown_session")
			return nil
		}
		s.metrics.IncWebhookEvent(string(event.Type), "error")
		return err
	}

	s.metrics.IncWebhookEvent(string(event.Type), string(result.Outcome))
	if s.logg != nil {
		fields := map[string]any{
			"event_id":   event.ID,
			"session_id": sessionID,
			"outcome":    string(result.Outcome),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "stripe checkout event reconciled")
	}
	return nil
}

func (s *Service) failSession(ctx context.Context, event *stripe.Event, sessionID string) error {
	if err := s.reconciler.FailSession(ctx, sessionID); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("stripe event %s references unknown session %s", event.ID, sessionID))
			}
			s.metrics.IncWebhookEvent(string(event.Type), "unknown_session")
			return nil
		}
		s.metrics.IncWebhookEvent(string(event.Type), "error")
		return err
	}

	s.metrics.IncWebhookEvent(string(event.Type), string(checkout.OutcomePaymentFailed))
	if s.logg != nil {
		fields := map[string]any{
			"event_id":   event.ID,
			"session_id": sessionID,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "checkout session marked failed")
	}
	return nil
}
