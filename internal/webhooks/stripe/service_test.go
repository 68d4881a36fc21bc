package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/metrics"
)

type stubReconciler struct {
	calls     []string
	sources   []string
	failCalls []string
	result    *checkout.ReconcileResult
	err       error
	failErr   error
}

func (s *stubReconciler) Reconcile(ctx context.Context, stripeSessionID, source string) (*checkout.ReconcileResult, error) {
	s.calls = append(s.calls, stripeSessionID)
	s.sources = append(s.sources, source)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &checkout.ReconcileResult{Outcome: checkout.OutcomeOrderCreated}, nil
}

func (s *stubReconciler) FailSession(ctx context.Context, stripeSessionID string) error {
	s.failCalls = append(s.failCalls, stripeSessionID)
	return s.failErr
}

func newWebhookService(t *testing.T, reconciler *stubReconciler) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Reconciler: reconciler,
		Metrics:    metrics.NewCheckoutMetrics(nil),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func sessionEvent(eventType stripe.EventType, sessionID string) *stripe.Event {
	raw, _ := json.Marshal(&stripe.CheckoutSession{ID: sessionID})
	return &stripe.Event{
		ID:   "evt_test_1",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestService_CompletedSessionTriggersReconcile(t *testing.T) {
	reconciler := &stubReconciler{}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionCompleted, "cs_test_123")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.calls) != 1 || reconciler.calls[0] != "cs_test_123" {
		t.Fatalf("reconcile calls = %v", reconciler.calls)
	}
	if reconciler.sources[0] != "webhook" {
		t.Fatalf("source = %s, want webhook", reconciler.sources[0])
	}
}

func TestService_AsyncPaymentEventsTriggerReconcile(t *testing.T) {
	for _, eventType := range []stripe.EventType{
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionExpired,
	} {
		reconciler := &stubReconciler{}
		svc := newWebhookService(t, reconciler)

		if err := svc.HandleEvent(context.Background(), sessionEvent(eventType, "cs_async")); err != nil {
			t.Fatalf("%s: handle event: %v", eventType, err)
		}
		if len(reconciler.calls) != 1 {
			t.Fatalf("%s: reconcile calls = %v", eventType, reconciler.calls)
		}
	}
}

func TestService_AsyncPaymentFailedMarksSessionFailed(t *testing.T) {
	reconciler := &stubReconciler{}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionAsyncPaymentFailed, "cs_async")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.failCalls) != 1 || reconciler.failCalls[0] != "cs_async" {
		t.Fatalf("fail calls = %v, want one for cs_async", reconciler.failCalls)
	}
	// The failure signal only exists in the event type; a session fetch
	// cannot distinguish it from a payment still processing, so this
	// event must never route into Reconcile.
	if len(reconciler.calls) != 0 {
		t.Fatalf("async failure should not reconcile, got %v", reconciler.calls)
	}
}

func TestService_AsyncPaymentFailedUnknownSessionAcked(t *testing.T) {
	reconciler := &stubReconciler{failErr: pkgerrors.New(pkgerrors.CodeNotFound, "unknown checkout session")}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionAsyncPaymentFailed, "cs_foreign")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown session should ack, got %v", err)
	}
}

func TestService_AsyncPaymentFailedErrorPropagates(t *testing.T) {
	reconciler := &stubReconciler{failErr: pkgerrors.New(pkgerrors.CodeDependency, "database down")}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionAsyncPaymentFailed, "cs_async")
	if err := svc.HandleEvent(context.Background(), event); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestService_UnrelatedEventIgnored(t *testing.T) {
	reconciler := &stubReconciler{}
	svc := newWebhookService(t, reconciler)

	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.calls) != 0 {
		t.Fatalf("unrelated event should not reconcile, got %v", reconciler.calls)
	}
}

func TestService_UnknownSessionAcked(t *testing.T) {
	reconciler := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeNotFound, "unknown checkout session")}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionCompleted, "cs_foreign")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown session should ack, got %v", err)
	}
}

func TestService_ReconcileErrorPropagates(t *testing.T) {
	reconciler := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeDependency, "database down")}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionCompleted, "cs_test_123")
	if err := svc.HandleEvent(context.Background(), event); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestService_MissingSessionIDRejected(t *testing.T) {
	reconciler := &stubReconciler{}
	svc := newWebhookService(t, reconciler)

	event := sessionEvent(stripe.EventTypeCheckoutSessionCompleted, "")
	if err := svc.HandleEvent(context.Background(), event); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
