package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	checkoutsvc "github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

type testCheckoutService struct {
	result  *checkoutsvc.ReconcileResult
	err     error
	session string
	source  string
}

func (s *testCheckoutService) Quote(ctx context.Context, input checkoutsvc.QuoteInput) (*checkoutsvc.QuoteResult, error) {
	return nil, nil
}

func (s *testCheckoutService) Begin(ctx context.Context, input checkoutsvc.BeginInput) (*checkoutsvc.BeginResult, error) {
	return nil, nil
}

func (s *testCheckoutService) FailSession(ctx context.Context, stripeSessionID string) error {
	return nil
}

func (s *testCheckoutService) Reconcile(ctx context.Context, stripeSessionID, source string) (*checkoutsvc.ReconcileResult, error) {
	s.session = stripeSessionID
	s.source = source
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func pollRequest(sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/sessions/"+sessionID+"/order", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("sessionId", sessionID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestOrderBySession_NotReadyIs404(t *testing.T) {
	svc := &testCheckoutService{result: &checkoutsvc.ReconcileResult{Outcome: checkoutsvc.OutcomeNotPaid}}
	handler := OrderBySession(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, pollRequest("cs_test_abc"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 while payment is pending, got %d", rec.Code)
	}
	if svc.source != "poll" {
		t.Fatalf("reconcile source = %q, want poll", svc.source)
	}
	if svc.session != "cs_test_abc" {
		t.Fatalf("session = %q", svc.session)
	}
}

func TestOrderBySession_ReadyReturnsOrder(t *testing.T) {
	order := &models.Order{ID: uuid.New(), OrderNumber: "ANN-001042"}
	svc := &testCheckoutService{result: &checkoutsvc.ReconcileResult{
		Outcome: checkoutsvc.OutcomeAlreadyExists,
		Order:   order,
	}}
	handler := OrderBySession(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, pollRequest("cs_test_abc"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			OrderNumber string
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "ANN-001042" {
		t.Fatalf("order number = %q", envelope.Data.OrderNumber)
	}
}

func TestOrderBySession_PaymentFailedIsConflict(t *testing.T) {
	svc := &testCheckoutService{result: &checkoutsvc.ReconcileResult{Outcome: checkoutsvc.OutcomePaymentFailed}}
	handler := OrderBySession(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, pollRequest("cs_test_abc"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for failed payment, got %d", rec.Code)
	}
}
