package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/internal/cart"
	"github.com/hims91/audio-nature-nexus-backend/internal/catalog"
	"github.com/hims91/audio-nature-nexus-backend/internal/inventory"
	"github.com/hims91/audio-nature-nexus-backend/internal/pricing"
	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/metrics"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pagination"
	"github.com/hims91/audio-nature-nexus-backend/pkg/types"

	ordersvc "github.com/hims91/audio-nature-nexus-backend/internal/orders"
)

type stubCarts struct {
	record *models.CartRecord
}

func (s *stubCarts) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCarts) FindByToken(ctx context.Context, token string) (*models.CartRecord, error) {
	if s.record == nil || s.record.Token != token {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.record
	return &copied, nil
}

func (s *stubCarts) Create(ctx context.Context, record *models.CartRecord) error { return nil }

func (s *stubCarts) UpsertItem(ctx context.Context, cartID uuid.UUID, item models.CartItem) error {
	return nil
}

func (s *stubCarts) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubCarts) Clear(ctx context.Context, cartID uuid.UUID) error { return nil }

type stubCatalog struct {
	products map[uuid.UUID]models.Product
}

func (s *stubCatalog) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubCatalog) ListActive(ctx context.Context) ([]models.Product, error) { return nil, nil }

func (s *stubCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	found := make(map[uuid.UUID]models.Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			found[id] = product
		}
	}
	return found, nil
}

type stubSessions struct {
	record   *models.CheckoutSession
	created  *models.CheckoutSession
	statuses map[uuid.UUID]enums.CheckoutSessionStatus
}

func (s *stubSessions) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSessions) Create(ctx context.Context, session *models.CheckoutSession) error {
	s.created = session
	return nil
}

func (s *stubSessions) FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error) {
	if s.record == nil || s.record.StripeSessionID != stripeSessionID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.record
	return &copied, nil
}

func (s *stubSessions) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CheckoutSessionStatus) error {
	if s.statuses == nil {
		s.statuses = map[uuid.UUID]enums.CheckoutSessionStatus{}
	}
	s.statuses[id] = status
	return nil
}

type stubOrders struct {
	existing    *models.Order
	created     *models.Order
	createErr   error
	racedWinner *models.Order
}

func (s *stubOrders) WithTx(tx *gorm.DB) ordersvc.Repository { return s }

func (s *stubOrders) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		s.existing = s.racedWinner
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	return order, nil
}

func (s *stubOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrders) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	if s.existing == nil || s.existing.StripeSessionID != sessionID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.existing
	return &copied, nil
}

func (s *stubOrders) List(ctx context.Context, filter ordersvc.ListFilter) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrders) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrders) NextOrderNumber(ctx context.Context) (string, error) {
	return "ANN-001000", nil
}

type stubDiscounts struct {
	input         *pricing.DiscountInput
	redeemApplied bool
	redeemCalls   int
}

func (s *stubDiscounts) Validate(ctx context.Context, code string, subtotalCents int) (*pricing.DiscountInput, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	return s.input, nil
}

func (s *stubDiscounts) Redeem(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	s.redeemCalls++
	return s.redeemApplied, nil
}

type stubStripe struct {
	createParams *stripe.CheckoutSessionParams
	createResp   *stripe.CheckoutSession
	createErr    error
	getResp      *stripe.CheckoutSession
	getErr       error
	getCalls     int
}

func (s *stubStripe) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.createParams = params
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResp, nil
}

func (s *stubStripe) GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResp, nil
}

type stubCheckoutTx struct{}

func (stubCheckoutTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubCheckoutOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubCheckoutOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubCheckoutOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubStock struct {
	commits [][]inventory.CommitRequest
	results []inventory.CommitResult
}

func (s *stubStock) Commit(ctx context.Context, tx *gorm.DB, requests []inventory.CommitRequest) ([]inventory.CommitResult, error) {
	s.commits = append(s.commits, requests)
	if s.results != nil {
		return s.results, nil
	}
	results := make([]inventory.CommitResult, 0, len(requests))
	for _, req := range requests {
		results = append(results, inventory.CommitResult{
			ProductID: req.ProductID,
			VariantID: req.VariantID,
			Committed: true,
		})
	}
	return results, nil
}

type testEnv struct {
	carts     *stubCarts
	catalog   *stubCatalog
	sessions  *stubSessions
	orders    *stubOrders
	discounts *stubDiscounts
	stripe    *stubStripe
	outbox    *stubCheckoutOutbox
	stock     *stubStock
	svc       Service
}

const (
	testCartToken = "cart-abc123"
	testSessionID = "cs_test_123"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	productID := uuid.New()
	env := &testEnv{
		carts: &stubCarts{record: &models.CartRecord{
			ID:    uuid.New(),
			Token: testCartToken,
			Items: []models.CartItem{{
				ID:             uuid.New(),
				ProductID:      productID,
				Quantity:       2,
				UnitPriceCents: 100, // stale add-time price, must be ignored
			}},
		}},
		catalog: &stubCatalog{products: map[uuid.UUID]models.Product{
			productID: {
				ID:          productID,
				Name:        "Forest Rain Soundscape",
				PriceCents:  2500,
				IsActive:    true,
				WeightGrams: 500,
			},
		}},
		sessions:  &stubSessions{},
		orders:    &stubOrders{},
		discounts: &stubDiscounts{redeemApplied: true},
		stripe:    &stubStripe{},
		outbox:    &stubCheckoutOutbox{},
		stock:     &stubStock{},
	}

	calc := pricing.NewCalculator(
		config.ShippingConfig{FlatRateCents: 599, RemoteSurchargeCents: 900, FreeShippingThresholdCents: 7500},
		config.TaxConfig{DefaultRateBasisPoints: 600},
	)
	svc, err := NewService(ServiceDeps{
		Carts:      env.carts,
		Catalog:    env.catalog,
		Sessions:   env.sessions,
		Orders:     env.orders,
		Discounts:  env.discounts,
		Calculator: calc,
		Stripe:     env.stripe,
		Tx:         stubCheckoutTx{},
		Outbox:     env.outbox,
		Stock:      env.stock,
		Metrics:    metrics.NewCheckoutMetrics(nil),
		Checkout: config.CheckoutConfig{
			SuccessURL: "https://shop.example.com/success",
			CancelURL:  "https://shop.example.com/cancel",
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	env.svc = svc
	return env
}

func testShippingAddress() *types.Address {
	return &types.Address{
		Name:       "Jordan Pine",
		Line1:      "1 Forest Way",
		City:       "Portland",
		State:      "OR",
		PostalCode: "97201",
		Country:    "US",
	}
}

// localSession builds the snapshot a Begin call would have persisted.
func localSession(quote types.Quote, items []types.QuoteItem) *models.CheckoutSession {
	return &models.CheckoutSession{
		ID:              uuid.New(),
		StripeSessionID: testSessionID,
		CartToken:       testCartToken,
		Email:           "buyer@example.com",
		Status:          enums.CheckoutSessionStatusPending,
		Quote:           &quote,
		Items:           items,
		ShippingAddress: testShippingAddress(),
	}
}

func snapshotItems() []types.QuoteItem {
	return []types.QuoteItem{{
		ProductID:      uuid.New(),
		ProductName:    "Forest Rain Soundscape",
		UnitPriceCents: 2500,
		Quantity:       2,
		TotalCents:     5000,
		WeightGrams:    500,
	}}
}

func snapshotQuote() types.Quote {
	return types.Quote{
		SubtotalCents: 5000,
		ShippingCents: 599,
		TaxCents:      300,
		TotalCents:    5899,
		Currency:      enums.CurrencyUSD,
	}
}

func paidStripeSession() *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            testSessionID,
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	}
}

func TestQuoteRepricesAgainstCatalog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := env.svc.Quote(context.Background(), QuoteInput{
		CartToken:       testCartToken,
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if result.Quote.SubtotalCents != 5000 {
		t.Fatalf("subtotal = %d, want 5000 (catalog price, not cart price)", result.Quote.SubtotalCents)
	}
	if len(result.Items) != 1 || result.Items[0].UnitPriceCents != 2500 {
		t.Fatalf("items = %+v, want one line at the catalog price", result.Items)
	}
	if result.Items[0].WeightGrams != 500 {
		t.Fatalf("weight = %d, want 500", result.Items[0].WeightGrams)
	}
}

func TestQuoteInactiveProductRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for id, product := range env.catalog.products {
		product.IsActive = false
		env.catalog.products[id] = product
	}

	_, err := env.svc.Quote(context.Background(), QuoteInput{CartToken: testCartToken})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuoteUnknownCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.svc.Quote(context.Background(), QuoteInput{CartToken: "missing"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBeginSnapshotsQuoteAndSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.stripe.createResp = &stripe.CheckoutSession{
		ID:  testSessionID,
		URL: "https://checkout.stripe.com/pay/" + testSessionID,
	}

	result, err := env.svc.Begin(context.Background(), BeginInput{
		CartToken:       testCartToken,
		Email:           "buyer@example.com",
		ShippingAddress: testShippingAddress(),
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if result.StripeSessionID != testSessionID || result.CheckoutURL == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	if env.sessions.created == nil {
		t.Fatal("expected checkout session snapshot")
	}
	snapshot := env.sessions.created
	if snapshot.StripeSessionID != testSessionID || snapshot.Quote == nil || len(snapshot.Items) != 1 {
		t.Fatalf("incomplete snapshot %+v", snapshot)
	}

	params := env.stripe.createParams
	if params == nil || len(params.LineItems) != 1 {
		t.Fatalf("expected a single stripe line item, got %+v", params)
	}
	if got := *params.LineItems[0].PriceData.UnitAmount; got != int64(snapshot.Quote.TotalCents) {
		t.Fatalf("stripe amount = %d, want quote total %d", got, snapshot.Quote.TotalCents)
	}
}

func TestBeginStripeFailureLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.stripe.createErr = &stripe.Error{Msg: "connection reset"}

	_, err := env.svc.Begin(context.Background(), BeginInput{
		CartToken:       testCartToken,
		Email:           "buyer@example.com",
		ShippingAddress: testShippingAddress(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if env.sessions.created != nil {
		t.Fatal("no session snapshot should persist after a stripe failure")
	}
}

func TestBeginRequiresEmailAndAddress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.svc.Begin(context.Background(), BeginInput{CartToken: testCartToken})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReconcilePaidSessionCreatesOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.sessions.record = localSession(snapshotQuote(), snapshotItems())
	env.stripe.getResp = paidStripeSession()

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "webhook")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeOrderCreated {
		t.Fatalf("outcome = %s, want order_created", result.Outcome)
	}

	order := env.orders.created
	if order == nil {
		t.Fatal("expected order insert")
	}
	if order.PaymentStatus != enums.PaymentStatusPaid || order.Status != enums.OrderStatusPending {
		t.Fatalf("order axes = %s/%s, want pending/paid", order.Status, order.PaymentStatus)
	}
	if order.TotalCents != 5899 || order.OrderNumber != "ANN-001000" {
		t.Fatalf("order = %+v", order)
	}
	if !order.Items[0].StockCommitted {
		t.Fatal("expected stock committed on the line")
	}

	if got := env.sessions.statuses[env.sessions.record.ID]; got != enums.CheckoutSessionStatusConsumed {
		t.Fatalf("session status = %s, want consumed", got)
	}
	if len(env.outbox.events) != 1 || env.outbox.events[0].EventType != enums.EventOrderPaid {
		t.Fatalf("expected one order.paid event, got %+v", env.outbox.events)
	}
	if env.outbox.events[0].Source != "webhook" {
		t.Fatalf("event source = %s, want webhook", env.outbox.events[0].Source)
	}
}

func TestReconcileUnpaidSessionWritesNothing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.sessions.record = localSession(snapshotQuote(), snapshotItems())
	env.stripe.getResp = &stripe.CheckoutSession{
		ID:            testSessionID,
		Status:        stripe.CheckoutSessionStatusOpen,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	}

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "poll")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeNotPaid {
		t.Fatalf("outcome = %s, want not_paid", result.Outcome)
	}
	if env.orders.created != nil {
		t.Fatal("no order should exist for an unpaid session")
	}
	if len(env.stock.commits) != 0 {
		t.Fatal("no inventory should move for an unpaid session")
	}
	if len(env.outbox.events) != 0 {
		t.Fatal("no events should be emitted for an unpaid session")
	}
}

func TestReconcileExistingOrderShortCircuits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.orders.existing = &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ANN-001000",
		StripeSessionID: testSessionID,
	}

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "poll")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeAlreadyExists || result.Order == nil {
		t.Fatalf("result = %+v, want already_exists with order", result)
	}
	if env.stripe.getCalls != 0 {
		t.Fatal("existing order should be returned without calling stripe")
	}
}

func TestReconcileDuplicateInsertRace(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.sessions.record = localSession(snapshotQuote(), snapshotItems())
	env.stripe.getResp = paidStripeSession()
	env.orders.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "ux_orders_stripe_session_id"}
	env.orders.racedWinner = &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ANN-001000",
		StripeSessionID: testSessionID,
	}

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "webhook")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeAlreadyExists {
		t.Fatalf("outcome = %s, want already_exists", result.Outcome)
	}
	if result.Order == nil || result.Order.ID != env.orders.racedWinner.ID {
		t.Fatalf("expected the racing winner's order, got %+v", result.Order)
	}
}

func TestReconcileStockShortfallFlagsOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	items := snapshotItems()
	env.sessions.record = localSession(snapshotQuote(), items)
	env.stripe.getResp = paidStripeSession()
	env.stock.results = []inventory.CommitResult{{
		ProductID: items[0].ProductID,
		Committed: false,
		Reason:    inventory.ReasonInsufficientStock,
	}}

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "webhook")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeOrderCreated {
		t.Fatalf("outcome = %s, want order_created (paid orders are never rolled back)", result.Outcome)
	}

	order := env.orders.created
	if !order.RequiresAttention || order.AttentionNote == nil {
		t.Fatalf("expected attention flag, got %+v", order)
	}
	if !strings.Contains(*order.AttentionNote, inventory.ReasonInsufficientStock) {
		t.Fatalf("note = %q, want stock reason", *order.AttentionNote)
	}
	if order.Items[0].StockCommitted {
		t.Fatal("line should record the failed commit")
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", order.PaymentStatus)
	}

	if len(env.outbox.events) != 2 || env.outbox.events[1].EventType != enums.EventOrderFlagged {
		t.Fatalf("expected order.paid plus order.flagged, got %+v", env.outbox.events)
	}
}

func TestReconcileDiscountExhaustedAfterPayment(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	quote := snapshotQuote()
	quote.DiscountCode = "SAVE10"
	quote.DiscountCents = 500
	quote.TotalCents -= 500
	env.sessions.record = localSession(quote, snapshotItems())
	env.stripe.getResp = paidStripeSession()
	env.discounts.redeemApplied = false

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "webhook")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomeOrderCreated {
		t.Fatalf("outcome = %s, want order_created", result.Outcome)
	}

	order := env.orders.created
	if !order.RequiresAttention || order.AttentionNote == nil || !strings.Contains(*order.AttentionNote, "SAVE10") {
		t.Fatalf("expected attention note naming the code, got %+v", order)
	}
	// The customer paid the discounted total; it stands.
	if order.TotalCents != quote.TotalCents || order.DiscountCents != 500 {
		t.Fatalf("order totals = %d/%d, want quoted amounts", order.TotalCents, order.DiscountCents)
	}
	if env.discounts.redeemCalls != 1 {
		t.Fatalf("redeem calls = %d, want 1", env.discounts.redeemCalls)
	}
}

func TestReconcileExpiredSessionMarksFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.sessions.record = localSession(snapshotQuote(), snapshotItems())
	env.stripe.getResp = &stripe.CheckoutSession{
		ID:            testSessionID,
		Status:        stripe.CheckoutSessionStatusExpired,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	}

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "poll")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomePaymentFailed {
		t.Fatalf("outcome = %s, want payment_failed", result.Outcome)
	}
	if got := env.sessions.statuses[env.sessions.record.ID]; got != enums.CheckoutSessionStatusExpired {
		t.Fatalf("session status = %s, want expired", got)
	}
	if env.orders.created != nil {
		t.Fatal("no order should exist for an expired session")
	}
}

func TestReconcileUnknownSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.svc.Reconcile(context.Background(), "cs_missing", "poll")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReconcileFailedSessionShortCircuits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	session := localSession(snapshotQuote(), snapshotItems())
	session.Status = enums.CheckoutSessionStatusFailed
	env.sessions.record = session

	// Even if Stripe would report the session as paid, the failed mark
	// set by the async-payment-failed webhook wins: the poll must see a
	// terminal failure, not a resurrected order.
	env.stripe.getResp = paidStripeSession()

	result, err := env.svc.Reconcile(context.Background(), testSessionID, "poll")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Outcome != OutcomePaymentFailed {
		t.Fatalf("outcome = %s, want payment_failed", result.Outcome)
	}
	if env.stripe.getCalls != 0 {
		t.Fatal("dead session should not be fetched from stripe")
	}
	if env.orders.created != nil {
		t.Fatal("no order should exist for a failed session")
	}
}

func TestFailSessionMarksPendingSessionFailed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.sessions.record = localSession(snapshotQuote(), snapshotItems())

	if err := env.svc.FailSession(context.Background(), testSessionID); err != nil {
		t.Fatalf("fail session: %v", err)
	}
	if got := env.sessions.statuses[env.sessions.record.ID]; got != enums.CheckoutSessionStatusFailed {
		t.Fatalf("session status = %s, want failed", got)
	}
}

func TestFailSessionLeavesExistingOrderAlone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.sessions.record = localSession(snapshotQuote(), snapshotItems())
	env.orders.existing = &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ANN-001000",
		StripeSessionID: testSessionID,
	}

	if err := env.svc.FailSession(context.Background(), testSessionID); err != nil {
		t.Fatalf("fail session: %v", err)
	}
	if len(env.sessions.statuses) != 0 {
		t.Fatalf("session with an order must keep its status, got %+v", env.sessions.statuses)
	}
}

func TestFailSessionIgnoresNonPendingSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	session := localSession(snapshotQuote(), snapshotItems())
	session.Status = enums.CheckoutSessionStatusConsumed
	env.sessions.record = session

	if err := env.svc.FailSession(context.Background(), testSessionID); err != nil {
		t.Fatalf("fail session: %v", err)
	}
	if len(env.sessions.statuses) != 0 {
		t.Fatalf("consumed session must not be downgraded, got %+v", env.sessions.statuses)
	}
}

func TestFailSessionUnknownSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	err := env.svc.FailSession(context.Background(), "cs_missing")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
