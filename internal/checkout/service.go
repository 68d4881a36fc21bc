package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/internal/cart"
	"github.com/hims91/audio-nature-nexus-backend/internal/catalog"
	"github.com/hims91/audio-nature-nexus-backend/internal/discounts"
	"github.com/hims91/audio-nature-nexus-backend/internal/inventory"
	"github.com/hims91/audio-nature-nexus-backend/internal/orders"
	"github.com/hims91/audio-nature-nexus-backend/internal/pricing"
	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	dbpkg "github.com/hims91/audio-nature-nexus-backend/pkg/db"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/metrics"
	"github.com/hims91/audio-nature-nexus-backend/pkg/outbox"
	"github.com/hims91/audio-nature-nexus-backend/pkg/types"
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OutboxPublisher records domain events alongside the transaction that
// produced them.
type OutboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockCommitter decrements inventory inside the order transaction.
type StockCommitter interface {
	Commit(ctx context.Context, tx *gorm.DB, requests []inventory.CommitRequest) ([]inventory.CommitResult, error)
}

// ReconcileOutcome names what a reconciliation attempt observed.
type ReconcileOutcome string

const (
	OutcomeOrderCreated  ReconcileOutcome = "order_created"
	OutcomeAlreadyExists ReconcileOutcome = "already_exists"
	OutcomeNotPaid       ReconcileOutcome = "not_paid"
	OutcomePaymentFailed ReconcileOutcome = "payment_failed"
)

// ReconcileResult reports the outcome of one reconciliation attempt.
// Order is set for the two outcomes where one exists.
type ReconcileResult struct {
	Outcome ReconcileOutcome
	Order   *models.Order
}

// QuoteInput re-prices a cart without side effects.
type QuoteInput struct {
	CartToken       string
	DiscountCode    string
	ShippingAddress *types.Address
}

// QuoteResult is the priced breakdown plus the re-priced lines it was
// computed from.
type QuoteResult struct {
	Quote types.Quote       `json:"quote"`
	Items []types.QuoteItem `json:"items"`
}

// BeginInput starts a Stripe Checkout handoff for a cart.
type BeginInput struct {
	CartToken       string
	Email           string
	DiscountCode    string
	ShippingAddress *types.Address
}

// BeginResult carries the redirect target and the quote the processor
// was handed.
type BeginResult struct {
	StripeSessionID string      `json:"stripe_session_id"`
	CheckoutURL     string      `json:"checkout_url"`
	Quote           types.Quote `json:"quote"`
}

// OrderPaidEvent announces a newly created paid order.
type OrderPaidEvent struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Email       string         `json:"email"`
	TotalCents  int            `json:"total_cents"`
	Currency    enums.Currency `json:"currency"`
}

// OrderFlaggedEvent marks an order that needs manual follow-up.
type OrderFlaggedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Note        string    `json:"note"`
}

// Service owns the quote, Stripe handoff and reconciliation paths.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	Begin(ctx context.Context, input BeginInput) (*BeginResult, error)
	Reconcile(ctx context.Context, stripeSessionID, source string) (*ReconcileResult, error)
	FailSession(ctx context.Context, stripeSessionID string) error
}

// ServiceDeps collects the checkout service dependencies.
type ServiceDeps struct {
	Carts      cart.Repository
	Catalog    catalog.Repository
	Sessions   Repository
	Orders     orders.Repository
	Discounts  discounts.Service
	Calculator *pricing.Calculator
	Stripe     StripeCheckoutClient
	Tx         TxRunner
	Outbox     OutboxPublisher
	Stock      StockCommitter
	Metrics    *metrics.CheckoutMetrics
	Checkout   config.CheckoutConfig
}

type service struct {
	deps ServiceDeps
}

// NewService validates and wires the checkout dependencies.
func NewService(deps ServiceDeps) (Service, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("checkout session repository required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Discounts == nil {
		return nil, fmt.Errorf("discounts service required")
	}
	if deps.Calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if deps.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if deps.Stock == nil {
		return nil, fmt.Errorf("stock committer required")
	}
	return &service{deps: deps}, nil
}

// Quote re-prices the cart against the live catalog. Read-only: no
// stock moves, no discount usage burned.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	start := time.Now()
	defer func() {
		s.deps.Metrics.ObserveQuoteDuration("quote", time.Since(start))
	}()
	return s.priceCart(ctx, input.CartToken, input.DiscountCode, input.ShippingAddress)
}

// Begin quotes the cart, opens a Stripe Checkout Session for the total
// and snapshots everything reconciliation will need. A Stripe failure
// leaves nothing behind.
func (s *service) Begin(ctx context.Context, input BeginInput) (*BeginResult, error) {
	start := time.Now()
	defer func() {
		s.deps.Metrics.ObserveQuoteDuration("begin", time.Since(start))
	}()

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if input.ShippingAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	priced, err := s.priceCart(ctx, input.CartToken, input.DiscountCode, input.ShippingAddress)
	if err != nil {
		return nil, err
	}

	// The computed total goes to Stripe as a single line so the charge
	// matches the quote to the cent, shipping, tax and discount included.
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.deps.Checkout.SuccessURL),
		CancelURL:     stripe.String(s.deps.Checkout.CancelURL),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(string(priced.Quote.Currency))),
				UnitAmount: stripe.Int64(int64(priced.Quote.TotalCents)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Audio Nature Nexus order"),
				},
			},
		}},
	}
	params.AddMetadata("cart_token", input.CartToken)

	stripeSession, err := s.deps.Stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	quote := priced.Quote
	record := &models.CheckoutSession{
		StripeSessionID: stripeSession.ID,
		CartToken:       input.CartToken,
		Email:           email,
		Status:          enums.CheckoutSessionStatusPending,
		Quote:           &quote,
		Items:           priced.Items,
		ShippingAddress: input.ShippingAddress,
	}
	if err := s.deps.Sessions.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}

	return &BeginResult{
		StripeSessionID: stripeSession.ID,
		CheckoutURL:     stripeSession.URL,
		Quote:           priced.Quote,
	}, nil
}

// errOrderExists aborts the creation transaction when another trigger
// inserted the order first. The rollback discards this attempt's order
// number and stock decrement; the winner's stand.
var errOrderExists = errors.New("order already created for session")

// Reconcile turns a paid Stripe session into exactly one order. Both
// triggers (webhook and client poll) funnel here; the unique index on
// stripe_session_id makes the race safe. An unpaid session writes
// nothing.
func (s *service) Reconcile(ctx context.Context, stripeSessionID, source string) (*ReconcileResult, error) {
	if strings.TrimSpace(stripeSessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe session id required")
	}

	result, err := s.reconcile(ctx, stripeSessionID, source)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.IncReconciliation(string(result.Outcome))
	if result.Outcome == OutcomeOrderCreated {
		s.deps.Metrics.IncOrderCreated(source)
	}
	return result, nil
}

func (s *service) reconcile(ctx context.Context, stripeSessionID, source string) (*ReconcileResult, error) {
	if existing, err := s.deps.Orders.FindByStripeSessionID(ctx, stripeSessionID); err == nil {
		return &ReconcileResult{Outcome: OutcomeAlreadyExists, Order: existing}, nil
	} else if !dbpkg.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order by session")
	}

	local, err := s.deps.Sessions.FindByStripeSessionID(ctx, stripeSessionID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown checkout session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	// A session already marked dead locally (expired, or failed via the
	// async-payment-failed webhook) stays dead; no need to ask Stripe.
	switch local.Status {
	case enums.CheckoutSessionStatusExpired, enums.CheckoutSessionStatusFailed:
		return &ReconcileResult{Outcome: OutcomePaymentFailed}, nil
	}

	remote, err := s.deps.Stripe.GetSession(ctx, stripeSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe checkout session")
	}

	switch {
	case remote.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		remote.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		// fall through to creation
	case remote.Status == stripe.CheckoutSessionStatusExpired:
		if err := s.deps.Sessions.UpdateStatus(ctx, local.ID, enums.CheckoutSessionStatusExpired); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire checkout session")
		}
		return &ReconcileResult{Outcome: OutcomePaymentFailed}, nil
	default:
		return &ReconcileResult{Outcome: OutcomeNotPaid}, nil
	}

	order, err := s.createOrder(ctx, local, stripeSessionID, source)
	if err != nil {
		if errors.Is(err, errOrderExists) {
			existing, loadErr := s.deps.Orders.FindByStripeSessionID(ctx, stripeSessionID)
			if loadErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "load racing order")
			}
			return &ReconcileResult{Outcome: OutcomeAlreadyExists, Order: existing}, nil
		}
		return nil, err
	}
	return &ReconcileResult{Outcome: OutcomeOrderCreated, Order: order}, nil
}

// FailSession marks the local handoff record failed. Stripe signals a
// definitively failed async payment only through the
// checkout.session.async_payment_failed event; a later session fetch
// cannot tell it apart from a payment still processing, so the webhook
// drives this transition. If an order already exists the payment did
// go through and the session is left alone.
func (s *service) FailSession(ctx context.Context, stripeSessionID string) error {
	if strings.TrimSpace(stripeSessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe session id required")
	}

	if _, err := s.deps.Orders.FindByStripeSessionID(ctx, stripeSessionID); err == nil {
		return nil
	} else if !dbpkg.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order by session")
	}

	local, err := s.deps.Sessions.FindByStripeSessionID(ctx, stripeSessionID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "unknown checkout session")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if local.Status != enums.CheckoutSessionStatusPending {
		return nil
	}

	if err := s.deps.Sessions.UpdateStatus(ctx, local.ID, enums.CheckoutSessionStatusFailed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail checkout session")
	}
	s.deps.Metrics.IncReconciliation(string(OutcomePaymentFailed))
	return nil
}

// createOrder runs the whole creation in one transaction: order number,
// discount redemption, stock commit, the insert itself, session
// consumption and the outbox events. Discount and stock shortfalls
// never abort a paid order; they flag it for follow-up instead.
func (s *service) createOrder(ctx context.Context, local *models.CheckoutSession, stripeSessionID, source string) (*models.Order, error) {
	var created *models.Order
	err := s.deps.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.deps.Orders.WithTx(tx)

		orderNumber, err := ordersRepo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint order number")
		}

		quote := local.Quote
		var notes []string
		requiresAttention := false

		if quote.DiscountCode != "" && quote.DiscountCents > 0 {
			applied, err := s.deps.Discounts.Redeem(ctx, tx, quote.DiscountCode)
			if err != nil {
				return err
			}
			if !applied {
				// The customer already paid the discounted total; honor it
				// and let an operator sort out the oversold code.
				requiresAttention = true
				notes = append(notes, fmt.Sprintf("discount code %s exhausted after payment", quote.DiscountCode))
			}
		}

		requests := make([]inventory.CommitRequest, 0, len(local.Items))
		for _, item := range local.Items {
			requests = append(requests, inventory.CommitRequest{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Qty:       item.Quantity,
			})
		}
		results, err := s.deps.Stock.Commit(ctx, tx, requests)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(local.Items))
		for i, item := range local.Items {
			orderItem := models.OrderItem{
				ProductID:       item.ProductID,
				VariantID:       item.VariantID,
				ProductName:     item.ProductName,
				UnitPriceCents:  item.UnitPriceCents,
				Quantity:        item.Quantity,
				TotalPriceCents: item.TotalCents,
			}
			if i < len(results) {
				res := results[i]
				orderItem.StockCommitted = res.Committed
				switch {
				case res.Backordered:
					note := "backordered"
					orderItem.StockNote = &note
				case !res.Committed:
					note := res.Reason
					orderItem.StockNote = &note
					requiresAttention = true
					notes = append(notes, fmt.Sprintf("%s for %s", res.Reason, item.ProductName))
				}
			}
			items = append(items, orderItem)
		}

		order := &models.Order{
			OrderNumber:       orderNumber,
			Email:             local.Email,
			Status:            enums.OrderStatusPending,
			PaymentStatus:     enums.PaymentStatusPaid,
			Currency:          quote.Currency,
			SubtotalCents:     quote.SubtotalCents,
			ShippingCents:     quote.ShippingCents,
			TaxCents:          quote.TaxCents,
			DiscountCents:     quote.DiscountCents,
			TotalCents:        quote.TotalCents,
			TaxLines:          quote.TaxLines,
			ShippingAddress:   local.ShippingAddress,
			StripeSessionID:   stripeSessionID,
			RequiresAttention: requiresAttention,
			Items:             items,
		}
		if quote.DiscountCode != "" {
			code := quote.DiscountCode
			order.DiscountCode = &code
		}
		if len(notes) > 0 {
			note := strings.Join(notes, "; ")
			order.AttentionNote = &note
		}

		created, err = ordersRepo.Create(ctx, order)
		if err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_orders_stripe_session_id") {
				return errOrderExists
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}

		if err := s.deps.Sessions.WithTx(tx).UpdateStatus(ctx, local.ID, enums.CheckoutSessionStatusConsumed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume checkout session")
		}

		paidEvent := outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Version:       1,
			Source:        source,
			Data: OrderPaidEvent{
				OrderID:     created.ID,
				OrderNumber: created.OrderNumber,
				Email:       created.Email,
				TotalCents:  created.TotalCents,
				Currency:    created.Currency,
			},
		}
		if err := s.deps.Outbox.EmitIfNotExists(ctx, tx, paidEvent); err != nil {
			return err
		}

		if requiresAttention {
			flaggedEvent := outbox.DomainEvent{
				EventType:     enums.EventOrderFlagged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   created.ID,
				Version:       1,
				Source:        source,
				Data: OrderFlaggedEvent{
					OrderID:     created.ID,
					OrderNumber: created.OrderNumber,
					Note:        strings.Join(notes, "; "),
				},
			}
			if err := s.deps.Outbox.Emit(ctx, tx, flaggedEvent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// priceCart loads and re-prices the cart lines against the live
// catalog. Stale cart prices are ignored; an inactive product fails the
// quote outright.
func (s *service) priceCart(ctx context.Context, token, discountCode string, addr *types.Address) (*QuoteResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token required")
	}

	record, err := s.deps.Carts.FindByToken(ctx, token)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(record.Items))
	seen := map[uuid.UUID]bool{}
	for _, item := range record.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	products, err := s.deps.Catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	items := make([]types.QuoteItem, 0, len(record.Items))
	subtotal := 0
	for _, line := range record.Items {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line quantity must be positive")
		}
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is no longer available", line.ProductID))
		}

		name := product.Name
		price := product.PriceCents
		if line.VariantID != nil {
			variant, ok := findVariant(product, *line.VariantID)
			if !ok || !variant.IsActive {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("variant %s is no longer available", *line.VariantID))
			}
			name = fmt.Sprintf("%s (%s)", product.Name, variant.Name)
			if variant.PriceCents != nil {
				price = *variant.PriceCents
			}
		}

		item := types.QuoteItem{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			ProductName:    name,
			UnitPriceCents: price,
			Quantity:       line.Quantity,
			TotalCents:     price * line.Quantity,
			WeightGrams:    product.WeightGrams,
		}
		subtotal += item.TotalCents
		items = append(items, item)
	}

	discount, err := s.deps.Discounts.Validate(ctx, discountCode, subtotal)
	if err != nil {
		return nil, err
	}

	quote := s.deps.Calculator.Quote(items, addr, discount)
	return &QuoteResult{Quote: quote, Items: items}, nil
}

func findVariant(product models.Product, id uuid.UUID) (models.ProductVariant, bool) {
	for _, variant := range product.Variants {
		if variant.ID == id {
			return variant, true
		}
	}
	return models.ProductVariant{}, false
}

type stockCommitterImpl struct{}

// NewStockCommitter exposes the default inventory commit implementation.
func NewStockCommitter() StockCommitter {
	return stockCommitterImpl{}
}

func (stockCommitterImpl) Commit(ctx context.Context, tx *gorm.DB, requests []inventory.CommitRequest) ([]inventory.CommitResult, error) {
	return inventory.Commit(ctx, tx, requests)
}
