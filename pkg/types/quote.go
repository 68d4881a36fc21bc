package types

import (
	"github.com/google/uuid"

	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
)

// TaxLine is one jurisdiction's share of the quoted tax. Estimated
// marks the fallback line used when the destination state is unknown.
type TaxLine struct {
	Jurisdiction string `json:"jurisdiction"`
	// Rate is expressed in basis points (725 = 7.25%).
	RateBasisPoints int  `json:"rate_basis_points"`
	AmountCents     int  `json:"amount_cents"`
	Estimated       bool `json:"estimated,omitempty"`
}

// Quote is a non-binding pricing breakdown, recomputed on demand and
// never persisted standalone. Snapshotted onto the checkout session so
// reconciliation sees the amounts the processor was handed.
type Quote struct {
	SubtotalCents  int                  `json:"subtotal_cents"`
	ShippingCents  int                  `json:"shipping_cents"`
	TaxLines       []TaxLine            `json:"tax_lines"`
	TaxCents       int                  `json:"tax_cents"`
	DiscountCents  int                  `json:"discount_cents"`
	DiscountCode   string               `json:"discount_code,omitempty"`
	DiscountReason enums.DiscountReason `json:"discount_reason,omitempty"`
	TotalCents     int                  `json:"total_cents"`
	Currency       enums.Currency       `json:"currency"`
}

// QuoteItem is a re-priced cart line carried alongside the quote.
type QuoteItem struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	ProductName    string     `json:"product_name"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
	TotalCents     int        `json:"total_cents"`
	WeightGrams    int        `json:"weight_grams,omitempty"`
}
