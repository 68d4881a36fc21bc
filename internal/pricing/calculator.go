package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	"github.com/hims91/audio-nature-nexus-backend/pkg/types"
)

// heavyParcelGrams is the weight at which the base shipping rate doubles.
const heavyParcelGrams = 10000

// remoteStates carry the configured shipping surcharge.
var remoteStates = map[string]bool{
	"AK": true,
	"HI": true,
	"PR": true,
	"GU": true,
	"VI": true,
	"AS": true,
	"MP": true,
}

// DiscountInput carries the already-validated discount facts into the
// calculator. A non-empty Reason means the code was rejected; the quote
// proceeds with a zero discount and surfaces the reason.
type DiscountInput struct {
	Code                 string
	Type                 enums.DiscountType
	Value                int
	MaximumDiscountCents *int
	Reason               enums.DiscountReason
}

// Calculator prices a cart snapshot into a quote. Pure and
// deterministic: it performs no I/O and holds no mutable state.
type Calculator struct {
	shipping       config.ShippingConfig
	defaultTaxBps  int
	defaultTaxName string
}

// NewCalculator builds a calculator from the shipping and tax config.
func NewCalculator(shipping config.ShippingConfig, tax config.TaxConfig) *Calculator {
	return &Calculator{
		shipping:       shipping,
		defaultTaxBps:  tax.DefaultRateBasisPoints,
		defaultTaxName: "default",
	}
}

// Quote assembles the priced breakdown for the given lines, destination
// and discount. Tax is computed per jurisdiction line against the
// subtotal with half-up integer rounding, so multiple lines never drift
// by a penny relative to their individual roundings.
func (c *Calculator) Quote(items []types.QuoteItem, addr *types.Address, discount *DiscountInput) types.Quote {
	quote := types.Quote{Currency: enums.CurrencyUSD}

	for _, item := range items {
		quote.SubtotalCents += item.UnitPriceCents * item.Quantity
	}

	quote.DiscountCents, quote.DiscountCode, quote.DiscountReason = c.discountCents(quote.SubtotalCents, discount)
	quote.ShippingCents = c.shippingCents(quote.SubtotalCents, totalWeight(items), addr)
	quote.TaxLines = c.taxLines(quote.SubtotalCents, addr)
	for _, line := range quote.TaxLines {
		quote.TaxCents += line.AmountCents
	}

	quote.TotalCents = quote.SubtotalCents + quote.ShippingCents + quote.TaxCents - quote.DiscountCents
	if quote.TotalCents < 0 {
		quote.TotalCents = 0
	}
	return quote
}

func totalWeight(items []types.QuoteItem) int {
	weight := 0
	for _, item := range items {
		weight += item.WeightGrams * item.Quantity
	}
	return weight
}

func (c *Calculator) shippingCents(subtotalCents, weightGrams int, addr *types.Address) int {
	if subtotalCents >= c.shipping.FreeShippingThresholdCents {
		return 0
	}

	cents := c.shipping.FlatRateCents
	if weightGrams > heavyParcelGrams {
		cents *= 2
	}
	if addr != nil && remoteStates[addr.NormalizedState()] {
		cents += c.shipping.RemoteSurchargeCents
	}
	return cents
}

func (c *Calculator) taxLines(subtotalCents int, addr *types.Address) []types.TaxLine {
	if subtotalCents == 0 {
		return nil
	}

	state := ""
	if addr != nil {
		state = addr.NormalizedState()
	}

	rates, known := lookupRates(state)
	if !known {
		return []types.TaxLine{{
			Jurisdiction:    c.defaultTaxName,
			RateBasisPoints: c.defaultTaxBps,
			AmountCents:     taxAmount(subtotalCents, c.defaultTaxBps),
			Estimated:       true,
		}}
	}

	lines := make([]types.TaxLine, 0, len(rates))
	for _, rate := range rates {
		lines = append(lines, types.TaxLine{
			Jurisdiction:    rate.Jurisdiction,
			RateBasisPoints: rate.BasisPoints,
			AmountCents:     taxAmount(subtotalCents, rate.BasisPoints),
		})
	}
	return lines
}

// taxAmount rounds half-up per line. decimal.Round rounds half away
// from zero, which is half-up for the non-negative amounts here.
func taxAmount(subtotalCents, basisPoints int) int {
	amount := decimal.NewFromInt(int64(subtotalCents)).
		Mul(decimal.New(int64(basisPoints), -4)).
		Round(0)
	return int(amount.IntPart())
}

func (c *Calculator) discountCents(subtotalCents int, discount *DiscountInput) (int, string, enums.DiscountReason) {
	if discount == nil || discount.Code == "" {
		return 0, "", ""
	}
	if discount.Reason != "" {
		return 0, discount.Code, discount.Reason
	}

	var cents int
	switch discount.Type {
	case enums.DiscountTypePercentage:
		cents = int(decimal.NewFromInt(int64(subtotalCents)).
			Mul(decimal.New(int64(discount.Value), -2)).
			Round(0).
			IntPart())
	case enums.DiscountTypeFixedAmount:
		cents = discount.Value
	default:
		return 0, discount.Code, enums.DiscountReasonNotFound
	}

	if discount.MaximumDiscountCents != nil && cents > *discount.MaximumDiscountCents {
		cents = *discount.MaximumDiscountCents
	}
	if cents > subtotalCents {
		cents = subtotalCents
	}
	if cents < 0 {
		cents = 0
	}
	return cents, discount.Code, ""
}
