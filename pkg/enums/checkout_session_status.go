package enums

// CheckoutSessionStatus tracks the local handoff record for a Stripe
// Checkout Session.
type CheckoutSessionStatus string

const (
	CheckoutSessionStatusPending  CheckoutSessionStatus = "pending"
	CheckoutSessionStatusConsumed CheckoutSessionStatus = "consumed"
	CheckoutSessionStatusExpired  CheckoutSessionStatus = "expired"
	CheckoutSessionStatusFailed   CheckoutSessionStatus = "failed"
)

// IsValid reports whether the value is a known CheckoutSessionStatus.
func (c CheckoutSessionStatus) IsValid() bool {
	switch c {
	case CheckoutSessionStatusPending, CheckoutSessionStatusConsumed,
		CheckoutSessionStatusExpired, CheckoutSessionStatusFailed:
		return true
	default:
		return false
	}
}
