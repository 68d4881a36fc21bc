package enums

import "fmt"

// DiscountType selects how a discount code's value is applied.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixedAmount,
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}

// DiscountReason explains why a code did not apply. A quote carrying a
// reason still proceeds; the discount is simply zero.
type DiscountReason string

const (
	DiscountReasonNone           DiscountReason = ""
	DiscountReasonNotFound       DiscountReason = "not_found"
	DiscountReasonInactive       DiscountReason = "inactive"
	DiscountReasonNotStarted     DiscountReason = "not_started"
	DiscountReasonExpired        DiscountReason = "expired"
	DiscountReasonBelowMinimum   DiscountReason = "below_minimum"
	DiscountReasonUsageExhausted DiscountReason = "usage_exhausted"
)
