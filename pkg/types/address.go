package types

import (
	"fmt"
	"strings"
)

// Address is the shipping destination captured at checkout. Persisted
// as JSONB on orders and checkout sessions.
type Address struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Validate checks the fields pricing and fulfillment depend on.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Line1) == "" {
		return fmt.Errorf("address: missing line1")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.State) == "" {
		return fmt.Errorf("address: missing state")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return fmt.Errorf("address: missing postal_code")
	}
	return nil
}

// NormalizedState returns the uppercase two-letter state code used as
// the tax jurisdiction key.
func (a Address) NormalizedState() string {
	return strings.ToUpper(strings.TrimSpace(a.State))
}
