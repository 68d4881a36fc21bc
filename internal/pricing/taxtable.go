package pricing

// TaxRate is one jurisdiction entry in the static rate table. Rates are
// expressed in basis points (725 = 7.25%).
type TaxRate struct {
	Jurisdiction string
	BasisPoints  int
}

// stateRates maps a normalized two-letter state code to its jurisdiction
// rate list. States absent from the table fall back to a single
// estimated line at the configured default rate. Zero-tax states are
// present with an empty list so they do not hit the fallback.
var stateRates = map[string][]TaxRate{
	"CA": {
		{Jurisdiction: "CA state", BasisPoints: 725},
		{Jurisdiction: "CA district", BasisPoints: 125},
	},
	"NY": {
		{Jurisdiction: "NY state", BasisPoints: 400},
		{Jurisdiction: "NY local", BasisPoints: 450},
	},
	"TX": {
		{Jurisdiction: "TX state", BasisPoints: 625},
		{Jurisdiction: "TX local", BasisPoints: 200},
	},
	"WA": {
		{Jurisdiction: "WA state", BasisPoints: 650},
		{Jurisdiction: "WA local", BasisPoints: 380},
	},
	"FL": {
		{Jurisdiction: "FL state", BasisPoints: 600},
		{Jurisdiction: "FL county", BasisPoints: 100},
	},
	"IL": {
		{Jurisdiction: "IL state", BasisPoints: 625},
	},
	"PA": {
		{Jurisdiction: "PA state", BasisPoints: 600},
	},

	// No statewide sales tax.
	"OR": {},
	"MT": {},
	"NH": {},
	"DE": {},
}

// lookupRates returns the jurisdiction rates for a state code and
// whether the state is known to the table.
func lookupRates(state string) ([]TaxRate, bool) {
	rates, ok := stateRates[state]
	return rates, ok
}
