package places

import "strings"

// classification maps a name substring to the recorded company and
// facility category.
type classification struct {
	substring string
	company   string
	category  string
}

// classifications is checked in order; the first matching substring wins,
// so broader tokens like "ups" sit below the brands that contain them.
var classifications = []classification{
	{"amazon", "Amazon", "Fulfillment Center"},
	{"fedex", "FedEx", "Distribution Hub"},
	{"ups", "UPS", "Distribution Hub"},
	{"usps", "USPS", "Distribution Hub"},
	{"united states postal", "USPS", "Distribution Hub"},
	{"dhl", "DHL", "Distribution Hub"},
	{"walmart", "Walmart", "Distribution Center"},
	{"target", "Target", "Distribution Center"},
	{"home depot", "Home Depot", "Distribution Center"},
	{"lowe's", "Lowe's", "Distribution Center"},
	{"lowes", "Lowe's", "Distribution Center"},
	{"costco", "Costco", "Distribution Center"},
	{"kroger", "Kroger", "Distribution Center"},
	{"publix", "Publix", "Distribution Center"},
	{"sysco", "Sysco", "Food Distribution"},
	{"us foods", "US Foods", "Food Distribution"},
	{"xpo", "XPO", "Logistics Terminal"},
	{"ryder", "Ryder", "Logistics Terminal"},
	{"saia", "Saia", "Logistics Terminal"},
	{"old dominion", "Old Dominion", "Logistics Terminal"},
}

// Classify assigns a company and facility category from a place name by
// case-insensitive substring match. Unmatched names fall through to
// (Other, Warehouse).
func Classify(name string) (company, category string) {
	lower := strings.ToLower(name)
	for _, c := range classifications {
		if strings.Contains(lower, c.substring) {
			return c.company, c.category
		}
	}
	return "Other", "Warehouse"
}
