// Package intent classifies an incoming question as needing warehouse
// data, static baseline knowledge, or both, so the Orchestrator knows
// which context to assemble before calling the LLM.
package intent

import "strings"

// Intent is the routing decision for one question.
type Intent string

const (
	Baseline  Intent = "baseline"
	Warehouse Intent = "warehouse"
	Hybrid    Intent = "hybrid"
)

// baselineKeywords signal a question about static context: policy,
// methodology, sector definitions, general explanation.
var baselineKeywords = map[string]bool{
	"what is": true, "explain": true, "define": true, "why": true,
	"policy": true, "methodology": true, "sector": true, "edgar": true,
	"how is": true, "meaning": true, "difference between": true,
}

// warehouseKeywords signal a question that needs a number out of the
// warehouse: a measurement, a comparison, a ranking, a trend.
var warehouseKeywords = map[string]bool{
	"how much": true, "how many": true, "compare": true, "trend": true,
	"top": true, "rank": true, "year": true, "emissions": true,
	"co2": true, "tonnes": true, "change": true, "increase": true,
	"decrease": true, "between": true,
}

// Classify inspects the lower-cased question text for each keyword set.
// Both sets matching yields Hybrid; one set matching yields that
// Intent; neither matching defaults to Warehouse, since an
// under-specified question is more often a data request than a
// conceptual one in this domain.
func Classify(question string) Intent {
	q := strings.ToLower(question)

	hasBaseline := containsAny(q, baselineKeywords)
	hasWarehouse := containsAny(q, warehouseKeywords)

	switch {
	case hasBaseline && hasWarehouse:
		return Hybrid
	case hasBaseline:
		return Baseline
	default:
		return Warehouse
	}
}

func containsAny(q string, keywords map[string]bool) bool {
	for kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
