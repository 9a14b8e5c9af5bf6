package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edgarqa/internal/baseline"
	"edgarqa/internal/catalog"
	"edgarqa/internal/intent"
	"edgarqa/internal/query"
)

func TestAssembleWarehouseHeaderCitesQuality(t *testing.T) {
	env := Assemble(Input{
		Kind:    intent.Warehouse,
		Persona: intent.PersonaAnalyst,
		Body:    "Transport emissions in Germany in 2023 were 123 tonnes.",
		Quality: &query.QualityMetadata{
			Sector:          catalog.SectorTransport,
			QualityScore:    85,
			ConfidenceLevel: "HIGH",
			UncertaintyPct:  12,
			ExternalSources: []string{"IEA"},
			DataVersion:     "EDGAR v2024",
		},
	})

	assert.Contains(t, env.Header, "Transport Sector")
	assert.Contains(t, env.Header, "85%")
	assert.Contains(t, env.Header, "HIGH")
	assert.Contains(t, env.Header, "±12%")
	assert.Contains(t, env.Header, "IEA")
	assert.Empty(t, env.Context)
}

func TestAssembleHybridIncludesBaselineContext(t *testing.T) {
	env := Assemble(Input{
		Kind:    intent.Hybrid,
		Persona: intent.PersonaResearcher,
		Body:    "Emissions rose 4% year over year.",
		Quality: &query.QualityMetadata{Sector: catalog.SectorPower, QualityScore: 90, ConfidenceLevel: "HIGH", DataVersion: "EDGAR v2024"},
		Baseline: &baseline.EnrichResult{
			SectorExplanation: "Power generation from fossil fuel combustion.",
		},
	})

	assert.NotEmpty(t, env.Context)
	assert.Contains(t, env.Context, "Power generation")
}

func TestFormatSourceListRules(t *testing.T) {
	assert.Equal(t, "IEA", formatSourceList([]string{"IEA"}))
	assert.Equal(t, "IEA, UNFCCC", formatSourceList([]string{"IEA", "UNFCCC"}))
	assert.Contains(t, formatSourceList([]string{"a", "b", "c", "d"}), "4 authoritative sources")
}

func TestAssembleNoDataIncludesFallbackTraceAndSuggestions(t *testing.T) {
	env := Assemble(Input{
		Kind:   intent.Warehouse,
		NoData: true,
		FallbackTrace: []query.TraceStep{
			{Level: "city", Status: "no_data"},
			{Level: "admin1", Status: "ok"},
		},
		Suggestions: []string{"Germany"},
	})

	assert.Contains(t, env.Body, "No data was found")
	assert.Contains(t, env.Body, "city=no_data")
	assert.Contains(t, env.Body, "Germany")
}

func TestAssembleBudgetExhaustedPropagates(t *testing.T) {
	env := Assemble(Input{Kind: intent.Warehouse, Body: "partial", BudgetExhausted: true})
	assert.True(t, env.BudgetExhausted)
}
