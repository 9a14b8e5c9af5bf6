package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edgarqa/internal/intent"
)

func TestEnrichMatchesSectorByAlias(t *testing.T) {
	p := New(nil)
	result := p.Enrich("What drives car emissions in Europe?", intent.PersonaAnalyst)
	assert.NotEmpty(t, result.SectorExplanation)
}

func TestEnrichSetsCountryContext(t *testing.T) {
	p := New(nil)
	result := p.Enrich("What is Germany's energy mix?", intent.PersonaResearcher)
	assert.NotEmpty(t, result.CountryContext)
}

func TestEnrichSetsInterpretationFocusByPersona(t *testing.T) {
	p := New(nil)
	forStudent := p.Enrich("hello", intent.PersonaStudent)
	forFinancial := p.Enrich("hello", intent.PersonaFinancial)
	assert.NotEmpty(t, forStudent.InterpretationFocus)
	assert.NotEqual(t, forStudent.InterpretationFocus, forFinancial.InterpretationFocus)
}

func TestBaselineAnswerNeverEmpty(t *testing.T) {
	p := New(nil)
	answer := p.BaselineAnswer("hello", intent.PersonaAnalyst)
	assert.NotEmpty(t, answer)
}

func TestBaselineAnswerIncludesMethodologyWhenAsked(t *testing.T) {
	p := New(nil)
	answer := p.BaselineAnswer("How is EDGAR data produced, methodology wise?", intent.PersonaResearcher)
	assert.Contains(t, answer, "IPCC")
}
