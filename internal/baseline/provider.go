// Package baseline supplies static, non-warehouse context for
// questions classified as needing general knowledge about EDGAR
// rather than a specific number: sector definitions, country energy
// contexts, policy framing, and persona-shaped interpretation. All
// text here is qualitative; this package never emits a number.
package baseline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"edgarqa/internal/catalog"
	"edgarqa/internal/intent"
)

// EnrichResult is the qualitative context attached to a WAREHOUSE
// answer when the classifier says HYBRID, or used standalone for a
// BASELINE answer.
type EnrichResult struct {
	SectorExplanation   string
	CountryContext      string
	TrendContext        string
	InterpretationFocus string
	SeasonalContext     string
}

// Provider answers baseline-knowledge questions from the hand-authored
// notes in data.go. It never touches the warehouse.
type Provider struct {
	logger *zap.Logger
}

// New builds a Provider. logger may be nil in tests; a nop logger is
// substituted.
func New(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{logger: logger}
}

// Enrich returns static context relevant to question, shaped by
// persona. It never panics or returns an error: a failure here
// degrades to an empty result rather than sinking the request, the
// same defensive idiom used around shard execution elsewhere in this
// codebase to keep one failing subsystem from taking down a response.
func (p *Provider) Enrich(question string, persona intent.Persona) (result EnrichResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("baseline provider panicked, degrading to empty context", zap.Any("panic", r))
			result = EnrichResult{}
		}
	}()
	return p.enrich(question, persona)
}

func (p *Provider) enrich(question string, persona intent.Persona) EnrichResult {
	q := strings.ToLower(question)

	var result EnrichResult

	var sectorNotes []string
	for sector, note := range sectorKnowledge {
		if mentionsSector(q, sector) {
			sectorNotes = append(sectorNotes, note)
		}
	}
	result.SectorExplanation = strings.Join(sectorNotes, " ")

	for name, note := range countryContexts {
		if strings.Contains(q, name) {
			result.CountryContext = note
			break
		}
	}

	if strings.Contains(q, "trend") || strings.Contains(q, "increase") || strings.Contains(q, "decrease") || strings.Contains(q, "change") || strings.Contains(q, "why") {
		result.TrendContext = policyNotes
	}

	if strings.Contains(q, "season") || strings.Contains(q, "month") || strings.Contains(q, "winter") || strings.Contains(q, "summer") {
		result.SeasonalContext = "Monthly emissions in combustion-heavy sectors (power, buildings) typically peak in winter months due to heating demand and fall in shoulder seasons."
	}

	result.InterpretationFocus = personaFramings[persona].Focus

	return result
}

// BaselineAnswer composes prose directly from static knowledge, with
// no tool calls: the path used when the Intent Classifier says
// BASELINE. The caller guarantees no warehouse data backs this
// answer.
func (p *Provider) BaselineAnswer(question string, persona intent.Persona) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("baseline provider panicked composing answer, degrading to generic text", zap.Any("panic", r))
			answer = "EDGAR tracks CO2 emissions across sectors and geographic levels, at yearly or monthly grain."
		}
	}()
	return p.baselineAnswer(question, persona)
}

func (p *Provider) baselineAnswer(question string, persona intent.Persona) string {
	ctx := p.enrich(question, persona)
	framing := personaFramings[persona]

	var b strings.Builder
	if ctx.SectorExplanation != "" {
		b.WriteString(ctx.SectorExplanation)
		b.WriteString(" ")
	}
	if ctx.CountryContext != "" {
		b.WriteString(ctx.CountryContext)
		b.WriteString(" ")
	}
	if strings.Contains(strings.ToLower(question), "methodology") || strings.Contains(strings.ToLower(question), "how is") || strings.Contains(strings.ToLower(question), "how does edgar") {
		b.WriteString(methodologyNotes)
		b.WriteString(" ")
	}
	if ctx.TrendContext != "" {
		b.WriteString(ctx.TrendContext)
		b.WriteString(" ")
	}

	if b.Len() == 0 {
		b.WriteString("EDGAR tracks CO2 emissions across sectors and geographic levels, at yearly or monthly grain.")
	}

	if framing.Tone != "" {
		b.WriteString(fmt.Sprintf(" (%s)", framing.Tone))
	}

	return strings.TrimSpace(b.String())
}

// sectorAliases maps loose question vocabulary onto catalog sectors,
// so "cars" or "driving" resolves to the transport sector note
// without requiring the question to name the sector verbatim.
var sectorAliases = map[catalog.Sector][]string{
	catalog.SectorTransport:           {"transport", "road", "aviation", "shipping", "car", "vehicle", "flight"},
	catalog.SectorPower:               {"power", "electricity", "energy generation", "grid"},
	catalog.SectorAgriculture:         {"agriculture", "farming", "livestock", "crop"},
	catalog.SectorWaste:                {"waste", "landfill", "wastewater"},
	catalog.SectorBuildings:            {"building", "residential", "heating", "commercial"},
	catalog.SectorFuelExploitation:     {"fuel exploitation", "extraction", "flaring", "venting", "refining"},
	catalog.SectorIndustrialCombustion: {"industrial combustion", "process heat"},
	catalog.SectorIndustrialProcesses:  {"industrial process", "cement", "steel", "chemicals manufacturing"},
}

func mentionsSector(q string, sector catalog.Sector) bool {
	if strings.Contains(q, string(sector)) {
		return true
	}
	for _, alias := range sectorAliases[sector] {
		if strings.Contains(q, alias) {
			return true
		}
	}
	return false
}
