// Package assembler composes the final Answer Envelope from warehouse
// rows, quality metadata and Baseline Context output. It is pure data
// transformation: no I/O, no warehouse access, no LLM call.
package assembler

import (
	"fmt"
	"strings"

	"edgarqa/internal/baseline"
	"edgarqa/internal/intent"
	"edgarqa/internal/query"
)

// Envelope is the structured answer returned to the caller, matching
// spec.md §3's Answer Envelope entity.
type Envelope struct {
	Header          string
	Body            string
	Context         string
	Persona         intent.Persona
	RequestID       string
	BudgetExhausted bool
}

// Input bundles everything the Assembler needs for one answer.
type Input struct {
	Kind            intent.Intent
	Persona         intent.Persona
	RequestID       string
	Body            string
	Quality         *query.QualityMetadata
	Baseline        *baseline.EnrichResult
	NoData          bool
	FallbackTrace   []query.TraceStep
	Suggestions     []string
	BudgetExhausted bool
}

// Assemble builds the Answer Envelope per spec.md §4.9.
func Assemble(in Input) Envelope {
	env := Envelope{
		Persona:         in.Persona,
		RequestID:       in.RequestID,
		BudgetExhausted: in.BudgetExhausted,
	}

	if in.NoData {
		env.Body = noDataMessage(in.FallbackTrace, in.Suggestions)
		return env
	}

	if in.Quality != nil {
		env.Header = buildHeader(*in.Quality)
	}

	env.Body = in.Body

	if in.Kind == intent.Hybrid && in.Baseline != nil {
		env.Context = buildContext(*in.Baseline)
	}
	if in.Kind == intent.Baseline && in.Baseline != nil {
		env.Context = buildContext(*in.Baseline)
	}

	return env
}

func buildHeader(q query.QualityMetadata) string {
	return fmt.Sprintf(
		"[Source: %s Sector | %s] / [Quality: %.0f%% | Confidence: %s | Uncertainty: ±%.0f%%] / Data validated with: %s",
		q.Sector.DisplayName(), q.DataVersion, q.QualityScore, q.ConfidenceLevel, q.UncertaintyPct,
		formatSourceList(q.ExternalSources),
	)
}

// formatSourceList renders spec.md §4.9's source-citation rule: a
// single source is named in full, 2-3 are joined, 4+ collapse to a
// count with a few named examples.
func formatSourceList(sources []string) string {
	switch {
	case len(sources) == 0:
		return "no external sources recorded"
	case len(sources) == 1:
		return sources[0]
	case len(sources) <= 3:
		return strings.Join(sources, ", ")
	default:
		return fmt.Sprintf("%d authoritative sources including: %s, and others", len(sources), strings.Join(sources[:3], ", "))
	}
}

func buildContext(ctx baseline.EnrichResult) string {
	var parts []string
	if ctx.SectorExplanation != "" {
		parts = append(parts, ctx.SectorExplanation)
	}
	if ctx.CountryContext != "" {
		parts = append(parts, ctx.CountryContext)
	}
	if ctx.TrendContext != "" {
		parts = append(parts, ctx.TrendContext)
	}
	if ctx.SeasonalContext != "" {
		parts = append(parts, ctx.SeasonalContext)
	}
	return strings.Join(parts, " ")
}

func noDataMessage(trace []query.TraceStep, suggestions []string) string {
	var b strings.Builder
	b.WriteString("No data was found at the requested granularity.")
	if len(trace) > 0 {
		b.WriteString(" Fallback trace: ")
		steps := make([]string, len(trace))
		for i, s := range trace {
			steps[i] = fmt.Sprintf("%s=%s", s.Level, s.Status)
		}
		b.WriteString(strings.Join(steps, " -> "))
		b.WriteString(".")
	}
	if len(suggestions) > 0 {
		b.WriteString(" Did you mean: ")
		b.WriteString(strings.Join(suggestions, ", "))
		b.WriteString("?")
	}
	return b.String()
}
