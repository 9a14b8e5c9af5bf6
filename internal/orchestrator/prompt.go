package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"edgarqa/internal/intent"
	"edgarqa/internal/toolsurface"
)

var personaPreambles = map[intent.Persona]string{
	intent.PersonaAnalyst:    "You are assisting a policy analyst. Prioritise what a trend means for target-setting and progress tracking.",
	intent.PersonaResearcher: "You are assisting a researcher. Foreground data provenance, uncertainty and comparability.",
	intent.PersonaFinancial:  "You are assisting a financial analyst. Emphasise trend direction, magnitude and peer comparison.",
	intent.PersonaStudent:    "You are assisting a student. Define terms before using them and favour intuition over jargon.",
}

// buildSystemPrompt composes the Orchestrator's system prompt per
// spec.md §4.8 step 1: a persona-aware preamble, the tool catalog with
// canonical parameter names and short examples, and strict output
// rules. registry is the single source of truth for every tool's
// schema, so the prompt can never drift from what transport_stdio.go
// and transport_http.go actually serve.
func buildSystemPrompt(persona intent.Persona, registry *toolsurface.Registry) string {
	var b strings.Builder

	preamble, ok := personaPreambles[persona]
	if !ok {
		preamble = personaPreambles[intent.DefaultPersona]
	}
	b.WriteString(preamble)
	b.WriteString("\n\n")
	b.WriteString("You answer questions about EDGAR CO2 emissions data (2000-2023) by calling tools against a structured warehouse.\n\n")
	b.WriteString("Available tools:\n")

	for _, def := range registry.List() {
		schemaJSON, _ := json.Marshal(def.Schema)
		fmt.Fprintf(&b, "- %s: %s\n  schema: %s\n", def.Name, def.Description, string(schemaJSON))
	}

	b.WriteString("\nExample tool call:\n")
	b.WriteString(`{"tool": "top_n", "args": {"file_id": "transport-country-year", "year": 2022, "measure": "emissions_tonnes", "n": 5}}`)
	b.WriteString("\n\n")
	b.WriteString("Output rules:\n")
	b.WriteString("1. Respond with EXACTLY ONE JSON object of the shape {\"tool\": \"<name>\", \"args\": {...}} to call a tool, OR a final natural-language answer. Never both, never prose wrapped around the JSON.\n")
	b.WriteString("2. Only call tools listed above, with arguments matching their schema.\n")
	b.WriteString("3. Once you have enough information, answer in prose grounded only in returned tool results. Cite concrete values and units.\n")
	b.WriteString("4. Never fabricate a row, a quality score, or a source that was not returned by a tool.\n")

	return b.String()
}
