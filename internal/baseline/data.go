package baseline

import (
	"edgarqa/internal/catalog"
	"edgarqa/internal/intent"
)

// sectorKnowledge is static, hand-authored context about each emission
// sector: what it covers, what typically drives its emissions.
var sectorKnowledge = map[catalog.Sector]string{
	catalog.SectorTransport:               "Covers road, rail, aviation and shipping combustion emissions. Dominated by road transport in most countries; sensitive to fuel price, fleet electrification and freight volume.",
	catalog.SectorPower:                    "Electricity and heat generation from fossil fuel combustion. Usually a country's single largest CO2 source; trends track fuel mix shifts (coal to gas to renewables).",
	catalog.SectorAgriculture:              "Emissions from livestock, soil management and agricultural machinery. CO2 is a minor share here relative to methane and nitrous oxide, which this dataset does not cover.",
	catalog.SectorWaste:                    "Emissions from solid waste disposal and wastewater handling. Smaller absolute volumes, often flat or slowly declining as waste management modernises.",
	catalog.SectorBuildings:                "Residential and commercial heating, cooking and cooling. Strongly seasonal and weather-dependent; efficiency retrofits and heating-fuel switching are the main long-run drivers.",
	catalog.SectorFuelExploitation:         "Extraction, processing and transport of fossil fuels themselves (flaring, venting, refining). Concentrated in producer countries.",
	catalog.SectorIndustrialCombustion:     "Fuel burned for industrial process heat, distinct from the chemical reactions in industrial processes. Tracks industrial output and fuel efficiency.",
	catalog.SectorIndustrialProcesses:      "Emissions from chemical reactions in manufacturing (cement, steel, chemicals) rather than fuel combustion. Tied to industrial production volume, not energy policy alone.",
}

// policyNotes is static context about how EDGAR data is commonly used
// in policy analysis.
const policyNotes = "EDGAR country-level totals are widely used to track progress against Paris Agreement nationally determined contributions (NDCs). Year-over-year comparisons are more policy-relevant than single-year snapshots, since annual emissions vary with weather, fuel prices and economic activity independent of policy."

// methodologyNotes explains the dataset's general construction, used
// when a question asks how the numbers are produced rather than what
// they say.
const methodologyNotes = "EDGAR combines international activity statistics (fuel consumption, industrial production, agricultural census data) with emission factors from IPCC guidelines, allocated to a 0.1-degree grid and aggregated to country/admin1/city. Recent years lean more heavily on provisional or modelled inputs than finalised years, which is why uncertainty and quality scores fall over time for a given release."

// countryContexts is static context about a handful of large emitters:
// energy mix and the policy backdrop, never a number that could drift
// out of sync with the warehouse.
var countryContexts = map[string]string{
	"germany":       "Phasing out coal and nuclear in favour of renewables and imported gas under the Energiewende; power-sector emissions have fallen faster than transport or buildings.",
	"france":        "Electricity generation is heavily nuclear, so its power-sector emissions intensity is unusually low among large economies; transport and buildings are the larger relative contributors.",
	"united states": "A large, diverse economy with coal-to-gas switching in power generation over the last two decades and a transport sector dominated by road freight and passenger vehicles.",
	"china":         "The largest single national emitter in absolute terms, with a power sector still substantially coal-fired and rapid growth in industrial process emissions.",
	"india":         "A growing economy with a coal-heavy power sector and comparatively low per-capita emissions relative to its total.",
	"united kingdom": "Power-sector emissions fell sharply after a near-complete exit from coal generation; transport has become the largest single sector share.",
	"japan":          "A power sector that leaned more heavily on fossil generation after the Fukushima-era reduction in nuclear output.",
}

// personaFraming describes how one audience framing should shape an
// answer's tone and emphasis; it never changes which numbers are
// reported.
type personaFraming struct {
	Focus        string
	Tone         string
	KeyQuestions []string
}

var personaFramings = map[intent.Persona]personaFraming{
	intent.PersonaAnalyst: {
		Focus: "Policy and program relevance: what a country or sector trend means for target-setting and progress tracking.",
		Tone:  "Neutral, precise, comfortable with uncertainty ranges.",
		KeyQuestions: []string{
			"Is this trend consistent with stated national commitments?",
			"Which sector is the largest lever for further reduction?",
		},
	},
	intent.PersonaResearcher: {
		Focus: "Methodological grounding: data provenance, uncertainty, and comparability across sectors or countries.",
		Tone:  "Precise, caveats foregrounded rather than buried.",
		KeyQuestions: []string{
			"How was this figure derived and what is its uncertainty?",
			"Is this comparable across the sectors or years being discussed?",
		},
	},
	intent.PersonaFinancial: {
		Focus: "Exposure and trend materiality: is a sector or country's emissions trajectory improving or worsening, and how fast.",
		Tone:  "Direct, quantified, oriented to trend direction and magnitude.",
		KeyQuestions: []string{
			"Is the trend accelerating or decelerating?",
			"How does this compare to peers in the same sector?",
		},
	},
	intent.PersonaStudent: {
		Focus: "Building intuition: what the sector is, why it emits, and what the number means in everyday terms.",
		Tone:  "Accessible, defines terms before using them.",
		KeyQuestions: []string{
			"What does this sector actually cover?",
			"Why does this number go up or down?",
		},
	},
}
