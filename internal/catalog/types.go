// Package catalog loads the manifest describing every dataset in the
// warehouse: physical tables, declared columns, temporal/spatial
// coverage and per-sector quality metadata. It is the single source of
// truth for what the Query Engine is allowed to query.
package catalog

// Sector enumerates the eight EDGAR emission sectors.
type Sector string

const (
	SectorTransport               Sector = "transport"
	SectorPower                   Sector = "power"
	SectorAgriculture             Sector = "agriculture"
	SectorWaste                   Sector = "waste"
	SectorBuildings               Sector = "buildings"
	SectorFuelExploitation        Sector = "fuel-exploitation"
	SectorIndustrialCombustion    Sector = "industrial-combustion"
	SectorIndustrialProcesses     Sector = "industrial-processes"
)

// AllSectors lists every valid sector in canonical order.
var AllSectors = []Sector{
	SectorTransport, SectorPower, SectorAgriculture, SectorWaste,
	SectorBuildings, SectorFuelExploitation, SectorIndustrialCombustion,
	SectorIndustrialProcesses,
}

var sectorDisplayNames = map[Sector]string{
	SectorTransport:               "Transport",
	SectorPower:                    "Power",
	SectorAgriculture:              "Agriculture",
	SectorWaste:                    "Waste",
	SectorBuildings:                "Buildings",
	SectorFuelExploitation:         "Fuel Exploitation",
	SectorIndustrialCombustion:     "Industrial Combustion",
	SectorIndustrialProcesses:      "Industrial Processes",
}

// DisplayName returns the human-readable sector name used in answer
// headers, e.g. "Fuel Exploitation" for SectorFuelExploitation.
func (s Sector) DisplayName() string {
	if name, ok := sectorDisplayNames[s]; ok {
		return name
	}
	return string(s)
}

// Level is a geographic granularity.
type Level string

const (
	LevelCountry Level = "country"
	LevelAdmin1  Level = "admin1"
	LevelCity    Level = "city"
)

// Grain is a temporal granularity.
type Grain string

const (
	GrainYear  Grain = "year"
	GrainMonth Grain = "month"
)

// ColumnType is the semantic type of a Column Descriptor, constraining
// how the Query Engine may bind it into SQL.
type ColumnType string

const (
	ColIdentifier     ColumnType = "identifier"
	ColCategorical    ColumnType = "categorical"
	ColIntegerYear    ColumnType = "integer-year"
	ColIntegerMonth   ColumnType = "integer-month"
	ColMeasureTonnes  ColumnType = "measure-tonnes"
	ColMeasureMt      ColumnType = "measure-mt"
	ColQualityScore   ColumnType = "quality-score"
	ColConfidenceTier ColumnType = "confidence-tier"
	ColUncertaintyPct ColumnType = "uncertainty-pct"
	ColFlag           ColumnType = "flag"
	ColString         ColumnType = "string"
)

// Column is a single declared column of a dataset.
type Column struct {
	Name string     `yaml:"name"`
	Type ColumnType `yaml:"type"`
}

// IsNumeric reports whether values of this column type are bound as
// SQL numeric parameters rather than strings.
func (c Column) IsNumeric() bool {
	switch c.Type {
	case ColIntegerYear, ColIntegerMonth, ColMeasureTonnes, ColMeasureMt, ColQualityScore, ColUncertaintyPct:
		return true
	default:
		return false
	}
}

// QualityBlock is the per-sector static quality record, echoed verbatim
// in every data-bearing response; never interpolated from data rows.
type QualityBlock struct {
	QualityScore     float64  `yaml:"quality_score"`
	Tier             string   `yaml:"tier"`
	ConfidenceTier   string   `yaml:"confidence_tier"`
	UncertaintyPct   float64  `yaml:"uncertainty_pct"`
	ExternalSources  []string `yaml:"external_sources"`
	RecordsEnhanced  int      `yaml:"records_enhanced"`
	SyntheticPercent float64  `yaml:"synthetic_percent"`
	Notes            string   `yaml:"notes"`
}

// Dataset is an immutable manifest entry: one physical table, its
// declared columns, temporal/spatial coverage, and the quality block
// for its sector.
type Dataset struct {
	FileID        string   `yaml:"file_id"`
	Sector        Sector   `yaml:"sector"`
	Level         Level    `yaml:"level"`
	Grain         Grain    `yaml:"grain"`
	PhysicalTable string   `yaml:"physical_table"`
	Columns       []Column `yaml:"columns"`
	StartYear     int      `yaml:"start_year"`
	EndYear       int      `yaml:"end_year"`
	SpatialTag    string   `yaml:"spatial_tag"`

	Quality QualityBlock `yaml:"-"`
}

// HasColumn reports whether name is declared on this dataset.
func (d Dataset) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// Column returns the declared Column descriptor for name.
func (d Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns every declared column name, in manifest order.
func (d Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// HasQualityColumns reports whether this dataset exposes per-row
// quality columns, vs. only the Sector Quality Block. Feature-detected
// from the manifest rather than assumed (spec.md §4.2, §9 Open
// Question).
func (d Dataset) HasQualityColumns() bool {
	return d.HasColumn("quality_score") && d.HasColumn("confidence_level")
}

// InYearCoverage reports whether year falls within the dataset's
// declared temporal coverage.
func (d Dataset) InYearCoverage(year int) bool {
	return year >= d.StartYear && year <= d.EndYear
}
