package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSectorDisplayNameCoversEverySector(t *testing.T) {
	want := map[Sector]string{
		SectorTransport:            "Transport",
		SectorPower:                "Power",
		SectorAgriculture:          "Agriculture",
		SectorWaste:                "Waste",
		SectorBuildings:            "Buildings",
		SectorFuelExploitation:     "Fuel Exploitation",
		SectorIndustrialCombustion: "Industrial Combustion",
		SectorIndustrialProcesses:  "Industrial Processes",
	}

	got := make(map[Sector]string, len(AllSectors))
	for _, s := range AllSectors {
		got[s] = s.DisplayName()
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sector display names mismatch (-want +got):\n%s", diff)
	}
}

func TestSectorDisplayNameFallsBackToRawValue(t *testing.T) {
	assert.Equal(t, "unknown-sector", Sector("unknown-sector").DisplayName())
}
