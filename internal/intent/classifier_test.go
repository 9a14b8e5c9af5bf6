package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWarehouse(t *testing.T) {
	assert.Equal(t, Warehouse, Classify("How much CO2 did Germany emit in 2020?"))
}

func TestClassifyBaseline(t *testing.T) {
	assert.Equal(t, Baseline, Classify("What is the transport sector in EDGAR?"))
}

func TestClassifyHybrid(t *testing.T) {
	assert.Equal(t, Hybrid, Classify("Explain why transport emissions increased in Germany between 2019 and 2020"))
}
