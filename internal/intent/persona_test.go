package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePersonaRecognisesEachTag(t *testing.T) {
	assert.Equal(t, PersonaAnalyst, ParsePersona("analyst"))
	assert.Equal(t, PersonaResearcher, ParsePersona("researcher"))
	assert.Equal(t, PersonaFinancial, ParsePersona("financial"))
	assert.Equal(t, PersonaStudent, ParsePersona("student"))
}

func TestParsePersonaIsCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, PersonaResearcher, ParsePersona("  Researcher  "))
	assert.Equal(t, PersonaFinancial, ParsePersona("FINANCIAL"))
}

func TestParsePersonaDefaultsUnrecognisedToAnalyst(t *testing.T) {
	assert.Equal(t, DefaultPersona, ParsePersona(""))
	assert.Equal(t, DefaultPersona, ParsePersona("executive"))
	assert.Equal(t, PersonaAnalyst, DefaultPersona)
}
