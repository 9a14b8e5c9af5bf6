package toolsurface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestToolTablesAgree guards spec.md §8's cross-transport invariant:
// toolSchemas, toolDescriptions and definitions() must name exactly
// the same tools, and every required parameter must be a declared
// property, so the stdio transport, the HTTP façade and the
// Orchestrator's system prompt can never drift apart.
func TestToolTablesAgree(t *testing.T) {
	defs := definitions(nil)

	require.Equal(t, len(toolSchemas), len(defs), "toolSchemas and definitions() must name the same tools")
	for name := range defs {
		_, hasSchema := toolSchemas[name]
		assert.True(t, hasSchema, "tool %q has no schema entry", name)
		_, hasDesc := toolDescriptions[name]
		assert.True(t, hasDesc, "tool %q has no description", name)
	}
	for name := range toolSchemas {
		_, hasDef := defs[name]
		assert.True(t, hasDef, "schema %q has no matching dispatch closure", name)
	}
}

func TestToolSchemasRequiredParamsAreDeclared(t *testing.T) {
	for name, schema := range toolSchemas {
		for _, req := range schema.Required {
			_, ok := schema.Properties[req]
			assert.True(t, ok, "tool %q requires %q but does not declare it as a property", name, req)
		}
	}
}

// TestRegistryListMatchesSchemaTable confirms the system prompt's
// source (Registry.List) renders the exact same schema a caller would
// get back from get_schema/tools-list, with no separate catalog.
func TestRegistryListMatchesSchemaTable(t *testing.T) {
	registry := Build(nil)
	list := registry.List()
	require.Len(t, list, len(toolSchemas))

	seen := make(map[string]bool)
	for _, def := range list {
		seen[def.Name] = true
		assert.Equal(t, toolSchemas[def.Name], def.Schema)
		assert.Equal(t, toolDescriptions[def.Name], def.Description)
	}
	assert.Len(t, seen, len(toolSchemas))
}
