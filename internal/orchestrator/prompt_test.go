package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edgarqa/internal/intent"
	"edgarqa/internal/toolsurface"
)

func TestBuildSystemPromptListsRegisteredTools(t *testing.T) {
	r := testRegistryWithQueryTool(t)
	prompt := buildSystemPrompt(intent.PersonaAnalyst, r)

	assert.Contains(t, prompt, "query")
	assert.Contains(t, prompt, "file_id")
	assert.Contains(t, prompt, "tool")
}

func TestBuildSystemPromptDefaultsUnknownPersona(t *testing.T) {
	r := toolsurface.NewRegistry()
	prompt := buildSystemPrompt(intent.Persona("unknown"), r)
	assert.NotEmpty(t, prompt)
}
