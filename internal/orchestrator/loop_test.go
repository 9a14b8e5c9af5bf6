package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarqa/internal/intent"
	"edgarqa/internal/toolsurface"
)

// scriptedServer replies with the next entry in replies on each call,
// mimicking a chat-completions endpoint.
func scriptedServer(t *testing.T, replies []string) *httptest.Server {
	t.Helper()
	i := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)

		reply := replies[i]
		if i < len(replies)-1 {
			i++
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testRegistryWithQueryTool(t *testing.T) *toolsurface.Registry {
	t.Helper()
	r := toolsurface.NewRegistry()
	err := r.Register(&toolsurface.ToolDef{
		Name:        "query",
		Description: "test query tool",
		Schema: toolsurface.Schema{
			Type:     "object",
			Required: []string{"file_id"},
			Properties: map[string]toolsurface.Property{
				"file_id": {Type: "string"},
			},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			return map[string]any{"rows": []map[string]any{{"country_name": "Germany", "year": 2023, "emissions_tonnes": 123.0}}}, nil
		},
	})
	require.NoError(t, err)
	return r
}

func TestLoopSimpleQueryThenFinalAnswer(t *testing.T) {
	srv := scriptedServer(t, []string{
		`{"tool": "query", "args": {"file_id": "transport-country-year"}}`,
		"Transport emissions in Germany in 2023 were 123 tonnes.",
	})
	defer srv.Close()

	client := New(DefaultConfig(srv.URL, "u", "p"))
	registry := testRegistryWithQueryTool(t)
	loop := NewLoop(client, registry, 6)

	result, err := loop.Run(context.Background(), "What were transport emissions in Germany in 2023?", intent.PersonaAnalyst)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "123")
	assert.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "query", result.ToolCalls[0].Tool)
	assert.False(t, result.BudgetExhausted)
}

func TestLoopConceptualQuestionNoToolCalls(t *testing.T) {
	srv := scriptedServer(t, []string{
		"The Paris Agreement is an international treaty on climate change.",
	})
	defer srv.Close()

	client := New(DefaultConfig(srv.URL, "u", "p"))
	registry := toolsurface.NewRegistry()
	loop := NewLoop(client, registry, 6)

	result, err := loop.Run(context.Background(), "What is the Paris Agreement?", intent.PersonaStudent)
	require.NoError(t, err)
	assert.Empty(t, result.ToolCalls)
	assert.Contains(t, result.Answer, "Paris Agreement")
}

func TestLoopUnknownToolAppendsErrorAndContinues(t *testing.T) {
	srv := scriptedServer(t, []string{
		`{"tool": "not_a_real_tool", "args": {}}`,
		"Final answer after correction.",
	})
	defer srv.Close()

	client := New(DefaultConfig(srv.URL, "u", "p"))
	registry := testRegistryWithQueryTool(t)
	loop := NewLoop(client, registry, 6)

	result, err := loop.Run(context.Background(), "anything", intent.PersonaAnalyst)
	require.NoError(t, err)
	assert.Equal(t, "Final answer after correction.", result.Answer)
}

func TestLoopBudgetExhaustionSetsFlag(t *testing.T) {
	srv := scriptedServer(t, []string{
		`{"tool": "query", "args": {"file_id": "transport-country-year"}}`,
	})
	defer srv.Close()

	client := New(DefaultConfig(srv.URL, "u", "p"))
	registry := testRegistryWithQueryTool(t)
	loop := NewLoop(client, registry, 2)

	result, err := loop.Run(context.Background(), "anything", intent.PersonaAnalyst)
	require.NoError(t, err)
	assert.True(t, result.BudgetExhausted)
	assert.Len(t, result.ToolCalls, 2)
}

func TestLoopMissingRequiredArgAppendsError(t *testing.T) {
	srv := scriptedServer(t, []string{
		`{"tool": "query", "args": {}}`,
		"Final answer.",
	})
	defer srv.Close()

	client := New(DefaultConfig(srv.URL, "u", "p"))
	registry := testRegistryWithQueryTool(t)
	loop := NewLoop(client, registry, 6)

	result, err := loop.Run(context.Background(), "anything", intent.PersonaAnalyst)
	require.NoError(t, err)
	assert.Equal(t, "Final answer.", result.Answer)
	assert.Empty(t, result.ToolCalls)
}
