package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"edgarqa/internal/intent"
	"edgarqa/internal/toolsurface"
)

// maxObservationBytes bounds how much of a tool result is fed back
// into the conversation, per spec.md §4.8 step 5's "truncated to a
// safe size".
const maxObservationBytes = 4000

// ToolCallRecord is one executed step of the loop, kept so the
// Response Assembler can cite which datasets backed an answer.
type ToolCallRecord struct {
	Tool   string
	Args   json.RawMessage
	Result any
	Err    error
}

// Result is what the Orchestrator hands to the Response Assembler.
type Result struct {
	Answer          string
	ToolCalls       []ToolCallRecord
	BudgetExhausted bool
}

// Loop drives the bounded tool-use state machine.
type Loop struct {
	client   *Client
	registry *toolsurface.Registry
	budget   int
}

// NewLoop builds a Loop with the given call budget (spec.md §4.8's
// default is 6).
func NewLoop(client *Client, registry *toolsurface.Registry, budget int) *Loop {
	if budget <= 0 {
		budget = 6
	}
	return &Loop{client: client, registry: registry, budget: budget}
}

// Run drives the loop for one question and returns either a final
// answer or, on budget exhaustion, the best available summary with
// BudgetExhausted set.
func (l *Loop) Run(ctx context.Context, question string, persona intent.Persona) (Result, error) {
	messages := []Message{
		{Role: "system", Content: buildSystemPrompt(persona, l.registry)},
		{Role: "user", Content: question},
	}

	var calls []ToolCallRecord
	var lastAssistantText string

	for i := 0; i < l.budget; i++ {
		reply, err := completeWithRetry(ctx, defaultRetry, func(ctx context.Context) (string, error) {
			return l.client.Complete(ctx, messages)
		})
		if err != nil {
			return Result{}, err
		}
		messages = append(messages, Message{Role: "assistant", Content: reply})

		toolName, args, isToolCall := parseToolCall(reply)
		if !isToolCall {
			return Result{Answer: reply, ToolCalls: calls}, nil
		}
		lastAssistantText = reply

		def := l.registry.Get(toolName)
		if def == nil {
			messages = append(messages, Message{
				Role:    "user",
				Content: fmt.Sprintf("error: unknown tool %q, choose one from the tool catalog", toolName),
			})
			continue
		}

		if missing := missingRequired(def.Schema, args); len(missing) > 0 {
			messages = append(messages, Message{
				Role:    "user",
				Content: fmt.Sprintf("error: call to %q is missing required argument(s): %v", toolName, missing),
			})
			continue
		}

		record := ToolCallRecord{Tool: toolName, Args: args}
		result, callErr := l.registry.Call(ctx, toolName, args)
		if callErr != nil {
			record.Err = callErr
			messages = append(messages, Message{
				Role:    "user",
				Content: fmt.Sprintf("error calling %s: %s", toolName, callErr.Error()),
			})
		} else {
			record.Result = result
			messages = append(messages, Message{Role: "user", Content: renderObservation(result)})
		}
		calls = append(calls, record)
	}

	return Result{
		Answer:          summariseOnExhaustion(lastAssistantText, calls),
		ToolCalls:       calls,
		BudgetExhausted: true,
	}, nil
}

// toolCallEnvelope is the wire shape the model is instructed to emit
// for a tool call.
type toolCallEnvelope struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

// parseToolCall decides whether reply is a tool-call request or a
// final answer. Per spec.md §4.8 step 5, anything that isn't valid
// JSON is a final-answer candidate; valid JSON naming a "tool" field
// is a tool-call attempt, valid or not.
func parseToolCall(reply string) (tool string, args json.RawMessage, isToolCall bool) {
	var env toolCallEnvelope
	if err := json.Unmarshal([]byte(reply), &env); err != nil {
		return "", nil, false
	}
	if env.Tool == "" {
		return "", nil, false
	}
	if env.Args == nil {
		env.Args = json.RawMessage("{}")
	}
	return env.Tool, env.Args, true
}

// missingRequired does a syntactic presence check of schema.Required
// against args, catching an obviously malformed call before it
// reaches the Tool Surface. It is not a full JSON-schema validator;
// the Query Engine's own validation (internal/query/validate.go) is
// the authoritative check on types and ranges.
func missingRequired(schema toolsurface.Schema, args json.RawMessage) []string {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(args, &parsed); err != nil {
		return schema.Required
	}
	var missing []string
	for _, name := range schema.Required {
		if _, ok := parsed[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func renderObservation(result any) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("error: could not encode tool result: %v", err)
	}
	if len(encoded) > maxObservationBytes {
		encoded = append(encoded[:maxObservationBytes], []byte("...(truncated)")...)
	}
	return string(encoded)
}

func summariseOnExhaustion(lastAssistantText string, calls []ToolCallRecord) string {
	if lastAssistantText != "" {
		if _, _, isToolCall := parseToolCall(lastAssistantText); !isToolCall {
			return lastAssistantText
		}
	}
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Err == nil && calls[i].Result != nil {
			return fmt.Sprintf("Reached the tool-call budget before a final answer could be composed. The last successful call was %q; its result is available but not yet summarised.", calls[i].Tool)
		}
	}
	return "Reached the tool-call budget without retrieving any data."
}
