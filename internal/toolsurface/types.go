// Package toolsurface exposes the Query Engine's operations as a single
// declarative tool schema table, consumed identically by a stdio
// JSON-RPC transport, an HTTP façade and the LLM Orchestrator's tool-use
// prompt. Every surface reads the same []ToolDef: the schema a caller
// sees over stdio is byte-identical to the schema compiled into the
// system prompt.
package toolsurface

import (
	"context"
	"encoding/json"
)

// Property describes one parameter of a tool's JSON schema, mirroring
// the shape a JSON-Schema-aware LLM tool-calling API expects.
type Property struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Items       *PropertyItems `json:"items,omitempty"`
	Enum        []string       `json:"enum,omitempty"`
}

// PropertyItems describes the element schema for an array-typed
// property.
type PropertyItems struct {
	Type string `json:"type"`
}

// Schema is the JSON schema for one tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc runs a tool against already-decoded JSON arguments and
// returns a JSON-serialisable result.
type ExecuteFunc func(ctx context.Context, args json.RawMessage) (any, error)

// ToolDef is one entry in the shared tool table.
type ToolDef struct {
	Name        string
	Description string
	Schema      Schema
	Execute     ExecuteFunc
}
