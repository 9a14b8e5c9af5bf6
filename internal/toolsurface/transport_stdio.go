package toolsurface

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// rpcRequest is a newline-delimited JSON-RPC 2.0 request, the same
// envelope shape the teacher's MCP client speaks, inverted here to be
// read rather than written.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *rpcErrorBody `json:"error,omitempty"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// StdioServer serves one Registry over newline-delimited JSON-RPC on a
// pair of byte streams: "tools/list" enumerates the schema table,
// "tools/call" dispatches by name.
type StdioServer struct {
	registry *Registry
	logger   *zap.Logger
}

// NewStdioServer builds a StdioServer over registry.
func NewStdioServer(registry *Registry, logger *zap.Logger) *StdioServer {
	return &StdioServer{registry: registry, logger: logger}
}

// Serve reads one JSON-RPC request per line from r and writes one
// response per line to w, until r is exhausted or ctx is cancelled.
func (s *StdioServer) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req rpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("malformed stdio request", zap.Error(err))
			continue
		}

		resp := s.handle(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("writing stdio response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *StdioServer) handle(ctx context.Context, req rpcRequest) rpcResponse {
	switch req.Method {
	case "tools/list":
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: listResult(s.registry)}
	case "tools/call":
		var p callParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return errorResponse(req.ID, err)
		}
		result, err := s.registry.Call(ctx, p.Name, p.Arguments)
		if err != nil {
			return errorResponse(req.ID, err)
		}
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	default:
		return errorResponse(req.ID, fmt.Errorf("unknown method %q", req.Method))
	}
}

func listResult(r *Registry) any {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Schema      Schema `json:"schema"`
	}
	tools := make([]entry, 0, len(r.List()))
	for _, t := range r.List() {
		tools = append(tools, entry{Name: t.Name, Description: t.Description, Schema: t.Schema})
	}
	return map[string]any{"tools": tools}
}

func errorResponse(id int, err error) rpcResponse {
	code := -32000
	if errors.Is(err, ErrToolNotFound) {
		code = -32601
	}
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcErrorBody{Code: code, Message: err.Error()}}
}
