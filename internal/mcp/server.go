// Package mcp exposes the impact engine as an MCP server speaking JSON-RPC
// over stdio. One request per line in, one response per line out.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/engine"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

const (
	serverName      = "aos-mcp"
	protocolVersion = "2024-11-05"
)

// Version is stamped at build time via ldflags.
var Version = "dev"

// JSON-RPC error codes. codeUnavailable marks store failures the caller may
// retry with backoff; codeInvalidParams covers malformed scenario keys.
const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeUnavailable    = -32000
)

// JSONRPCRequest represents a standard MCP/JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard MCP/JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server holds the state for the MCP server.
type Server struct {
	engine *engine.Engine
	in     io.Reader
	out    io.Writer
}

// NewServer creates an MCP server over stdio.
func NewServer(eng *engine.Engine) *Server {
	return &Server{engine: eng, in: os.Stdin, out: os.Stdout}
}

// NewServerWithIO creates an MCP server over explicit streams, used in tests.
func NewServerWithIO(eng *engine.Engine, in io.Reader, out io.Writer) *Server {
	return &Server{engine: eng, in: in, out: out}
}

// Serve starts the JSON-RPC loop. It returns when the input stream closes.
func (s *Server) Serve(ctx context.Context) error {
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req JSONRPCRequest) {
	requestID := uuid.NewString()
	log.Debug().Str("request_id", requestID).Str("method", req.Method).Msg("Handling request")

	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": Version,
			},
		}
	case "notifications/initialized":
		return
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(ctx, requestID, req.Params)
	default:
		errRes = rpcError(codeMethodNotFound, fmt.Sprintf("Method %s not found", req.Method))
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.out, "%s\n", out)
}

func rpcError(code int, message string) map[string]interface{} {
	return map[string]interface{}{"code": code, "message": message}
}

// toolError translates engine errors into JSON-RPC errors. Invalid scenario
// keys are the caller's mistake; unavailable data is retryable.
func toolError(err error) map[string]interface{} {
	switch {
	case errors.Is(err, scenario.ErrInvalidKey):
		return rpcError(codeInvalidParams, err.Error())
	case errors.Is(err, scenario.ErrDataUnavailable):
		return rpcError(codeUnavailable, err.Error()+" (retryable)")
	default:
		return rpcError(codeUnavailable, err.Error())
	}
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func (s *Server) textContent(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}
}
