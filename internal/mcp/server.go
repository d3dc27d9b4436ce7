/*
Package mcp implements the stdio JSON-RPC server that exposes the calculator as tools.

The server reads one JSON-RPC 2.0 request per line and exposes 3 tools:
  - geometry_compute: Compute the metrics of one shape and log the calculation
  - geometry_stats: Aggregated statistics over the calculation history
  - geometry_shapes: List supported shapes with their parameters
*/
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/khanglvm/geocalc/internal/calc"
)

const (
	protocolVersion = "2024-11-05"

	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000

	maxLineSize = 1 << 20
)

// Options configures a Server.
type Options struct {
	Version string
	Logger  zerolog.Logger
}

// Server answers JSON-RPC requests using a Calculator.
type Server struct {
	calc    *calc.Calculator
	version string
	logger  zerolog.Logger

	writeMu sync.Mutex
}

// NewServer creates a server backed by c.
func NewServer(c *calc.Calculator, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{
		calc:    c,
		version: opts.Version,
		logger:  opts.Logger.With().Str("component", "mcp").Logger(),
	}
}

// Run serves requests from r and writes responses to w.
// It returns when r reaches EOF or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	s.logger.Info().Str("session", s.calc.SessionID()).Msg("server started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}

			response, err := s.handleRequest(ctx, line)
			if err != nil {
				s.sendError(w, err)
				continue
			}
			if response != nil {
				s.sendResponse(w, response)
			}
		}
	}
}

// MCPRequest represents an incoming JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes one request. Notifications get no response.
func (s *Server) handleRequest(ctx context.Context, data []byte) (*MCPResponse, error) {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req), nil
	case "tools/list":
		return s.handleToolsList(&req), nil
	case "tools/call":
		return s.handleToolsCall(ctx, &req), nil
	case "ping":
		return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}, nil
	}

	if req.ID == nil {
		// notifications/initialized and friends
		return nil, nil
	}
	return errorResponse(req.ID, codeMethodNotFound, "Method not found"), nil
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "geocalc",
				"version": s.version,
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": toolDefinitions(),
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}

	var (
		result string
		err    error
	)
	switch params.Name {
	case "geometry_compute":
		result, err = s.execCompute(ctx, params.Arguments)
	case "geometry_stats":
		result, err = s.execStats(ctx, params.Arguments)
	case "geometry_shapes":
		result, err = s.execShapes()
	default:
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	if err != nil {
		code := codeToolFailed
		if isInvalidArgument(err) {
			code = codeInvalidParams
		}
		s.logger.Debug().Err(err).Str("tool", params.Name).Msg("tool call failed")
		return errorResponse(req.ID, code, err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func errorResponse(id interface{}, code int, message string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message},
	}
}

// sendResponse writes one response line.
func (s *Server) sendResponse(w io.Writer, resp *MCPResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintln(w, string(data))
}

// sendError writes a parse error response.
func (s *Server) sendError(w io.Writer, err error) {
	s.sendResponse(w, errorResponse(nil, codeParseError, err.Error()))
}
