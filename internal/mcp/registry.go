package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/basefolk/supabase-mcp/internal/common"
)

// ToolDef pairs a tool descriptor with its handler.
type ToolDef struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Registry is the dispatch table for all tools. It validates required
// arguments from the descriptor schema and runs the approval gate before
// any handler (and therefore any collaborator) is invoked.
type Registry struct {
	defs   map[string]ToolDef
	order  []string
	gate   *Gate
	logger *common.Logger
}

// NewRegistry creates a registry. gate may be nil, in which case calls
// dispatch directly (the stdio transport).
func NewRegistry(gate *Gate, logger *common.Logger) *Registry {
	return &Registry{
		defs:   make(map[string]ToolDef),
		gate:   gate,
		logger: logger,
	}
}

// Add registers a tool. Later registrations of the same name replace the
// earlier definition without changing its catalog position.
func (r *Registry) Add(tool mcp.Tool, handler server.ToolHandlerFunc) {
	if _, exists := r.defs[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.defs[tool.Name] = ToolDef{Tool: tool, Handler: handler}
}

// Tools returns the descriptors in registration order.
func (r *Registry) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.defs[name].Tool)
	}
	return tools
}

// Dispatch routes one tool call. Every failure mode comes back as an
// isError result; the error return is always nil so the MCP channel
// itself never faults.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	log := r.logger.WithCorrelationId(uuid.New().String())

	def, ok := r.defs[name]
	if !ok {
		log.Warn().Str("tool", name).Msg("unknown tool")
		return errorResult(fmt.Sprintf("Error: unknown tool %q", name)), nil
	}

	if missing := missingRequired(def.Tool, args); len(missing) > 0 {
		log.Warn().Str("tool", name).Str("missing", strings.Join(missing, ",")).Msg("missing required parameters")
		return errorResult(fmt.Sprintf("Error: missing required parameters: %s", strings.Join(missing, ", "))), nil
	}

	rawArgs, _ := json.Marshal(args)
	log.Info().Str("tool", name).Str("arguments", string(rawArgs)).Msg("tool call")

	if r.gate != nil {
		approved, err := r.gate.Request(ctx, name, args)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if !approved {
			log.Info().Str("tool", name).Msg("call denied")
			return errorResult(fmt.Sprintf("Error: call to %q denied by user", name)), nil
		}
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return def.Handler(ctx, request)
}

// HandlerFor wraps Dispatch for registration with the mcp-go server, so
// every call arriving over a transport passes through the same path.
func (r *Registry) HandlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return r.Dispatch(ctx, name, request.GetArguments())
	}
}

// missingRequired returns the required fields absent (or null) in args,
// in the order the descriptor declares them.
func missingRequired(tool mcp.Tool, args map[string]interface{}) []string {
	var missing []string
	for _, field := range tool.InputSchema.Required {
		if v, ok := args[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	return missing
}
