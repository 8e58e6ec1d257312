package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/basefolk/supabase-mcp/internal/common"
)

// sseConnectTimeout is how long the SSE variant waits for the first client
// session before giving up on startup.
const sseConnectTimeout = 30 * time.Second

// Server wraps the mcp-go server with the refresh notifier hook and the
// two transports.
type Server struct {
	mcpServer *server.MCPServer
	refresh   *Notifier
	logger    *common.Logger

	connectOnce sync.Once
	connected   chan struct{}
}

// NewServer creates the MCP server shell. Tools are attached afterwards
// with RegisterTools.
func NewServer(name, version string, refresh *Notifier, logger *common.Logger) *Server {
	s := &Server{
		refresh:   refresh,
		logger:    logger,
		connected: make(chan struct{}),
	}

	hooks := &server.Hooks{}
	hooks.AddAfterListTools(func(ctx context.Context, id any, message *mcp.ListToolsRequest, result *mcp.ListToolsResult) {
		refresh.Notify()
	})
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session", session.SessionID()).Msg("client session registered")
		s.connectOnce.Do(func() { close(s.connected) })
	})

	s.mcpServer = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)
	return s
}

// RegisterTools attaches every registry tool so that transport calls route
// through Dispatch.
func (s *Server) RegisterTools(r *Registry) {
	for _, tool := range r.Tools() {
		s.mcpServer.AddTool(tool, r.HandlerFor(tool.Name))
	}
}

// NotifyApprovalRequested implements ApprovalNotifier by broadcasting an
// MCP notification to every connected client.
func (s *Server) NotifyApprovalRequested(id, tool, description string, arguments map[string]interface{}) {
	s.mcpServer.SendNotificationToAllClients("notifications/approval/requested", map[string]any{
		"id":          id,
		"tool":        tool,
		"description": description,
		"arguments":   arguments,
	})
}

// ServeStdio runs the stdio transport. Blocks until the stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE runs the SSE transport on the given port, mounting the approval
// resolution endpoint on the same mux. Startup fails if no client session
// registers within the connection timeout.
func (s *Server) ServeSSE(port string, gate *Gate) error {
	sse := server.NewSSEServer(s.mcpServer)

	mux := http.NewServeMux()
	mux.Handle("/", sse)
	if gate != nil {
		mux.HandleFunc("/approvals/", s.handleApprovalResolution(gate))
	}

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info().Str("port", port).Msg("sse transport listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("sse server failed: %w", err)
	case <-time.After(sseConnectTimeout):
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		return fmt.Errorf("no client connected within %s", sseConnectTimeout)
	case <-s.connected:
	}

	return <-errCh
}

// handleApprovalResolution resolves a pending approval ticket:
// POST /approvals/{id} with {"approved": bool}.
func (s *Server) handleApprovalResolution(gate *Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/approvals/")
		if id == "" || strings.Contains(id, "/") {
			http.Error(w, "missing approval id", http.StatusBadRequest)
			return
		}

		var body struct {
			Approved bool `json:"approved"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		if !gate.Resolve(id, body.Approved) {
			http.Error(w, "unknown or already resolved approval", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"resolved": true, "approved": body.Approved})
	}
}
