package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/basefolk/supabase-mcp/internal/common"
)

// ticketIDLength is the length of generated approval ticket ids.
const ticketIDLength = 12

// ApprovalNotifier pushes an approval request to connected clients. The SSE
// server implements this via an MCP notification.
type ApprovalNotifier interface {
	NotifyApprovalRequested(id, tool, description string, arguments map[string]interface{})
}

// Gate holds tool calls until a human approves or denies them. Each pending
// call is a one-shot ticket: the first Resolve wins, later resolutions of
// the same id are no-ops.
type Gate struct {
	mu       sync.Mutex
	pending  map[string]chan bool
	notifier ApprovalNotifier
	logger   *common.Logger
}

// NewGate creates an approval gate. notifier may be nil, in which case
// requests are only audit-logged.
func NewGate(notifier ApprovalNotifier, logger *common.Logger) *Gate {
	return &Gate{
		pending:  make(map[string]chan bool),
		notifier: notifier,
		logger:   logger,
	}
}

// Request registers a pending approval for the call and blocks until it is
// resolved or ctx is cancelled. The returned bool is the decision.
func (g *Gate) Request(ctx context.Context, tool string, arguments map[string]interface{}) (bool, error) {
	id, err := gonanoid.New(ticketIDLength)
	if err != nil {
		return false, fmt.Errorf("failed to generate approval id: %w", err)
	}

	ch := make(chan bool, 1)
	g.mu.Lock()
	g.pending[id] = ch
	g.mu.Unlock()

	// The audit line and the client notification both go out before any
	// resolution can land on the channel.
	args, _ := json.Marshal(arguments)
	g.logger.Info().
		Str("approval_id", id).
		Str("tool", tool).
		Str("arguments", string(args)).
		Msg("approval requested")

	if g.notifier != nil {
		g.notifier.NotifyApprovalRequested(id, tool, describeCall(tool, arguments), arguments)
	}

	select {
	case approved := <-ch:
		return approved, nil
	case <-ctx.Done():
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
		return false, fmt.Errorf("approval for %s abandoned: %w", tool, ctx.Err())
	}
}

// Resolve decides a pending ticket. Returns false when the id is unknown or
// was already resolved.
func (g *Gate) Resolve(id string, approved bool) bool {
	g.mu.Lock()
	ch, ok := g.pending[id]
	if ok {
		delete(g.pending, id)
	}
	g.mu.Unlock()

	if !ok {
		return false
	}

	ch <- approved
	g.logger.Info().Str("approval_id", id).Bool("approved", approved).Msg("approval resolved")
	return true
}

// PendingIDs returns the ids of unresolved tickets.
func (g *Gate) PendingIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.pending))
	for id := range g.pending {
		ids = append(ids, id)
	}
	return ids
}

// describeCall derives a one-line human description for the notification.
func describeCall(tool string, arguments map[string]interface{}) string {
	for _, key := range []string{"table", "bucket", "name", "user_id", "project_id", "organization_id", "email"} {
		if v, ok := arguments[key].(string); ok && v != "" {
			return fmt.Sprintf("%s on %s %q", tool, key, v)
		}
	}
	return tool
}
