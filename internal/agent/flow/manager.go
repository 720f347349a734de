package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/intakeflow/server/internal/agent/model"
	logx "github.com/intakeflow/server/pkg/logger"
)

var (
	// ErrNotInitialized is returned when a tool call arrives before Initialize.
	ErrNotInitialized = errors.New("flow manager not initialized")
	// ErrFlowEnded is returned for tool calls after the terminal node.
	ErrFlowEnded = errors.New("conversation flow already ended")
	// ErrUnknownTool marks an invocation of a tool the current node does not declare.
	ErrUnknownTool = errors.New("tool not declared on current node")
	// ErrMissingArgument marks an invocation missing a required argument.
	ErrMissingArgument = errors.New("required tool argument missing")
	// ErrBadArguments marks an invocation whose argument payload is not valid JSON.
	ErrBadArguments = errors.New("tool arguments are not valid JSON")
)

// Manager is the conversation-flow engine for a single call. It holds the
// current node and the patient record, dispatches tool invocations to the
// matching handler, and adopts the handler's returned node. One manager
// serves one call; all calls into it happen on the session's single
// control flow, so it carries no locking.
type Manager struct {
	sessionID string
	current   *NodeConfig
	record    *model.PatientRecord
	onEnd     func()
	ended     bool
}

// NewManager creates a flow manager for one call. onEnd fires exactly once,
// when a transition enters a terminal node; it may be nil.
func NewManager(sessionID string, onEnd func()) *Manager {
	return &Manager{
		sessionID: sessionID,
		record:    &model.PatientRecord{},
		onEnd:     onEnd,
	}
}

// Initialize installs the entry node. It must be called once, when the first
// participant connects, before any tool call is handled.
func (m *Manager) Initialize(entry *NodeConfig) error {
	if m.current != nil {
		return fmt.Errorf("flow manager already initialized with node %q", m.current.Name)
	}
	if entry == nil {
		return errors.New("entry node is nil")
	}
	m.current = entry
	logx.Debug().Str("session_id", m.sessionID).Str("node", entry.Name).Msg("Flow initialized")
	return nil
}

// CurrentNode returns the node the conversation currently sits on.
func (m *Manager) CurrentNode() *NodeConfig {
	return m.current
}

// Record returns the patient record accumulated so far.
func (m *Manager) Record() *model.PatientRecord {
	return m.record
}

// Done reports whether the terminal node has been entered.
func (m *Manager) Done() bool {
	return m.ended
}

// ToolInfos exposes exactly the current node's tool schemas; the model can
// never be shown a tool that is not attached to the current node.
func (m *Manager) ToolInfos() []*schema.ToolInfo {
	if m.current == nil {
		return nil
	}
	return m.current.ToolInfos()
}

// ContextMessages returns the prompt messages to present for the current
// node: the entry node's role messages (when on the entry node) followed by
// the node's task messages.
func (m *Manager) ContextMessages() []*schema.Message {
	if m.current == nil {
		return nil
	}
	msgs := make([]*schema.Message, 0, len(m.current.RoleMessages)+len(m.current.TaskMessages))
	msgs = append(msgs, m.current.RoleMessages...)
	msgs = append(msgs, m.current.TaskMessages...)
	return msgs
}

// HandleToolCall validates and dispatches one tool invocation from the model
// and returns the handler's result payload serialized for the tool message.
//
// Contract violations (undeclared tool, malformed or incomplete arguments)
// are rejected before dispatch: neither the record nor the current node
// changes, so the same node is re-presented on the next model turn.
func (m *Manager) HandleToolCall(ctx context.Context, name string, rawArgs string) (string, error) {
	if m.current == nil {
		return "", ErrNotInitialized
	}
	if m.ended || m.current.Terminal() {
		return "", ErrFlowEnded
	}

	tool, ok := m.current.tool(name)
	if !ok {
		logx.Warn().
			Str("session_id", m.sessionID).
			Str("node", m.current.Name).
			Str("tool", name).
			Msg("Rejected tool call not declared on current node")
		return "", fmt.Errorf("%w: %s (node %s)", ErrUnknownTool, name, m.current.Name)
	}

	args := Args{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			logx.Warn().
				Str("session_id", m.sessionID).
				Str("tool", name).
				Err(err).
				Msg("Rejected tool call with malformed arguments")
			return "", fmt.Errorf("%w: %s", ErrBadArguments, name)
		}
	}
	for pname, pinfo := range tool.Params {
		if !pinfo.Required {
			continue
		}
		if v, ok := args[pname]; !ok || v == nil {
			logx.Warn().
				Str("session_id", m.sessionID).
				Str("tool", name).
				Str("argument", pname).
				Msg("Rejected tool call with missing required argument")
			return "", fmt.Errorf("%w: %s.%s", ErrMissingArgument, name, pname)
		}
	}

	result, next, err := tool.Handler(ctx, args, m.record)
	if err != nil {
		// Handler faults leave the node in place so the turn can be retried.
		logx.Error().
			Str("session_id", m.sessionID).
			Str("tool", name).
			Err(err).
			Msg("Tool handler failed")
		return "", err
	}
	if next == nil {
		return "", fmt.Errorf("handler for %s returned no next node", name)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result of %s: %w", name, err)
	}

	logx.Debug().
		Str("session_id", m.sessionID).
		Str("tool", name).
		Str("from", m.current.Name).
		Str("to", next.Name).
		Msg("Flow transition")

	m.current = next
	if next.Terminal() && !m.ended {
		m.ended = true
		if m.onEnd != nil {
			m.onEnd()
		}
	}

	return string(payload), nil
}
