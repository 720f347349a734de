// Package session runs the model-invocation loop for one intake call: it
// presents the current node's prompts and tool schemas to the chat model,
// routes the model's tool calls through the flow manager, and surfaces the
// model's spoken replies.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/intakeflow/server/internal/agent/flow"
	"github.com/intakeflow/server/internal/agent/model"
	"github.com/intakeflow/server/internal/agent/nodes"
	logx "github.com/intakeflow/server/pkg/logger"
)

const defaultMaxToolRounds = 8

// Config wires one call's session together.
type Config struct {
	SessionID   string
	ChatModel   einomodel.ToolCallingChatModel
	ModelName   string
	Nodes       *nodes.Builder
	Transcripts model.TranscriptRepository

	// MaxToolRounds caps tool-dispatch iterations within a single caller
	// turn, guarding against a model stuck emitting tool calls. The address
	// retry loop spans caller turns and is deliberately not bounded by this.
	MaxToolRounds int
}

// Session owns the sequential control flow of one call. It is not safe for
// concurrent use; each call gets its own instance and they share nothing.
type Session struct {
	id            string
	chatModel     einomodel.ToolCallingChatModel
	modelName     string
	nodes         *nodes.Builder
	flow          *flow.Manager
	transcripts   model.TranscriptRepository
	maxToolRounds int

	roleMsgs []*schema.Message
	history  []*schema.Message

	toolCallIDSeq int
	totalCostUSD  float64
	done          chan struct{}
}

func New(cfg Config) *Session {
	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	s := &Session{
		id:            cfg.SessionID,
		chatModel:     cfg.ChatModel,
		modelName:     cfg.ModelName,
		nodes:         cfg.Nodes,
		transcripts:   cfg.Transcripts,
		maxToolRounds: maxRounds,
		done:          make(chan struct{}),
	}
	s.flow = flow.NewManager(cfg.SessionID, func() { close(s.done) })
	return s
}

// Record returns the patient record accumulated so far.
func (s *Session) Record() *model.PatientRecord {
	return s.flow.Record()
}

// Done is closed when the flow enters its terminal node. The caller should
// deliver the final reply before tearing the call down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start installs the entry node and produces the opening line. It must be
// called once, when the first participant connects.
func (s *Session) Start(ctx context.Context) (string, error) {
	entry := s.nodes.Initial()
	if err := s.flow.Initialize(entry); err != nil {
		return "", err
	}
	s.roleMsgs = entry.RoleMessages

	logx.Info().Str("session_id", s.id).Msg("Session started")
	return s.turn(ctx)
}

// ProcessUtterance feeds one transcribed caller utterance through the model
// loop and returns the text to speak back.
func (s *Session) ProcessUtterance(ctx context.Context, text string) (string, error) {
	if s.flow.CurrentNode() == nil {
		return "", flow.ErrNotInitialized
	}
	if s.flow.Done() {
		return "", flow.ErrFlowEnded
	}

	userMsg := schema.UserMessage(text)
	s.history = append(s.history, userMsg)
	s.appendTranscript(ctx, userMsg)

	return s.turn(ctx)
}

// turn invokes the model until it produces speakable text, dispatching any
// tool calls it emits along the way. Each dispatch may advance the flow, so
// the tool set is re-derived from the current node on every iteration.
func (s *Session) turn(ctx context.Context) (string, error) {
	for round := 0; round <= s.maxToolRounds; round++ {
		out, err := s.generate(ctx)
		if err != nil {
			return "", err
		}
		s.logUsage(out)
		s.normalizeToolCallIDs(out)
		s.history = append(s.history, out)

		if len(out.ToolCalls) == 0 {
			logx.Debug().Str("session_id", s.id).Msg("AI response ready")
			if strings.TrimSpace(out.Content) != "" {
				s.appendTranscript(ctx, out)
			}
			return out.Content, nil
		}

		logx.Debug().Str("session_id", s.id).Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		for _, tc := range out.ToolCalls {
			payload, err := s.flow.HandleToolCall(ctx, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				if isContractViolation(err) {
					// The node was not advanced; echo the rejection so the
					// model can correct itself against the same tool set.
					payload = fmt.Sprintf(`{"error":%q}`, err.Error())
				} else {
					return "", err
				}
			}
			toolMsg := schema.ToolMessage(payload, tc.ID, schema.WithToolName(tc.Function.Name))
			s.history = append(s.history, toolMsg)
			s.appendTranscript(ctx, toolMsg)
		}
	}
	return "", fmt.Errorf("tool round limit (%d) exceeded for session %s", s.maxToolRounds, s.id)
}

func isContractViolation(err error) bool {
	return errors.Is(err, flow.ErrUnknownTool) ||
		errors.Is(err, flow.ErrMissingArgument) ||
		errors.Is(err, flow.ErrBadArguments)
}

// generate assembles the context for the current node and invokes the model
// with exactly that node's tool schemas bound.
func (s *Session) generate(ctx context.Context) (*schema.Message, error) {
	node := s.flow.CurrentNode()

	msgs := make([]*schema.Message, 0, len(s.roleMsgs)+len(s.history)+len(node.TaskMessages))
	msgs = append(msgs, s.roleMsgs...)
	msgs = append(msgs, s.history...)
	msgs = append(msgs, node.TaskMessages...)

	cm := s.chatModel
	if infos := s.flow.ToolInfos(); len(infos) > 0 {
		var err error
		cm, err = s.chatModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("bind tools for node %s: %w", node.Name, err)
		}
	}

	return cm.Generate(ctx, msgs)
}

// normalizeToolCallIDs synthesizes tool_call IDs when the provider omits
// them (seen with Gemini's OpenAI compatibility layer).
func (s *Session) normalizeToolCallIDs(out *schema.Message) {
	for i := range out.ToolCalls {
		if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
			s.toolCallIDSeq++
			out.ToolCalls[i].ID = fmt.Sprintf("call_%d", s.toolCallIDSeq)
		}
	}
}

// logUsage records token usage and cost for one model invocation.
func (s *Session) logUsage(out *schema.Message) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(s.modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	s.totalCostUSD += totalC

	logx.Debug().
		Str("session_id", s.id).
		Str("model", s.modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", s.totalCostUSD).
		Msg("LLM usage")
}

// appendTranscript is best effort; a transcript write failure never disturbs
// the conversation.
func (s *Session) appendTranscript(ctx context.Context, msg *schema.Message) {
	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.AddMessage(ctx, s.id, msg); err != nil {
		logx.Error().Err(err).Str("session_id", s.id).Msg("Failed to record transcript message")
	}
}
