package flow

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakeflow/server/internal/agent/model"
)

// twoStepGraph returns an entry node whose single tool writes the name and
// advances to a terminal node.
func twoStepGraph() (*NodeConfig, *NodeConfig) {
	end := &NodeConfig{
		Name:        "end",
		PostActions: []PostAction{{Type: ActionEndConversation}},
	}
	entry := &NodeConfig{
		Name: "greet",
		Tools: []Tool{
			NewTool("record_name", "record the caller's name",
				map[string]*schema.ParameterInfo{
					"name": {Type: schema.String, Required: true},
				},
				func(ctx context.Context, args Args, rec *model.PatientRecord) (any, *NodeConfig, error) {
					rec.Name = args.String("name")
					return model.NameCollectionResult{Name: rec.Name}, end, nil
				}),
		},
	}
	return entry, end
}

func TestHandleToolCallBeforeInitialize(t *testing.T) {
	m := NewManager("s1", nil)
	_, err := m.HandleToolCall(context.Background(), "record_name", `{"name":"x"}`)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitializeTwice(t *testing.T) {
	entry, _ := twoStepGraph()
	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(entry))
	assert.Error(t, m.Initialize(entry))
}

func TestUnknownToolRejectedWithoutMutation(t *testing.T) {
	entry, _ := twoStepGraph()
	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(entry))

	_, err := m.HandleToolCall(context.Background(), "record_address", `{"address":"x"}`)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, "greet", m.CurrentNode().Name)
	assert.Empty(t, m.Record().Name)
	assert.False(t, m.Done())
}

func TestMissingRequiredArgumentRejected(t *testing.T) {
	entry, _ := twoStepGraph()
	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(entry))

	for _, raw := range []string{`{}`, `{"name":null}`, ""} {
		_, err := m.HandleToolCall(context.Background(), "record_name", raw)
		assert.ErrorIs(t, err, ErrMissingArgument, "args=%q", raw)
	}
	assert.Equal(t, "greet", m.CurrentNode().Name)
	assert.Empty(t, m.Record().Name)
}

func TestMalformedArgumentsRejected(t *testing.T) {
	entry, _ := twoStepGraph()
	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(entry))

	_, err := m.HandleToolCall(context.Background(), "record_name", `{not json`)
	assert.ErrorIs(t, err, ErrBadArguments)
	assert.Equal(t, "greet", m.CurrentNode().Name)
}

func TestDispatchTransitionsAndEchoesResult(t *testing.T) {
	entry, _ := twoStepGraph()
	var ended int
	m := NewManager("s1", func() { ended++ })
	require.NoError(t, m.Initialize(entry))

	payload, err := m.HandleToolCall(context.Background(), "record_name", `{"name":"Jane Doe"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jane Doe"}`, payload)
	assert.Equal(t, "Jane Doe", m.Record().Name)
	assert.Equal(t, "end", m.CurrentNode().Name)
	assert.True(t, m.Done())
	assert.Equal(t, 1, ended)

	// No tools are callable past the terminal node.
	_, err = m.HandleToolCall(context.Background(), "record_name", `{"name":"again"}`)
	assert.ErrorIs(t, err, ErrFlowEnded)
	assert.Equal(t, 1, ended)
}

func TestRetryLoopReturnsSameTool(t *testing.T) {
	// Handler that keeps returning a node exposing itself until the input
	// is acceptable.
	var retry func(reason string) *NodeConfig
	done := &NodeConfig{Name: "done", PostActions: []PostAction{{Type: ActionEndConversation}}}

	handler := func(ctx context.Context, args Args, rec *model.PatientRecord) (any, *NodeConfig, error) {
		if args.String("value") == "good" {
			return map[string]string{"value": "good"}, done, nil
		}
		return map[string]string{"value": ""}, retry("still bad"), nil
	}
	retry = func(reason string) *NodeConfig {
		return &NodeConfig{
			Name: "check_retry",
			Tools: []Tool{NewTool("check", reason,
				map[string]*schema.ParameterInfo{
					"value": {Type: schema.String, Required: true},
				}, handler)},
		}
	}

	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(retry("first")))

	for i := 0; i < 3; i++ {
		_, err := m.HandleToolCall(context.Background(), "check", `{"value":"bad"}`)
		require.NoError(t, err)
		assert.Equal(t, "check_retry", m.CurrentNode().Name)
	}
	_, err := m.HandleToolCall(context.Background(), "check", `{"value":"good"}`)
	require.NoError(t, err)
	assert.True(t, m.Done())
}

func TestToolInfosMatchCurrentNode(t *testing.T) {
	entry, end := twoStepGraph()
	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(entry))

	infos := m.ToolInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, "record_name", infos[0].Name)

	_, err := m.HandleToolCall(context.Background(), "record_name", `{"name":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, end.Name, m.CurrentNode().Name)
	assert.Empty(t, m.ToolInfos())
}

func TestContextMessagesIncludeRoleAndTask(t *testing.T) {
	entry := &NodeConfig{
		Name:         "greet",
		RoleMessages: []*schema.Message{schema.SystemMessage("you are an agent")},
		TaskMessages: []*schema.Message{schema.SystemMessage("ask for the name")},
	}
	m := NewManager("s1", nil)
	require.NoError(t, m.Initialize(entry))

	msgs := m.ContextMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "you are an agent", msgs[0].Content)
	assert.Equal(t, "ask for the name", msgs[1].Content)
}
