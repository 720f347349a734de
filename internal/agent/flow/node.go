package flow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/intakeflow/server/internal/agent/model"
)

// Args holds the decoded arguments of one tool invocation.
type Args map[string]any

// String returns the named argument coerced to a string. Missing or null
// arguments come back empty; non-string values are formatted.
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Handler is the bound implementation behind a tool. It mutates the patient
// record, performs at most one collaborator call, and returns the result
// payload to echo to the model plus the node to transition to. Collaborator
// failures are recovered inside the handler; a returned error is a
// programming fault, not a conversational outcome.
type Handler func(ctx context.Context, args Args, rec *model.PatientRecord) (any, *NodeConfig, error)

// Tool pairs a schema the model sees with the handler behind it. Params is
// kept alongside the rendered ToolInfo so required-argument checks do not
// have to round-trip through the OpenAPI form.
type Tool struct {
	Info    *schema.ToolInfo
	Params  map[string]*schema.ParameterInfo
	Handler Handler
}

// NewTool builds a Tool whose schema is rendered the same way the chat model
// receives it.
func NewTool(name, desc string, params map[string]*schema.ParameterInfo, h Handler) Tool {
	return Tool{
		Info: &schema.ToolInfo{
			Name:        name,
			Desc:        desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		Params:  params,
		Handler: h,
	}
}

type PostActionType string

const ActionEndConversation PostActionType = "end_conversation"

type PostAction struct {
	Type PostActionType
}

// NodeConfig is one named conversational stage: the prompt messages to
// surface to the model and the exact set of tools it may invoke there.
// Nodes are pure data; builders construct them and nothing mutates them
// afterwards. RoleMessages are present only on the entry node.
type NodeConfig struct {
	Name         string
	RoleMessages []*schema.Message
	TaskMessages []*schema.Message
	Tools        []Tool
	PostActions  []PostAction
}

// Terminal reports whether entering this node ends the conversation.
func (n *NodeConfig) Terminal() bool {
	for _, a := range n.PostActions {
		if a.Type == ActionEndConversation {
			return true
		}
	}
	return false
}

// ToolInfos returns the schemas of this node's tools, the callable set the
// model is shown while the conversation sits on this node.
func (n *NodeConfig) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(n.Tools))
	for i := range n.Tools {
		infos = append(infos, n.Tools[i].Info)
	}
	return infos
}

func (n *NodeConfig) tool(name string) (Tool, bool) {
	for i := range n.Tools {
		if n.Tools[i].Info.Name == name {
			return n.Tools[i], true
		}
	}
	return Tool{}, false
}
