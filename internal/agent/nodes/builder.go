// Package nodes defines the intake conversation graph: one builder method per
// stage, returning immutable node configurations with the prompt text and
// the exact tools the model may invoke there.
package nodes

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/intakeflow/server/internal/agent/flow"
	"github.com/intakeflow/server/internal/collab/address"
	"github.com/intakeflow/server/internal/collab/dates"
	"github.com/intakeflow/server/internal/collab/notify"
)

// Node names, in canonical order of the intake flow.
const (
	NodeInitial               = "initial"
	NodeDateOfBirth           = "date_of_birth"
	NodeInsurance             = "insurance"
	NodeReferral              = "referral"
	NodeChiefComplaint        = "chief_complaint"
	NodeAddress               = "address"
	NodeAddressRetry          = "address_retry"
	NodeContactInfo           = "contact_info"
	NodeAppointmentScheduling = "appointment_scheduling"
	NodeEnd                   = "end"
)

// Tool names.
const (
	ToolCollectName           = "collect_name"
	ToolCollectDateOfBirth    = "collect_date_of_birth"
	ToolCollectInsurance      = "collect_insurance"
	ToolCollectReferral       = "collect_referral"
	ToolCollectChiefComplaint = "collect_chief_complaint"
	ToolCollectAddress        = "collect_address"
	ToolCollectContactInfo    = "collect_contact_info"
	ToolScheduleAppointment   = "schedule_appointment"
	ToolEndQuote              = "end_quote"
)

// Builder constructs node configurations with the collaborators the tool
// handlers need. Each conversation gets its own builder so collaborator
// handles are injected, never package globals. Builder methods perform no
// I/O and cannot fail.
type Builder struct {
	validator address.Validator
	dates     dates.Converter
	notifier  notify.Sender
}

func NewBuilder(validator address.Validator, converter dates.Converter, notifier notify.Sender) *Builder {
	return &Builder{
		validator: validator,
		dates:     converter,
		notifier:  notifier,
	}
}

// Initial is the entry node: it carries the role messages and collects the
// caller's name.
func (b *Builder) Initial() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeInitial,
		RoleMessages: []*schema.Message{schema.SystemMessage(rolePrompt)},
		TaskMessages: []*schema.Message{schema.SystemMessage(initialTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectName, "Record customer's name",
				map[string]*schema.ParameterInfo{
					"name": {Type: schema.String, Required: true},
				},
				b.collectName),
		},
	}
}

func (b *Builder) DateOfBirth() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeDateOfBirth,
		TaskMessages: []*schema.Message{schema.SystemMessage(dateOfBirthTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectDateOfBirth, "Record date of birth",
				map[string]*schema.ParameterInfo{
					"date_of_birth": {Type: schema.String, Required: true},
				},
				b.collectDateOfBirth),
		},
	}
}

func (b *Builder) Insurance() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeInsurance,
		TaskMessages: []*schema.Message{schema.SystemMessage(insuranceTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectInsurance, "Record insurance information",
				map[string]*schema.ParameterInfo{
					"payer_name": {Type: schema.String, Required: true},
					"payID":      {Type: schema.String, Required: true},
				},
				b.collectInsurance),
		},
	}
}

// Referral is the one branch point of the graph: the model records either a
// referral or, when the caller has none, the chief complaint directly.
func (b *Builder) Referral() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeReferral,
		TaskMessages: []*schema.Message{schema.SystemMessage(referralTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectReferral, "Record referral information",
				map[string]*schema.ParameterInfo{
					"referral_name": {Type: schema.String, Required: true},
				},
				b.collectReferral),
			b.chiefComplaintTool(),
		},
	}
}

func (b *Builder) ChiefComplaint() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeChiefComplaint,
		TaskMessages: []*schema.Message{schema.SystemMessage(chiefComplaintTaskPrompt)},
		Tools:        []flow.Tool{b.chiefComplaintTool()},
	}
}

func (b *Builder) chiefComplaintTool() flow.Tool {
	return flow.NewTool(ToolCollectChiefComplaint,
		"Record the patient's chief complaint or reason for visit",
		map[string]*schema.ParameterInfo{
			"chief_complaint": {Type: schema.String, Required: true},
		},
		b.collectChiefComplaint)
}

func (b *Builder) Address() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeAddress,
		TaskMessages: []*schema.Message{schema.SystemMessage(addressTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectAddress, "Record the patient's address",
				map[string]*schema.ParameterInfo{
					"address": {Type: schema.String, Required: true},
				},
				b.collectAddress),
		},
	}
}

// AddressRetry is synthesized on demand after a validation failure, with the
// specific reason baked into the prompt. It re-exposes the same
// collect_address tool, so a persistently invalid address loops here until
// the caller supplies a valid one.
func (b *Builder) AddressRetry(reason string) *flow.NodeConfig {
	return &flow.NodeConfig{
		Name: NodeAddressRetry,
		TaskMessages: []*schema.Message{
			schema.SystemMessage(fmt.Sprintf(addressRetryTaskPrompt, reason)),
		},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectAddress, "Record the patient's address after retry",
				map[string]*schema.ParameterInfo{
					"address": {Type: schema.String, Required: true},
				},
				b.collectAddress),
		},
	}
}

func (b *Builder) ContactInfo() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeContactInfo,
		TaskMessages: []*schema.Message{schema.SystemMessage(contactInfoTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolCollectContactInfo, "Record the patient's contact information",
				map[string]*schema.ParameterInfo{
					"phone_number": {Type: schema.String, Required: true},
					"email":        {Type: schema.String},
				},
				b.collectContactInfo),
		},
	}
}

func (b *Builder) AppointmentScheduling() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeAppointmentScheduling,
		TaskMessages: []*schema.Message{schema.SystemMessage(appointmentTaskPrompt)},
		Tools: []flow.Tool{
			flow.NewTool(ToolScheduleAppointment, "Schedule an appointment based on patient preference",
				map[string]*schema.ParameterInfo{
					"appointment_choice": {Type: schema.String, Required: true},
					"custom_time":        {Type: schema.String},
				},
				b.scheduleAppointment),
			flow.NewTool(ToolEndQuote, "Complete the quote process",
				map[string]*schema.ParameterInfo{},
				b.endQuote),
		},
	}
}

// End is the terminal node: no tools, and entering it signals the session to
// wind down after the goodbye.
func (b *Builder) End() *flow.NodeConfig {
	return &flow.NodeConfig{
		Name:         NodeEnd,
		TaskMessages: []*schema.Message{schema.SystemMessage(endTaskPrompt)},
		PostActions:  []flow.PostAction{{Type: flow.ActionEndConversation}},
	}
}
