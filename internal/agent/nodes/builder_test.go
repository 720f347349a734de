package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakeflow/server/internal/agent/flow"
)

func TestGraphShape(t *testing.T) {
	b, _ := newTestBuilder(acceptingValidator())

	tests := []struct {
		node     *flow.NodeConfig
		name     string
		tools    []string
		terminal bool
	}{
		{b.Initial(), NodeInitial, []string{ToolCollectName}, false},
		{b.DateOfBirth(), NodeDateOfBirth, []string{ToolCollectDateOfBirth}, false},
		{b.Insurance(), NodeInsurance, []string{ToolCollectInsurance}, false},
		{b.Referral(), NodeReferral, []string{ToolCollectReferral, ToolCollectChiefComplaint}, false},
		{b.ChiefComplaint(), NodeChiefComplaint, []string{ToolCollectChiefComplaint}, false},
		{b.Address(), NodeAddress, []string{ToolCollectAddress}, false},
		{b.AddressRetry("bad address"), NodeAddressRetry, []string{ToolCollectAddress}, false},
		{b.ContactInfo(), NodeContactInfo, []string{ToolCollectContactInfo}, false},
		{b.AppointmentScheduling(), NodeAppointmentScheduling, []string{ToolScheduleAppointment, ToolEndQuote}, false},
		{b.End(), NodeEnd, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.node.Name)
			assert.Equal(t, tt.terminal, tt.node.Terminal())

			var names []string
			for _, info := range tt.node.ToolInfos() {
				names = append(names, info.Name)
			}
			assert.Equal(t, tt.tools, names)
		})
	}
}

func TestOnlyEntryNodeCarriesRoleMessages(t *testing.T) {
	b, _ := newTestBuilder(acceptingValidator())

	assert.NotEmpty(t, b.Initial().RoleMessages)
	for _, n := range []*flow.NodeConfig{
		b.DateOfBirth(), b.Insurance(), b.Referral(), b.ChiefComplaint(),
		b.Address(), b.AddressRetry("x"), b.ContactInfo(),
		b.AppointmentScheduling(), b.End(),
	} {
		assert.Empty(t, n.RoleMessages, "node %s must not carry role messages", n.Name)
	}
}

func TestAddressRetryEmbedsReason(t *testing.T) {
	b, _ := newTestBuilder(acceptingValidator())

	n := b.AddressRetry("The address seems incomplete.")
	require.Len(t, n.TaskMessages, 1)
	assert.Contains(t, n.TaskMessages[0].Content, "The address seems incomplete.")
	assert.Contains(t, n.TaskMessages[0].Content, "street number")
}

func TestTerminalNodeDeclaresNoTools(t *testing.T) {
	b, _ := newTestBuilder(acceptingValidator())
	end := b.End()
	assert.True(t, end.Terminal())
	assert.Empty(t, end.Tools)
	assert.NotEmpty(t, end.TaskMessages)
}
