// Package telephony owns the narrow contract the intake engine has with the
// phone infrastructure: a stable session identifier and a one-shot call
// forward into the media room's SIP endpoint.
package telephony

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/intakeflow/server/internal/agent/model"
	errx "github.com/intakeflow/server/internal/core/error"
	logx "github.com/intakeflow/server/pkg/logger"
)

// Bridge is what the engine needs from telephony. Forward is idempotent: the
// dial-in-ready event fires once per provisioned SIP endpoint, so repeated
// requests for an already-forwarded call are no-ops, not errors.
type Bridge interface {
	SessionID() string
	Forward(ctx context.Context) error
}

// callUpdater is the slice of the Twilio REST client the bridge uses.
type callUpdater interface {
	UpdateCall(sid string, params *api.UpdateCallParams) (*api.ApiV2010Call, error)
}

// TwilioBridge forwards the inbound PSTN call to the media room by updating
// the live call with dial-SIP TwiML.
type TwilioBridge struct {
	sessionID string
	callSID   string
	sipURI    string
	api       callUpdater

	mu        sync.Mutex
	forwarded bool
}

func NewTwilioBridge(cfg model.TwilioConfig, callSID, sipURI string) *TwilioBridge {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioBridge{
		sessionID: uuid.NewString(),
		callSID:   callSID,
		sipURI:    sipURI,
		api:       client.Api,
	}
}

// newWithUpdater is used by tests to substitute the Twilio client.
func newWithUpdater(u callUpdater, callSID, sipURI string) *TwilioBridge {
	return &TwilioBridge{
		sessionID: uuid.NewString(),
		callSID:   callSID,
		sipURI:    sipURI,
		api:       u,
	}
}

func (b *TwilioBridge) SessionID() string {
	return b.sessionID
}

func (b *TwilioBridge) Forward(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.forwarded {
		logx.Warn().Str("call_sid", b.callSID).Msg("Call already forwarded, ignoring request")
		return nil
	}

	logx.Info().Str("call_sid", b.callSID).Str("sip_uri", b.sipURI).Msg("Forwarding call")

	params := &api.UpdateCallParams{}
	params.SetTwiml(fmt.Sprintf("<Response><Dial><Sip>%s</Sip></Dial></Response>", b.sipURI))

	if _, err := b.api.UpdateCall(b.callSID, params); err != nil {
		logx.Error().Err(err).Str("call_sid", b.callSID).Msg("Failed to forward call")
		return errx.WrapTelephony(err)
	}

	b.forwarded = true
	logx.Info().Str("call_sid", b.callSID).Msg("Call forwarded successfully")
	return nil
}

var _ Bridge = (*TwilioBridge)(nil)
