package telephony

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeUpdater struct {
	calls  int
	sid    string
	params *api.UpdateCallParams
	err    error
}

func (f *fakeUpdater) UpdateCall(sid string, params *api.UpdateCallParams) (*api.ApiV2010Call, error) {
	f.calls++
	f.sid = sid
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &api.ApiV2010Call{}, nil
}

func TestForwardDialsSIPEndpoint(t *testing.T) {
	fake := &fakeUpdater{}
	b := newWithUpdater(fake, "CA123", "sip:room-1@media.example.com")

	require.NoError(t, b.Forward(context.Background()))

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "CA123", fake.sid)
	require.NotNil(t, fake.params.Twiml)
	assert.Equal(t, "<Response><Dial><Sip>sip:room-1@media.example.com</Sip></Dial></Response>", *fake.params.Twiml)
}

func TestForwardIsIdempotent(t *testing.T) {
	fake := &fakeUpdater{}
	b := newWithUpdater(fake, "CA123", "sip:room-1@media.example.com")

	require.NoError(t, b.Forward(context.Background()))
	require.NoError(t, b.Forward(context.Background()))
	require.NoError(t, b.Forward(context.Background()))

	assert.Equal(t, 1, fake.calls, "repeated dial-in-ready events must update the call once")
}

func TestForwardFailureAllowsRetry(t *testing.T) {
	fake := &fakeUpdater{err: errors.New("call not in-progress")}
	b := newWithUpdater(fake, "CA123", "sip:room-1@media.example.com")

	require.Error(t, b.Forward(context.Background()))

	// A failed attempt does not latch the forwarded flag.
	fake.err = nil
	require.NoError(t, b.Forward(context.Background()))
	assert.Equal(t, 2, fake.calls)
}

func TestForwardCancelledContext(t *testing.T) {
	fake := &fakeUpdater{}
	b := newWithUpdater(fake, "CA123", "sip:room-1@media.example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, b.Forward(ctx))
	assert.Zero(t, fake.calls)
}

func TestSessionIDsAreUniquePerBridge(t *testing.T) {
	a := newWithUpdater(&fakeUpdater{}, "CA1", "sip:a@media.example.com")
	b := newWithUpdater(&fakeUpdater{}, "CA2", "sip:b@media.example.com")

	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
