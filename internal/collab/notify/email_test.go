package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakeflow/server/internal/agent/model"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func testRecord() *model.PatientRecord {
	return &model.PatientRecord{
		Name:           "John Doe",
		DateOfBirth:    "January 1, 1990",
		PayerName:      "Blue Cross",
		ChiefComplaint: "Back pain",
		Address:        "123 Main St, Springfield, IL",
		PhoneNumber:    "555-0100",
	}
}

func TestSendConfirmationBuildsEmail(t *testing.T) {
	fake := &fakeSES{}
	s := &SESSender{
		client:     fake,
		sender:     "noreply@example.com",
		senderName: "Dr. Smith's Office",
		recipient:  "office@example.com",
	}

	ok := s.SendConfirmation(context.Background(), testRecord(), "January 16, 2025 at 3:00 PM")
	assert.True(t, ok)

	require.NotNil(t, fake.in)
	assert.Equal(t, "Dr. Smith's Office <noreply@example.com>", aws.ToString(fake.in.FromEmailAddress))
	assert.Equal(t, []string{"office@example.com"}, fake.in.Destination.ToAddresses)
	assert.Equal(t, confirmationSubject, aws.ToString(fake.in.Content.Simple.Subject.Data))

	html := aws.ToString(fake.in.Content.Simple.Body.Html.Data)
	text := aws.ToString(fake.in.Content.Simple.Body.Text.Data)
	for _, body := range []string{html, text} {
		assert.Contains(t, body, "John Doe")
		assert.Contains(t, body, "January 16, 2025 at 3:00 PM")
		assert.Contains(t, body, "Blue Cross")
		assert.Contains(t, body, "Back pain")
		assert.Contains(t, body, "555-0100")
	}
}

func TestSendConfirmationFillsDefaultsForMissingFields(t *testing.T) {
	fake := &fakeSES{}
	s := &SESSender{client: fake, recipient: "office@example.com"}

	ok := s.SendConfirmation(context.Background(), &model.PatientRecord{Name: "Jane Doe"}, "tomorrow at 3pm")
	assert.True(t, ok)

	text := aws.ToString(fake.in.Content.Simple.Body.Text.Data)
	assert.Contains(t, text, "Not provided")
}

func TestSendConfirmationDeliveryFailure(t *testing.T) {
	fake := &fakeSES{err: errors.New("MessageRejected")}
	s := &SESSender{client: fake, recipient: "office@example.com"}

	// Delivery failures are reported as false, never as a panic or error.
	ok := s.SendConfirmation(context.Background(), testRecord(), "tomorrow at 3pm")
	assert.False(t, ok)
}
