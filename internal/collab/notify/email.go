// Package notify delivers appointment confirmation emails through Amazon SES.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/intakeflow/server/internal/agent/model"
	logx "github.com/intakeflow/server/pkg/logger"
)

// Sender delivers a confirmation built from the accumulated patient record.
// Delivery is fire-and-forget: failures are logged and reported as false,
// never raised past the handler boundary.
type Sender interface {
	SendConfirmation(ctx context.Context, rec *model.PatientRecord, appointment string) bool
}

// sesAPI is the slice of the SES v2 client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESSender struct {
	client     sesAPI
	sender     string
	senderName string
	recipient  string
}

func NewSESSender(ctx context.Context, cfg model.SESConfig) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{
		client:     sesv2.NewFromConfig(awsCfg),
		sender:     cfg.Sender,
		senderName: cfg.SenderName,
		recipient:  cfg.Recipient,
	}, nil
}

const confirmationSubject = "Appointment Confirmation - Dr. Smith's Office"

func (s *SESSender) SendConfirmation(ctx context.Context, rec *model.PatientRecord, appointment string) bool {
	summary := rec.Summary()

	logx.Info().
		Str("recipient", s.recipient).
		Str("patient", summary["name"]).
		Str("appointment", appointment).
		Msg("Sending appointment confirmation email")

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.senderName, s.sender)),
		Destination: &types.Destination{
			ToAddresses: []string{s.recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(confirmationSubject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody(summary, appointment)),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody(summary, appointment)),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	})
	if err != nil {
		// The appointment is still scheduled; delivery is best effort.
		logx.Error().Err(err).Msg("Failed to send confirmation email")
		return false
	}

	logx.Info().Str("message_id", aws.ToString(out.MessageId)).Msg("Confirmation email sent")
	return true
}

func htmlBody(summary map[string]string, appointment string) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2c5aa0;">Appointment Confirmation</h2>
    <p>Dear <strong>%s</strong>,</p>
    <p>Thank you for scheduling your appointment with Dr. Smith's office.</p>
    <div style="background-color: #f0f8ff; padding: 20px; border-radius: 5px; margin: 20px 0;">
      <h3 style="margin-top: 0; color: #2c5aa0;">Appointment Details</h3>
      <table style="width: 100%%; border-collapse: collapse;">
        <tr><td><strong>Patient:</strong></td><td>%s</td></tr>
        <tr><td><strong>Date of Birth:</strong></td><td>%s</td></tr>
        <tr><td><strong>Appointment Time:</strong></td><td style="color: #0066cc; font-weight: bold;">%s</td></tr>
        <tr><td><strong>Address:</strong></td><td>%s</td></tr>
        <tr><td><strong>Phone:</strong></td><td>%s</td></tr>
        <tr><td><strong>Insurance:</strong></td><td>%s</td></tr>
        <tr><td><strong>Reason for Visit:</strong></td><td>%s</td></tr>
      </table>
    </div>
    <div style="background-color: #fff3cd; padding: 15px; border-radius: 5px; margin: 20px 0;">
      <h4 style="margin-top: 0; color: #856404;">Important Reminders:</h4>
      <ul style="margin: 0; padding-left: 20px;">
        <li>Please arrive 15 minutes early for check-in</li>
        <li>Bring a valid photo ID and insurance card</li>
        <li>Bring a list of current medications</li>
        <li>If you need to cancel or reschedule, please call us at least 24 hours in advance</li>
      </ul>
    </div>
    <p>If you have any questions, please don't hesitate to contact our office.</p>
    <p style="font-size: 12px; color: #666; text-align: center;">This is an automated message. Please do not reply to this email.</p>
  </div>
</body>
</html>`,
		summary["name"], summary["name"], summary["date_of_birth"], appointment,
		summary["address"], summary["phone_number"], summary["payer_name"], summary["chief_complaint"])
}

func textBody(summary map[string]string, appointment string) string {
	return fmt.Sprintf(`Dear %s,

Thank you for scheduling your appointment with Dr. Smith's office.

APPOINTMENT CONFIRMATION
========================

Patient: %s
Date of Birth: %s
Appointment Time: %s
Address: %s
Phone: %s
Insurance: %s
Reason for Visit: %s

IMPORTANT REMINDERS:
- Please arrive 15 minutes early for check-in
- Bring a valid photo ID and insurance card
- Bring a list of current medications
- If you need to cancel or reschedule, please call us at least 24 hours in advance

If you have any questions, please don't hesitate to contact our office.

Best regards,
Dr. Smith's Medical Office

This is an automated message. Please do not reply to this email.`,
		summary["name"], summary["name"], summary["date_of_birth"], appointment,
		summary["address"], summary["phone_number"], summary["payer_name"], summary["chief_complaint"])
}

var _ Sender = (*SESSender)(nil)
