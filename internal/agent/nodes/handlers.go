package nodes

import (
	"context"
	"strings"

	"github.com/intakeflow/server/internal/agent/flow"
	"github.com/intakeflow/server/internal/agent/model"
	logx "github.com/intakeflow/server/pkg/logger"
)

func (b *Builder) collectName(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	name := args.String("name")
	logx.Debug().Str("name", name).Msg("collect_name handler executing")

	rec.Name = name
	return model.NameCollectionResult{Name: name}, b.DateOfBirth(), nil
}

func (b *Builder) collectDateOfBirth(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	dob := args.String("date_of_birth")
	logx.Debug().Str("date_of_birth", dob).Msg("collect_date_of_birth handler executing")

	rec.DateOfBirth = dob
	return model.DateOfBirthCollectionResult{DateOfBirth: dob}, b.Insurance(), nil
}

func (b *Builder) collectInsurance(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	payerName := args.String("payer_name")
	payID := args.String("payID")
	logx.Debug().Str("payer_name", payerName).Str("payID", payID).Msg("collect_insurance handler executing")

	rec.PayerName = payerName
	rec.PayerID = payID
	return model.InsuranceCollectionResult{PayerName: payerName, PayID: payID}, b.Referral(), nil
}

func (b *Builder) collectReferral(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	referral := args.String("referral_name")
	logx.Debug().Str("referral_name", referral).Msg("collect_referral handler executing")

	rec.ReferralDoctor = referral
	return model.ReferralCollectionResult{ReferralDoctor: referral}, b.ChiefComplaint(), nil
}

func (b *Builder) collectChiefComplaint(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	complaint := args.String("chief_complaint")
	logx.Debug().Str("chief_complaint", complaint).Msg("collect_chief_complaint handler executing")

	rec.ChiefComplaint = complaint
	return model.ChiefComplaintCollectionResult{ChiefComplaint: complaint}, b.Address(), nil
}

// collectAddress validates the caller's address. Three outcomes:
// validated (canonical address stored, advance), judged invalid (loop into a
// retry node carrying the reason), or validator outage (accept the raw
// address and advance; an outage must never block the flow).
func (b *Builder) collectAddress(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	raw := args.String("address")
	logx.Debug().Str("address", raw).Msg("collect_address handler executing")

	v, err := b.validator.Validate(ctx, raw)
	if err != nil {
		logx.Error().Err(err).Msg("Address validation service error, accepting address as-is")
		rec.Address = raw
		return model.AddressCollectionResult{Address: raw}, b.ContactInfo(), nil
	}

	if !v.Valid {
		logx.Warn().Str("reason", v.Reason).Msg("Address validation failed")
		rec.AddressValidationError = v.Reason
		return model.AddressCollectionResult{Address: ""}, b.AddressRetry(v.Reason), nil
	}

	logx.Info().Str("formatted_address", v.FormattedAddress).Msg("Address validated successfully")
	rec.Address = v.FormattedAddress
	rec.AddressValidationError = ""
	return model.AddressCollectionResult{Address: v.FormattedAddress}, b.ContactInfo(), nil
}

func (b *Builder) collectContactInfo(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	phone := args.String("phone_number")
	email := args.String("email")
	logx.Debug().Str("phone_number", phone).Str("email", email).Msg("collect_contact_info handler executing")

	rec.PhoneNumber = phone
	rec.Email = email
	return model.ContactInfoCollectionResult{PhoneNumber: phone, Email: email}, b.AppointmentScheduling(), nil
}

// Offered slots, in presentation order. The order doubles as the tie-break
// rule when a caller mentions more than one.
const (
	slotTomorrow  = "tomorrow at 3pm"
	slotMonday    = "next Monday at 10am"
	slotWednesday = "next Wednesday at 11am"
)

// appointmentRules classify the caller's free-text choice, evaluated in
// order, first match wins. An utterance matching nothing falls through to
// the first offered slot.
var appointmentRules = []struct {
	keywords []string
	slot     string
}{
	{[]string{"anything works", "any time", "all work"}, slotTomorrow},
	{[]string{"tomorrow"}, slotTomorrow},
	{[]string{"monday"}, slotMonday},
	{[]string{"wednesday"}, slotWednesday},
}

// noSlotKeywords mark a caller for whom none of the offered slots work.
var noSlotKeywords = []string{"nothing works", "none work", "not available"}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func classifyAppointment(choice, customTime string) string {
	choice = strings.ToLower(choice)

	if containsAny(choice, noSlotKeywords) {
		if customTime != "" {
			return customTime
		}
		return "Custom time requested"
	}
	for _, rule := range appointmentRules {
		if containsAny(choice, rule.keywords) {
			return rule.slot
		}
	}
	return slotTomorrow
}

// scheduleAppointment classifies the caller's choice, converts it to an
// absolute date, and fires the confirmation email. The transition to the end
// node happens regardless of the conversion or delivery outcome.
func (b *Builder) scheduleAppointment(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	choice := args.String("appointment_choice")
	customTime := args.String("custom_time")
	logx.Debug().Str("appointment_choice", choice).Str("custom_time", customTime).Msg("schedule_appointment handler executing")

	selected := classifyAppointment(choice, customTime)
	converted := b.dates.ToAbsolute(selected)
	logx.Info().Str("selected", selected).Str("converted", converted).Msg("Appointment selected")

	rec.SelectedAppointment = selected
	rec.ConvertedAppointment = converted
	rec.CustomTime = customTime

	// Delivery outlives a cancelled call; the send must neither block nor
	// re-open a terminated flow.
	if ok := b.notifier.SendConfirmation(context.WithoutCancel(ctx), rec, converted); ok {
		logx.Info().Msg("Appointment confirmation sent successfully")
	} else {
		logx.Warn().Msg("Failed to send appointment confirmation")
	}

	return model.AppointmentSchedulingResult{SelectedAppointment: selected, CustomTime: customTime}, b.End(), nil
}

// endQuote short-circuits to the terminal node without scheduling.
func (b *Builder) endQuote(ctx context.Context, args flow.Args, rec *model.PatientRecord) (any, *flow.NodeConfig, error) {
	logx.Debug().Msg("end_quote handler executing")
	return model.EndQuoteResult{Status: "completed"}, b.End(), nil
}
