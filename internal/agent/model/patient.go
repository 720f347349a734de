package model

// PatientRecord accumulates everything learned during one intake call.
// Fields follow a write-once, read-later pattern: each is set by exactly one
// tool handler and read by later handlers and by terminal reporting. The zero
// value of a field means "not collected yet". One record is owned by one flow
// manager and is never shared across calls.
type PatientRecord struct {
	Name          string
	DateOfBirth   string
	PayerName     string
	PayerID       string
	ReferralDoctor string
	ChiefComplaint string

	// Address holds the validator's canonical formatted address on success,
	// or the caller's verbatim text when the validation service is down.
	Address                string
	AddressValidationError string

	PhoneNumber string
	Email       string

	// SelectedAppointment is the offered-slot phrase ("tomorrow at 3pm"),
	// ConvertedAppointment the absolute calendar form of it.
	SelectedAppointment  string
	ConvertedAppointment string
	CustomTime           string
}

const notProvided = "Not provided"

// Summary flattens the record for terminal reporting and the confirmation
// email, substituting a placeholder for anything the caller never supplied.
func (r *PatientRecord) Summary() map[string]string {
	return map[string]string{
		"name":            orDefault(r.Name, "Unknown"),
		"date_of_birth":   orDefault(r.DateOfBirth, notProvided),
		"address":         orDefault(r.Address, notProvided),
		"phone_number":    orDefault(r.PhoneNumber, notProvided),
		"email":           orDefault(r.Email, notProvided),
		"payer_name":      orDefault(r.PayerName, notProvided),
		"payer_id":        orDefault(r.PayerID, notProvided),
		"referral_doctor": orDefault(r.ReferralDoctor, notProvided),
		"chief_complaint": orDefault(r.ChiefComplaint, notProvided),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
