package model

// Tool invocation result payloads. Each handler echoes the validated or
// derived fields back to the language model for grounding; the payloads are
// serialized into the tool result message and not retained anywhere else.

type NameCollectionResult struct {
	Name string `json:"name"`
}

type DateOfBirthCollectionResult struct {
	DateOfBirth string `json:"date_of_birth"`
}

type InsuranceCollectionResult struct {
	PayerName string `json:"payer_name"`
	PayID     string `json:"payID"`
}

type ReferralCollectionResult struct {
	ReferralDoctor string `json:"referral_doctor"`
}

type ChiefComplaintCollectionResult struct {
	ChiefComplaint string `json:"chief_complaint"`
}

// AddressCollectionResult carries an empty Address when validation rejected
// the caller's input; the retry node prompt explains why.
type AddressCollectionResult struct {
	Address string `json:"address"`
}

type ContactInfoCollectionResult struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
}

type AppointmentSchedulingResult struct {
	SelectedAppointment string `json:"selected_appointment"`
	CustomTime          string `json:"custom_time,omitempty"`
}

type EndQuoteResult struct {
	Status string `json:"status"`
}
