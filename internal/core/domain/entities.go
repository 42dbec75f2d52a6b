package domain

// MemberStatus is the lifecycle state of a membership record
type MemberStatus string

const (
	StatusPending        MemberStatus = "pending"
	StatusApproved       MemberStatus = "approved"
	StatusRejected       MemberStatus = "rejected"
	StatusRenewalPending MemberStatus = "renewal_pending"
)

// Valid reports whether s is one of the known member states
func (s MemberStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusRenewalPending:
		return true
	}
	return false
}

// PaymentApproval is the review state of a payment submission.
// The zero value means nothing was submitted for the current year.
type PaymentApproval string

const (
	PaymentNotSubmitted PaymentApproval = ""
	PaymentPending      PaymentApproval = "pending"
	PaymentApproved     PaymentApproval = "approved"
	PaymentDeclined     PaymentApproval = "declined"
)

// BenefitType is the category of a benefit claim
type BenefitType string

const (
	BenefitHospital     BenefitType = "hospital"
	BenefitDeath        BenefitType = "death"
	BenefitGulfReturnee BenefitType = "gulf_returnee"
	BenefitCancer       BenefitType = "cancer"
)

// BenefitTypes lists every benefit category in display order
var BenefitTypes = []BenefitType{BenefitHospital, BenefitDeath, BenefitGulfReturnee, BenefitCancer}

// Valid reports whether t is a known benefit category
func (t BenefitType) Valid() bool {
	for _, bt := range BenefitTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// ChangeRequestStatus is the review state of a profile change request
type ChangeRequestStatus string

const (
	ChangePending  ChangeRequestStatus = "pending"
	ChangeApproved ChangeRequestStatus = "approved"
	ChangeRejected ChangeRequestStatus = "rejected"
)

// NotificationType tags notifications by origin
type NotificationType string

const (
	NotifyMessage       NotificationType = "message"
	NotifyApproval      NotificationType = "approval"
	NotifyPayment       NotificationType = "payment"
	NotifyRenewal       NotificationType = "renewal"
	NotifyChangeRequest NotificationType = "change_request"
)

// EditableProfileFields are the fixed profile columns a member may change
// through UpdateProfile. Answers to registration questions are editable too,
// keyed by the question key.
var EditableProfileFields = []string{
	"name",
	"phone",
	"whatsapp",
	"emirate",
	"mandalam",
	"address",
	"kerala_address",
	"profession",
	"blood_group",
	"nominee_name",
	"nominee_relation",
	"photo_url",
}

// IsEditableProfileField reports whether field is one of EditableProfileFields
func IsEditableProfileField(field string) bool {
	for _, f := range EditableProfileFields {
		if f == field {
			return true
		}
	}
	return false
}
