package domain

import "fmt"

// Membership fees in AED
const (
	RenewalFee         = 50
	NewRegistrationFee = 60
)

// RegistrationFee returns the fee a member pays for the current year.
// Continuing and imported members pay the renewal rate.
func RegistrationFee(isReregistration, isImported bool) int {
	if isReregistration || isImported {
		return RenewalFee
	}
	return NewRegistrationFee
}

// RegistrationNumber builds the printable membership number for a record
func RegistrationNumber(year int, id uint) string {
	return fmt.Sprintf("%d/%05d", year, id)
}
