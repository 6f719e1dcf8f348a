package models

import "time"

// VaccinationRecord is one applied vaccine dose for a pet.
type VaccinationRecord struct {
	ID           string
	ClinicID     string
	PetID        string
	VaccineID    string
	ApplicatorID string
	AppliedOn    time.Time
	Dose         int
	NextDueOn    *time.Time
	Lot          *string
	CreatedAt    time.Time
}
