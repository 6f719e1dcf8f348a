// Package models defines the records persisted by the intake pipeline.
package models

import "time"

// Vaccine is a clinic-scoped catalog entry that vaccination records point to.
type Vaccine struct {
	ID           string
	ClinicID     string
	Name         string
	Doses        int
	Manufacturer *string
	IntervalDays *int
	CreatedAt    time.Time
}
