package models

import "time"

// ScanStatus tracks what happened to an uploaded vaccination card image.
type ScanStatus string

const (
	ScanUploaded  ScanStatus = "uploaded"
	ScanExtracted ScanStatus = "extracted"
	ScanEmpty     ScanStatus = "empty"
	ScanFailed    ScanStatus = "failed"
)

// Scan logs one vaccination card image stored in object storage.
type Scan struct {
	ID             string
	ClinicID       string
	PetID          string
	StorageKey     string
	Fingerprint    string
	ContentType    string
	Size           int64
	CandidateCount int
	Status         ScanStatus
	CreatedAt      time.Time
}
