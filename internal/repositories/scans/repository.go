// Package scans logs the vaccination card images uploaded for OCR.
package scans

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vetintake/internal/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Scan) (*models.Scan, error)
	// UpdateStatus records the outcome of extraction. It returns
	// common.ErrorNotFound when id does not exist.
	UpdateStatus(ctx context.Context, id string, status models.ScanStatus, candidates int) error
	ListByPet(ctx context.Context, clinicID, petID string) ([]*models.Scan, error)
}

func prepareScan(s *models.Scan) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = models.ScanUploaded
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}
