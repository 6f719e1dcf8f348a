// Package vaccinations persists applied vaccination records.
package vaccinations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vetintake/internal/models"
)

type Repository interface {
	// Create inserts rec, assigning an id and creation time when unset.
	Create(ctx context.Context, rec *models.VaccinationRecord) (*models.VaccinationRecord, error)
	// ListByPet returns a pet's records, most recent application first.
	ListByPet(ctx context.Context, clinicID, petID string) ([]*models.VaccinationRecord, error)
}

func prepareRecord(rec *models.VaccinationRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}
