package review

import (
	"context"

	"github.com/dmitrijs2005/vetintake/internal/models"
)

// Catalog resolves and creates clinic-scoped vaccine catalog entries.
type Catalog interface {
	// FindByName returns the first entry whose name contains name
	// case-insensitively, or common.ErrorNotFound.
	FindByName(ctx context.Context, clinicID, name string) (*models.Vaccine, error)
	Create(ctx context.Context, v *models.Vaccine) (*models.Vaccine, error)
}

// Records writes vaccination records.
type Records interface {
	Create(ctx context.Context, rec *models.VaccinationRecord) (*models.VaccinationRecord, error)
}

// Store runs fn as one atomic unit of work. The workflow opens one unit per
// candidate, so a failing candidate never undoes the ones before it.
type Store interface {
	WithinUnit(ctx context.Context, fn func(ctx context.Context, catalog Catalog, records Records) error) error
}
