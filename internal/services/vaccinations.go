// Package services wires the intake pipeline to its stores: card scans go
// through object storage, OCR and extraction; reviewed candidates are
// committed through per-candidate transactions.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/models"
	"github.com/dmitrijs2005/vetintake/internal/repositories/repomanager"
	"github.com/dmitrijs2005/vetintake/internal/review"
)

// VaccinationStore runs each review unit in its own database transaction.
type VaccinationStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewVaccinationStore(db *sql.DB, repomanager repomanager.RepositoryManager) *VaccinationStore {
	return &VaccinationStore{db: db, repomanager: repomanager}
}

func (s *VaccinationStore) WithinUnit(ctx context.Context, fn func(ctx context.Context, catalog review.Catalog, records review.Records) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repomanager.Vaccines(tx), s.repomanager.Vaccinations(tx))
	})
}

// History lists a pet's vaccination records, most recent first.
func (s *VaccinationStore) History(ctx context.Context, clinicID, petID string) ([]*models.VaccinationRecord, error) {
	return s.repomanager.Vaccinations(s.db).ListByPet(ctx, clinicID, petID)
}

// Catalog lists the clinic's vaccines.
func (s *VaccinationStore) Catalog(ctx context.Context, clinicID string) ([]*models.Vaccine, error) {
	return s.repomanager.Vaccines(s.db).ListByClinic(ctx, clinicID)
}
