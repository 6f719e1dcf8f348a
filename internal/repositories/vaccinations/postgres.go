package vaccinations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.VaccinationRecord) (*models.VaccinationRecord, error) {
	prepareRecord(rec)

	query :=
		`INSERT INTO vaccinations (id, clinic_id, pet_id, vaccine_id, applicator_id, applied_on, dose, next_due_on, lot, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ClinicID, rec.PetID, rec.VaccineID, rec.ApplicatorID,
		rec.AppliedOn, rec.Dose, dbx.NullTime(rec.NextDueOn), dbx.NullString(rec.Lot), rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) ListByPet(ctx context.Context, clinicID, petID string) ([]*models.VaccinationRecord, error) {
	query :=
		`SELECT id, clinic_id, pet_id, vaccine_id, applicator_id, applied_on, dose, next_due_on, lot, created_at
		 FROM vaccinations
		 WHERE clinic_id = $1 AND pet_id = $2
		 ORDER BY applied_on DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, clinicID, petID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.VaccinationRecord
	for rows.Next() {
		var (
			rec  models.VaccinationRecord
			next sql.NullTime
			lot  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ClinicID, &rec.PetID, &rec.VaccineID, &rec.ApplicatorID,
			&rec.AppliedOn, &rec.Dose, &next, &lot, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if next.Valid {
			rec.NextDueOn = &next.Time
		}
		rec.Lot = dbx.StringPtr(lot)
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
