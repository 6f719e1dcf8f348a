package vaccinations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

// SQLiteRepository keeps calendar dates as YYYY-MM-DD text.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, rec *models.VaccinationRecord) (*models.VaccinationRecord, error) {
	prepareRecord(rec)

	var next sql.NullString
	if rec.NextDueOn != nil {
		next = sql.NullString{String: rec.NextDueOn.Format(time.DateOnly), Valid: true}
	}

	query := `insert into vaccinations (id, clinic_id, pet_id, vaccine_id, applicator_id, applied_on, dose, next_due_on, lot, created_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ClinicID, rec.PetID, rec.VaccineID, rec.ApplicatorID,
		rec.AppliedOn.Format(time.DateOnly), rec.Dose, next, dbx.NullString(rec.Lot), rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vaccination: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListByPet(ctx context.Context, clinicID, petID string) ([]*models.VaccinationRecord, error) {
	query := `select id, clinic_id, pet_id, vaccine_id, applicator_id, applied_on, dose, next_due_on, lot, created_at
		from vaccinations where clinic_id = ? and pet_id = ?
		order by applied_on desc, created_at desc`

	rows, err := r.db.QueryContext(ctx, query, clinicID, petID)
	if err != nil {
		return nil, fmt.Errorf("failed to select vaccinations: %w", err)
	}
	defer rows.Close()

	var result []*models.VaccinationRecord
	for rows.Next() {
		var (
			rec     models.VaccinationRecord
			applied string
			next    sql.NullString
			lot     sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ClinicID, &rec.PetID, &rec.VaccineID, &rec.ApplicatorID,
			&applied, &rec.Dose, &next, &lot, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if rec.AppliedOn, err = time.Parse(time.DateOnly, applied); err != nil {
			return nil, fmt.Errorf("bad applied_on %q: %w", applied, err)
		}
		if next.Valid {
			t, err := time.Parse(time.DateOnly, next.String)
			if err != nil {
				return nil, fmt.Errorf("bad next_due_on %q: %w", next.String, err)
			}
			rec.NextDueOn = &t
		}
		rec.Lot = dbx.StringPtr(lot)
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
