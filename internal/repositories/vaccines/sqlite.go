package vaccines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

// SQLiteRepository stores the catalog in a local SQLite file. SQLite only
// folds ASCII case, so a lower-cased name_key column is kept for lookups.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) FindByName(ctx context.Context, clinicID, name string) (*models.Vaccine, error) {
	query := `select id, clinic_id, name, doses, manufacturer, interval_days, created_at from vaccines
		where clinic_id = ? and name_key like '%' || ? || '%' escape '\'
		order by created_at, id
		limit 1`

	key := escapeLike(strings.ToLower(strings.TrimSpace(name)))
	v, err := scanVaccine(r.db.QueryRowContext(ctx, query, clinicID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to find vaccine: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, v *models.Vaccine) (*models.Vaccine, error) {
	prepareVaccine(v)

	query := `insert into vaccines (id, clinic_id, name, name_key, doses, manufacturer, interval_days, created_at)
		values (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.ClinicID, v.Name, strings.ToLower(v.Name), v.Doses, dbx.NullString(v.Manufacturer), dbx.NullInt(v.IntervalDays), v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vaccine: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) ListByClinic(ctx context.Context, clinicID string) ([]*models.Vaccine, error) {
	query := `select id, clinic_id, name, doses, manufacturer, interval_days, created_at from vaccines
		where clinic_id = ? order by created_at, id`

	rows, err := r.db.QueryContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to select vaccines: %w", err)
	}
	defer rows.Close()

	var result []*models.Vaccine
	for rows.Next() {
		v, err := scanVaccine(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
