package vaccines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByName(ctx context.Context, clinicID, name string) (*models.Vaccine, error) {
	query :=
		`SELECT id, clinic_id, name, doses, manufacturer, interval_days, created_at FROM vaccines
		 WHERE clinic_id = $1 AND name ILIKE '%' || $2 || '%' ESCAPE '\'
		 ORDER BY created_at, id
		 LIMIT 1`

	v, err := scanVaccine(r.db.QueryRowContext(ctx, query, clinicID, escapeLike(strings.TrimSpace(name))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vaccine) (*models.Vaccine, error) {
	prepareVaccine(v)

	query :=
		`INSERT INTO vaccines (id, clinic_id, name, doses, manufacturer, interval_days, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.ClinicID, v.Name, v.Doses, dbx.NullString(v.Manufacturer), dbx.NullInt(v.IntervalDays), v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) ListByClinic(ctx context.Context, clinicID string) ([]*models.Vaccine, error) {
	query :=
		`SELECT id, clinic_id, name, doses, manufacturer, interval_days, created_at FROM vaccines
		 WHERE clinic_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Vaccine
	for rows.Next() {
		v, err := scanVaccine(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVaccine(row rowScanner) (*models.Vaccine, error) {
	var (
		v            models.Vaccine
		manufacturer sql.NullString
		interval     sql.NullInt64
	)
	if err := row.Scan(&v.ID, &v.ClinicID, &v.Name, &v.Doses, &manufacturer, &interval, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Manufacturer = dbx.StringPtr(manufacturer)
	if interval.Valid {
		days := int(interval.Int64)
		v.IntervalDays = &days
	}
	return &v, nil
}

func prepareVaccine(v *models.Vaccine) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Doses < 1 {
		v.Doses = 1
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.Name = strings.TrimSpace(v.Name)
}
