package scans

import (
	"context"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, s *models.Scan) (*models.Scan, error) {
	prepareScan(s)

	query :=
		`INSERT INTO scans (id, clinic_id, pet_id, storage_key, fingerprint, content_type, size, candidate_count, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ClinicID, s.PetID, s.StorageKey, s.Fingerprint, s.ContentType, s.Size,
		s.CandidateCount, string(s.Status), s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.ScanStatus, candidates int) error {
	query :=
		`UPDATE scans SET status = $2, candidate_count = $3
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, string(status), candidates)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByPet(ctx context.Context, clinicID, petID string) ([]*models.Scan, error) {
	query :=
		`SELECT id, clinic_id, pet_id, storage_key, fingerprint, content_type, size, candidate_count, status, created_at
		 FROM scans
		 WHERE clinic_id = $1 AND pet_id = $2
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, clinicID, petID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*models.Scan, error) {
	var (
		s      models.Scan
		status string
	)
	if err := row.Scan(&s.ID, &s.ClinicID, &s.PetID, &s.StorageKey, &s.Fingerprint, &s.ContentType,
		&s.Size, &s.CandidateCount, &status, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Status = models.ScanStatus(status)
	return &s, nil
}
