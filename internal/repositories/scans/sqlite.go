package scans

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Scan) (*models.Scan, error) {
	prepareScan(s)

	query := `insert into scans (id, clinic_id, pet_id, storage_key, fingerprint, content_type, size, candidate_count, status, created_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ClinicID, s.PetID, s.StorageKey, s.Fingerprint, s.ContentType, s.Size,
		s.CandidateCount, string(s.Status), s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.ScanStatus, candidates int) error {
	res, err := r.db.ExecContext(ctx, `update scans set status = ?, candidate_count = ? where id = ?`,
		string(status), candidates, id)
	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListByPet(ctx context.Context, clinicID, petID string) ([]*models.Scan, error) {
	query := `select id, clinic_id, pet_id, storage_key, fingerprint, content_type, size, candidate_count, status, created_at
		from scans where clinic_id = ? and pet_id = ? order by created_at desc`

	rows, err := r.db.QueryContext(ctx, query, clinicID, petID)
	if err != nil {
		return nil, fmt.Errorf("failed to select scans: %w", err)
	}
	defer rows.Close()

	var result []*models.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
