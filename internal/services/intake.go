package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vetintake/internal/extraction"
	"github.com/dmitrijs2005/vetintake/internal/logging"
	"github.com/dmitrijs2005/vetintake/internal/models"
	"github.com/dmitrijs2005/vetintake/internal/ocr"
	"github.com/dmitrijs2005/vetintake/internal/repositories/repomanager"
	"github.com/dmitrijs2005/vetintake/internal/storage"
)

// ScanStorage stores card images and hands out preview links.
type ScanStorage interface {
	Upload(ctx context.Context, u storage.ScanUpload) (*storage.StoredScan, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// ScanResult is what one processed card produced.
type ScanResult struct {
	Scan       *models.Scan
	Text       string
	Candidates []extraction.Candidate
}

type IntakeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ScanStorage
	engine      ocr.Engine
	language    string
	extractor   *extraction.Extractor
	log         logging.Logger
}

func NewIntakeService(db *sql.DB, repomanager repomanager.RepositoryManager, storage ScanStorage,
	engine ocr.Engine, language string, extractor *extraction.Extractor, log logging.Logger) *IntakeService {
	return &IntakeService{
		db:          db,
		repomanager: repomanager,
		storage:     storage,
		engine:      engine,
		language:    language,
		extractor:   extractor,
		log:         log,
	}
}

// ProcessScan stores the card image, recognizes its text and extracts
// vaccination candidates. Every upload is logged as a scan row whose status
// records the outcome. A card with no recognizable records is not an error:
// the result simply has no candidates. Engine errors are returned as is.
func (s *IntakeService) ProcessScan(ctx context.Context, clinicID string, u storage.ScanUpload) (*ScanResult, error) {
	stored, err := s.storage.Upload(ctx, u)
	if err != nil {
		return nil, err
	}

	scanRepo := s.repomanager.Scans(s.db)
	scan, err := scanRepo.Create(ctx, &models.Scan{
		ClinicID:    clinicID,
		PetID:       u.PetID,
		StorageKey:  stored.Key,
		Fingerprint: stored.Fingerprint,
		ContentType: stored.ContentType,
		Size:        stored.Size,
		Status:      models.ScanUploaded,
	})
	if err != nil {
		return nil, fmt.Errorf("error logging scan: %w", err)
	}

	log := s.log.With(logging.KeyScanID, scan.ID, logging.KeyPetID, u.PetID)

	text, err := s.engine.Recognize(ctx, u.Data, s.language)
	if err != nil {
		log.Error(ctx, "recognition failed", "error", err)
		s.setStatus(ctx, scan, models.ScanFailed, 0)
		return nil, err
	}

	candidates := s.extractor.Extract(text)
	status := models.ScanExtracted
	if len(candidates) == 0 {
		status = models.ScanEmpty
	}
	s.setStatus(ctx, scan, status, len(candidates))

	log.Info(ctx, "scan processed", "candidates", len(candidates), "status", string(status))

	return &ScanResult{Scan: scan, Text: text, Candidates: candidates}, nil
}

// setStatus is best effort: the scan log must not mask the extraction outcome.
func (s *IntakeService) setStatus(ctx context.Context, scan *models.Scan, status models.ScanStatus, candidates int) {
	if err := s.repomanager.Scans(s.db).UpdateStatus(ctx, scan.ID, status, candidates); err != nil {
		s.log.Warn(ctx, "scan status not updated", logging.KeyScanID, scan.ID, "error", err)
		return
	}
	scan.Status = status
	scan.CandidateCount = candidates
}

// Scans lists the cards uploaded for a pet, newest first.
func (s *IntakeService) Scans(ctx context.Context, clinicID, petID string) ([]*models.Scan, error) {
	return s.repomanager.Scans(s.db).ListByPet(ctx, clinicID, petID)
}

// PreviewURL returns a short-lived link to a stored card image.
func (s *IntakeService) PreviewURL(ctx context.Context, key string) (string, error) {
	return s.storage.PresignGet(ctx, key)
}
