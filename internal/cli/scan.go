package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/filex"
	"github.com/dmitrijs2005/vetintake/internal/review"
	"github.com/dmitrijs2005/vetintake/internal/storage"
)

// Pet selects the patient that scans and commits apply to.
func (a *App) Pet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if a.petID == "" {
			fmt.Fprintln(a.out, "No patient selected")
		} else {
			fmt.Fprintln(a.out, "Patient:", a.petID)
		}
		return nil
	}
	if s := a.workflow.State(); s == review.StateReviewing || s == review.StateCommitting {
		return errors.New("finish or cancel the current review first")
	}
	a.petID = args[0]
	a.lastScans = nil
	return nil
}

// Scan uploads a vaccination card image, extracts candidates and opens them
// for review.
func (a *App) Scan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: scan <image>")
	}
	if a.petID == "" {
		return common.ErrMissingTarget
	}

	path := args[0]
	data, err := filex.ReadLimited(path, storage.MaxImageSize)
	if err != nil {
		if errors.Is(err, filex.ErrTooLarge) {
			return common.ErrImageTooLarge
		}
		return err
	}

	res, err := a.intake.ProcessScan(ctx, a.clinicID, storage.ScanUpload{
		PetID:       a.petID,
		FileName:    filepath.Base(path),
		ContentType: filex.ContentType(path, data),
		Data:        data,
	})
	if err != nil {
		return err
	}

	n, err := a.workflow.Load(review.Target{
		ClinicID:     a.clinicID,
		PetID:        a.petID,
		ApplicatorID: a.operator.UserID,
	}, res.Candidates)
	if errors.Is(err, common.ErrNothingExtracted) {
		fmt.Fprintln(a.out, "Nenhuma vacina encontrada no documento.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d vaccination(s) extracted, review them with 'list'\n", n)
	return a.List(ctx, nil)
}

func (a *App) Scans(ctx context.Context, args []string) error {
	if a.petID == "" {
		return common.ErrMissingTarget
	}
	scans, err := a.intake.Scans(ctx, a.clinicID, a.petID)
	if err != nil {
		return err
	}
	a.lastScans = scans
	if len(scans) == 0 {
		fmt.Fprintln(a.out, "No scans")
	}
	for i, s := range scans {
		fmt.Fprintf(a.out, "%d. %s  %s  %s  %d candidate(s)\n",
			i+1, s.CreatedAt.Format("2006-01-02 15:04"), s.StorageKey, s.Status, s.CandidateCount)
	}
	return nil
}

// Preview prints a presigned URL for a scan listed by the last scans command.
func (a *App) Preview(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: preview <n>")
	}
	i, err := entryIndex(args[0], len(a.lastScans))
	if err != nil {
		return err
	}
	url, err := a.intake.PreviewURL(ctx, a.lastScans[i].StorageKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}
