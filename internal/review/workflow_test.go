package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/extraction"
	"github.com/dmitrijs2005/vetintake/internal/logging"
)

var target = Target{ClinicID: "clinic-1", PetID: "pet-1", ApplicatorID: "vet-1"}

func date(t *testing.T, y int, m time.Month, d int) extraction.Date {
	t.Helper()
	out, ok := extraction.NewDate(y, m, d)
	require.True(t, ok)
	return out
}

func candidate(t *testing.T, name string, d int) extraction.Candidate {
	return extraction.Candidate{
		VaccineName:     name,
		ApplicationDate: date(t, 2024, time.March, d),
		Dose:            1,
		Confidence:      0.9,
		Tier:            extraction.TierKnown,
	}
}

func newTestWorkflow(s Store) *Workflow {
	return NewWorkflow(s, logging.Nop())
}

func TestLoad_StartsReview(t *testing.T) {
	w := newTestWorkflow(newMemStore())

	n, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1), candidate(t, "ANTIRRÁBICA", 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, StateReviewing, w.State())
	assert.Equal(t, target, w.Target())

	entries := w.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "V10", entries[0].Candidate.VaccineName)
	assert.Equal(t, "ANTIRRÁBICA", entries[1].Candidate.VaccineName)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	got, err := w.Get(entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entries[1], got)
}

func TestLoad_NothingExtracted(t *testing.T) {
	w := newTestWorkflow(newMemStore())

	_, err := w.Load(target, nil)
	require.ErrorIs(t, err, common.ErrNothingExtracted)
	assert.Equal(t, StateIdle, w.State())

	h := w.History()
	require.Len(t, h, 2)
	assert.Equal(t, StateIdle, h[0].From)
	assert.Equal(t, StateExtracted, h[0].To)
	assert.Equal(t, StateExtracted, h[1].From)
	assert.Equal(t, StateIdle, h[1].To)
}

func TestLoad_Rejects(t *testing.T) {
	w := newTestWorkflow(newMemStore())

	_, err := w.Load(Target{ClinicID: "clinic-1"}, []extraction.Candidate{candidate(t, "V10", 1)})
	require.ErrorIs(t, err, common.ErrMissingTarget)
	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, w.History())

	_, err = w.Load(target, []extraction.Candidate{candidate(t, "V10", 1)})
	require.NoError(t, err)

	_, err = w.Load(target, []extraction.Candidate{candidate(t, "V8", 1)})
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.Len(t, w.Entries(), 1)
}

func TestCancel_WritesNothing(t *testing.T) {
	s := newMemStore()
	w := newTestWorkflow(s)

	require.NoError(t, w.Cancel())
	assert.Empty(t, w.History())

	_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1)})
	require.NoError(t, err)
	require.NoError(t, w.Cancel())

	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, w.Entries())
	assert.Equal(t, Target{}, w.Target())
	assert.Zero(t, s.units)
	assert.Empty(t, s.records)
}

func TestCommit_ReusesCatalogEntry(t *testing.T) {
	s := newMemStore()
	w := newTestWorkflow(s)

	_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1), candidate(t, "V10", 22)})
	require.NoError(t, err)

	report, err := w.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Committed())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 1, report.CreatedVaccines())
	assert.True(t, report.Outcomes[0].CreatedVaccine)
	assert.False(t, report.Outcomes[1].CreatedVaccine)
	assert.Equal(t, report.Outcomes[0].VaccineID, report.Outcomes[1].VaccineID)

	require.Len(t, s.vaccines, 1)
	assert.Equal(t, 1, s.vaccines[0].Doses)
	assert.Equal(t, "clinic-1", s.vaccines[0].ClinicID)

	require.Len(t, s.records, 2)
	rec := s.records[1]
	assert.Equal(t, "pet-1", rec.PetID)
	assert.Equal(t, "vet-1", rec.ApplicatorID)
	assert.Equal(t, time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC), rec.AppliedOn)
	assert.Nil(t, rec.NextDueOn)
	assert.Nil(t, rec.Lot)

	assert.Equal(t, StateDone, w.State())
	assert.Empty(t, w.Entries())
}

func TestCommit_CarriesOptionalFields(t *testing.T) {
	s := newMemStore()
	w := newTestWorkflow(s)

	c := candidate(t, "GIÁRDIA", 5)
	next := date(t, 2025, time.March, 5)
	lot := "AB123"
	c.Dose = 2
	c.NextDueDate = &next
	c.LotCode = &lot

	_, err := w.Load(target, []extraction.Candidate{c})
	require.NoError(t, err)
	_, err = w.Commit(context.Background())
	require.NoError(t, err)

	require.Len(t, s.records, 1)
	rec := s.records[0]
	assert.Equal(t, 2, rec.Dose)
	require.NotNil(t, rec.NextDueOn)
	assert.Equal(t, next.Time(), *rec.NextDueOn)
	require.NotNil(t, rec.Lot)
	assert.Equal(t, "AB123", *rec.Lot)
}

func TestCommit_PartialFailureKeepsFailedEntries(t *testing.T) {
	s := newMemStore()
	s.failRecord["V10"] = errBoom
	w := newTestWorkflow(s)

	_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1), candidate(t, "ANTIRRÁBICA", 2)})
	require.NoError(t, err)
	failedID := w.Entries()[0].ID

	report, err := w.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Committed())
	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Outcomes[0].Err, errBoom)
	assert.True(t, report.Outcomes[1].OK())

	// the failed unit is rolled back, the other one stays
	require.Len(t, s.vaccines, 1)
	assert.Equal(t, "ANTIRRÁBICA", s.vaccines[0].Name)
	require.Len(t, s.records, 1)

	assert.Equal(t, StateReviewing, w.State())
	entries := w.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, failedID, entries[0].ID)

	delete(s.failRecord, "V10")
	report, err = w.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Committed())
	assert.Equal(t, StateDone, w.State())
	assert.Len(t, s.records, 2)
	assert.Len(t, s.vaccines, 2)
}

func TestCommit_ContextCancelledMidway(t *testing.T) {
	s := newMemStore()
	w := newTestWorkflow(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.onUnit = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	_, err := w.Load(target, []extraction.Candidate{
		candidate(t, "V10", 1), candidate(t, "V8", 2), candidate(t, "FELV", 3),
	})
	require.NoError(t, err)

	report, err := w.Commit(ctx)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)
	assert.True(t, report.Outcomes[0].OK())
	assert.ErrorIs(t, report.Outcomes[1].Err, context.Canceled)
	assert.ErrorIs(t, report.Outcomes[2].Err, context.Canceled)
	assert.Equal(t, 1, s.units)

	assert.Equal(t, StateReviewing, w.State())
	assert.Len(t, w.Entries(), 2)
}

func TestCommit_OnlyFromReviewing(t *testing.T) {
	w := newTestWorkflow(newMemStore())

	_, err := w.Commit(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.Equal(t, StateIdle, w.State())
}

func TestDone_CanLoadAgain(t *testing.T) {
	w := newTestWorkflow(newMemStore())

	_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1)})
	require.NoError(t, err)
	_, err = w.Commit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateDone, w.State())

	_, err = w.Load(target, []extraction.Candidate{candidate(t, "V8", 1)})
	require.NoError(t, err)
	assert.Equal(t, StateReviewing, w.State())

	var path []State
	for _, tr := range w.History() {
		path = append(path, tr.To)
	}
	assert.Equal(t, []State{
		StateExtracted, StateReviewing, StateCommitting, StateDone,
		StateExtracted, StateReviewing,
	}, path)
}

func TestUpdate(t *testing.T) {
	w := newTestWorkflow(newMemStore())
	lot := "L1"
	c := candidate(t, "raiva", 1)
	c.LotCode = &lot
	_, err := w.Load(target, []extraction.Candidate{c})
	require.NoError(t, err)
	id := w.Entries()[0].ID

	name := "  ANTIRRÁBICA   Nobivac "
	dose := 3
	next := date(t, 2025, time.January, 10)
	e, err := w.Update(id, Patch{VaccineName: &name, Dose: &dose, NextDueDate: &next, ClearLotCode: true})
	require.NoError(t, err)
	assert.Equal(t, "ANTIRRÁBICA Nobivac", e.Candidate.VaccineName)
	assert.Equal(t, 3, e.Candidate.Dose)
	require.NotNil(t, e.Candidate.NextDueDate)
	assert.Equal(t, next, *e.Candidate.NextDueDate)
	assert.Nil(t, e.Candidate.LotCode)

	// returned entries are copies
	e.Candidate.NextDueDate = nil
	got, err := w.Get(id)
	require.NoError(t, err)
	assert.NotNil(t, got.Candidate.NextDueDate)

	_, err = w.Update(id, Patch{ClearNextDueDate: true})
	require.NoError(t, err)
	got, _ = w.Get(id)
	assert.Nil(t, got.Candidate.NextDueDate)
}

func TestUpdate_Validation(t *testing.T) {
	w := newTestWorkflow(newMemStore())
	_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1)})
	require.NoError(t, err)
	id := w.Entries()[0].ID

	blank := "   "
	zero := 0
	tests := []struct {
		name  string
		patch Patch
	}{
		{"blank name", Patch{VaccineName: &blank}},
		{"zero dose", Patch{Dose: &zero}},
		{"empty date", Patch{ApplicationDate: &extraction.Date{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Update(id, tt.patch)
			require.ErrorIs(t, err, common.ErrInvalidCandidate)
		})
	}

	got, err := w.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "V10", got.Candidate.VaccineName)
	assert.Equal(t, 1, got.Candidate.Dose)

	_, err = w.Update("missing", Patch{})
	require.ErrorIs(t, err, common.ErrEntryNotFound)
}

func TestRemove(t *testing.T) {
	s := newMemStore()
	w := newTestWorkflow(s)
	_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1), candidate(t, "V8", 2)})
	require.NoError(t, err)
	entries := w.Entries()

	require.NoError(t, w.Remove(entries[0].ID))
	require.ErrorIs(t, w.Remove(entries[0].ID), common.ErrEntryNotFound)

	_, err = w.Commit(context.Background())
	require.NoError(t, err)
	require.Len(t, s.vaccines, 1)
	assert.Equal(t, "V8", s.vaccines[0].Name)

	require.ErrorIs(t, w.Remove(entries[1].ID), common.ErrInvalidTransition)
}

func TestHistory_EvictsOldest(t *testing.T) {
	w := newTestWorkflow(newMemStore())
	w.maxHistory = 10

	for i := 0; i < 20; i++ {
		_, err := w.Load(target, []extraction.Candidate{candidate(t, "V10", 1)})
		require.NoError(t, err)
		require.NoError(t, w.Cancel())
	}

	h := w.History()
	assert.LessOrEqual(t, len(h), 10)
	last := h[len(h)-1]
	assert.Equal(t, StateReviewing, last.From)
	assert.Equal(t, StateIdle, last.To)
	assert.Equal(t, "cancel", last.Trigger)
}
