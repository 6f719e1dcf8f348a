// Package review holds extracted vaccination candidates while an operator
// edits them, and commits the confirmed set to the record store.
//
// The workflow moves idle -> extracted -> reviewing -> committing -> done,
// with reviewing -> idle on cancel. Each entry is committed in its own unit
// of work: failures are reported per entry, the failed entries stay in
// review so they can be fixed and committed again, and entries committed
// before a failure are kept.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/extraction"
	"github.com/dmitrijs2005/vetintake/internal/logging"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

// Target identifies who the records are for and who applied them.
type Target struct {
	ClinicID     string
	PetID        string
	ApplicatorID string
}

func (t Target) valid() bool {
	return t.ClinicID != "" && t.PetID != "" && t.ApplicatorID != ""
}

// Entry is a candidate under review, addressed by a stable id.
type Entry struct {
	ID        string
	Candidate extraction.Candidate
}

// Patch changes selected fields of an entry. Nil fields are left as they are.
type Patch struct {
	VaccineName      *string
	ApplicationDate  *extraction.Date
	Dose             *int
	NextDueDate      *extraction.Date
	ClearNextDueDate bool
	LotCode          *string
	ClearLotCode     bool
}

type Workflow struct {
	mu         sync.Mutex
	store      Store
	log        logging.Logger
	now        func() time.Time
	newID      func() string
	maxHistory int

	state   State
	target  Target
	entries []*Entry
	history []Transition
}

func NewWorkflow(store Store, log logging.Logger) *Workflow {
	return &Workflow{
		store:      store,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
		maxHistory: DefaultMaxHistory,
		state:      StateIdle,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) Target() Target {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

// History returns a copy of the recorded transitions, oldest first.
func (w *Workflow) History() []Transition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Transition(nil), w.history...)
}

// Load starts a review of candidates for target. With no candidates the
// workflow returns to idle and common.ErrNothingExtracted is returned.
func (w *Workflow) Load(target Target, candidates []extraction.Candidate) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateIdle && w.state != StateDone {
		return 0, invalidTransition(w.state, StateExtracted)
	}
	if !target.valid() {
		return 0, common.ErrMissingTarget
	}

	w.transition(StateExtracted, "load")
	if len(candidates) == 0 {
		w.transition(StateIdle, "nothing-extracted")
		return 0, common.ErrNothingExtracted
	}

	w.target = target
	w.entries = make([]*Entry, 0, len(candidates))
	for _, c := range candidates {
		w.entries = append(w.entries, &Entry{ID: w.newID(), Candidate: c})
	}
	w.transition(StateReviewing, "review")
	return len(w.entries), nil
}

// Entries returns copies of the entries in list order.
func (w *Workflow) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Entry, 0, len(w.entries))
	for _, e := range w.entries {
		out = append(out, copyEntry(e))
	}
	return out
}

func (w *Workflow) Get(id string) (Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, e, err := w.find(id)
	if err != nil {
		return Entry{}, err
	}
	return copyEntry(e), nil
}

// Update applies p to the entry. The name must stay non-blank and the dose
// positive; everything else is taken as the operator typed it.
func (w *Workflow) Update(id string, p Patch) (Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReviewing {
		return Entry{}, fmt.Errorf("%w: cannot edit while %s", common.ErrInvalidTransition, w.state)
	}
	_, e, err := w.find(id)
	if err != nil {
		return Entry{}, err
	}

	c := e.Candidate
	if p.VaccineName != nil {
		name := strings.Join(strings.Fields(*p.VaccineName), " ")
		if name == "" {
			return Entry{}, fmt.Errorf("%w: vaccine name is empty", common.ErrInvalidCandidate)
		}
		c.VaccineName = name
	}
	if p.ApplicationDate != nil {
		if p.ApplicationDate.IsZero() {
			return Entry{}, fmt.Errorf("%w: application date is empty", common.ErrInvalidCandidate)
		}
		c.ApplicationDate = *p.ApplicationDate
	}
	if p.Dose != nil {
		if *p.Dose < 1 {
			return Entry{}, fmt.Errorf("%w: dose must be at least 1, got %d", common.ErrInvalidCandidate, *p.Dose)
		}
		c.Dose = *p.Dose
	}
	switch {
	case p.ClearNextDueDate:
		c.NextDueDate = nil
	case p.NextDueDate != nil:
		d := *p.NextDueDate
		c.NextDueDate = &d
	}
	switch {
	case p.ClearLotCode:
		c.LotCode = nil
	case p.LotCode != nil:
		lot := strings.TrimSpace(*p.LotCode)
		if lot == "" {
			c.LotCode = nil
		} else {
			c.LotCode = &lot
		}
	}

	e.Candidate = c
	return copyEntry(e), nil
}

// Remove drops an entry from the set under review.
func (w *Workflow) Remove(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReviewing {
		return fmt.Errorf("%w: cannot remove while %s", common.ErrInvalidTransition, w.state)
	}
	i, _, err := w.find(id)
	if err != nil {
		return err
	}
	w.entries = append(w.entries[:i], w.entries[i+1:]...)
	return nil
}

// Cancel discards the entries without writing anything. It is a no-op when
// already idle.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateIdle:
		return nil
	case StateReviewing, StateDone:
		w.entries = nil
		w.target = Target{}
		w.transition(StateIdle, "cancel")
		return nil
	default:
		return invalidTransition(w.state, StateIdle)
	}
}

// Commit writes every entry, in list order, each in its own store unit. The
// returned report has one outcome per entry. When all succeed the workflow is
// done and the set is cleared; otherwise it goes back to reviewing with only
// the failed entries. If ctx ends mid-way, the remaining entries are reported
// as failed with the context error.
func (w *Workflow) Commit(ctx context.Context) (*Report, error) {
	w.mu.Lock()
	if w.state != StateReviewing {
		from := w.state
		w.mu.Unlock()
		return nil, invalidTransition(from, StateCommitting)
	}
	w.transition(StateCommitting, "commit")
	target := w.target
	batch := make([]Entry, 0, len(w.entries))
	for _, e := range w.entries {
		batch = append(batch, copyEntry(e))
	}
	w.mu.Unlock()

	report := &Report{Outcomes: make([]Outcome, 0, len(batch))}
	for _, e := range batch {
		if err := ctx.Err(); err != nil {
			report.Outcomes = append(report.Outcomes, Outcome{
				EntryID:     e.ID,
				VaccineName: e.Candidate.VaccineName,
				Err:         err,
			})
			continue
		}
		o := w.commitOne(ctx, target, e)
		if o.Err != nil {
			w.log.Warn(ctx, "vaccination commit failed",
				"entry_id", e.ID, "vaccine", e.Candidate.VaccineName, "error", o.Err)
		}
		report.Outcomes = append(report.Outcomes, o)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	failed := make(map[string]struct{}, report.Failed())
	for _, o := range report.Outcomes {
		if !o.OK() {
			failed[o.EntryID] = struct{}{}
		}
	}

	if len(failed) == 0 {
		w.entries = nil
		w.transition(StateDone, "committed")
	} else {
		kept := w.entries[:0]
		for _, e := range w.entries {
			if _, ok := failed[e.ID]; ok {
				kept = append(kept, e)
			}
		}
		w.entries = kept
		w.transition(StateReviewing, "partial-failure")
	}

	w.log.Info(ctx, "vaccinations committed",
		logging.KeyClinicID, target.ClinicID, logging.KeyPetID, target.PetID,
		"committed", report.Committed(), "failed", report.Failed(),
		"created_vaccines", report.CreatedVaccines())

	return report, nil
}

func (w *Workflow) commitOne(ctx context.Context, target Target, e Entry) Outcome {
	c := e.Candidate
	out := Outcome{EntryID: e.ID, VaccineName: c.VaccineName}

	var (
		recordID  string
		vaccineID string
		created   bool
	)
	err := w.store.WithinUnit(ctx, func(ctx context.Context, catalog Catalog, records Records) error {
		created = false

		v, err := catalog.FindByName(ctx, target.ClinicID, c.VaccineName)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			v, err = catalog.Create(ctx, &models.Vaccine{
				ClinicID: target.ClinicID,
				Name:     c.VaccineName,
				Doses:    1,
			})
			if err != nil {
				return fmt.Errorf("create catalog entry %q: %w", c.VaccineName, err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("find catalog entry %q: %w", c.VaccineName, err)
		}

		rec := &models.VaccinationRecord{
			ClinicID:     target.ClinicID,
			PetID:        target.PetID,
			VaccineID:    v.ID,
			ApplicatorID: target.ApplicatorID,
			AppliedOn:    c.ApplicationDate.Time(),
			Dose:         c.Dose,
			Lot:          c.LotCode,
		}
		if c.NextDueDate != nil {
			next := c.NextDueDate.Time()
			rec.NextDueOn = &next
		}
		rec, err = records.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("create vaccination record: %w", err)
		}

		recordID = rec.ID
		vaccineID = v.ID
		return nil
	})
	if err != nil {
		out.Err = err
		return out
	}

	out.RecordID = recordID
	out.VaccineID = vaccineID
	out.CreatedVaccine = created
	return out
}

func (w *Workflow) find(id string) (int, *Entry, error) {
	for i, e := range w.entries {
		if e.ID == id {
			return i, e, nil
		}
	}
	return -1, nil, fmt.Errorf("%w: %s", common.ErrEntryNotFound, id)
}

// transition must be called with mu held.
func (w *Workflow) transition(to State, trigger string) {
	if !canTransition(w.state, to) {
		// internal sequencing bug, never operator input
		panic(invalidTransition(w.state, to))
	}
	if len(w.history) >= w.maxHistory {
		evict := w.maxHistory / 10
		if evict < 1 {
			evict = 1
		}
		w.history = w.history[evict:]
	}
	w.history = append(w.history, Transition{From: w.state, To: to, Trigger: trigger, At: w.now()})
	w.state = to
}

func copyEntry(e *Entry) Entry {
	out := *e
	if e.Candidate.NextDueDate != nil {
		d := *e.Candidate.NextDueDate
		out.Candidate.NextDueDate = &d
	}
	if e.Candidate.LotCode != nil {
		l := *e.Candidate.LotCode
		out.Candidate.LotCode = &l
	}
	return out
}
