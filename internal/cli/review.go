package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vetintake/internal/extraction"
	"github.com/dmitrijs2005/vetintake/internal/review"
)

// clearValue resets an optional field in edit.
const clearValue = "-"

// entryIndex parses a 1-based position in a list of n items.
func entryIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("no item %q (have %d)", arg, n)
	}
	return i - 1, nil
}

func (a *App) entryAt(arg string) (review.Entry, error) {
	entries := a.workflow.Entries()
	i, err := entryIndex(arg, len(entries))
	if err != nil {
		return review.Entry{}, err
	}
	return entries[i], nil
}

func formatEntry(n int, e review.Entry, threshold float64) string {
	c := e.Candidate
	var b strings.Builder
	marker := " "
	if c.NeedsAttention(threshold) {
		marker = "!"
	}
	fmt.Fprintf(&b, "%s %d. %s  %s  dose %d", marker, n, c.VaccineName, c.ApplicationDate, c.Dose)
	if c.NextDueDate != nil {
		fmt.Fprintf(&b, "  next %s", c.NextDueDate)
	}
	if c.LotCode != nil {
		fmt.Fprintf(&b, "  lot %s", *c.LotCode)
	}
	fmt.Fprintf(&b, "  (%.0f%%)", c.Confidence*100)
	return b.String()
}

// List prints the entries under review. Entries marked with "!" have a
// confidence below the attention threshold.
func (a *App) List(ctx context.Context, args []string) error {
	entries := a.workflow.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Nothing under review")
		return nil
	}
	for i, e := range entries {
		fmt.Fprintln(a.out, formatEntry(i+1, e, a.threshold))
	}
	return nil
}

// parsePatch reads field=value pairs. Fields are name, date, dose, next and
// lot; next and lot accept "-" to clear the value.
func parsePatch(pairs []string) (review.Patch, error) {
	var p review.Patch
	if len(pairs) == 0 {
		return p, errors.New("nothing to change")
	}
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			return p, fmt.Errorf("expected field=value, got %q", pair)
		}
		value = strings.ReplaceAll(value, "_", " ")
		switch strings.ToLower(field) {
		case "name":
			v := value
			p.VaccineName = &v
		case "date":
			d, err := extraction.ParseDate(value)
			if err != nil {
				return p, err
			}
			p.ApplicationDate = &d
		case "dose":
			n, err := strconv.Atoi(value)
			if err != nil {
				return p, fmt.Errorf("invalid dose %q", value)
			}
			p.Dose = &n
		case "next":
			if value == clearValue {
				p.ClearNextDueDate = true
				continue
			}
			d, err := extraction.ParseDate(value)
			if err != nil {
				return p, err
			}
			p.NextDueDate = &d
		case "lot":
			if value == clearValue {
				p.ClearLotCode = true
				continue
			}
			v := value
			p.LotCode = &v
		default:
			return p, fmt.Errorf("unknown field %q", field)
		}
	}
	return p, nil
}

// Edit changes fields of entry n: edit <n> field=value... Underscores in a
// value stand for spaces.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: edit <n> field=value...")
	}
	e, err := a.entryAt(args[0])
	if err != nil {
		return err
	}
	p, err := parsePatch(args[1:])
	if err != nil {
		return err
	}
	updated, err := a.workflow.Update(e.ID, p)
	if err != nil {
		return err
	}
	n, _ := strconv.Atoi(args[0])
	fmt.Fprintln(a.out, formatEntry(n, updated, a.threshold))
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: remove <n>")
	}
	e, err := a.entryAt(args[0])
	if err != nil {
		return err
	}
	return a.workflow.Remove(e.ID)
}

// Commit saves the entries under review and prints one line per entry.
func (a *App) Commit(ctx context.Context, args []string) error {
	report, err := a.workflow.Commit(ctx)
	if err != nil {
		return err
	}
	for _, o := range report.Outcomes {
		if o.OK() {
			note := ""
			if o.CreatedVaccine {
				note = " (new catalog entry)"
			}
			fmt.Fprintf(a.out, "  ok     %s%s\n", o.VaccineName, note)
		} else {
			fmt.Fprintf(a.out, "  failed %s: %v\n", o.VaccineName, o.Err)
		}
	}
	fmt.Fprintf(a.out, "%d saved, %d failed\n", report.Committed(), report.Failed())
	if report.Failed() > 0 {
		fmt.Fprintln(a.out, "Failed entries are still under review; fix them and commit again.")
	}
	return nil
}

func (a *App) Cancel(ctx context.Context, args []string) error {
	if err := a.workflow.Cancel(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Review discarded")
	return nil
}

// History prints the saved vaccinations of the selected patient.
func (a *App) History(ctx context.Context, args []string) error {
	if a.petID == "" {
		return errors.New("select a patient with 'pet <id>' first")
	}
	recs, err := a.records.History(ctx, a.clinicID, a.petID)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No vaccinations on record")
		return nil
	}
	catalog, err := a.records.Catalog(ctx, a.clinicID)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(catalog))
	for _, v := range catalog {
		names[v.ID] = v.Name
	}

	for _, r := range recs {
		name, ok := names[r.VaccineID]
		if !ok {
			name = r.VaccineID
		}
		line := fmt.Sprintf("%s  %s  dose %d", r.AppliedOn.UTC().Format("2006-01-02"), name, r.Dose)
		if r.NextDueOn != nil {
			line += "  next " + r.NextDueOn.UTC().Format("2006-01-02")
		}
		if r.Lot != nil {
			line += "  lot " + *r.Lot
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}
