package review

// Outcome is the commit result of one entry.
type Outcome struct {
	EntryID        string
	VaccineName    string
	RecordID       string
	VaccineID      string
	CreatedVaccine bool
	Err            error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Report lists per-entry outcomes in commit order.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) Committed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Committed()
}

// CreatedVaccines counts catalog entries created during the commit.
func (r *Report) CreatedVaccines() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() && o.CreatedVaccine {
			n++
		}
	}
	return n
}
