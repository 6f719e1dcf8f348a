package review

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vetintake/internal/common"
	"github.com/dmitrijs2005/vetintake/internal/models"
)

// memStore keeps committed units in memory. Work done by a failing unit is
// discarded, like a rolled back transaction.
type memStore struct {
	mu       sync.Mutex
	vaccines []models.Vaccine
	records  []models.VaccinationRecord
	units    int

	// failRecord makes Records.Create fail for the named vaccine.
	failRecord map[string]error
	// onUnit runs at the start of every unit.
	onUnit func(n int)
}

func newMemStore() *memStore {
	return &memStore{failRecord: map[string]error{}}
}

type memUnit struct {
	s        *memStore
	vaccines []models.Vaccine
	records  []models.VaccinationRecord
}

func (s *memStore) WithinUnit(ctx context.Context, fn func(ctx context.Context, catalog Catalog, records Records) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.units++
	if s.onUnit != nil {
		s.onUnit(s.units)
	}

	u := &memUnit{s: s}
	if err := fn(ctx, u, memRecords{u}); err != nil {
		return err
	}
	s.vaccines = append(s.vaccines, u.vaccines...)
	s.records = append(s.records, u.records...)
	return nil
}

func (u *memUnit) FindByName(_ context.Context, clinicID, name string) (*models.Vaccine, error) {
	needle := strings.ToLower(name)
	for _, list := range [][]models.Vaccine{u.s.vaccines, u.vaccines} {
		for _, v := range list {
			if v.ClinicID == clinicID && strings.Contains(strings.ToLower(v.Name), needle) {
				out := v
				return &out, nil
			}
		}
	}
	return nil, common.ErrorNotFound
}

func (u *memUnit) Create(_ context.Context, v *models.Vaccine) (*models.Vaccine, error) {
	out := *v
	out.ID = uuid.NewString()
	u.vaccines = append(u.vaccines, out)
	return &out, nil
}

type memRecords struct{ u *memUnit }

func (r memRecords) Create(_ context.Context, rec *models.VaccinationRecord) (*models.VaccinationRecord, error) {
	for _, v := range append(append([]models.Vaccine(nil), r.u.s.vaccines...), r.u.vaccines...) {
		if v.ID == rec.VaccineID {
			if err, ok := r.u.s.failRecord[v.Name]; ok {
				return nil, err
			}
		}
	}
	out := *rec
	out.ID = uuid.NewString()
	r.u.records = append(r.u.records, out)
	return &out, nil
}

var errBoom = errors.New("boom")
