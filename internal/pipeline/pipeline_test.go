package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/sites"
)

func newRecorder(t *testing.T, source string) *etl.Recorder {
	t.Helper()
	rec, err := etl.Begin(context.Background(), etl.RecorderConfig{
		Source: source,
		IDs:    uuid.NewUUIDGenerator(),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	return rec
}

type scoreCall struct {
	id     string
	score  float64
	status sites.CandidateStatus
}

type fakeCandidateStore struct {
	rows       []sites.SiteCandidate
	failCreate string
	scoreCalls []scoreCall
}

func (f *fakeCandidateStore) Create(_ context.Context, c sites.SiteCandidate) error {
	if f.failCreate != "" && c.Address == f.failCreate {
		return fmt.Errorf("deadlock detected")
	}
	f.rows = append(f.rows, c)
	return nil
}

func (f *fakeCandidateStore) Get(_ context.Context, id string) (sites.SiteCandidate, error) {
	for _, c := range f.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return sites.SiteCandidate{}, sites.ErrNotFound
}

func (f *fakeCandidateStore) List(_ context.Context, fl sites.CandidateFilter) ([]sites.SiteCandidate, error) {
	var matched []sites.SiteCandidate
	for _, c := range f.rows {
		if fl.State != "" && c.State != fl.State {
			continue
		}
		matched = append(matched, c)
	}
	if fl.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[fl.Offset:]
	if fl.Limit > 0 && len(matched) > fl.Limit {
		matched = matched[:fl.Limit]
	}
	return matched, nil
}

func (f *fakeCandidateStore) SetScore(_ context.Context, id string, score float64, status sites.CandidateStatus) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].FinalScore = &score
			f.rows[i].Status = status
			f.scoreCalls = append(f.scoreCalls, scoreCall{id: id, score: score, status: status})
			return nil
		}
	}
	return sites.ErrNotFound
}

type fakeParcelStore struct {
	rows map[string]sites.Parcel
}

func newFakeParcelStore() *fakeParcelStore {
	return &fakeParcelStore{rows: map[string]sites.Parcel{}}
}

func (f *fakeParcelStore) Insert(_ context.Context, p sites.Parcel) (bool, error) {
	if _, ok := f.rows[p.CandidateID]; ok {
		return false, nil
	}
	f.rows[p.CandidateID] = p
	return true, nil
}

func (f *fakeParcelStore) GetByCandidate(_ context.Context, id string) (sites.Parcel, error) {
	p, ok := f.rows[id]
	if !ok {
		return sites.Parcel{}, sites.ErrNotFound
	}
	return p, nil
}

type fakeCountyStore struct {
	rows map[string]sites.County
}

func newFakeCountyStore() *fakeCountyStore {
	return &fakeCountyStore{rows: map[string]sites.County{}}
}

func (f *fakeCountyStore) Upsert(_ context.Context, c sites.County) error {
	f.rows[c.Name+"|"+c.State] = c
	return nil
}

func (f *fakeCountyStore) Get(_ context.Context, name, state string) (sites.County, error) {
	c, ok := f.rows[name+"|"+state]
	if !ok {
		return sites.County{}, sites.ErrNotFound
	}
	return c, nil
}

func (f *fakeCountyStore) List(_ context.Context, state string) ([]sites.County, error) {
	var out []sites.County
	for _, c := range f.rows {
		if state == "" || c.State == state {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSaturationStore struct {
	rows map[string]sites.Saturation
}

func newFakeSaturationStore() *fakeSaturationStore {
	return &fakeSaturationStore{rows: map[string]sites.Saturation{}}
}

func (f *fakeSaturationStore) Upsert(_ context.Context, s sites.Saturation) error {
	f.rows[s.CandidateID] = s
	return nil
}

func (f *fakeSaturationStore) GetByCandidate(_ context.Context, id string) (sites.Saturation, error) {
	s, ok := f.rows[id]
	if !ok {
		return sites.Saturation{}, sites.ErrNotFound
	}
	return s, nil
}

type fakeScoreStore struct {
	rows map[string]sites.ScoreCard
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{rows: map[string]sites.ScoreCard{}}
}

func (f *fakeScoreStore) Upsert(_ context.Context, sc sites.ScoreCard) error {
	f.rows[sc.CandidateID] = sc
	return nil
}

func (f *fakeScoreStore) GetByCandidate(_ context.Context, id string) (sites.ScoreCard, error) {
	sc, ok := f.rows[id]
	if !ok {
		return sites.ScoreCard{}, sites.ErrNotFound
	}
	return sc, nil
}

type fakeFacilityStore struct {
	counts   map[string]int
	countErr error
}

func (f *fakeFacilityStore) Insert(context.Context, sites.StorageFacility) (bool, error) {
	return false, nil
}

func (f *fakeFacilityStore) CountByCounty(_ context.Context, county, state string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[county+"|"+state], nil
}
