package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/sentinel"
)

// InMemory is a Record Store backed by maps, for development and tests.
type InMemory struct {
	mu     sync.RWMutex
	byEPIC map[id.EPICNumber]*models.VoterRecord
	byID   map[id.RecordID]id.EPICNumber
}

func NewInMemory() *InMemory {
	return &InMemory{
		byEPIC: make(map[id.EPICNumber]*models.VoterRecord),
		byID:   make(map[id.RecordID]id.EPICNumber),
	}
}

func (s *InMemory) FindByEPIC(_ context.Context, epic id.EPICNumber, includeDisabled bool) (*models.VoterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byEPIC[epic]
	if !ok || (r.IsDisabled && !includeDisabled) {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, recordID id.RecordID) (*models.VoterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	epic, ok := s.byID[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byEPIC[epic].Clone(), nil
}

// ExistingEPICs returns the subset of epics already stored, disabled included.
func (s *InMemory) ExistingEPICs(_ context.Context, epics []id.EPICNumber) (map[id.EPICNumber]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[id.EPICNumber]bool)
	for _, e := range epics {
		if _, ok := s.byEPIC[e]; ok {
			found[e] = true
		}
	}
	return found, nil
}

func (s *InMemory) Create(_ context.Context, r *models.VoterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(r)
}

// InsertMany inserts each record independently. The returned slice is
// aligned with records; a nil entry means the record was stored.
func (s *InMemory) InsertMany(_ context.Context, records []*models.VoterRecord) ([]error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcomes := make([]error, len(records))
	for i, r := range records {
		outcomes[i] = s.insertLocked(r)
	}
	return outcomes, nil
}

func (s *InMemory) insertLocked(r *models.VoterRecord) error {
	if _, exists := s.byEPIC[r.EPICNo]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[r.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byEPIC[r.EPICNo] = r.Clone()
	s.byID[r.ID] = r.EPICNo
	return nil
}

func (s *InMemory) UpdateByEPIC(_ context.Context, epic id.EPICNumber, update models.UpdateRecord, now time.Time) (*models.VoterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byEPIC[epic]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	update.Apply(r, now)
	return r.Clone(), nil
}

// DeleteByEPIC removes the record and reports whether one existed.
func (s *InMemory) DeleteByEPIC(_ context.Context, epic id.EPICNumber) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byEPIC[epic]
	if !ok {
		return false, nil
	}
	delete(s.byID, r.ID)
	delete(s.byEPIC, epic)
	return true, nil
}

func (s *InMemory) List(_ context.Context, opts models.ListOptions) ([]*models.VoterRecord, int, error) {
	s.mu.RLock()
	matched := make([]*models.VoterRecord, 0)
	for _, r := range s.byEPIC {
		if matchesListing(r, opts) {
			matched = append(matched, r.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		c := compareBy(matched[i], matched[j], opts.SortBy)
		if c == 0 {
			c = strings.Compare(matched[i].EPICNo.String(), matched[j].EPICNo.String())
		}
		if opts.SortDesc {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	start := min(opts.Offset(), total)
	end := min(start+opts.Limit, total)
	return matched[start:end], total, nil
}

func compareBy(a, b *models.VoterRecord, field string) int {
	switch field {
	case models.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case models.SortName:
		return strings.Compare(a.Name, b.Name)
	case models.SortEPICNo:
		return strings.Compare(a.EPICNo.String(), b.EPICNo.String())
	case models.SortState:
		return strings.Compare(a.State, b.State)
	case models.SortDistrict:
		return strings.Compare(a.District, b.District)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Health always succeeds for the in-memory store.
func (s *InMemory) Health(context.Context) error {
	return nil
}
