package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"voterdata/internal/voter/models"
	"voterdata/internal/voter/store"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/sentinel"
)

type recordStore interface {
	FindByEPIC(ctx context.Context, epic id.EPICNumber, includeDisabled bool) (*models.VoterRecord, error)
	FindByID(ctx context.Context, recordID id.RecordID) (*models.VoterRecord, error)
	ExistingEPICs(ctx context.Context, epics []id.EPICNumber) (map[id.EPICNumber]bool, error)
	Create(ctx context.Context, r *models.VoterRecord) error
	InsertMany(ctx context.Context, records []*models.VoterRecord) ([]error, error)
	UpdateByEPIC(ctx context.Context, epic id.EPICNumber, update models.UpdateRecord, now time.Time) (*models.VoterRecord, error)
	DeleteByEPIC(ctx context.Context, epic id.EPICNumber) (bool, error)
	List(ctx context.Context, opts models.ListOptions) ([]*models.VoterRecord, int, error)
}

var (
	_ recordStore = (*store.InMemory)(nil)
	_ recordStore = (*store.PostgresStore)(nil)
	_ recordStore = (*store.MongoStore)(nil)
)

// storeContractSuite holds behaviour every Record Store must share. Concrete
// suites embed it and assign store in their setup hooks.
type storeContractSuite struct {
	suite.Suite
	store recordStore
	ctx   context.Context
}

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newRecord(epic, name string, offset time.Duration) *models.VoterRecord {
	r, err := models.NewVoterRecord(models.VoterRecord{
		EPICNo:   id.EPICNumber(epic),
		Name:     name,
		State:    "Kerala",
		District: "Ernakulam",
		Gender:   "F",
		PartName: "Ward 4",
	}, models.DataSourceAPI, baseTime.Add(offset))
	if err != nil {
		panic(err)
	}
	return r
}

func (s *storeContractSuite) TestCreateAndFind() {
	s.Run("finds created record by identifier and internal id", func() {
		r := newRecord("FIND0001", "Asha", 0)
		s.Require().NoError(s.store.Create(s.ctx, r))

		byEPIC, err := s.store.FindByEPIC(s.ctx, r.EPICNo, false)
		s.Require().NoError(err)
		s.Equal(r.ID, byEPIC.ID)
		s.Equal("Ward 4", byEPIC.PartName)
		s.Equal(models.DataSourceAPI, byEPIC.DataSource)

		byID, err := s.store.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(r.EPICNo, byID.EPICNo)
	})

	s.Run("returns ErrNotFound for unknown identifier", func() {
		_, err := s.store.FindByEPIC(s.ctx, "MISSING0", true)
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByID(s.ctx, id.NewRecordID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects a second record with the same identifier", func() {
		first := newRecord("DUP00001", "First", 0)
		second := newRecord("DUP00001", "Second", time.Minute)
		s.Require().NoError(s.store.Create(s.ctx, first))

		err := s.store.Create(s.ctx, second)
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *storeContractSuite) TestDisabledRecords() {
	r := newRecord("DIS00001", "Ravi", 0)
	s.Require().NoError(s.store.Create(s.ctx, r))

	at := baseTime.Add(time.Hour)
	updated, err := s.store.UpdateByEPIC(s.ctx, r.EPICNo, models.DisableUpdate("admin", at), at)
	s.Require().NoError(err)
	s.True(updated.IsDisabled)
	s.Equal("admin", updated.DisabledBy)

	_, err = s.store.FindByEPIC(s.ctx, r.EPICNo, false)
	s.ErrorIs(err, sentinel.ErrNotFound, "disabled records are hidden from normal lookups")

	found, err := s.store.FindByEPIC(s.ctx, r.EPICNo, true)
	s.Require().NoError(err)
	s.True(found.IsDisabled)

	existing, err := s.store.ExistingEPICs(s.ctx, []id.EPICNumber{r.EPICNo, "NOPE0001"})
	s.Require().NoError(err)
	s.Equal(map[id.EPICNumber]bool{r.EPICNo: true}, existing)

	err = s.store.Create(s.ctx, newRecord("DIS00001", "Again", time.Minute))
	s.ErrorIs(err, sentinel.ErrConflict, "uniqueness spans disabled records")

	_, err = s.store.UpdateByEPIC(s.ctx, "NOPE0001", models.DisableUpdate("admin", at), at)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestInsertManyOutcomes() {
	s.Require().NoError(s.store.Create(s.ctx, newRecord("BULK0001", "Existing", 0)))

	records := []*models.VoterRecord{
		newRecord("BULK0002", "New A", time.Second),
		newRecord("BULK0001", "Clash", 2*time.Second),
		newRecord("BULK0003", "New B", 3*time.Second),
	}
	outcomes, err := s.store.InsertMany(s.ctx, records)
	s.Require().NoError(err)
	s.Require().Len(outcomes, 3)
	s.NoError(outcomes[0])
	s.ErrorIs(outcomes[1], sentinel.ErrConflict)
	s.NoError(outcomes[2])

	_, err = s.store.FindByEPIC(s.ctx, "BULK0003", false)
	s.NoError(err, "rows after a rejected one are still written")

	existing, err := s.store.FindByEPIC(s.ctx, "BULK0001", false)
	s.Require().NoError(err)
	s.Equal("Existing", existing.Name, "bulk insert never overwrites")
}

func (s *storeContractSuite) TestDeleteIsIdempotent() {
	r := newRecord("DEL00001", "Gone", 0)
	s.Require().NoError(s.store.Create(s.ctx, r))

	deleted, err := s.store.DeleteByEPIC(s.ctx, r.EPICNo)
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.store.DeleteByEPIC(s.ctx, r.EPICNo)
	s.Require().NoError(err)
	s.False(deleted)

	_, err = s.store.FindByID(s.ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestList() {
	for i := range 12 {
		r := newRecord(fmt.Sprintf("LIST%04d", i), fmt.Sprintf("Voter %02d", i), time.Duration(i)*time.Minute)
		if i%4 == 0 {
			r.State = "Goa"
		}
		s.Require().NoError(s.store.Create(s.ctx, r))
	}
	at := baseTime.Add(time.Hour)
	_, err := s.store.UpdateByEPIC(s.ctx, "LIST0011", models.DisableUpdate("admin", at), at)
	s.Require().NoError(err)

	s.Run("pages newest first by default and skips disabled", func() {
		opts, err := models.NewListOptions(1, 5, "", "", "", models.ListFilter{})
		s.Require().NoError(err)
		records, total, err := s.store.List(s.ctx, opts)
		s.Require().NoError(err)
		s.Equal(11, total)
		s.Require().Len(records, 5)
		s.Equal(id.EPICNumber("LIST0010"), records[0].EPICNo)
	})

	s.Run("last page is partial", func() {
		opts, err := models.NewListOptions(3, 5, "epic_no", "asc", "", models.ListFilter{})
		s.Require().NoError(err)
		records, _, err := s.store.List(s.ctx, opts)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(id.EPICNumber("LIST0010"), records[0].EPICNo)
	})

	s.Run("filters exactly and searches case-insensitively", func() {
		opts, err := models.NewListOptions(1, 50, "name", "asc", "", models.ListFilter{State: "Goa"})
		s.Require().NoError(err)
		_, total, err := s.store.List(s.ctx, opts)
		s.Require().NoError(err)
		s.Equal(3, total)

		opts, err = models.NewListOptions(1, 50, "name", "asc", "voter 0", models.ListFilter{})
		s.Require().NoError(err)
		_, total, err = s.store.List(s.ctx, opts)
		s.Require().NoError(err)
		s.Equal(10, total)

		opts, err = models.NewListOptions(1, 50, "name", "asc", "list0003", models.ListFilter{})
		s.Require().NoError(err)
		records, total, err := s.store.List(s.ctx, opts)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Equal("Voter 03", records[0].Name)
	})

	s.Run("search treats metacharacters literally", func() {
		opts, err := models.NewListOptions(1, 50, "", "", "%.*", models.ListFilter{})
		s.Require().NoError(err)
		_, total, err := s.store.List(s.ctx, opts)
		s.Require().NoError(err)
		s.Zero(total)
	})
}

// TestConcurrentCreateSameIdentifier verifies that concurrent inserts of one
// identifier result in exactly one success.
func (s *storeContractSuite) TestConcurrentCreateSameIdentifier() {
	const goroutines = 20
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := s.store.Create(s.ctx, newRecord("RACE0001", fmt.Sprintf("Racer %d", idx), 0))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}
