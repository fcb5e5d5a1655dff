package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Cache,Source,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voterdata/internal/audit"
	"voterdata/internal/voter/metrics"
	"voterdata/internal/voter/models"
	"voterdata/internal/voter/providers"
	"voterdata/internal/voter/service/mocks"
	id "voterdata/pkg/domain"
	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/sentinel"
	"voterdata/pkg/requestcontext"
)

// =============================================================================
// Resolution Engine Test Suite
// =============================================================================
// Tier ordering, failure isolation and lifecycle side effects are asserted
// against mocks so each dependency call is explicit.

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	cache     *mocks.MockCache
	source    *mocks.MockSource
	publisher *mocks.MockAuditPublisher
	metrics   *metrics.Metrics
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.cache = mocks.NewMockCache(s.ctrl)
	s.source = mocks.NewMockSource(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())

	s.source.EXPECT().ID().Return("static").AnyTimes()
	s.source.EXPECT().Mode().Return(models.DataSourceStatic).AnyTimes()

	var err error
	s.service, err = New(s.store, s.source,
		WithCache(s.cache),
		WithAuditPublisher(s.publisher),
		WithMetrics(s.metrics),
		WithConcurrency(2),
	)
	s.Require().NoError(err)

	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithActor(s.ctx, "admin-1", requestcontext.RoleAdmin)
	s.ctx = requestcontext.WithRequestID(s.ctx, "req-1")
}

func (s *ServiceSuite) stored(epic string) *models.VoterRecord {
	return &models.VoterRecord{
		ID:         id.NewRecordID(),
		EPICNo:     id.EPICNumber(epic),
		Name:       "Asha Rao",
		Status:     models.StatusActive,
		DataSource: models.DataSourceAPI,
		CreatedAt:  s.now.Add(-time.Hour),
		UpdatedAt:  s.now.Add(-time.Hour),
	}
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.source)
		s.ErrorContains(err, "voter store is required")
	})

	s.Run("nil source returns error", func() {
		_, err := New(s.store, nil)
		s.ErrorContains(err, "voter source is required")
	})
}

// =============================================================================
// ResolveOne
// =============================================================================

func (s *ServiceSuite) TestResolveOne_CacheHit() {
	epic := id.EPICNumber("ABC1234567")
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(s.stored("ABC1234567"), nil)

	record, err := s.service.ResolveOne(s.ctx, " ABC1234567 ")
	s.Require().NoError(err)
	s.Equal(models.DataSourceCache, record.DataSource)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheHits))
}

func (s *ServiceSuite) TestResolveOne_StoreHitPopulatesCache() {
	epic := id.EPICNumber("ABC1234567")
	stored := s.stored("ABC1234567")
	gomock.InOrder(
		s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound),
		s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(stored, nil),
		s.cache.EXPECT().Set(gomock.Any(), stored).Return(nil),
		s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(stored, nil),
	)

	record, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.Require().NoError(err)
	s.Equal(models.DataSourceDatabase, record.DataSource)
	s.Equal(stored.ID, record.ID)
	s.Equal(models.DataSourceAPI, stored.DataSource, "stored record is not mutated")
}

func (s *ServiceSuite) TestResolveOne_DisabledRecordIsNotFound() {
	epic := id.EPICNumber("ABC1234567")
	disabled := s.stored("ABC1234567")
	disabled.IsDisabled = true
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(disabled, nil)

	_, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestResolveOne_DisabledCacheEntryIsEvicted() {
	epic := id.EPICNumber("ABC1234567")
	disabled := s.stored("ABC1234567")
	disabled.IsDisabled = true
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(disabled, nil)
	s.cache.EXPECT().Delete(gomock.Any(), epic).Return(nil)
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(disabled, nil)

	_, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestResolveOne_SourceHitPersistsAndCaches() {
	epic := id.EPICNumber("ABC1234567")
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(nil, sentinel.ErrNotFound)
	s.source.EXPECT().Fetch(gomock.Any(), epic).Return(&models.VoterRecord{EPICNo: epic, Name: "Asha Rao"}, nil)

	var created *models.VoterRecord
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *models.VoterRecord) error {
		created = r
		return nil
	})
	s.cache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).DoAndReturn(func(context.Context, id.EPICNumber, bool) (*models.VoterRecord, error) {
		return created.Clone(), nil
	})

	record, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.Require().NoError(err)
	s.Require().NotNil(created)
	s.Equal(models.DataSourceStatic, record.DataSource)
	s.False(record.ID.IsNil())
	s.Equal(s.now, record.CreatedAt)
	s.Equal(models.StatusActive, record.Status)
	s.Equal(created.ID, record.ID)
}

func (s *ServiceSuite) TestResolveOne_SourceNoMatch() {
	epic := id.EPICNumber("ABC1234567")
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(nil, sentinel.ErrNotFound)
	s.source.EXPECT().Fetch(gomock.Any(), epic).
		Return(nil, providers.NewProviderError(providers.ErrorNotFound, "static", "no match", nil))

	_, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestResolveOne_TransportFailureIsNotPersisted() {
	tests := []struct {
		name     string
		category providers.ErrorCategory
		code     dErrors.Code
	}{
		{"outage", providers.ErrorProviderOutage, dErrors.CodeUnavailable},
		{"timeout", providers.ErrorTimeout, dErrors.CodeTimeout},
		{"authentication", providers.ErrorAuthentication, dErrors.CodeUnavailable},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			epic := id.EPICNumber("ABC1234567")
			s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound)
			s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(nil, sentinel.ErrNotFound)
			s.source.EXPECT().Fetch(gomock.Any(), epic).
				Return(nil, providers.NewProviderError(tt.category, "static", "boom", nil))
			// No Create and no cache Set are expected.

			_, err := s.service.ResolveOne(s.ctx, "ABC1234567")
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
			s.False(dErrors.HasCode(err, dErrors.CodeNotFound))
		})
	}
	s.Equal(2.0, testutil.ToFloat64(s.metrics.SourceFailures.WithLabelValues("static", "provider_outage"))+
		testutil.ToFloat64(s.metrics.SourceFailures.WithLabelValues("static", "authentication")))
}

func (s *ServiceSuite) TestResolveOne_InsertConflictRereads() {
	epic := id.EPICNumber("ABC1234567")
	winner := s.stored("ABC1234567")
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound)
	gomock.InOrder(
		s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(nil, sentinel.ErrNotFound),
		s.source.EXPECT().Fetch(gomock.Any(), epic).Return(&models.VoterRecord{EPICNo: epic, Name: "Asha Rao"}, nil),
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
		s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(winner, nil),
		s.cache.EXPECT().Set(gomock.Any(), winner).Return(nil),
		s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(winner, nil),
	)

	record, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.Require().NoError(err)
	s.Equal(winner.ID, record.ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreConflicts))
}

func (s *ServiceSuite) TestResolveOne_CacheFailuresDegrade() {
	epic := id.EPICNumber("ABC1234567")
	stored := s.stored("ABC1234567")
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, errors.New("connection refused"))
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(stored, nil)
	s.cache.EXPECT().Set(gomock.Any(), stored).Return(errors.New("connection refused"))

	record, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.Require().NoError(err)
	s.Equal(models.DataSourceDatabase, record.DataSource)
}

func (s *ServiceSuite) TestResolveOne_SupersededFillIsEvicted() {
	epic := id.EPICNumber("ABC1234567")
	stored := s.stored("ABC1234567")
	disabled := s.stored("ABC1234567")
	disabled.IsDisabled = true
	disabled.UpdatedAt = stored.UpdatedAt.Add(time.Second)

	tests := []struct {
		name    string
		current *models.VoterRecord
		err     error
	}{
		{"disabled meanwhile", disabled, nil},
		{"deleted meanwhile", nil, sentinel.ErrNotFound},
		{"re-read failed", nil, errors.New("db down")},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			gomock.InOrder(
				s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound),
				s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(stored, nil),
				s.cache.EXPECT().Set(gomock.Any(), stored).Return(nil),
				s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(tt.current, tt.err),
				s.cache.EXPECT().Delete(gomock.Any(), epic).Return(nil),
			)

			record, err := s.service.ResolveOne(s.ctx, "ABC1234567")
			s.Require().NoError(err)
			s.Equal(models.DataSourceDatabase, record.DataSource)
		})
	}
}

func (s *ServiceSuite) TestResolveOne_StoreFailureIsInternal() {
	epic := id.EPICNumber("ABC1234567")
	s.cache.EXPECT().Get(gomock.Any(), epic).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().FindByEPIC(gomock.Any(), epic, true).Return(nil, errors.New("db down"))

	_, err := s.service.ResolveOne(s.ctx, "ABC1234567")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestResolveOne_InvalidIdentifier() {
	for _, raw := range []string{"", "   ", "ABC/123", "AB C"} {
		_, err := s.service.ResolveOne(s.ctx, raw)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "input %q", raw)
	}
}

// =============================================================================
// ResolveMany
// =============================================================================

func (s *ServiceSuite) TestResolveMany_IsolatesFailures() {
	a, b, c := id.EPICNumber("A1"), id.EPICNumber("B2"), id.EPICNumber("C3")
	s.cache.EXPECT().Get(gomock.Any(), a).Return(s.stored("A1"), nil).Times(1)
	s.cache.EXPECT().Get(gomock.Any(), b).Return(nil, sentinel.ErrNotFound)
	s.cache.EXPECT().Get(gomock.Any(), c).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().FindByEPIC(gomock.Any(), b, true).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().FindByEPIC(gomock.Any(), c, true).Return(nil, sentinel.ErrNotFound)
	s.source.EXPECT().Fetch(gomock.Any(), b).
		Return(nil, providers.NewProviderError(providers.ErrorNotFound, "static", "no match", nil))
	s.source.EXPECT().Fetch(gomock.Any(), c).
		Return(nil, providers.NewProviderError(providers.ErrorProviderOutage, "static", "down", nil))

	records, err := s.service.ResolveMany(s.ctx, []string{" A1 ", "A1", "B2", "", "C3", "bad id"})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(a, records[0].EPICNo)
}

func (s *ServiceSuite) TestResolveMany_Empty() {
	records, err := s.service.ResolveMany(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(records)
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *ServiceSuite) TestDisable() {
	epic := id.EPICNumber("ABC1234567")
	disabled := s.stored("ABC1234567")
	disabled.IsDisabled = true

	s.store.EXPECT().UpdateByEPIC(gomock.Any(), epic, gomock.Any(), s.now).
		DoAndReturn(func(_ context.Context, _ id.EPICNumber, u models.UpdateRecord, _ time.Time) (*models.VoterRecord, error) {
			s.Require().NotNil(u.IsDisabled)
			s.True(*u.IsDisabled)
			s.Equal("admin-1", *u.DisabledBy)
			s.Equal(s.now, *u.DisabledAt)
			return disabled, nil
		})
	s.cache.EXPECT().Delete(gomock.Any(), epic).Return(nil).Times(2)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(audit.ActionDisabled, e.Action)
		s.Equal("ABC1234567", e.EPICNo)
		s.Equal("admin-1", e.Actor)
		s.Equal("req-1", e.RequestID)
		return nil
	})

	record, err := s.service.Disable(s.ctx, "ABC1234567", "admin-1")
	s.Require().NoError(err)
	s.True(record.IsDisabled)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LifecycleChanges.WithLabelValues("disable")))
}

func (s *ServiceSuite) TestDisable_NotFound() {
	s.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	s.store.EXPECT().UpdateByEPIC(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Disable(s.ctx, "ABC1234567", "admin-1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDisable_AuditFailureDoesNotFail() {
	s.store.EXPECT().UpdateByEPIC(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.stored("ABC1234567"), nil)
	s.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := s.service.Disable(s.ctx, "ABC1234567", "admin-1")
	s.NoError(err)
}

func (s *ServiceSuite) TestDisable_EvictionFailureLeavesStoreUntouched() {
	s.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	// No UpdateByEPIC and no audit event are expected.

	_, err := s.service.Disable(s.ctx, "ABC1234567", "admin-1")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Zero(testutil.ToFloat64(s.metrics.LifecycleChanges.WithLabelValues("disable")))
}

func (s *ServiceSuite) TestEnable() {
	epic := id.EPICNumber("ABC1234567")
	enabled := s.stored("ABC1234567")

	s.store.EXPECT().UpdateByEPIC(gomock.Any(), epic, gomock.Any(), s.now).
		DoAndReturn(func(_ context.Context, _ id.EPICNumber, u models.UpdateRecord, _ time.Time) (*models.VoterRecord, error) {
			s.False(*u.IsDisabled)
			s.Empty(*u.DisabledBy)
			s.True(u.ClearDisabledAt)
			s.Equal("admin-1", *u.EnabledBy)
			return enabled, nil
		})
	s.cache.EXPECT().Set(gomock.Any(), enabled).Return(nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	record, err := s.service.Enable(s.ctx, "ABC1234567", "admin-1")
	s.Require().NoError(err)
	s.Equal(enabled.ID, record.ID)
}

func (s *ServiceSuite) TestDelete() {
	epic := id.EPICNumber("ABC1234567")
	gomock.InOrder(
		s.cache.EXPECT().Delete(gomock.Any(), epic).Return(nil),
		s.store.EXPECT().DeleteByEPIC(gomock.Any(), epic).Return(true, nil),
		s.cache.EXPECT().Delete(gomock.Any(), epic).Return(nil),
	)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	s.NoError(s.service.Delete(s.ctx, "ABC1234567"))
}

func (s *ServiceSuite) TestDelete_UnknownIsNoop() {
	epic := id.EPICNumber("ABC1234567")
	s.cache.EXPECT().Delete(gomock.Any(), epic).Return(nil).Times(2)
	s.store.EXPECT().DeleteByEPIC(gomock.Any(), epic).Return(false, nil)

	s.NoError(s.service.Delete(s.ctx, "ABC1234567"))
}

func (s *ServiceSuite) TestDelete_EvictionFailureLeavesStoreUntouched() {
	s.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	err := s.service.Delete(s.ctx, "ABC1234567")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

// =============================================================================
// Queries
// =============================================================================

func (s *ServiceSuite) TestFindByID() {
	s.Run("active record", func() {
		stored := s.stored("ABC1234567")
		s.store.EXPECT().FindByID(gomock.Any(), stored.ID).Return(stored, nil)

		record, err := s.service.FindByID(s.ctx, stored.ID.String())
		s.Require().NoError(err)
		s.Equal(stored.EPICNo, record.EPICNo)
	})

	s.Run("disabled record is forbidden", func() {
		stored := s.stored("ABC1234567")
		stored.IsDisabled = true
		s.store.EXPECT().FindByID(gomock.Any(), stored.ID).Return(stored, nil)

		_, err := s.service.FindByID(s.ctx, stored.ID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing record", func() {
		s.store.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.FindByID(s.ctx, id.NewRecordID().String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("malformed id", func() {
		_, err := s.service.FindByID(s.ctx, "not-a-uuid")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestList() {
	opts, err := models.NewListOptions(2, 10, "", "", "", models.ListFilter{})
	s.Require().NoError(err)
	s.store.EXPECT().List(gomock.Any(), opts).Return([]*models.VoterRecord{s.stored("A1")}, 25, nil)

	page, err := s.service.List(s.ctx, opts)
	s.Require().NoError(err)
	s.Len(page.Data, 1)
	s.Equal(25, page.Pagination.Total)
	s.Equal(2, page.Pagination.Page)
	s.Equal(3, page.Pagination.TotalPages)
}
