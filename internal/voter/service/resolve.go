package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"voterdata/internal/voter/models"
	"voterdata/internal/voter/providers"
	id "voterdata/pkg/domain"
	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/sentinel"
	vstrings "voterdata/pkg/platform/strings"
	"voterdata/pkg/requestcontext"
)

// Resolution outcomes used as metric labels.
const (
	outcomeCache    = "cache"
	outcomeDatabase = "database"
	outcomeSource   = "source"
	outcomeNotFound = "not_found"
	outcomeFailed   = "failed"
)

// ResolveOne returns the record for raw, trying the cache, then the store,
// then the external source. DataSource on the result names the tier that
// answered.
//
// Errors: CodeBadRequest for a malformed identifier, CodeNotFound when no tier
// has an active record, CodeTimeout or CodeUnavailable when the external
// source failed. Source failures are never cached or persisted.
func (s *Service) ResolveOne(ctx context.Context, raw string) (*models.VoterRecord, error) {
	epic, err := id.ParseEPICNumber(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid epic number")
	}
	return s.resolve(ctx, epic)
}

// ResolveMany resolves every distinct identifier in raws independently with
// bounded concurrency. Identifiers that are malformed, not found or failed are
// dropped; results keep the order of first appearance.
func (s *Service) ResolveMany(ctx context.Context, raws []string) ([]*models.VoterRecord, error) {
	ctx, span := s.tracer.Start(ctx, "voter.resolveMany")
	defer span.End()

	var epics []id.EPICNumber
	for _, raw := range vstrings.DedupeAndTrim(raws) {
		epic, err := id.ParseEPICNumber(raw)
		if err != nil {
			s.logger.DebugContext(ctx, "skipping malformed epic number", "epic_no", raw)
			continue
		}
		epics = append(epics, epic)
	}
	span.SetAttributes(attribute.Int("voter.batch_size", len(epics)))

	results := make([]*models.VoterRecord, len(epics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, epic := range epics {
		g.Go(func() error {
			record, err := s.resolve(gctx, epic)
			if err != nil {
				if !dErrors.HasCode(err, dErrors.CodeNotFound) {
					s.logger.WarnContext(gctx, "batch resolution failed",
						"epic_no", epic.String(),
						"error", err,
					)
				}
				return nil
			}
			results[i] = record
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "batch resolution cancelled")
	}

	out := make([]*models.VoterRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "voter.resolveOne")
	span.SetAttributes(attribute.String("voter.epic_no", epic.String()))
	defer span.End()

	record, outcome, err := s.waterfall(ctx, epic)
	s.observeResolve(outcome, start)
	span.SetAttributes(attribute.String("voter.outcome", outcome))
	if err != nil {
		if outcome == outcomeFailed {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resolution failed")
		}
		return nil, err
	}
	return record, nil
}

func (s *Service) waterfall(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, string, error) {
	if cached := s.cacheGet(ctx, epic); cached != nil {
		return cached.WithSource(models.DataSourceCache), outcomeCache, nil
	}

	stored, err := s.store.FindByEPIC(ctx, epic, true)
	switch {
	case err == nil && stored.IsDisabled:
		return nil, outcomeNotFound, notFound()
	case err == nil:
		s.cacheFill(ctx, stored)
		return stored.WithSource(models.DataSourceDatabase), outcomeDatabase, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, outcomeFailed, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter record")
	}

	fetched, err := s.fetch(ctx, epic)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, outcomeNotFound, err
		}
		return nil, outcomeFailed, err
	}

	persisted, err := s.persist(ctx, epic, fetched)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, outcomeNotFound, err
		}
		return nil, outcomeFailed, err
	}
	s.cacheFill(ctx, persisted)
	return persisted, outcomeSource, nil
}

// fetch asks the external source and normalizes its answer.
func (s *Service) fetch(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	start := time.Now()
	fetched, err := s.source.Fetch(ctx, epic)
	if s.metrics != nil {
		s.metrics.ObserveSource(s.source.ID(), start)
	}
	if err == nil && fetched == nil {
		err = providers.NewProviderError(providers.ErrorNotFound, s.source.ID(), "empty answer", nil)
	}
	if err == nil {
		return fetched, nil
	}
	if providers.IsNoMatch(err) {
		return nil, notFound()
	}

	category := providers.GetCategory(err)
	if s.metrics != nil {
		s.metrics.IncrementSourceFailure(s.source.ID(), string(category))
	}
	s.logger.WarnContext(ctx, "external source lookup failed",
		"epic_no", epic.String(),
		"provider", s.source.ID(),
		"category", string(category),
		"error", err,
	)
	if category == providers.ErrorTimeout {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "voter source timed out")
	}
	return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "voter source unavailable")
}

// persist stores a freshly fetched record. A unique-key conflict means a
// concurrent resolution inserted it first; the winner's record is returned.
func (s *Service) persist(ctx context.Context, epic id.EPICNumber, fetched *models.VoterRecord) (*models.VoterRecord, error) {
	attrs := *fetched
	attrs.EPICNo = epic
	record, err := models.NewVoterRecord(attrs, s.source.Mode(), requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "invalid record from voter source")
	}

	err = s.store.Create(ctx, record)
	if err == nil {
		s.logger.InfoContext(ctx, "voter record fetched and stored",
			"epic_no", epic.String(),
			"data_source", string(record.DataSource),
		)
		return record, nil
	}
	if !errors.Is(err, sentinel.ErrConflict) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store voter record")
	}

	if s.metrics != nil {
		s.metrics.IncrementStoreConflict()
	}
	winner, err := s.store.FindByEPIC(ctx, epic, true)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Inserted and deleted again between our Create and re-read.
			return nil, notFound()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload voter record")
	}
	if winner.IsDisabled {
		return nil, notFound()
	}
	return winner, nil
}

// cacheGet returns a usable cached record or nil. Cache failures only cost
// a store round trip.
func (s *Service) cacheGet(ctx context.Context, epic id.EPICNumber) *models.VoterRecord {
	if s.cache == nil {
		return nil
	}
	record, err := s.cache.Get(ctx, epic)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "cache read failed", "epic_no", epic.String(), "error", err)
		}
		s.recordCache(false)
		return nil
	}
	if record == nil || record.IsDisabled || record.EPICNo != epic {
		s.cacheDelete(ctx, epic)
		s.recordCache(false)
		return nil
	}
	s.recordCache(true)
	return record
}

// cacheSet reports whether the entry was written.
func (s *Service) cacheSet(ctx context.Context, record *models.VoterRecord) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.Set(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "epic_no", record.EPICNo.String(), "error", err)
		return false
	}
	return true
}

// cacheFill caches a record the waterfall read or created. A Disable or
// Delete can commit between that read and the write, so the store is read
// again afterwards and the entry is evicted unless the record is unchanged.
func (s *Service) cacheFill(ctx context.Context, record *models.VoterRecord) {
	if !s.cacheSet(ctx, record) {
		return
	}
	current, err := s.store.FindByEPIC(ctx, record.EPICNo, true)
	if err == nil && !current.IsDisabled && sameRevision(current, record) {
		return
	}
	s.logger.DebugContext(ctx, "cached snapshot superseded", "epic_no", record.EPICNo.String())
	_ = s.cacheDelete(ctx, record.EPICNo)
}

// sameRevision compares update times at the coarsest precision a store keeps.
func sameRevision(a, b *models.VoterRecord) bool {
	return a.UpdatedAt.Truncate(time.Millisecond).Equal(b.UpdatedAt.Truncate(time.Millisecond))
}

func (s *Service) cacheDelete(ctx context.Context, epic id.EPICNumber) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, epic); err != nil {
		s.logger.WarnContext(ctx, "cache eviction failed", "epic_no", epic.String(), "error", err)
		return err
	}
	return nil
}

func (s *Service) recordCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit()
	} else {
		s.metrics.RecordCacheMiss()
	}
}

func notFound() error {
	return dErrors.New(dErrors.CodeNotFound, "voter record not found")
}
