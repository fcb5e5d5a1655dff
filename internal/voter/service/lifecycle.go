package service

import (
	"context"
	"errors"

	"voterdata/internal/audit"
	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/sentinel"
	"voterdata/pkg/requestcontext"
)

// Disable soft-deletes the record: it stays in the store but every lookup
// treats it as absent until Enable. The cache entry is evicted before and
// after the store update; when the first eviction fails the call fails and
// the record stays active.
func (s *Service) Disable(ctx context.Context, raw, actor string) (*models.VoterRecord, error) {
	epic, err := id.ParseEPICNumber(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid epic number")
	}
	now := requestcontext.Now(ctx)

	if err := s.cacheDelete(ctx, epic); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to evict cached voter record")
	}
	record, err := s.store.UpdateByEPIC(ctx, epic, models.DisableUpdate(actor, now), now)
	if err != nil {
		return nil, s.updateError(err)
	}
	_ = s.cacheDelete(ctx, epic)

	s.logger.InfoContext(ctx, "voter record disabled",
		"epic_no", epic.String(),
		"actor", actor,
	)
	s.emitAudit(ctx, audit.ActionDisabled, epic, nil)
	s.incrementLifecycle("disable")
	return record, nil
}

// Enable restores a disabled record. The disable markers are cleared and
// the enabling actor is recorded. The cache is refreshed with the result.
func (s *Service) Enable(ctx context.Context, raw, actor string) (*models.VoterRecord, error) {
	epic, err := id.ParseEPICNumber(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid epic number")
	}
	now := requestcontext.Now(ctx)

	record, err := s.store.UpdateByEPIC(ctx, epic, models.EnableUpdate(actor, now), now)
	if err != nil {
		return nil, s.updateError(err)
	}
	s.cacheSet(ctx, record)

	s.logger.InfoContext(ctx, "voter record enabled",
		"epic_no", epic.String(),
		"actor", actor,
	)
	s.emitAudit(ctx, audit.ActionEnabled, epic, nil)
	s.incrementLifecycle("enable")
	return record, nil
}

// Delete removes the record permanently and evicts its cache entry.
// Deleting an unknown identifier succeeds.
//
// The cache is evicted before and after the store delete. A lookup that
// fills the cache in between is caught by cacheFill's re-read.
func (s *Service) Delete(ctx context.Context, raw string) error {
	epic, err := id.ParseEPICNumber(raw)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid epic number")
	}

	if err := s.cacheDelete(ctx, epic); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to evict cached voter record")
	}
	deleted, err := s.store.DeleteByEPIC(ctx, epic)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete voter record")
	}
	_ = s.cacheDelete(ctx, epic)

	if !deleted {
		return nil
	}
	s.logger.InfoContext(ctx, "voter record deleted",
		"epic_no", epic.String(),
		"actor", requestcontext.Actor(ctx),
	)
	s.emitAudit(ctx, audit.ActionDeleted, epic, nil)
	s.incrementLifecycle("delete")
	return nil
}

func (s *Service) updateError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return notFound()
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update voter record")
}
