package service

import (
	"context"
	"errors"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/sentinel"
)

// FindByID returns a record by its internal ID. Unlike the EPIC lookups, a
// disabled record is reported as forbidden rather than absent.
func (s *Service) FindByID(ctx context.Context, raw string) (*models.VoterRecord, error) {
	recordID, err := id.ParseRecordID(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid record id")
	}
	record, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notFound()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voter record")
	}
	if record.IsDisabled {
		return nil, dErrors.New(dErrors.CodeForbidden, "voter record is disabled")
	}
	return record, nil
}

// List returns one page of active records.
func (s *Service) List(ctx context.Context, opts models.ListOptions) (*models.Page, error) {
	records, total, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list voter records")
	}
	return models.NewPage(records, total, opts), nil
}
