// Package importer ingests voter records from spreadsheet uploads.
//
// File-level problems (type, size, unreadable workbook, missing required
// columns, no data rows) reject the whole call. Row-level problems are
// reported in the ImportResult and never abort the import.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"voterdata/internal/audit"
	"voterdata/internal/voter/metrics"
	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/sentinel"
	"voterdata/pkg/requestcontext"
)

// DefaultMaxBytes caps upload size.
const DefaultMaxBytes = 10 << 20

const reasonMissingRequired = "Missing required fields - EPIC and Name are mandatory"

// Store is the slice of the Record Store the pipeline needs.
type Store interface {
	ExistingEPICs(ctx context.Context, epics []id.EPICNumber) (map[id.EPICNumber]bool, error)
	InsertMany(ctx context.Context, records []*models.VoterRecord) ([]error, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Importer runs the spreadsheet import pipeline.
type Importer struct {
	store          Store
	maxBytes       int64
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Importer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithMaxBytes(n int64) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(i *Importer) {
		i.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) {
		i.metrics = m
	}
}

func New(store Store, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, errors.New("voter store is required")
	}
	i := &Importer{
		store:    store,
		maxBytes: DefaultMaxBytes,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("voterdata/internal/voter/importer"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// MaxBytes is the largest accepted upload.
func (i *Importer) MaxBytes() int64 {
	return i.maxBytes
}

// stagedRow is a row that passed classification and waits for the bulk insert.
type stagedRow struct {
	row    int
	record *models.VoterRecord
}

// Import parses data as the spreadsheet named filename and inserts every
// new, valid row.
func (i *Importer) Import(ctx context.Context, filename string, data []byte) (*models.ImportResult, error) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "voter.import")
	defer span.End()
	span.SetAttributes(attribute.String("import.filename", filename), attribute.Int("import.bytes", len(data)))

	read, ok := readerFor(filename)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnsupportedMediaType, "only .xlsx and .xls files are accepted")
	}
	if int64(len(data)) > i.maxBytes {
		return nil, dErrors.New(dErrors.CodePayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", i.maxBytes))
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "file is empty")
	}

	rows, err := read(data)
	if err != nil {
		i.logger.WarnContext(ctx, "unreadable spreadsheet", "filename", filename, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "unable to read spreadsheet")
	}
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "spreadsheet is empty")
	}

	cols := mapHeader(rows[0])
	if missing := cols.missing(); len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required columns: "+strings.Join(missing, ", "))
	}

	dataRows := 0
	for _, row := range rows[1:] {
		if !isBlank(row) {
			dataRows++
		}
	}
	if dataRows == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "spreadsheet has no data rows")
	}

	result, err := i.process(ctx, rows, cols)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("import.total_rows", result.TotalRows),
		attribute.Int("import.successful", result.Successful),
		attribute.Int("import.failed", result.Failed),
	)
	if i.metrics != nil {
		i.metrics.ObserveImport(result.Successful, len(result.Duplicates), len(result.Errors), start)
	}
	i.logger.InfoContext(ctx, "voter import completed",
		"filename", filename,
		"total_rows", result.TotalRows,
		"successful", result.Successful,
		"failed", result.Failed,
		"duplicates", len(result.Duplicates),
	)
	i.emitAudit(ctx, filename, result)
	return result, nil
}

func (i *Importer) process(ctx context.Context, rows [][]string, cols columnMap) (*models.ImportResult, error) {
	now := requestcontext.Now(ctx)
	result := &models.ImportResult{}

	type candidate struct {
		row   int
		attrs models.VoterRecord
	}
	var candidates []candidate
	var epics []id.EPICNumber

	for idx, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := idx + 2 // 1-based, after the header
		result.TotalRows++

		rawEPIC := cols.value(row, fieldEPIC)
		name := cols.value(row, fieldName)
		if rawEPIC == "" || name == "" {
			result.AddError(rowNum, reasonMissingRequired)
			continue
		}
		epic, err := id.ParseEPICNumber(rawEPIC)
		if err != nil {
			result.AddError(rowNum, "Invalid EPIC number "+strconv.Quote(rawEPIC))
			continue
		}
		candidates = append(candidates, candidate{row: rowNum, attrs: models.VoterRecord{
			EPICNo:       epic,
			Name:         name,
			SerialNumber: cols.value(row, fieldSerialNumber),
			PartNumber:   cols.value(row, fieldPartNumber),
			RelationName: cols.value(row, fieldRelationName),
			AddressLine:  cols.value(row, fieldAddressLine),
			Gender:       cols.value(row, fieldGender),
		}})
		epics = append(epics, epic)
	}

	var existing map[id.EPICNumber]bool
	if len(epics) > 0 {
		var err error
		existing, err = i.store.ExistingEPICs(ctx, epics)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing voter records")
		}
	}

	// Classification keeps spreadsheet order, so errors and duplicates are
	// reported row by row even though the lookup above was batched.
	var batch []stagedRow
	staged := make(map[id.EPICNumber]bool)
	for _, c := range candidates {
		epic := c.attrs.EPICNo
		if existing[epic] {
			result.AddDuplicate(alreadyExists(epic))
			continue
		}
		if staged[epic] {
			result.AddDuplicate(fmt.Sprintf("%s (duplicate in file, row %d)", epic, c.row))
			continue
		}
		record, err := models.NewVoterRecord(c.attrs, models.DataSourceExcelImport, now)
		if err != nil {
			result.AddError(c.row, err.Error())
			continue
		}
		staged[epic] = true
		batch = append(batch, stagedRow{row: c.row, record: record})
		result.Successful++
	}

	if len(batch) == 0 {
		return result, nil
	}
	if err := i.insert(ctx, batch, result); err != nil {
		return nil, err
	}
	return result, nil
}

// insert writes the batch in one call and moves rows the store rejected
// out of the successful count.
func (i *Importer) insert(ctx context.Context, batch []stagedRow, result *models.ImportResult) error {
	records := make([]*models.VoterRecord, len(batch))
	for n, r := range batch {
		records[n] = r.record
	}

	outcomes, err := i.store.InsertMany(ctx, records)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert voter records")
	}
	for n, outcome := range outcomes {
		if outcome == nil || n >= len(batch) {
			continue
		}
		r := batch[n]
		if errors.Is(outcome, sentinel.ErrConflict) {
			result.DemoteToDuplicate(alreadyExists(r.record.EPICNo))
			continue
		}
		i.logger.WarnContext(ctx, "import row rejected by store",
			"row", r.row,
			"epic_no", r.record.EPICNo.String(),
			"error", outcome,
		)
		result.DemoteToError(r.row, "Failed to save record")
	}
	return nil
}

func (i *Importer) emitAudit(ctx context.Context, filename string, result *models.ImportResult) {
	if i.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionImported,
		Actor:     requestcontext.Actor(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Detail: map[string]string{
			"filename":   filename,
			"total_rows": strconv.Itoa(result.TotalRows),
			"successful": strconv.Itoa(result.Successful),
			"failed":     strconv.Itoa(result.Failed),
		},
	}
	if err := i.auditPublisher.Emit(ctx, event); err != nil {
		i.logger.WarnContext(ctx, "failed to emit audit event", "action", string(event.Action), "error", err)
	}
}

func alreadyExists(epic id.EPICNumber) string {
	return epic.String() + " (already exists)"
}
