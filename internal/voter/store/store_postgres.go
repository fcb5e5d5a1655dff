package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/sentinel"
	"voterdata/pkg/platform/tx"
)

const uniqueViolation = pq.ErrorCode("23505")

const recordColumns = `id, epic_no, name, gender, state, district, attributes, status,
	is_disabled, disabled_by, disabled_at, enabled_by, enabled_at, data_source, created_at, updated_at`

var sortColumns = map[string]string{
	models.SortCreatedAt: "created_at",
	models.SortUpdatedAt: "updated_at",
	models.SortName:      "name",
	models.SortEPICNo:    "epic_no",
	models.SortState:     "state",
	models.SortDistrict:  "district",
}

// PostgresStore persists voter records in PostgreSQL. The long tail of
// optional attributes lives in a JSONB column; fields used for filtering and
// sorting are real columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// attributes mirrors the optional VoterRecord fields stored as JSONB.
type attributes struct {
	NameInRegionalLang              string `json:"name_in_regional_lang,omitempty"`
	Age                             string `json:"age,omitempty"`
	RelationType                    string `json:"relation_type,omitempty"`
	RelationName                    string `json:"relation_name,omitempty"`
	RelationNameInRegionalLang      string `json:"relation_name_in_regional_lang,omitempty"`
	FatherName                      string `json:"father_name,omitempty"`
	City                            string `json:"city,omitempty"`
	Pincode                         string `json:"pincode,omitempty"`
	Country                         string `json:"country,omitempty"`
	AddressLine                     string `json:"address_line,omitempty"`
	AssemblyConstituencyNumber      string `json:"assembly_constituency_number,omitempty"`
	AssemblyConstituency            string `json:"assembly_constituency,omitempty"`
	ParliamentaryConstituencyNumber string `json:"parliamentary_constituency_number,omitempty"`
	ParliamentaryConstituency       string `json:"parliamentary_constituency,omitempty"`
	PartNumber                      string `json:"part_number,omitempty"`
	PartName                        string `json:"part_name,omitempty"`
	SerialNumber                    string `json:"serial_number,omitempty"`
	PollingStation                  string `json:"polling_station,omitempty"`
	Address                         string `json:"address,omitempty"`
	Photo                           string `json:"photo,omitempty"`
	ResponseType                    int    `json:"responseType,omitempty"`
}

func attributesOf(r *models.VoterRecord) attributes {
	return attributes{
		NameInRegionalLang:              r.NameInRegionalLang,
		Age:                             r.Age,
		RelationType:                    r.RelationType,
		RelationName:                    r.RelationName,
		RelationNameInRegionalLang:      r.RelationNameInRegionalLang,
		FatherName:                      r.FatherName,
		City:                            r.City,
		Pincode:                         r.Pincode,
		Country:                         r.Country,
		AddressLine:                     r.AddressLine,
		AssemblyConstituencyNumber:      r.AssemblyConstituencyNumber,
		AssemblyConstituency:            r.AssemblyConstituency,
		ParliamentaryConstituencyNumber: r.ParliamentaryConstituencyNumber,
		ParliamentaryConstituency:       r.ParliamentaryConstituency,
		PartNumber:                      r.PartNumber,
		PartName:                        r.PartName,
		SerialNumber:                    r.SerialNumber,
		PollingStation:                  r.PollingStation,
		Address:                         r.Address,
		Photo:                           r.Photo,
		ResponseType:                    r.ResponseType,
	}
}

func (a attributes) applyTo(r *models.VoterRecord) {
	r.NameInRegionalLang = a.NameInRegionalLang
	r.Age = a.Age
	r.RelationType = a.RelationType
	r.RelationName = a.RelationName
	r.RelationNameInRegionalLang = a.RelationNameInRegionalLang
	r.FatherName = a.FatherName
	r.City = a.City
	r.Pincode = a.Pincode
	r.Country = a.Country
	r.AddressLine = a.AddressLine
	r.AssemblyConstituencyNumber = a.AssemblyConstituencyNumber
	r.AssemblyConstituency = a.AssemblyConstituency
	r.ParliamentaryConstituencyNumber = a.ParliamentaryConstituencyNumber
	r.ParliamentaryConstituency = a.ParliamentaryConstituency
	r.PartNumber = a.PartNumber
	r.PartName = a.PartName
	r.SerialNumber = a.SerialNumber
	r.PollingStation = a.PollingStation
	r.Address = a.Address
	r.Photo = a.Photo
	r.ResponseType = a.ResponseType
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.VoterRecord, error) {
	var (
		r          models.VoterRecord
		recordID   uuid.UUID
		epic       string
		attrsRaw   []byte
		source     string
		disabledAt sql.NullTime
		enabledAt  sql.NullTime
	)
	if err := row.Scan(&recordID, &epic, &r.Name, &r.Gender, &r.State, &r.District, &attrsRaw, &r.Status,
		&r.IsDisabled, &r.DisabledBy, &disabledAt, &r.EnabledBy, &enabledAt, &source, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	var attrs attributes
	if len(attrsRaw) > 0 {
		if err := json.Unmarshal(attrsRaw, &attrs); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	attrs.applyTo(&r)
	r.ID = id.RecordID(recordID)
	r.EPICNo = id.EPICNumber(epic)
	r.DataSource = models.DataSource(source)
	if disabledAt.Valid {
		t := disabledAt.Time
		r.DisabledAt = &t
	}
	if enabledAt.Valid {
		t := enabledAt.Time
		r.EnabledAt = &t
	}
	return &r, nil
}

func recordArgs(r *models.VoterRecord) ([]any, error) {
	attrsRaw, err := json.Marshal(attributesOf(r))
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return []any{
		uuid.UUID(r.ID), r.EPICNo.String(), r.Name, r.Gender, r.State, r.District, string(attrsRaw), r.Status,
		r.IsDisabled, r.DisabledBy, r.DisabledAt, r.EnabledBy, r.EnabledAt, string(r.DataSource), r.CreatedAt, r.UpdatedAt,
	}, nil
}

func (s *PostgresStore) FindByEPIC(ctx context.Context, epic id.EPICNumber, includeDisabled bool) (*models.VoterRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM voter_records WHERE epic_no = $1`
	if !includeDisabled {
		query += ` AND is_disabled = FALSE`
	}
	r, err := scanRecord(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, epic.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find voter by epic: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, recordID id.RecordID) (*models.VoterRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM voter_records WHERE id = $1`
	r, err := scanRecord(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find voter by id: %w", err)
	}
	return r, nil
}

// ExistingEPICs returns the subset of epics already stored, disabled included.
func (s *PostgresStore) ExistingEPICs(ctx context.Context, epics []id.EPICNumber) (map[id.EPICNumber]bool, error) {
	found := make(map[id.EPICNumber]bool)
	if len(epics) == 0 {
		return found, nil
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT epic_no FROM voter_records WHERE epic_no = ANY($1::text[])`, pq.Array(epicStrings(epics)))
	if err != nil {
		return nil, fmt.Errorf("find existing epics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var epic string
		if err := rows.Scan(&epic); err != nil {
			return nil, fmt.Errorf("scan existing epic: %w", err)
		}
		found[id.EPICNumber(epic)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing epics: %w", err)
	}
	return found, nil
}

const insertRecord = `INSERT INTO voter_records (` + recordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

func (s *PostgresStore) Create(ctx context.Context, r *models.VoterRecord) error {
	args, err := recordArgs(r)
	if err != nil {
		return err
	}
	if _, err := tx.Executor(ctx, s.db).ExecContext(ctx, insertRecord, args...); err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert voter: %w", err)
	}
	return nil
}

// InsertMany inserts records one statement at a time so that a rejected row
// does not abort the rest. The returned slice is aligned with records; a nil
// entry means the record was stored, sentinel.ErrConflict means its
// identifier already existed.
func (s *PostgresStore) InsertMany(ctx context.Context, records []*models.VoterRecord) ([]error, error) {
	outcomes := make([]error, len(records))
	if len(records) == 0 {
		return outcomes, nil
	}
	stmt, err := tx.Executor(ctx, s.db).PrepareContext(ctx, insertRecord+` ON CONFLICT DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		args, err := recordArgs(r)
		if err != nil {
			outcomes[i] = err
			continue
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("bulk insert: %w", ctx.Err())
			}
			outcomes[i] = fmt.Errorf("insert voter: %w", err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			outcomes[i] = sentinel.ErrConflict
		}
	}
	return outcomes, nil
}

// UpdateByEPIC applies update under a row lock.
func (s *PostgresStore) UpdateByEPIC(ctx context.Context, epic id.EPICNumber, update models.UpdateRecord, now time.Time) (*models.VoterRecord, error) {
	var updated *models.VoterRecord
	err := tx.RunInTx(ctx, s.db, func(txCtx context.Context) error {
		exec := tx.Executor(txCtx, s.db)
		r, err := scanRecord(exec.QueryRowContext(txCtx,
			`SELECT `+recordColumns+` FROM voter_records WHERE epic_no = $1 FOR UPDATE`, epic.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock voter: %w", err)
		}
		update.Apply(r, now)
		args, err := recordArgs(r)
		if err != nil {
			return err
		}
		_, err = exec.ExecContext(txCtx, `
			UPDATE voter_records SET
				name = $3, gender = $4, state = $5, district = $6, attributes = $7, status = $8,
				is_disabled = $9, disabled_by = $10, disabled_at = $11, enabled_by = $12, enabled_at = $13,
				data_source = $14, created_at = $15, updated_at = $16
			WHERE id = $1 AND epic_no = $2
		`, args...)
		if err != nil {
			return fmt.Errorf("update voter: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByEPIC removes the record and reports whether one existed.
func (s *PostgresStore) DeleteByEPIC(ctx context.Context, epic id.EPICNumber) (bool, error) {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM voter_records WHERE epic_no = $1`, epic.String())
	if err != nil {
		return false, fmt.Errorf("delete voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete voter rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) List(ctx context.Context, opts models.ListOptions) ([]*models.VoterRecord, int, error) {
	where, args := listingClause(opts)
	exec := tx.Executor(ctx, s.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count voters: %w", err)
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM voter_records%s ORDER BY %s %s, epic_no %s LIMIT $%d OFFSET $%d`,
		recordColumns, where, column, direction, direction, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list voters: %w", err)
	}
	defer rows.Close()

	records := make([]*models.VoterRecord, 0, opts.Limit)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan voter: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate voters: %w", err)
	}
	return records, total, nil
}

func listingClause(opts models.ListOptions) (string, []any) {
	conds := []string{"is_disabled = FALSE"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if opts.Filter.State != "" {
		add("state = $%d", opts.Filter.State)
	}
	if opts.Filter.District != "" {
		add("district = $%d", opts.Filter.District)
	}
	if opts.Filter.Gender != "" {
		add("gender = $%d", opts.Filter.Gender)
	}
	if opts.Filter.DataSource != "" {
		add("data_source = $%d", string(opts.Filter.DataSource))
	}
	if opts.Search != "" {
		args = append(args, "%"+escapeLike(opts.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR epic_no ILIKE $%d)", n, n))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Health pings the database.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
