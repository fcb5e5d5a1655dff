package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/sentinel"
)

// DefaultMongoCollection is the collection voter records are kept in.
const DefaultMongoCollection = "voterdata"

var mongoSortFields = map[string]string{
	models.SortCreatedAt: "createdAt",
	models.SortUpdatedAt: "updatedAt",
	models.SortName:      "name",
	models.SortEPICNo:    "epic_no",
	models.SortState:     "state",
	models.SortDistrict:  "district",
}

// MongoStore persists voter records as MongoDB documents. Uniqueness of
// epic_no is enforced by the index created in EnsureMongoIndexes.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

type voterDocument struct {
	ID     string `bson:"_id"`
	EPICNo string `bson:"epic_no"`
	Name   string `bson:"name"`

	NameInRegionalLang              string `bson:"name_in_regional_lang,omitempty"`
	Age                             string `bson:"age,omitempty"`
	RelationType                    string `bson:"relation_type,omitempty"`
	RelationName                    string `bson:"relation_name,omitempty"`
	RelationNameInRegionalLang      string `bson:"relation_name_in_regional_lang,omitempty"`
	FatherName                      string `bson:"father_name,omitempty"`
	Gender                          string `bson:"gender,omitempty"`
	State                           string `bson:"state,omitempty"`
	District                        string `bson:"district,omitempty"`
	City                            string `bson:"city,omitempty"`
	Pincode                         string `bson:"pincode,omitempty"`
	Country                         string `bson:"country,omitempty"`
	AddressLine                     string `bson:"address_line,omitempty"`
	AssemblyConstituencyNumber      string `bson:"assembly_constituency_number,omitempty"`
	AssemblyConstituency            string `bson:"assembly_constituency,omitempty"`
	ParliamentaryConstituencyNumber string `bson:"parliamentary_constituency_number,omitempty"`
	ParliamentaryConstituency       string `bson:"parliamentary_constituency,omitempty"`
	PartNumber                      string `bson:"part_number,omitempty"`
	PartName                        string `bson:"part_name,omitempty"`
	SerialNumber                    string `bson:"serial_number,omitempty"`
	PollingStation                  string `bson:"polling_station,omitempty"`
	Address                         string `bson:"address,omitempty"`
	Photo                           string `bson:"photo,omitempty"`
	ResponseType                    int    `bson:"responseType,omitempty"`

	Status     string     `bson:"status"`
	IsDisabled bool       `bson:"isDisabled"`
	DisabledBy string     `bson:"disabledBy,omitempty"`
	DisabledAt *time.Time `bson:"disabledAt,omitempty"`
	EnabledBy  string     `bson:"enabledBy,omitempty"`
	EnabledAt  *time.Time `bson:"enabledAt,omitempty"`
	DataSource string     `bson:"dataSource"`
	CreatedAt  time.Time  `bson:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt"`
}

func toDocument(r *models.VoterRecord) voterDocument {
	return voterDocument{
		ID:                              r.ID.String(),
		EPICNo:                          r.EPICNo.String(),
		Name:                            r.Name,
		NameInRegionalLang:              r.NameInRegionalLang,
		Age:                             r.Age,
		RelationType:                    r.RelationType,
		RelationName:                    r.RelationName,
		RelationNameInRegionalLang:      r.RelationNameInRegionalLang,
		FatherName:                      r.FatherName,
		Gender:                          r.Gender,
		State:                           r.State,
		District:                        r.District,
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
		Status:                          r.Status,
		IsDisabled:                      r.IsDisabled,
		DisabledBy:                      r.DisabledBy,
		DisabledAt:                      r.DisabledAt,
		EnabledBy:                       r.EnabledBy,
		EnabledAt:                       r.EnabledAt,
		DataSource:                      string(r.DataSource),
		CreatedAt:                       r.CreatedAt,
		UpdatedAt:                       r.UpdatedAt,
	}
}

func (d voterDocument) toRecord() (*models.VoterRecord, error) {
	parsed, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode voter id %q: %w", d.ID, err)
	}
	return &models.VoterRecord{
		ID:                              id.RecordID(parsed),
		EPICNo:                          id.EPICNumber(d.EPICNo),
		Name:                            d.Name,
		NameInRegionalLang:              d.NameInRegionalLang,
		Age:                             d.Age,
		RelationType:                    d.RelationType,
		RelationName:                    d.RelationName,
		RelationNameInRegionalLang:      d.RelationNameInRegionalLang,
		FatherName:                      d.FatherName,
		Gender:                          d.Gender,
		State:                           d.State,
		District:                        d.District,
		City:                            d.City,
		Pincode:                         d.Pincode,
		Country:                         d.Country,
		AddressLine:                     d.AddressLine,
		AssemblyConstituencyNumber:      d.AssemblyConstituencyNumber,
		AssemblyConstituency:            d.AssemblyConstituency,
		ParliamentaryConstituencyNumber: d.ParliamentaryConstituencyNumber,
		ParliamentaryConstituency:       d.ParliamentaryConstituency,
		PartNumber:                      d.PartNumber,
		PartName:                        d.PartName,
		SerialNumber:                    d.SerialNumber,
		PollingStation:                  d.PollingStation,
		Address:                         d.Address,
		Photo:                           d.Photo,
		ResponseType:                    d.ResponseType,
		Status:                          d.Status,
		IsDisabled:                      d.IsDisabled,
		DisabledBy:                      d.DisabledBy,
		DisabledAt:                      d.DisabledAt,
		EnabledBy:                       d.EnabledBy,
		EnabledAt:                       d.EnabledAt,
		DataSource:                      models.DataSource(d.DataSource),
		CreatedAt:                       d.CreatedAt.UTC(),
		UpdatedAt:                       d.UpdatedAt.UTC(),
	}, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.VoterRecord, error) {
	var doc voterDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return doc.toRecord()
}

func (s *MongoStore) FindByEPIC(ctx context.Context, epic id.EPICNumber, includeDisabled bool) (*models.VoterRecord, error) {
	filter := bson.M{"epic_no": epic.String()}
	if !includeDisabled {
		filter["isDisabled"] = false
	}
	r, err := s.findOne(ctx, filter)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find voter by epic: %w", err)
	}
	return r, err
}

func (s *MongoStore) FindByID(ctx context.Context, recordID id.RecordID) (*models.VoterRecord, error) {
	r, err := s.findOne(ctx, bson.M{"_id": recordID.String()})
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find voter by id: %w", err)
	}
	return r, err
}

// ExistingEPICs returns the subset of epics already stored, disabled included.
func (s *MongoStore) ExistingEPICs(ctx context.Context, epics []id.EPICNumber) (map[id.EPICNumber]bool, error) {
	found := make(map[id.EPICNumber]bool)
	if len(epics) == 0 {
		return found, nil
	}
	cur, err := s.coll.Find(ctx,
		bson.M{"epic_no": bson.M{"$in": epicStrings(epics)}},
		options.Find().SetProjection(bson.M{"epic_no": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find existing epics: %w", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc struct {
			EPICNo string `bson:"epic_no"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode existing epic: %w", err)
		}
		found[id.EPICNumber(doc.EPICNo)] = true
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing epics: %w", err)
	}
	return found, nil
}

func (s *MongoStore) Create(ctx context.Context, r *models.VoterRecord) error {
	if _, err := s.coll.InsertOne(ctx, toDocument(r)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert voter: %w", err)
	}
	return nil
}

// InsertMany performs one unordered bulk insert and maps the per-document
// write errors back onto the input positions.
func (s *MongoStore) InsertMany(ctx context.Context, records []*models.VoterRecord) ([]error, error) {
	outcomes := make([]error, len(records))
	if len(records) == 0 {
		return outcomes, nil
	}
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = toDocument(r)
	}
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return outcomes, nil
	}
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || len(bulkErr.WriteErrors) == 0 {
		return nil, fmt.Errorf("bulk insert voters: %w", err)
	}
	for _, we := range bulkErr.WriteErrors {
		if we.Index < 0 || we.Index >= len(outcomes) {
			continue
		}
		if we.HasErrorCode(11000) {
			outcomes[we.Index] = sentinel.ErrConflict
			continue
		}
		outcomes[we.Index] = fmt.Errorf("insert voter: %s", we.Message)
	}
	return outcomes, nil
}

func (s *MongoStore) UpdateByEPIC(ctx context.Context, epic id.EPICNumber, update models.UpdateRecord, now time.Time) (*models.VoterRecord, error) {
	r, err := s.findOne(ctx, bson.M{"epic_no": epic.String()})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load voter for update: %w", err)
	}
	update.Apply(r, now)
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID.String()}, toDocument(r))
	if err != nil {
		return nil, fmt.Errorf("update voter: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, sentinel.ErrNotFound
	}
	return r, nil
}

// DeleteByEPIC removes the record and reports whether one existed.
func (s *MongoStore) DeleteByEPIC(ctx context.Context, epic id.EPICNumber) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"epic_no": epic.String()})
	if err != nil {
		return false, fmt.Errorf("delete voter: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) List(ctx context.Context, opts models.ListOptions) ([]*models.VoterRecord, int, error) {
	filter := listingFilter(opts)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count voters: %w", err)
	}

	field, ok := mongoSortFields[opts.SortBy]
	if !ok {
		field = "createdAt"
	}
	direction := 1
	if opts.SortDesc {
		direction = -1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "epic_no", Value: direction}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("list voters: %w", err)
	}
	defer cur.Close(ctx)

	records := make([]*models.VoterRecord, 0, opts.Limit)
	for cur.Next(ctx) {
		var doc voterDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode voter: %w", err)
		}
		r, err := doc.toRecord()
		if err != nil {
			return nil, 0, err
		}
		records = append(records, r)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate voters: %w", err)
	}
	return records, int(total), nil
}

func listingFilter(opts models.ListOptions) bson.M {
	filter := bson.M{"isDisabled": false}
	if opts.Filter.State != "" {
		filter["state"] = opts.Filter.State
	}
	if opts.Filter.District != "" {
		filter["district"] = opts.Filter.District
	}
	if opts.Filter.Gender != "" {
		filter["gender"] = opts.Filter.Gender
	}
	if opts.Filter.DataSource != "" {
		filter["dataSource"] = string(opts.Filter.DataSource)
	}
	if opts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"epic_no": pattern},
		}
	}
	return filter
}

// Health pings the deployment backing the collection.
func (s *MongoStore) Health(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
