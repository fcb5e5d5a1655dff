//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterdata/internal/voter/store"
	"voterdata/pkg/testutil/containers"
)

const mongoTestDB = "voterdata_test"

type MongoStoreSuite struct {
	storeContractSuite
	mongo *containers.MongoContainer
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.mongo = mgr.GetMongo(s.T())
	s.ctx = context.Background()
}

func (s *MongoStoreSuite) SetupTest() {
	s.Require().NoError(s.mongo.DropDatabase(s.ctx, mongoTestDB))
	coll := s.mongo.Database(mongoTestDB).Collection(store.DefaultMongoCollection)
	s.Require().NoError(store.EnsureMongoIndexes(s.ctx, coll))
	s.store = store.NewMongo(coll)
}
