//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterdata/internal/voter/store"
	"voterdata/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	storeContractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx, "voter_records")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestSchemaBootstrapIsIdempotent() {
	s.Require().NoError(store.EnsurePostgresSchema(s.ctx, s.postgres.DB))
}

func (s *PostgresStoreSuite) TestAttributesRoundTrip() {
	r := newRecord("ATTR0001", "Meera", 0)
	r.FatherName = "Gopal"
	r.ResponseType = 2
	s.Require().NoError(s.store.Create(s.ctx, r))

	found, err := s.store.FindByEPIC(s.ctx, r.EPICNo, false)
	s.Require().NoError(err)
	s.Equal("Gopal", found.FatherName)
	s.Equal(2, found.ResponseType)
	s.Equal("Ward 4", found.PartName)
}
