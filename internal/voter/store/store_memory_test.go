package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterdata/internal/voter/store"
)

type InMemoryStoreSuite struct {
	storeContractSuite
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
}

func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	r := newRecord("COPY0001", "Original", 0)
	s.Require().NoError(s.store.Create(s.ctx, r))

	found, err := s.store.FindByEPIC(s.ctx, r.EPICNo, false)
	s.Require().NoError(err)
	found.Name = "Mutated"

	again, err := s.store.FindByEPIC(s.ctx, r.EPICNo, false)
	s.Require().NoError(err)
	s.Equal("Original", again.Name)
}
