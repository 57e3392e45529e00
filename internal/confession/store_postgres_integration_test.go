//go:build integration

package confession_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confide/internal/confession"
	"confide/internal/identity"
	"confide/pkg/platform/sentinel"
	"confide/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *confession.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = confession.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func (s *PostgresStoreSuite) create(text string, p confession.Point) *confession.Confession {
	s.T().Helper()
	now := time.Now()
	c := &confession.Confession{
		ID:        uuid.New(),
		Text:      text,
		Location:  p,
		Reactions: map[string]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *PostgresStoreSuite) TestConcurrentReactionAdjustments() {
	ctx := context.Background()
	c := s.create("contended", confession.Point{})

	const goroutines = 30
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.store.AdjustReaction(ctx, c.ID, "", "👍"))
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(map[string]int{"👍": goroutines}, found.Reactions)
}

func (s *PostgresStoreSuite) TestReactionKeyRemovedAtZero() {
	ctx := context.Background()
	c := s.create("zero handling", confession.Point{})

	s.Require().NoError(s.store.AdjustReaction(ctx, c.ID, "", "👍"))
	s.Require().NoError(s.store.AdjustReaction(ctx, c.ID, "👍", "❤️"))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(map[string]int{"❤️": 1}, found.Reactions)

	s.Require().NoError(s.store.AdjustReaction(ctx, c.ID, "❤️", ""))
	found, err = s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Empty(found.Reactions)
}

func (s *PostgresStoreSuite) TestAdjustOnMissingRow() {
	err := s.store.AdjustReaction(context.Background(), uuid.New(), "", "👍")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.AdjustComments(context.Background(), uuid.New(), +1)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestAuthorUsernameJoin() {
	ctx := context.Background()
	users := identity.NewPostgresStore(s.postgres.DB)
	user := &identity.User{ID: uuid.New(), Username: "NavyHeron382", CreatedAt: time.Now()}
	s.Require().NoError(users.Create(ctx, user))

	now := time.Now()
	c := &confession.Confession{
		ID:        uuid.New(),
		Text:      "signed",
		AuthorID:  &user.ID,
		Reactions: map[string]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("NavyHeron382", found.AuthorUsername)
}

func (s *PostgresStoreSuite) TestNearby() {
	ctx := context.Background()
	s.create("center", confession.Point{Longitude: 13.4132, Latitude: 52.5219})
	s.create("near", confession.Point{Longitude: 13.4050, Latitude: 52.5200})
	s.create("far", confession.Point{Longitude: 13.2846, Latitude: 52.5145})

	found, err := s.store.Nearby(ctx, 13.4132, 52.5219, 1000)
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("center", found[0].Text)
	s.Equal("near", found[1].Text)
}

func (s *PostgresStoreSuite) TestListPaging() {
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		c := s.create("paged", confession.Point{})
		if i%2 == 0 {
			c.Category = "work"
			s.Require().NoError(s.store.Update(ctx, c))
		}
	}

	confessions, total, err := s.store.List(ctx, confession.Filter{Page: 2, Size: 10})
	s.Require().NoError(err)
	s.Equal(12, total)
	s.Len(confessions, 2)

	confessions, total, err = s.store.List(ctx, confession.Filter{Category: "work", Page: 1, Size: 10})
	s.Require().NoError(err)
	s.Equal(6, total)
	s.Len(confessions, 6)
}
