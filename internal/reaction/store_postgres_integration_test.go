//go:build integration

package reaction_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confide/internal/reaction"
	"confide/pkg/platform/sentinel"
	"confide/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *reaction.PostgresStore
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = reaction.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func record(kind reaction.SubjectKind, subjectID, userID uuid.UUID, emoji string) *reaction.Record {
	now := time.Now()
	return &reaction.Record{
		SubjectKind: kind,
		SubjectID:   subjectID,
		UserID:      userID,
		Emoji:       emoji,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *PostgresLedgerSuite) TestDuplicateInsertIsConflict() {
	ctx := context.Background()
	subjectID, userID := uuid.New(), uuid.New()

	s.Require().NoError(s.store.Create(ctx, record(reaction.SubjectConfession, subjectID, userID, "👍")))

	err := s.store.Create(ctx, record(reaction.SubjectConfession, subjectID, userID, "❤️"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	s.Run("same user may react to the other kind", func() {
		s.NoError(s.store.Create(ctx, record(reaction.SubjectComment, subjectID, userID, "❤️")))
	})
}

func (s *PostgresLedgerSuite) TestConcurrentCreateSingleWinner() {
	ctx := context.Background()
	subjectID, userID := uuid.New(), uuid.New()

	const goroutines = 50
	var created, conflicted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, record(reaction.SubjectComment, subjectID, userID, "🔥"))
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicted.Add(1)
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, created.Load())
	s.EqualValues(goroutines-1, conflicted.Load())
}

func (s *PostgresLedgerSuite) TestUpdateAndDelete() {
	ctx := context.Background()
	subjectID, userID := uuid.New(), uuid.New()
	s.Require().NoError(s.store.Create(ctx, record(reaction.SubjectComment, subjectID, userID, "👍")))

	s.Require().NoError(s.store.UpdateEmoji(ctx, reaction.SubjectComment, subjectID, userID, "❤️", time.Now()))
	found, err := s.store.Find(ctx, reaction.SubjectComment, subjectID, userID)
	s.Require().NoError(err)
	s.Equal("❤️", found.Emoji)

	s.Require().NoError(s.store.Delete(ctx, reaction.SubjectComment, subjectID, userID))
	_, err = s.store.Find(ctx, reaction.SubjectComment, subjectID, userID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Delete(ctx, reaction.SubjectComment, subjectID, userID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresLedgerSuite) TestDeleteBySubject() {
	ctx := context.Background()
	subjectID := uuid.New()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Create(ctx, record(reaction.SubjectComment, subjectID, uuid.New(), "👍")))
	}
	s.Require().NoError(s.store.Create(ctx, record(reaction.SubjectConfession, subjectID, uuid.New(), "👍")))

	n, err := s.store.DeleteBySubject(ctx, reaction.SubjectComment, subjectID)
	s.Require().NoError(err)
	s.Equal(3, n)

	s.Run("repurge is a no-op", func() {
		n, err := s.store.DeleteBySubject(ctx, reaction.SubjectComment, subjectID)
		s.Require().NoError(err)
		s.Zero(n)
	})

	s.Run("the confession ledger is untouched", func() {
		n, err := s.store.DeleteBySubject(ctx, reaction.SubjectConfession, subjectID)
		s.Require().NoError(err)
		s.Equal(1, n)
	})
}
