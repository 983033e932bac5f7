package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollRepository(t *testing.T) {
	db := newTestDB(t)
	users := postgresql.NewUserRepository(db)
	repo := postgresql.NewPollRepository(db)
	tx := postgresql.NewTxManager(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "owner", "general")
	past := time.Now().Add(-time.Minute)

	var created poll.Poll
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = repo.Create(ctx, poll.Poll{
			ID:        newID(t),
			Title:     "Team lunch",
			CreatedBy: owner.ID,
			Status:    poll.StatusOpen,
			Options:   []poll.Option{{ID: newID(t), Label: "Pizza"}, {ID: newID(t), Label: "Sushi"}},
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, created.Options, 2)

	expiring, err := repo.Create(ctx, poll.Poll{
		ID: newID(t), Title: "Expired", CreatedBy: owner.ID, Status: poll.StatusOpen, ClosesAt: &past,
		Options: []poll.Option{{ID: newID(t), Label: "A"}, {ID: newID(t), Label: "B"}},
	})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", fetched.Options[0].Label)

	vote := poll.Vote{PollID: created.ID, OptionID: created.Options[0].ID, VoterHash: "h1"}
	require.NoError(t, repo.CreateVote(ctx, vote))
	assert.ErrorIs(t, repo.CreateVote(ctx, vote), poll.ErrAlreadyVoted)

	voted, err := repo.HasVoted(ctx, created.ID, "h1")
	require.NoError(t, err)
	assert.True(t, voted)

	counts, err := repo.CountVotes(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []poll.OptionCount{{OptionID: created.Options[0].ID, Votes: 1}}, counts)

	closed, err := repo.CloseExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{expiring.ID}, closed)

	open, err := repo.List(ctx, poll.ListFilter{Status: poll.StatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Len(t, open[0].Options, 2)

	require.NoError(t, repo.Close(ctx, created.ID, time.Now()))
	assert.ErrorIs(t, repo.Close(ctx, created.ID, time.Now()), poll.ErrPollClosed)
	assert.ErrorIs(t, repo.Close(ctx, newID(t), time.Now()), poll.ErrPollNotFound)
}
