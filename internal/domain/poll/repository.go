package poll

import (
	"context"
	"time"
)

type PollRepository interface {
	// Create stores the poll together with its options.
	Create(ctx context.Context, p Poll) (Poll, error)
	GetByID(ctx context.Context, id string) (Poll, error)
	List(ctx context.Context, filter ListFilter) ([]Poll, error)
	Close(ctx context.Context, id string, at time.Time) error
	// CloseExpired closes open polls whose closing time is not after now and returns their ids.
	CloseExpired(ctx context.Context, now time.Time) ([]string, error)

	// CreateVote returns ErrAlreadyVoted when the voter hash already voted in the poll.
	CreateVote(ctx context.Context, v Vote) error
	HasVoted(ctx context.Context, pollID, voterHash string) (bool, error)
	CountVotes(ctx context.Context, pollID string) ([]OptionCount, error)
}
