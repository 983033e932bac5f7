package poll

import "context"

type PollService interface {
	Create(ctx context.Context, req CreatePollRequest) (PollResponse, error)
	Get(ctx context.Context, id string) (PollResponse, error)
	List(ctx context.Context, filter ListFilter) ([]PollResponse, error)
	Vote(ctx context.Context, req VoteRequest) (ResultsResponse, error)
	Results(ctx context.Context, id string) (ResultsResponse, error)
	Close(ctx context.Context, id string) (ResultsResponse, error)
	// CloseExpired is run periodically and returns how many polls were closed.
	CloseExpired(ctx context.Context) (int, error)
	// Subscribe streams result updates of a poll until the returned cleanup is called.
	Subscribe(ctx context.Context, id string) (<-chan ResultsResponse, func(), error)
}
