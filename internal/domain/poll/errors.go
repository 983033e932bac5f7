package poll

import "errors"

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrPollClosed     = errors.New("poll is closed")
	ErrAlreadyVoted   = errors.New("you have already voted in this poll")
	ErrOptionNotFound = errors.New("option does not belong to this poll")
	ErrNotPollOwner   = errors.New("only the poll creator or an admin can close the poll")
)
