package poll

import "time"

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Poll struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string
	Status      Status
	ClosesAt    *time.Time
	CreatedAt   time.Time
	ClosedAt    *time.Time
	Options     []Option
}

// AcceptsVotes reports whether the poll is open and not past its closing time.
func (p *Poll) AcceptsVotes(now time.Time) bool {
	if p.Status != StatusOpen {
		return false
	}
	return p.ClosesAt == nil || now.Before(*p.ClosesAt)
}

// HasOption reports whether optionID belongs to the poll.
func (p *Poll) HasOption(optionID string) bool {
	for _, o := range p.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

type Option struct {
	ID       string
	PollID   string
	Label    string
	Position int
}

// Vote is anonymous: VoterHash cannot be traced back to a user without the server secret.
type Vote struct {
	PollID    string
	OptionID  string
	VoterHash string
}

type OptionCount struct {
	OptionID string
	Votes    int
}
