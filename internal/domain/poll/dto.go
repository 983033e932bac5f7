package poll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	MinOptions = 2
	MaxOptions = 10
)

type CreatePollRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	ClosesAt    *string  `json:"closes_at,omitempty"`

	closesAt *time.Time
}

// Validate checks the request; now is used to reject closing times in the past.
func (r *CreatePollRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	// Title
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if len(r.Title) > 200 {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title must not exceed 200 characters"})
	}

	// Options
	if len(r.Options) < MinOptions || len(r.Options) > MaxOptions {
		errs = append(errs, validator.ValidationError{Field: "options", Message: "a poll needs between 2 and 10 options"})
	}
	for _, o := range r.Options {
		if validator.IsEmpty(o) {
			errs = append(errs, validator.ValidationError{Field: "options", Message: "options must not be empty"})
			break
		}
		if len(o) > 200 {
			errs = append(errs, validator.ValidationError{Field: "options", Message: "options must not exceed 200 characters"})
			break
		}
	}
	if validator.HasDuplicates(r.Options) {
		errs = append(errs, validator.ValidationError{Field: "options", Message: "options must be unique"})
	}

	// Closing time
	if r.ClosesAt != nil {
		t, ok := validator.IsValidDateTime(*r.ClosesAt)
		switch {
		case !ok:
			errs = append(errs, validator.ValidationError{Field: "closes_at", Message: "closes_at must be an RFC3339 timestamp"})
		case !t.After(now):
			errs = append(errs, validator.ValidationError{Field: "closes_at", Message: "closes_at must be in the future"})
		default:
			r.closesAt = &t
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedClosesAt returns the closing time parsed by Validate.
func (r *CreatePollRequest) ParsedClosesAt() *time.Time {
	return r.closesAt
}

// TrimmedOptions returns the option labels without surrounding whitespace.
func (r *CreatePollRequest) TrimmedOptions() []string {
	out := make([]string, len(r.Options))
	for i, o := range r.Options {
		out[i] = strings.TrimSpace(o)
	}
	return out
}

type VoteRequest struct {
	PollID   string `json:"-"`
	OptionID string `json:"option_id"`
}

func (r *VoteRequest) Validate() error {
	if validator.IsEmpty(r.OptionID) {
		return validator.ValidationErrors{{Field: "option_id", Message: "option_id is required"}}
	}
	return nil
}

// ListFilter narrows a poll listing. An empty status lists all polls.
type ListFilter struct {
	Status Status
}

func (f *ListFilter) Validate() error {
	if f.Status != "" && !validator.IsInSlice(string(f.Status), []string{string(StatusOpen), string(StatusClosed)}) {
		return validator.ValidationErrors{{Field: "status", Message: "status must be 'open' or 'closed'"}}
	}
	return nil
}

type OptionResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type PollResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      Status           `json:"status"`
	ClosesAt    *time.Time       `json:"closes_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty"`
	Options     []OptionResponse `json:"options"`
}

func (p Poll) ToResponse() PollResponse {
	options := make([]OptionResponse, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, OptionResponse{ID: o.ID, Label: o.Label})
	}
	return PollResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		ClosesAt:    p.ClosesAt,
		CreatedAt:   p.CreatedAt,
		ClosedAt:    p.ClosedAt,
		Options:     options,
	}
}

type OptionResult struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type ResultsResponse struct {
	PollID     string         `json:"poll_id"`
	Title      string         `json:"title"`
	Status     Status         `json:"status"`
	TotalVotes int            `json:"total_votes"`
	Options    []OptionResult `json:"options"`
	HasVoted   bool           `json:"has_voted"`
}

// BuildResults combines poll options with vote counts. Options without votes report zero.
func BuildResults(p Poll, counts []OptionCount) ResultsResponse {
	byOption := make(map[string]int, len(counts))
	total := 0
	for _, c := range counts {
		byOption[c.OptionID] = c.Votes
		total += c.Votes
	}

	res := ResultsResponse{
		PollID:     p.ID,
		Title:      p.Title,
		Status:     p.Status,
		TotalVotes: total,
		Options:    make([]OptionResult, 0, len(p.Options)),
	}
	for _, o := range p.Options {
		votes := byOption[o.ID]
		var pct float64
		if total > 0 {
			pct = decimal.NewFromInt(int64(votes) * 100).Div(decimal.NewFromInt(int64(total))).Round(2).InexactFloat64()
		}
		res.Options = append(res.Options, OptionResult{ID: o.ID, Label: o.Label, Votes: votes, Percentage: pct})
	}
	return res
}
