package evaluation

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Evaluation is one rater's scoring of one ratee.
type Evaluation struct {
	ID          string
	RaterID     string
	RateeID     string
	Department  string
	RaterRole   string
	Scores      map[string]int
	TotalScore  int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time

	// Join
	RateeName string
}

// IsSubmitted reports whether the evaluation is locked.
func (e *Evaluation) IsSubmitted() bool {
	return e.Status == StatusSubmitted
}
