package personnel

import "time"

// Personnel is a person who can be evaluated.
type Personnel struct {
	ID         string
	Name       string
	Department string
	Position   string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
