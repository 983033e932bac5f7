package grading

import (
	"errors"
	"fmt"
)

// Option is one selectable answer of a criterion.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Criterion is one rubric dimension. Options are ordered from best to worst.
type Criterion struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

// MaxValue returns the highest option value, or 0 when the criterion has no options.
func (c Criterion) MaxValue() int {
	if len(c.Options) == 0 {
		return 0
	}
	best := c.Options[0].Value
	for _, o := range c.Options[1:] {
		if o.Value > best {
			best = o.Value
		}
	}
	return best
}

// MinValue returns the lowest option value, or 0 when the criterion has no options.
func (c Criterion) MinValue() int {
	if len(c.Options) == 0 {
		return 0
	}
	worst := c.Options[0].Value
	for _, o := range c.Options[1:] {
		if o.Value < worst {
			worst = o.Value
		}
	}
	return worst
}

// HasOption reports whether value is one of the criterion's options.
func (c Criterion) HasOption(value int) bool {
	for _, o := range c.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Rubric is an ordered set of criteria. It is static configuration and is never mutated after load.
type Rubric struct {
	Criteria []Criterion `json:"criteria"`
}

var (
	ErrEmptyRubric       = errors.New("rubric has no criteria")
	ErrDuplicateCriteria = errors.New("duplicate criterion key")
	ErrNoOptions         = errors.New("criterion has no options")
	ErrDuplicateOption   = errors.New("duplicate option value")
)

// Validate checks the rubric invariants: unique keys, at least one option per criterion
// and distinct option values within a criterion.
func (r Rubric) Validate() error {
	if len(r.Criteria) == 0 {
		return ErrEmptyRubric
	}
	seen := make(map[string]struct{}, len(r.Criteria))
	for _, c := range r.Criteria {
		if _, ok := seen[c.Key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCriteria, c.Key)
		}
		seen[c.Key] = struct{}{}

		if len(c.Options) == 0 {
			return fmt.Errorf("%w: %s", ErrNoOptions, c.Key)
		}
		values := make(map[int]struct{}, len(c.Options))
		for _, o := range c.Options {
			if _, ok := values[o.Value]; ok {
				return fmt.Errorf("%w: %s=%d", ErrDuplicateOption, c.Key, o.Value)
			}
			values[o.Value] = struct{}{}
		}
	}
	return nil
}

// Criterion looks up a criterion by key.
func (r Rubric) Criterion(key string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

// Keys returns the criterion keys in rubric order.
func (r Rubric) Keys() []string {
	keys := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		keys = append(keys, c.Key)
	}
	return keys
}

// MaxScore is the sum of every criterion's highest option.
func (r Rubric) MaxScore() int {
	total := 0
	for _, c := range r.Criteria {
		total += c.MaxValue()
	}
	return total
}

// MinScore is the sum of every criterion's lowest option.
func (r Rubric) MinScore() int {
	total := 0
	for _, c := range r.Criteria {
		total += c.MinValue()
	}
	return total
}

// IsValidOption reports whether key is a rubric criterion and value one of its options.
func (r Rubric) IsValidOption(key string, value int) bool {
	c, ok := r.Criterion(key)
	if !ok {
		return false
	}
	return c.HasOption(value)
}

// IsComplete reports whether scores holds a value for every criterion.
func (r Rubric) IsComplete(scores map[string]int) bool {
	for _, c := range r.Criteria {
		if _, ok := scores[c.Key]; !ok {
			return false
		}
	}
	return true
}

// MissingKeys returns the criterion keys absent from scores, in rubric order.
func (r Rubric) MissingKeys(scores map[string]int) []string {
	var missing []string
	for _, c := range r.Criteria {
		if _, ok := scores[c.Key]; !ok {
			missing = append(missing, c.Key)
		}
	}
	return missing
}

func heavyOptions(desc [5]string) []Option {
	return []Option{
		{Value: 15, Label: desc[0]},
		{Value: 12, Label: desc[1]},
		{Value: 9, Label: desc[2]},
		{Value: 6, Label: desc[3]},
		{Value: 3, Label: desc[4]},
	}
}

func standardOptions(desc [5]string) []Option {
	return []Option{
		{Value: 10, Label: desc[0]},
		{Value: 8, Label: desc[1]},
		{Value: 6, Label: desc[2]},
		{Value: 4, Label: desc[3]},
		{Value: 2, Label: desc[4]},
	}
}

// DefaultRubric is the canonical nine-dimension rubric. Its maximum score is 100 and its minimum 20.
func DefaultRubric() Rubric {
	return Rubric{Criteria: []Criterion{
		{
			Key:         "responsibility",
			Name:        "Responsibility",
			Description: "Ownership of assigned work and follow-through on commitments",
			Options: heavyOptions([5]string{
				"Takes full ownership, proactively closes every loop",
				"Reliably owns assigned work",
				"Usually completes assigned work with occasional reminders",
				"Frequently needs follow-up to finish work",
				"Avoids ownership, work is regularly left unfinished",
			}),
		},
		{
			Key:         "professionalism",
			Name:        "Professionalism",
			Description: "Job knowledge and quality of professional output",
			Options: heavyOptions([5]string{
				"Recognised expert, raises the standard of the team",
				"Solid expertise, output rarely needs correction",
				"Adequate expertise for the role",
				"Gaps in expertise affect output quality",
				"Lacks the knowledge the role requires",
			}),
		},
		{
			Key:         "effectiveness",
			Name:        "Effectiveness",
			Description: "Delivery of results against goals and deadlines",
			Options: standardOptions([5]string{
				"Consistently exceeds goals ahead of schedule",
				"Meets all goals on time",
				"Meets most goals",
				"Misses several goals or deadlines",
				"Rarely meets goals",
			}),
		},
		{
			Key:         "teamwork",
			Name:        "Teamwork",
			Description: "Cooperation with colleagues and other departments",
			Options: standardOptions([5]string{
				"Actively strengthens the team and helps others succeed",
				"Cooperative and dependable team member",
				"Cooperates when asked",
				"Cooperation is inconsistent",
				"Works against team goals",
			}),
		},
		{
			Key:         "communication",
			Name:        "Communication",
			Description: "Clarity and timeliness of communication",
			Options: standardOptions([5]string{
				"Clear, timely and persuasive in every channel",
				"Clear and timely",
				"Generally understandable",
				"Often unclear or late",
				"Communication regularly causes problems",
			}),
		},
		{
			Key:         "learning",
			Name:        "Learning",
			Description: "Willingness and ability to acquire new skills",
			Options: standardOptions([5]string{
				"Continuously learns and shares knowledge",
				"Picks up new skills readily",
				"Learns when required",
				"Slow to adopt new skills",
				"Resists learning",
			}),
		},
		{
			Key:         "innovation",
			Name:        "Innovation",
			Description: "Improvement of processes and new ideas",
			Options: standardOptions([5]string{
				"Regularly delivers improvements adopted by others",
				"Suggests practical improvements",
				"Occasionally contributes ideas",
				"Rarely contributes ideas",
				"Never contributes ideas",
			}),
		},
		{
			Key:         "discipline",
			Name:        "Discipline",
			Description: "Attendance, punctuality and adherence to company rules",
			Options: standardOptions([5]string{
				"Exemplary, never violates rules",
				"Follows rules consistently",
				"Minor, infrequent lapses",
				"Repeated lapses",
				"Serious or frequent violations",
			}),
		},
		{
			Key:         "integrity",
			Name:        "Integrity",
			Description: "Honesty and ethical conduct",
			Options: standardOptions([5]string{
				"Beyond reproach, models ethical behaviour",
				"Honest and trustworthy",
				"No known issues",
				"Some questionable conduct",
				"Dishonest or unethical conduct",
			}),
		},
	}}
}
