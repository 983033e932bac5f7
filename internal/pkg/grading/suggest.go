package grading

import "fmt"

// Suggestion is a remedial hint for an invalid distribution.
type Suggestion struct {
	Band    string `json:"band"`
	Message string `json:"message"`
}

// GenerateSuggestions returns remedial hints for an invalid distribution, or nil when the
// department has no quota or the distribution is already valid.
func (e *Engine) GenerateSuggestions(evals []Evaluation, dept Department) []Suggestion {
	return e.GenerateSuggestionsFor(evals, dept, 0)
}

// GenerateSuggestionsFor is GenerateSuggestions with an explicit expected ratee count, as
// accepted by ValidateGradeDistributionFor.
func (e *Engine) GenerateSuggestionsFor(evals []Evaluation, dept Department, expected int) []Suggestion {
	quota, ok := e.quotas[dept]
	if !ok {
		return nil
	}
	if e.ValidateGradeDistributionFor(evals, dept, expected).Valid {
		return nil
	}

	c := e.Count(evals)
	var out []Suggestion
	add := func(band, format string, args ...any) {
		out = append(out, Suggestion{Band: band, Message: fmt.Sprintf(format, args...)})
	}

	if c.A > quota.MaxA {
		add(BandA, "A grades exceed the limit by %d, lower %d A evaluation(s) to B", c.A-quota.MaxA, c.A-quota.MaxA)
	}

	bOver := false
	if c.B < quota.B.Min {
		add(BandB, "B grades are %d short, raise %d C/D/E evaluation(s) to B", quota.B.Min-c.B, quota.B.Min-c.B)
	}
	if c.B > quota.B.Max {
		bOver = true
		add(BandB, "B grades exceed the range by %d, lower %d B evaluation(s) to C", c.B-quota.B.Max, c.B-quota.B.Max)
	}

	cOver := false
	if c.C < quota.C.Min && !bOver {
		add(BandC, "C grades are %d short, raise %d D/E evaluation(s) to C", quota.C.Min-c.C, quota.C.Min-c.C)
	}
	if c.C > quota.C.Max {
		cOver = true
		add(BandC, "C grades exceed the range by %d, lower %d C evaluation(s) to D/E", c.C-quota.C.Max, c.C-quota.C.Max)
	}

	if c.DE < quota.DE.Min && !bOver && !cOver {
		add(BandDE, "D/E grades are %d short, lower %d B or C evaluation(s) to D/E", quota.DE.Min-c.DE, quota.DE.Min-c.DE)
	}
	if c.DE > quota.DE.Max {
		add(BandDE, "D/E grades exceed the range by %d, raise %d D/E evaluation(s) to C", c.DE-quota.DE.Max, c.DE-quota.DE.Max)
	}

	return out
}
