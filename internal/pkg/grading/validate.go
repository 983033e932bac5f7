package grading

import "fmt"

// Evaluation is the part of a rater's evaluation the validator needs.
type Evaluation struct {
	RateeID    string `json:"ratee_id"`
	TotalScore int    `json:"total_score"`
}

// BandCounts holds how many evaluations fell in each band.
type BandCounts struct {
	A  int `json:"a"`
	B  int `json:"b"`
	C  int `json:"c"`
	D  int `json:"d"`
	E  int `json:"e"`
	DE int `json:"de"`
}

// Sum returns the number of evaluations across all bands.
func (c BandCounts) Sum() int {
	return c.A + c.B + c.C + c.DE
}

// Breakdown is the structured part of a validation result, used to render guidance.
type Breakdown struct {
	Department     Department `json:"department"`
	DepartmentName string     `json:"department_name"`
	Counts         BandCounts `json:"counts"`
	Required       *Quota     `json:"required,omitempty"`
	Total          int        `json:"total"`
	Headcount      int        `json:"headcount"`
}

// ValidationResult reports whether a grade distribution satisfies its department quota.
// FailedBand is empty when Valid is true and "TOTAL" for the consistency check.
type ValidationResult struct {
	Valid      bool      `json:"valid"`
	Message    string    `json:"message"`
	FailedBand string    `json:"failed_band,omitempty"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Band identifiers used in results and suggestions.
const (
	BandA     = "A"
	BandB     = "B"
	BandC     = "C"
	BandDE    = "DE"
	BandTotal = "TOTAL"
)

// Engine applies a rubric and a quota table. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	rubric   Rubric
	maxScore int
	quotas   QuotaTable
}

// NewEngine builds an engine for the given rubric and quotas. A nil quota table means
// every department is unconstrained.
func NewEngine(rubric Rubric, quotas QuotaTable) *Engine {
	if quotas == nil {
		quotas = QuotaTable{}
	}
	return &Engine{
		rubric:   rubric,
		maxScore: rubric.MaxScore(),
		quotas:   quotas,
	}
}

// NewDefaultEngine uses the canonical rubric and quota table.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRubric(), DefaultQuotas())
}

// Rubric returns the engine's rubric.
func (e *Engine) Rubric() Rubric {
	return e.rubric
}

// MaxScore returns the rubric maximum.
func (e *Engine) MaxScore() int {
	return e.maxScore
}

// Quota returns the quota for a department.
func (e *Engine) Quota(dept Department) (Quota, bool) {
	q, ok := e.quotas[dept]
	return q, ok
}

// Grade maps a total score to its band.
func (e *Engine) Grade(score int) Grade {
	return GradeFor(score, e.maxScore)
}

// Count tallies evaluations per band.
func (e *Engine) Count(evals []Evaluation) BandCounts {
	var c BandCounts
	for _, ev := range evals {
		switch e.Grade(ev.TotalScore).Code {
		case GradeA:
			c.A++
		case GradeB:
			c.B++
		case GradeC:
			c.C++
		case GradeD:
			c.D++
		case GradeE:
			c.E++
		}
	}
	c.DE = c.D + c.E
	return c
}

// ValidateGradeDistribution checks the evaluations of one department against its quota,
// expecting one evaluation per quota headcount.
func (e *Engine) ValidateGradeDistribution(evals []Evaluation, dept Department) ValidationResult {
	return e.ValidateGradeDistributionFor(evals, dept, 0)
}

// ValidateGradeDistributionFor checks the evaluations of one department against its quota.
// Constraints are checked in the order A, B, C, D+E, total and the first failure is reported.
// expected is the number of ratees the evaluations must cover; when it is not positive the
// quota headcount is used.
func (e *Engine) ValidateGradeDistributionFor(evals []Evaluation, dept Department, expected int) ValidationResult {
	name := DepartmentName(dept)
	quota, ok := e.quotas[dept]
	if !ok {
		return ValidationResult{
			Valid:   true,
			Message: fmt.Sprintf("%s has no grade quota", name),
			Breakdown: Breakdown{
				Department:     dept,
				DepartmentName: name,
				Counts:         e.Count(evals),
				Total:          len(evals),
			},
		}
	}

	if expected <= 0 {
		expected = quota.Headcount
	}
	counts := e.Count(evals)
	required := quota
	res := ValidationResult{
		Breakdown: Breakdown{
			Department:     dept,
			DepartmentName: name,
			Counts:         counts,
			Required:       &required,
			Total:          len(evals),
			Headcount:      expected,
		},
	}

	switch {
	case counts.A > quota.MaxA:
		res.FailedBand = BandA
		res.Message = fmt.Sprintf("%s: at most %d A grades allowed, currently %d (%d over)",
			name, quota.MaxA, counts.A, counts.A-quota.MaxA)
	case !quota.B.Contains(counts.B):
		res.FailedBand = BandB
		res.Message = rangeMessage(name, "B", quota.B, counts.B)
	case !quota.C.Contains(counts.C):
		res.FailedBand = BandC
		res.Message = rangeMessage(name, "C", quota.C, counts.C)
	case !quota.DE.Contains(counts.DE):
		res.FailedBand = BandDE
		res.Message = rangeMessage(name, "D+E", quota.DE, counts.DE)
	case counts.Sum() != expected:
		res.FailedBand = BandTotal
		res.Message = fmt.Sprintf("%s: graded evaluations add up to %d but %d ratees are expected, data is inconsistent",
			name, counts.Sum(), expected)
	default:
		res.Valid = true
		res.Message = fmt.Sprintf("%s: grade distribution satisfies the quota (A %d/%d, B %d/%s, C %d/%s, D+E %d/%s)",
			name, counts.A, quota.MaxA, counts.B, quota.B, counts.C, quota.C, counts.DE, quota.DE)
	}
	return res
}

func rangeMessage(dept, band string, r Range, n int) string {
	if n < r.Min {
		return fmt.Sprintf("%s: %s grades must be between %d and %d, currently %d (%d short)",
			dept, band, r.Min, r.Max, n, r.Min-n)
	}
	return fmt.Sprintf("%s: %s grades must be between %d and %d, currently %d (%d over)",
		dept, band, r.Min, r.Max, n, n-r.Max)
}
