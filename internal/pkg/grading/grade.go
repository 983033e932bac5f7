package grading

// Code is a grade letter.
type Code string

const (
	GradeA Code = "A"
	GradeB Code = "B"
	GradeC Code = "C"
	GradeD Code = "D"
	GradeE Code = "E"
)

// Codes lists every grade from best to worst.
var Codes = []Code{GradeA, GradeB, GradeC, GradeD, GradeE}

// Grade is the band a total score falls into.
type Grade struct {
	Code       Code    `json:"code"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

type band struct {
	code      Code
	threshold int // minimum percentage of the maximum score
	label     string
	color     string
}

// bands are checked top-down; the last one is the fallback.
var bands = []band{
	{GradeA, 95, "Excellent", "success"},
	{GradeB, 85, "Good", "primary"},
	{GradeC, 75, "Satisfactory", "info"},
	{GradeD, 65, "Needs Improvement", "warning"},
	{GradeE, 0, "Unsatisfactory", "danger"},
}

// GradeFor maps a total score to its band given the maximum achievable score.
// A non-positive maximum always yields E.
func GradeFor(score, maxScore int) Grade {
	fallback := bands[len(bands)-1]
	if maxScore <= 0 {
		return Grade{Code: fallback.code, Label: fallback.label, Color: fallback.color}
	}

	pct := float64(score) / float64(maxScore) * 100
	for _, b := range bands[:len(bands)-1] {
		// integer comparison keeps exact thresholds in the higher band
		if int64(score)*100 >= int64(b.threshold)*int64(maxScore) {
			return Grade{Code: b.code, Label: b.label, Color: b.color, Percentage: pct}
		}
	}
	return Grade{Code: fallback.code, Label: fallback.label, Color: fallback.color, Percentage: pct}
}

// GradeOf maps a total score to its band using the rubric maximum.
func (r Rubric) GradeOf(score int) Grade {
	return GradeFor(score, r.MaxScore())
}

// Rank orders codes so that A is 0 and E is 4. Unknown codes rank after E.
func (c Code) Rank() int {
	for i, code := range Codes {
		if code == c {
			return i
		}
	}
	return len(Codes)
}
