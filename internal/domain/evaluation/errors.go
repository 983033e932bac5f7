package evaluation

import (
	"errors"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
)

var (
	ErrEvaluationNotFound     = errors.New("evaluation not found")
	ErrAlreadySubmitted       = errors.New("evaluation has already been submitted")
	ErrSelfEvaluation         = errors.New("raters cannot evaluate themselves")
	ErrRateeOutsideDepartment = errors.New("ratee does not belong to the rater's department")
	ErrIncompleteEvaluations  = errors.New("every ratee of the department needs a complete evaluation before submitting")
	ErrNothingToSubmit        = errors.New("there are no draft evaluations to submit")
)

// QuotaViolationError is returned when a submission does not satisfy the department quota.
type QuotaViolationError struct {
	Result      grading.ValidationResult
	Suggestions []grading.Suggestion
}

func (e *QuotaViolationError) Error() string {
	return e.Result.Message
}
