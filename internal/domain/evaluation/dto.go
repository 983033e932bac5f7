package evaluation

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
)

type SaveDraftRequest struct {
	RateeID string         `json:"-"`
	Scores  map[string]int `json:"scores"`
}

// Validate checks the ratee id and that every score is an option of the rubric.
// Missing criteria are allowed in a draft.
func (r *SaveDraftRequest) Validate(rubric grading.Rubric) error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.RateeID) {
		errs = append(errs, validator.ValidationError{Field: "ratee_id", Message: "ratee_id must be a valid UUID"})
	}

	if len(r.Scores) == 0 {
		errs = append(errs, validator.ValidationError{Field: "scores", Message: "at least one score is required"})
	}
	for key, value := range r.Scores {
		c, ok := rubric.Criterion(key)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "scores." + key, Message: "unknown criterion"})
			continue
		}
		if !c.HasOption(value) {
			errs = append(errs, validator.ValidationError{
				Field:   "scores." + key,
				Message: fmt.Sprintf("%d is not an option of %s", value, c.Name),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EvaluationResponse struct {
	ID              string         `json:"id"`
	RateeID         string         `json:"ratee_id"`
	RateeName       string         `json:"ratee_name,omitempty"`
	Department      string         `json:"department"`
	RaterRole       string         `json:"rater_role"`
	Scores          map[string]int `json:"scores"`
	TotalScore      int            `json:"total_score"`
	Grade           grading.Grade  `json:"grade"`
	Complete        bool           `json:"complete"`
	MissingCriteria []string       `json:"missing_criteria,omitempty"`
	Status          Status         `json:"status"`
	UpdatedAt       time.Time      `json:"updated_at"`
	SubmittedAt     *time.Time     `json:"submitted_at,omitempty"`
}

// NewEvaluationResponse decorates an evaluation with its grade and completeness.
func NewEvaluationResponse(e Evaluation, engine *grading.Engine) EvaluationResponse {
	rubric := engine.Rubric()
	return EvaluationResponse{
		ID:              e.ID,
		RateeID:         e.RateeID,
		RateeName:       e.RateeName,
		Department:      e.Department,
		RaterRole:       e.RaterRole,
		Scores:          e.Scores,
		TotalScore:      e.TotalScore,
		Grade:           engine.Grade(e.TotalScore),
		Complete:        rubric.IsComplete(e.Scores),
		MissingCriteria: rubric.MissingKeys(e.Scores),
		Status:          e.Status,
		UpdatedAt:       e.UpdatedAt,
		SubmittedAt:     e.SubmittedAt,
	}
}

type CriteriaResponse struct {
	Criteria []grading.Criterion `json:"criteria"`
	MaxScore int                 `json:"max_score"`
	MinScore int                 `json:"min_score"`
}

type DepartmentResponse struct {
	ID    grading.Department `json:"id"`
	Name  string             `json:"name"`
	Quota *grading.Quota     `json:"quota,omitempty"`
}

// PendingRatee is a ratee of the rater's department without a complete evaluation.
type PendingRatee struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	MissingCriteria []string `json:"missing_criteria"`
}

type ValidationResponse struct {
	Result        grading.ValidationResult `json:"result"`
	Suggestions   []grading.Suggestion     `json:"suggestions"`
	PendingRatees []PendingRatee           `json:"pending_ratees"`
}

type SubmitResponse struct {
	SubmittedCount int64                    `json:"submitted_count"`
	Validation     grading.ValidationResult `json:"validation"`
}
