package evaluation

import (
	"context"
	"time"
)

type EvaluationRepository interface {
	// UpsertDraft creates the evaluation or overwrites an existing draft. It returns
	// ErrAlreadySubmitted when the stored evaluation is already submitted.
	UpsertDraft(ctx context.Context, e Evaluation) (Evaluation, error)
	GetByRaterAndRatee(ctx context.Context, raterID, rateeID string) (Evaluation, error)
	ListByRater(ctx context.Context, raterID string) ([]Evaluation, error)
	DeleteDraft(ctx context.Context, raterID, rateeID string) error
	// LockByRater locks every evaluation row of the rater until the surrounding
	// transaction ends.
	LockByRater(ctx context.Context, raterID string) error
	MarkSubmitted(ctx context.Context, raterID string, ids []string, at time.Time) (int64, error)
	ListSubmittedByDepartment(ctx context.Context, department string) ([]Evaluation, error)
}
