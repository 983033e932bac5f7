package evaluation

import "context"

type EvaluationService interface {
	Criteria(ctx context.Context) CriteriaResponse
	Departments(ctx context.Context) []DepartmentResponse
	SaveDraft(ctx context.Context, req SaveDraftRequest) (EvaluationResponse, error)
	DeleteDraft(ctx context.Context, rateeID string) error
	ListMine(ctx context.Context) ([]EvaluationResponse, error)
	Validate(ctx context.Context) (ValidationResponse, error)
	Submit(ctx context.Context) (SubmitResponse, error)
}
