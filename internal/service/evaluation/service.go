package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type EvaluationServiceImpl struct {
	tx          database.TxManager
	evaluations evaluation.EvaluationRepository
	personnel   personnel.PersonnelRepository
	users       user.UserRepository
	engine      *grading.Engine
	now         func() time.Time
}

func NewEvaluationService(
	tx database.TxManager,
	evaluationRepository evaluation.EvaluationRepository,
	personnelRepository personnel.PersonnelRepository,
	userRepository user.UserRepository,
	engine *grading.Engine,
) evaluation.EvaluationService {
	return &EvaluationServiceImpl{
		tx:          tx,
		evaluations: evaluationRepository,
		personnel:   personnelRepository,
		users:       userRepository,
		engine:      engine,
		now:         time.Now,
	}
}

func requireRater(ctx context.Context) (user.Principal, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if !user.HasPermission(principal.Role, user.PermissionEvaluationCreate) {
		return user.Principal{}, user.ErrInsufficientPermissions
	}
	return principal, nil
}

// Criteria implements evaluation.EvaluationService.
func (s *EvaluationServiceImpl) Criteria(ctx context.Context) evaluation.CriteriaResponse {
	rubric := s.engine.Rubric()
	return evaluation.CriteriaResponse{
		Criteria: rubric.Criteria,
		MaxScore: rubric.MaxScore(),
		MinScore: rubric.MinScore(),
	}
}

// Departments implements evaluation.EvaluationService.
func (s *EvaluationServiceImpl) Departments(ctx context.Context) []evaluation.DepartmentResponse {
	out := make([]evaluation.DepartmentResponse, 0, len(grading.Departments))
	for _, d := range grading.Departments {
		resp := evaluation.DepartmentResponse{ID: d.ID, Name: d.Name}
		if q, ok := s.engine.Quota(d.ID); ok {
			resp.Quota = &q
		}
		out = append(out, resp)
	}
	return out
}

// SaveDraft implements evaluation.EvaluationService.
func (s *EvaluationServiceImpl) SaveDraft(ctx context.Context, req evaluation.SaveDraftRequest) (evaluation.EvaluationResponse, error) {
	principal, err := requireRater(ctx)
	if err != nil {
		return evaluation.EvaluationResponse{}, err
	}
	if err := req.Validate(s.engine.Rubric()); err != nil {
		return evaluation.EvaluationResponse{}, err
	}

	ratee, err := s.personnel.GetByID(ctx, req.RateeID)
	if err != nil {
		return evaluation.EvaluationResponse{}, err
	}
	if !ratee.Active {
		return evaluation.EvaluationResponse{}, personnel.ErrPersonnelNotFound
	}
	if ratee.Department != principal.Department {
		return evaluation.EvaluationResponse{}, evaluation.ErrRateeOutsideDepartment
	}

	selfID, err := s.linkedPersonnelID(ctx, principal.UserID)
	if err != nil {
		return evaluation.EvaluationResponse{}, err
	}
	if selfID == ratee.ID {
		return evaluation.EvaluationResponse{}, evaluation.ErrSelfEvaluation
	}

	id, err := uuid.NewV7()
	if err != nil {
		return evaluation.EvaluationResponse{}, fmt.Errorf("failed to generate evaluation id: %w", err)
	}

	saved, err := s.evaluations.UpsertDraft(ctx, evaluation.Evaluation{
		ID:         id.String(),
		RaterID:    principal.UserID,
		RateeID:    ratee.ID,
		Department: principal.Department,
		RaterRole:  string(principal.Role),
		Scores:     req.Scores,
		TotalScore: grading.CalculateTotalScore(req.Scores),
		Status:     evaluation.StatusDraft,
	})
	if err != nil {
		return evaluation.EvaluationResponse{}, err
	}
	if saved.RateeName == "" {
		saved.RateeName = ratee.Name
	}

	return evaluation.NewEvaluationResponse(saved, s.engine), nil
}

func (s *EvaluationServiceImpl) linkedPersonnelID(ctx context.Context, userID string) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", user.ErrUnauthenticated
		}
		return "", err
	}
	if u.PersonnelID == nil {
		return "", nil
	}
	return *u.PersonnelID, nil
}

// DeleteDraft implements evaluation.EvaluationService.
func (s *EvaluationServiceImpl) DeleteDraft(ctx context.Context, rateeID string) error {
	principal, err := requireRater(ctx)
	if err != nil {
		return err
	}
	if !validator.IsValidUUID(rateeID) {
		return evaluation.ErrEvaluationNotFound
	}
	return s.evaluations.DeleteDraft(ctx, principal.UserID, rateeID)
}

// ListMine implements evaluation.EvaluationService.
func (s *EvaluationServiceImpl) ListMine(ctx context.Context) ([]evaluation.EvaluationResponse, error) {
	principal, err := requireRater(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.evaluations.ListByRater(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	responses := make([]evaluation.EvaluationResponse, 0, len(list))
	for _, e := range list {
		if e.Department != principal.Department {
			continue
		}
		responses = append(responses, evaluation.NewEvaluationResponse(e, s.engine))
	}
	return responses, nil
}

// progress is the state of a rater's evaluations against the ratees of their department.
type progress struct {
	validation evaluation.ValidationResponse
	draftIDs   []string
}

func (s *EvaluationServiceImpl) progressOf(ctx context.Context, principal user.Principal) (progress, error) {
	ratees, err := s.personnel.List(ctx, personnel.ListFilter{Department: principal.Department})
	if err != nil {
		return progress{}, err
	}
	selfID, err := s.linkedPersonnelID(ctx, principal.UserID)
	if err != nil {
		return progress{}, err
	}
	mine, err := s.evaluations.ListByRater(ctx, principal.UserID)
	if err != nil {
		return progress{}, err
	}

	byRatee := make(map[string]evaluation.Evaluation, len(mine))
	for _, e := range mine {
		if e.Department == principal.Department {
			byRatee[e.RateeID] = e
		}
	}

	rubric := s.engine.Rubric()
	var p progress
	p.validation.PendingRatees = []evaluation.PendingRatee{}
	var evals []grading.Evaluation
	required := 0

	for _, r := range ratees {
		if r.ID == selfID {
			continue
		}
		required++
		e, ok := byRatee[r.ID]
		if !ok {
			p.validation.PendingRatees = append(p.validation.PendingRatees, evaluation.PendingRatee{
				ID: r.ID, Name: r.Name, MissingCriteria: rubric.Keys(),
			})
			continue
		}
		if !rubric.IsComplete(e.Scores) {
			p.validation.PendingRatees = append(p.validation.PendingRatees, evaluation.PendingRatee{
				ID: r.ID, Name: r.Name, MissingCriteria: rubric.MissingKeys(e.Scores),
			})
		}
		evals = append(evals, grading.Evaluation{RateeID: e.RateeID, TotalScore: e.TotalScore})
		if !e.IsSubmitted() {
			p.draftIDs = append(p.draftIDs, e.ID)
		}
	}

	dept := grading.Department(principal.Department)
	p.validation.Result = s.engine.ValidateGradeDistributionFor(evals, dept, required)
	p.validation.Suggestions = s.engine.GenerateSuggestionsFor(evals, dept, required)
	if p.validation.Suggestions == nil {
		p.validation.Suggestions = []grading.Suggestion{}
	}
	return p, nil
}

// Validate implements evaluation.EvaluationService.
func (s *EvaluationServiceImpl) Validate(ctx context.Context) (evaluation.ValidationResponse, error) {
	principal, err := requireRater(ctx)
	if err != nil {
		return evaluation.ValidationResponse{}, err
	}
	p, err := s.progressOf(ctx, principal)
	if err != nil {
		return evaluation.ValidationResponse{}, err
	}
	return p.validation, nil
}

// Submit implements evaluation.EvaluationService. Every draft of the rater is locked in one
// transaction, and only when all ratees are fully scored and the distribution meets the quota.
func (s *EvaluationServiceImpl) Submit(ctx context.Context) (evaluation.SubmitResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return evaluation.SubmitResponse{}, err
	}
	if !user.HasPermission(principal.Role, user.PermissionEvaluationSubmit) {
		return evaluation.SubmitResponse{}, user.ErrInsufficientPermissions
	}

	var response evaluation.SubmitResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Drafts saved concurrently must not slip in between the check and the update
		if err := s.evaluations.LockByRater(ctx, principal.UserID); err != nil {
			return err
		}
		p, err := s.progressOf(ctx, principal)
		if err != nil {
			return err
		}
		if len(p.draftIDs) == 0 {
			return evaluation.ErrNothingToSubmit
		}
		if len(p.validation.PendingRatees) > 0 {
			return evaluation.ErrIncompleteEvaluations
		}
		if !p.validation.Result.Valid {
			return &evaluation.QuotaViolationError{
				Result:      p.validation.Result,
				Suggestions: p.validation.Suggestions,
			}
		}

		count, err := s.evaluations.MarkSubmitted(ctx, principal.UserID, p.draftIDs, s.now())
		if err != nil {
			return err
		}
		response = evaluation.SubmitResponse{SubmittedCount: count, Validation: p.validation.Result}
		return nil
	})
	if err != nil {
		return evaluation.SubmitResponse{}, err
	}

	slog.Info("evaluations submitted",
		"rater_id", principal.UserID,
		"department", principal.Department,
		"count", response.SubmittedCount,
	)
	return response, nil
}
