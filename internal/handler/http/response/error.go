package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/statistics"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
)

// QuotaViolationData is the payload of a rejected submission.
type QuotaViolationData struct {
	Result      grading.ValidationResult `json:"result"`
	Suggestions []grading.Suggestion     `json:"suggestions"`
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var quotaErr *evaluation.QuotaViolationError
	if errors.As(err, &quotaErr) {
		QuotaViolation(w, quotaErr.Error(), QuotaViolationData{
			Result:      quotaErr.Result,
			Suggestions: quotaErr.Suggestions,
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound):
		BadRequest(w, "Refresh token cookie not found", nil)
	case errors.Is(err, auth.ErrGoogleAccountNotLinked):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrGoogleEmailNotVerified):
		Forbidden(w, "Google email not verified")
	case errors.Is(err, auth.ErrGoogleLoginDisabled):
		NotFound(w, "Google login is not configured")

	// User domain errors
	case errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUsernameExists):
		Conflict(w, "Username already registered")
	case errors.Is(err, user.ErrOAuthProviderIDExists):
		Conflict(w, "Google account already linked to another user")

	// Personnel domain errors
	case errors.Is(err, personnel.ErrPersonnelNotFound):
		NotFound(w, "Personnel not found")
	case errors.Is(err, personnel.ErrPersonnelNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, personnel.ErrDepartmentForbidden):
		Forbidden(w, err.Error())

	// Evaluation domain errors
	case errors.Is(err, evaluation.ErrEvaluationNotFound):
		NotFound(w, "Evaluation not found")
	case errors.Is(err, evaluation.ErrAlreadySubmitted):
		Conflict(w, err.Error())
	case errors.Is(err, evaluation.ErrSelfEvaluation):
		Forbidden(w, err.Error())
	case errors.Is(err, evaluation.ErrRateeOutsideDepartment):
		Forbidden(w, err.Error())
	case errors.Is(err, evaluation.ErrIncompleteEvaluations):
		ValidationError(w, map[string]string{"evaluations": err.Error()})
	case errors.Is(err, evaluation.ErrNothingToSubmit):
		BadRequest(w, err.Error(), nil)

	// Statistics domain errors
	case errors.Is(err, statistics.ErrUnknownDepartment):
		NotFound(w, "Unknown department")

	// Poll domain errors
	case errors.Is(err, poll.ErrPollNotFound):
		NotFound(w, "Poll not found")
	case errors.Is(err, poll.ErrOptionNotFound):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, poll.ErrPollClosed):
		Conflict(w, "Poll is closed")
	case errors.Is(err, poll.ErrAlreadyVoted):
		Conflict(w, err.Error())
	case errors.Is(err, poll.ErrNotPollOwner):
		Forbidden(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
