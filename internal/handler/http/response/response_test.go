package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleError_StatusCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{user.ErrAdminPrivilegeRequired, http.StatusForbidden, "FORBIDDEN"},
		{personnel.ErrPersonnelNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("save: %w", evaluation.ErrAlreadySubmitted), http.StatusConflict, "CONFLICT"},
		{evaluation.ErrIncompleteEvaluations, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{poll.ErrAlreadyVoted, http.StatusConflict, "CONFLICT"},
		{poll.ErrOptionNotFound, http.StatusBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.False(t, body["success"].(bool))
			assert.Equal(t, tt.code, body["error"].(map[string]interface{})["code"])
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, validator.ValidationErrors{{Field: "name", Message: "name is required"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details := decode(t, w)["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "name is required", details["name"])
}

func TestHandleError_QuotaViolation(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, &evaluation.QuotaViolationError{
		Result:      grading.ValidationResult{Valid: false, Message: "too many A grades"},
		Suggestions: []grading.Suggestion{},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "QUOTA_VIOLATION", body["error"].(map[string]interface{})["code"])
	assert.Equal(t, "too many A grades", body["error"].(map[string]interface{})["message"])
	assert.Contains(t, body["data"].(map[string]interface{}), "result")
}

func TestSuccess_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, []string{"kaitou", "jingkong"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{"kaitou", "jingkong"}, body["data"])
	assert.NotContains(t, body, "meta")
	assert.NotContains(t, body, "error")
}
