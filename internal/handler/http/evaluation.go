package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EvaluationHandler interface {
	Criteria(w http.ResponseWriter, r *http.Request)
	Departments(w http.ResponseWriter, r *http.Request)
	SaveDraft(w http.ResponseWriter, r *http.Request)
	DeleteDraft(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
}

type evaluationHandlerImpl struct {
	evaluationService evaluation.EvaluationService
}

func NewEvaluationHandler(evaluationService evaluation.EvaluationService) EvaluationHandler {
	return &evaluationHandlerImpl{evaluationService: evaluationService}
}

// Criteria implements EvaluationHandler.
func (h *evaluationHandlerImpl) Criteria(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.evaluationService.Criteria(r.Context()))
}

// Departments implements EvaluationHandler.
func (h *evaluationHandlerImpl) Departments(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.evaluationService.Departments(r.Context()))
}

// SaveDraft implements EvaluationHandler.
func (h *evaluationHandlerImpl) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var req evaluation.SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Save draft decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RateeID = chi.URLParam(r, "rateeID")

	saved, err := h.evaluationService.SaveDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Draft saved", saved)
}

// DeleteDraft implements EvaluationHandler.
func (h *evaluationHandlerImpl) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.evaluationService.DeleteDraft(r.Context(), chi.URLParam(r, "rateeID")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Draft deleted", nil)
}

// ListMine implements EvaluationHandler.
func (h *evaluationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.evaluationService.ListMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// Validate implements EvaluationHandler.
func (h *evaluationHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	result, err := h.evaluationService.Validate(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Submit implements EvaluationHandler.
func (h *evaluationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.evaluationService.Submit(r.Context())
	if err != nil {
		slog.Warn("Evaluation submission rejected", "error", err)
		response.HandleError(w, err)
		return
	}
	slog.Info("Evaluations submitted", "count", result.SubmittedCount)
	response.SuccessWithMessage(w, "Evaluations submitted", result)
}
