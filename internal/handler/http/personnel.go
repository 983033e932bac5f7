package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PersonnelHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type personnelHandlerImpl struct {
	personnelService personnel.PersonnelService
}

func NewPersonnelHandler(personnelService personnel.PersonnelService) PersonnelHandler {
	return &personnelHandlerImpl{personnelService: personnelService}
}

// Create implements PersonnelHandler.
func (h *personnelHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req personnel.CreatePersonnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create personnel decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.personnelService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Personnel created successfully", created)
}

// List implements PersonnelHandler.
func (h *personnelHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := personnel.ListFilter{Department: r.URL.Query().Get("department")}
	if v := r.URL.Query().Get("include_inactive"); v != "" {
		includeInactive, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "include_inactive must be a boolean", nil)
			return
		}
		filter.IncludeInactive = includeInactive
	}

	list, err := h.personnelService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// GetByID implements PersonnelHandler.
func (h *personnelHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.personnelService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, p)
}

// Update implements PersonnelHandler.
func (h *personnelHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req personnel.UpdatePersonnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update personnel decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.personnelService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Personnel updated successfully", updated)
}

// Delete implements PersonnelHandler.
func (h *personnelHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.personnelService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Personnel deleted successfully", nil)
}
