package http

import (
	"net/http"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/statistics"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type StatisticsHandler interface {
	GetDepartment(w http.ResponseWriter, r *http.Request)
	GetOverview(w http.ResponseWriter, r *http.Request)
}

type statisticsHandlerImpl struct {
	statisticsService statistics.StatisticsService
}

func NewStatisticsHandler(statisticsService statistics.StatisticsService) StatisticsHandler {
	return &statisticsHandlerImpl{statisticsService: statisticsService}
}

// GetDepartment implements StatisticsHandler.
func (h *statisticsHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statisticsService.GetDepartment(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}

// GetOverview implements StatisticsHandler.
func (h *statisticsHandlerImpl) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.statisticsService.GetOverview(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, overview)
}
