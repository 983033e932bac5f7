package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

const sseKeepaliveInterval = 30 * time.Second

type PollHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Vote(w http.ResponseWriter, r *http.Request)
	Results(w http.ResponseWriter, r *http.Request)
	Close(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type pollHandlerImpl struct {
	pollService poll.PollService
	jwtService  jwt.Service
}

func NewPollHandler(pollService poll.PollService, jwtService jwt.Service) PollHandler {
	return &pollHandlerImpl{
		pollService: pollService,
		jwtService:  jwtService,
	}
}

// Create implements PollHandler.
func (h *pollHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req poll.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create poll decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.pollService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Poll created successfully", created)
}

// List implements PollHandler.
func (h *pollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollService.List(r.Context(), poll.ListFilter{Status: poll.Status(r.URL.Query().Get("status"))})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, polls)
}

// GetByID implements PollHandler.
func (h *pollHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.pollService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, p)
}

// Vote implements PollHandler.
func (h *pollHandlerImpl) Vote(w http.ResponseWriter, r *http.Request) {
	var req poll.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Vote decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.PollID = chi.URLParam(r, "id")

	results, err := h.pollService.Vote(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Vote recorded", results)
}

// Results implements PollHandler.
func (h *pollHandlerImpl) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.pollService.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// Close implements PollHandler.
func (h *pollHandlerImpl) Close(w http.ResponseWriter, r *http.Request) {
	results, err := h.pollService.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Poll closed", results)
}

// Stream handles the SSE connection carrying live results of one poll
func (h *pollHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the short-lived SSE token comes as a query parameter
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}
	if _, err := h.jwtService.ValidateSSEToken(tokenStr); err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	pollID := chi.URLParam(r, "id")
	events, cleanup, err := h.pollService.Subscribe(r.Context(), pollID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: connected\ndata: {\"poll_id\":%q}\n\n", pollID)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case results, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(results)
			if err != nil {
				slog.Error("Failed to encode poll results", "poll_id", pollID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: results\ndata: %s\n\n", data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
