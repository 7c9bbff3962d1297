package simulation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vibecheck-app/vibecheck/internal/api"
	"github.com/vibecheck-app/vibecheck/internal/convstore"
	"github.com/vibecheck-app/vibecheck/internal/profiles"
)

// Handler exposes simulation endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new simulation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts simulation routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulate", h.Simulate)
	r.Get("/conversations/{conversationID}", h.GetConversation)
}

func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	conversation, err := h.service.Run(r.Context(), req)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("profile not found"))
			return
		}
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			api.HandleError(w, api.NewValidationError(vErrs.Error()))
			return
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, conversation)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	if id == "" {
		api.HandleError(w, api.NewBadRequestError("missing conversation id"))
		return
	}

	conversation, err := h.service.GetConversation(r.Context(), id)
	if err != nil {
		if errors.Is(err, convstore.ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("conversation not found"))
			return
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, conversation)
}
