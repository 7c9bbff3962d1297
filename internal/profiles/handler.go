package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vibecheck-app/vibecheck/internal/api"
)

// Handler exposes profile endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new profile handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts profile routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Route("/{profileID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/messages", h.UploadMessages)
			r.Post("/messages", h.UploadMessages)
			r.Get("/messages", h.GetMessages)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	profile, err := h.service.Create(r.Context(), req)
	if err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			api.HandleError(w, api.NewValidationError(vErrs.Error()))
			return
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, profile)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid profile id"))
		return
	}

	profile, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("profile not found"))
			return
		}
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, profile)
}

func (h *Handler) UploadMessages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid profile id"))
		return
	}

	var req UploadMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	count, err := h.service.UploadMessages(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("profile not found"))
			return
		}
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			api.HandleError(w, api.NewValidationError(vErrs.Error()))
			return
		}
		api.HandleError(w, api.NewBadRequestError(err.Error()))
		return
	}

	api.JSON(w, http.StatusOK, map[string]int{"message_count": count})
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid profile id"))
		return
	}

	texts, err := h.service.Messages(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("profile not found"))
			return
		}
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{
		"messages":      texts,
		"message_count": len(texts),
	})
}
